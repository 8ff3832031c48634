package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// CountOptions holds flags for the count command.
type CountOptions struct {
	*RootOptions
	Filter string
}

// CountResult is the output of the count command.
type CountResult struct {
	Collection string `yaml:"collection" json:"collection"`
	Count      int64  `yaml:"count" json:"count"`
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CountOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count <collection>",
		Short: "Count the documents of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "", "filter document (YAML or JSON)")
	return cmd
}

func runCount(opts *CountOptions, collection string, cmd *cobra.Command) error {
	if err := collectionArg(collection); err != nil {
		return err
	}
	filter, err := parseDocument(opts.Filter)
	if err != nil {
		return err
	}
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.store.Count(context.Background(), collection, filter, nil)
	if err != nil {
		return WrapExitError(ExitFailure, "count failed", err)
	}
	return s.out.print(CountResult{Collection: collection, Count: n})
}
