package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewCollectionsCommand creates the collections command.
func NewCollectionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the collections of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollections(rootOpts, cmd)
		},
	}
}

func runCollections(opts *RootOptions, cmd *cobra.Command) error {
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	names, err := s.store.Collections(context.Background())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list collections", err)
	}
	if names == nil {
		names = []string{}
	}
	return s.out.print(names)
}
