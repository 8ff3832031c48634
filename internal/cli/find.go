package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/CaliLuke/go-odm/docstore"
	"github.com/CaliLuke/go-odm/query"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	Filter   string
	ID       string
	StringID bool
	Sort     []string
	Skip     int64
	Limit    int64
	Timeout  time.Duration
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find <collection>",
		Short: "Print the documents of a collection",
		Long: `Print the documents of a collection that match a filter.

The filter is a YAML or JSON document using the store's filter operators.
Sort keys are applied in order; prefix a key with '-' to sort descending.

Examples:
  odmctl find users
  odmctl find users --filter '{age: {$gt: 20}}' --sort -age --limit 10
  odmctl find posts --id 1 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "", "filter document (YAML or JSON)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "match a single _id (combined with --filter)")
	cmd.Flags().BoolVar(&opts.StringID, "string-id", false, "treat --id as a string even if it looks like a number")
	cmd.Flags().StringSliceVar(&opts.Sort, "sort", nil, "sort keys, '-' prefix for descending")
	cmd.Flags().Int64Var(&opts.Skip, "skip", 0, "number of documents to skip")
	cmd.Flags().Int64Var(&opts.Limit, "limit", 0, "maximum number of documents (0 = all)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "maximum query time (0 = none)")

	return cmd
}

func runFind(opts *FindOptions, collection string, cmd *cobra.Command) error {
	if err := collectionArg(collection); err != nil {
		return err
	}
	filter, err := buildFilter(opts.Filter, opts.ID, opts.StringID)
	if err != nil {
		return err
	}
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	findOpts := &docstore.FindOptions{
		Sort:    sortKeys(opts.Sort),
		Skip:    opts.Skip,
		Limit:   opts.Limit,
		MaxTime: opts.Timeout,
	}
	s.logger.Debug("find", "collection", collection, "filter", filter)
	cur, err := s.store.Find(context.Background(), collection, filter, findOpts)
	if err != nil {
		return WrapExitError(ExitFailure, "find failed", err)
	}
	docs, err := docstore.All(cur)
	if err != nil {
		return WrapExitError(ExitFailure, "find failed", err)
	}
	if docs == nil {
		docs = []docstore.Document{}
	}
	return s.out.print(docs)
}

// buildFilter combines a filter text with an optional identity.
func buildFilter(text, id string, stringID bool) (docstore.Document, error) {
	filter, err := parseDocument(text)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return filter, nil
	}
	v, err := parseID(id, stringID)
	if err != nil {
		return nil, err
	}
	byID := query.ByID(v)
	if filter == nil {
		return byID.ToDocument(), nil
	}
	return query.And(query.Raw(filter), byID).ToDocument(), nil
}

func sortKeys(keys []string) []docstore.SortField {
	var out []docstore.SortField
	for _, k := range keys {
		if field, ok := strings.CutPrefix(k, "-"); ok {
			out = append(out, query.Desc(field))
		} else {
			out = append(out, query.Asc(strings.TrimPrefix(k, "+")))
		}
	}
	return out
}
