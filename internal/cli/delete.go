package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/CaliLuke/go-odm/query"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	StringID bool
}

// DeleteResult is the output of the delete command.
type DeleteResult struct {
	Collection string `yaml:"collection" json:"collection"`
	ID         any    `yaml:"id" json:"id"`
	Deleted    int64  `yaml:"deleted" json:"deleted"`
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <collection> <id>",
		Short: "Delete one document by _id",
		Long: `Delete the document with the given _id. Related documents are not
touched and no record hooks run.

The id is read as a YAML scalar: 42 is a number, abc a string. Use
--string-id to keep a numeric-looking id as a string.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], args[1], cmd)
		},
	}
	cmd.Flags().BoolVar(&opts.StringID, "string-id", false, "treat the id as a string")
	return cmd
}

func runDelete(opts *DeleteOptions, collection, rawID string, cmd *cobra.Command) error {
	if err := collectionArg(collection); err != nil {
		return err
	}
	id, err := parseID(rawID, opts.StringID)
	if err != nil {
		return err
	}
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.store.DeleteOne(context.Background(), collection, query.ByID(id).ToDocument())
	if err != nil {
		return WrapExitError(ExitFailure, "delete failed", err)
	}
	s.logger.Debug("deleted document", "collection", collection, "id", id, "deleted", res.DeletedCount)
	return s.out.print(DeleteResult{Collection: collection, ID: id, Deleted: res.DeletedCount})
}
