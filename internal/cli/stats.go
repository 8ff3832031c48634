package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/CaliLuke/go-odm/odm"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count the documents of every collection",
		Long: `Count the documents of every collection. Collections are counted
concurrently on the worker pool configured under "pool".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd)
		},
	}
}

func runStats(opts *RootOptions, cmd *cobra.Command) error {
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	names, err := s.store.Collections(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list collections", err)
	}

	pool, err := odm.NewPool(s.cfg.Pool)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start worker pool", err)
	}
	defer pool.Close()

	futures := make([]*odm.Future[int64], len(names))
	for i, name := range names {
		name := name
		futures[i] = odm.Go(ctx, pool, func(ctx context.Context) (int64, error) {
			return s.store.Count(ctx, name, nil, nil)
		})
	}
	results := make([]CountResult, 0, len(names))
	for i, f := range futures {
		n, err := f.Wait(ctx)
		if err != nil {
			return WrapExitError(ExitFailure, "count "+names[i]+" failed", err)
		}
		results = append(results, CountResult{Collection: names[i], Count: n})
	}
	s.logger.Debug("counted collections", "collections", len(names), "completed", pool.Stats().Completed)
	return s.out.print(results)
}
