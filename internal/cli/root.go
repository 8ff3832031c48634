// Package cli implements the odmctl commands.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/CaliLuke/go-odm/docstore"
	"github.com/CaliLuke/go-odm/internal/config"
	"github.com/CaliLuke/go-odm/odm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Backend    string
	Path       string
	LogLevel   string
	Format     string // "yaml" | "json"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"yaml", "json"}

// NewRootCommand creates the root command of odmctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "odmctl",
		Short: "Inspect and edit go-odm document stores",
		Long: `odmctl reads and edits the documents of a go-odm store.

The store is a SQLite file, odm.db in the working directory unless a
YAML config file (--config) or --path says otherwise.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "store backend (only sqlite holds data between runs), overrides config")
	cmd.PersistentFlags().StringVar(&opts.Path, "path", "", "SQLite database file or directory, overrides config")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), overrides config")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "yaml", "output format (yaml|json)")

	cmd.AddCommand(NewCollectionsCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// session is what every command runs against.
type session struct {
	cfg    config.Config
	store  docstore.Store
	logger *slog.Logger
	out    printer
}

func (s *session) Close() error {
	return s.store.Close()
}

// loadConfig reads the config file, if any, and applies flag overrides.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg := config.Default()
	if o.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(o.ConfigPath); err != nil {
			return cfg, err
		}
	}
	if o.Backend != "" {
		cfg.Store.Backend = o.Backend
	}
	if o.Path != "" {
		cfg.Store.Path = o.Path
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	return cfg, cfg.Validate()
}

func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if cfg.Store.Backend != "sqlite" {
		return nil, WrapExitError(ExitCommandError, "unsupported store backend",
			fmt.Errorf("%q holds no data between runs; use the sqlite backend", cfg.Store.Backend))
	}
	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure logging", err)
	}
	st, err := docstore.Open(cfg.Store)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	logger.Debug("opened store", "backend", cfg.Store.Backend, "path", cfg.Store.Path)
	return &session{
		cfg:    cfg,
		store:  st,
		logger: logger,
		out:    printer{format: o.Format, w: cmd.OutOrStdout()},
	}, nil
}

// collectionArg validates a collection name argument.
func collectionArg(name string) error {
	if err := odm.ValidateCollectionName(name); err != nil {
		return WrapExitError(ExitCommandError, "invalid collection", err)
	}
	return nil
}

// parseDocument parses a filter given as YAML or JSON flow text.
func parseDocument(s string) (docstore.Document, error) {
	if s == "" {
		return nil, nil
	}
	var doc docstore.Document
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid filter", err)
	}
	return doc, nil
}

// parseID parses an identity argument as a YAML scalar, so 42 is a number
// and abc a string. asString keeps the text unchanged.
func parseID(s string, asString bool) (any, error) {
	if asString {
		return s, nil
	}
	var id any
	if err := yaml.Unmarshal([]byte(s), &id); err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid id", err)
	}
	switch id.(type) {
	case string, int, int64, uint64, float64, bool:
		return id, nil
	}
	return nil, WrapExitError(ExitCommandError, "invalid id", fmt.Errorf("%q is not a scalar", s))
}
