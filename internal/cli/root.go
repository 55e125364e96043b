// Package cli wires configuration, storage and services into the catalog
// command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/msomdec/catalog-admin/internal/config"
	"github.com/msomdec/catalog-admin/internal/repository/sqlite"
)

// RootOptions holds global flags and the configuration they produce.
type RootOptions struct {
	EnvFile      string
	DatabasePath string
	LogLevel     string
	LogFormat    string

	Config *config.Config
}

// NewRootCommand creates the root command of the catalog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "catalog",
		Short:         "Material catalog admin backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.DatabasePath, "db", "", "SQLite database path (overrides DATABASE_PATH)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format: text or json (overrides LOG_FORMAT)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSecretsCommand(opts))

	return cmd
}

func (o *RootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.EnvFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DatabasePath = o.DatabasePath
	}
	if flags.Changed("log-level") {
		if err := cfg.LogLevel.UnmarshalText([]byte(o.LogLevel)); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.LogFormat
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	o.Config = cfg
	return nil
}

func newLogger(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	logOpts := &slog.HandlerOptions{Level: level}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, logOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, logOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text or json", format)
	}
}

// openDB opens and migrates the configured database.
func (o *RootOptions) openDB(cmd *cobra.Command) (*sqlite.DB, error) {
	db, err := sqlite.New(o.Config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(cmd.Context()); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// Execute runs the root command and exits non-zero on failure. SIGINT and
// SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
