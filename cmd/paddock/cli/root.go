// Package cli implements the paddock command line.
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
	"github.com/uptrace/bun"

	"github.com/mkoziy/paddock/internal/config"
	"github.com/mkoziy/paddock/internal/database"
	"github.com/mkoziy/paddock/internal/logger"
)

type rootOptions struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

// NewRootCmd returns the root command for the paddock CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "paddock",
		Short:         "Import motorsport timing data and serve it over HTTP",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file (defaults to $PADDOCK_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log level: debug, info, warn, error")

	cmd.AddCommand(newMigrateCmd(opts))
	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

func (o *rootOptions) load(logOut io.Writer) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	logger.Setup(logOut, cfg.LogFormat)
	if err := logger.Configure(cfg.LogLevel); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}
	o.cfg = cfg
	return nil
}

func (o *rootOptions) openDB(ctx context.Context) (*bun.DB, error) {
	db, err := database.NewDB(ctx, o.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	slog.Debug("database opened", "driver", o.cfg.Database.Driver)
	return db, nil
}

func closeDB(db *bun.DB) {
	if err := db.Close(); err != nil {
		slog.Warn("close database", "err", err)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
