package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/board-server/internal/app"
	"github.com/vovakirdan/board-server/internal/config"
	logpkg "github.com/vovakirdan/board-server/internal/log"
)

type options struct {
	configPath string
	overrides  config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "board-server",
		Short:         "Single-feed message board server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config.yaml")
	flags.StringVar(&opts.overrides.Addr, "addr", "", "HTTP listen address")
	flags.StringVar(&opts.overrides.DatabasePath, "db", "", "SQLite database path")
	flags.StringVar(&opts.overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.DurationVar(&opts.overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	flags.DurationVar(&opts.overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the schema and add any missing columns",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every message and reset the id counter",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runClear(cmd.Context(), opts)
			},
		},
	)

	return root
}

func loadConfig(opts *options) (*config.Config, *zerolog.Logger, error) {
	bootLogger := logpkg.New("info", "development")

	cfg, path, err := config.Load(bootLogger, opts.configPath)
	if err != nil {
		bootLogger.Error().Err(err).Str("path", path).Msg("failed to load config")
		return nil, nil, err
	}
	cfg.UpdateFrom(opts.overrides)

	logger := logpkg.New(cfg.LogLevel, cfg.Env)
	logger.Debug().Str("config_path", path).Msg("configuration loaded")
	return &cfg, logger, nil
}

func runServe(ctx context.Context, opts *options) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start")
		return err
	}

	logger.Info().Str("addr", cfg.Addr).Str("env", cfg.Env).Msg("starting board server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runMigrate(ctx context.Context, opts *options) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("migration failed")
		return err
	}
	defer st.Close()

	fmt.Println("Database migrated at", cfg.DatabasePath)
	return nil
}

func runClear(ctx context.Context, opts *options) error {
	cfg, logger, err := loadConfig(opts)
	if err != nil {
		return err
	}

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open store")
		return err
	}
	defer st.Close()

	removed, err := st.Clear(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("clear failed")
		return err
	}

	fmt.Printf("Cleared %d message(s) from database. ID counter reset.\n", removed)
	return nil
}
