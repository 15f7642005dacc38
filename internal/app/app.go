package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/board-server/internal/auth"
	"github.com/vovakirdan/board-server/internal/config"
	"github.com/vovakirdan/board-server/internal/service/messages"
	"github.com/vovakirdan/board-server/internal/store"
	"github.com/vovakirdan/board-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/board-server/internal/transport/http"
)

// App wires together storage, service and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.Store
	log             *zerolog.Logger
}

// OpenStore opens the configured database and brings its schema up to date.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return st, nil
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	admin, err := auth.NewAdmin(cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		return nil, fmt.Errorf("init admin gate: %w", err)
	}
	if cfg.Admin.Password == config.Default().Admin.Password {
		logger.Warn().Msg("admin password is the default; set BOARD_ADMIN_PASSWORD")
	}

	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	svc := messages.New(st, cfg.Location)
	server := transporthttp.NewServer(svc, admin, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
