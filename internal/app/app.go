package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/translachat-server/internal/auth"
	"github.com/vovakirdan/translachat-server/internal/config"
	"github.com/vovakirdan/translachat-server/internal/core"
	applog "github.com/vovakirdan/translachat-server/internal/log"
	"github.com/vovakirdan/translachat-server/internal/moderation"
	"github.com/vovakirdan/translachat-server/internal/store"
	"github.com/vovakirdan/translachat-server/internal/store/sqlite"
	"github.com/vovakirdan/translachat-server/internal/translate"
	transporthttp "github.com/vovakirdan/translachat-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// OpenStore opens the database at cfg.DatabasePath and applies the schema.
func OpenStore(ctx context.Context, cfg *config.Config) (*sqlite.SQLiteStore, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return st, nil
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	})

	opts := []core.Option{
		core.WithLogger(applog.Component(logger, "hub")),
		core.WithTranslator(translate.NewPassthrough(applog.Component(logger, "translate"))),
		core.WithFallbackLanguage(cfg.FallbackLanguage),
		core.WithMaxMessageRunes(cfg.MaxMessageRunes),
	}
	if len(cfg.CensoredWords) > 0 {
		moderator, err := moderation.NewModerator(cfg.CensoredWords, moderation.DefaultMask)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("init moderator: %w", err)
		}
		opts = append(opts, core.WithCensor(moderator))
		logger.Info().Int("words", len(cfg.CensoredWords)).Msg("word filter enabled")
	}

	hub := core.NewHub(store.NewHistory(st), opts...)
	server := transporthttp.NewServer(hub, authService, st, cfg, applog.Component(logger, "http"))

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().
			Int("connections", a.hub.Registry().ConnectionCount()).
			Int("rooms", a.hub.Registry().RoomCount()).
			Msg("shutting down http server")
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
