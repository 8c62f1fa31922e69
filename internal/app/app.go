// Package app wires the identity service runtime: stores, security,
// the login event dispatcher and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api"
	"github.com/99minutos/identity-service/internal/api/handler"
	"github.com/99minutos/identity-service/internal/core/service"
	"github.com/99minutos/identity-service/internal/infrastructure/config"
	"github.com/99minutos/identity-service/internal/infrastructure/queue"
	"github.com/99minutos/identity-service/internal/infrastructure/security/password"
	"github.com/99minutos/identity-service/internal/infrastructure/security/token"
)

const shutdownTimeout = 10 * time.Second

// App owns the HTTP server and every resource it depends on.
type App struct {
	cfg        *config.Config
	log        zerolog.Logger
	echo       *echo.Echo
	dispatcher *queue.Dispatcher
	stores     stores
}

// Option customises New.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
}

// WithMetricsRegisterer sends HTTP request metrics to r instead of the
// default Prometheus registry.
func WithMetricsRegisterer(r prometheus.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// New connects the configured store and builds a fully wired App.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	hasher, err := password.NewHasher(cfg.PasswordHasher)
	if err != nil {
		return nil, err
	}

	tokenCfg := token.Config{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.Expiration,
	}
	issuer, err := token.NewIssuer(tokenCfg)
	if err != nil {
		return nil, err
	}
	validator, err := token.NewValidator(tokenCfg)
	if err != nil {
		return nil, err
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	dispatcher := queue.NewDispatcher(cfg.LoginEventWorkers, st.events, log.With().Str("component", "login_events").Logger())
	identity := service.NewIdentityService(st.accounts, hasher, issuer,
		log.With().Str("component", "identity").Logger(),
		service.WithLoginEvents(dispatcher),
	)

	e := api.NewRouter(api.RouterDeps{
		Identity:       identity,
		TokenValidator: validator,
		Health:         map[string]handler.Pinger{cfg.StoreDriver: st.accounts},
		CORSOrigins:    cfg.CORSAllowOrigins,
		EnableSwagger:  cfg.IsDevelopment(),
		Log:            log,
		Registerer:     o.registerer,
	})

	return &App{
		cfg:        cfg,
		log:        log,
		echo:       e,
		dispatcher: dispatcher,
		stores:     st,
	}, nil
}

// Handler exposes the router, mainly for in-process tests.
func (a *App) Handler() http.Handler { return a.echo }

// Run starts the login event workers and the HTTP server, and blocks until
// ctx is cancelled or the server fails. Resources are released on return.
func (a *App) Run(ctx context.Context) error {
	a.dispatcher.Start(ctx)

	addr := net.JoinHostPort("", a.cfg.Port)
	a.log.Info().
		Str("addr", addr).
		Str("store", a.cfg.StoreDriver).
		Str("env", a.cfg.Env).
		Msg("server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		a.log.Error().Err(runErr).Msg("server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("server shutdown failed")
		runErr = errors.Join(runErr, err)
	}
	if err := a.Close(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}

	a.log.Info().Msg("server stopped")
	return runErr
}

// Close drains pending login events and releases the store.
func (a *App) Close(ctx context.Context) error {
	a.dispatcher.Stop()
	if err := a.stores.close(ctx); err != nil {
		a.log.Error().Err(err).Msg("store close failed")
		return err
	}
	return nil
}
