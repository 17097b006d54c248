package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-quiz/internal/config"
	"github.com/gokatarajesh/trivia-quiz/internal/logging"
	"github.com/gokatarajesh/trivia-quiz/internal/metrics"
	"github.com/gokatarajesh/trivia-quiz/internal/server"
	"github.com/gokatarajesh/trivia-quiz/internal/session"
	ws "github.com/gokatarajesh/trivia-quiz/pkg/http/ws"
)

// Application aggregates shared infrastructure (question source, sessions, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	provider *Provider
	sessions *session.Manager
	http     *http.Server

	sweepWorker *session.SweepWorker
	bgCancels   []context.CancelFunc
}

// Options overrides process-wide defaults, mainly for tests.
type Options struct {
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Logger     *zerolog.Logger
}

// New bootstraps logger, metrics, the question provider, the session registry and HTTP server.
func New(ctx context.Context, cfg *config.App, opts Options) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	logger.Info().Msg("starting application bootstrap")

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	appMetrics := metrics.New(registerer)

	provider := NewProvider(cfg, appMetrics, logger)
	if provider.Redis != nil {
		if err := provider.Redis.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable; question cache will fall through to upstream")
		}
	}

	manager := session.NewManager(provider, session.Options{
		FetchTimeout: cfg.Trivia.FetchTimeout,
		IdleTTL:      cfg.Sessions.IdleTTL,
		MaxSessions:  cfg.Sessions.MaxSessions,
		Observer:     appMetrics,
		Tracker:      appMetrics,
	}, logger)

	hub := ws.NewHub(logger)
	sockets := server.NewWSHandler(manager, hub, server.NewUpgrader(cfg.CORS.AllowedOrigins), logger)
	rest := server.NewSessionHandlers(manager, logger)
	apiServer := server.NewHTTPServer(cfg, logger, opts.Gatherer, rest, sockets)

	return &Application{
		cfg:         cfg,
		logger:      logger,
		provider:    provider,
		sessions:    manager,
		http:        apiServer,
		sweepWorker: session.NewSweepWorker(manager, cfg.Sessions.SweepInterval, logger),
		bgCancels:   make([]context.CancelFunc, 0, 1),
	}, nil
}

// Handler exposes the routed HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.http.Handler
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	a.shutdown()
	return runErr
}

func (a *Application) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.sessions.CloseAll()
	a.sessions.Wait()

	if err := a.provider.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.sweepWorker == nil {
		return
	}
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go func() {
		if err := a.sweepWorker.Run(bgCtx); err != nil && err != context.Canceled {
			a.logger.Warn().Err(err).Msg("session sweep worker stopped")
		}
	}()
}
