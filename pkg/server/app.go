package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CurvePull/internal/domain/repository"
	"CurvePull/internal/usecase"
	"CurvePull/pkg/cache"
	pkgch "CurvePull/pkg/clickhouse"
	"CurvePull/pkg/config"
	xhttp "CurvePull/pkg/http"
	applogger "CurvePull/pkg/logger"
)

// App encapsulates the entire application lifecycle: an initial panel
// refresh, an optional periodic refresh loop, and the HTTP API.
type App struct {
	cfg        *config.Config
	svc        *usecase.PanelService
	handler    xhttp.Handler
	chClient   *pkgch.Client
	events     repository.RunEvents
	cacheSvc   cache.Service
	l          *applogger.Logger
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	svc *usecase.PanelService,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	events repository.RunEvents,
	cacheSvc cache.Service,
	l *applogger.Logger,
) *App {
	return &App{
		cfg:      cfg,
		svc:      svc,
		handler:  handler,
		chClient: chClient,
		events:   events,
		cacheSvc: cacheSvc,
		l:        l,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Populate the panel before serving: fresh fetch first, stored output
	// as fallback so a source outage does not leave the API empty.
	if err := a.svc.Refresh(ctx); err != nil {
		a.l.Warn("initial refresh failed, loading stored panel", applogger.Error(err))
		if err := a.svc.LoadStored(ctx); err != nil {
			a.l.Warn("no stored panel available", applogger.Error(err))
		}
	}

	if a.cfg.Pipeline.RefreshInterval > 0 {
		go a.refreshLoop(ctx, a.cfg.Pipeline.RefreshInterval)
		a.l.Info("periodic refresh enabled",
			applogger.Duration("interval_ms", a.cfg.Pipeline.RefreshInterval))
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// RunOnce executes a single pipeline refresh and releases resources, for
// cron-style invocations that do not serve HTTP.
func (a *App) RunOnce() error {
	ctx := context.Background()
	err := a.svc.Refresh(ctx)
	a.closeClients()
	return err
}

func (a *App) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.svc.Refresh(ctx); err != nil {
				a.l.Error("scheduled refresh failed", applogger.Error(err))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	a.closeClients()

	a.l.Info("shutdown complete")
	return nil
}

// closeClients releases infrastructure connections.
func (a *App) closeClients() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.l.Warn("event publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.cacheSvc != nil {
		if err := a.cacheSvc.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
		}
	}
}
