package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/plfog/backoffice/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds the graceful shutdown of the HTTP server and the
// scheduler
const ShutdownTimeout = 30 * time.Second

// BillTabsJob is the scheduler name of the periodic tab billing run
const BillTabsJob = "bill-tabs"

// Scheduler returns a scheduler with the bill-tabs job registered, or nil
// when scheduling is disabled
func (a *App) Scheduler() (*scheduler.Scheduler, error) {
	cfg := a.Config.Scheduler
	if !cfg.Enabled {
		return nil, nil
	}
	s := scheduler.New(cfg, a.Logger)
	err := s.Register(BillTabsJob, cfg.BillTabsSchedule, func(ctx context.Context) error {
		_, err := a.Services.Tabs.BillTabs(ctx, io.Discard)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", BillTabsJob, err)
	}
	return s, nil
}

// Serve runs the HTTP server and the scheduler until ctx is cancelled, then
// shuts both down gracefully
func (a *App) Serve(ctx context.Context) error {
	cfg := a.Config
	log := a.Logger

	sched, err := a.Scheduler()
	if err != nil {
		return err
	}
	if sched != nil {
		sched.Start()
		if next, ok := sched.Next(BillTabsJob); ok {
			log.Info("Next tab billing run", zap.Time("at", next))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        a.Engine(),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case serveErr = <-errCh:
		if serveErr != nil {
			log.Error("Server failed", zap.Error(serveErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Warn("Scheduler did not stop cleanly", zap.Error(err))
		}
	}
	log.Info("Server exited")
	return serveErr
}
