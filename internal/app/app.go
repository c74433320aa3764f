package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"patrolarena/internal/config"
	servernet "patrolarena/internal/net"
	"patrolarena/internal/sim"
	"patrolarena/internal/telemetry"
)

// Run wires the server together and blocks until the context is canceled:
// logger, room manager, HTTP surface, shutdown.
func Run(ctx context.Context, cfg config.Config) error {
	cfg = cfg.Normalized()

	log, err := telemetry.NewLogger(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	manager := sim.NewManager(cfg.Room, log)
	defer manager.StopAll()

	// Pre-create the default room so the first connection pays no setup.
	manager.GetOrCreate("room-1")

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: servernet.NewHandler(manager, log),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
