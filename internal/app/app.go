package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/you/dairyshell/internal/config"
)

const shutdownTimeout = 5 * time.Second

// Run hydrates the session once and serves the control API until ctx ends
func Run(ctx context.Context, cfg *config.Config) error {
	c, err := NewContainer(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// storage problems hydrate to a guest session; only a repeated call errors
	if err := c.Session.Hydrate(ctx); err != nil {
		return fmt.Errorf("failed to hydrate session: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           c.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		c.Log.WithField("addr", cfg.ListenAddr).Info("Control API listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
