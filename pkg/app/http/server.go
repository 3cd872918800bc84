package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/goonhub/goonhub/pkg/config"
)

// ServeAndWait binds cfg's address and serves handler until ctx is done.
// Bind failures are returned before anything is served.
func ServeAndWait(ctx context.Context, handler http.Handler, logger *zap.Logger, cfg *config.ServerConfig) error {
	if cfg == nil {
		return fmt.Errorf("nil server config")
	}

	addr := net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return Serve(ctx, ln, handler, logger, cfg)
}

// Serve runs handler on ln until ctx is canceled or the server fails, then
// drains in-flight requests for at most cfg.ShutdownTimeout. ln is closed
// on return.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *zap.Logger, cfg *config.ServerConfig) error {
	if handler == nil {
		_ = ln.Close()
		return fmt.Errorf("nil handler")
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	served := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("address", ln.Addr().String()))
		served <- srv.Serve(ln)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case serveErr = <-served:
		if errors.Is(serveErr, http.ErrServerClosed) {
			serveErr = nil
		}
		if serveErr != nil {
			logger.Error("HTTP server error", zap.Error(serveErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	logger.Info("Draining HTTP server", zap.Duration("timeout", cfg.ShutdownTimeout))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if serveErr != nil {
		return fmt.Errorf("http server failed: %w", serveErr)
	}

	logger.Info("HTTP server stopped")
	return nil
}
