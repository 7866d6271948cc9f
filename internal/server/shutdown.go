package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/config"
)

const shutdownHookTimeout = 10 * time.Second

type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

// GracefulServer owns the HTTP server lifecycle: it serves until its context
// ends, then drains connections and runs the registered shutdown hooks.
type GracefulServer struct {
	server *http.Server
	logger *slog.Logger
	config config.ServerConfig

	mu    sync.Mutex
	hooks []shutdownHook
}

func NewGracefulServer(server *http.Server, logger *slog.Logger, config config.ServerConfig) *GracefulServer {
	return &GracefulServer{server: server, logger: logger, config: config}
}

// RegisterShutdownHook adds fn to the hooks run concurrently with connection
// draining. Each hook gets its own timeout within the overall shutdown budget.
func (gs *GracefulServer) RegisterShutdownHook(name string, fn func(ctx context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, shutdownHook{name: name, fn: fn})
}

// ListenAndServe serves on the configured address until SIGINT or SIGTERM.
func (gs *GracefulServer) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", gs.server.Addr, err)
	}
	return gs.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down gracefully.
func (gs *GracefulServer) Serve(ctx context.Context, ln net.Listener) error {
	served := make(chan error, 1)
	go func() {
		gs.logger.Info("listening", "addr", ln.Addr().String())
		served <- gs.server.Serve(ln)
	}()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	gs.logger.Info("shutting down", "cause", context.Cause(ctx), "timeout", gs.config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gs.config.ShutdownTimeout)
	defer cancel()

	err := gs.shutdown(shutdownCtx)
	<-served
	return err
}

func (gs *GracefulServer) shutdown(ctx context.Context) error {
	gs.mu.Lock()
	hooks := slices.Clone(gs.hooks)
	gs.mu.Unlock()

	var (
		g      errgroup.Group
		errMu  sync.Mutex
		failed []error
	)
	record := func(err error) {
		errMu.Lock()
		failed = append(failed, err)
		errMu.Unlock()
	}

	// Every hook runs to completion even if another fails, so failures are
	// collected rather than returned through the group.
	for _, h := range hooks {
		g.Go(func() error {
			hookCtx, cancel := context.WithTimeout(ctx, shutdownHookTimeout)
			defer cancel()
			if err := h.fn(hookCtx); err != nil {
				gs.logger.Error("shutdown hook failed", "hook", h.name, "error", err)
				record(fmt.Errorf("shutdown hook %q: %w", h.name, err))
			}
			return nil
		})
	}
	g.Go(func() error {
		if err := gs.server.Shutdown(ctx); err != nil {
			record(fmt.Errorf("http shutdown: %w", err))
		}
		return nil
	})

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
		errMu.Lock()
		defer errMu.Unlock()
		if len(failed) == 0 {
			gs.logger.Info("shutdown complete")
		}
		return errors.Join(failed...)
	case <-ctx.Done():
		gs.logger.Warn("shutdown timed out, closing connections")
		_ = gs.server.Close()
		return ctx.Err()
	}
}
