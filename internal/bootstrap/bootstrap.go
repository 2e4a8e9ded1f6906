// Package bootstrap provides application lifecycle helpers.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// App runs a long-lived process with graceful shutdown on SIGINT/SIGTERM.
type App struct {
	mu    sync.Mutex
	hooks []hook
}

// New creates a new App.
func New() *App {
	return &App{}
}

// OnShutdown registers a named cleanup to run during graceful shutdown.
// Hooks run in reverse registration order. Safe for concurrent use.
func (a *App) OnShutdown(name string, fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, hook{name: name, fn: fn})
}

// Run executes run and blocks until it returns or the process receives a
// termination signal, in which case the shutdown hooks run in LIFO order.
func (a *App) Run(ctx context.Context, run func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		return a.shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for i := len(a.hooks) - 1; i >= 0; i-- {
		h := a.hooks[i]
		if err := h.fn(ctx); err != nil {
			slog.Error("shutdown hook failed", slog.String("hook", h.name), slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
