package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Func shuts down one component
type Func func(context.Context) error

type component struct {
	name string
	fn   Func
}

// Manager coordinates graceful shutdown. Components shut down in reverse
// registration order, so register the database first and the HTTP servers
// and workers after it.
type Manager struct {
	logger     *zap.Logger
	components []component
	mu         sync.Mutex
	timeout    time.Duration
}

// NewManager creates a new shutdown manager
func NewManager(logger *zap.Logger, timeout time.Duration) *Manager {
	return &Manager{
		logger:  logger,
		timeout: timeout,
	}
}

// Register adds a shutdown function. Registration order matters: last
// registered shuts down first.
func (m *Manager) Register(name string, fn Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, fn: fn})
}

// RegisterHTTPServer registers an HTTP server for graceful shutdown
func (m *Manager) RegisterHTTPServer(name string, server interface{ Shutdown(context.Context) error }) {
	m.Register(name, server.Shutdown)
}

// RegisterCloser registers a component with a Close() error method
func (m *Manager) RegisterCloser(name string, closer interface{ Close() error }) {
	m.Register(name, func(context.Context) error {
		return closer.Close()
	})
}

// RegisterNoErr registers a shutdown function that cannot fail
func (m *Manager) RegisterNoErr(name string, fn func()) {
	m.Register(name, func(context.Context) error {
		fn()
		return nil
	})
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then runs Shutdown
func (m *Manager) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	m.logger.Info("received shutdown signal",
		zap.String("signal", sig.String()),
		zap.Duration("timeout", m.timeout),
	)

	m.Shutdown()
}

// Shutdown runs all registered shutdown functions in reverse order within
// the configured timeout
func (m *Manager) Shutdown() {
	m.mu.Lock()
	components := make([]component, len(m.components))
	copy(components, m.components)
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	start := time.Now()
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		compStart := time.Now()
		if err := c.fn(ctx); err != nil {
			m.logger.Error("component shutdown failed",
				zap.String("component", c.name),
				zap.Error(err),
			)
			continue
		}
		m.logger.Info("component shut down",
			zap.String("component", c.name),
			zap.Duration("elapsed", time.Since(compStart)),
		)
		if ctx.Err() != nil {
			m.logger.Warn("shutdown timeout exceeded", zap.Duration("timeout", m.timeout))
			return
		}
	}

	m.logger.Info("graceful shutdown complete", zap.Duration("elapsed", time.Since(start)))
}
