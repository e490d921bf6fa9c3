// Package graphdb owns the process-wide Neo4j driver: it opens it lazily on
// first use, retries while the server is still starting, and closes it once
// on shutdown.
package graphdb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/sync/singleflight"
)

// Settings identifies the Neo4j server and database to use.
type Settings struct {
	URI      string
	Username string
	Password string
	Database string
}

// DriverFactory creates a driver without contacting the server.
type DriverFactory func(uri string, auth neo4j.AuthToken) (neo4j.DriverWithContext, error)

func newNeo4jDriver(uri string, auth neo4j.AuthToken) (neo4j.DriverWithContext, error) {
	return neo4j.NewDriverWithContext(uri, auth)
}

// Option customizes a Manager.
type Option func(*Manager)

// WithRetryPolicy replaces the default connect retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithDriverFactory replaces neo4j.NewDriverWithContext.
func WithDriverFactory(f DriverFactory) Option {
	return func(m *Manager) { m.newDriver = f }
}

// WithLogger sets the logger used for connect attempts.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Manager hands out a single shared driver. It is safe for concurrent use.
type Manager struct {
	settings  Settings
	policy    RetryPolicy
	newDriver DriverFactory
	logger    *log.Logger

	group singleflight.Group

	mu     sync.Mutex
	driver neo4j.DriverWithContext
	closed bool
}

// NewManager returns a Manager that has not connected yet.
func NewManager(settings Settings, opts ...Option) *Manager {
	m := &Manager{
		settings:  settings,
		policy:    DefaultRetryPolicy(),
		newDriver: newNeo4jDriver,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Database is the configured database name; empty means the server default.
func (m *Manager) Database() string {
	return m.settings.Database
}

// Get returns the shared driver, connecting on first use. Concurrent first
// callers share one connect sequence. A failed sequence is not cached, so the
// next call tries again.
func (m *Manager) Get(ctx context.Context) (neo4j.DriverWithContext, error) {
	if d, err := m.current(); d != nil || err != nil {
		return d, err
	}

	v, err, _ := m.group.Do("connect", func() (any, error) {
		if d, err := m.current(); d != nil || err != nil {
			return d, err
		}

		d, err := m.connect(ctx)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed {
			_ = d.Close(ctx)
			return nil, ErrClosed
		}
		m.driver = d
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(neo4j.DriverWithContext), nil
}

// Connected reports whether a driver has been established and not closed.
func (m *Manager) Connected() bool {
	d, _ := m.current()
	return d != nil
}

// Ping verifies connectivity of the established driver. It never connects:
// before the first Get it returns ErrNotConnected.
func (m *Manager) Ping(ctx context.Context) error {
	d, err := m.current()
	if err != nil {
		return err
	}
	if d == nil {
		return ErrNotConnected
	}
	return d.VerifyConnectivity(ctx)
}

// Close closes the shared driver. Only the first call has an effect; every
// later Get fails with ErrClosed.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	d := m.driver
	m.driver = nil
	m.mu.Unlock()

	if d == nil {
		return nil
	}
	if err := d.Close(ctx); err != nil {
		return fmt.Errorf("close neo4j driver: %w", err)
	}
	m.logger.Info("Neo4j connection closed")
	return nil
}

func (m *Manager) current() (neo4j.DriverWithContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.driver, nil
}

func (m *Manager) connect(ctx context.Context) (neo4j.DriverWithContext, error) {
	m.logger.Info("Attempting to connect to Neo4j", "uri", m.settings.URI)

	auth := neo4j.BasicAuth(m.settings.Username, m.settings.Password, "")

	var driver neo4j.DriverWithContext
	op := func(attempt int) error {
		d, err := m.newDriver(m.settings.URI, auth)
		if err != nil {
			return fmt.Errorf("create neo4j driver: %w", err)
		}
		if err := d.VerifyConnectivity(ctx); err != nil {
			_ = d.Close(ctx)
			return err
		}
		driver = d
		return nil
	}
	notify := func(attempt int, err error) {
		m.logger.Warn("Neo4j is not ready, retrying",
			"attempt", attempt,
			"left", m.policy.MaxAttempts-attempt,
			"delay", m.policy.Delay,
			"err", err)
	}

	err := m.policy.Do(ctx, op, notify)

	var exhausted *RetryExhaustedError
	switch {
	case err == nil:
		m.logger.Info("Successfully connected to Neo4j", "uri", m.settings.URI)
		return driver, nil
	case errors.As(err, &exhausted):
		m.logger.Error("Could not connect to Neo4j after all retries", "attempts", exhausted.Attempts, "err", exhausted.Err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		m.logger.Error("Failed to connect to Neo4j", "err", err)
		return nil, fmt.Errorf("connect to neo4j: %w", err)
	}
}
