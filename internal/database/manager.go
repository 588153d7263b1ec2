// Package database owns the process's single Postgres handle.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrMissingDSN is returned when no connection string is configured.
	ErrMissingDSN = errors.New("database: DATABASE_URL is missing")
	// ErrConnect wraps the failure of an underlying connection attempt.
	ErrConnect = errors.New("database: connection failed")
)

const connectKey = "connect"

// OpenFunc establishes a live handle for dsn.
type OpenFunc func(ctx context.Context, dsn string) (*sql.DB, error)

// Options configures a Manager.
type Options struct {
	DSN             string
	ConnectTimeout  time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// Open overrides how connections are established. Defaults to lib/pq + ping.
	Open OpenFunc
}

// Manager lazily creates one *sql.DB and hands the same handle to every caller.
// Concurrent callers that arrive while a connection attempt is in flight wait for
// that attempt instead of starting their own.
type Manager struct {
	opts   Options
	logger *slog.Logger

	group singleflight.Group

	mu sync.RWMutex
	db *sql.DB
}

// NewManager returns a Manager. No connection is made until Connect is called.
func NewManager(opts Options, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	m := &Manager{opts: opts, logger: logger}
	if m.opts.Open == nil {
		m.opts.Open = m.openPostgres
	}
	return m
}

// Connect returns the cached handle, or establishes it.
func (m *Manager) Connect(ctx context.Context) (*sql.DB, error) {
	if db := m.cached(); db != nil {
		return db, nil
	}
	if m.opts.DSN == "" {
		return nil, ErrMissingDSN
	}

	// The attempt is shared, so it must not die with the first caller's request.
	attemptCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(connectKey, func() (any, error) {
		if db := m.cached(); db != nil {
			return db, nil
		}
		openCtx, cancel := context.WithTimeout(attemptCtx, m.opts.ConnectTimeout)
		defer cancel()

		db, err := m.opts.Open(openCtx, m.opts.DSN)
		if err != nil {
			m.logger.Error("database connection error", "err", err)
			return nil, fmt.Errorf("%w: %v", ErrConnect, err)
		}
		m.mu.Lock()
		m.db = db
		m.mu.Unlock()
		m.logger.Info("database connected")
		return db, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*sql.DB), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ping checks that the database is reachable, connecting first if needed.
func (m *Manager) Ping(ctx context.Context) error {
	db, err := m.Connect(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Close releases the handle. A later Connect opens a new one.
func (m *Manager) Close() error {
	m.mu.Lock()
	db := m.db
	m.db = nil
	m.mu.Unlock()
	if db == nil {
		return nil
	}
	return db.Close()
}

func (m *Manager) cached() *sql.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

func (m *Manager) openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if m.opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(m.opts.MaxOpenConns)
	}
	if m.opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(m.opts.MaxIdleConns)
	}
	if m.opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(m.opts.ConnMaxLifetime)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
