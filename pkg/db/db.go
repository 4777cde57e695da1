package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"portfolio/pkg/config"
)

// ErrClosed is returned once the manager has been shut down.
var ErrClosed = errors.New("db: manager closed")

// Manager owns the process-wide document store client. The client is
// created on first use and reused for the lifetime of the process; a
// failed attempt leaves nothing behind so the next caller retries.
type Manager struct {
	cfg     config.MongoConfig
	logger  *zap.Logger
	monitor *CommandMonitor

	mu     sync.Mutex
	client *mongo.Client
	closed bool
}

func NewManager(cfg config.MongoConfig, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		logger:  logger,
		monitor: NewCommandMonitor(logger, cfg.SlowQueryThreshold),
	}
}

// Client returns the shared client, connecting if there is none yet.
func (m *Manager) Client(ctx context.Context) (*mongo.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if m.client != nil {
		return m.client, nil
	}

	m.logger.Info("Initializing document store client",
		zap.String("database", m.cfg.Database),
	)

	opts := options.Client().
		ApplyURI(m.cfg.URI).
		SetMonitor(m.monitor.Monitor())
	if m.cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(m.cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(m.cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		m.logger.Error("Document store connect failed", zap.Error(err))
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	m.client = client
	return client, nil
}

// Database returns the configured database on the shared client.
func (m *Manager) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := m.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(m.cfg.Database), nil
}

// Collection returns a handle on the named collection.
func (m *Manager) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	database, err := m.Database(ctx)
	if err != nil {
		return nil, err
	}
	return database.Collection(name), nil
}

// Ping checks the primary is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	client, err := m.Client(ctx)
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping: %w", err)
	}
	return nil
}

// Close disconnects the client if one was created. Later calls to Client
// fail with ErrClosed.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.client == nil {
		return nil
	}
	err := m.client.Disconnect(ctx)
	m.client = nil
	return err
}
