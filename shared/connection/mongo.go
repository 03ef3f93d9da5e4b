package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	cfg "carenest/shared"
)

type MongoManager struct {
	client   *mongo.Client
	database *mongo.Database
	config   *cfg.MongoConfig
	logger   *slog.Logger
	mu       sync.RWMutex
}

func NewMongoManager(cfg *cfg.MongoConfig, logger *slog.Logger) *MongoManager {
	return &MongoManager{
		config: cfg,
		logger: logger.With(slog.String("component", "mongo")),
	}
}

// create MongoDB connection
func (m *MongoManager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		if err := m.client.Ping(ctx, readpref.Primary()); err == nil {
			m.logger.Debug("MongoDB connection already established")
			return nil
		}
		_ = m.client.Disconnect(ctx)
	}

	// client settings
	clientOptions := options.Client().
		ApplyURI(m.config.URI).
		SetMaxPoolSize(m.config.MaxPoolSize).
		SetMinPoolSize(m.config.MinPoolSize).
		SetServerSelectionTimeout(m.config.ServerSelection).
		SetConnectTimeout(m.config.ConnectTimeout)

	// client creation
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	// check conn
	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return client.Ping(pingCtx, readpref.Primary())
	}
	notify := func(err error, wait time.Duration) {
		m.logger.Warn("MongoDB ping failed, retrying", "error", err, "wait", wait)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m.client = client
	m.database = client.Database(m.config.Database)

	m.logger.Info("Successfully connected to MongoDB", "database", m.config.Database)
	return nil
}

// Disconnection from MongoDB
func (m *MongoManager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}

	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}

	m.client = nil
	m.database = nil
	m.logger.Info("MongoDB connection closed")
	return nil
}

func (m *MongoManager) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	client := m.client
	m.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return client.Ping(ctx, readpref.Primary())
}

// Get database instance
func (m *MongoManager) GetDatabase() *mongo.Database {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.database
}
