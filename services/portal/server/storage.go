package server

import (
	"context"
	"fmt"
	"log/slog"

	"carenest/services/portal/session"
	config "carenest/shared"
	"carenest/shared/connection"
	base "carenest/shared/server"
)

// OpenStorage connects the configured session backend. The returned options
// attach its connection manager to the base server so shutdown closes it.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Storage, []base.ServerOption, error) {
	switch cfg.Session.Backend {
	case "redis":
		mgr := connection.NewRedisManager(&cfg.Redis, logger)
		if err := mgr.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		storage := session.NewRedisStorage(mgr.GetClient(), cfg.Session.TTL)
		return storage, []base.ServerOption{base.WithRedisManager(mgr)}, nil

	case "mongo":
		mgr := connection.NewMongoManager(&cfg.Mongo, logger)
		if err := mgr.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		storage := session.NewMongoStorage(mgr.GetDatabase(), cfg.Mongo.Collection, cfg.Session.TTL)
		if err := storage.EnsureIndexes(ctx); err != nil {
			_ = mgr.Disconnect(ctx)
			return nil, nil, fmt.Errorf("ensure session indexes: %w", err)
		}
		return storage, []base.ServerOption{base.WithMongoManager(mgr)}, nil

	default:
		logger.Warn("Using in-memory session storage; sessions are lost on restart")
		return session.NewMemoryStorage(), nil, nil
	}
}
