package server

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cfg "carenest/shared"
	"carenest/shared/connection"
)

// BaseServer carries what every CareNest process shares: config, logger and
// the optional storage connections it must close on the way out.
type BaseServer struct {
	Name   string
	Config *cfg.Config
	Logger *slog.Logger

	// optional dependencies (nil if not used)
	MongoMgr *connection.MongoManager
	RedisMgr *connection.RedisManager
}

type ServerOption func(*BaseServer) error

// NewBaseServer create a new BaseServer with optional dependencies
func NewBaseServer(name string, cfg *cfg.Config, logger *slog.Logger, opts ...ServerOption) (*BaseServer, error) {
	s := &BaseServer{
		Name:   name,
		Config: cfg,
		Logger: logger.With(slog.String("service", name)),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ============================================================================
// Dependencies injection options
// ============================================================================

func WithMongoManager(mgr *connection.MongoManager) ServerOption {
	return func(s *BaseServer) error {
		if mgr == nil {
			return nil
		}
		s.MongoMgr = mgr
		s.Logger.Info("MongoDB attached")
		return nil
	}
}

func WithRedisManager(mgr *connection.RedisManager) ServerOption {
	return func(s *BaseServer) error {
		if mgr == nil {
			return nil
		}
		s.RedisMgr = mgr
		s.Logger.Info("Redis attached")
		return nil
	}
}

// HealthCheck pings every attached connection. The map is keyed by
// dependency name; a nil value means healthy.
func (s *BaseServer) HealthCheck(ctx context.Context) map[string]error {
	out := make(map[string]error)
	if s.MongoMgr != nil {
		out["mongodb"] = s.MongoMgr.HealthCheck(ctx)
	}
	if s.RedisMgr != nil {
		out["redis"] = s.RedisMgr.HealthCheck(ctx)
	}
	return out
}

// ============================================================================
// shutdown utils
// ============================================================================

func (s *BaseServer) Cleanup(ctx context.Context) {
	s.Logger.Info("Cleaning up resources...")

	if s.MongoMgr != nil {
		if err := s.MongoMgr.Disconnect(ctx); err != nil {
			s.Logger.Error("Error closing MongoDB", "error", err)
		} else {
			s.Logger.Info("MongoDB connection closed")
		}
	}

	if s.RedisMgr != nil {
		if err := s.RedisMgr.Disconnect(); err != nil {
			s.Logger.Error("Error closing Redis", "error", err)
		} else {
			s.Logger.Info("Redis connection closed")
		}
	}

	s.Logger.Info("Cleanup completed")
}

// WaitForShutdownSignal cancels on SIGINT/SIGTERM, or returns when ctx ends
// first.
func (s *BaseServer) WaitForShutdownSignal(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		s.Logger.Info("Received shutdown signal", "signal", sig.String())
		cancel()
	case <-ctx.Done():
	}
}
