package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"carenest/services/portal/apiclient"
	"carenest/services/portal/session"
	"carenest/shared/errors"
	base "carenest/shared/server"
)

type Server struct {
	*base.BaseServer
	errorHandler *errors.ErrorHandler

	httpServer *http.Server
	router     *gin.Engine

	sessions      *session.Manager
	identity      *apiclient.Identity
	bookings      *apiclient.Bookings
	verifications *apiclient.Verifications
}

// NewServer wires the API clients and routes. opts are applied to every
// API client.
func NewServer(bs *base.BaseServer, storage session.Storage, opts ...apiclient.Option) (*Server, error) {
	s := &Server{
		BaseServer:   bs,
		errorHandler: errors.NewErrorHandler(bs.Logger),
		sessions:     session.NewManager(storage, session.NewCookies(bs.Config.Session)),
	}

	if err := s.initializeClients(opts...); err != nil {
		return nil, fmt.Errorf("initialization failed: %w", err)
	}
	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("route setup failed: %w", err)
	}
	return s, nil
}

func (s *Server) initializeClients(opts ...apiclient.Option) error {
	clients := []struct {
		name    string
		segment string
		init    func(*apiclient.Client)
	}{
		{name: "identity", segment: "user", init: func(c *apiclient.Client) {
			s.identity = apiclient.NewIdentity(c)
		}},
		{name: "bookings", segment: "bookings", init: func(c *apiclient.Client) {
			s.bookings = apiclient.NewBookings(c)
		}},
		{name: "verifications", segment: "verifications", init: func(c *apiclient.Client) {
			s.verifications = apiclient.NewVerifications(c)
		}},
	}

	for _, cl := range clients {
		url := s.Config.ServiceURL(cl.segment)
		c, err := apiclient.New(cl.name, url, s.Config.API.Timeout, s.Logger, opts...)
		if err != nil {
			return fmt.Errorf("create %s client: %w", cl.name, err)
		}
		cl.init(c)
		s.Logger.Debug("API client ready", slog.String("client", cl.name), slog.String("base_url", url))
	}
	return nil
}

// Router exposes the configured engine, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Start serves until ctx ends or a shutdown signal arrives, then closes the
// storage connections.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.Logger.Info("Starting portal",
		"environment", s.Config.App.Environment,
		"HTTP port", s.Config.HTTP.Port,
		"session_backend", s.Config.Session.Backend,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.runHTTPServer(ctx)
	})
	go s.WaitForShutdownSignal(ctx, cancel)

	err := g.Wait()

	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), s.Config.HTTP.ShutdownTimeout)
	defer cleanupCancel()
	s.Cleanup(cleanupCtx)

	return err
}
