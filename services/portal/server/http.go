package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) runHTTPServer(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Config.HTTP.Host, s.Config.HTTP.Port),
		Handler:      s.router,
		ReadTimeout:  s.Config.HTTP.ReadTimeout,
		WriteTimeout: s.Config.HTTP.WriteTimeout,
		IdleTimeout:  s.Config.HTTP.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		s.Logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.HTTP.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.Logger.Error("HTTP server forced shutdown", "error", err)
		}
	}()

	s.Logger.Info("HTTP server started",
		"address", s.httpServer.Addr,
		"read_timeout", s.Config.HTTP.ReadTimeout,
		"write_timeout", s.Config.HTTP.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

type HealthStatus struct {
	Status    string                   `json:"status"`
	Healthy   bool                     `json:"healthy"`
	Services  map[string]string        `json:"services"`
	Details   map[string]ServiceHealth `json:"details,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version,omitempty"`
}

type ServiceHealth struct {
	Status  string `json:"status"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// handleHealth pings the session storage and every attached connection.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := s.HealthCheck(ctx)
	checks["session_storage"] = s.sessions.Storage().Ping(ctx)

	healthy := true
	services := make(map[string]string, len(checks))
	details := make(map[string]ServiceHealth, len(checks))
	for name, err := range checks {
		h := ServiceHealth{Status: "UP", Healthy: true}
		if err != nil {
			healthy = false
			h = ServiceHealth{Status: "DOWN", Message: err.Error()}
		}
		services[name] = h.Status
		details[name] = h
	}

	health := HealthStatus{
		Status:    getOverallStatus(healthy),
		Healthy:   healthy,
		Services:  services,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Version:   s.Config.App.Version,
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, health)
}

func getOverallStatus(healthy bool) string {
	if healthy {
		return "healthy"
	}
	return "unhealthy"
}
