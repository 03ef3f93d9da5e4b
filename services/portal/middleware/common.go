package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carenest/services/portal/models"
	apperrors "carenest/shared/errors"
	"carenest/shared/logger"
)

const requestIDHeader = "X-Request-ID"

func Recovery(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				// A broken connection is not worth a stack trace.
				var brokenPipe bool
				if ne, ok := err.(*net.OpError); ok {
					var se *os.SyscallError
					if errors.As(ne.Err, &se) {
						msg := strings.ToLower(se.Error())
						if strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer") {
							brokenPipe = true
						}
					}
				}

				httpRequest, _ := httputil.DumpRequest(c.Request, false)
				if brokenPipe {
					log.Error("Broken pipe",
						slog.String("path", c.Request.URL.Path),
						slog.Any("error", err),
						slog.String("request", string(httpRequest)),
					)
					c.Abort()
					return
				}

				log.Error("Panic recovered",
					slog.Any("error", err),
					slog.String("request", string(httpRequest)),
					slog.String("stack", string(debug.Stack())),
				)

				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
						Error:   "Internal server error",
						Success: false,
					})
				}
			}
		}()
		c.Next()
	}
}

// RequestLogger tags every request with an id, puts a request-scoped logger
// into the context and logs the outcome.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		reqLogger := logger.WithRequestID(log, requestID)
		c.Request = c.Request.WithContext(logger.ToContext(c.Request.Context(), reqLogger))

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		logger.FromContext(c.Request.Context(), reqLogger).Log(c.Request.Context(), level, "HTTP request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("client_ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
			slog.Int("body_size", c.Writer.Size()),
		)
	}
}

// GinErrorMiddleware renders the last error attached with c.Error when the
// handler wrote nothing itself.
func GinErrorMiddleware(eh *apperrors.ErrorHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		eh.HandleGinError(c, c.Errors.Last().Err)
	}
}

// LimitBody rejects requests whose body is larger than limit. A declared
// Content-Length over the limit is refused before the body is read; anything
// else is cut off by http.MaxBytesReader.
func LimitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.Error(apperrors.NewPayloadTooLargeError(uploadTooLargeMessage(limit)))
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from a LimitBody cut-off.
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// BodyTooLarge is the error for a body IsBodyTooLarge rejected.
func BodyTooLarge(err error) *apperrors.AppError {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return apperrors.NewPayloadTooLargeError(uploadTooLargeMessage(mbe.Limit))
	}
	return apperrors.NewPayloadTooLargeError("Upload is too large")
}

func uploadTooLargeMessage(limit int64) string {
	return fmt.Sprintf("Upload is too large. The limit is %dMB", limit>>20)
}
