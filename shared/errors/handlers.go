package errors

import (
	"context"
	"log/slog"
	"net/http"

	"carenest/shared/logger"

	"github.com/gin-gonic/gin"
)

type ErrorHandler struct {
	logger *slog.Logger
}

func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// Response structure HTTP
type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// ---- HTTP error handling ----
func (eh *ErrorHandler) HandleGinError(c *gin.Context, err error) {
	requestLogger := logger.FromContext(c.Request.Context(), eh.logger)

	appErr, ok := As(err)
	if !ok {
		eh.LogError(c.Request.Context(), requestLogger, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error:   "Internal server error",
			Code:    "INTERNAL_ERROR",
		})
		return
	}

	eh.LogError(c.Request.Context(), requestLogger, appErr)
	c.JSON(appErr.StatusCode, ErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: appErr.Details,
	})
}

// LogError logs client-side problems at warn and infrastructure failures at error.
func (eh *ErrorHandler) LogError(ctx context.Context, logger *slog.Logger, err error) {
	if logger == nil {
		logger = eh.logger
	}
	if appErr, ok := As(err); ok {
		logLevel := slog.LevelWarn
		if appErr.Type == ErrorTypeInternal || appErr.Type == ErrorTypeStorage {
			logLevel = slog.LevelError
		}

		logAttrs := []slog.Attr{
			slog.String("error_type", appErr.Type.String()),
			slog.String("error_code", appErr.Code),
			slog.Int("status", appErr.StatusCode),
		}
		if len(appErr.Details) > 0 {
			logAttrs = append(logAttrs, slog.Any("details", appErr.Details))
		}
		if appErr.Cause != nil {
			logAttrs = append(logAttrs, slog.String("cause", appErr.Cause.Error()))
		}

		logger.LogAttrs(ctx, logLevel, appErr.Message, logAttrs...)
		return
	}

	logger.ErrorContext(ctx, "Unexpected error occurred", slog.Any("error", err))
}
