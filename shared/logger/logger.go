package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	config "carenest/shared"

	"github.com/fatih/color"
)

// Context keys for request tracing
const (
	ServiceNameKey = "service"
	RequestIDKey   = "request_id"
	UserIDKey      = "user_id"
)

type ctxKey struct{}

// PrettyHandler writes one coloured header line per record followed by an
// indented, sorted attribute block.
type PrettyHandler struct {
	out   io.Writer
	level slog.Leveler
	attrs []slog.Attr
	mu    *sync.Mutex
}

var (
	once     sync.Once
	instance *slog.Logger
)

func init() {
	color.NoColor = false
}

func Get(cfg config.LogConfig) *slog.Logger {
	once.Do(func() {
		instance = New(cfg)
	})
	return instance
}

func NewPrettyHandler(out io.Writer, level slog.Leveler) *PrettyHandler {
	return &PrettyHandler{out: out, level: level, mu: &sync.Mutex{}}
}

func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	var levelColor func(format string, a ...any) string
	switch r.Level {
	case slog.LevelDebug:
		levelColor = color.New(color.FgCyan).SprintfFunc()
	case slog.LevelInfo:
		levelColor = color.New(color.FgGreen).SprintfFunc()
	case slog.LevelWarn:
		levelColor = color.New(color.FgYellow).SprintfFunc()
	case slog.LevelError:
		levelColor = color.New(color.FgRed).SprintfFunc()
	default:
		levelColor = color.New(color.FgWhite).SprintfFunc()
	}

	timeColor := color.New(color.FgWhite, color.Faint).SprintFunc()
	timestamp := timeColor(r.Time.Format("2006/01/02 15:04:05"))

	var service, requestID, userID string
	attrs := map[string]any{}

	collect := func(a slog.Attr) bool {
		switch a.Key {
		case ServiceNameKey:
			service = a.Value.String()
		case RequestIDKey:
			requestID = a.Value.String()
		case UserIDKey:
			userID = a.Value.String()
		case "time", "level":
		default:
			attrs[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	header := fmt.Sprintf("%s %s", timestamp, levelColor("%-5s", r.Level.String()))

	var contextParts []string
	if service != "" {
		contextParts = append(contextParts, fmt.Sprintf("svc:%s", service))
	}
	if requestID != "" {
		contextParts = append(contextParts, fmt.Sprintf("rid:%s", requestID))
	}
	if userID != "" {
		contextParts = append(contextParts, fmt.Sprintf("uid:%s", userID))
	}
	contextStr := ""
	if len(contextParts) > 0 {
		contextStr = "[" + strings.Join(contextParts, " ") + "] "
	}

	msg := fmt.Sprintf("%s %s%s", header, contextStr, r.Message)

	if len(attrs) > 0 {
		attrLines := []string{}
		for k, v := range attrs {
			attrLines = append(attrLines, fmt.Sprintf("    %-12s: %v", k, v))
		}
		sort.Strings(attrLines)
		msg += "\n" + strings.Join(attrLines, "\n")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.out, msg)
	return err
}

func (h *PrettyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PrettyHandler{out: h.out, level: h.level, attrs: merged, mu: h.mu}
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	return h
}

// New creates a new structured logger
func New(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	out := output(cfg)

	var handler slog.Handler
	if cfg.Format == "pretty" {
		handler = NewPrettyHandler(out, level)
	} else {
		// Production JSON format
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler).With(
		slog.String("app", "carenest"),
	)
}

func output(cfg config.LogConfig) io.Writer {
	switch cfg.Output {
	case "stderr":
		return os.Stderr
	case "file":
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot open log file %s, using stdout: %v\n", cfg.File, err)
			return os.Stdout
		}
		return f
	default:
		return os.Stdout
	}
}

// WithService adds service context to logger
func WithService(logger *slog.Logger, serviceName string) *slog.Logger {
	return logger.With(slog.String(ServiceNameKey, serviceName))
}

// WithRequestID adds request ID to logger
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With(slog.String(RequestIDKey, requestID))
}

// FromContext extracts logger from context or returns default
func FromContext(ctx context.Context, defaultLogger *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return defaultLogger
}

// ToContext adds logger to context
func ToContext(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}
