package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyHandlerHeaderAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, slog.LevelInfo))
	log = WithRequestID(WithService(log, "portal"), "req-1")

	log.Info("Login succeeded", "role", "caregiver", "attempts", 1)

	out := buf.String()
	assert.Contains(t, out, "[svc:portal rid:req-1]")
	assert.Contains(t, out, "Login succeeded")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if assert.Len(t, lines, 3) {
		assert.Contains(t, lines[1], "attempts")
		assert.Contains(t, lines[2], "role")
		assert.Contains(t, lines[2], "caregiver")
	}
}

func TestPrettyHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, slog.LevelWarn))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestContextRoundTrip(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	scoped := fallback.With(UserIDKey, "42")

	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	ctx := ToContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx, fallback))
}
