package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_WithComponentReplacesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Handler: slog.NewTextHandler(&buf, nil)})

	logger.WithComponent(ComponentScope).Info("selection changed", FieldSelection, "all")

	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, "component="))
	assert.Contains(t, line, "component=scope")
	assert.Contains(t, line, "selection=all")
}

func TestLogger_LogError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Handler: slog.NewTextHandler(&buf, nil), Component: ComponentUpstream})

	logger.LogError(context.Background(), "fetch failed", errors.New("boom"), "network_error", NewFields().WithOperation(OpFetch))

	line := buf.String()
	assert.Contains(t, line, "level=ERROR")
	assert.Contains(t, line, "error=boom")
	assert.Contains(t, line, "error_type=network_error")
	assert.Contains(t, line, "operation=fetch")
	assert.Contains(t, line, "component=upstream")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}
