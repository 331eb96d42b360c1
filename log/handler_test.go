package log_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/log"
)

func TestHandler_WritesSingleLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(log.NewHandler(&buf))

	logger.Info("action denied", "kind", "file-write", "reason", "CapabilityDisabled")

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "action denied")
	assert.Contains(t, line, "kind=file-write")
	assert.Contains(t, line, "reason=CapabilityDisabled")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(log.NewHandler(&buf, log.WithLevel(slog.LevelWarn)))

	logger.Info("dropped")
	logger.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(log.NewHandler(&buf)).With("component", "gate")

	logger.Info("executed")

	assert.Contains(t, buf.String(), "component=gate")
}

func TestHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(log.NewHandler(&buf)).WithGroup("request")

	logger.Info("received", "id", "r1")

	assert.Contains(t, buf.String(), "request.id=r1")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, log.ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, log.ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, log.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, log.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, log.ParseLevel("bogus"))
}
