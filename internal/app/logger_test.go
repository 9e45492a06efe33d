package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"), "unknown names default to info")
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	newLogger("info", "json", &buf).Info("build started", "packages", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "build started", record["msg"])

	buf.Reset()
	newLogger("warn", "text", &buf).Info("suppressed")
	assert.Empty(t, buf.String(), "info is below the warn threshold")
}
