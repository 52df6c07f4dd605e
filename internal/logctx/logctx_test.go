package logctx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/blackwell-systems/bookpipe/internal/logctx"
)

func TestLoggerFromContext(t *testing.T) {
	logger := zap.NewExample()
	ctx := logctx.WithLogger(context.Background(), logger)
	assert.Same(t, logger, logctx.LoggerFromContext(ctx))
}

func TestLoggerFromContext_Default(t *testing.T) {
	l := logctx.LoggerFromContext(context.Background())
	require.NotNil(t, l)
	l.Info("discarded")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"":      zapcore.InfoLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	}
	for in, want := range tests {
		got, err := logctx.ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := logctx.ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logctx.NewWithWriter(logctx.Config{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("visible", zap.String("id", "42"))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "42", entry["id"])
}

func TestNewWithWriter_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bookpipe.log")
	var buf bytes.Buffer
	logger, err := logctx.NewWithWriter(logctx.Config{Level: "debug", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	logger.Warn("to both")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to both"`)
	assert.Contains(t, buf.String(), "to both")
}

func TestNewWithWriter_BadFormat(t *testing.T) {
	_, err := logctx.NewWithWriter(logctx.Config{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
