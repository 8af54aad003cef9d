package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"listings-service/internal/core/port"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestSlogAdapterWritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, IsJSON: true, Level: slog.LevelDebug})

	logger.WithFields(port.Fields{"trace_id": "abc"}).
		Error("Catalog refresh failed", errors.New("timeout"), port.Fields{"source": "http"})

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "ERROR", recs[0]["level"])
	assert.Equal(t, "Catalog refresh failed", recs[0]["msg"])
	assert.Equal(t, "abc", recs[0]["trace_id"])
	assert.Equal(t, "http", recs[0]["source"])
	assert.Equal(t, "timeout", recs[0]["error"])
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, IsJSON: true, Level: slog.LevelWarn})

	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	logger.Warn("shown", nil)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "shown", recs[0]["msg"])
}

func TestMultiLoggerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	multi, err := NewMultiloggerAdapter(
		NewSlogAdapter(SlogConfig{Writer: &a, IsJSON: true}),
		NewSlogAdapter(SlogConfig{Writer: &b, IsJSON: true}),
	)
	require.NoError(t, err)

	multi.WithFields(port.Fields{"component": "catalog"}).Info("Catalog loaded", nil)

	for _, buf := range []*bytes.Buffer{&a, &b} {
		recs := decodeLines(t, buf)
		require.Len(t, recs, 1)
		assert.Equal(t, "catalog", recs[0]["component"])
	}

	_, err = NewMultiloggerAdapter()
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("DEBUG")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, lvl)

	lvl, ok = ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, lvl)
}
