package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesPerLevelFiles(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer

	l, err := newLogger(&stdout, dir, "debug")
	require.NoError(t, err)

	l.Info("model %s loaded", "yolov8n")
	l.Warning("queue full")
	l.Error("detection failed: %v", "boom")
	require.NoError(t, l.Close())

	info, err := os.ReadFile(filepath.Join(dir, "info.log"))
	require.NoError(t, err)
	assert.Contains(t, string(info), "model yolov8n loaded")
	assert.NotContains(t, string(info), "queue full")

	warning, err := os.ReadFile(filepath.Join(dir, "warning.log"))
	require.NoError(t, err)
	assert.Contains(t, string(warning), "queue full")

	errs, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "detection failed: boom")

	assert.Contains(t, stdout.String(), "model yolov8n loaded")
	assert.Contains(t, stdout.String(), "detection failed: boom")
}

func TestLogger_WithFields(t *testing.T) {
	var stdout bytes.Buffer

	l, err := newLogger(&stdout, "", "info")
	require.NoError(t, err)

	l.WithFields(map[string]interface{}{"request_id": "abc-123"}).Info("handled")
	assert.Contains(t, stdout.String(), "request_id=abc-123")
	assert.Contains(t, stdout.String(), "handled")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var stdout bytes.Buffer

	l, err := newLogger(&stdout, "", "warning")
	require.NoError(t, err)

	l.Info("hidden")
	l.Warning("shown")
	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "shown")
}

func TestLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var stdout bytes.Buffer

	l, err := newLogger(&stdout, "", "chatty")
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("shown")
	assert.NotContains(t, stdout.String(), "hidden")
	assert.Contains(t, stdout.String(), "shown")
}

func TestLogger_SetLevel(t *testing.T) {
	var stdout bytes.Buffer

	l, err := newLogger(&stdout, "", "info")
	require.NoError(t, err)

	l.SetLevel("debug")
	l.Debug("now visible")
	l.SetLevel("nonsense")
	l.Debug("still visible")

	assert.Contains(t, stdout.String(), "now visible")
	assert.Contains(t, stdout.String(), "still visible")
}
