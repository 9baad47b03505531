package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := New(Options{Format: "json", Output: &buf})
	require.NoError(t, err)
	defer closeFn()

	logger.Info("search finished", "soc", 21)
	logger.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "search finished", rec["msg"])
	assert.EqualValues(t, 21, rec["soc"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewAutoNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "debug", Output: &buf})
	require.NoError(t, err)

	logger.Debug("expand", "node", 3)
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "buffer output should be JSON: %s", buf.String())
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Format: "text", Output: &buf})
	require.NoError(t, err)

	logger.Warn("budget", "expanded", 10)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "expanded=10")
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.log")
	logger, closeFn, err := New(Options{File: path})
	require.NoError(t, err)

	logger.Info("run", "instance", "bottleneck")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"instance":"bottleneck"`)
}

func TestNewErrors(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	assert.Error(t, err)

	_, _, err = New(Options{Format: "xml"})
	assert.Error(t, err)
}
