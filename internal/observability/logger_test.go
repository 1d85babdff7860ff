package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/covid-report-etl/internal/config"
)

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "etl.log")
	cfg := &config.Config{LogLevel: "debug", LogFormat: "json", LogFile: path}

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.Info("run started", "countries", 3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "run started", entry["msg"])
	assert.Equal(t, 3.0, entry["countries"])
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etl.log")
	cfg := &config.Config{LogLevel: "error", LogFormat: "text", LogFile: path}

	logger, err := NewLogger(cfg)
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Error("loud")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestNewLogger_BadLogFile(t *testing.T) {
	// A log path whose parent is a regular file cannot be created.
	parent := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(parent, []byte("x"), 0o600))

	cfg := &config.Config{LogFile: filepath.Join(parent, "etl.log")}
	_, err := NewLogger(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log")
}
