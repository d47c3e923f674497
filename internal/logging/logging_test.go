package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axsol/backoffice/internal/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("verbose"))
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := logging.New(&buf, logging.Options{Level: "info"})
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("cached fixture into storage", "entity", "clients")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "entity=clients")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := logging.New(&buf, logging.Options{Level: "debug", Format: "json"})
	logger.Debug("fetch failed", "entity", "assets")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "fetch failed", line["msg"])
	assert.Equal(t, "assets", line["entity"])
}

func TestNew_File(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "backoffice.log")
	logger, closer := logging.New(&buf, logging.Options{Level: "info", File: path})
	logger.With("component", "store").Warn("storage read failed")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"component":"store"`))
	assert.Contains(t, buf.String(), "storage read failed")
}
