package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewTagsStageAndRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, "select-paths")
	logger.Debug("hidden")
	logger.Info("wrote table", "rows", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "stage=select-paths")
	assert.Contains(t, out, "rows=3")
	assert.Regexp(t, regexp.MustCompile(`time="\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}"`), out)
	assert.Regexp(t, regexp.MustCompile(`run=[0-9a-f-]{36}`), out)
}

func TestInitTeesToLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "run.log")
	logger, closeFn, err := Init("feff", "info", path)
	require.NoError(t, err)
	logger.Info("copied structure")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "copied structure")
}

func TestFinishKeepsFailureInLogFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "run.log")
	_, closeFn, err := Init("select_paths", "info", path)
	require.NoError(t, err)
	slog.Info("reading listing")

	assert.True(t, Finish(closeFn, "path selection failed", errors.New("sp.csv: permission denied")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "reading listing")
	assert.Contains(t, string(data), `msg="path selection failed"`)
	assert.Contains(t, string(data), "sp.csv: permission denied")
}

func TestFinishSuccess(t *testing.T) {
	t.Parallel()

	closed := false
	ok := Finish(func() error { closed = true; return nil }, "unused", nil)
	assert.False(t, ok)
	assert.True(t, closed)
}
