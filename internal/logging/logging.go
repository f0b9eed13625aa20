// Package logging sets up the slog logger every stage writes through.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ParseLevel maps debug|info|warn|error to a slog level; anything else is
// info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New returns a text logger on w tagged with the stage name and a fresh
// run id.
func New(w io.Writer, level slog.Level, stage string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceTimeAttr,
	})
	return slog.New(handler).With("stage", stage, "run", uuid.NewString())
}

// Init installs the stage logger as the slog default. With logFile set the
// records are also appended to that file, like the run log kept beside the
// plots; the returned func closes it.
func Init(
	stage, level, logFile string,
) (
	*slog.Logger, func() error, error,
) {

	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }

	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closeFn = f.Close
	}

	logger := New(w, ParseLevel(level), stage)
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// Finish ends a stage run: a non-nil err is logged at error level and only
// then is the log file closed, so the failure is the last record of the run
// log. It reports whether the stage failed.
func Finish(closeFn func() error, msg string, err error) bool {
	if err != nil {
		slog.Error(msg, "err", err)
	}
	if cerr := closeFn(); cerr != nil {
		fmt.Fprintln(os.Stderr, "log file:", cerr)
	}
	return err != nil
}

func replaceTimeAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		return slog.String(slog.TimeKey, a.Value.Time().Local().Format("2006-01-02 15:04:05"))
	}
	return a
}
