// Package applog builds the structured logger shared by every
// command-line entry point, grounded on mmp-vice's pkg/log package:
// a slog.Logger backed by a rotating lumberjack.v2 file, with every
// record at or above the configured level mirrored to stderr.
package applog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps *slog.Logger with the rotating file handle, so callers
// can report where diagnostics landed.
type Logger struct {
	*slog.Logger
	LogFile string
	RunID   string
}

// New builds a Logger writing JSON records to dir (default
// "navprofile" under the user's cache dir when empty), at the
// given level ("debug", "info", "warn", "error"; default "info").
// Every record carries a run_id field so lines from one invocation can
// be picked out of the rotated log file.
func New(dir, level string) *Logger {
	if dir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			cacheDir = "."
		}
		dir = filepath.Join(cacheDir, "navprofile")
	}

	w := &lumberjack.Logger{
		Filename: filepath.Join(dir, "navprofile.log"),
		MaxSize:  32, // MB
		MaxAge:   14,
		Compress: true,
	}

	lvl := parseLevel(level)
	handler := slog.NewJSONHandler(io.MultiWriter(w, os.Stderr), &slog.HandlerOptions{Level: lvl})
	runID := uuid.NewString()

	return &Logger{
		Logger:  slog.New(handler).With("run_id", runID),
		LogFile: w.Filename,
		RunID:   runID,
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
