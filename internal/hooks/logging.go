package hooks

import (
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewHookLogger returns a logger writing to a rotating log file inside
// the .git directory. Hooks run non-interactively, so diagnostics go to
// a file rather than cluttering commit output.
func NewHookLogger(gitDir string) *slog.Logger {
	writer := &lumberjack.Logger{
		Filename:   gitDir + "/verbump.log",
		MaxSize:    1, // megabytes
		MaxAge:     10,
		MaxBackups: 3,
	}

	return slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
