package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup configures the process-wide slog default logger from a level name
// (as found in the LOG_LEVEL environment variable) and an optional log file
// path. When path is empty, logs go to stderr only.
func Setup(levelName, path string) (io.Closer, error) {
	level := parseLevel(levelName)

	var writer io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if path != "" {
		rf, err := NewRotatingFile(path)
		if err != nil {
			return nil, err
		}
		writer = io.MultiWriter(os.Stderr, rf)
		closer = rf
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	return closer, nil
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
