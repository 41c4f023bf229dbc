package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/studyhall/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps a configured level name onto a slog level (case-insensitive).
// The second return value is false for unknown names, which map to info.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger writing to
// stdout and, when cfg.LogFile is set, to a size-rotated file as well. The
// logger becomes the slog default.
//
// The returned io.Closer releases the log file and must be closed on shutdown.
func Setup(cfg config.ServerConfig) (*slog.Logger, io.Closer, error) {
	return setup(cfg, os.Stdout)
}

func setup(cfg config.ServerConfig, stdout io.Writer) (*slog.Logger, io.Closer, error) {
	level, ok := ParseLevel(cfg.LogLevel)

	var out io.Writer = stdout
	var closer io.Closer = nopCloser{}
	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		out = io.MultiWriter(stdout, rotator)
		closer = rotator
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if !ok {
		logger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
