// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnv overrides the level when no explicit level is given.
const LevelEnv = "PICTOWORD_LOG_LEVEL"

// ParseLevel maps debug, info, warn and error to zerolog levels. Anything else is info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Init points the global logger at w. An empty level falls back to LevelEnv.
func Init(w io.Writer, level string) {
	setup(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}, level)
}

// InitFile logs to path, creating parent directories. The returned func closes the file.
func InitFile(path, level string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	setup(zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339}, level)
	return f.Close, nil
}

func setup(out io.Writer, level string) {
	if level == "" {
		level = os.Getenv(LevelEnv)
	}
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}
