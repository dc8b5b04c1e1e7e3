// internal/logging/logging.go
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config defines the logger options.
type Config struct {
	// Level is the minimum enabled level: debug, info, warn, error.
	Level string
	// Format is "json" (default) or "text" for human-readable console output.
	Format string
	// File, when set, additionally writes JSON lines to a rotated log file.
	File string
	// FileSizeMB is the rotation size of File. Defaults to 10.
	FileSizeMB int
	// FileCount is the number of rotated files kept. Defaults to 5.
	FileCount int
}

// New builds a logger writing to w (and Config.File when set).
func New(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var out io.Writer
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		out = w
	case "text":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q (want json or text)", cfg.Format)
	}

	if cfg.File != "" {
		size, count := cfg.FileSizeMB, cfg.FileCount
		if size <= 0 {
			size = 10
		}
		if count <= 0 {
			count = 5
		}
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    size,
			MaxBackups: count,
		})
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// ParseLevel maps a level name to a zerolog level. Empty means info;
// "warning" is accepted for warn.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(s) {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q: %w", s, err)
	}
	return level, nil
}
