// Package file provides a size rotated JSON lines logging backend.
package file

import (
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
)

type FileLogger struct {
	*logger.CharmBackend
	writer *lumberjack.Logger
}

// FileLoggerParams configure a FileLogger. MaxSizeMB, MaxBackups and
// MaxAgeDays fall back to 50, 5 and 28.
type FileLoggerParams struct {
	Path       string
	Debug      bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewFileLogger appends to params.Path and rotates it.
func NewFileLogger(params FileLoggerParams) *FileLogger {
	writer := &lumberjack.Logger{
		Filename:   params.Path,
		MaxSize:    positive(params.MaxSizeMB, 50),
		MaxBackups: positive(params.MaxBackups, 5),
		MaxAge:     positive(params.MaxAgeDays, 28),
		Compress:   true,
	}
	return &FileLogger{
		CharmBackend: logger.NewCharmBackend(writer, logger.CharmOptions{Debug: params.Debug, JSON: true}),
		writer:       writer,
	}
}

// Close closes the underlying log file.
func (f *FileLogger) Close() error {
	return f.writer.Close()
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
