// Package logger is a process wide facade over one or more logging
// backends. Until Init is called every call is a no-op, except Fatal.
package logger

import (
	"errors"
	"io"
	"os"
	"sync"
)

// LoggerInstance is a logging backend.
type LoggerInstance interface {
	Log(message string, keyvals ...any)
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
}

var (
	mu        sync.RWMutex
	instances []LoggerInstance
)

// Init replaces the registered backends.
func Init(backends ...LoggerInstance) {
	mu.Lock()
	defer mu.Unlock()
	instances = backends
}

func each(fn func(LoggerInstance)) {
	mu.RLock()
	defer mu.RUnlock()
	for _, instance := range instances {
		fn(instance)
	}
}

// Log writes a message without a level.
func Log(message string, keyvals ...any) {
	each(func(l LoggerInstance) { l.Log(message, keyvals...) })
}

func Info(message string, keyvals ...any) {
	each(func(l LoggerInstance) { l.Info(message, keyvals...) })
}

func Warn(message string, keyvals ...any) {
	each(func(l LoggerInstance) { l.Warn(message, keyvals...) })
}

func Error(message string, keyvals ...any) {
	each(func(l LoggerInstance) { l.Error(message, keyvals...) })
}

func Debug(message string, keyvals ...any) {
	each(func(l LoggerInstance) { l.Debug(message, keyvals...) })
}

// Fatal writes the message at ERROR level to every backend, closes them and
// exits with status 1.
func Fatal(message string, keyvals ...any) {
	Error(message, keyvals...)
	_ = Close()
	os.Exit(1)
}

// Close closes every backend that holds a resource, such as a log file.
func Close() error {
	var errs []error
	each(func(l LoggerInstance) {
		if c, ok := l.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
