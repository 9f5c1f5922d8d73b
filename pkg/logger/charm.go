package logger

import (
	"io"

	"github.com/charmbracelet/log"
)

// CharmOptions configure a charmbracelet backend.
type CharmOptions struct {
	Debug  bool
	JSON   bool
	Prefix string
}

// CharmBackend is a LoggerInstance writing through charmbracelet/log. The
// console and file backends embed it.
type CharmBackend struct {
	logger *log.Logger
}

func NewCharmBackend(w io.Writer, opts CharmOptions) *CharmBackend {
	level := log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}
	formatter := log.TextFormatter
	if opts.JSON {
		formatter = log.JSONFormatter
	}
	return &CharmBackend{logger: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Formatter:       formatter,
		Prefix:          opts.Prefix,
	})}
}

func (c *CharmBackend) Log(message string, keyvals ...any) {
	c.logger.Print(message, keyvals...)
}

func (c *CharmBackend) Debug(message string, keyvals ...any) {
	c.logger.Debug(message, keyvals...)
}

func (c *CharmBackend) Info(message string, keyvals ...any) {
	c.logger.Info(message, keyvals...)
}

func (c *CharmBackend) Warn(message string, keyvals ...any) {
	c.logger.Warn(message, keyvals...)
}

func (c *CharmBackend) Error(message string, keyvals ...any) {
	c.logger.Error(message, keyvals...)
}
