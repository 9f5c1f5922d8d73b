// Package console provides the terminal logging backend.
package console

import (
	"io"
	"os"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
)

type ConsoleLogger struct {
	*logger.CharmBackend
}

// ConsoleLoggerParams configure a ConsoleLogger. Writer defaults to stderr;
// JSON switches from human readable lines to one JSON object per line.
type ConsoleLoggerParams struct {
	Debug  bool
	JSON   bool
	Writer io.Writer
}

func NewConsoleLogger(params ConsoleLoggerParams) *ConsoleLogger {
	w := params.Writer
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleLogger{logger.NewCharmBackend(w, logger.CharmOptions{
		Debug: params.Debug,
		JSON:  params.JSON,
	})}
}
