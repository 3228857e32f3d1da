package logging

import (
	"github.com/pion/logging"
)

var loggerFactory logging.LoggerFactory = logging.NewDefaultLoggerFactory()

// NewLogger returns a scoped logger from the package-wide default factory.
func NewLogger(scope string) logging.LeveledLogger {
	return loggerFactory.NewLogger(scope)
}

// Factory exposes the default factory so components that accept a
// logging.LoggerFactory can fall back to it.
func Factory() logging.LoggerFactory {
	return loggerFactory
}
