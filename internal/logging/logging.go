// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"os"

	"github.com/bryan-buckman/headlines/internal/config"
	"github.com/sirupsen/logrus"
)

// New creates a logger writing to stderr.
func New(cfg config.LogConfig, verbose bool) *logrus.Logger {
	return NewWithWriter(cfg, verbose, os.Stderr)
}

// NewWithWriter creates a logger writing to out. verbose forces debug level.
func NewWithWriter(cfg config.LogConfig, verbose bool, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.Out = out

	switch cfg.Format {
	case "json":
		logger.Formatter = &logrus.JSONFormatter{}
	default:
		logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	switch cfg.Level {
	case "debug":
		logger.Level = logrus.DebugLevel
	case "warn":
		logger.Level = logrus.WarnLevel
	case "error":
		logger.Level = logrus.ErrorLevel
	default:
		logger.Level = logrus.InfoLevel
	}
	if verbose {
		logger.Level = logrus.DebugLevel
	}
	return logger
}
