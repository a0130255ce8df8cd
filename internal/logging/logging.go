package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Config holds logging configuration.
type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // text or json
}

// New builds a configured logrus logger writing to stderr.
func New(cfg Config) (*logrus.Logger, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput builds a configured logrus logger writing to w.
func NewWithOutput(cfg Config, w io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(w)

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(lvl)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return logger, nil
}

// Discard returns a logger that drops everything. Useful in tests and for
// interactive screens that own the terminal.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
