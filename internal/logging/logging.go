// Package logging builds the logrus logger shared by the binaries.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scid-pd-engine/internal/domain"
)

// New creates a logger from the logging section of the configuration. Unknown levels fall
// back to info; any format other than "text" produces JSON.
func New(cfg domain.LoggingConfig) *logrus.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New writing to out.
func NewWithOutput(cfg domain.LoggingConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}
	return logger
}

// Discard returns a logger that drops everything, for tests and quiet CLI runs.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
