// Package logging configures the shared logrus logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a logger for a named component. Level comes from
// LOG_LEVEL; production gets JSON output, everything else gets colored
// text.
func NewLogger(component string) *logrus.Entry {
	logger := logrus.New()

	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if os.Getenv("ENVIRONMENT") == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	return logger.WithField("component", component)
}
