// Package logging builds the service's logrus loggers.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

var levels = map[string]logrus.Level{
	"trace":   logrus.TraceLevel,
	"debug":   logrus.DebugLevel,
	"info":    logrus.InfoLevel,
	"warn":    logrus.WarnLevel,
	"warning": logrus.WarnLevel,
	"error":   logrus.ErrorLevel,
	"fatal":   logrus.FatalLevel,
	"panic":   logrus.PanicLevel,
}

// GetLogger returns a logger at the requested level. An unknown level
// falls back to info rather than failing startup.
func GetLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, ok := levels[strings.ToLower(level)]
	if !ok {
		log.SetLevel(logrus.InfoLevel)
		log.Warnf("Invalid log level '%s', defaulting to 'info'", level)
		return log
	}
	log.SetLevel(lvl)
	return log
}
