// Package log is the process-wide structured logger.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

var root = logrus.New()

func init() {
	root.SetOutput(os.Stdout)
	root.SetLevel(logrus.InfoLevel)
	root.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// SetVerbosity sets the level from a logrus level name ("debug",
// "info", "warn", "error"). Unknown names leave the level unchanged.
func SetVerbosity(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	root.SetLevel(parsed)
}

// WithContext returns a logger entry carrying key/value context pairs,
// e.g. WithContext("pkg", "staking").
func WithContext(kvs ...string) *logrus.Entry {
	fields := make(logrus.Fields, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		fields[kvs[i]] = kvs[i+1]
	}
	return root.WithFields(fields)
}
