package bramble

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var logger = newLogger()

func newLogger() *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "bramble",
	})
	l.SetLevel(log.InfoLevel)
	return l
}

// Logger returns the package logger.
func Logger() *log.Logger {
	return logger
}

// SetLogger replaces the package logger. A nil logger restores the default.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = newLogger()
	}
	logger = l
}

// SetLogLevel parses level ("debug", "info", "warn", "error", "fatal") and
// applies it to the package logger.
func SetLogLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	return nil
}
