// Package log routes application logs to a daily file through logrus.
// Until Setup enables it, every call is discarded; the TUI owns stdout.
package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

type Options struct {
	Write bool
	Level string
	JSON  bool
	Dir   string
}

var (
	enabled bool
	logger  = newDiscardLogger()
	closer  io.Closer
)

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Setup configures the package logger. Calling it again replaces the
// previous output.
func Setup(fs afero.Fs, opts Options) error {
	Close()
	enabled = opts.Write
	if !enabled {
		logger = newDiscardLogger()
		return nil
	}
	if opts.Dir == "" {
		enabled = false
		return errors.New("log directory path is empty")
	}

	if err := fs.MkdirAll(opts.Dir, 0o755); err != nil {
		enabled = false
		return fmt.Errorf("create log directory: %w", err)
	}

	path := filepath.Join(opts.Dir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		enabled = false
		return fmt.Errorf("open log file: %w", err)
	}

	l := logrus.New()
	l.SetOutput(f)
	if opts.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	logger = l
	closer = f
	return nil
}

func Close() {
	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
}

func Enabled() bool {
	return enabled
}

func WithField(key string, value any) *logrus.Entry {
	return logger.WithField(key, value)
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

func Error(args ...any) {
	if enabled {
		logger.Error(args...)
	}
}

func Errorf(format string, args ...any) {
	if enabled {
		logger.Errorf(format, args...)
	}
}

func Warn(args ...any) {
	if enabled {
		logger.Warn(args...)
	}
}

func Warnf(format string, args ...any) {
	if enabled {
		logger.Warnf(format, args...)
	}
}

func Info(args ...any) {
	if enabled {
		logger.Info(args...)
	}
}

func Infof(format string, args ...any) {
	if enabled {
		logger.Infof(format, args...)
	}
}

func Debug(args ...any) {
	if enabled {
		logger.Debug(args...)
	}
}

func Debugf(format string, args ...any) {
	if enabled {
		logger.Debugf(format, args...)
	}
}
