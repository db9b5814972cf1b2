// Package logging configures the logrus logger shared by every command.
// Diagnostics go to stderr so stdout only carries formatter output.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/mrnim94/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

// Log file rotation: one file per day, a week kept.
const (
	RotationTime = 24 * time.Hour
	MaxAge       = 7 * 24 * time.Hour
)

// Options selects the logger's format and level.
type Options struct {
	Format  string // text or json
	Verbose bool
	Debug   bool
	Output  io.Writer
	File    string // optional; mirrors every entry as JSON into a rotating file
}

// New builds a logger. Level precedence: --debug, --verbose, LOG_LEVEL.
func New(opts Options) *logrus.Logger {
	logger := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	if opts.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp:       true,
			DisableLevelTruncation: true,
		})
	}

	switch {
	case opts.Debug:
		logger.SetLevel(logrus.DebugLevel)
	case opts.Verbose:
		logger.SetLevel(logrus.InfoLevel)
	default:
		logger.SetLevel(GetLogLevel("LOG_LEVEL"))
	}

	if opts.File != "" {
		hook, err := FileHook(opts.File)
		if err != nil {
			logger.WithError(err).Warn("log file disabled")
		} else {
			logger.AddHook(hook)
		}
	}

	return logger
}

// FileHook writes all levels as JSON to path, rotated daily. The current
// file is reachable through path itself, which is a symlink.
func FileHook(path string) (logrus.Hook, error) {
	writer, err := rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithRotationTime(RotationTime),
		rotatelogs.WithMaxAge(MaxAge),
	)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	writers := lfshook.WriterMap{}
	for _, level := range logrus.AllLevels {
		writers[level] = writer
	}
	return lfshook.NewHook(writers, &logrus.JSONFormatter{}), nil
}

// GetLogLevel reads a level name from the environment, defaulting to info.
func GetLogLevel(key string) logrus.Level {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Discard returns a logger that drops everything, for tests and previews.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
