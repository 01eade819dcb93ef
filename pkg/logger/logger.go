// Package logger builds the logrus loggers used by the hub tools.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultMaxSizeMB  = 1
	DefaultMaxBackups = 3
	timestampFormat   = "2006-01-02 15:04:05"
)

type Config struct {
	// Level is a logrus level name; "off" or "none" silences output.
	Level string
	// Verbose forces debug level.
	Verbose bool
	// File is a rotated log file; empty logs to stderr only.
	File       string
	MaxSizeMB  int
	MaxBackups int
	// Console also copies file output to stderr.
	Console bool
}

// New returns a configured logger. The returned closer releases the log file.
func New(cfg Config) (*logrus.Logger, io.Closer) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
	})

	if cfg.Level == "off" || cfg.Level == "none" {
		log.SetOutput(io.Discard)
		return log, nopCloser{}
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	if cfg.Verbose {
		level = logrus.DebugLevel
	}

	log.SetLevel(level)

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return log, nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    orDefault(cfg.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: orDefault(cfg.MaxBackups, DefaultMaxBackups),
	}

	if cfg.Console {
		log.SetOutput(io.MultiWriter(rotator, os.Stderr))
	} else {
		log.SetOutput(rotator)
	}

	return log, rotator
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}

	return v
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
