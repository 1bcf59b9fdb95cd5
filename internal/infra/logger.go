package infra

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions selects the sinks used by NewLoggerWithOptions.
type LogOptions struct {
	Console bool
	// File enables a size-rotated JSON log in addition to stdout.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// LogOptions derives logger sinks from the loaded configuration.
func (c *Config) LogOptions() LogOptions {
	return LogOptions{
		Console:    c.LogConsole,
		File:       c.LogFile,
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 14,
	}
}

// NewLogger constructs a zerolog.Logger with sane defaults for the service.
func NewLogger(appEnv string) zerolog.Logger {
	return NewLoggerWithOptions(appEnv, LogOptions{Console: appEnv == "development"})
}

// NewLoggerWithOptions builds the service logger, fanning out to a rotating
// file when opts.File is set.
func NewLoggerWithOptions(appEnv string, opts LogOptions) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	var stdout io.Writer = os.Stdout
	if opts.Console {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	out := stdout
	if strings.TrimSpace(opts.File) != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(stdout, rotating)
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// NopLogger returns a logger that discards everything; components fall back
// to it when constructed without one.
func NopLogger() *Logger {
	l := zerolog.Nop()
	return &l
}

// Logger aliases the zerolog.Logger so callers outside the infra package can
// depend on the logging contract without importing the third-party module
// directly.
type Logger = zerolog.Logger
