// SPDX-License-Identifier: Apache-2.0

// Package logx configures the process-wide zerolog logger used by the engine.
package logx

import (
	"io"
	"os"
	"path"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	nolog = zerolog.Nop()
)

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	// Level is the log level to use (e.g., "info", "debug").
	Level string `mapstructure:"level" yaml:"level"`
	// ConsoleLogging enables logging to the console.
	ConsoleLogging bool `mapstructure:"console" yaml:"console"`
	// FileLogging enables logging to a rolling file.
	FileLogging bool `mapstructure:"file" yaml:"file"`
	// Directory specifies the directory for log files (used if FileLogging is enabled).
	Directory string `mapstructure:"directory" yaml:"directory"`
	// Filename is the name of the log file.
	Filename string `mapstructure:"filename" yaml:"filename"`
	// MaxSize is the maximum size (in MB) of a log file before it is rolled.
	MaxSize int `mapstructure:"maxSize" yaml:"maxSize"`
	// MaxBackups is the maximum number of rolled log files to keep.
	MaxBackups int `mapstructure:"maxBackups" yaml:"maxBackups"`
	// MaxAge is the maximum age (in days) to keep a log file.
	MaxAge int `mapstructure:"maxAge" yaml:"maxAge"`
	// Compress enables compression of rolled log files.
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// WithConfig reconfigures the global logger.
func WithConfig(cfg LoggingConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	var writers []io.Writer
	if cfg.ConsoleLogging {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
	if cfg.FileLogging {
		writers = append(writers, newRollingFile(cfg))
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()

	return nil
}

// As returns the global logger.
func As() *zerolog.Logger {
	return &logger
}

// Nop returns a logger that discards everything.
func Nop() *zerolog.Logger {
	return &nolog
}

func newRollingFile(cfg LoggingConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   path.Join(cfg.Directory, cfg.Filename),
		MaxBackups: cfg.MaxBackups, // files
		MaxSize:    cfg.MaxSize,    // megabytes
		MaxAge:     cfg.MaxAge,     // days
		Compress:   cfg.Compress,
	}
}
