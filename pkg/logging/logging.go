// Package logging builds the structured file logger.
//
// The terminal is owned by the TUI, so log entries only go to a rotated
// JSON file. Without a file the logger discards everything.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the file logger.
type Config struct {
	File       string // empty disables logging
	Level      string // debug, info, warn, error
	MaxSizeMB  int
	MaxBackups int
}

// New returns a logger writing JSON lines to cfg.File, and a func that
// flushes the logger and closes the file.
func New(cfg Config) (*zap.Logger, func() error, error) {
	if cfg.File == "" {
		return zap.NewNop(), func() error { return nil }, nil
	}

	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, err
		}
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}

	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
	}
	core := zapcore.NewCore(newEncoder(), zapcore.AddSync(file), level)
	logger := zap.New(core).Named("ikarm")

	closeFn := func() error {
		// Sync on a plain file can fail harmlessly, the close error matters
		_ = logger.Sync()
		return file.Close()
	}
	return logger, closeFn, nil
}

func newEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}
