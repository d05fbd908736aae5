// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide sugared logger. It is a no-op until Init is called
// so packages can log from tests without setup.
var Logger = zap.NewNop().Sugar()

// Init replaces Logger. format is "json" or "console"; level is any zap level name.
func Init(level, format string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	Logger = l.Sugar()
	return nil
}

// Sync flushes buffered entries.
func Sync() {
	_ = Logger.Sync()
}

// Debug logs at debug level with alternating key/value pairs.
func Debug(msg string, kv ...interface{}) {
	Logger.Debugw(msg, kv...)
}

// Info logs at info level.
func Info(msg string, kv ...interface{}) {
	Logger.Infow(msg, kv...)
}

// Warning logs at warn level.
func Warning(msg string, kv ...interface{}) {
	Logger.Warnw(msg, kv...)
}

// Error logs at error level. Pass the error under the "error" key.
func Error(msg string, kv ...interface{}) {
	Logger.Errorw(msg, kv...)
}
