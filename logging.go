// FILE: logging.go
// Package main – Process-wide structured logger.
//
// Grounded on svyatogor45-abitrage's zap usage (structured fields,
// leveled logging); the teacher itself logs with bare log.Printf.
package main

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the subset of *zap.SugaredLogger every component depends
// on, so tests can substitute a no-op or recording implementation.
type Logger interface {
	Debugw(msg string, kv ...interface{})
	Infow(msg string, kv ...interface{})
	Warnw(msg string, kv ...interface{})
	Errorw(msg string, kv ...interface{})
}

// newLogger builds a production zap config with an RFC3339 time
// encoder, returning the sugared logger used throughout.
func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02T15:04:05.000Z07:00"))
	}

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return logger.Sugar()
}
