// Package logging provides the structured, leveled logger used across the
// front-end. It is a trimmed adaptation of go.viam.com/rdk/logging's Logger
// interface: the same leveled/keyed method shape, backed directly by
// go.uber.org/zap, without that package's appender/registry/net-logging
// machinery — infrastructure for shipping logs off a running viam-server that
// has no counterpart in this subsystem's scope.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger interface used throughout this module.
type Logger interface {
	Debug(args ...interface{})
	Debugf(template string, args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})

	Info(args ...interface{})
	Infof(template string, args ...interface{})
	Infow(msg string, keysAndValues ...interface{})

	Warn(args ...interface{})
	Warnf(template string, args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})

	Error(args ...interface{})
	Errorf(template string, args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// Sublogger returns a Logger scoped with an additional name segment,
	// e.g. logger.Sublogger("prober") on a logger named "frontend" yields one
	// named "frontend.prober".
	Sublogger(name string) Logger
}

type zapLogger struct {
	sugared *zap.SugaredLogger
}

// New returns a Logger named name that writes Info+ logs to stderr.
func New(name string) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	built := zap.Must(cfg.Build())
	return &zapLogger{sugared: built.Sugar().Named(name)}
}

// NewTestLogger returns a Logger suitable for use in tests: Debug+ to stderr.
func NewTestLogger(name string) Logger {
	cfg := zap.NewDevelopmentConfig()
	built := zap.Must(cfg.Build())
	return &zapLogger{sugared: built.Sugar().Named(name)}
}

func (l *zapLogger) Debug(args ...interface{})                      { l.sugared.Debug(args...) }
func (l *zapLogger) Debugf(template string, args ...interface{})    { l.sugared.Debugf(template, args...) }
func (l *zapLogger) Debugw(msg string, kv ...interface{})           { l.sugared.Debugw(msg, kv...) }
func (l *zapLogger) Info(args ...interface{})                       { l.sugared.Info(args...) }
func (l *zapLogger) Infof(template string, args ...interface{})     { l.sugared.Infof(template, args...) }
func (l *zapLogger) Infow(msg string, kv ...interface{})            { l.sugared.Infow(msg, kv...) }
func (l *zapLogger) Warn(args ...interface{})                       { l.sugared.Warn(args...) }
func (l *zapLogger) Warnf(template string, args ...interface{})     { l.sugared.Warnf(template, args...) }
func (l *zapLogger) Warnw(msg string, kv ...interface{})            { l.sugared.Warnw(msg, kv...) }
func (l *zapLogger) Error(args ...interface{})                      { l.sugared.Error(args...) }
func (l *zapLogger) Errorf(template string, args ...interface{})    { l.sugared.Errorf(template, args...) }
func (l *zapLogger) Errorw(msg string, kv ...interface{})           { l.sugared.Errorw(msg, kv...) }

func (l *zapLogger) Sublogger(name string) Logger {
	return &zapLogger{sugared: l.sugared.Named(name)}
}
