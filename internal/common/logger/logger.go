package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	service   string
	requestID string
	z         *zap.Logger
}

func New(service string) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return fromZap(service, z)
}

func fromZap(service string, z *zap.Logger) *Logger {
	return &Logger{service: service, z: z.With(zap.String("service", service), zap.String("hostname", hostname()))}
}

// Nop discards everything. Used by tests and optional components.
func Nop() *Logger { return &Logger{service: "nop", z: zap.NewNop()} }

// WithRequestID returns a copy tagging every entry with the given request id.
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{service: l.service, requestID: id, z: l.z}
}

// Named returns a logger for a sub-component sharing the same sink.
func (l *Logger) Named(service string) *Logger {
	return &Logger{service: service, requestID: l.requestID, z: l.z.With(zap.String("component", service))}
}

func (l *Logger) log(level zapcore.Level, action string, fields map[string]any, err error) {
	zf := make([]zap.Field, 0, len(fields)+3)
	zf = append(zf, zap.String("action", action), zap.String("request_id", l.requestID))
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	if ce := l.z.Check(level, action); ce != nil {
		ce.Write(zf...)
	}
}

func (l *Logger) Info(action string, fields map[string]any) {
	l.log(zapcore.InfoLevel, action, fields, nil)
}
func (l *Logger) Debug(action string, fields map[string]any) {
	l.log(zapcore.DebugLevel, action, fields, nil)
}
func (l *Logger) Warn(action string, err error, fields map[string]any) {
	l.log(zapcore.WarnLevel, action, fields, err)
}
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(zapcore.ErrorLevel, action, fields, err)
}

func (l *Logger) Sync() { _ = l.z.Sync() }

func hostname() string { h, _ := os.Hostname(); return h }
