package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lg := fromZap("billing-service", zap.New(core)).WithRequestID("req-1")

	lg.Info("bill_generated", map[string]any{"bill_number": "BILL-20240101120000"})
	lg.Error("db_failed", errors.New("boom"), nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "bill_generated", entries[0].Message)
	assert.Equal(t, "billing-service", first["service"])
	assert.Equal(t, "req-1", first["request_id"])
	assert.Equal(t, "BILL-20240101120000", first["bill_number"])

	second := entries[1].ContextMap()
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", second["error"])
}

func TestNopDoesNotPanic(t *testing.T) {
	lg := Nop()
	lg.Debug("noop", nil)
	lg.Named("cart").Warn("noop", errors.New("x"), map[string]any{"k": 1})
	lg.Sync()
}
