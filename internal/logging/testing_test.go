package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestTestLogger_Creation(t *testing.T) {
	tl := NewTestLogger()
	assert.NotNil(t, tl.Logger)
	assert.NotNil(t, tl.observed)
}

func TestTestLogger_AssertLogged(t *testing.T) {
	tl := NewTestLogger()
	ctx := context.Background()

	tl.Info(ctx, "test message", zap.String("key", "value"))

	tl.AssertLogged(t, zapcore.InfoLevel, "test message")
}

func TestTestLogger_AssertNotLogged(t *testing.T) {
	tl := NewTestLogger()

	tl.AssertNotLogged(t, zapcore.ErrorLevel, "should not exist")
}

func TestTestLogger_AssertField(t *testing.T) {
	tl := NewTestLogger()
	ctx := context.Background()

	tl.Info(ctx, "test", zap.String("key", "value"), zap.Int("count", 2))

	tl.AssertField(t, "test", "key", "value")
	tl.AssertField(t, "test", "count", int64(2))
}

func TestTestLogger_Reset(t *testing.T) {
	tl := NewTestLogger()
	tl.Trace(context.Background(), "one")
	assert.Len(t, tl.All(), 1)

	tl.Reset()
	assert.Empty(t, tl.All())
}
