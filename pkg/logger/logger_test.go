package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
}

func TestFromContextPrefersRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))

	FromContext(ctx).Info("hello")

	assert.Equal(t, 1, logs.Len())
	assert.NotNil(t, FromContext(context.Background()))
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	l := NewGormLogger(gormlogger.Warn, 0)

	query := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "record not found is a normal miss")

	l.Trace(ctx, time.Now(), query, errors.New("syntax error"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "SELECT 1", entry.ContextMap()["sql"])

	l.Trace(ctx, time.Now(), query, nil)
	assert.Equal(t, 1, logs.Len(), "successful queries are only traced at info level")

	l.LogMode(gormlogger.Info).Trace(ctx, time.Now(), query, nil)
	assert.Equal(t, 2, logs.Len())
}

func TestParseGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, ParseGormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, ParseGormLevel("info"))
	assert.Equal(t, gormlogger.Error, ParseGormLevel("ERROR"))
	assert.Equal(t, gormlogger.Silent, ParseGormLevel("silent"))
}
