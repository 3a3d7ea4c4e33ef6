package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vysogota0399/gophermart_transfers/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_WithContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lg := &ZapLogger{logger: zap.New(core)}

	ctx := lg.WithContextFields(context.Background(), zap.String("idempotency_key", "k1"))
	child := lg.WithContextFields(ctx, zap.String("from", "a"))

	lg.InfoCtx(child, "transfer applied", zap.String("to", "b"))
	lg.DebugCtx(ctx, "parent only")

	entries := logs.All()
	assert.Len(t, entries, 2)

	assert.Equal(t, "transfer applied", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"idempotency_key": "k1", "from": "a", "to": "b"}, entries[0].ContextMap())
	assert.Equal(t, map[string]interface{}{"idempotency_key": "k1"}, entries[1].ContextMap())
}

func TestNewZapLogger_Level(t *testing.T) {
	_, err := NewZapLogger(&config.Config{LogLevel: int(zapcore.WarnLevel)})
	assert.NoError(t, err)
}

func TestKafkaLoggers_ForTopic(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	lg := &ZapLogger{logger: zap.New(core)}

	info := (&KafkaLogger{lg: lg, ctx: kafkaContext(lg)}).ForTopic("transfer_completed")
	errs := NewKafkaErrorLogger(lg).ForTopic("transfer_completed")

	info.Printf("writing %d messages", 3)
	errs.Printf("leader not available: %s", "broker-1")

	entries := logs.All()
	assert.Len(t, entries, 2)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "writing 3 messages", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"component": "kafka", "topic": "transfer_completed"}, entries[0].ContextMap())

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "leader not available: broker-1", entries[1].Message)
	assert.Equal(t, map[string]interface{}{"component": "kafka", "topic": "transfer_completed"}, entries[1].ContextMap())
}
