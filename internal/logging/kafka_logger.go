package logging

import (
	"context"
	"fmt"

	"github.com/vysogota0399/gophermart_transfers/internal/config"
	"go.uber.org/zap"
)

// KafkaLogger adapts ZapLogger to kafka.Logger. Writer chatter goes to debug,
// at the level configured by KAFKA_LOG_LEVEL.
type KafkaLogger struct {
	lg  *ZapLogger
	ctx context.Context
}

func NewKafkaLogger(cfg *config.Config) (*KafkaLogger, error) {
	lg, err := NewZapLogger(&config.Config{LogLevel: cfg.KafkaLogLevel})
	if err != nil {
		return nil, err
	}

	return &KafkaLogger{lg: lg, ctx: kafkaContext(lg)}, nil
}

// ForTopic returns a logger tagging every line with the topic.
func (l *KafkaLogger) ForTopic(topic string) *KafkaLogger {
	return &KafkaLogger{lg: l.lg, ctx: l.lg.WithContextFields(l.ctx, zap.String("topic", topic))}
}

func (l *KafkaLogger) Printf(format string, a ...interface{}) {
	l.lg.DebugCtx(l.ctx, fmt.Sprintf(format, a...))
}

// KafkaErrorLogger adapts ZapLogger to kafka.Logger for the writer's errors.
type KafkaErrorLogger struct {
	lg  *ZapLogger
	ctx context.Context
}

func NewKafkaErrorLogger(lg *ZapLogger) *KafkaErrorLogger {
	return &KafkaErrorLogger{lg: lg, ctx: kafkaContext(lg)}
}

func (l *KafkaErrorLogger) ForTopic(topic string) *KafkaErrorLogger {
	return &KafkaErrorLogger{lg: l.lg, ctx: l.lg.WithContextFields(l.ctx, zap.String("topic", topic))}
}

func (l *KafkaErrorLogger) Printf(format string, a ...interface{}) {
	l.lg.ErrorCtx(l.ctx, fmt.Sprintf(format, a...))
}

func kafkaContext(lg *ZapLogger) context.Context {
	return lg.WithContextFields(context.Background(), zap.String("component", "kafka"))
}
