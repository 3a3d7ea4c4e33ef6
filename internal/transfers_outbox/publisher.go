package transfers_outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/vysogota0399/gophermart_transfers/internal/config"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// KafkaPublisher writes transfer_completed events keyed by the sender account,
// so events of one account keep their order within a partition.
type KafkaPublisher struct {
	lg     *logging.ZapLogger
	writer MessageWriter
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaPublisher(
	lc fx.Lifecycle,
	lg *logging.ZapLogger,
	cfg *Config,
	globalCFG *config.Config,
	errLogger *logging.KafkaErrorLogger,
	logger *logging.KafkaLogger,
) *KafkaPublisher {
	lg.DebugCtx(context.Background(), "init transfer completed events publisher", zap.Any("config", cfg))

	w := &kafka.Writer{
		Addr:                   kafka.TCP(globalCFG.KafkaBrokers...),
		Topic:                  cfg.KafkaTransferCompletedTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           time.Duration(cfg.KafkaWriteTimeout) * time.Millisecond,
		BatchTimeout:           time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		AllowAutoTopicCreation: true,
		Logger:                 logger.ForTopic(cfg.KafkaTransferCompletedTopic),
		ErrorLogger:            errLogger.ForTopic(cfg.KafkaTransferCompletedTopic),
	}

	pub := &KafkaPublisher{lg: lg, writer: w}

	lc.Append(
		fx.Hook{
			OnStop: func(ctx context.Context) error {
				return pub.writer.Close()
			},
		},
	)

	return pub
}

func (pub *KafkaPublisher) Publish(ctx context.Context, e *models.TransferCompletedEvent) error {
	payload, err := json.Marshal(e.Meta)
	if err != nil {
		return fmt.Errorf("transfers_outbox/publisher: marshal event error %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.Meta.FromAccountID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_uuid", Value: []byte(e.UUID)},
			{Key: "event_name", Value: []byte(e.Name)},
		},
	}

	if err := pub.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("transfers_outbox/publisher: write message error %w", err)
	}

	pub.lg.DebugCtx(ctx, "published message", zap.String("event_uuid", e.UUID))
	return nil
}
