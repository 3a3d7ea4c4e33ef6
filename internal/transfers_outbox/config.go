package transfers_outbox

import (
	"github.com/caarlos0/env"
)

type Config struct {
	PollInterval    int   `json:"poll_interval" env:"DAEMON_TRANSFER_COMPLETED_EVENT_POLL_INTERVAL" envDefault:"250"`
	RequeueInterval int   `json:"requeue_interval" env:"DAEMON_TRANSFER_COMPLETED_EVENT_REQUEUE_INTERVAL" envDefault:"30000"`
	ProcessingLease int   `json:"processing_lease" env:"DAEMON_TRANSFER_COMPLETED_EVENT_PROCESSING_LEASE" envDefault:"60000"`
	WorkersCount    int64 `json:"workers_count" env:"DAEMON_WORKERS_COUNT" envDefault:"5"`

	KafkaTransferCompletedTopic string `json:"kafka_transfer_completed_topic" env:"KAFKA_TRANSFER_COMPLETED_TOPIC" envDefault:"transfer_completed"`
	KafkaWriteTimeout           int    `json:"kafka_write_timeout" env:"KAFKA_WRITE_TIMEOUT" envDefault:"10000"`
	KafkaBatchTimeout           int    `json:"kafka_batch_timeout" env:"KAFKA_BATCH_TIMEOUT" envDefault:"10"`
}

func MustNewConfig() *Config {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		panic(err)
	}

	return c
}
