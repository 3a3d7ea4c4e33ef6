package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransferEventNewState        = "new"
	TransferEventProcessingState = "processing"
	TransferEventFinishedState   = "finished"
	TransferEventFailedState     = "failed"
)

type TransferCompletedEvent struct {
	UUID  string
	State string
	Name  string
	Meta  *TransferCompletedEventMeta
}

type TransferCompletedEventMeta struct {
	TransactionLogID string          `json:"transaction_log_id"`
	FromAccountID    string          `json:"from_account_id"`
	ToAccountID      string          `json:"to_account_id"`
	Amount           decimal.Decimal `json:"amount"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

func NewTransferCompletedEventMeta(log *TransactionLog) *TransferCompletedEventMeta {
	return &TransferCompletedEventMeta{
		TransactionLogID: log.ID.String(),
		FromAccountID:    log.From.String(),
		ToAccountID:      log.To.String(),
		Amount:           log.Amount,
		OccurredAt:       log.CreatedAt,
	}
}

func (m *TransferCompletedEventMeta) Scan(value interface{}) error {
	if value == nil {
		*m = TransferCompletedEventMeta{}
		return nil
	}

	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), m)
	case []byte:
		return json.Unmarshal(v, m)
	default:
		return fmt.Errorf("models/transfer_event: meta invalid format error, expected json")
	}
}

func (m TransferCompletedEventMeta) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("models/transfer_event: meta json marshal error %w", err)
	}

	return string(b), nil
}
