package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionLog is the append-only audit record of an applied transfer.
type TransactionLog struct {
	ID        uuid.UUID
	From      AccountID
	To        AccountID
	Amount    decimal.Decimal
	CreatedAt time.Time
}
