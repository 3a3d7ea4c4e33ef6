package models

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountID identifies an account. IDs are totally ordered by their byte
// representation, which matches the ordering PostgreSQL uses for uuid columns.
type AccountID uuid.UUID

func NewAccountID() AccountID {
	return AccountID(uuid.New())
}

func ParseAccountID(s string) (AccountID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return AccountID{}, fmt.Errorf("models/account: parse account id error %w", err)
	}

	return AccountID(id), nil
}

func (id AccountID) UUID() uuid.UUID { return uuid.UUID(id) }

func (id AccountID) String() string { return uuid.UUID(id).String() }

// Compare returns -1, 0 or +1 depending on whether id sorts before, equal to
// or after other.
func (id AccountID) Compare(other AccountID) int {
	return bytes.Compare(id[:], other[:])
}

// OrderedPair returns a and b in canonical lock order.
func OrderedPair(a, b AccountID) (AccountID, AccountID) {
	if a.Compare(b) <= 0 {
		return a, b
	}

	return b, a
}

type Account struct {
	ID        AccountID
	OwnerName string
	Currency  string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Debit subtracts amount from the balance. On error the balance is untouched.
func (a *Account) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, amount)
	}

	if amount.GreaterThan(a.Balance) {
		return fmt.Errorf("%w: account %s has %s, requested %s", ErrInsufficientFunds, a.ID, a.Balance, amount)
	}

	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, amount)
	}

	a.Balance = a.Balance.Add(amount)
	return nil
}
