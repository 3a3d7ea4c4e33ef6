package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccount(balance string) *Account {
	return &Account{ID: NewAccountID(), Balance: decimal.RequireFromString(balance), Version: 1}
}

func TestAccount_Debit(t *testing.T) {
	tests := []struct {
		name        string
		balance     string
		amount      string
		wantErr     error
		wantBalance string
	}{
		{name: "debit part of balance", balance: "100", amount: "50", wantBalance: "50"},
		{name: "debit whole balance", balance: "100", amount: "100", wantBalance: "0"},
		{name: "debit fractional amount", balance: "0.30", amount: "0.10", wantBalance: "0.20"},
		{name: "insufficient funds", balance: "100", amount: "150", wantErr: ErrInsufficientFunds, wantBalance: "100"},
		{name: "zero amount", balance: "100", amount: "0", wantErr: ErrInvalidAmount, wantBalance: "100"},
		{name: "negative amount", balance: "100", amount: "-10", wantErr: ErrInvalidAmount, wantBalance: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newAccount(tt.balance)

			err := acc.Debit(decimal.RequireFromString(tt.amount))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.True(t, acc.Balance.Equal(decimal.RequireFromString(tt.wantBalance)), "balance %s", acc.Balance)
			assert.Equal(t, int64(1), acc.Version)
		})
	}
}

func TestAccount_Credit(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		wantErr     error
		wantBalance string
	}{
		{name: "credit", amount: "50", wantBalance: "150"},
		{name: "credit cents", amount: "0.01", wantBalance: "100.01"},
		{name: "zero amount", amount: "0", wantErr: ErrInvalidAmount, wantBalance: "100"},
		{name: "negative amount", amount: "-10", wantErr: ErrInvalidAmount, wantBalance: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newAccount("100")

			err := acc.Credit(decimal.RequireFromString(tt.amount))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.True(t, acc.Balance.Equal(decimal.RequireFromString(tt.wantBalance)), "balance %s", acc.Balance)
		})
	}
}

func TestAccount_NoFloatDrift(t *testing.T) {
	acc := newAccount("0")
	for i := 0; i < 10; i++ {
		require.NoError(t, acc.Credit(decimal.RequireFromString("0.1")))
	}

	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(1)))
}

func TestOrderedPair(t *testing.T) {
	low, _ := ParseAccountID("00000000-0000-0000-0000-000000000001")
	high, _ := ParseAccountID("ffffffff-0000-0000-0000-000000000000")

	a, b := OrderedPair(high, low)
	assert.Equal(t, low, a)
	assert.Equal(t, high, b)

	a, b = OrderedPair(low, high)
	assert.Equal(t, low, a)
	assert.Equal(t, high, b)

	a, b = OrderedPair(low, low)
	assert.Equal(t, low, a)
	assert.Equal(t, low, b)
}

func TestParseAccountID(t *testing.T) {
	_, err := ParseAccountID("not-a-uuid")
	assert.Error(t, err)

	id := NewAccountID()
	parsed, err := ParseAccountID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "InsufficientFunds", ErrorKind(fmt.Errorf("wrapped: %w", ErrInsufficientFunds)))
	assert.Equal(t, "CommitFailed", ErrorKind(fmt.Errorf("%w: %w", ErrCommitFailed, errors.New("serialization failure"))))
	assert.Equal(t, "Internal", ErrorKind(errors.New("boom")))
}
