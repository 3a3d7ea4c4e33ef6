package models

import "errors"

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrAccountNotFound     = errors.New("account not found")
	ErrConcurrencyConflict = errors.New("concurrency conflict: account was not updated")
	ErrDuplicateKey        = errors.New("idempotency key already recorded")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrCommitFailed        = errors.New("commit failed")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidAmount, "InvalidAmount"},
	{ErrInsufficientFunds, "InsufficientFunds"},
	{ErrAccountNotFound, "AccountNotFound"},
	{ErrConcurrencyConflict, "ConcurrencyConflict"},
	{ErrDuplicateKey, "DuplicateKey"},
	{ErrStorageUnavailable, "StorageUnavailable"},
	{ErrCommitFailed, "CommitFailed"},
}

// ErrorKind returns the taxonomy name of err, or "Internal" when err does not
// wrap any of the known sentinels.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}

	return "Internal"
}
