package transfers

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vysogota0399/gophermart_transfers/internal/models"
)

// Storage opens units of work. Implementations must be safe for concurrent use.
type Storage interface {
	// Begin fails with models.ErrStorageUnavailable when no unit of work can be started.
	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork is one exclusively owned transaction. Nothing written through it is
// visible to other units of work before Commit. Rollback discards everything and
// is a no-op once Commit or Rollback has already been called.
type UnitOfWork interface {
	// LookupIdempotencyKey returns the stored record for key or nil. It serializes
	// with any other unit of work that looks up or inserts the same key.
	LookupIdempotencyKey(ctx context.Context, key string) (*models.IdempotencyRecord, error)

	// LockAccountForUpdate reads the account and holds an exclusive lock on it
	// until the unit of work ends. Fails with models.ErrAccountNotFound.
	LockAccountForUpdate(ctx context.Context, id models.AccountID) (*models.Account, error)

	// PersistAccount writes the balance and bumps the stored version. Fails with
	// models.ErrConcurrencyConflict when no row was updated.
	PersistAccount(ctx context.Context, account *models.Account) error

	AppendAuditLog(ctx context.Context, from, to models.AccountID, amount decimal.Decimal) error

	// PersistIdempotencyKey fails with models.ErrDuplicateKey when the key is taken.
	PersistIdempotencyKey(ctx context.Context, record *models.IdempotencyRecord) error

	// Commit fails with models.ErrCommitFailed, in which case no write took effect.
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
