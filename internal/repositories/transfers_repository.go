package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/vysogota0399/gophermart_transfers/internal/config"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/models"
	"github.com/vysogota0399/gophermart_transfers/internal/storage"
	"github.com/vysogota0399/gophermart_transfers/internal/transfers"
)

const TransferCompletedEventName = "transfer_completed"

// TransfersRepository is the PostgreSQL unit of work factory used by the
// transfer service. Every unit of work is one READ COMMITTED transaction whose
// lock waits are bounded by lock_timeout.
type TransfersRepository struct {
	strg        TransfersStorage
	lockTimeout time.Duration
	lg          *logging.ZapLogger
}

type TransfersStorage interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

func NewTransfersRepository(strg *storage.Storage, cfg *config.Config, lg *logging.ZapLogger) *TransfersRepository {
	return &TransfersRepository{strg: strg.DB, lockTimeout: cfg.LockTimeoutDuration(), lg: lg}
}

func (rep *TransfersRepository) Begin(ctx context.Context) (transfers.UnitOfWork, error) {
	tx, err := rep.strg.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("transfers_repository: create tx error %w", classify(err))
	}

	if rep.lockTimeout > 0 {
		if _, err := tx.Exec(
			ctx,
			`SELECT set_config('lock_timeout', $1, true)`,
			fmt.Sprintf("%dms", rep.lockTimeout.Milliseconds()),
		); err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("transfers_repository: set lock timeout error %w", classify(err))
		}
	}

	return &transferTx{tx: tx}, nil
}

type transferTx struct {
	tx pgx.Tx
}

func (t *transferTx) LookupIdempotencyKey(ctx context.Context, key string) (*models.IdempotencyRecord, error) {
	// serializes concurrent requests with the same key until this transaction ends
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return nil, fmt.Errorf("transfers_repository: idempotency key lock error %w", classify(err))
	}

	rec := &models.IdempotencyRecord{Key: key}
	row := t.tx.QueryRow(
		ctx,
		`
			SELECT response_status, response_body, created_at
			FROM idempotency_keys
			WHERE idempotency_key = $1
		`,
		key,
	)

	if err := row.Scan(&rec.ResponseStatus, &rec.ResponseBody, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("transfers_repository: fetch idempotency key error %w", classify(err))
	}

	return rec, nil
}

func (t *transferTx) LockAccountForUpdate(ctx context.Context, id models.AccountID) (*models.Account, error) {
	acc := &models.Account{ID: id}
	var balance string

	row := t.tx.QueryRow(
		ctx,
		`
			SELECT balance::text, version, updated_at
			FROM accounts
			WHERE id = $1
			FOR UPDATE
		`,
		id.UUID(),
	)

	if err := row.Scan(&balance, &acc.Version, &acc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transfers_repository: account %s error %w", id, models.ErrAccountNotFound)
		}

		return nil, fmt.Errorf("transfers_repository: lock account %s error %w", id, classify(err))
	}

	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("transfers_repository: parse balance %q error %w", balance, err)
	}
	acc.Balance = amount

	return acc, nil
}

func (t *transferTx) PersistAccount(ctx context.Context, account *models.Account) error {
	var updatedAt time.Time

	row := t.tx.QueryRow(
		ctx,
		`
			UPDATE accounts
			SET balance = $1::numeric, version = version + 1, updated_at = now()
			WHERE id = $2 AND version = $3
			RETURNING updated_at
		`,
		account.Balance.String(), account.ID.UUID(), account.Version,
	)

	if err := row.Scan(&updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("transfers_repository: update account %s error %w", account.ID, models.ErrConcurrencyConflict)
		}

		return fmt.Errorf("transfers_repository: update account %s error %w", account.ID, classify(err))
	}

	account.Version++
	account.UpdatedAt = updatedAt

	return nil
}

// AppendAuditLog writes the transaction log entry and enqueues the matching
// transfer_completed outbox event in the same transaction.
func (t *transferTx) AppendAuditLog(ctx context.Context, from, to models.AccountID, amount decimal.Decimal) error {
	log := &models.TransactionLog{
		ID:     uuid.New(),
		From:   from,
		To:     to,
		Amount: amount,
	}

	row := t.tx.QueryRow(
		ctx,
		`
			INSERT INTO transaction_logs(id, from_account_id, to_account_id, amount)
			VALUES ($1, $2, $3, $4::numeric)
			RETURNING created_at
		`,
		log.ID, from.UUID(), to.UUID(), amount.String(),
	)
	if err := row.Scan(&log.CreatedAt); err != nil {
		return fmt.Errorf("transfers_repository: create transaction log error %w", classify(err))
	}

	message, err := json.Marshal(models.NewTransferCompletedEventMeta(log))
	if err != nil {
		return fmt.Errorf("transfers_repository: marshal outbox message error %w", err)
	}

	if _, err := t.tx.Exec(
		ctx,
		`
			INSERT INTO outbox_events(uuid, name, state, message)
			VALUES ($1, $2, $3, $4)
		`,
		uuid.New(), TransferCompletedEventName, models.TransferEventNewState, string(message),
	); err != nil {
		return fmt.Errorf("transfers_repository: create outbox event error %w", classify(err))
	}

	return nil
}

func (t *transferTx) PersistIdempotencyKey(ctx context.Context, record *models.IdempotencyRecord) error {
	if _, err := t.tx.Exec(
		ctx,
		`
			INSERT INTO idempotency_keys(idempotency_key, response_status, response_body)
			VALUES ($1, $2, $3)
		`,
		record.Key, record.ResponseStatus, record.ResponseBody,
	); err != nil {
		return fmt.Errorf("transfers_repository: create idempotency key error %w", classify(err))
	}

	return nil
}

func (t *transferTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("transfers_repository: commit tx error %w: %w", models.ErrCommitFailed, err)
	}

	return nil
}

func (t *transferTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("transfers_repository: rollback tx error %w", err)
	}

	return nil
}

// classify attaches the transfer error kind to a driver error, keeping the
// driver error in the chain.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %w", models.ErrDuplicateKey, err)
		case pgerrcode.CheckViolation:
			return fmt.Errorf("%w: %w", models.ErrInsufficientFunds, err)
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return fmt.Errorf("%w: %w", models.ErrConcurrencyConflict, err)
		case pgerrcode.LockNotAvailable, pgerrcode.QueryCanceled, pgerrcode.AdminShutdown,
			pgerrcode.CannotConnectNow, pgerrcode.TooManyConnections:
			return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
		}

		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}

	return err
}

var _ transfers.Storage = (*TransfersRepository)(nil)
