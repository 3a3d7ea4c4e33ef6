// Package memory is an in-process implementation of the transfer storage with
// the same isolation and locking semantics as the PostgreSQL adapter: exclusive
// per-account locks held until the unit of work ends, per-key serialization of
// idempotency lookups, and writes that become visible only on commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vysogota0399/gophermart_transfers/internal/models"
	"github.com/vysogota0399/gophermart_transfers/internal/transfers"
)

var errUnitOfWorkFinished = errors.New("memory: unit of work already finished")

// rowLock is a mutex whose acquisition can be abandoned through a context.
type rowLock chan struct{}

func newRowLock() rowLock { return make(rowLock, 1) }

func (l rowLock) lock(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l rowLock) unlock() { <-l }

type Store struct {
	mu          sync.Mutex
	accounts    map[models.AccountID]models.Account
	records     map[string]models.IdempotencyRecord
	logs        []models.TransactionLog
	accountLock map[models.AccountID]rowLock
	keyLock     map[string]rowLock

	unavailable   bool
	failedCommits int
}

func NewStore() *Store {
	return &Store{
		accounts:    make(map[models.AccountID]models.Account),
		records:     make(map[string]models.IdempotencyRecord),
		accountLock: make(map[models.AccountID]rowLock),
		keyLock:     make(map[string]rowLock),
	}
}

// CreateAccount provisions an account with version 1.
func (s *Store) CreateAccount(id models.AccountID, balance decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[id] = models.Account{ID: id, Balance: balance, Version: 1, UpdatedAt: time.Now()}
}

// Account returns the last committed state of id.
func (s *Store) Account(id models.AccountID) (models.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	return acc, ok
}

func (s *Store) Balance(id models.AccountID) decimal.Decimal {
	acc, _ := s.Account(id)
	return acc.Balance
}

func (s *Store) AuditLog() []models.TransactionLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]models.TransactionLog, len(s.logs))
	copy(copied, s.logs)
	return copied
}

func (s *Store) IdempotencyRecord(key string) (models.IdempotencyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	return rec, ok
}

// SetUnavailable makes Begin fail until it is called again with false.
func (s *Store) SetUnavailable(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unavailable = v
}

// FailNextCommits makes the next n commits fail without applying anything.
func (s *Store) FailNextCommits(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failedCommits = n
}

func (s *Store) Begin(ctx context.Context) (transfers.UnitOfWork, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unavailable {
		return nil, fmt.Errorf("memory: begin unit of work error %w", models.ErrStorageUnavailable)
	}

	return &unitOfWork{
		store:    s,
		accounts: make(map[models.AccountID]*models.Account),
		keys:     make(map[string]struct{}),
		writes:   make(map[models.AccountID]models.Account),
	}, nil
}

func (s *Store) lockFor(id models.AccountID) rowLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.accountLock[id]
	if !ok {
		l = newRowLock()
		s.accountLock[id] = l
	}

	return l
}

func (s *Store) keyLockFor(key string) rowLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.keyLock[key]
	if !ok {
		l = newRowLock()
		s.keyLock[key] = l
	}

	return l
}

type unitOfWork struct {
	store *Store
	done  bool

	// locked rows with their in-transaction view
	accounts map[models.AccountID]*models.Account
	keys     map[string]struct{}

	writes  map[models.AccountID]models.Account
	records []models.IdempotencyRecord
	logs    []models.TransactionLog
}

func (u *unitOfWork) LookupIdempotencyKey(ctx context.Context, key string) (*models.IdempotencyRecord, error) {
	if u.done {
		return nil, errUnitOfWorkFinished
	}

	if _, held := u.keys[key]; !held {
		if err := u.store.keyLockFor(key).lock(ctx); err != nil {
			return nil, fmt.Errorf("memory: idempotency key lock error %w: %w", models.ErrStorageUnavailable, err)
		}
		u.keys[key] = struct{}{}
	}

	for _, rec := range u.records {
		if rec.Key == key {
			return &rec, nil
		}
	}

	rec, ok := u.store.IdempotencyRecord(key)
	if !ok {
		return nil, nil
	}

	return &rec, nil
}

func (u *unitOfWork) LockAccountForUpdate(ctx context.Context, id models.AccountID) (*models.Account, error) {
	if u.done {
		return nil, errUnitOfWorkFinished
	}

	if acc, held := u.accounts[id]; held {
		copied := *acc
		return &copied, nil
	}

	if _, ok := u.store.Account(id); !ok {
		return nil, fmt.Errorf("memory: account %s error %w", id, models.ErrAccountNotFound)
	}

	l := u.store.lockFor(id)
	if err := l.lock(ctx); err != nil {
		return nil, fmt.Errorf("memory: account %s lock error %w: %w", id, models.ErrStorageUnavailable, err)
	}

	acc, ok := u.store.Account(id)
	if !ok {
		l.unlock()
		return nil, fmt.Errorf("memory: account %s error %w", id, models.ErrAccountNotFound)
	}

	u.accounts[id] = &acc
	copied := acc
	return &copied, nil
}

func (u *unitOfWork) PersistAccount(ctx context.Context, account *models.Account) error {
	if u.done {
		return errUnitOfWorkFinished
	}

	view, held := u.accounts[account.ID]
	if !held || view.Version != account.Version {
		return fmt.Errorf("memory: update account %s error %w", account.ID, models.ErrConcurrencyConflict)
	}

	account.Version++
	account.UpdatedAt = time.Now()
	*view = *account
	u.writes[account.ID] = *account

	return nil
}

func (u *unitOfWork) AppendAuditLog(ctx context.Context, from, to models.AccountID, amount decimal.Decimal) error {
	if u.done {
		return errUnitOfWorkFinished
	}

	u.logs = append(u.logs, models.TransactionLog{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		Amount:    amount,
		CreatedAt: time.Now(),
	})

	return nil
}

func (u *unitOfWork) PersistIdempotencyKey(ctx context.Context, record *models.IdempotencyRecord) error {
	if u.done {
		return errUnitOfWorkFinished
	}

	if _, ok := u.store.IdempotencyRecord(record.Key); ok {
		return fmt.Errorf("memory: insert idempotency key %q error %w", record.Key, models.ErrDuplicateKey)
	}

	for _, rec := range u.records {
		if rec.Key == record.Key {
			return fmt.Errorf("memory: insert idempotency key %q error %w", record.Key, models.ErrDuplicateKey)
		}
	}

	rec := *record
	rec.CreatedAt = time.Now()
	u.records = append(u.records, rec)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.done {
		return fmt.Errorf("memory: commit error %w: %w", models.ErrCommitFailed, errUnitOfWorkFinished)
	}
	defer u.release()

	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failedCommits > 0 {
		s.failedCommits--
		return fmt.Errorf("memory: commit error %w", models.ErrCommitFailed)
	}

	for _, rec := range u.records {
		if _, ok := s.records[rec.Key]; ok {
			return fmt.Errorf("memory: commit error %w: %w", models.ErrCommitFailed, models.ErrDuplicateKey)
		}
	}

	for id, acc := range u.writes {
		s.accounts[id] = acc
	}

	for _, rec := range u.records {
		s.records[rec.Key] = rec
	}

	s.logs = append(s.logs, u.logs...)

	return nil
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}

	u.release()
	return nil
}

func (u *unitOfWork) release() {
	u.done = true

	for id := range u.accounts {
		u.store.lockFor(id).unlock()
	}

	for key := range u.keys {
		u.store.keyLockFor(key).unlock()
	}
}

var _ transfers.Storage = (*Store)(nil)
