// Package transfers moves funds between two accounts as a single unit of work:
// idempotency check, canonical lock ordering, balance mutation, audit log,
// idempotency record and commit. All serialization is delegated to the storage
// row locks, so a Service holds no mutable state and is safe for concurrent use.
package transfers

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/models"
	"go.uber.org/zap"
)

// SuccessMessage is the response stored with every applied transfer.
const SuccessMessage = "Transfer Successful"

// Service is the transfer orchestrator.
type Service struct {
	storage Storage
	lg      *logging.ZapLogger
}

// NewService returns a Service that runs each transfer in its own unit of work.
func NewService(storage Storage, lg *logging.ZapLogger) *Service {
	return &Service{storage: storage, lg: lg}
}

// Execute applies the transfer once per idempotency key. A repeated key returns
// the response stored by the first successful call without touching balances.
// On any error nothing is persisted and the key stays unclaimed. Execute never
// retries.
func (s *Service) Execute(
	ctx context.Context,
	idempotencyKey string,
	from, to models.AccountID,
	amount decimal.Decimal,
) (string, error) {
	ctx = s.lg.WithContextFields(
		ctx,
		zap.String("idempotency_key", idempotencyKey),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Stringer("amount", amount),
	)

	uow, err := s.storage.Begin(ctx)
	if err != nil {
		s.lg.ErrorCtx(ctx, "begin unit of work failed", zap.Error(err))
		return "", fmt.Errorf("transfers: begin unit of work error %w", err)
	}
	defer s.rollback(ctx, uow)

	prev, err := uow.LookupIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		s.lg.ErrorCtx(ctx, "idempotency lookup failed", zap.Error(err))
		return "", fmt.Errorf("transfers: idempotency lookup error %w", err)
	}

	if prev != nil {
		s.lg.InfoCtx(ctx, "idempotency hit, returning stored response")
		return prev.ResponseBody, nil
	}

	if err := s.move(ctx, uow, from, to, amount); err != nil {
		return "", err
	}

	if err := uow.AppendAuditLog(ctx, from, to, amount); err != nil {
		s.lg.ErrorCtx(ctx, "append audit log failed", zap.Error(err))
		return "", fmt.Errorf("transfers: append audit log error %w", err)
	}

	record := &models.IdempotencyRecord{
		Key:            idempotencyKey,
		ResponseStatus: models.IdempotencyStatusOK,
		ResponseBody:   SuccessMessage,
	}
	if err := uow.PersistIdempotencyKey(ctx, record); err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			// release our locks first, the winner's record is read in a fresh unit of work
			s.rollback(ctx, uow)
			return s.replay(ctx, idempotencyKey, err)
		}

		s.lg.ErrorCtx(ctx, "persist idempotency key failed", zap.Error(err))
		return "", fmt.Errorf("transfers: persist idempotency key error %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		s.lg.ErrorCtx(ctx, "commit failed", zap.Error(err))
		return "", fmt.Errorf("transfers: commit error %w", err)
	}

	s.lg.InfoCtx(ctx, "transfer applied")
	return SuccessMessage, nil
}

func (s *Service) move(
	ctx context.Context,
	uow UnitOfWork,
	from, to models.AccountID,
	amount decimal.Decimal,
) error {
	if from == to {
		return s.moveToSelf(ctx, uow, from, amount)
	}

	low, high := models.OrderedPair(from, to)
	locked := make(map[models.AccountID]*models.Account, 2)
	for _, id := range [2]models.AccountID{low, high} {
		acc, err := uow.LockAccountForUpdate(ctx, id)
		if err != nil {
			s.lg.DebugCtx(ctx, "lock account failed", zap.Stringer("account_id", id), zap.Error(err))
			return fmt.Errorf("transfers: lock account %s error %w", id, err)
		}

		locked[id] = acc
	}

	sender, receiver := locked[from], locked[to]

	if err := sender.Debit(amount); err != nil {
		s.lg.DebugCtx(ctx, "debit rejected", zap.Error(err))
		return fmt.Errorf("transfers: debit error %w", err)
	}

	if err := receiver.Credit(amount); err != nil {
		s.lg.DebugCtx(ctx, "credit rejected", zap.Error(err))
		return fmt.Errorf("transfers: credit error %w", err)
	}

	for _, acc := range [2]*models.Account{sender, receiver} {
		if err := uow.PersistAccount(ctx, acc); err != nil {
			s.lg.ErrorCtx(ctx, "persist account failed", zap.Stringer("account_id", acc.ID), zap.Error(err))
			return fmt.Errorf("transfers: persist account %s error %w", acc.ID, err)
		}
	}

	return nil
}

// moveToSelf validates the amount against the single locked account and
// leaves the stored balance and version untouched.
func (s *Service) moveToSelf(ctx context.Context, uow UnitOfWork, id models.AccountID, amount decimal.Decimal) error {
	acc, err := uow.LockAccountForUpdate(ctx, id)
	if err != nil {
		s.lg.DebugCtx(ctx, "lock account failed", zap.Stringer("account_id", id), zap.Error(err))
		return fmt.Errorf("transfers: lock account %s error %w", id, err)
	}

	if err := acc.Debit(amount); err != nil {
		s.lg.DebugCtx(ctx, "debit rejected", zap.Error(err))
		return fmt.Errorf("transfers: debit error %w", err)
	}

	if err := acc.Credit(amount); err != nil {
		s.lg.DebugCtx(ctx, "credit rejected", zap.Error(err))
		return fmt.Errorf("transfers: credit error %w", err)
	}

	return nil
}

// replay answers a request whose key was inserted by a concurrent unit of work
// after our lookup.
func (s *Service) replay(ctx context.Context, idempotencyKey string, cause error) (string, error) {
	uow, err := s.storage.Begin(ctx)
	if err != nil {
		s.lg.ErrorCtx(ctx, "begin replay unit of work failed", zap.Error(err))
		return "", fmt.Errorf("transfers: begin replay unit of work error %w", err)
	}
	defer s.rollback(ctx, uow)

	prev, err := uow.LookupIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		s.lg.ErrorCtx(ctx, "replay idempotency lookup failed", zap.Error(err))
		return "", fmt.Errorf("transfers: replay idempotency lookup error %w", err)
	}

	if prev == nil {
		s.lg.ErrorCtx(ctx, "duplicate idempotency key without stored response", zap.Error(cause))
		return "", fmt.Errorf("transfers: persist idempotency key error %w", cause)
	}

	s.lg.InfoCtx(ctx, "idempotency key claimed concurrently, returning stored response")
	return prev.ResponseBody, nil
}

func (s *Service) rollback(ctx context.Context, uow UnitOfWork) {
	if err := uow.Rollback(context.WithoutCancel(ctx)); err != nil {
		s.lg.ErrorCtx(ctx, "rollback unit of work failed", zap.Error(err))
	}
}
