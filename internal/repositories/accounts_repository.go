package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/models"
	"github.com/vysogota0399/gophermart_transfers/internal/storage"
	"go.uber.org/zap"
)

const DefaultCurrency = "USD"

// AccountsRepository opens accounts and reads their committed state. Balance
// changes go exclusively through TransfersRepository.
type AccountsRepository struct {
	strg AccountsStorage
	lg   *logging.ZapLogger
}

type AccountsStorage interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

func NewAccountsRepository(strg *storage.Storage, lg *logging.ZapLogger) *AccountsRepository {
	return &AccountsRepository{strg: strg.DB, lg: lg}
}

func (rep *AccountsRepository) Create(ctx context.Context, account *models.Account) error {
	if account.Balance.IsNegative() {
		return fmt.Errorf("accounts_repository: opening balance error %w", models.ErrInvalidAmount)
	}

	if account.Currency == "" {
		account.Currency = DefaultCurrency
	}

	rep.lg.DebugCtx(
		ctx,
		"create account query",
		zap.Stringer("account_id", account.ID),
		zap.Stringer("balance", account.Balance),
	)

	row := rep.strg.QueryRow(
		ctx,
		`
			INSERT INTO accounts(id, owner_name, balance, currency)
			VALUES ($1, $2, $3::numeric, $4)
			RETURNING version, created_at, updated_at
		`,
		account.ID.UUID(), account.OwnerName, account.Balance.String(), account.Currency,
	)

	if err := row.Scan(&account.Version, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return fmt.Errorf("accounts_repository: save account error %w", classify(err))
	}

	return nil
}

func (rep *AccountsRepository) Find(ctx context.Context, id models.AccountID) (*models.Account, error) {
	account := &models.Account{ID: id}
	var balance string

	row := rep.strg.QueryRow(
		ctx,
		`
			SELECT owner_name, currency, balance::text, version, created_at, updated_at
			FROM accounts
			WHERE id = $1
		`,
		id.UUID(),
	)

	if err := row.Scan(
		&account.OwnerName,
		&account.Currency,
		&balance,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("accounts_repository: account %s error %w", id, models.ErrAccountNotFound)
		}

		return nil, fmt.Errorf("accounts_repository: query account error %w", classify(err))
	}

	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("accounts_repository: parse balance %q error %w", balance, err)
	}
	account.Balance = amount

	return account, nil
}
