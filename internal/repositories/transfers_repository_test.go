package repositories

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vysogota0399/gophermart_transfers/internal/config"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/models"
	"github.com/vysogota0399/gophermart_transfers/internal/storage"
	"github.com/vysogota0399/gophermart_transfers/internal/transfers"
	"go.uber.org/fx/fxtest"
	"golang.org/x/sync/errgroup"
)

type integrationEnv struct {
	accounts *AccountsRepository
	outbox   *OutboxEventsRepository
	repo     *TransfersRepository
	service  *transfers.Service
}

func newIntegrationEnv(t *testing.T) *integrationEnv {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	cfg := &config.Config{
		DatabaseDSN:            dsn,
		DatabaseMaxConns:       20,
		DatabaseConnectRetries: 3,
		LockTimeout:            2000,
	}
	lg := logging.NewNopLogger()

	lc := fxtest.NewLifecycle(t)
	strg, err := storage.NewStorage(lc, cfg, lg)
	require.NoError(t, err)
	lc.RequireStart()
	t.Cleanup(lc.RequireStop)

	repo := NewTransfersRepository(strg, cfg, lg)

	return &integrationEnv{
		accounts: NewAccountsRepository(strg, lg),
		outbox:   NewOutboxEventsRepository(strg, lg),
		repo:     repo,
		service:  transfers.NewService(repo, lg),
	}
}

func (env *integrationEnv) openAccount(t *testing.T, balance string) models.AccountID {
	t.Helper()

	acc := &models.Account{ID: models.NewAccountID(), OwnerName: t.Name(), Balance: decimal.RequireFromString(balance)}
	require.NoError(t, env.accounts.Create(context.Background(), acc))
	assert.Equal(t, int64(1), acc.Version)

	return acc.ID
}

func (env *integrationEnv) balance(t *testing.T, id models.AccountID) decimal.Decimal {
	t.Helper()

	acc, err := env.accounts.Find(context.Background(), id)
	require.NoError(t, err)

	return acc.Balance
}

func TestTransfersRepository_TransferAndReplay(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	a := env.openAccount(t, "1000000")
	b := env.openAccount(t, "0")
	key := "k1-" + uuid.NewString()

	msg, err := env.service.Execute(ctx, key, a, b, decimal.RequireFromString("50000"))
	require.NoError(t, err)
	assert.Equal(t, transfers.SuccessMessage, msg)
	assert.True(t, env.balance(t, a).Equal(decimal.RequireFromString("950000")))
	assert.True(t, env.balance(t, b).Equal(decimal.RequireFromString("50000")))

	msg, err = env.service.Execute(ctx, key, a, b, decimal.RequireFromString("50000"))
	require.NoError(t, err)
	assert.Equal(t, transfers.SuccessMessage, msg)
	assert.True(t, env.balance(t, a).Equal(decimal.RequireFromString("950000")))

	acc, err := env.accounts.Find(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(2), acc.Version)
}

func TestTransfersRepository_LongIdempotencyKey(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	a := env.openAccount(t, "100")
	b := env.openAccount(t, "0")
	key := uuid.NewString() + strings.Repeat("x", 1000)

	msg, err := env.service.Execute(ctx, key, a, b, decimal.RequireFromString("1"))
	require.NoError(t, err)
	assert.Equal(t, transfers.SuccessMessage, msg)

	msg, err = env.service.Execute(ctx, key, a, b, decimal.RequireFromString("1"))
	require.NoError(t, err)
	assert.Equal(t, transfers.SuccessMessage, msg)
	assert.True(t, env.balance(t, a).Equal(decimal.RequireFromString("99")))
}

func TestTransfersRepository_Rejections(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	a := env.openAccount(t, "10.50")
	b := env.openAccount(t, "0")

	_, err := env.service.Execute(ctx, uuid.NewString(), a, b, decimal.RequireFromString("10.51"))
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	_, err = env.service.Execute(ctx, uuid.NewString(), a, b, decimal.Zero)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = env.service.Execute(ctx, uuid.NewString(), a, models.NewAccountID(), decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, models.ErrAccountNotFound)

	assert.True(t, env.balance(t, a).Equal(decimal.RequireFromString("10.50")))

	_, err = env.service.Execute(ctx, uuid.NewString(), a, b, decimal.RequireFromString("10.50"))
	require.NoError(t, err)
	assert.True(t, env.balance(t, a).IsZero())
}

func TestTransfersRepository_ConcurrentOppositeTransfers(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	a := env.openAccount(t, "1000")
	b := env.openAccount(t, "1000")

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			_, err := env.service.Execute(gctx, uuid.NewString(), a, b, decimal.RequireFromString("2.25"))
			return err
		})
		g.Go(func() error {
			_, err := env.service.Execute(gctx, uuid.NewString(), b, a, decimal.RequireFromString("1.25"))
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.True(t, env.balance(t, a).Equal(decimal.RequireFromString("980")))
	assert.True(t, env.balance(t, b).Equal(decimal.RequireFromString("1020")))
}

func TestTransfersRepository_ConcurrentSameKey(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	a := env.openAccount(t, "100")
	b := env.openAccount(t, "0")
	key := uuid.NewString()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			msg, err := env.service.Execute(gctx, key, a, b, decimal.RequireFromString("10"))
			if err == nil {
				assert.Equal(t, transfers.SuccessMessage, msg)
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.True(t, env.balance(t, a).Equal(decimal.RequireFromString("90")))
	assert.True(t, env.balance(t, b).Equal(decimal.RequireFromString("10")))
}

func TestTransfersRepository_LockTimeout(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	a := env.openAccount(t, "100")
	b := env.openAccount(t, "0")

	holder, err := env.repo.Begin(ctx)
	require.NoError(t, err)
	_, err = holder.LockAccountForUpdate(ctx, a)
	require.NoError(t, err)

	env.repo.lockTimeout = 100 * time.Millisecond
	_, err = env.service.Execute(ctx, uuid.NewString(), a, b, decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)

	require.NoError(t, holder.Rollback(ctx))

	_, err = env.service.Execute(ctx, uuid.NewString(), a, b, decimal.RequireFromString("1"))
	require.NoError(t, err)
}

func TestOutboxEventsRepository_ReserveTransferCompletedEvent(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	a := env.openAccount(t, "100")
	b := env.openAccount(t, "0")

	_, err := env.service.Execute(ctx, uuid.NewString(), a, b, decimal.RequireFromString("42.10"))
	require.NoError(t, err)

	// other tests share the table, drain until our event shows up
	for {
		e, err := env.outbox.ReserveTransferCompletedEvent(ctx)
		require.NoError(t, err)
		require.NotNil(t, e, "transfer_completed event not found")
		require.NoError(t, env.outbox.SetState(ctx, e.UUID, models.TransferEventFinishedState))

		if e.Meta.FromAccountID == a.String() {
			assert.Equal(t, b.String(), e.Meta.ToAccountID)
			assert.True(t, e.Meta.Amount.Equal(decimal.RequireFromString("42.10")))
			assert.Equal(t, TransferCompletedEventName, e.Name)
			return
		}
	}
}

// reserveEventFrom reserves events until the one sent by from shows up. Other
// events are marked finished. Returns nil when the queue runs dry.
func (env *integrationEnv) reserveEventFrom(t *testing.T, from models.AccountID) *models.TransferCompletedEvent {
	t.Helper()
	ctx := context.Background()

	for {
		e, err := env.outbox.ReserveTransferCompletedEvent(ctx)
		require.NoError(t, err)

		if e == nil || e.Meta.FromAccountID == from.String() {
			return e
		}

		require.NoError(t, env.outbox.SetState(ctx, e.UUID, models.TransferEventFinishedState))
	}
}

func TestOutboxEventsRepository_RequeueStaleProcessing(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	a := env.openAccount(t, "100")
	b := env.openAccount(t, "0")

	_, err := env.service.Execute(ctx, uuid.NewString(), a, b, decimal.RequireFromString("5"))
	require.NoError(t, err)

	// reserved and never finished, as after a crash
	reserved := env.reserveEventFrom(t, a)
	require.NotNil(t, reserved)

	_, err = env.outbox.Requeue(ctx, time.Hour)
	require.NoError(t, err)
	assert.Nil(t, env.reserveEventFrom(t, a), "event requeued before its lease expired")

	time.Sleep(50 * time.Millisecond)

	n, err := env.outbox.Requeue(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	again := env.reserveEventFrom(t, a)
	require.NotNil(t, again)
	assert.Equal(t, reserved.UUID, again.UUID)
	require.NoError(t, env.outbox.SetState(ctx, again.UUID, models.TransferEventFinishedState))
}

func TestOutboxEventsRepository_RequeueFailed(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	a := env.openAccount(t, "100")
	b := env.openAccount(t, "0")

	_, err := env.service.Execute(ctx, uuid.NewString(), a, b, decimal.RequireFromString("5"))
	require.NoError(t, err)

	e := env.reserveEventFrom(t, a)
	require.NotNil(t, e)
	require.NoError(t, env.outbox.SetState(ctx, e.UUID, models.TransferEventFailedState))

	n, err := env.outbox.Requeue(ctx, time.Hour)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))

	again := env.reserveEventFrom(t, a)
	require.NotNil(t, again)
	require.NoError(t, env.outbox.SetState(ctx, again.UUID, models.TransferEventFinishedState))
}
