package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/models"
	"github.com/vysogota0399/gophermart_transfers/internal/storage"
)

type OutboxEventsRepository struct {
	strg OutboxEventsStorage
	lg   *logging.ZapLogger
}

type OutboxEventsStorage interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

func NewOutboxEventsRepository(strg *storage.Storage, lg *logging.ZapLogger) *OutboxEventsRepository {
	return &OutboxEventsRepository{strg: strg.DB, lg: lg}
}

// ReserveTransferCompletedEvent moves the oldest new event into processing and
// returns it, or returns nil when there is nothing to publish.
func (rep *OutboxEventsRepository) ReserveTransferCompletedEvent(ctx context.Context) (*models.TransferCompletedEvent, error) {
	tx, err := rep.strg.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("outbox_events_repository: create tx error %w", err)
	}
	defer tx.Rollback(ctx)

	e := &models.TransferCompletedEvent{
		Name:  TransferCompletedEventName,
		State: models.TransferEventProcessingState,
		Meta:  &models.TransferCompletedEventMeta{},
	}
	row := tx.QueryRow(
		ctx,
		`
			SELECT uuid::text, message
			FROM outbox_events
			WHERE name = $1 AND state = $2
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		`,
		TransferCompletedEventName, models.TransferEventNewState)

	if err := row.Scan(&e.UUID, e.Meta); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("outbox_events_repository: scan attributes error %w", err)
	}

	if _, err := tx.Exec(ctx,
		`
			UPDATE outbox_events
			SET state = $1, reserved_at = now()
			WHERE uuid = $2
		`,
		models.TransferEventProcessingState, e.UUID); err != nil {
		return nil, fmt.Errorf("outbox_events_repository: reserve event error %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("outbox_events_repository: commit tx error %w", err)
	}

	return e, nil
}

func (rep *OutboxEventsRepository) SetState(ctx context.Context, uuid string, newState string) error {
	if _, err := rep.strg.Exec(ctx,
		`
			UPDATE outbox_events
			SET state = $1
			WHERE uuid = $2
		`,
		newState, uuid); err != nil {
		return fmt.Errorf("outbox_events_repository: set state error %w", err)
	}

	return nil
}

// Requeue puts failed events and events stuck in processing for longer than
// lease back into the new state. A worker that died after reserving an event
// leaves it in processing, the lease is what brings it back.
func (rep *OutboxEventsRepository) Requeue(ctx context.Context, lease time.Duration) (int64, error) {
	tag, err := rep.strg.Exec(ctx,
		`
			UPDATE outbox_events
			SET state = $1, reserved_at = NULL
			WHERE name = $2
				AND (
					state = $3
					OR (state = $4 AND reserved_at < now() - make_interval(secs => $5))
				)
		`,
		models.TransferEventNewState,
		TransferCompletedEventName,
		models.TransferEventFailedState,
		models.TransferEventProcessingState,
		lease.Seconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("outbox_events_repository: requeue events error %w", err)
	}

	return tag.RowsAffected(), nil
}
