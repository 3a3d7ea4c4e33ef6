package transfers_outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Daemon struct {
	lg              *logging.ZapLogger
	pollInterval    time.Duration
	requeueInterval time.Duration
	processingLease time.Duration
	workersCount    int64
	cfg             *Config

	cancaller context.CancelFunc
	wg        sync.WaitGroup
	events    OutboxEventsRepository
	publisher Publisher
}

type OutboxEventsRepository interface {
	ReserveTransferCompletedEvent(ctx context.Context) (*models.TransferCompletedEvent, error)
	SetState(ctx context.Context, uuid string, newState string) error
	Requeue(ctx context.Context, lease time.Duration) (int64, error)
}

type Publisher interface {
	Publish(ctx context.Context, e *models.TransferCompletedEvent) error
}

func NewDaemon(
	lc fx.Lifecycle,
	events OutboxEventsRepository,
	publisher Publisher,
	lg *logging.ZapLogger,
	cfg *Config,
) *Daemon {
	dmn := &Daemon{
		lg:              lg,
		pollInterval:    time.Duration(cfg.PollInterval) * time.Millisecond,
		requeueInterval: time.Duration(cfg.RequeueInterval) * time.Millisecond,
		processingLease: time.Duration(cfg.ProcessingLease) * time.Millisecond,
		workersCount:    cfg.WorkersCount,
		cfg:             cfg,
		events:          events,
		publisher:       publisher,
	}
	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				dmn.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				dmn.Stop()
				return nil
			},
		},
	)

	return dmn
}

func (dmn *Daemon) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	dmn.cancaller = cancel
	ctx = dmn.lg.WithContextFields(ctx, zap.String("name", "transfer_completed_events_daemon"))

	dmn.lg.DebugCtx(ctx, "start publishing transfer_completed events", zap.Any("config", dmn.cfg))

	for i := 0; i < int(dmn.workersCount); i++ {
		wctx := dmn.lg.WithContextFields(ctx, zap.Int("worker_id", i))
		dmn.every(wctx, dmn.pollInterval, func(ctx context.Context) {
			if err := dmn.processEvent(ctx); err != nil {
				dmn.lg.ErrorCtx(ctx, "process event finished error", zap.Error(err))
			}
		})
	}

	if dmn.requeueInterval > 0 {
		rctx := dmn.lg.WithContextFields(ctx, zap.String("worker", "requeue"))
		dmn.every(rctx, dmn.requeueInterval, dmn.requeue)
	}
}

// Stop cancels the workers and waits for the in-flight events.
func (dmn *Daemon) Stop() {
	if dmn.cancaller != nil {
		dmn.cancaller()
	}

	dmn.wg.Wait()
}

func (dmn *Daemon) every(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) {
	dmn.wg.Add(1)
	go func() {
		defer dmn.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				dmn.lg.DebugCtx(ctx, "daemon worker graceful shutdown")
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}

// requeue returns failed events and events whose processing lease expired to
// the queue, so a worker crash between reserve and publish loses nothing.
func (dmn *Daemon) requeue(ctx context.Context) {
	n, err := dmn.events.Requeue(ctx, dmn.processingLease)
	if err != nil {
		dmn.lg.ErrorCtx(ctx, "requeue events error", zap.Error(err))
		return
	}

	if n > 0 {
		dmn.lg.InfoCtx(ctx, "events requeued", zap.Int64("count", n))
	}
}

func (dmn *Daemon) processEvent(ctx context.Context) error {
	e, err := dmn.events.ReserveTransferCompletedEvent(ctx)
	if err != nil {
		return fmt.Errorf("find first unprocessed event error %w", err)
	}

	if e == nil {
		return nil
	}

	ctx = dmn.lg.WithContextFields(ctx, zap.String("event_uuid", e.UUID))

	// the reserved event must not stay in processing if the daemon is stopping
	stateCtx := context.WithoutCancel(ctx)

	if err := dmn.publisher.Publish(ctx, e); err != nil {
		if err := dmn.events.SetState(stateCtx, e.UUID, models.TransferEventFailedState); err != nil {
			return fmt.Errorf("set processing event %s state error %w", models.TransferEventFailedState, err)
		}

		return fmt.Errorf("publish event error %w", err)
	}

	if err := dmn.events.SetState(stateCtx, e.UUID, models.TransferEventFinishedState); err != nil {
		return fmt.Errorf("set processing event %s state error %w", models.TransferEventFinishedState, err)
	}

	dmn.lg.InfoCtx(ctx, "transfer_completed event published")
	return nil
}
