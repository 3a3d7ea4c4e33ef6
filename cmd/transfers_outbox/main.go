package main

import (
	main_config "github.com/vysogota0399/gophermart_transfers/internal/config"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/repositories"
	"github.com/vysogota0399/gophermart_transfers/internal/storage"
	"github.com/vysogota0399/gophermart_transfers/internal/transfers_outbox"
	"go.uber.org/fx"
)

func main() {
	fx.New(CreateApp()).Run()
}

func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(
			logging.NewZapLogger,
			logging.NewKafkaErrorLogger,
			logging.NewKafkaLogger,
			storage.NewStorage,

			transfers_outbox.NewDaemon,
			fx.Annotate(transfers_outbox.NewKafkaPublisher, fx.As(new(transfers_outbox.Publisher))),
			fx.Annotate(repositories.NewOutboxEventsRepository, fx.As(new(transfers_outbox.OutboxEventsRepository))),
		),
		fx.Supply(main_config.MustNewConfig(), transfers_outbox.MustNewConfig()),
		fx.Invoke(startDaemon),
	)
}

func startDaemon(*transfers_outbox.Daemon) {}
