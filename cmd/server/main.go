package main

import (
	"github.com/vysogota0399/gophermart_transfers/internal/cache"
	main_config "github.com/vysogota0399/gophermart_transfers/internal/config"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/repositories"
	"github.com/vysogota0399/gophermart_transfers/internal/servers/health"
	transfers_server "github.com/vysogota0399/gophermart_transfers/internal/servers/transfers"
	transfers_server_handlers "github.com/vysogota0399/gophermart_transfers/internal/servers/transfers/handlers"
	"github.com/vysogota0399/gophermart_transfers/internal/storage"
	"github.com/vysogota0399/gophermart_transfers/internal/transfers"
	"go.uber.org/fx"
)

func main() {
	fx.New(CreateApp()).Run()
}

func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(
			logging.NewZapLogger,
			storage.NewStorage,
			cache.NewIdempotencyCache,

			fx.Annotate(repositories.NewTransfersRepository, fx.As(new(transfers.Storage))),
			fx.Annotate(transfers.NewService, fx.As(new(transfers_server_handlers.TransferService))),

			// HTTP server
			transfers_server.NewApp,
			transfers_server.NewServer,
			transfers_server_handlers.NewTransferHandler,
			transfers_server_handlers.NewAccountsHandler,
			fx.Annotate(repositories.NewAccountsRepository, fx.As(new(transfers_server_handlers.AccountsRepository))),

			// GRPC health server
			health.NewServer,
		),
		fx.Supply(
			main_config.MustNewConfig(),
		),
		fx.Invoke(
			startTransfersServer,
			startHealthServer,
		),
	)
}

func startTransfersServer(*transfers_server.Server) {}
func startHealthServer(*health.Server)              {}
