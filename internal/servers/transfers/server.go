package transfers

import (
	"context"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/vysogota0399/gophermart_transfers/internal/config"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/servers/transfers/handlers"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	app *fiber.App
	cfg *config.Config
	lg  *logging.ZapLogger
}

func NewApp(
	transfer *handlers.TransferHandler,
	accounts *handlers.AccountsHandler,
	lg *logging.ZapLogger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(requestLogger(lg))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/transfer", transfer.Transfer)

	v1 := app.Group("/v1")
	v1.Post("/transfers", transfer.Transfer)
	v1.Post("/accounts", accounts.Open)
	v1.Get("/accounts/:id", accounts.Get)

	return app
}

// requestLogger attaches the request id to the user context so every log
// line of the request carries it.
func requestLogger(lg *logging.ZapLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)
		ctx := lg.WithContextFields(c.UserContext(), zap.String("request_id", requestID))
		c.SetUserContext(ctx)

		start := time.Now()
		err := c.Next()

		lg.DebugCtx(
			ctx,
			"request processed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)

		return err
	}
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.cfg.HTTPAddress)
	if err != nil {
		return err
	}

	go func() {
		if err := s.app.Listener(lis); err != nil {
			s.lg.ErrorCtx(context.Background(), "http server stopped", zap.Error(err))
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func NewServer(app *fiber.App, lc fx.Lifecycle, cfg *config.Config, lg *logging.ZapLogger) *Server {
	srv := &Server{app: app, cfg: cfg, lg: lg}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				lg.InfoCtx(ctx, "start transfers HTTP server", zap.String("address", cfg.HTTPAddress))

				return srv.Start()
			},
			OnStop: func(ctx context.Context) error {
				return srv.Stop(ctx)
			},
		},
	)

	return srv
}
