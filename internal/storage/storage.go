package storage

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	"github.com/vysogota0399/gophermart_transfers/internal/config"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Storage struct {
	DB *pgxpool.Pool

	connectRetries uint64
	lg             *logging.ZapLogger
}

func NewStorage(lc fx.Lifecycle, cfg *config.Config, lg *logging.ZapLogger) (*Storage, error) {
	dbcfg, err := pgxpool.ParseConfig(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("storage: parse dsn error %w", err)
	}

	dbcfg.MaxConns = int32(cfg.DatabaseMaxConns)

	dbpool, err := pgxpool.NewWithConfig(context.Background(), dbcfg)
	if err != nil {
		return nil, fmt.Errorf("storage: create pool error %w", err)
	}

	strg := &Storage{DB: dbpool, connectRetries: uint64(cfg.DatabaseConnectRetries), lg: lg}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := strg.Ping(ctx); err != nil {
					return err
				}

				return strg.RunMigration()
			},
			OnStop: func(ctx context.Context) error {
				strg.DB.Close()
				return nil
			},
		},
	)

	return strg, nil
}

// Ping waits for the database with exponential backoff, the database container
// usually comes up after the service.
func (s *Storage) Ping(ctx context.Context) error {
	backoff := retry.WithMaxRetries(s.connectRetries, retry.NewExponential(200*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.DB.Ping(ctx); err != nil {
			s.lg.WarnCtx(ctx, "database ping failed", zap.Error(err))
			return retry.RetryableError(err)
		}

		return nil
	})
}

//go:embed migrations/*.sql
var embedMigrations embed.FS

func (s *Storage) RunMigration() error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(string(goose.DialectPostgres)); err != nil {
		return err
	}

	return goose.Up(stdlib.OpenDBFromPool(s.DB), "migrations")
}
