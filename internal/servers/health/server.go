package health

import (
	"context"
	"net"
	"time"

	"github.com/vysogota0399/gophermart_transfers/internal/config"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	ServiceName   = "gophermart.transfers"
	checkInterval = 5 * time.Second
	checkTimeout  = time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Server reports SERVING while the database answers pings.
type Server struct {
	cfg    *config.Config
	lg     *logging.ZapLogger
	srv    *grpc.Server
	health *health.Server
	db     Pinger

	cancaller context.CancelFunc
	done      chan struct{}
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.cfg.HealthServerAddress)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancaller = cancel
	s.done = make(chan struct{})

	s.check(ctx)
	go s.watch(ctx)
	go s.srv.Serve(lis)

	return nil
}

func (s *Server) Stop() {
	if s.cancaller != nil {
		s.cancaller()
		<-s.done
	}

	s.health.Shutdown()
	s.srv.GracefulStop()
}

func (s *Server) watch(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *Server) check(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(pctx); err != nil {
		s.lg.WarnCtx(ctx, "database ping failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func newServer(db Pinger, cfg *config.Config, lg *logging.ZapLogger) *Server {
	srv := &Server{cfg: cfg, lg: lg, srv: grpc.NewServer(), health: health.NewServer(), db: db}
	healthpb.RegisterHealthServer(srv.srv, srv.health)

	return srv
}

func NewServer(strg *storage.Storage, lc fx.Lifecycle, cfg *config.Config, lg *logging.ZapLogger) *Server {
	srv := newServer(strg.DB, cfg, lg)

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				lg.InfoCtx(ctx, "start health GRPC server", zap.String("address", cfg.HealthServerAddress))

				return srv.Start()
			},
			OnStop: func(ctx context.Context) error {
				srv.Stop()
				return nil
			},
		},
	)

	return srv
}
