package logging

import (
	"context"

	"github.com/vysogota0399/gophermart_transfers/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxFieldsKey struct{}

type ZapLogger struct {
	logger *zap.Logger
}

func NewZapLogger(cfg *config.Config) (*ZapLogger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.Level(cfg.LogLevel))
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	return &ZapLogger{logger: logger}, nil
}

// NewNopLogger returns a logger that discards everything. Used by tests.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}

// WithContextFields returns a copy of ctx carrying fields on top of the ones
// already attached. Every *Ctx call made with the returned context logs them.
func (l *ZapLogger) WithContextFields(ctx context.Context, fields ...zap.Field) context.Context {
	existing := fieldsFrom(ctx)
	merged := make([]zap.Field, 0, len(existing)+len(fields))
	merged = append(merged, existing...)
	merged = append(merged, fields...)

	return context.WithValue(ctx, ctxFieldsKey{}, merged)
}

func (l *ZapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.logger.Debug(msg, append(fieldsFrom(ctx), fields...)...)
}

func (l *ZapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.logger.Info(msg, append(fieldsFrom(ctx), fields...)...)
}

func (l *ZapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.logger.Warn(msg, append(fieldsFrom(ctx), fields...)...)
}

func (l *ZapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.logger.Error(msg, append(fieldsFrom(ctx), fields...)...)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

func fieldsFrom(ctx context.Context) []zap.Field {
	fields, _ := ctx.Value(ctxFieldsKey{}).([]zap.Field)
	out := make([]zap.Field, len(fields))
	copy(out, fields)

	return out
}
