package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/vysogota0399/gophermart_transfers/internal/cache"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/models"
	"go.uber.org/zap"
)

const (
	IdempotencyKeyHeader       = "X-Idempotency-Key"
	LegacyIdempotencyKeyHeader = "Idempotency-Key"
	IdempotencyHitHeader       = "X-Idempotency-Hit"
)

type TransferHandler struct {
	lg      *logging.ZapLogger
	service TransferService
	cache   cache.IdempotencyCache
}

type TransferService interface {
	Execute(ctx context.Context, idempotencyKey string, from, to models.AccountID, amount decimal.Decimal) (string, error)
}

type TransferRequest struct {
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
}

type TransferResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewTransferHandler(service TransferService, idempotency cache.IdempotencyCache, lg *logging.ZapLogger) *TransferHandler {
	return &TransferHandler{lg: lg, service: service, cache: idempotency}
}

func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	key := c.Get(IdempotencyKeyHeader)
	if key == "" {
		key = c.Get(LegacyIdempotencyKeyHeader)
	}

	if key == "" {
		return badRequest(c, "MissingIdempotencyKey", "missing header: "+IdempotencyKeyHeader)
	}

	ctx := h.lg.WithContextFields(c.UserContext(), zap.String("idempotency_key", key))

	if response, ok, err := h.cache.Get(ctx, key); err != nil {
		h.lg.WarnCtx(ctx, "idempotency cache get failed", zap.Error(err))
	} else if ok {
		c.Set(IdempotencyHitHeader, "true")
		return c.JSON(TransferResponse{Status: "success", Message: response})
	}

	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "InvalidRequest", "invalid body")
	}

	from, err := models.ParseAccountID(req.FromAccount)
	if err != nil {
		return badRequest(c, "InvalidRequest", "invalid from_account")
	}

	to, err := models.ParseAccountID(req.ToAccount)
	if err != nil {
		return badRequest(c, "InvalidRequest", "invalid to_account")
	}

	response, err := h.service.Execute(ctx, key, from, to, req.Amount)
	if err != nil {
		h.lg.InfoCtx(ctx, "transfer failed", zap.Error(err))
		return writeError(c, err)
	}

	if err := h.cache.Set(ctx, key, response); err != nil {
		h.lg.WarnCtx(ctx, "idempotency cache set failed", zap.Error(err))
	}

	return c.JSON(TransferResponse{Status: "success", Message: response})
}
