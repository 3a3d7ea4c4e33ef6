package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/vysogota0399/gophermart_transfers/internal/logging"
	"github.com/vysogota0399/gophermart_transfers/internal/models"
	"go.uber.org/zap"
)

type AccountsHandler struct {
	lg       *logging.ZapLogger
	accounts AccountsRepository
}

type AccountsRepository interface {
	Create(ctx context.Context, account *models.Account) error
	Find(ctx context.Context, id models.AccountID) (*models.Account, error)
}

type OpenAccountRequest struct {
	OwnerName string          `json:"owner_name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
}

type AccountResponse struct {
	ID        string          `json:"id"`
	OwnerName string          `json:"owner_name"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	UpdatedAt string          `json:"updated_at"`
}

func NewAccountsHandler(accounts AccountsRepository, lg *logging.ZapLogger) *AccountsHandler {
	return &AccountsHandler{lg: lg, accounts: accounts}
}

func (h *AccountsHandler) Open(c *fiber.Ctx) error {
	var req OpenAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "InvalidRequest", "invalid body")
	}

	account := &models.Account{
		ID:        models.NewAccountID(),
		OwnerName: req.OwnerName,
		Currency:  req.Currency,
		Balance:   req.Balance,
	}

	if err := h.accounts.Create(c.UserContext(), account); err != nil {
		h.lg.ErrorCtx(c.UserContext(), "open account failed", zap.Error(err))
		return writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(newAccountResponse(account))
}

func (h *AccountsHandler) Get(c *fiber.Ctx) error {
	id, err := models.ParseAccountID(c.Params("id"))
	if err != nil {
		return badRequest(c, "InvalidRequest", "invalid account id")
	}

	account, err := h.accounts.Find(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(newAccountResponse(account))
}

func newAccountResponse(account *models.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID.String(),
		OwnerName: account.OwnerName,
		Currency:  account.Currency,
		Balance:   account.Balance,
		Version:   account.Version,
		UpdatedAt: account.UpdatedAt.Format(time.RFC3339Nano),
	}
}
