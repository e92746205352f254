package handlers

import (
	"errors"

	"creomart/internal/models"
	"creomart/internal/repositories"
	"creomart/internal/services/funds"
	"creomart/internal/services/gateway"
	"creomart/internal/services/ledger"
	"creomart/internal/services/limits"
	"creomart/internal/services/wallet"
	"creomart/internal/utils/pagination"
	"creomart/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	walletService wallet.Service
	fundsService  funds.Service
	ledgerService ledger.Service
}

func NewWalletHandler(walletService wallet.Service, fundsService funds.Service, ledgerService ledger.Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		fundsService:  fundsService,
		ledgerService: ledgerService,
	}
}

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

// mapFundsError translates service errors into HTTP responses.
func mapFundsError(c *fiber.Ctx, err error) error {
	var perr *gateway.ProcessorError
	switch {
	case errors.Is(err, funds.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidFee):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, funds.ErrPaymentMethodNotFound),
		errors.Is(err, funds.ErrPaymentMethodInactive):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, wallet.ErrWalletFrozen),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, limits.ErrLimitExceeded):
		return response.UnprocessableEntity(c, err.Error())
	case errors.Is(err, repositories.ErrDuplicateReference),
		errors.Is(err, ledger.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	case errors.Is(err, ledger.ErrTransactionNotFound):
		return response.NotFound(c, err.Error())
	case errors.As(err, &perr):
		return response.Error(c, fiber.StatusBadGateway, "payment processor error: "+perr.Message)
	default:
		return response.ServerError(c, "operation failed")
	}
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	w, err := h.walletService.Get(c.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "failed to get wallet")
	}

	return response.Success(c, "wallet retrieved", fiber.Map{
		"wallet":            w,
		"available_balance": w.AvailableBalance(),
	})
}

func (h *WalletHandler) AddFunds(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Amount    decimal.Decimal `json:"amount"`
		Reference string          `json:"reference"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	result, err := h.fundsService.AddFunds(c.Context(), claims.UserID, input.Amount, input.Reference)
	if err != nil {
		return mapFundsError(c, err)
	}

	return response.Success(c, "deposit initiated", fiber.Map{
		"transaction":   result.Transaction,
		"client_secret": result.ClientSecret,
	})
}

func (h *WalletHandler) ConfirmDeposit(c *fiber.Ctx) error {
	if _, err := extractUserClaims(c); err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Reference string `json:"reference"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	if input.Reference == "" {
		return response.BadRequest(c, "reference is required")
	}

	tx, err := h.fundsService.ConfirmDeposit(c.Context(), input.Reference)
	if err != nil {
		return mapFundsError(c, err)
	}

	return response.Success(c, "deposit "+tx.Status, fiber.Map{
		"transaction": tx,
	})
}

func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		Amount          decimal.Decimal `json:"amount"`
		PaymentMethodID uint            `json:"payment_method_id"`
		Reference       string          `json:"reference"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	tx, err := h.fundsService.WithdrawFunds(c.Context(), claims.UserID, input.Amount, input.PaymentMethodID, input.Reference)
	if err != nil {
		return mapFundsError(c, err)
	}

	w, err := h.walletService.Get(c.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "failed to get updated wallet balance")
	}

	return response.Success(c, "withdrawal processed", fiber.Map{
		"transaction": tx,
		"amount":      tx.Amount,
		"fee":         tx.FeeAmount,
		"new_balance": w.Balance,
	})
}

func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	w, err := h.walletService.Get(c.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "failed to get wallet")
	}

	p := pagination.ParseFromRequest(c)
	filter := repositories.TransactionFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Type:     c.Query("type"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}

	txs, total, err := h.ledgerService.List(c.Context(), w.ID, filter)
	if err != nil {
		return response.ServerError(c, "failed to list transactions")
	}

	p.Total = total
	return c.JSON(pagination.Response(p, txs))
}
