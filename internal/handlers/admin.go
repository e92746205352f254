package handlers

import (
	"errors"

	"creomart/internal/services/ledger"
	"creomart/internal/services/limits"
	"creomart/internal/services/wallet"
	"creomart/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AdminHandler exposes the operator-only wallet controls: freezing,
// limit management and dispute reversal.
type AdminHandler struct {
	walletService wallet.Service
	limitService  limits.Service
	ledgerService ledger.Service
}

func NewAdminHandler(walletService wallet.Service, limitService limits.Service, ledgerService ledger.Service) *AdminHandler {
	return &AdminHandler{
		walletService: walletService,
		limitService:  limitService,
		ledgerService: ledgerService,
	}
}

func (h *AdminHandler) FreezeWallet(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return response.BadRequest(c, "invalid user id")
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	if input.Reason == "" {
		return response.BadRequest(c, "reason is required")
	}

	if err := h.walletService.Freeze(c.Context(), uint(userID), input.Reason); err != nil {
		return response.ServerError(c, "failed to freeze wallet")
	}

	return response.Success(c, "wallet frozen", nil)
}

func (h *AdminHandler) UnfreezeWallet(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return response.BadRequest(c, "invalid user id")
	}

	if err := h.walletService.Unfreeze(c.Context(), uint(userID)); err != nil {
		return response.ServerError(c, "failed to unfreeze wallet")
	}

	return response.Success(c, "wallet unfrozen", nil)
}

func (h *AdminHandler) SetLimit(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("userId")
	if err != nil || userID <= 0 {
		return response.BadRequest(c, "invalid user id")
	}

	var input struct {
		LimitType string          `json:"limit_type"`
		Amount    decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	limit, err := h.limitService.Set(c.Context(), uint(userID), input.LimitType, input.Amount)
	if err != nil {
		if errors.Is(err, limits.ErrUnknownLimitType) || errors.Is(err, limits.ErrInvalidLimitAmount) {
			return response.BadRequest(c, err.Error())
		}
		return response.ServerError(c, "failed to set limit")
	}

	return response.Success(c, "limit updated", fiber.Map{
		"limit": limit,
	})
}

func (h *AdminHandler) DisputeTransaction(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid transaction id")
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}
	if input.Reason == "" {
		return response.BadRequest(c, "reason is required")
	}

	reversal, err := h.ledgerService.Dispute(c.Context(), uint(id), input.Reason)
	if err != nil {
		return mapFundsError(c, err)
	}

	return response.Success(c, "transaction disputed", fiber.Map{
		"reversal": reversal,
	})
}
