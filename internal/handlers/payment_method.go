package handlers

import (
	"errors"

	"creomart/internal/services/paymethod"
	"creomart/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PaymentMethodHandler struct {
	service paymethod.Service
}

func NewPaymentMethodHandler(service paymethod.Service) *PaymentMethodHandler {
	return &PaymentMethodHandler{service: service}
}

func (h *PaymentMethodHandler) List(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	methods, err := h.service.List(c.Context(), claims.UserID)
	if err != nil {
		return response.ServerError(c, "failed to list payment methods")
	}

	return response.Success(c, "payment methods retrieved", fiber.Map{
		"payment_methods": methods,
	})
}

func (h *PaymentMethodHandler) Add(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		MethodType            string                 `json:"method_type"`
		DisplayName           string                 `json:"display_name"`
		Details               map[string]interface{} `json:"details"`
		StripePaymentMethodID string                 `json:"stripe_payment_method_id"`
		StripeCustomerID      string                 `json:"stripe_customer_id"`
		StripeAccountID       string                 `json:"stripe_account_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "invalid request format")
	}

	pm, err := h.service.Add(c.Context(), claims.UserID, paymethod.AddParams{
		MethodType:            input.MethodType,
		DisplayName:           input.DisplayName,
		Details:               input.Details,
		StripePaymentMethodID: input.StripePaymentMethodID,
		StripeCustomerID:      input.StripeCustomerID,
		StripeAccountID:       input.StripeAccountID,
	})
	if err != nil {
		if errors.Is(err, paymethod.ErrInvalidMethodType) {
			return response.BadRequest(c, err.Error())
		}
		return response.ServerError(c, "failed to add payment method")
	}

	return response.Success(c, "payment method added", fiber.Map{
		"payment_method": pm,
	})
}

func (h *PaymentMethodHandler) SetPrimary(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid payment method id")
	}

	if err := h.service.SetPrimary(c.Context(), claims.UserID, uint(id)); err != nil {
		if errors.Is(err, paymethod.ErrNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "failed to set primary payment method")
	}

	return response.Success(c, "primary payment method updated", nil)
}

func (h *PaymentMethodHandler) Deactivate(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "invalid payment method id")
	}

	if err := h.service.Deactivate(c.Context(), claims.UserID, uint(id)); err != nil {
		if errors.Is(err, paymethod.ErrNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "failed to deactivate payment method")
	}

	return response.Success(c, "payment method deactivated", nil)
}
