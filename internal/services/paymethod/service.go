// Package paymethod manages a user's withdrawal/deposit destinations.
// Verification of a destination happens in the external processor; here
// is_verified is just data.
package paymethod

import (
	"context"
	"errors"

	"creomart/internal/models"
	"creomart/internal/repositories"
)

// Service errors
var (
	ErrNotFound          = errors.New("payment method not found")
	ErrInvalidMethodType = errors.New("invalid payment method type")
)

// AddParams describes a new payment method.
type AddParams struct {
	MethodType  string
	DisplayName string
	Details     map[string]interface{}

	StripePaymentMethodID string
	StripeCustomerID      string
	StripeAccountID       string
}

// Service manages payment methods.
type Service interface {
	List(ctx context.Context, userID uint) ([]models.PaymentMethod, error)
	Add(ctx context.Context, userID uint, params AddParams) (*models.PaymentMethod, error)
	SetPrimary(ctx context.Context, userID, id uint) error
	Deactivate(ctx context.Context, userID, id uint) error
}

type service struct {
	repo repositories.PaymentMethodRepository
}

// NewService creates a new payment method service
func NewService(repo repositories.PaymentMethodRepository) Service {
	if repo == nil {
		panic("repo is required")
	}
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID uint) ([]models.PaymentMethod, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *service) Add(ctx context.Context, userID uint, params AddParams) (*models.PaymentMethod, error) {
	if !models.ValidMethodType(params.MethodType) {
		return nil, ErrInvalidMethodType
	}

	existing, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	pm := &models.PaymentMethod{
		UserID:                userID,
		MethodType:            params.MethodType,
		DisplayName:           params.DisplayName,
		Details:               models.NewJSON(params.Details),
		IsActive:              true,
		IsPrimary:             len(existing) == 0,
		StripePaymentMethodID: params.StripePaymentMethodID,
		StripeCustomerID:      params.StripeCustomerID,
		StripeAccountID:       params.StripeAccountID,
	}
	if err := s.repo.Create(ctx, pm); err != nil {
		return nil, err
	}
	return pm, nil
}

func (s *service) SetPrimary(ctx context.Context, userID, id uint) error {
	if err := s.repo.SetPrimary(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrPaymentMethodNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *service) Deactivate(ctx context.Context, userID, id uint) error {
	pm, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentMethodNotFound) {
			return ErrNotFound
		}
		return err
	}
	pm.IsActive = false
	pm.IsPrimary = false
	return s.repo.Save(ctx, pm)
}
