package repositories

import (
	"context"

	"creomart/internal/models"
)

// PaymentMethodRepository manages a user's withdrawal/deposit destinations.
type PaymentMethodRepository interface {
	Create(ctx context.Context, pm *models.PaymentMethod) error
	GetByID(ctx context.Context, id uint) (*models.PaymentMethod, error)
	// GetForUser returns the method only if it belongs to userID.
	GetForUser(ctx context.Context, id, userID uint) (*models.PaymentMethod, error)
	ListForUser(ctx context.Context, userID uint) ([]models.PaymentMethod, error)
	Save(ctx context.Context, pm *models.PaymentMethod) error
	// SetPrimary promotes the method and demotes any previous primary in
	// the same database transaction.
	SetPrimary(ctx context.Context, id, userID uint) error
}
