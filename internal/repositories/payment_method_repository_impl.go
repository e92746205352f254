package repositories

import (
	"context"
	"errors"
	"fmt"

	"creomart/internal/models"

	"gorm.io/gorm"
)

type paymentMethodRepository struct {
	db *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

func (r *paymentMethodRepository) Create(ctx context.Context, pm *models.PaymentMethod) error {
	if err := r.db.WithContext(ctx).Create(pm).Error; err != nil {
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	return nil
}

func (r *paymentMethodRepository) GetByID(ctx context.Context, id uint) (*models.PaymentMethod, error) {
	var pm models.PaymentMethod
	if err := r.db.WithContext(ctx).First(&pm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	return &pm, nil
}

func (r *paymentMethodRepository) GetForUser(ctx context.Context, id, userID uint) (*models.PaymentMethod, error) {
	var pm models.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&pm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	return &pm, nil
}

func (r *paymentMethodRepository) ListForUser(ctx context.Context, userID uint) ([]models.PaymentMethod, error) {
	var pms []models.PaymentMethod
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("is_primary DESC, created_at DESC").
		Find(&pms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return pms, nil
}

func (r *paymentMethodRepository) Save(ctx context.Context, pm *models.PaymentMethod) error {
	if err := r.db.WithContext(ctx).Save(pm).Error; err != nil {
		return fmt.Errorf("failed to save payment method: %w", err)
	}
	return nil
}

func (r *paymentMethodRepository) SetPrimary(ctx context.Context, id, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PaymentMethod{}).
			Where("id = ? AND user_id = ? AND is_active = ?", id, userID, true).
			Update("is_primary", true)
		if res.Error != nil {
			return fmt.Errorf("failed to set primary payment method: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPaymentMethodNotFound
		}
		// Demote everything else; at most one primary per user.
		err := tx.Model(&models.PaymentMethod{}).
			Where("user_id = ? AND id <> ?", userID, id).
			Update("is_primary", false).Error
		if err != nil {
			return fmt.Errorf("failed to demote previous primary: %w", err)
		}
		return nil
	})
}
