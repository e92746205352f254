package repositories

import (
	"context"
	"errors"
	"fmt"

	"creomart/internal/models"

	"gorm.io/gorm"
)

// WalletLimitRepository reads and writes per-user caps.
type WalletLimitRepository interface {
	// GetActive returns nil with no error when the user has no active
	// limit of this type; no limit means unlimited.
	GetActive(ctx context.Context, userID uint, limitType string) (*models.WalletLimit, error)
	Upsert(ctx context.Context, limit *models.WalletLimit) error
}

type walletLimitRepository struct {
	db *gorm.DB
}

func NewWalletLimitRepository(db *gorm.DB) WalletLimitRepository {
	return &walletLimitRepository{db: db}
}

func (r *walletLimitRepository) GetActive(ctx context.Context, userID uint, limitType string) (*models.WalletLimit, error) {
	var limit models.WalletLimit
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND limit_type = ? AND is_active = ?", userID, limitType, true).
		First(&limit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wallet limit: %w", err)
	}
	return &limit, nil
}

func (r *walletLimitRepository) Upsert(ctx context.Context, limit *models.WalletLimit) error {
	var existing models.WalletLimit
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND limit_type = ?", limit.UserID, limit.LimitType).
		First(&existing).Error
	switch {
	case err == nil:
		existing.Amount = limit.Amount
		existing.IsActive = limit.IsActive
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update wallet limit: %w", err)
		}
		*limit = existing
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(limit).Error; err != nil {
			return fmt.Errorf("failed to create wallet limit: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("failed to get wallet limit: %w", err)
	}
}
