package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet tracks a user's balance. One per user, created lazily on the
// first financial operation and never deleted while the account exists.
// Balance is only mutated as part of a committed Transaction state
// transition, never independently.
type Wallet struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	UserID         uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`
	PendingBalance decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"pending_balance"`
	TotalEarned    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_earned"`
	TotalWithdrawn decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_withdrawn"`
	TotalSpent     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_spent"`
	IsFrozen       bool            `gorm:"default:false" json:"is_frozen"`
	FreezeReason   string          `gorm:"default:''" json:"freeze_reason,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AvailableBalance is the balance usable for outbound movement. A frozen
// wallet has nothing available regardless of its balance.
func (w *Wallet) AvailableBalance() decimal.Decimal {
	if w.IsFrozen {
		return decimal.Zero
	}
	return w.Balance
}
