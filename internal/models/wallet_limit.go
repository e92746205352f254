package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Limit types
const (
	LimitDailyWithdrawal   = "daily_withdrawal"
	LimitMonthlyWithdrawal = "monthly_withdrawal"
	LimitDailyDeposit      = "daily_deposit"
	LimitMonthlyDeposit    = "monthly_deposit"
	LimitTransactionAmount = "transaction_amount"
)

// WalletLimit caps a user's withdrawal/deposit volume or single-transaction
// size. One row per (user, limit type); absence of a row means unlimited.
type WalletLimit struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"not null;uniqueIndex:idx_user_limit_type" json:"user_id"`
	LimitType string          `gorm:"size:20;not null;uniqueIndex:idx_user_limit_type" json:"limit_type"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// ValidLimitType reports whether t is a known limit type.
func ValidLimitType(t string) bool {
	switch t {
	case LimitDailyWithdrawal, LimitMonthlyWithdrawal, LimitDailyDeposit,
		LimitMonthlyDeposit, LimitTransactionAmount:
		return true
	}
	return false
}
