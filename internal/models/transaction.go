package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction types
const (
	TransactionTypeCredit   = "credit"
	TransactionTypeDebit    = "debit"
	TransactionTypeTransfer = "transfer"
	TransactionTypeRefund   = "refund"
	TransactionTypeFee      = "fee"
)

// Transaction categories
const (
	CategoryPayment         = "payment"
	CategoryWithdrawal      = "withdrawal"
	CategoryDeposit         = "deposit"
	CategoryCampaignPayment = "campaign_payment"
	CategoryPlatformFee     = "platform_fee"
	CategoryRefund          = "refund"
	CategoryBonus           = "bonus"
)

// Transaction statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
	StatusDisputed   = "disputed"
)

// Metadata keys used internally. Metadata stays an open bag at the
// boundary; these are the keys the ledger itself reads and writes.
const (
	MetaFailureReason   = "failure_reason"
	MetaProcessorCode   = "processor_code"
	MetaDisputeReason   = "dispute_reason"
	MetaDisputedTxID    = "disputed_transaction_id"
	MetaPaymentMethodID = "payment_method_id"
	MetaFeePercent      = "fee_percent"
)

// Transaction is one monetary movement on a wallet. Rows are append-only:
// corrections are new compensating transactions, never mutations of amount
// or type. Reference is the idempotency key and is globally unique.
type Transaction struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	WalletID        uint            `gorm:"not null;index:idx_wallet_status" json:"wallet_id"`
	TransactionType string          `gorm:"size:10;not null" json:"transaction_type"`
	Category        string          `gorm:"size:20;not null;default:'payment'" json:"category"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	FeeAmount       decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"fee_amount"`
	NetAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"net_amount"`
	Description     string          `gorm:"size:200" json:"description"`
	Reference       string          `gorm:"size:100;uniqueIndex;not null" json:"reference"`
	Status          string          `gorm:"size:20;not null;default:'pending';index:idx_wallet_status" json:"status"`

	// External processor identifiers
	StripePaymentIntentID string `gorm:"size:200" json:"stripe_payment_intent_id,omitempty"`
	StripeTransferID      string `gorm:"size:200" json:"stripe_transfer_id,omitempty"`

	// Originating marketplace objects, when the movement was triggered by one
	RelatedCampaignID     *uint `json:"related_campaign_id,omitempty"`
	RelatedVideoRequestID *uint `json:"related_video_request_id,omitempty"`

	Metadata    JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

// BeforeSave recomputes the net amount on every persist. NetAmount is
// derived state and is never trusted from the caller.
func (t *Transaction) BeforeSave(tx *gorm.DB) error {
	t.NetAmount = t.Amount.Sub(t.FeeAmount)
	return nil
}

// IsTerminal reports whether no further transition is allowed, except the
// completed -> disputed path.
func (t *Transaction) IsTerminal() bool {
	switch t.Status {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusDisputed:
		return true
	}
	return false
}

// ValidTransactionType reports whether t is a known transaction type.
func ValidTransactionType(t string) bool {
	switch t {
	case TransactionTypeCredit, TransactionTypeDebit, TransactionTypeTransfer,
		TransactionTypeRefund, TransactionTypeFee:
		return true
	}
	return false
}

// ValidCategory reports whether c is a known transaction category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryPayment, CategoryWithdrawal, CategoryDeposit,
		CategoryCampaignPayment, CategoryPlatformFee, CategoryRefund, CategoryBonus:
		return true
	}
	return false
}
