package models

import "time"

// Payment method types
const (
	MethodBankAccount = "bank_account"
	MethodPayPal      = "paypal"
	MethodCreditCard  = "credit_card"
	MethodDebitCard   = "debit_card"
	MethodCrypto      = "crypto"
)

// PaymentMethod is a user's withdrawal/deposit destination. Details holds
// the sensitive destination data and never leaves the process serialized.
type PaymentMethod struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	MethodType  string `gorm:"size:20;not null" json:"method_type"`
	DisplayName string `gorm:"size:100" json:"display_name"`
	Details     JSON   `gorm:"type:jsonb" json:"-"`
	IsPrimary   bool   `gorm:"default:false" json:"is_primary"`
	IsVerified  bool   `gorm:"default:false" json:"is_verified"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	// External processor identifiers
	StripePaymentMethodID string `gorm:"size:200" json:"-"`
	StripeCustomerID      string `gorm:"size:200" json:"-"`
	StripeAccountID       string `gorm:"size:200" json:"-"`

	VerificationData JSON       `gorm:"type:jsonb" json:"-"`
	LastUsedAt       *time.Time `json:"last_used_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ValidMethodType reports whether t is a known payment method type.
func ValidMethodType(t string) bool {
	switch t {
	case MethodBankAccount, MethodPayPal, MethodCreditCard, MethodDebitCard, MethodCrypto:
		return true
	}
	return false
}
