package funds

import (
	"context"
	"errors"

	"creomart/internal/models"

	"github.com/shopspring/decimal"
)

// Service errors
var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrPaymentMethodInactive = errors.New("payment method is not active")
)

// Config holds orchestrator tunables.
type Config struct {
	// WithdrawalFeePercent is the platform fee taken on withdrawals,
	// expressed as a fraction (0.01 means 1%).
	WithdrawalFeePercent decimal.Decimal
}

// DepositResult is handed back to the client after a deposit is
// initiated. The client secret completes the payment on the user's
// device; the transaction stays pending until the processor confirms.
type DepositResult struct {
	Transaction  *models.Transaction
	ClientSecret string
}

// Service coordinates add-funds and withdraw-funds as multi-step
// operations across the limit checks, the processor gateway and the
// ledger.
type Service interface {
	// AddFunds initiates a deposit. The returned transaction is pending;
	// it completes only through ConfirmDeposit. An empty reference gets a
	// generated one; a repeated reference returns the existing state.
	AddFunds(ctx context.Context, userID uint, amount decimal.Decimal, reference string) (*DepositResult, error)
	// ConfirmDeposit settles a previously initiated deposit from the
	// processor's reported outcome. Idempotent per reference.
	ConfirmDeposit(ctx context.Context, reference string) (*models.Transaction, error)
	// WithdrawFunds moves money out to a payment method. The transaction
	// is recorded before the processor call (every attempt is auditable)
	// but the balance moves only after the processor accepts.
	WithdrawFunds(ctx context.Context, userID uint, amount decimal.Decimal, paymentMethodID uint, reference string) (*models.Transaction, error)
}
