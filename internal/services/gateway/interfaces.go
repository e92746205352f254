// Package gateway is the boundary to the external payment processor. The
// orchestrator depends on the Processor interface only; the Stripe
// implementation lives behind it so tests can substitute a fake.
package gateway

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Deposit outcome states as reported by the processor.
const (
	OutcomeSucceeded = "succeeded"
	OutcomePending   = "pending"
	OutcomeFailed    = "failed"
)

// DepositIntent is the processor's handle for a deposit in flight. The
// client secret goes back to the end user's client to complete payment.
type DepositIntent struct {
	ExternalID   string
	ClientSecret string
}

// DepositOutcome is the processor's verdict on a previously initiated
// deposit.
type DepositOutcome struct {
	ExternalID    string
	State         string
	FailureReason string
}

// Destination identifies where a withdrawal lands, resolved from the
// user's PaymentMethod.
type Destination struct {
	AccountID       string
	CustomerID      string
	PaymentMethodID string
}

// Processor is the capability set the funds orchestrator needs from the
// external payment processor. Every call carries the transaction reference
// as its idempotency key, so a retried call cannot double-move money.
type Processor interface {
	InitiateDeposit(ctx context.Context, amount decimal.Decimal, reference string) (*DepositIntent, error)
	ConfirmDeposit(ctx context.Context, externalID string) (*DepositOutcome, error)
	// InitiateWithdrawal returns the processor's transfer id.
	InitiateWithdrawal(ctx context.Context, amount decimal.Decimal, dest Destination, reference string) (string, error)
}

// ProcessorError carries the processor's original failure out to the
// caller. It is never swallowed; callers may retry the whole operation
// with the same reference.
type ProcessorError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProcessorError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment processor error (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("payment processor error: %s", e.Message)
}

func (e *ProcessorError) Unwrap() error { return e.Err }
