package funds

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"creomart/internal/models"
	"creomart/internal/repositories"
	"creomart/internal/services/gateway"
	"creomart/internal/services/ledger"
	"creomart/internal/services/limits"
	"creomart/internal/services/wallet"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	wallets   wallet.Service
	ledger    ledger.Service
	limits    limits.Service
	processor gateway.Processor
	methods   repositories.PaymentMethodRepository
	cfg       Config
	metrics   wallet.MetricsCollector
}

// NewService creates a new funds-movement orchestrator
func NewService(
	wallets wallet.Service,
	ledgerSvc ledger.Service,
	limitsSvc limits.Service,
	processor gateway.Processor,
	methods repositories.PaymentMethodRepository,
	cfg Config,
	metrics wallet.MetricsCollector,
) Service {
	if wallets == nil {
		panic("wallet service is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if limitsSvc == nil {
		panic("limits service is required")
	}
	if processor == nil {
		panic("processor is required")
	}
	if methods == nil {
		panic("payment method repo is required")
	}
	if metrics == nil {
		metrics = &wallet.NoopMetricsCollector{}
	}
	return &service{
		wallets:   wallets,
		ledger:    ledgerSvc,
		limits:    limitsSvc,
		processor: processor,
		methods:   methods,
		cfg:       cfg,
		metrics:   metrics,
	}
}

func (s *service) AddFunds(ctx context.Context, userID uint, amount decimal.Decimal, reference string) (*DepositResult, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("add_funds", time.Since(start)) }()

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	if reference == "" {
		reference = "dep_" + uuid.NewString()
	} else if existing, err := s.ledger.GetByReference(ctx, reference); err == nil {
		// Retried call. A settled deposit is returned as-is; a pending one
		// falls through so the client secret can be re-derived. The
		// processor call below is idempotent on the reference.
		if existing.Status != models.StatusPending {
			return &DepositResult{Transaction: existing}, nil
		}
	}

	w, err := s.wallets.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.limits.CheckDeposit(ctx, userID, amount); err != nil {
		s.metrics.RecordError("add_funds", "limit_exceeded")
		return nil, err
	}

	intent, err := s.processor.InitiateDeposit(ctx, amount, reference)
	if err != nil {
		s.metrics.RecordError("add_funds", "processor")
		return nil, err
	}

	tx, err := s.ledger.Create(ctx, ledger.CreateParams{
		WalletID:              w.ID,
		Type:                  models.TransactionTypeCredit,
		Category:              models.CategoryDeposit,
		Amount:                amount,
		FeeAmount:             decimal.Zero,
		Reference:             reference,
		Description:           "Add funds via payment processor",
		StripePaymentIntentID: intent.ExternalID,
	})
	if err != nil {
		return nil, err
	}

	return &DepositResult{Transaction: tx, ClientSecret: intent.ClientSecret}, nil
}

func (s *service) ConfirmDeposit(ctx context.Context, reference string) (*models.Transaction, error) {
	tx, err := s.ledger.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	// Confirmation callbacks are retried; a settled transaction is the
	// answer, not an error.
	if tx.IsTerminal() {
		return tx, nil
	}

	outcome, err := s.processor.ConfirmDeposit(ctx, tx.StripePaymentIntentID)
	if err != nil {
		s.metrics.RecordError("confirm_deposit", "processor")
		return nil, err
	}

	switch outcome.State {
	case gateway.OutcomeSucceeded:
		if tx.Status == models.StatusPending {
			if tx, err = s.ledger.MarkProcessing(ctx, tx.ID); err != nil {
				return nil, err
			}
		}
		return s.ledger.Commit(ctx, tx.ID)
	case gateway.OutcomeFailed:
		return s.ledger.Fail(ctx, tx.ID, outcome.FailureReason)
	default:
		// Still in flight at the processor; stay pending.
		return tx, nil
	}
}

func (s *service) WithdrawFunds(ctx context.Context, userID uint, amount decimal.Decimal, paymentMethodID uint, reference string) (*models.Transaction, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration("withdraw_funds", time.Since(start)) }()

	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	if reference == "" {
		reference = "wd_" + uuid.NewString()
	} else if existing, err := s.ledger.GetByReference(ctx, reference); err == nil {
		// Retried call: report the recorded attempt's current state.
		return existing, nil
	}

	w, err := s.wallets.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w.IsFrozen {
		return nil, wallet.ErrWalletFrozen
	}
	// Pre-check against the available balance; the authoritative check
	// happens again inside the commit, under the wallet row lock.
	if amount.GreaterThan(w.AvailableBalance()) {
		s.metrics.RecordError("withdraw_funds", "insufficient_funds")
		return nil, ledger.ErrInsufficientFunds
	}

	pm, err := s.methods.GetForUser(ctx, paymentMethodID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentMethodNotFound) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, err
	}
	if !pm.IsActive {
		return nil, ErrPaymentMethodInactive
	}

	// Limits run before any processor call, so a rejected withdrawal
	// never triggers an external side effect.
	if err := s.limits.CheckWithdrawal(ctx, userID, amount); err != nil {
		s.metrics.RecordError("withdraw_funds", "limit_exceeded")
		return nil, err
	}

	fee := amount.Mul(s.cfg.WithdrawalFeePercent).Round(2)
	tx, err := s.ledger.Create(ctx, ledger.CreateParams{
		WalletID:    w.ID,
		Type:        models.TransactionTypeDebit,
		Category:    models.CategoryWithdrawal,
		Amount:      amount,
		FeeAmount:   fee,
		Reference:   reference,
		Description: fmt.Sprintf("Withdrawal to %s", pm.MethodType),
		Metadata: map[string]interface{}{
			models.MetaPaymentMethodID: pm.ID,
			models.MetaFeePercent:      s.cfg.WithdrawalFeePercent.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	// The processor round-trip happens outside any database lock. The
	// pending transaction above guarantees the attempt is on record even
	// if the processor rejects it.
	transferID, err := s.processor.InitiateWithdrawal(ctx, amount, destinationFor(pm), reference)
	if err != nil {
		s.metrics.RecordError("withdraw_funds", "processor")
		if _, failErr := s.ledger.Fail(ctx, tx.ID, err.Error()); failErr != nil {
			log.Printf("failed to mark withdrawal %s failed: %v", reference, failErr)
		}
		return nil, err
	}

	// Persist the transfer id before committing: if the commit below
	// fails, reconciliation re-queries the processor by this reference.
	if err := s.ledger.RecordProcessorRefs(ctx, tx.ID, "", transferID); err != nil {
		log.Printf("failed to record transfer id for %s: %v", reference, err)
	}

	committed, err := s.ledger.Commit(ctx, tx.ID)
	if err != nil {
		return nil, fmt.Errorf("withdrawal %s accepted by processor but not settled locally: %w", reference, err)
	}

	now := time.Now().UTC()
	pm.LastUsedAt = &now
	if err := s.methods.Save(ctx, pm); err != nil {
		log.Printf("failed to touch payment method %d: %v", pm.ID, err)
	}

	return committed, nil
}

func destinationFor(pm *models.PaymentMethod) gateway.Destination {
	return gateway.Destination{
		AccountID:       pm.StripeAccountID,
		CustomerID:      pm.StripeCustomerID,
		PaymentMethodID: pm.StripePaymentMethodID,
	}
}
