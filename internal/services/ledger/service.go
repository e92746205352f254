package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creomart/internal/models"
	"creomart/internal/repositories"
	"creomart/internal/services/wallet"

	"github.com/shopspring/decimal"
)

type service struct {
	repo    repositories.WalletRepository
	cache   WalletCache
	metrics wallet.MetricsCollector
}

// NewService creates a new ledger service
func NewService(repo repositories.WalletRepository, cache WalletCache, metrics wallet.MetricsCollector) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		cache = NoopCache{}
	}
	if metrics == nil {
		metrics = &wallet.NoopMetricsCollector{}
	}
	return &service{repo: repo, cache: cache, metrics: metrics}
}

func (s *service) Create(ctx context.Context, p CreateParams) (*models.Transaction, error) {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if p.FeeAmount.IsNegative() {
		return nil, ErrInvalidFee
	}
	if !models.ValidTransactionType(p.Type) {
		return nil, ErrInvalidType
	}
	if !models.ValidCategory(p.Category) {
		return nil, ErrInvalidCategory
	}
	if p.Reference == "" {
		return nil, ErrEmptyReference
	}

	// Idempotency: the same reference always resolves to the same row.
	existing, err := s.repo.GetTransactionByReference(ctx, p.Reference)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrTransactionNotFound) {
		return nil, err
	}

	tx := &models.Transaction{
		WalletID:              p.WalletID,
		TransactionType:       p.Type,
		Category:              p.Category,
		Amount:                p.Amount,
		FeeAmount:             p.FeeAmount,
		Description:           p.Description,
		Reference:             p.Reference,
		Status:                models.StatusPending,
		StripePaymentIntentID: p.StripePaymentIntentID,
		RelatedCampaignID:     p.RelatedCampaignID,
		RelatedVideoRequestID: p.RelatedVideoRequestID,
		Metadata:              models.NewJSON(p.Metadata),
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		if errors.Is(err, repositories.ErrDuplicateReference) {
			// Lost a create/create race; the winner's row is ours too.
			return s.repo.GetTransactionByReference(ctx, p.Reference)
		}
		return nil, err
	}
	return tx, nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Transaction, error) {
	tx, err := s.repo.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

func (s *service) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	tx, err := s.repo.GetTransactionByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

func (s *service) List(ctx context.Context, walletID uint, filter repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	return s.repo.ListTransactions(ctx, walletID, filter)
}

func (s *service) MarkProcessing(ctx context.Context, id uint) (*models.Transaction, error) {
	var out *models.Transaction
	err := s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		tx, err := getTransaction(ctx, r, id)
		if err != nil {
			return err
		}
		if tx.Status != models.StatusPending {
			return fmt.Errorf("%w: cannot mark %s transaction processing", ErrInvalidTransition, tx.Status)
		}
		tx.Status = models.StatusProcessing
		if err := r.SaveTransaction(ctx, tx); err != nil {
			return err
		}
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Commit settles the transaction: the status write and the balance
// mutation happen in one database transaction with the wallet row locked,
// so two concurrent debits cannot both pass the funds check.
func (s *service) Commit(ctx context.Context, id uint) (*models.Transaction, error) {
	var (
		committed *models.Transaction
		userID    uint
	)
	err := s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		tx, err := getTransaction(ctx, r, id)
		if err != nil {
			return err
		}
		if tx.Status != models.StatusPending && tx.Status != models.StatusProcessing {
			return fmt.Errorf("%w: cannot commit %s transaction", ErrInvalidTransition, tx.Status)
		}

		w, err := r.GetWalletForUpdate(ctx, tx.WalletID)
		if err != nil {
			return err
		}
		// A frozen wallet blocks all outbound movement, whatever path
		// created the entry. Inbound credits still settle.
		if w.IsFrozen && isOutbound(tx.TransactionType) {
			return wallet.ErrWalletFrozen
		}
		if err := applyEffect(w, tx); err != nil {
			return err
		}

		now := time.Now().UTC()
		tx.ProcessedAt = &now
		tx.Status = models.StatusCompleted

		if err := r.SaveWallet(ctx, w); err != nil {
			return err
		}
		if err := r.SaveTransaction(ctx, tx); err != nil {
			return err
		}
		committed = tx
		userID = w.UserID
		return nil
	})
	if err != nil {
		s.metrics.RecordError("commit", errType(err))
		return nil, err
	}

	s.cache.InvalidateWallet(ctx, userID)
	s.metrics.RecordTransaction(committed.TransactionType, committed.Amount)
	return committed, nil
}

// Fail re-reads the status inside the transaction so a retry racing a
// commit cannot overwrite completed with failed after the balance moved.
func (s *service) Fail(ctx context.Context, id uint, reason string) (*models.Transaction, error) {
	var out *models.Transaction
	err := s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		tx, err := getTransaction(ctx, r, id)
		if err != nil {
			return err
		}
		if tx.Status != models.StatusPending && tx.Status != models.StatusProcessing {
			return fmt.Errorf("%w: cannot fail %s transaction", ErrInvalidTransition, tx.Status)
		}
		if tx.Metadata == nil {
			tx.Metadata = models.JSON{}
		}
		tx.Metadata[models.MetaFailureReason] = reason
		tx.Status = models.StatusFailed
		if err := r.SaveTransaction(ctx, tx); err != nil {
			return err
		}
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Cancel(ctx context.Context, id uint) (*models.Transaction, error) {
	var out *models.Transaction
	err := s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		tx, err := getTransaction(ctx, r, id)
		if err != nil {
			return err
		}
		if tx.Status != models.StatusPending {
			return fmt.Errorf("%w: cannot cancel %s transaction", ErrInvalidTransition, tx.Status)
		}
		tx.Status = models.StatusCancelled
		if err := r.SaveTransaction(ctx, tx); err != nil {
			return err
		}
		out = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Dispute(ctx context.Context, id uint, reason string) (*models.Transaction, error) {
	var (
		comp   *models.Transaction
		userID uint
	)
	err := s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		orig, err := getTransaction(ctx, r, id)
		if err != nil {
			return err
		}
		if orig.Status != models.StatusCompleted {
			return fmt.Errorf("%w: only completed transactions can be disputed", ErrInvalidTransition)
		}

		w, err := r.GetWalletForUpdate(ctx, orig.WalletID)
		if err != nil {
			return err
		}

		comp = compensationFor(orig, reason)
		if err := applyEffect(w, comp); err != nil {
			return err
		}
		now := time.Now().UTC()
		comp.ProcessedAt = &now
		comp.Status = models.StatusCompleted

		if err := r.CreateTransaction(ctx, comp); err != nil {
			if errors.Is(err, repositories.ErrDuplicateReference) {
				return fmt.Errorf("%w: dispute already recorded", ErrInvalidTransition)
			}
			return err
		}

		if orig.Metadata == nil {
			orig.Metadata = models.JSON{}
		}
		orig.Metadata[models.MetaDisputeReason] = reason
		orig.Status = models.StatusDisputed
		if err := r.SaveTransaction(ctx, orig); err != nil {
			return err
		}
		if err := r.SaveWallet(ctx, w); err != nil {
			return err
		}
		userID = w.UserID
		return nil
	})
	if err != nil {
		s.metrics.RecordError("dispute", errType(err))
		return nil, err
	}

	s.cache.InvalidateWallet(ctx, userID)
	s.metrics.RecordTransaction(comp.TransactionType, comp.Amount)
	return comp, nil
}

func (s *service) RecordProcessorRefs(ctx context.Context, id uint, paymentIntentID, transferID string) error {
	return s.repo.ExecuteInTransaction(func(r repositories.WalletRepository) error {
		tx, err := getTransaction(ctx, r, id)
		if err != nil {
			return err
		}
		if tx.IsTerminal() {
			return fmt.Errorf("%w: transaction is already settled", ErrInvalidTransition)
		}
		if paymentIntentID != "" {
			tx.StripePaymentIntentID = paymentIntentID
		}
		if transferID != "" {
			tx.StripeTransferID = transferID
		}
		return r.SaveTransaction(ctx, tx)
	})
}

func getTransaction(ctx context.Context, r repositories.WalletRepository, id uint) (*models.Transaction, error) {
	tx, err := r.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

func isOutbound(transactionType string) bool {
	switch transactionType {
	case models.TransactionTypeDebit, models.TransactionTypeFee, models.TransactionTypeTransfer:
		return true
	}
	return false
}

// applyEffect mutates the wallet in place with the transaction's balance
// effect. Credits and refunds add the net amount; debits, fees and
// transfers remove the full amount and must not drive the balance negative.
func applyEffect(w *models.Wallet, tx *models.Transaction) error {
	net := tx.Amount.Sub(tx.FeeAmount)
	switch tx.TransactionType {
	case models.TransactionTypeCredit, models.TransactionTypeRefund:
		w.Balance = w.Balance.Add(net)
		w.TotalEarned = w.TotalEarned.Add(net)
	case models.TransactionTypeDebit, models.TransactionTypeFee, models.TransactionTypeTransfer:
		if w.Balance.LessThan(tx.Amount) {
			return ErrInsufficientFunds
		}
		w.Balance = w.Balance.Sub(tx.Amount)
		if tx.Category == models.CategoryWithdrawal {
			w.TotalWithdrawn = w.TotalWithdrawn.Add(tx.Amount)
		} else {
			w.TotalSpent = w.TotalSpent.Add(tx.Amount)
		}
	default:
		return ErrInvalidType
	}
	return nil
}

// compensationFor builds the reversal entry for a disputed transaction.
// The reversal amount is exactly what the original moved: net for
// credit-like entries, the full amount for debit-like ones.
func compensationFor(orig *models.Transaction, reason string) *models.Transaction {
	comp := &models.Transaction{
		WalletID:    orig.WalletID,
		Category:    models.CategoryRefund,
		FeeAmount:   decimal.Zero,
		Reference:   "dispute_" + orig.Reference,
		Description: "Dispute reversal of " + orig.Reference,
		Status:      models.StatusPending,
		Metadata: models.JSON{
			models.MetaDisputedTxID:  orig.ID,
			models.MetaDisputeReason: reason,
		},
	}
	switch orig.TransactionType {
	case models.TransactionTypeCredit, models.TransactionTypeRefund:
		comp.TransactionType = models.TransactionTypeDebit
		comp.Amount = orig.NetAmount
	default:
		comp.TransactionType = models.TransactionTypeCredit
		comp.Amount = orig.Amount
	}
	return comp
}

func errType(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, wallet.ErrWalletFrozen):
		return "wallet_frozen"
	default:
		return "internal"
	}
}
