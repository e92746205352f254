// Package limits enforces per-user caps on withdrawal and deposit volume
// and on single-transaction size. Period limits use calendar windows in
// UTC: a day runs midnight to midnight, a month from the 1st. Checks run
// before any processor call so a rejected operation never triggers an
// external side effect.
package limits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creomart/internal/models"
	"creomart/internal/repositories"

	"github.com/shopspring/decimal"
)

// Service errors. All of them match ErrLimitExceeded via errors.Is.
var (
	ErrLimitExceeded        = errors.New("limit exceeded")
	ErrDailyLimitExceeded   = fmt.Errorf("daily %w", ErrLimitExceeded)
	ErrMonthlyLimitExceeded = fmt.Errorf("monthly %w", ErrLimitExceeded)
	ErrAmountLimitExceeded  = fmt.Errorf("transaction amount %w", ErrLimitExceeded)
	ErrUnknownLimitType     = errors.New("unknown limit type")
	ErrInvalidLimitAmount   = errors.New("limit amount must be positive")
)

// Service checks proposed movements against configured wallet limits.
type Service interface {
	// Check fails when proposed would push the user past the configured
	// cap for limitType. An absent or inactive limit means unlimited.
	Check(ctx context.Context, userID uint, limitType string, proposed decimal.Decimal) error
	// CheckWithdrawal runs the transaction_amount, daily_withdrawal and
	// monthly_withdrawal checks in that order.
	CheckWithdrawal(ctx context.Context, userID uint, proposed decimal.Decimal) error
	// CheckDeposit runs the transaction_amount, daily_deposit and
	// monthly_deposit checks in that order.
	CheckDeposit(ctx context.Context, userID uint, proposed decimal.Decimal) error
	// Set configures a cap, replacing any existing one of the same type.
	Set(ctx context.Context, userID uint, limitType string, amount decimal.Decimal) (*models.WalletLimit, error)
}

type service struct {
	walletRepo repositories.WalletRepository
	limitRepo  repositories.WalletLimitRepository
	now        func() time.Time
}

// NewService creates a new limits service
func NewService(walletRepo repositories.WalletRepository, limitRepo repositories.WalletLimitRepository) Service {
	if walletRepo == nil {
		panic("wallet repo is required")
	}
	if limitRepo == nil {
		panic("limit repo is required")
	}
	return &service{
		walletRepo: walletRepo,
		limitRepo:  limitRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Check(ctx context.Context, userID uint, limitType string, proposed decimal.Decimal) error {
	if !models.ValidLimitType(limitType) {
		return ErrUnknownLimitType
	}

	limit, err := s.limitRepo.GetActive(ctx, userID, limitType)
	if err != nil {
		return err
	}
	if limit == nil {
		return nil
	}

	if limitType == models.LimitTransactionAmount {
		if proposed.GreaterThan(limit.Amount) {
			return ErrAmountLimitExceeded
		}
		return nil
	}

	spent, err := s.periodTotal(ctx, userID, limitType)
	if err != nil {
		return err
	}
	if spent.Add(proposed).GreaterThan(limit.Amount) {
		switch limitType {
		case models.LimitDailyWithdrawal, models.LimitDailyDeposit:
			return ErrDailyLimitExceeded
		default:
			return ErrMonthlyLimitExceeded
		}
	}
	return nil
}

func (s *service) CheckWithdrawal(ctx context.Context, userID uint, proposed decimal.Decimal) error {
	for _, lt := range []string{models.LimitTransactionAmount, models.LimitDailyWithdrawal, models.LimitMonthlyWithdrawal} {
		if err := s.Check(ctx, userID, lt, proposed); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) CheckDeposit(ctx context.Context, userID uint, proposed decimal.Decimal) error {
	for _, lt := range []string{models.LimitTransactionAmount, models.LimitDailyDeposit, models.LimitMonthlyDeposit} {
		if err := s.Check(ctx, userID, lt, proposed); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) Set(ctx context.Context, userID uint, limitType string, amount decimal.Decimal) (*models.WalletLimit, error) {
	if !models.ValidLimitType(limitType) {
		return nil, ErrUnknownLimitType
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidLimitAmount
	}
	limit := &models.WalletLimit{
		UserID:    userID,
		LimitType: limitType,
		Amount:    amount,
		IsActive:  true,
	}
	if err := s.limitRepo.Upsert(ctx, limit); err != nil {
		return nil, err
	}
	return limit, nil
}

// periodTotal sums the net amounts of completed transactions in the
// limit's category over the current calendar period. A user with no wallet
// yet has moved nothing.
func (s *service) periodTotal(ctx context.Context, userID uint, limitType string) (decimal.Decimal, error) {
	w, err := s.walletRepo.GetWalletByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	start, end := s.periodBounds(limitType)
	return s.walletRepo.SumCompletedNet(ctx, w.ID, categoryFor(limitType), start, end)
}

func (s *service) periodBounds(limitType string) (time.Time, time.Time) {
	now := s.now()
	switch limitType {
	case models.LimitDailyWithdrawal, models.LimitDailyDeposit:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return start, start.Add(24 * time.Hour)
	default:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
}

func categoryFor(limitType string) string {
	switch limitType {
	case models.LimitDailyDeposit, models.LimitMonthlyDeposit:
		return models.CategoryDeposit
	default:
		return models.CategoryWithdrawal
	}
}
