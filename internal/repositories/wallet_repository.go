package repositories

import (
	"context"
	"errors"
	"time"

	"creomart/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrWalletNotFound        = errors.New("wallet not found")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrDuplicateReference    = errors.New("transaction reference already exists")
)

// TransactionFilter narrows ListTransactions. Zero values mean "any".
type TransactionFilter struct {
	Status   string
	Category string
	Type     string
	Limit    int
	Offset   int
}

// WalletRepository defines the database operations the ledger core needs.
// Implementations must make ExecuteInTransaction hand the closure a
// repository bound to the open database transaction, so every read and
// write inside it shares one atomic unit.
type WalletRepository interface {
	// Wallet operations
	GetOrCreateWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	GetWalletByID(ctx context.Context, id uint) (*models.Wallet, error)
	GetWalletByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	// GetWalletForUpdate takes a row lock; only meaningful inside
	// ExecuteInTransaction.
	GetWalletForUpdate(ctx context.Context, walletID uint) (*models.Wallet, error)
	SaveWallet(ctx context.Context, wallet *models.Wallet) error

	// Ledger operations
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransactionByID(ctx context.Context, id uint) (*models.Transaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	ListTransactions(ctx context.Context, walletID uint, filter TransactionFilter) ([]models.Transaction, int64, error)
	// SumCompletedNet totals net_amount of completed transactions in the
	// given category created within [start, end). Used by limit checks.
	SumCompletedNet(ctx context.Context, walletID uint, category string, start, end time.Time) (decimal.Decimal, error)

	ExecuteInTransaction(fn func(WalletRepository) error) error
}
