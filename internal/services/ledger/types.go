package ledger

import (
	"context"

	"creomart/internal/models"
	"creomart/internal/repositories"

	"github.com/shopspring/decimal"
)

// CreateParams describes a new ledger entry. Reference is the idempotency
// key: a second Create with the same reference returns the first row.
type CreateParams struct {
	WalletID    uint
	Type        string
	Category    string
	Amount      decimal.Decimal
	FeeAmount   decimal.Decimal
	Reference   string
	Description string

	StripePaymentIntentID string
	RelatedCampaignID     *uint
	RelatedVideoRequestID *uint
	Metadata              map[string]interface{}
}

// Service drives transactions through their lifecycle. Only Commit and
// Dispute mutate wallet balances.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Transaction, error)
	Get(ctx context.Context, id uint) (*models.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*models.Transaction, error)
	List(ctx context.Context, walletID uint, filter repositories.TransactionFilter) ([]models.Transaction, int64, error)

	MarkProcessing(ctx context.Context, id uint) (*models.Transaction, error)
	Commit(ctx context.Context, id uint) (*models.Transaction, error)
	Fail(ctx context.Context, id uint, reason string) (*models.Transaction, error)
	Cancel(ctx context.Context, id uint) (*models.Transaction, error)
	// Dispute reverses a completed transaction's balance effect through a
	// new compensating transaction and returns that compensation. The
	// original row is marked disputed, not undone.
	Dispute(ctx context.Context, id uint, reason string) (*models.Transaction, error)

	// RecordProcessorRefs persists external processor identifiers picked up
	// between creation and commit.
	RecordProcessorRefs(ctx context.Context, id uint, paymentIntentID, transferID string) error
}

// WalletCache is the slice of the cache layer the ledger invalidates after
// a balance mutation.
type WalletCache interface {
	InvalidateWallet(ctx context.Context, userID uint) error
}

// NoopCache is used where no cache is wired, e.g. in tests.
type NoopCache struct{}

func (NoopCache) InvalidateWallet(context.Context, uint) error { return nil }
