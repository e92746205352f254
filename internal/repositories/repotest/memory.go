// Package repotest provides in-memory repository implementations for
// service tests. The fakes mirror the database semantics the services
// rely on: reference uniqueness, row copies on read, and serialized
// ExecuteInTransaction closures.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"creomart/internal/models"
	"creomart/internal/repositories"

	"github.com/shopspring/decimal"
)

// Memory implements WalletRepository, PaymentMethodRepository and
// WalletLimitRepository over maps.
type Memory struct {
	mu   sync.Mutex
	txMu sync.Mutex

	wallets map[uint]*models.Wallet
	txs     map[uint]*models.Transaction
	methods map[uint]*models.PaymentMethod
	limits  map[uint]map[string]*models.WalletLimit

	walletSeq uint
	txSeq     uint
	methodSeq uint

	// Now stamps created_at; overridable from tests.
	Now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		wallets: make(map[uint]*models.Wallet),
		txs:     make(map[uint]*models.Transaction),
		methods: make(map[uint]*models.PaymentMethod),
		limits:  make(map[uint]map[string]*models.WalletLimit),
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

var (
	_ repositories.WalletRepository        = (*Memory)(nil)
	_ repositories.PaymentMethodRepository = (*Memory)(nil)
	_ repositories.WalletLimitRepository   = (*Memory)(nil)
)

func copyWallet(w *models.Wallet) *models.Wallet {
	c := *w
	return &c
}

func copyTx(tx *models.Transaction) *models.Transaction {
	c := *tx
	if tx.Metadata != nil {
		c.Metadata = models.JSON{}
		for k, v := range tx.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func (m *Memory) GetOrCreateWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.wallets {
		if w.UserID == userID {
			return copyWallet(w), nil
		}
	}
	m.walletSeq++
	w := &models.Wallet{ID: m.walletSeq, UserID: userID, CreatedAt: m.Now()}
	m.wallets[w.ID] = w
	return copyWallet(w), nil
}

func (m *Memory) GetWalletByID(ctx context.Context, id uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[id]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	return copyWallet(w), nil
}

func (m *Memory) GetWalletByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.wallets {
		if w.UserID == userID {
			return copyWallet(w), nil
		}
	}
	return nil, repositories.ErrWalletNotFound
}

func (m *Memory) GetWalletForUpdate(ctx context.Context, walletID uint) (*models.Wallet, error) {
	return m.GetWalletByID(ctx, walletID)
}

func (m *Memory) SaveWallet(ctx context.Context, wallet *models.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[wallet.ID] = copyWallet(wallet)
	return nil
}

func (m *Memory) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.txs {
		if existing.Reference == tx.Reference {
			return repositories.ErrDuplicateReference
		}
	}
	m.txSeq++
	tx.ID = m.txSeq
	tx.CreatedAt = m.Now()
	tx.NetAmount = tx.Amount.Sub(tx.FeeAmount)
	m.txs[tx.ID] = copyTx(tx)
	return nil
}

func (m *Memory) GetTransactionByID(ctx context.Context, id uint) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.txs[id]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	return copyTx(tx), nil
}

func (m *Memory) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range m.txs {
		if tx.Reference == reference {
			return copyTx(tx), nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (m *Memory) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx.NetAmount = tx.Amount.Sub(tx.FeeAmount)
	m.txs[tx.ID] = copyTx(tx)
	return nil
}

func (m *Memory) ListTransactions(ctx context.Context, walletID uint, filter repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []models.Transaction
	for _, tx := range m.txs {
		if tx.WalletID != walletID {
			continue
		}
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		if filter.Type != "" && tx.TransactionType != filter.Type {
			continue
		}
		matched = append(matched, *copyTx(tx))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	total := int64(len(matched))

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (m *Memory) SumCompletedNet(ctx context.Context, walletID uint, category string, start, end time.Time) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, tx := range m.txs {
		if tx.WalletID != walletID || tx.Category != category || tx.Status != models.StatusCompleted {
			continue
		}
		if tx.CreatedAt.Before(start) || !tx.CreatedAt.Before(end) {
			continue
		}
		sum = sum.Add(tx.NetAmount)
	}
	return sum, nil
}

// ExecuteInTransaction serializes closures the way row locks do in the
// real implementation.
func (m *Memory) ExecuteInTransaction(fn func(repositories.WalletRepository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

func (m *Memory) Create(ctx context.Context, pm *models.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methodSeq++
	pm.ID = m.methodSeq
	pm.CreatedAt = m.Now()
	c := *pm
	m.methods[pm.ID] = &c
	return nil
}

func (m *Memory) GetByID(ctx context.Context, id uint) (*models.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pm, ok := m.methods[id]
	if !ok {
		return nil, repositories.ErrPaymentMethodNotFound
	}
	c := *pm
	return &c, nil
}

func (m *Memory) GetForUser(ctx context.Context, id, userID uint) (*models.PaymentMethod, error) {
	pm, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pm.UserID != userID {
		return nil, repositories.ErrPaymentMethodNotFound
	}
	return pm, nil
}

func (m *Memory) ListForUser(ctx context.Context, userID uint) ([]models.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.PaymentMethod
	for _, pm := range m.methods {
		if pm.UserID == userID && pm.IsActive {
			out = append(out, *pm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPrimary != out[j].IsPrimary {
			return out[i].IsPrimary
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Save(ctx context.Context, pm *models.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *pm
	m.methods[pm.ID] = &c
	return nil
}

func (m *Memory) SetPrimary(ctx context.Context, id, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.methods[id]
	if !ok || target.UserID != userID || !target.IsActive {
		return repositories.ErrPaymentMethodNotFound
	}
	for _, pm := range m.methods {
		if pm.UserID == userID {
			pm.IsPrimary = pm.ID == id
		}
	}
	return nil
}

func (m *Memory) GetActive(ctx context.Context, userID uint, limitType string) (*models.WalletLimit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byType, ok := m.limits[userID]
	if !ok {
		return nil, nil
	}
	limit, ok := byType[limitType]
	if !ok || !limit.IsActive {
		return nil, nil
	}
	c := *limit
	return &c, nil
}

func (m *Memory) Upsert(ctx context.Context, limit *models.WalletLimit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byType, ok := m.limits[limit.UserID]
	if !ok {
		byType = make(map[string]*models.WalletLimit)
		m.limits[limit.UserID] = byType
	}
	c := *limit
	byType[limit.LimitType] = &c
	return nil
}
