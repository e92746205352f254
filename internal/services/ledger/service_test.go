package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"creomart/internal/models"
	"creomart/internal/repositories"
	"creomart/internal/repositories/repotest"
	"creomart/internal/services/wallet"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *repotest.Memory, *models.Wallet) {
	t.Helper()
	repo := repotest.NewMemory()
	svc := NewService(repo, nil, nil)
	w, err := repo.GetOrCreateWallet(context.Background(), 1)
	require.NoError(t, err)
	return svc, repo, w
}

func seedBalance(t *testing.T, repo *repotest.Memory, w *models.Wallet, amount string) {
	t.Helper()
	w.Balance = decimal.RequireFromString(amount)
	require.NoError(t, repo.SaveWallet(context.Background(), w))
}

func TestCreate_Validation(t *testing.T) {
	svc, _, w := newTestService(t)

	tests := []struct {
		name    string
		params  CreateParams
		wantErr error
	}{
		{
			name: "zero amount",
			params: CreateParams{
				WalletID: w.ID, Type: models.TransactionTypeCredit,
				Category: models.CategoryDeposit, Reference: "ref-1",
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "negative amount",
			params: CreateParams{
				WalletID: w.ID, Type: models.TransactionTypeCredit,
				Category: models.CategoryDeposit, Reference: "ref-1",
				Amount: decimal.NewFromInt(-5),
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "negative fee",
			params: CreateParams{
				WalletID: w.ID, Type: models.TransactionTypeCredit,
				Category: models.CategoryDeposit, Reference: "ref-1",
				Amount: decimal.NewFromInt(10), FeeAmount: decimal.NewFromInt(-1),
			},
			wantErr: ErrInvalidFee,
		},
		{
			name: "unknown type",
			params: CreateParams{
				WalletID: w.ID, Type: "wire",
				Category: models.CategoryDeposit, Reference: "ref-1",
				Amount: decimal.NewFromInt(10),
			},
			wantErr: ErrInvalidType,
		},
		{
			name: "unknown category",
			params: CreateParams{
				WalletID: w.ID, Type: models.TransactionTypeCredit,
				Category: "gift", Reference: "ref-1",
				Amount: decimal.NewFromInt(10),
			},
			wantErr: ErrInvalidCategory,
		},
		{
			name: "missing reference",
			params: CreateParams{
				WalletID: w.ID, Type: models.TransactionTypeCredit,
				Category: models.CategoryDeposit,
				Amount:   decimal.NewFromInt(10),
			},
			wantErr: ErrEmptyReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreate_StartsPending(t *testing.T) {
	svc, _, w := newTestService(t)

	tx, err := svc.Create(context.Background(), CreateParams{
		WalletID:  w.ID,
		Type:      models.TransactionTypeCredit,
		Category:  models.CategoryDeposit,
		Amount:    decimal.NewFromInt(50),
		FeeAmount: decimal.NewFromInt(5),
		Reference: "dep-1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, tx.Status)
	assert.Nil(t, tx.ProcessedAt)
	assert.True(t, tx.NetAmount.Equal(decimal.NewFromInt(45)))
}

func TestCreate_IdempotentOnReference(t *testing.T) {
	svc, _, w := newTestService(t)

	params := CreateParams{
		WalletID:  w.ID,
		Type:      models.TransactionTypeCredit,
		Category:  models.CategoryDeposit,
		Amount:    decimal.NewFromInt(50),
		Reference: "dep-1",
	}
	first, err := svc.Create(context.Background(), params)
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, total, err := svc.List(context.Background(), w.ID, repositories.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestTransitions(t *testing.T) {
	ctx := context.Background()

	credit := func(svc Service, w *models.Wallet, ref string) *models.Transaction {
		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeCredit,
			Category: models.CategoryDeposit,
			Amount:   decimal.NewFromInt(10), Reference: ref,
		})
		require.NoError(t, err)
		return tx
	}

	t.Run("pending to processing to completed", func(t *testing.T) {
		svc, _, w := newTestService(t)
		tx := credit(svc, w, "r1")

		tx, err := svc.MarkProcessing(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusProcessing, tx.Status)

		tx, err = svc.Commit(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, tx.Status)
		require.NotNil(t, tx.ProcessedAt)
	})

	t.Run("cancel only from pending", func(t *testing.T) {
		svc, _, w := newTestService(t)
		tx := credit(svc, w, "r1")

		tx, err := svc.MarkProcessing(ctx, tx.ID)
		require.NoError(t, err)

		_, err = svc.Cancel(ctx, tx.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("cancelled stays put", func(t *testing.T) {
		svc, _, w := newTestService(t)
		tx := credit(svc, w, "r1")

		tx, err := svc.Cancel(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, tx.Status)

		_, err = svc.Commit(ctx, tx.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = svc.MarkProcessing(ctx, tx.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("fail records the reason", func(t *testing.T) {
		svc, _, w := newTestService(t)
		tx := credit(svc, w, "r1")

		tx, err := svc.Fail(ctx, tx.ID, "card_declined")
		require.NoError(t, err)
		assert.Equal(t, models.StatusFailed, tx.Status)
		assert.Equal(t, "card_declined", tx.Metadata[models.MetaFailureReason])
	})

	t.Run("commit is not repeatable", func(t *testing.T) {
		svc, _, w := newTestService(t)
		tx := credit(svc, w, "r1")

		_, err := svc.Commit(ctx, tx.ID)
		require.NoError(t, err)
		_, err = svc.Commit(ctx, tx.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.Commit(ctx, 999)
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})
}

func TestCommit_BalanceEffects(t *testing.T) {
	ctx := context.Background()

	t.Run("credit adds net amount", func(t *testing.T) {
		svc, repo, w := newTestService(t)

		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeCredit,
			Category: models.CategoryPayment,
			Amount:   decimal.NewFromInt(100), FeeAmount: decimal.NewFromInt(10),
			Reference: "pay-1",
		})
		require.NoError(t, err)
		_, err = svc.Commit(ctx, tx.ID)
		require.NoError(t, err)

		w, err = repo.GetWalletByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, w.Balance.Equal(decimal.NewFromInt(90)), "balance %s", w.Balance)
		assert.True(t, w.TotalEarned.Equal(decimal.NewFromInt(90)))
	})

	t.Run("debit removes full amount", func(t *testing.T) {
		svc, repo, w := newTestService(t)
		seedBalance(t, repo, w, "100")

		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeDebit,
			Category: models.CategoryWithdrawal,
			Amount:   decimal.NewFromInt(30), FeeAmount: decimal.NewFromInt(1),
			Reference: "wd-1",
		})
		require.NoError(t, err)
		_, err = svc.Commit(ctx, tx.ID)
		require.NoError(t, err)

		w, err = repo.GetWalletByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, w.Balance.Equal(decimal.NewFromInt(70)), "balance %s", w.Balance)
		assert.True(t, w.TotalWithdrawn.Equal(decimal.NewFromInt(30)))
	})

	t.Run("fee counts as spend", func(t *testing.T) {
		svc, repo, w := newTestService(t)
		seedBalance(t, repo, w, "50")

		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeFee,
			Category: models.CategoryPlatformFee,
			Amount:   decimal.NewFromInt(5),
			Reference: "fee-1",
		})
		require.NoError(t, err)
		_, err = svc.Commit(ctx, tx.ID)
		require.NoError(t, err)

		w, err = repo.GetWalletByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, w.Balance.Equal(decimal.NewFromInt(45)))
		assert.True(t, w.TotalSpent.Equal(decimal.NewFromInt(5)))
	})

	t.Run("insufficient funds rejects the commit", func(t *testing.T) {
		svc, repo, w := newTestService(t)
		seedBalance(t, repo, w, "20")

		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeDebit,
			Category: models.CategoryWithdrawal,
			Amount:   decimal.NewFromInt(30),
			Reference: "wd-1",
		})
		require.NoError(t, err)

		_, err = svc.Commit(ctx, tx.ID)
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		// Neither side moved.
		w, err = repo.GetWalletByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, w.Balance.Equal(decimal.NewFromInt(20)))
		tx, err = svc.Get(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, tx.Status)
	})
}

func TestCommit_ConcurrentDebits(t *testing.T) {
	svc, repo, w := newTestService(t)
	ctx := context.Background()
	seedBalance(t, repo, w, "100")

	tx1, err := svc.Create(ctx, CreateParams{
		WalletID: w.ID, Type: models.TransactionTypeDebit,
		Category: models.CategoryWithdrawal,
		Amount:   decimal.NewFromInt(70), Reference: "wd-1",
	})
	require.NoError(t, err)
	tx2, err := svc.Create(ctx, CreateParams{
		WalletID: w.ID, Type: models.TransactionTypeDebit,
		Category: models.CategoryWithdrawal,
		Amount:   decimal.NewFromInt(70), Reference: "wd-2",
	})
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []uint{tx1.ID, tx2.ID} {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			_, errs[i] = svc.Commit(ctx, id)
		}(i, id)
	}
	wg.Wait()

	// Exactly one debit settles; the other bounces on funds.
	var failed int
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrInsufficientFunds)
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	w, err = repo.GetWalletByID(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(30)), "balance %s", w.Balance)
}

func TestDispute(t *testing.T) {
	ctx := context.Background()

	t.Run("credit reversal debits the net amount", func(t *testing.T) {
		svc, repo, w := newTestService(t)

		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeCredit,
			Category: models.CategoryPayment,
			Amount:   decimal.NewFromInt(100), FeeAmount: decimal.NewFromInt(10),
			Reference: "pay-1",
		})
		require.NoError(t, err)
		_, err = svc.Commit(ctx, tx.ID)
		require.NoError(t, err)

		comp, err := svc.Dispute(ctx, tx.ID, "chargeback")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionTypeDebit, comp.TransactionType)
		assert.Equal(t, "dispute_pay-1", comp.Reference)
		assert.True(t, comp.Amount.Equal(decimal.NewFromInt(90)))
		assert.Equal(t, models.StatusCompleted, comp.Status)

		orig, err := svc.Get(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusDisputed, orig.Status)
		assert.Equal(t, "chargeback", orig.Metadata[models.MetaDisputeReason])

		w, err = repo.GetWalletByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, w.Balance.IsZero(), "balance %s", w.Balance)
	})

	t.Run("debit reversal credits the full amount", func(t *testing.T) {
		svc, repo, w := newTestService(t)
		seedBalance(t, repo, w, "100")

		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeDebit,
			Category: models.CategoryWithdrawal,
			Amount:   decimal.NewFromInt(40), FeeAmount: decimal.NewFromInt(2),
			Reference: "wd-1",
		})
		require.NoError(t, err)
		_, err = svc.Commit(ctx, tx.ID)
		require.NoError(t, err)

		comp, err := svc.Dispute(ctx, tx.ID, "not received")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionTypeCredit, comp.TransactionType)
		assert.True(t, comp.Amount.Equal(decimal.NewFromInt(40)))

		w, err = repo.GetWalletByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, w.Balance.Equal(decimal.NewFromInt(100)))
	})

	t.Run("only completed transactions can be disputed", func(t *testing.T) {
		svc, _, w := newTestService(t)
		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeCredit,
			Category: models.CategoryDeposit,
			Amount:   decimal.NewFromInt(10), Reference: "r1",
		})
		require.NoError(t, err)

		_, err = svc.Dispute(ctx, tx.ID, "oops")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("dispute is not repeatable", func(t *testing.T) {
		svc, _, w := newTestService(t)
		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeCredit,
			Category: models.CategoryDeposit,
			Amount:   decimal.NewFromInt(10), Reference: "r1",
		})
		require.NoError(t, err)
		_, err = svc.Commit(ctx, tx.ID)
		require.NoError(t, err)

		_, err = svc.Dispute(ctx, tx.ID, "first")
		require.NoError(t, err)
		_, err = svc.Dispute(ctx, tx.ID, "second")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("reversal respects the funds check", func(t *testing.T) {
		svc, repo, w := newTestService(t)

		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeCredit,
			Category: models.CategoryPayment,
			Amount:   decimal.NewFromInt(50), Reference: "pay-1",
		})
		require.NoError(t, err)
		_, err = svc.Commit(ctx, tx.ID)
		require.NoError(t, err)

		// Drain the balance so the compensating debit cannot settle.
		w, err = repo.GetWalletByID(ctx, w.ID)
		require.NoError(t, err)
		seedBalance(t, repo, w, "10")

		_, err = svc.Dispute(ctx, tx.ID, "chargeback")
		assert.ErrorIs(t, err, ErrInsufficientFunds)
	})
}

// The wallet balance must always equal the signed sum of settled entries.
func TestBalanceMatchesLedger(t *testing.T) {
	svc, repo, w := newTestService(t)
	ctx := context.Background()

	steps := []struct {
		txType   string
		category string
		amount   int64
		fee      int64
	}{
		{models.TransactionTypeCredit, models.CategoryPayment, 200, 20},
		{models.TransactionTypeCredit, models.CategoryDeposit, 50, 0},
		{models.TransactionTypeDebit, models.CategoryWithdrawal, 80, 2},
		{models.TransactionTypeFee, models.CategoryPlatformFee, 10, 0},
		{models.TransactionTypeRefund, models.CategoryRefund, 30, 0},
	}

	for i, step := range steps {
		tx, err := svc.Create(ctx, CreateParams{
			WalletID:  w.ID,
			Type:      step.txType,
			Category:  step.category,
			Amount:    decimal.NewFromInt(step.amount),
			FeeAmount: decimal.NewFromInt(step.fee),
			Reference: "step-" + string(rune('a'+i)),
		})
		require.NoError(t, err)
		_, err = svc.Commit(ctx, tx.ID)
		require.NoError(t, err)
	}

	txs, _, err := svc.List(ctx, w.ID, repositories.TransactionFilter{Status: models.StatusCompleted})
	require.NoError(t, err)

	expected := decimal.Zero
	for _, tx := range txs {
		switch tx.TransactionType {
		case models.TransactionTypeCredit, models.TransactionTypeRefund:
			expected = expected.Add(tx.NetAmount)
		default:
			expected = expected.Sub(tx.Amount)
		}
	}

	w, err = repo.GetWalletByID(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(expected), "balance %s, ledger sum %s", w.Balance, expected)
}

func TestRecordProcessorRefs(t *testing.T) {
	svc, _, w := newTestService(t)
	ctx := context.Background()

	tx, err := svc.Create(ctx, CreateParams{
		WalletID: w.ID, Type: models.TransactionTypeDebit,
		Category: models.CategoryWithdrawal,
		Amount:   decimal.NewFromInt(10), Reference: "wd-1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RecordProcessorRefs(ctx, tx.ID, "", "tr_123"))
	tx, err = svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "tr_123", tx.StripeTransferID)

	_, err = svc.Commit(ctx, tx.ID)
	require.NoError(t, err)
	err = svc.RecordProcessorRefs(ctx, tx.ID, "", "tr_456")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// A failure callback racing the commit must never leave a credited balance
// behind a failed row: whichever transition lands second has to see the
// first one's status and bounce.
func TestFail_ConcurrentWithCommit(t *testing.T) {
	svc, repo, w := newTestService(t)
	ctx := context.Background()

	expected := decimal.Zero
	for i := 0; i < 300; i++ {
		tx, err := svc.Create(ctx, CreateParams{
			WalletID:  w.ID, Type: models.TransactionTypeCredit,
			Category:  models.CategoryDeposit,
			Amount:    decimal.NewFromInt(50),
			Reference: fmt.Sprintf("dep-%d", i),
		})
		require.NoError(t, err)

		var commitErr, failErr error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, commitErr = svc.Commit(ctx, tx.ID)
		}()
		go func() {
			defer wg.Done()
			_, failErr = svc.Fail(ctx, tx.ID, "card_declined")
		}()
		wg.Wait()

		// Exactly one transition wins; the loser sees a settled row.
		if commitErr == nil {
			require.ErrorIs(t, failErr, ErrInvalidTransition)
			expected = expected.Add(decimal.NewFromInt(50))
		} else {
			require.ErrorIs(t, commitErr, ErrInvalidTransition)
			require.NoError(t, failErr)
		}

		tx, err = svc.Get(ctx, tx.ID)
		require.NoError(t, err)
		w, err = repo.GetWalletByID(ctx, w.ID)
		require.NoError(t, err)
		if tx.Status == models.StatusFailed {
			require.True(t, w.Balance.Equal(expected),
				"iteration %d: failed row but balance %s (want %s)", i, w.Balance, expected)
		} else {
			require.Equal(t, models.StatusCompleted, tx.Status)
			require.True(t, w.Balance.Equal(expected),
				"iteration %d: balance %s (want %s)", i, w.Balance, expected)
		}
	}
}

func TestCommit_FrozenWalletBlocksOutbound(t *testing.T) {
	ctx := context.Background()

	t.Run("debit bounces", func(t *testing.T) {
		svc, repo, w := newTestService(t)
		seedBalance(t, repo, w, "100")
		w.IsFrozen = true
		require.NoError(t, repo.SaveWallet(ctx, w))

		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeDebit,
			Category: models.CategoryPayment,
			Amount:   decimal.NewFromInt(40), Reference: "camp-1",
		})
		require.NoError(t, err)

		_, err = svc.Commit(ctx, tx.ID)
		assert.ErrorIs(t, err, wallet.ErrWalletFrozen)

		w, err = repo.GetWalletByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, w.Balance.Equal(decimal.NewFromInt(100)))
		tx, err = svc.Get(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, tx.Status)
	})

	t.Run("credit still settles", func(t *testing.T) {
		svc, repo, w := newTestService(t)
		w.IsFrozen = true
		require.NoError(t, repo.SaveWallet(ctx, w))

		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeCredit,
			Category: models.CategoryPayment,
			Amount:   decimal.NewFromInt(25), Reference: "pay-1",
		})
		require.NoError(t, err)

		_, err = svc.Commit(ctx, tx.ID)
		require.NoError(t, err)
		w, err = repo.GetWalletByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, w.Balance.Equal(decimal.NewFromInt(25)))
	})

	t.Run("dispute reversal bypasses the gate", func(t *testing.T) {
		svc, repo, w := newTestService(t)

		tx, err := svc.Create(ctx, CreateParams{
			WalletID: w.ID, Type: models.TransactionTypeCredit,
			Category: models.CategoryPayment,
			Amount:   decimal.NewFromInt(60), Reference: "pay-2",
		})
		require.NoError(t, err)
		_, err = svc.Commit(ctx, tx.ID)
		require.NoError(t, err)

		w, err = repo.GetWalletByID(ctx, w.ID)
		require.NoError(t, err)
		w.IsFrozen = true
		require.NoError(t, repo.SaveWallet(ctx, w))

		// Clawing back a disputed credit is not an outbound movement
		// the account holder initiates; it still applies when frozen.
		comp, err := svc.Dispute(ctx, tx.ID, "chargeback")
		require.NoError(t, err)
		assert.Equal(t, models.TransactionTypeDebit, comp.TransactionType)

		w, err = repo.GetWalletByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, w.Balance.IsZero(), "balance %s", w.Balance)
	})
}
