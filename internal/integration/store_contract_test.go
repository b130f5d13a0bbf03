package integration

import (
	"context"
	"testing"
	"time"

	"tapcoin/internal/catalog"
	"tapcoin/internal/domain"
	"tapcoin/internal/repository"
	"tapcoin/internal/repository/memstore"
	"tapcoin/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both stores must honour the same contract; the postgres case skips
// without DATABASE_URL.
func TestStoreContract(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) service.Store
	}{
		{"memstore", func(*testing.T) service.Store { return memstore.New() }},
		{"postgres", func(t *testing.T) service.Store { return openStore(t) }},
	}
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			storeContract(t, b.open(t))
		})
	}
}

func storeContract(t *testing.T, store service.Store) {
	ctx := context.Background()
	base := uniqueID(1_000)
	const accounts = 120

	for i := int64(0); i < accounts; i++ {
		a := domain.NewAccount(domain.Profile{TelegramID: base + i}, time.Now())
		a.ReferralCode = repository.GenerateReferralCode()
		a.Coins = float64(i)
		created, err := store.CreateAccount(ctx, a, catalog.Default())
		require.NoError(t, err)
		require.True(t, created)
	}

	st, err := store.Stats(ctx, time.Time{})
	require.NoError(t, err)
	require.GreaterOrEqual(t, st.Accounts, int64(accounts))

	t.Run("leaderboard returns what was asked for", func(t *testing.T) {
		top, err := store.Leaderboard(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, top, 2)

		top, err = store.Leaderboard(ctx, 300)
		require.NoError(t, err)
		assert.Len(t, top, int(min(st.Accounts, 300)))
		assert.Greater(t, len(top), 100)
	})

	t.Run("history returns what was asked for", func(t *testing.T) {
		acc, err := store.GetAccount(ctx, base)
		require.NoError(t, err)
		require.NoError(t, store.WithAccount(ctx, base, func(tx repository.AccountTx) error {
			for i := 0; i < accounts; i++ {
				if err := tx.AddTransaction(ctx, &domain.Transaction{Type: domain.TxTap, Amount: 1, Balance: float64(i)}); err != nil {
					return err
				}
			}
			return nil
		}))

		hist, err := store.History(ctx, acc.ID, domain.TxTap, 110)
		require.NoError(t, err)
		assert.Len(t, hist, 110)

		hist, err = store.History(ctx, acc.ID, "", 200)
		require.NoError(t, err)
		assert.Len(t, hist, accounts)
	})

	t.Run("rank", func(t *testing.T) {
		rank, err := store.Rank(ctx, base+accounts-1)
		require.NoError(t, err)
		assert.Positive(t, rank)

		lower, err := store.Rank(ctx, base)
		require.NoError(t, err)
		assert.Greater(t, lower, rank)

		_, err = store.Rank(ctx, base+accounts+500)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
