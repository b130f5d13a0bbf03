package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"tapcoin/internal/catalog"
	"tapcoin/internal/domain"
	"tapcoin/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func create(t *testing.T, s *Store, tgID int64, code string, coins float64) *domain.Account {
	t.Helper()
	a := domain.NewAccount(domain.Profile{TelegramID: tgID, Username: code}, time.Now())
	a.ReferralCode = code
	a.Coins = coins
	created, err := s.CreateAccount(context.Background(), a, catalog.Default())
	require.NoError(t, err)
	require.True(t, created)
	return a
}

func TestCreateAccountIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	first := create(t, s, 1, "code1", 0)

	again := domain.NewAccount(domain.Profile{TelegramID: 1}, time.Now())
	again.ReferralCode = "other"
	created, err := s.CreateAccount(ctx, again, catalog.Default())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "code1", again.ReferralCode)

	dup := domain.NewAccount(domain.Profile{TelegramID: 2}, time.Now())
	dup.ReferralCode = "code1"
	_, err = s.CreateAccount(ctx, dup, catalog.Default())
	assert.ErrorIs(t, err, repository.ErrConflict)

	items, premium, err := s.ListShop(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, items, len(catalog.Default().ShopItems))
	assert.Len(t, premium, len(catalog.Default().PremiumItems))
}

func TestWithAccountRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	a := create(t, s, 1, "code1", 100)
	boom := errors.New("boom")

	err := s.WithAccount(ctx, 1, func(tx repository.AccountTx) error {
		tx.Account().Coins = 0
		require.NoError(t, tx.SaveAccount(ctx))
		require.NoError(t, tx.AddTransaction(ctx, &domain.Transaction{Type: domain.TxTap, Amount: -100}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Coins)
	hist, err := s.History(ctx, a.ID, "", 10)
	require.NoError(t, err)
	assert.Empty(t, hist)

	require.NoError(t, s.WithAccount(ctx, 1, func(tx repository.AccountTx) error {
		tx.Account().Coins = 40
		require.NoError(t, tx.AddTransaction(ctx, &domain.Transaction{Type: domain.TxPurchase, Amount: -60, Balance: 40}))
		return tx.SaveAccount(ctx)
	}))
	got, err = s.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 40.0, got.Coins)
	hist, err = s.History(ctx, a.ID, domain.TxPurchase, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, a.ID, hist[0].AccountID)

	err = s.WithAccount(ctx, 404, func(repository.AccountTx) error { return nil })
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReturnedAccountsAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	create(t, s, 1, "code1", 10)

	got, err := s.GetAccount(ctx, 1)
	require.NoError(t, err)
	got.Coins = 1_000_000

	again, err := s.GetAccount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, again.Coins)
}

func TestReferralsOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	inviter := create(t, s, 1, "inv", 0)
	newcomer := create(t, s, 2, "new", 0)

	add := func() error {
		return s.WithAccount(ctx, 1, func(tx repository.AccountTx) error {
			credit := &domain.Transaction{Type: domain.TxReferralBonus, Amount: 5000}
			return tx.AddReferral(ctx, &domain.Referral{ReferredID: newcomer.ID, Bonus: 5000}, credit)
		})
	}
	require.NoError(t, add())
	assert.ErrorIs(t, add(), repository.ErrConflict)

	refs, err := s.Referrals(ctx, inviter.ID)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "new", refs[0].ReferredName)

	got, err := s.GetAccount(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got.ReferredBy)
	assert.Equal(t, inviter.ID, *got.ReferredBy)
	assert.Equal(t, 5000.0, got.Coins)

	hist, err := s.History(ctx, newcomer.ID, domain.TxReferralBonus, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 5000.0, hist[0].Balance)

	byCode, err := s.GetAccountByReferralCode(ctx, "inv")
	require.NoError(t, err)
	assert.Equal(t, int64(1), byCode.TelegramID)
}

func TestLeaderboardRankAndStats(t *testing.T) {
	s := New()
	ctx := context.Background()
	create(t, s, 1, "a", 50)
	create(t, s, 2, "b", 500)
	create(t, s, 3, "c", 50)

	top, err := s.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].TelegramID)
	assert.Equal(t, int64(1), top[1].TelegramID)
	assert.Equal(t, 2, top[1].Rank)

	rank, err := s.Rank(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	st, err := s.Stats(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.Accounts)
	assert.Equal(t, 600.0, st.TotalCoins)
}

func TestClosedStoreFailsPing(t *testing.T) {
	s := New()
	require.NoError(t, s.Ping(context.Background()))
	s.Close()
	assert.Error(t, s.Ping(context.Background()))
}
