package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tapcoin/internal/catalog"
	"tapcoin/internal/domain"
	"tapcoin/internal/economy"
	"tapcoin/internal/repository"
	"tapcoin/internal/repository/memstore"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) ReferralJoined(ctx context.Context, referrer int64, newcomer string, bonus float64) {
	m.Called(referrer, newcomer, bonus)
}

func (m *mockNotifier) DailyCycleCompleted(ctx context.Context, telegramID int64) {
	m.Called(telegramID)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestService(t *testing.T, n Notifier) (*EconomyService, *memstore.Store, *testClock) {
	t.Helper()
	store := memstore.New()
	clock := &testClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	svc := NewEconomyService(store, economy.DefaultRules(), n)
	svc.Now = clock.Now
	return svc, store, clock
}

func register(t *testing.T, svc *EconomyService, tgID int64) *domain.Account {
	t.Helper()
	acc, created, err := svc.Register(context.Background(), domain.Profile{TelegramID: tgID, Username: "user"}, "")
	require.NoError(t, err)
	require.True(t, created)
	return acc
}

func TestRegisterIsIdempotent(t *testing.T) {
	svc, store, _ := newTestService(t, nil)
	ctx := context.Background()

	acc := register(t, svc, 1)
	assert.Zero(t, acc.Coins)
	assert.Equal(t, 1, acc.Level)
	assert.Equal(t, float64(domain.DefaultMaxEnergy), acc.Energy)
	assert.Equal(t, int64(1), acc.ClickPower)
	assert.NotEmpty(t, acc.ReferralCode)

	again, created, err := svc.Register(ctx, domain.Profile{TelegramID: 1}, "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, acc.ID, again.ID)

	items, premium, err := store.ListShop(ctx, acc.ID)
	require.NoError(t, err)
	assert.Len(t, items, len(catalog.Default().ShopItems))
	assert.Len(t, premium, len(catalog.Default().PremiumItems))

	_, _, err = svc.Register(ctx, domain.Profile{}, "")
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestRegisterWithReferral(t *testing.T) {
	n := &mockNotifier{}
	svc, _, _ := newTestService(t, n)
	ctx := context.Background()

	referrer := register(t, svc, 1)
	n.On("ReferralJoined", int64(1), "@bob", float64(DefaultReferralBonus)).Once()

	newcomer, created, err := svc.Register(ctx, domain.Profile{TelegramID: 2, Username: "bob"}, referrer.ReferralCode)
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, float64(DefaultReferralBonus), newcomer.Coins)
	require.NotNil(t, newcomer.ReferredBy)
	assert.Equal(t, referrer.ID, *newcomer.ReferredBy)

	stats, err := svc.ReferralStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalReferrals)
	assert.Equal(t, float64(DefaultReferralBonus), stats.TotalEarned)

	tasks, err := svc.Tasks(ctx, 1)
	require.NoError(t, err)
	for _, task := range tasks {
		if task.Key == catalog.TaskInviteFriends {
			assert.Equal(t, 1, task.Progress)
		}
	}
	n.AssertExpectations(t)
}

// failingSaveStore fails every SaveAccount made while failTG is locked.
type failingSaveStore struct {
	*memstore.Store
	failTG int64
}

func (s *failingSaveStore) WithAccount(ctx context.Context, telegramID int64, fn func(repository.AccountTx) error) error {
	return s.Store.WithAccount(ctx, telegramID, func(tx repository.AccountTx) error {
		if telegramID == s.failTG {
			tx = failingSaveTx{tx}
		}
		return fn(tx)
	})
}

type failingSaveTx struct{ repository.AccountTx }

func (failingSaveTx) SaveAccount(context.Context) error { return errors.New("connection reset") }

func TestReferralPaysBothSidesOrNeither(t *testing.T) {
	store := &failingSaveStore{Store: memstore.New()}
	svc := NewEconomyService(store, economy.DefaultRules(), nil)
	ctx := context.Background()

	referrer := register(t, svc, 1)
	store.failTG = 1

	newcomer, created, err := svc.Register(ctx, domain.Profile{TelegramID: 2, Username: "bob"}, referrer.ReferralCode)
	require.NoError(t, err)
	require.True(t, created)
	assert.Zero(t, newcomer.Coins)
	assert.Nil(t, newcomer.ReferredBy)

	stored, err := store.GetAccount(ctx, 2)
	require.NoError(t, err)
	assert.Zero(t, stored.Coins)
	hist, err := svc.History(ctx, 2, domain.TxReferralBonus, 10)
	require.NoError(t, err)
	assert.Empty(t, hist)

	stats, err := svc.ReferralStats(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalReferrals)
	assert.Zero(t, stats.TotalEarned)
}

func TestRegisterWithUnknownReferralStillCreates(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	acc, created, err := svc.Register(context.Background(), domain.Profile{TelegramID: 5}, "nope")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Zero(t, acc.Coins)
}

func TestTapContract(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	register(t, svc, 1)

	out, err := svc.Tap(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Taps)
	assert.Equal(t, 10.0, out.Coins)
	assert.Equal(t, float64(domain.DefaultMaxEnergy-10), out.Energy)
	assert.Equal(t, 10, out.Exp)
	assert.Equal(t, 1, out.Level)

	history, err := svc.History(ctx, 1, domain.TxTap, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 10.0, history[0].Amount)
	assert.Equal(t, 10.0, history[0].Balance)
}

func TestTapWithoutEnergy(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	register(t, svc, 1)

	for i := 0; i < 10; i++ {
		_, err := svc.Tap(ctx, 1, 100)
		require.NoError(t, err)
	}
	_, err := svc.Tap(ctx, 1, 1)
	assert.ErrorIs(t, err, economy.ErrNoEnergy)

	st, err := svc.State(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, st.Coins)
}

func TestEnergyRegeneratesBetweenRequests(t *testing.T) {
	svc, _, clock := newTestService(t, nil)
	ctx := context.Background()
	register(t, svc, 1)

	_, err := svc.Tap(ctx, 1, 100)
	require.NoError(t, err)
	clock.Advance(100 * time.Second)

	st, err := svc.State(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 910.0, st.Energy, 1e-9)
}

func TestPurchaseContract(t *testing.T) {
	svc, store, _ := newTestService(t, nil)
	ctx := context.Background()
	acc := register(t, svc, 1)

	items, premium, err := store.ListShop(ctx, acc.ID)
	require.NoError(t, err)
	rig := items[0]
	require.Equal(t, 500.0, rig.BasePrice)

	_, err = svc.Purchase(ctx, 1, rig.ID, false)
	assert.ErrorIs(t, err, economy.ErrInsufficientFunds)

	_, err = svc.Purchase(ctx, 1, 999_999, false)
	assert.ErrorIs(t, err, ErrItemNotFound)

	for i := 0; i < 6; i++ {
		_, err := svc.Tap(ctx, 1, 100)
		require.NoError(t, err)
	}

	out, err := svc.Purchase(ctx, 1, rig.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 500.0, out.Price)
	assert.Equal(t, 1000.0, out.NextPrice)
	assert.Equal(t, 100.0, out.Coins)
	assert.Equal(t, 50.0, out.ProfitPerHour)
	bought, ok := out.Item.(*domain.ShopItem)
	require.True(t, ok)
	assert.Equal(t, 2, bought.Level)

	_, err = svc.Purchase(ctx, 1, premium[0].ID, true)
	assert.ErrorIs(t, err, economy.ErrInsufficientFunds)

	shop, err := svc.Shop(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, shop.Items[0].Price)
	assert.False(t, shop.Items[0].Affordable)
}

func TestConcurrentPurchasesDoNotDoubleSpend(t *testing.T) {
	svc, store, _ := newTestService(t, nil)
	ctx := context.Background()
	acc := register(t, svc, 1)
	for i := 0; i < 6; i++ {
		_, err := svc.Tap(ctx, 1, 100)
		require.NoError(t, err)
	}
	items, _, err := store.ListShop(ctx, acc.ID)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		okCount  int
		rejected int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := svc.Purchase(ctx, 1, id, false)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				okCount++
			} else if errors.Is(err, economy.ErrInsufficientFunds) {
				rejected++
			}
		}(items[0].ID)
	}
	wg.Wait()

	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, rejected)
	st, err := svc.State(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, st.Coins)
}

func TestClaimProfitContract(t *testing.T) {
	svc, store, clock := newTestService(t, nil)
	ctx := context.Background()
	acc := register(t, svc, 1)

	_, err := svc.ClaimProfit(ctx, 1)
	assert.ErrorIs(t, err, economy.ErrNothingToClaim)

	for i := 0; i < 5; i++ {
		_, err := svc.Tap(ctx, 1, 100)
		require.NoError(t, err)
	}
	items, _, err := store.ListShop(ctx, acc.ID)
	require.NoError(t, err)
	_, err = svc.Purchase(ctx, 1, items[0].ID, false)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	out, err := svc.ClaimProfit(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, out.Claimed, 1e-9)
	assert.Zero(t, out.PPHAccumulated)
	assert.InDelta(t, 100.0, out.Coins, 1e-9)

	_, err = svc.ClaimProfit(ctx, 1)
	assert.ErrorIs(t, err, economy.ErrNothingToClaim)
}

func TestClaimDailyRewardContract(t *testing.T) {
	n := &mockNotifier{}
	svc, _, clock := newTestService(t, n)
	ctx := context.Background()
	register(t, svc, 1)

	out, err := svc.ClaimDailyReward(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Streak)
	assert.Equal(t, 1, out.Day)
	assert.Equal(t, 250.0, out.Coins)

	_, err = svc.ClaimDailyReward(ctx, 1)
	assert.ErrorIs(t, err, economy.ErrAlreadyClaimedToday)

	info, err := svc.Daily(ctx, 1)
	require.NoError(t, err)
	assert.True(t, info.ClaimedToday)
	assert.Equal(t, 300.0, info.NextReward)

	for day := 2; day <= 30; day++ {
		clock.Advance(24 * time.Hour)
		_, err := svc.ClaimDailyReward(ctx, 1)
		require.NoError(t, err)
	}

	n.On("DailyCycleCompleted", int64(1)).Once()
	clock.Advance(24 * time.Hour)
	out, err = svc.ClaimDailyReward(ctx, 1)
	require.NoError(t, err)
	assert.True(t, out.Completed)
	n.AssertExpectations(t)

	clock.Advance(24 * time.Hour)
	_, err = svc.ClaimDailyReward(ctx, 1)
	assert.ErrorIs(t, err, economy.ErrCycleComplete)

	require.NoError(t, svc.ResetDailyCycle(ctx, 1))
	_, err = svc.ClaimDailyReward(ctx, 1)
	require.NoError(t, err)

	tasks, err := svc.Tasks(ctx, 1)
	require.NoError(t, err)
	for _, task := range tasks {
		if task.Key == catalog.TaskDailyWeek {
			assert.True(t, task.Completed)
			assert.True(t, task.Claimable)
		}
	}
}

func TestTaskFlow(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	register(t, svc, 1)

	tasks, err := svc.Tasks(ctx, 1)
	require.NoError(t, err)
	var join, tap TaskView
	for _, task := range tasks {
		switch task.Key {
		case "join_channel":
			join = task
		case catalog.TaskTap1000:
			tap = task
		}
	}
	require.NotNil(t, join.Task)
	require.NotNil(t, tap.Task)
	assert.True(t, join.Manual)
	assert.False(t, tap.Manual)

	_, err = svc.ClaimTask(ctx, 1, join.ID)
	assert.ErrorIs(t, err, economy.ErrTaskNotCompleted)

	_, err = svc.AdvanceTask(ctx, 1, tap.ID, 1000)
	assert.ErrorIs(t, err, ErrTaskNotManual)

	task, err := svc.AdvanceTask(ctx, 1, join.ID, 1)
	require.NoError(t, err)
	assert.True(t, task.Completed)

	out, err := svc.ClaimTask(ctx, 1, join.ID)
	require.NoError(t, err)
	assert.Equal(t, join.Reward, out.Reward)

	_, err = svc.ClaimTask(ctx, 1, join.ID)
	assert.ErrorIs(t, err, economy.ErrAlreadyClaimed)

	_, err = svc.ClaimTask(ctx, 1, 999_999)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTrophyFlow(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	register(t, svc, 1)

	trophies, err := svc.Trophies(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, trophies)
	bronze := trophies[0]
	assert.False(t, bronze.Claimable)

	_, err = svc.ClaimTrophy(ctx, 1, bronze.ID)
	assert.ErrorIs(t, err, economy.ErrRequirementNotMet)
}

func TestBoosterAndCoinImage(t *testing.T) {
	svc, _, clock := newTestService(t, nil)
	ctx := context.Background()
	register(t, svc, 1)

	view, err := svc.ActivateBooster(ctx, 1)
	require.NoError(t, err)
	assert.True(t, view.BoosterActive)
	assert.Equal(t, int64(2), view.TapValue)

	_, err = svc.ActivateBooster(ctx, 1)
	assert.ErrorIs(t, err, economy.ErrBoosterCooldown)

	out, err := svc.Tap(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.Gained)

	clock.Advance(time.Minute)
	st, err := svc.State(ctx, 1)
	require.NoError(t, err)
	assert.False(t, st.BoosterActive)
	assert.NotNil(t, st.BoosterReadyAt)

	assert.ErrorIs(t, svc.SelectCoinImage(ctx, 1, "rainbow"), ErrInvalidCoinImage)
	require.NoError(t, svc.SelectCoinImage(ctx, 1, "gold"))
	st, err = svc.State(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "gold", st.SelectedCoinImage)
}

func TestUnknownAccount(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Tap(ctx, 404, 1)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	_, err = svc.State(ctx, 404)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

type brokenStore struct {
	*memstore.Store
	err error
}

func (b *brokenStore) WithAccount(context.Context, int64, func(repository.AccountTx) error) error {
	return b.err
}

func TestStorageFailuresAreOpaque(t *testing.T) {
	cause := errors.New("connection reset")
	svc := NewEconomyService(&brokenStore{Store: memstore.New(), err: cause}, economy.DefaultRules(), nil)

	_, err := svc.Tap(context.Background(), 1, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsUserError(err))

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "service.Tap", se.Op)
	assert.NotContains(t, err.Error(), "connection reset")
}

func TestLeaderboardAndStats(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	register(t, svc, 1)
	register(t, svc, 2)
	_, err := svc.Tap(ctx, 2, 5)
	require.NoError(t, err)

	top, err := svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].TelegramID)
	assert.Equal(t, 1, top[0].Rank)

	rank, err := svc.Rank(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Accounts)
	assert.Equal(t, 5.0, st.TotalCoins)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "no_energy", ErrorCode(economy.ErrNoEnergy))
	assert.Equal(t, "item_not_found", ErrorCode(fmt.Errorf("wrapped: %w", ErrItemNotFound)))
	assert.Equal(t, "storage_error", ErrorCode(&StorageError{Op: "x", Err: errors.New("boom")}))
	assert.Equal(t, "internal_error", ErrorCode(errors.New("other")))
}

func TestNotifiersFanOut(t *testing.T) {
	a, b := new(mockNotifier), new(mockNotifier)
	a.On("DailyCycleCompleted", int64(7)).Once()
	b.On("DailyCycleCompleted", int64(7)).Once()

	Notifiers{a, b}.DailyCycleCompleted(context.Background(), 7)

	a.AssertExpectations(t)
	b.AssertExpectations(t)
}

func TestClampLimit(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, DefaultLeaderboardSize},
		{-3, DefaultLeaderboardSize},
		{150, 150},
		{MaxLeaderboardSize + 1, MaxLeaderboardSize},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, clampLimit(tc.in, DefaultLeaderboardSize, MaxLeaderboardSize), "limit %d", tc.in)
	}
}
