package integration

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"tapcoin/internal/db"
	"tapcoin/internal/domain"
	"tapcoin/internal/economy"
	"tapcoin/internal/repository"
	"tapcoin/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applyMigrations(t *testing.T, dsn string) {
	t.Helper()
	migDir := filepath.Join("..", "migrations")
	entries, err := os.ReadDir(migDir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	pool, err := db.Connect(context.Background(), dsn)
	require.NoError(t, err)
	defer pool.Close()

	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(migDir, name))
		require.NoError(t, err)
		_, err = pool.Exec(context.Background(), string(b))
		require.NoError(t, err, "apply migration %s", name)
	}
}

func openStore(t *testing.T) *repository.Store {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := db.Connect(context.Background(), dsn)
	require.NoError(t, err)
	store := repository.New(pool)
	t.Cleanup(store.Close)

	applyMigrations(t, dsn)
	return store
}

// uniqueID keeps reruns against one database from colliding.
func uniqueID(offset int64) int64 {
	return time.Now().UnixNano()/1000%1_000_000_000_000 + offset
}

func TestPostgresRegisterAndReferral(t *testing.T) {
	store := openStore(t)
	svc := service.NewEconomyService(store, economy.DefaultRules(), nil)
	ctx := context.Background()

	inviterID, newcomerID := uniqueID(0), uniqueID(1)

	inviter, created, err := svc.Register(ctx, domain.Profile{TelegramID: inviterID, Username: "inviter"}, "")
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := svc.Register(ctx, domain.Profile{TelegramID: inviterID}, "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, inviter.ID, again.ID)

	newcomer, created, err := svc.Register(ctx, domain.Profile{TelegramID: newcomerID, Username: "newcomer"}, inviter.ReferralCode)
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, 5000.0, newcomer.Coins)
	require.NotNil(t, newcomer.ReferredBy)
	assert.Equal(t, inviter.ID, *newcomer.ReferredBy)

	stats, err := svc.ReferralStats(ctx, inviterID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalReferrals)
	assert.Equal(t, "newcomer", stats.Referrals[0].ReferredName)

	shop, err := svc.Shop(ctx, inviterID)
	require.NoError(t, err)
	assert.NotEmpty(t, shop.Items)
	assert.NotEmpty(t, shop.Premium)
}

func TestPostgresConcurrentPurchasesSerialize(t *testing.T) {
	store := openStore(t)
	svc := service.NewEconomyService(store, economy.DefaultRules(), nil)
	ctx := context.Background()
	tgID := uniqueID(10)

	_, _, err := svc.Register(ctx, domain.Profile{TelegramID: tgID}, "")
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		_, err := svc.Tap(ctx, tgID, 100)
		require.NoError(t, err)
	}

	shop, err := svc.Shop(ctx, tgID)
	require.NoError(t, err)
	item := shop.Items[0]
	require.Equal(t, 500.0, item.Price)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, poor int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(ctx, tgID, item.ID, false)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, economy.ErrInsufficientFunds):
				poor++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, poor)

	view, err := svc.State(ctx, tgID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, view.Coins)
	assert.Equal(t, 50.0, view.ProfitPerHour)

	hist, err := svc.History(ctx, tgID, domain.TxPurchase, 10)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, -500.0, hist[0].Amount)
}

func TestPostgresDailyAndLeaderboard(t *testing.T) {
	store := openStore(t)
	svc := service.NewEconomyService(store, economy.DefaultRules(), nil)
	ctx := context.Background()
	tgID := uniqueID(20)

	_, _, err := svc.Register(ctx, domain.Profile{TelegramID: tgID}, "")
	require.NoError(t, err)

	claim, err := svc.ClaimDailyReward(ctx, tgID)
	require.NoError(t, err)
	assert.Equal(t, 1, claim.Day)

	_, err = svc.ClaimDailyReward(ctx, tgID)
	assert.ErrorIs(t, err, economy.ErrAlreadyClaimedToday)

	rank, err := svc.Rank(ctx, tgID)
	require.NoError(t, err)
	assert.Positive(t, rank)

	_, err = svc.Tap(ctx, uniqueID(999_999), 1)
	assert.ErrorIs(t, err, service.ErrAccountNotFound)
}

func signedInitData(tgID int64, botToken string) string {
	v := url.Values{}
	v.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	v.Set("user", fmt.Sprintf(`{"id":%d,"username":"e2e%d"}`, tgID, tgID))
	v.Set("hash", service.SignInitData(v, botToken))
	return v.Encode()
}
