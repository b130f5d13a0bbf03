package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapcoin/internal/domain"
)

var t0 = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestAccount() *domain.Account {
	return domain.NewAccount(domain.Profile{TelegramID: 42, Username: "alice"}, t0)
}

func TestPriceStrictlyIncreasing(t *testing.T) {
	for _, growth := range []float64{1.5, RegularGrowth, PremiumGrowth} {
		prev := Price(100, 1, growth)
		for lvl := 2; lvl < 20; lvl++ {
			p := Price(100, lvl, growth)
			require.Greater(t, p, prev)
			prev = p
		}
	}
}

func TestPurchaseRegularItem(t *testing.T) {
	r := DefaultRules()
	a := newTestAccount()
	a.Coins = 1600
	item := &domain.ShopItem{Key: "mining_rig", BasePrice: 500, BaseProfit: 50, Level: 1}

	assert.Equal(t, 500.0, r.ItemPrice(item))

	paid, err := r.Purchase(a, item, t0)
	require.NoError(t, err)
	assert.Equal(t, 500.0, paid)
	assert.Equal(t, 2, item.Level)
	assert.Equal(t, 1100.0, a.Coins)
	assert.Equal(t, 50.0, a.ProfitPerHour)
	assert.Equal(t, 1000.0, r.ItemPrice(item))

	_, err = r.Purchase(a, item, t0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, a.ProfitPerHour)
	assert.Equal(t, 100.0, a.Coins)
}

func TestPurchaseInsufficientFundsDoesNotMutate(t *testing.T) {
	r := DefaultRules()
	a := newTestAccount()
	a.Coins = 499
	item := &domain.ShopItem{BasePrice: 500, BaseProfit: 50, Level: 1}

	price, err := r.Purchase(a, item, t0)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 500.0, price)
	assert.Equal(t, 499.0, a.Coins)
	assert.Equal(t, 1, item.Level)
	assert.Zero(t, a.ProfitPerHour)
}

func TestPurchasePremiumDoublesClickPower(t *testing.T) {
	r := DefaultRules()
	a := newTestAccount()
	a.Coins = 20_000
	item := &domain.PremiumShopItem{Key: "golden_finger", BasePrice: 2000, Level: 1}

	_, err := r.PurchasePremium(a, item, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), a.ClickPower)
	assert.Equal(t, 10_000.0, r.PremiumPrice(item))

	_, err = r.PurchasePremium(a, item, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), a.ClickPower)
	assert.Equal(t, 8_000.0, a.Coins)
	assert.Zero(t, a.ProfitPerHour)
}

func TestPurchaseSettlesProfitAtOldRate(t *testing.T) {
	r := DefaultRules()
	a := newTestAccount()
	a.Coins = 500
	a.ProfitPerHour = 360
	item := &domain.ShopItem{BasePrice: 500, BaseProfit: 50, Level: 1}

	_, err := r.Purchase(a, item, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.InDelta(t, 360.0, a.PPHAccumulated, 1e-9)
	assert.Equal(t, 410.0, a.ProfitPerHour)
}
