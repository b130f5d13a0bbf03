package service

import (
	"time"

	"tapcoin/internal/domain"
	"tapcoin/internal/economy"
)

// AccountView is the settled account plus values derived from it. The
// client renders these and never computes balances itself.
type AccountView struct {
	*domain.Account

	CoinLevel              int        `json:"coin_level"`
	NextLevelCoins         float64    `json:"next_level_coins"`
	CoinsFormatted         string     `json:"coins_formatted"`
	ProfitPerHourFormatted string     `json:"profit_per_hour_formatted"`
	TapValue               int64      `json:"tap_value"`
	EnergyRegenPerSecond   float64    `json:"energy_regen_per_second"`
	BoosterActive          bool       `json:"booster_active"`
	BoosterReadyAt         *time.Time `json:"booster_ready_at,omitempty"`
	DailyClaimedToday      bool       `json:"daily_claimed_today"`
	ServerTime             time.Time  `json:"server_time"`
}

func newAccountView(r economy.Rules, a *domain.Account, now time.Time) *AccountView {
	lvl := r.CoinLevel(a)
	v := &AccountView{
		Account:                a,
		CoinLevel:              lvl,
		NextLevelCoins:         r.Curve.NextLevelRequirement(lvl),
		CoinsFormatted:         economy.FormatCompact(a.Coins),
		ProfitPerHourFormatted: economy.FormatCompact(a.ProfitPerHour),
		TapValue:               a.ClickPower * int64(a.Multiplier),
		EnergyRegenPerSecond:   r.EnergyRegenPerSecond,
		BoosterActive:          a.Multiplier > 1,
		DailyClaimedToday:      r.ClaimedToday(a, now),
		ServerTime:             now,
	}
	if a.BoosterCooldown != nil && now.Before(*a.BoosterCooldown) {
		v.BoosterReadyAt = a.BoosterCooldown
	}
	return v
}

// TapOutcome is the result of a tap batch.
type TapOutcome struct {
	Taps   int     `json:"taps"`
	Gained float64 `json:"gained"`
	Coins  float64 `json:"coins"`
	Energy float64 `json:"energy"`
	Exp    int     `json:"exp"`
	Level  int     `json:"level"`
}

// PurchaseOutcome is the result of buying one item level. Item holds a
// *domain.ShopItem or a *domain.PremiumShopItem.
type PurchaseOutcome struct {
	Coins         float64 `json:"coins"`
	Price         float64 `json:"price"`
	NextPrice     float64 `json:"next_price"`
	Premium       bool    `json:"premium"`
	Item          any     `json:"item"`
	ProfitPerHour float64 `json:"profit_per_hour"`
	ClickPower    int64   `json:"click_power"`
}

// ProfitClaim is the result of collecting passive income.
type ProfitClaim struct {
	Claimed        float64 `json:"claimed"`
	Coins          float64 `json:"coins"`
	PPHAccumulated float64 `json:"pph_accumulated"`
}

// DailyClaim is the result of a daily reward claim.
type DailyClaim struct {
	Reward    float64 `json:"reward"`
	Coins     float64 `json:"coins"`
	Streak    int     `json:"streak"`
	Day       int     `json:"day"`
	Completed bool    `json:"completed"`
}

// DailyInfo describes the reward table and the player's position in it.
type DailyInfo struct {
	Rewards      []float64          `json:"rewards"`
	State        domain.DailyReward `json:"state"`
	ClaimedToday bool               `json:"claimed_today"`
	NextReward   float64            `json:"next_reward"`
}

// RewardClaim is the result of claiming a task or trophy.
type RewardClaim struct {
	Reward float64 `json:"reward"`
	Coins  float64 `json:"coins"`
}

type ShopItemView struct {
	*domain.ShopItem
	Price          float64 `json:"price"`
	PriceFormatted string  `json:"price_formatted"`
	Affordable     bool    `json:"affordable"`
}

type PremiumItemView struct {
	*domain.PremiumShopItem
	Price          float64 `json:"price"`
	PriceFormatted string  `json:"price_formatted"`
	Affordable     bool    `json:"affordable"`
}

// ShopView lists every item with its next-level price.
type ShopView struct {
	Coins   float64           `json:"coins"`
	Items   []ShopItemView    `json:"items"`
	Premium []PremiumItemView `json:"premium"`
}

type TaskView struct {
	*domain.Task
	Percent   int  `json:"percent"`
	Manual    bool `json:"manual"`
	Claimable bool `json:"claimable"`
}

type TrophyView struct {
	*domain.Trophy
	Claimable bool `json:"claimable"`
}
