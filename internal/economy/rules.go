// Package economy implements the game's coin economy: tapping, energy,
// passive profit, shop pricing, daily rewards and level progression.
//
// Everything here is pure: functions mutate the account values they are
// given and never touch storage. Callers are expected to run them inside a
// per-account transaction.
package economy

import (
	"math"
	"time"

	"tapcoin/internal/domain"
)

// Rules holds the tunable constants of the economy.
type Rules struct {
	Curve LevelCurve

	RegularGrowth float64
	PremiumGrowth float64

	EnergyRegenPerSecond float64
	EnergyPerTap         float64
	ExpPerLevel          int
	MaxTapsPerRequest    int

	DailyRewards   []float64
	DailyCycleDays int
	Location       *time.Location

	BoosterMultiplier int
	BoosterDuration   time.Duration
	BoosterCooldown   time.Duration
}

// DefaultRules returns the production balance.
func DefaultRules() Rules {
	return Rules{
		Curve:                MustLevelCurve(DefaultThresholds),
		RegularGrowth:        RegularGrowth,
		PremiumGrowth:        PremiumGrowth,
		EnergyRegenPerSecond: 0.1,
		EnergyPerTap:         1,
		ExpPerLevel:          100,
		MaxTapsPerRequest:    100,
		DailyRewards:         DefaultDailyRewards(),
		DailyCycleDays:       30,
		Location:             time.UTC,
		BoosterMultiplier:    2,
		BoosterDuration:      30 * time.Second,
		BoosterCooldown:      time.Hour,
	}
}

// Settle brings time-driven fields up to now: energy regeneration, accrued
// profit and booster expiry. It is idempotent for a fixed now.
func (r Rules) Settle(a *domain.Account, now time.Time) {
	if now.After(a.EnergyUpdatedAt) {
		a.Energy = RegenEnergy(a.Energy, a.MaxEnergy, r.EnergyRegenPerSecond, now.Sub(a.EnergyUpdatedAt))
		a.EnergyUpdatedAt = now
	}
	a.Energy = math.Max(0, math.Min(a.Energy, a.MaxEnergy))

	if now.After(a.ProfitUpdatedAt) {
		a.PPHAccumulated += AccrueProfit(a.ProfitPerHour, now.Sub(a.ProfitUpdatedAt))
		a.ProfitUpdatedAt = now
	}

	if a.Multiplier < 1 {
		a.Multiplier = 1
	}
	if a.Multiplier > 1 && (a.MultiplierEndTime == nil || !now.Before(*a.MultiplierEndTime)) {
		a.Multiplier = 1
	}
}

// TapResult describes the outcome of a tap batch.
type TapResult struct {
	Taps   int     `json:"taps"`
	Gained float64 `json:"gained"`
}

// Tap spends one energy for ClickPower*Multiplier coins and one exp.
func (r Rules) Tap(a *domain.Account, now time.Time) (TapResult, error) {
	return r.TapN(a, 1, now)
}

// TapN applies up to n taps, stopping early when energy runs out. It fails
// with ErrNoEnergy only if not a single tap could be applied.
func (r Rules) TapN(a *domain.Account, n int, now time.Time) (TapResult, error) {
	if n < 1 {
		n = 1
	}
	if r.MaxTapsPerRequest > 0 && n > r.MaxTapsPerRequest {
		n = r.MaxTapsPerRequest
	}
	r.Settle(a, now)

	var res TapResult
	for i := 0; i < n && a.Energy > 0; i++ {
		res.Gained += r.tapOnce(a)
		res.Taps++
	}
	if res.Taps == 0 {
		return res, ErrNoEnergy
	}
	return res, nil
}

func (r Rules) tapOnce(a *domain.Account) float64 {
	a.Energy = math.Max(a.Energy-r.energyPerTap(), 0)
	gain := float64(a.ClickPower * int64(a.Multiplier))
	a.Coins += gain
	a.Exp++
	if r.ExpPerLevel > 0 && a.Exp >= r.ExpPerLevel {
		a.Exp = 0
		a.Level++
	}
	return gain
}

func (r Rules) energyPerTap() float64 {
	if r.EnergyPerTap <= 0 {
		return 1
	}
	return r.EnergyPerTap
}

// ItemPrice is the cost of the next level of a regular shop item.
func (r Rules) ItemPrice(item *domain.ShopItem) float64 {
	return Price(item.BasePrice, item.Level, r.RegularGrowth)
}

// PremiumPrice is the cost of the next level of a premium item.
func (r Rules) PremiumPrice(item *domain.PremiumShopItem) float64 {
	return Price(item.BasePrice, item.Level, r.PremiumGrowth)
}

// Purchase buys one level of a regular item. Each level adds BaseProfit to
// the account's profit per hour. Profit earned at the old rate is settled
// first.
func (r Rules) Purchase(a *domain.Account, item *domain.ShopItem, now time.Time) (float64, error) {
	r.Settle(a, now)
	price := r.ItemPrice(item)
	if a.Coins < price {
		return price, ErrInsufficientFunds
	}
	a.Coins -= price
	item.Level++
	a.ProfitPerHour += item.BaseProfit
	return price, nil
}

// PurchasePremium buys one level of a premium item. Every purchase doubles
// click power regardless of the item.
func (r Rules) PurchasePremium(a *domain.Account, item *domain.PremiumShopItem, now time.Time) (float64, error) {
	r.Settle(a, now)
	price := r.PremiumPrice(item)
	if a.Coins < price {
		return price, ErrInsufficientFunds
	}
	a.Coins -= price
	item.Level++
	a.ClickPower *= 2
	return price, nil
}

// ClaimProfit moves accumulated passive income into the balance.
func (r Rules) ClaimProfit(a *domain.Account, now time.Time) (float64, error) {
	r.Settle(a, now)
	if a.PPHAccumulated <= 0 {
		return 0, ErrNothingToClaim
	}
	amount := a.PPHAccumulated
	a.Coins += amount
	a.PPHAccumulated = 0
	return amount, nil
}

// ActivateBooster turns on the tap multiplier unless it is cooling down.
func (r Rules) ActivateBooster(a *domain.Account, now time.Time) error {
	r.Settle(a, now)
	if a.BoosterCooldown != nil && now.Before(*a.BoosterCooldown) {
		return ErrBoosterCooldown
	}
	end := now.Add(r.BoosterDuration)
	cooldown := end.Add(r.BoosterCooldown)
	a.Multiplier = r.BoosterMultiplier
	if a.Multiplier < 1 {
		a.Multiplier = 1
	}
	a.MultiplierEndTime = &end
	a.BoosterCooldown = &cooldown
	return nil
}

// CoinLevel is the Level Curve level for the account's balance.
func (r Rules) CoinLevel(a *domain.Account) int {
	return r.Curve.Level(a.Coins)
}
