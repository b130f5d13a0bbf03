package domain

import "time"

// Account is a player's persistent game record keyed by Telegram id.
type Account struct {
	ID                int64      `db:"id" json:"id"`
	TelegramID        int64      `db:"telegram_id" json:"telegram_id"`
	Username          string     `db:"username" json:"username"`
	FirstName         string     `db:"first_name" json:"first_name"`
	Coins             float64    `db:"coins" json:"coins"`
	Level             int        `db:"level" json:"level"`
	Exp               int        `db:"exp" json:"exp"`
	ClickPower        int64      `db:"click_power" json:"click_power"`
	Energy            float64    `db:"energy" json:"energy"`
	MaxEnergy         float64    `db:"max_energy" json:"max_energy"`
	EnergyUpdatedAt   time.Time  `db:"energy_updated_at" json:"energy_updated_at"`
	ProfitPerHour     float64    `db:"profit_per_hour" json:"profit_per_hour"`
	PPHAccumulated    float64    `db:"pph_accumulated" json:"pph_accumulated"`
	ProfitUpdatedAt   time.Time  `db:"profit_updated_at" json:"profit_updated_at"`
	Multiplier        int        `db:"multiplier" json:"multiplier"`
	MultiplierEndTime *time.Time `db:"multiplier_end_time" json:"multiplier_end_time,omitempty"`
	BoosterCooldown   *time.Time `db:"booster_cooldown" json:"booster_cooldown,omitempty"`
	SelectedCoinImage string     `db:"selected_coin_image" json:"selected_coin_image"`
	ReferralCode      string     `db:"referral_code" json:"referral_code"`
	ReferredBy        *int64     `db:"referred_by" json:"referred_by,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`

	DailyReward DailyReward `json:"daily_reward"`
}

// Profile is the Telegram identity an account is created from.
type Profile struct {
	TelegramID int64  `json:"id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
}

// Account defaults for a freshly registered player.
const (
	DefaultLevel      = 1
	DefaultClickPower = 1
	DefaultMaxEnergy  = 1000
	DefaultMultiplier = 1
	DefaultCoinImage  = "default"
)

// NewAccount returns an account with first-contact defaults.
func NewAccount(p Profile, now time.Time) *Account {
	return &Account{
		TelegramID:        p.TelegramID,
		Username:          p.Username,
		FirstName:         p.FirstName,
		Level:             DefaultLevel,
		ClickPower:        DefaultClickPower,
		Energy:            DefaultMaxEnergy,
		MaxEnergy:         DefaultMaxEnergy,
		EnergyUpdatedAt:   now,
		ProfitUpdatedAt:   now,
		Multiplier:        DefaultMultiplier,
		SelectedCoinImage: DefaultCoinImage,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// DisplayName prefers @username, falling back to the first name.
func (a *Account) DisplayName() string {
	if a.Username != "" {
		return "@" + a.Username
	}
	if a.FirstName != "" {
		return a.FirstName
	}
	return "player"
}
