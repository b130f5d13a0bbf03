package domain

import "time"

// Referral links an inviting account to the account it brought in.
type Referral struct {
	ID           int64     `json:"id"`
	ReferrerID   int64     `json:"referrer_id"`
	ReferredID   int64     `json:"referred_id"`
	ReferredName string    `json:"referred_name,omitempty"`
	Bonus        float64   `json:"bonus"`
	CreatedAt    time.Time `json:"created_at"`
}

type ReferralStats struct {
	Code           string     `json:"code"`
	TotalReferrals int        `json:"total_referrals"`
	TotalEarned    float64    `json:"total_earned"`
	Referrals      []Referral `json:"referrals"`
}

// LeaderboardEntry is one row of the coins leaderboard.
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	TelegramID int64   `json:"telegram_id"`
	Name       string  `json:"name"`
	Coins      float64 `json:"coins"`
	Level      int     `json:"level"`
}
