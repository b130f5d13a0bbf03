package domain

import "time"

// Ledger entry types.
const (
	TxTap           = "tap"
	TxPurchase      = "purchase"
	TxPremium       = "premium_purchase"
	TxProfitClaim   = "profit_claim"
	TxDailyReward   = "daily_reward"
	TxTaskReward    = "task_reward"
	TxTrophyReward  = "trophy_reward"
	TxReferralBonus = "referral_bonus"
	TxAdminGrant    = "admin_grant"
)

// Transaction is one row of the coin ledger. Amount is signed.
type Transaction struct {
	ID        int64                  `db:"id" json:"id"`
	AccountID int64                  `db:"account_id" json:"account_id"`
	Type      string                 `db:"type" json:"type"`
	Amount    float64                `db:"amount" json:"amount"`
	Balance   float64                `db:"balance" json:"balance"`
	Meta      map[string]interface{} `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}
