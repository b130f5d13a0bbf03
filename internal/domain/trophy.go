package domain

import "time"

// Trophy unlocks once the account holds Requirement coins.
type Trophy struct {
	ID          int64      `db:"id" json:"id"`
	AccountID   int64      `db:"account_id" json:"-"`
	Key         string     `db:"trophy_key" json:"key"`
	Name        string     `db:"name" json:"name"`
	Requirement float64    `db:"requirement" json:"requirement"`
	Reward      float64    `db:"reward" json:"reward"`
	Claimed     bool       `db:"claimed" json:"claimed"`
	UnlockedAt  *time.Time `db:"unlocked_at" json:"unlocked_at,omitempty"`
}
