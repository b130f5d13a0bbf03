package domain

import "time"

// DailyReward tracks the daily login streak; 1:1 with Account.
type DailyReward struct {
	LastClaimed *time.Time `db:"daily_last_claimed" json:"last_claimed,omitempty"`
	Streak      int        `db:"daily_streak" json:"streak"`
	Day         int        `db:"daily_day" json:"day"`
	Completed   bool       `db:"daily_completed" json:"completed"`
}
