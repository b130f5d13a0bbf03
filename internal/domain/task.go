package domain

import "time"

// Task is a one-time objective with a coin reward.
// Lifecycle: created -> completed once progress reaches max -> claimed.
type Task struct {
	ID          int64      `db:"id" json:"id"`
	AccountID   int64      `db:"account_id" json:"-"`
	Key         string     `db:"task_key" json:"key"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Link        string     `db:"link" json:"link,omitempty"`
	Reward      float64    `db:"reward" json:"reward"`
	Progress    int        `db:"progress" json:"progress"`
	MaxProgress int        `db:"max_progress" json:"max_progress"`
	Completed   bool       `db:"completed" json:"completed"`
	Claimed     bool       `db:"claimed" json:"claimed"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ClaimedAt   *time.Time `db:"claimed_at" json:"claimed_at,omitempty"`
}

// CanClaim reports whether the reward is ready and not yet taken.
func (t *Task) CanClaim() bool {
	return t.Completed && !t.Claimed
}

// Percent returns progress in percent (0-100).
func (t *Task) Percent() int {
	if t.MaxProgress <= 0 {
		return 100
	}
	p := (t.Progress * 100) / t.MaxProgress
	if p > 100 {
		return 100
	}
	return p
}
