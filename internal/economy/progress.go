package economy

import (
	"time"

	"tapcoin/internal/domain"
)

// AdvanceTask adds delta to a task's progress and marks it completed once
// it reaches MaxProgress. Completed tasks are left untouched. It reports
// whether the task changed.
func AdvanceTask(t *domain.Task, delta int, now time.Time) bool {
	if t.Completed || delta <= 0 {
		return false
	}
	t.Progress += delta
	if t.Progress >= t.MaxProgress {
		t.Progress = t.MaxProgress
		t.Completed = true
		done := now
		t.CompletedAt = &done
	}
	return true
}

// SetTaskProgress sets progress to an absolute value for counters the
// server tracks itself, such as streak length. Completed tasks keep their
// progress.
func SetTaskProgress(t *domain.Task, value int, now time.Time) bool {
	if t.Completed {
		return false
	}
	if value < 0 {
		value = 0
	}
	if value == t.Progress {
		return false
	}
	if value > t.Progress {
		return AdvanceTask(t, value-t.Progress, now)
	}
	t.Progress = value
	return true
}

// ClaimTask pays a completed task's reward exactly once.
func ClaimTask(a *domain.Account, t *domain.Task, now time.Time) (float64, error) {
	if !t.Completed {
		return 0, ErrTaskNotCompleted
	}
	if t.Claimed {
		return 0, ErrAlreadyClaimed
	}
	t.Claimed = true
	claimed := now
	t.ClaimedAt = &claimed
	a.Coins += t.Reward
	return t.Reward, nil
}

// ClaimTrophy pays a trophy once the balance meets its requirement.
func ClaimTrophy(a *domain.Account, tr *domain.Trophy, now time.Time) (float64, error) {
	if tr.Claimed {
		return 0, ErrAlreadyClaimed
	}
	if a.Coins < tr.Requirement {
		return 0, ErrRequirementNotMet
	}
	tr.Claimed = true
	unlocked := now
	tr.UnlockedAt = &unlocked
	a.Coins += tr.Reward
	return tr.Reward, nil
}
