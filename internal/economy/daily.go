package economy

import (
	"time"

	"tapcoin/internal/domain"
)

// DefaultDailyRewards returns the 31-slot reward table indexed by
// day % len.
func DefaultDailyRewards() []float64 {
	return []float64{
		100, 250, 300, 400, 500, 550, 600, 700, 800, 1_000,
		1_500, 2_000, 2_500, 3_000, 5_000, 7_500, 10_000, 15_000, 20_000, 25_000,
		35_000, 50_000, 75_000, 100_000, 150_000, 250_000, 400_000, 600_000, 900_000, 1_250_000,
		2_000_000,
	}
}

// DailyReward returns the payout for a cycle day.
func (r Rules) DailyReward(day int) float64 {
	if len(r.DailyRewards) == 0 {
		return 0
	}
	idx := day % len(r.DailyRewards)
	if idx < 0 {
		idx += len(r.DailyRewards)
	}
	return r.DailyRewards[idx]
}

// ClaimDaily applies one daily reward claim:
//   - a completed cycle is terminal until ResetDaily;
//   - a second claim on the same calendar day is rejected;
//   - a claim exactly one day after the last continues the streak,
//     anything else restarts it at day 1.
//
// The cycle completes when a continued streak wraps from the last day back
// to day 1; that claim is still paid.
func (r Rules) ClaimDaily(a *domain.Account, now time.Time) (float64, error) {
	d := &a.DailyReward
	if d.Completed {
		return 0, ErrCycleComplete
	}

	continuing := false
	if d.LastClaimed != nil {
		gap := r.calendarDays(*d.LastClaimed, now)
		if gap <= 0 {
			return 0, ErrAlreadyClaimedToday
		}
		continuing = gap == 1
	}

	cycle := r.cycleDays()

	wrapped := false
	if continuing {
		prev := d.Day
		d.Streak++
		d.Day = (d.Day % cycle) + 1
		wrapped = prev == cycle
	} else {
		d.Streak = 1
		d.Day = 1
	}

	reward := r.DailyReward(d.Day)
	a.Coins += reward
	claimed := now
	d.LastClaimed = &claimed
	d.Completed = wrapped
	return reward, nil
}

// NextDailyDay returns the cycle day the next claim lands on: the
// following day while the streak is alive, otherwise day 1.
func (r Rules) NextDailyDay(a *domain.Account, now time.Time) int {
	d := a.DailyReward
	if d.LastClaimed == nil || d.Day < 1 {
		return 1
	}
	if gap := r.calendarDays(*d.LastClaimed, now); gap > 1 {
		return 1
	}
	return (d.Day % r.cycleDays()) + 1
}

func (r Rules) cycleDays() int {
	if r.DailyCycleDays <= 0 {
		return 30
	}
	return r.DailyCycleDays
}

// ResetDaily reopens a completed cycle.
func ResetDaily(a *domain.Account) {
	a.DailyReward.Completed = false
}

// ClaimedToday reports whether the daily reward was already taken on now's
// calendar day.
func (r Rules) ClaimedToday(a *domain.Account, now time.Time) bool {
	last := a.DailyReward.LastClaimed
	return last != nil && r.calendarDays(*last, now) <= 0
}

// calendarDays counts calendar-day boundaries between from and to in the
// configured location.
func (r Rules) calendarDays(from, to time.Time) int {
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	return int(civilDate(to.In(loc)).Sub(civilDate(from.In(loc))).Hours() / 24)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
