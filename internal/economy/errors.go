package economy

import "errors"

// Rejections returned by the economy rules. None of them mutate state.
var (
	ErrInsufficientFunds   = errors.New("not enough coins")
	ErrNoEnergy            = errors.New("no energy left")
	ErrNothingToClaim      = errors.New("nothing to claim")
	ErrAlreadyClaimedToday = errors.New("daily reward already claimed today")
	ErrCycleComplete       = errors.New("daily reward cycle complete")
	ErrBoosterCooldown     = errors.New("booster is cooling down")
	ErrTaskNotCompleted    = errors.New("task not completed")
	ErrAlreadyClaimed      = errors.New("reward already claimed")
	ErrRequirementNotMet   = errors.New("requirement not met")
	ErrInvalidThresholds   = errors.New("invalid level thresholds")
)
