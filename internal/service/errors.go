package service

import (
	"context"
	"errors"

	"tapcoin/internal/economy"
	"tapcoin/internal/repository"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrTrophyNotFound   = errors.New("trophy not found")
	ErrTaskNotManual    = errors.New("task progress is tracked by the server")
	ErrInvalidCoinImage = errors.New("unknown coin image")
	ErrInvalidProfile   = errors.New("telegram profile has no id")

	// ErrStorage matches every StorageError via errors.Is.
	ErrStorage = errors.New("storage error")
)

// StorageError hides an underlying persistence failure from callers.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage error in " + e.Op
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// userErrors are rejections returned to callers unchanged.
var userErrors = []error{
	economy.ErrInsufficientFunds,
	economy.ErrNoEnergy,
	economy.ErrNothingToClaim,
	economy.ErrAlreadyClaimedToday,
	economy.ErrCycleComplete,
	economy.ErrBoosterCooldown,
	economy.ErrTaskNotCompleted,
	economy.ErrAlreadyClaimed,
	economy.ErrRequirementNotMet,
	ErrAccountNotFound,
	ErrItemNotFound,
	ErrTaskNotFound,
	ErrTrophyNotFound,
	ErrTaskNotManual,
	ErrInvalidCoinImage,
	ErrInvalidProfile,
	ErrInvalidAmount,
}

// classify keeps user-facing rejections and turns everything else into a
// StorageError. A missing account row surfaces as ErrAccountNotFound.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) {
		return err
	}
	for _, e := range userErrors {
		if errors.Is(err, e) {
			return e
		}
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsUserError reports whether err is a rejection meant for the player
// rather than a failure.
func IsUserError(err error) bool {
	for _, e := range userErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// errorCodes names each rejection for clients. Codes are stable API.
var errorCodes = map[error]string{
	economy.ErrInsufficientFunds:   "insufficient_funds",
	economy.ErrNoEnergy:            "no_energy",
	economy.ErrNothingToClaim:      "nothing_to_claim",
	economy.ErrAlreadyClaimedToday: "already_claimed_today",
	economy.ErrCycleComplete:       "cycle_complete",
	economy.ErrBoosterCooldown:     "booster_cooldown",
	economy.ErrTaskNotCompleted:    "task_not_completed",
	economy.ErrAlreadyClaimed:      "already_claimed",
	economy.ErrRequirementNotMet:   "requirement_not_met",
	ErrAccountNotFound:             "account_not_found",
	ErrItemNotFound:                "item_not_found",
	ErrTaskNotFound:                "task_not_found",
	ErrTrophyNotFound:              "trophy_not_found",
	ErrTaskNotManual:               "task_not_manual",
	ErrInvalidCoinImage:            "invalid_coin_image",
	ErrInvalidProfile:              "invalid_profile",
	ErrInvalidAmount:               "invalid_amount",
	ErrInvalidInitData:             "invalid_init_data",
	ErrStaleInitData:               "stale_init_data",
	ErrInvalidToken:                "invalid_token",
	ErrStorage:                     "storage_error",
}

// ErrorCode returns the client-facing code for err, or "internal_error".
func ErrorCode(err error) string {
	for e, code := range errorCodes {
		if errors.Is(err, e) {
			return code
		}
	}
	return "internal_error"
}
