package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapcoin/internal/domain"
)

func TestTaskLifecycle(t *testing.T) {
	a := newTestAccount()
	task := &domain.Task{Key: "invite_friends", Reward: 25_000, MaxProgress: 3}

	_, err := ClaimTask(a, task, t0)
	assert.ErrorIs(t, err, ErrTaskNotCompleted)

	assert.True(t, AdvanceTask(task, 2, t0))
	assert.False(t, task.Completed)
	assert.True(t, AdvanceTask(task, 5, t0))
	assert.True(t, task.Completed)
	assert.Equal(t, 3, task.Progress)
	assert.False(t, AdvanceTask(task, 1, t0))

	reward, err := ClaimTask(a, task, t0)
	require.NoError(t, err)
	assert.Equal(t, 25_000.0, reward)
	assert.Equal(t, 25_000.0, a.Coins)

	_, err = ClaimTask(a, task, t0)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Equal(t, 25_000.0, a.Coins)
}

func TestSetTaskProgress(t *testing.T) {
	task := &domain.Task{MaxProgress: 7}
	assert.True(t, SetTaskProgress(task, 3, t0))
	assert.False(t, SetTaskProgress(task, 3, t0))

	// a broken streak lowers progress
	assert.True(t, SetTaskProgress(task, 1, t0))
	assert.Equal(t, 1, task.Progress)

	assert.True(t, SetTaskProgress(task, 7, t0))
	assert.True(t, task.Completed)
	assert.False(t, SetTaskProgress(task, 1, t0))
	assert.Equal(t, 7, task.Progress)
}

func TestClaimTrophy(t *testing.T) {
	a := newTestAccount()
	tr := &domain.Trophy{Key: "bronze", Requirement: 10_000, Reward: 1_000}

	a.Coins = 9_999
	_, err := ClaimTrophy(a, tr, t0)
	assert.ErrorIs(t, err, ErrRequirementNotMet)

	a.Coins = 10_000
	reward, err := ClaimTrophy(a, tr, t0)
	require.NoError(t, err)
	assert.Equal(t, 1_000.0, reward)
	assert.Equal(t, 11_000.0, a.Coins)
	require.NotNil(t, tr.UnlockedAt)

	_, err = ClaimTrophy(a, tr, t0)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
}
