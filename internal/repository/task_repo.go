package repository

import (
	"context"
	"fmt"

	"tapcoin/internal/domain"

	"github.com/jackc/pgx/v5"
)

const (
	taskColumns   = `id, account_id, task_key, title, description, link, reward, progress, max_progress, completed, claimed, completed_at, claimed_at`
	trophyColumns = `id, account_id, trophy_key, name, requirement, reward, claimed, unlocked_at`
)

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(&t.ID, &t.AccountID, &t.Key, &t.Title, &t.Description, &t.Link, &t.Reward,
		&t.Progress, &t.MaxProgress, &t.Completed, &t.Claimed, &t.CompletedAt, &t.ClaimedAt); err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func scanTrophy(row pgx.Row) (*domain.Trophy, error) {
	var tr domain.Trophy
	if err := row.Scan(&tr.ID, &tr.AccountID, &tr.Key, &tr.Name, &tr.Requirement, &tr.Reward, &tr.Claimed, &tr.UnlockedAt); err != nil {
		return nil, mapErr(err)
	}
	return &tr, nil
}

// ListTasks returns the account's tasks in catalog order.
func (s *Store) ListTasks(ctx context.Context, accountID int64) ([]*domain.Task, error) {
	const op = "repository.ListTasks"

	rows, err := s.db.Query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE account_id = $1 ORDER BY id`, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// ListTrophies returns the account's trophies ordered by requirement.
func (s *Store) ListTrophies(ctx context.Context, accountID int64) ([]*domain.Trophy, error) {
	const op = "repository.ListTrophies"

	rows, err := s.db.Query(ctx, `SELECT `+trophyColumns+` FROM trophies WHERE account_id = $1 ORDER BY requirement`, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*domain.Trophy
	for rows.Next() {
		tr, err := scanTrophy(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, tr)
	}
	return res, rows.Err()
}
