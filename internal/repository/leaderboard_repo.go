package repository

import (
	"context"
	"fmt"
	"time"

	"tapcoin/internal/domain"

	"github.com/Masterminds/squirrel"
)

// Leaderboard returns the richest accounts.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	const op = "repository.Leaderboard"

	if limit <= 0 {
		return nil, nil
	}

	sql, args, err := squirrel.Select("telegram_id", "username", "first_name", "coins", "level").
		From("accounts").
		OrderBy("coins DESC", "id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []domain.LeaderboardEntry
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.TelegramID, &a.Username, &a.FirstName, &a.Coins, &a.Level); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, domain.LeaderboardEntry{
			Rank:       len(res) + 1,
			TelegramID: a.TelegramID,
			Name:       a.DisplayName(),
			Coins:      a.Coins,
			Level:      a.Level,
		})
	}
	return res, rows.Err()
}

// Rank returns the 1-based position of an account by coins, or
// ErrNotFound for an unknown telegram id.
func (s *Store) Rank(ctx context.Context, telegramID int64) (int, error) {
	const op = "repository.Rank"

	sql, args, err := squirrel.Select("(SELECT COUNT(*) FROM accounts a WHERE a.coins > me.coins) + 1").
		From("accounts me").
		Where(squirrel.Eq{"me.telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var rank int
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&rank); err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return rank, nil
}

// Stats aggregates global counters for operators.
func (s *Store) Stats(ctx context.Context, since time.Time) (domain.Stats, error) {
	const op = "repository.Stats"

	var st domain.Stats
	sql, args, err := squirrel.Select(
		"COUNT(*)",
		"COALESCE(SUM(coins), 0)",
	).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE updated_at >= ?)", since)).
		From("accounts").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return st, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&st.Accounts, &st.TotalCoins, &st.ActiveToday); err != nil {
		return st, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM referrals`).Scan(&st.TotalReferred); err != nil {
		return st, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}
