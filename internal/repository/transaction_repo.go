package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"tapcoin/internal/domain"

	"github.com/Masterminds/squirrel"
)

func insertTransaction(ctx context.Context, q querier, tx *domain.Transaction) error {
	metaJSON, err := json.Marshal(tx.Meta)
	if err != nil || tx.Meta == nil {
		metaJSON = []byte("{}")
	}

	return q.QueryRow(ctx,
		`INSERT INTO transactions (account_id, type, amount, balance, meta)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		tx.AccountID, tx.Type, tx.Amount, tx.Balance, metaJSON,
	).Scan(&tx.ID, &tx.CreatedAt)
}

// History returns the newest ledger rows for an account, optionally
// filtered by type.
func (s *Store) History(ctx context.Context, accountID int64, txType string, limit int) ([]*domain.Transaction, error) {
	const op = "repository.History"

	if limit <= 0 {
		return nil, nil
	}

	q := squirrel.Select("id", "account_id", "type", "amount", "balance", "meta", "created_at").
		From("transactions").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)
	if txType != "" {
		q = q.Where(squirrel.Eq{"type": txType})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*domain.Transaction
	for rows.Next() {
		var (
			tx       domain.Transaction
			metaJSON []byte
		)
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Type, &tx.Amount, &tx.Balance, &metaJSON, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &tx.Meta)
		}
		res = append(res, &tx)
	}
	return res, rows.Err()
}
