package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"tapcoin/internal/domain"
)

// GenerateReferralCode returns a random 12 character invite code.
func GenerateReferralCode() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func insertReferral(ctx context.Context, q querier, ref *domain.Referral, credit *domain.Transaction) error {
	err := q.QueryRow(ctx,
		`INSERT INTO referrals (referrer_id, referred_id, bonus)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		ref.ReferrerID, ref.ReferredID, ref.Bonus,
	).Scan(&ref.ID, &ref.CreatedAt)
	if err != nil {
		return err
	}

	// the row lock taken here is released with the referrer's transaction
	err = q.QueryRow(ctx,
		`UPDATE accounts SET referred_by = $1, coins = coins + $3, updated_at = now()
		 WHERE id = $2 AND referred_by IS NULL
		 RETURNING coins`,
		ref.ReferrerID, ref.ReferredID, credit.Amount,
	).Scan(&credit.Balance)
	if err != nil {
		return err
	}

	credit.AccountID = ref.ReferredID
	return insertTransaction(ctx, q, credit)
}

// Referrals lists the accounts brought in by accountID, newest first.
func (s *Store) Referrals(ctx context.Context, accountID int64) ([]domain.Referral, error) {
	const op = "repository.Referrals"

	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.referrer_id, r.referred_id,
		        COALESCE(NULLIF(a.username, ''), a.first_name), r.bonus, r.created_at
		 FROM referrals r
		 JOIN accounts a ON a.id = r.referred_id
		 WHERE r.referrer_id = $1
		 ORDER BY r.created_at DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []domain.Referral
	for rows.Next() {
		var ref domain.Referral
		if err := rows.Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.ReferredName, &ref.Bonus, &ref.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, ref)
	}
	return res, rows.Err()
}
