package repository

import (
	"context"
	"fmt"

	"tapcoin/internal/catalog"
	"tapcoin/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `id, telegram_id, username, first_name, coins, level, exp, click_power,
	energy, max_energy, energy_updated_at, profit_per_hour, pph_accumulated, profit_updated_at,
	multiplier, multiplier_end_time, booster_cooldown, selected_coin_image, referral_code, referred_by,
	daily_last_claimed, daily_streak, daily_day, daily_completed, created_at, updated_at`

// Store is the Postgres implementation of the game storage.
type Store struct {
	db *pgxpool.Pool
}

// New wraps an open pool. Close releases it.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID, &a.TelegramID, &a.Username, &a.FirstName, &a.Coins, &a.Level, &a.Exp, &a.ClickPower,
		&a.Energy, &a.MaxEnergy, &a.EnergyUpdatedAt, &a.ProfitPerHour, &a.PPHAccumulated, &a.ProfitUpdatedAt,
		&a.Multiplier, &a.MultiplierEndTime, &a.BoosterCooldown, &a.SelectedCoinImage, &a.ReferralCode, &a.ReferredBy,
		&a.DailyReward.LastClaimed, &a.DailyReward.Streak, &a.DailyReward.Day, &a.DailyReward.Completed,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

// GetAccount loads an account by Telegram id without locking it.
func (s *Store) GetAccount(ctx context.Context, telegramID int64) (*domain.Account, error) {
	const op = "repository.GetAccount"

	a, err := scanAccount(s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE telegram_id = $1`, telegramID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// GetAccountByReferralCode resolves an invite code to its owner.
func (s *Store) GetAccountByReferralCode(ctx context.Context, code string) (*domain.Account, error) {
	const op = "repository.GetAccountByReferralCode"

	a, err := scanAccount(s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE referral_code = $1`, code))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// CreateAccount inserts a with its seeded sub-entities in one transaction.
// If the Telegram id is already registered, a is replaced by the stored
// account and created is false.
func (s *Store) CreateAccount(ctx context.Context, a *domain.Account, seed catalog.Seed) (bool, error) {
	const op = "repository.CreateAccount"

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx,
		`INSERT INTO accounts (telegram_id, username, first_name, coins, level, exp, click_power,
			energy, max_energy, energy_updated_at, profit_per_hour, pph_accumulated, profit_updated_at,
			multiplier, selected_coin_image, referral_code, referred_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		 ON CONFLICT (telegram_id) DO NOTHING
		 RETURNING id`,
		a.TelegramID, a.Username, a.FirstName, a.Coins, a.Level, a.Exp, a.ClickPower,
		a.Energy, a.MaxEnergy, a.EnergyUpdatedAt, a.ProfitPerHour, a.PPHAccumulated, a.ProfitUpdatedAt,
		a.Multiplier, a.SelectedCoinImage, a.ReferralCode, a.ReferredBy, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		if mapErr(err) == ErrNotFound {
			existing, getErr := scanAccount(tx.QueryRow(ctx,
				`SELECT `+accountColumns+` FROM accounts WHERE telegram_id = $1`, a.TelegramID))
			if getErr != nil {
				return false, fmt.Errorf("%s: %w", op, getErr)
			}
			*a = *existing
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	if err := seedAccount(ctx, tx, a.ID, seed); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

func seedAccount(ctx context.Context, q querier, accountID int64, seed catalog.Seed) error {
	for _, it := range seed.ShopItems {
		if _, err := q.Exec(ctx,
			`INSERT INTO shop_items (account_id, item_key, name, image, base_price, base_profit, level)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			accountID, it.Key, it.Name, it.Image, it.BasePrice, it.BaseProfit, it.Level,
		); err != nil {
			return err
		}
	}
	for _, it := range seed.PremiumItems {
		if _, err := q.Exec(ctx,
			`INSERT INTO premium_shop_items (account_id, item_key, name, image, base_price, effect, level)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			accountID, it.Key, it.Name, it.Image, it.BasePrice, it.Effect, it.Level,
		); err != nil {
			return err
		}
	}
	for _, t := range seed.Tasks {
		if _, err := q.Exec(ctx,
			`INSERT INTO tasks (account_id, task_key, title, description, link, reward, progress, max_progress)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			accountID, t.Key, t.Title, t.Description, t.Link, t.Reward, t.Progress, t.MaxProgress,
		); err != nil {
			return err
		}
	}
	for _, tr := range seed.Trophies {
		if _, err := q.Exec(ctx,
			`INSERT INTO trophies (account_id, trophy_key, name, requirement, reward)
			 VALUES ($1, $2, $3, $4, $5)`,
			accountID, tr.Key, tr.Name, tr.Requirement, tr.Reward,
		); err != nil {
			return err
		}
	}
	return nil
}

// WithAccount runs fn inside a transaction holding the account row lock.
// Concurrent calls for the same account serialize on SELECT ... FOR UPDATE.
// Any error from fn rolls the transaction back and is returned as is.
func (s *Store) WithAccount(ctx context.Context, telegramID int64, fn func(AccountTx) error) error {
	const op = "repository.WithAccount"

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := scanAccount(tx.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE telegram_id = $1 FOR UPDATE`, telegramID))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := fn(&accountTx{tx: tx, account: a}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
