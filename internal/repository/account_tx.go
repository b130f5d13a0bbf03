package repository

import (
	"context"
	"fmt"

	"tapcoin/internal/domain"

	"github.com/jackc/pgx/v5"
)

type accountTx struct {
	tx      pgx.Tx
	account *domain.Account
}

func (t *accountTx) Account() *domain.Account {
	return t.account
}

func (t *accountTx) SaveAccount(ctx context.Context) error {
	const op = "repository.SaveAccount"

	a := t.account
	err := t.tx.QueryRow(ctx,
		`UPDATE accounts SET
			username = $2, first_name = $3, coins = $4, level = $5, exp = $6, click_power = $7,
			energy = $8, max_energy = $9, energy_updated_at = $10,
			profit_per_hour = $11, pph_accumulated = $12, profit_updated_at = $13,
			multiplier = $14, multiplier_end_time = $15, booster_cooldown = $16,
			selected_coin_image = $17, referred_by = $18,
			daily_last_claimed = $19, daily_streak = $20, daily_day = $21, daily_completed = $22,
			updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		a.ID, a.Username, a.FirstName, a.Coins, a.Level, a.Exp, a.ClickPower,
		a.Energy, a.MaxEnergy, a.EnergyUpdatedAt,
		a.ProfitPerHour, a.PPHAccumulated, a.ProfitUpdatedAt,
		a.Multiplier, a.MultiplierEndTime, a.BoosterCooldown,
		a.SelectedCoinImage, a.ReferredBy,
		a.DailyReward.LastClaimed, a.DailyReward.Streak, a.DailyReward.Day, a.DailyReward.Completed,
	).Scan(&a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}
	return nil
}

func (t *accountTx) ShopItem(ctx context.Context, id int64) (*domain.ShopItem, error) {
	const op = "repository.ShopItem"

	it, err := scanShopItem(t.tx.QueryRow(ctx,
		`SELECT `+shopItemColumns+` FROM shop_items WHERE id = $1 AND account_id = $2 FOR UPDATE`,
		id, t.account.ID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}

func (t *accountTx) PremiumItem(ctx context.Context, id int64) (*domain.PremiumShopItem, error) {
	const op = "repository.PremiumItem"

	it, err := scanPremiumItem(t.tx.QueryRow(ctx,
		`SELECT `+premiumItemColumns+` FROM premium_shop_items WHERE id = $1 AND account_id = $2 FOR UPDATE`,
		id, t.account.ID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}

func (t *accountTx) SaveShopItem(ctx context.Context, item *domain.ShopItem) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE shop_items SET level = $1 WHERE id = $2 AND account_id = $3`,
		item.Level, item.ID, t.account.ID)
	if err != nil {
		return fmt.Errorf("repository.SaveShopItem: %w", err)
	}
	return nil
}

func (t *accountTx) SavePremiumItem(ctx context.Context, item *domain.PremiumShopItem) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE premium_shop_items SET level = $1 WHERE id = $2 AND account_id = $3`,
		item.Level, item.ID, t.account.ID)
	if err != nil {
		return fmt.Errorf("repository.SavePremiumItem: %w", err)
	}
	return nil
}

func (t *accountTx) Task(ctx context.Context, id int64) (*domain.Task, error) {
	const op = "repository.Task"

	task, err := scanTask(t.tx.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND account_id = $2 FOR UPDATE`,
		id, t.account.ID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return task, nil
}

func (t *accountTx) TaskByKey(ctx context.Context, key string) (*domain.Task, error) {
	const op = "repository.TaskByKey"

	task, err := scanTask(t.tx.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE task_key = $1 AND account_id = $2 FOR UPDATE`,
		key, t.account.ID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return task, nil
}

func (t *accountTx) SaveTask(ctx context.Context, task *domain.Task) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE tasks SET progress = $1, completed = $2, claimed = $3, completed_at = $4, claimed_at = $5
		 WHERE id = $6 AND account_id = $7`,
		task.Progress, task.Completed, task.Claimed, task.CompletedAt, task.ClaimedAt, task.ID, t.account.ID)
	if err != nil {
		return fmt.Errorf("repository.SaveTask: %w", err)
	}
	return nil
}

func (t *accountTx) Trophy(ctx context.Context, id int64) (*domain.Trophy, error) {
	const op = "repository.Trophy"

	tr, err := scanTrophy(t.tx.QueryRow(ctx,
		`SELECT `+trophyColumns+` FROM trophies WHERE id = $1 AND account_id = $2 FOR UPDATE`,
		id, t.account.ID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tr, nil
}

func (t *accountTx) SaveTrophy(ctx context.Context, tr *domain.Trophy) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE trophies SET claimed = $1, unlocked_at = $2 WHERE id = $3 AND account_id = $4`,
		tr.Claimed, tr.UnlockedAt, tr.ID, t.account.ID)
	if err != nil {
		return fmt.Errorf("repository.SaveTrophy: %w", err)
	}
	return nil
}

func (t *accountTx) AddTransaction(ctx context.Context, entry *domain.Transaction) error {
	entry.AccountID = t.account.ID
	if err := insertTransaction(ctx, t.tx, entry); err != nil {
		return fmt.Errorf("repository.AddTransaction: %w", err)
	}
	return nil
}

func (t *accountTx) AddReferral(ctx context.Context, ref *domain.Referral, credit *domain.Transaction) error {
	ref.ReferrerID = t.account.ID
	if err := insertReferral(ctx, t.tx, ref, credit); err != nil {
		return fmt.Errorf("repository.AddReferral: %w", mapErr(err))
	}
	return nil
}
