package repository

import (
	"context"
	"fmt"

	"tapcoin/internal/domain"

	"github.com/jackc/pgx/v5"
)

const (
	shopItemColumns    = `id, account_id, item_key, name, image, base_price, base_profit, level`
	premiumItemColumns = `id, account_id, item_key, name, image, base_price, effect, level`
)

func scanShopItem(row pgx.Row) (*domain.ShopItem, error) {
	var it domain.ShopItem
	if err := row.Scan(&it.ID, &it.AccountID, &it.Key, &it.Name, &it.Image, &it.BasePrice, &it.BaseProfit, &it.Level); err != nil {
		return nil, mapErr(err)
	}
	return &it, nil
}

func scanPremiumItem(row pgx.Row) (*domain.PremiumShopItem, error) {
	var it domain.PremiumShopItem
	if err := row.Scan(&it.ID, &it.AccountID, &it.Key, &it.Name, &it.Image, &it.BasePrice, &it.Effect, &it.Level); err != nil {
		return nil, mapErr(err)
	}
	return &it, nil
}

// ListShop returns the account's regular and premium items.
func (s *Store) ListShop(ctx context.Context, accountID int64) ([]*domain.ShopItem, []*domain.PremiumShopItem, error) {
	const op = "repository.ListShop"

	rows, err := s.db.Query(ctx,
		`SELECT `+shopItemColumns+` FROM shop_items WHERE account_id = $1 ORDER BY base_price, id`, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	var items []*domain.ShopItem
	for rows.Next() {
		it, err := scanShopItem(rows)
		if err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err = s.db.Query(ctx,
		`SELECT `+premiumItemColumns+` FROM premium_shop_items WHERE account_id = $1 ORDER BY base_price, id`, accountID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var premium []*domain.PremiumShopItem
	for rows.Next() {
		it, err := scanPremiumItem(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		premium = append(premium, it)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, premium, nil
}
