// Package repository persists accounts and their sub-entities in Postgres.
package repository

import (
	"context"
	"errors"

	"tapcoin/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on unique constraint violations.
	ErrConflict = errors.New("already exists")
)

// AccountTx is a unit of work on one row-locked account. The account
// returned by Account is mutated in place and written back by SaveAccount.
type AccountTx interface {
	Account() *domain.Account

	ShopItem(ctx context.Context, id int64) (*domain.ShopItem, error)
	PremiumItem(ctx context.Context, id int64) (*domain.PremiumShopItem, error)
	Task(ctx context.Context, id int64) (*domain.Task, error)
	TaskByKey(ctx context.Context, key string) (*domain.Task, error)
	Trophy(ctx context.Context, id int64) (*domain.Trophy, error)

	SaveAccount(ctx context.Context) error
	SaveShopItem(ctx context.Context, item *domain.ShopItem) error
	SavePremiumItem(ctx context.Context, item *domain.PremiumShopItem) error
	SaveTask(ctx context.Context, task *domain.Task) error
	SaveTrophy(ctx context.Context, trophy *domain.Trophy) error

	AddTransaction(ctx context.Context, tx *domain.Transaction) error
	// AddReferral records ref and applies credit to the referred account
	// inside the same transaction. credit.Balance is set to the referred
	// account's new balance.
	AddReferral(ctx context.Context, ref *domain.Referral, credit *domain.Transaction) error
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}
