package service

import (
	"context"
	"time"

	"tapcoin/internal/catalog"
	"tapcoin/internal/domain"
	"tapcoin/internal/repository"
)

// Store is the persistence the game needs. repository.Store is the
// production implementation; memstore.Store backs tests and DEV_MODE.
type Store interface {
	Ping(ctx context.Context) error
	Close()

	CreateAccount(ctx context.Context, a *domain.Account, seed catalog.Seed) (bool, error)
	GetAccount(ctx context.Context, telegramID int64) (*domain.Account, error)
	GetAccountByReferralCode(ctx context.Context, code string) (*domain.Account, error)
	WithAccount(ctx context.Context, telegramID int64, fn func(repository.AccountTx) error) error

	ListShop(ctx context.Context, accountID int64) ([]*domain.ShopItem, []*domain.PremiumShopItem, error)
	ListTasks(ctx context.Context, accountID int64) ([]*domain.Task, error)
	ListTrophies(ctx context.Context, accountID int64) ([]*domain.Trophy, error)
	Referrals(ctx context.Context, accountID int64) ([]domain.Referral, error)
	History(ctx context.Context, accountID int64, txType string, limit int) ([]*domain.Transaction, error)

	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	Rank(ctx context.Context, telegramID int64) (int, error)
	Stats(ctx context.Context, since time.Time) (domain.Stats, error)
}

// Notifier relays game events to players outside the app.
type Notifier interface {
	ReferralJoined(ctx context.Context, referrerTelegramID int64, newcomer string, bonus float64)
	DailyCycleCompleted(ctx context.Context, telegramID int64)
}

type nopNotifier struct{}

func (nopNotifier) ReferralJoined(context.Context, int64, string, float64) {}
func (nopNotifier) DailyCycleCompleted(context.Context, int64)             {}

// Notifiers fans an event out to several relays.
type Notifiers []Notifier

func (ns Notifiers) ReferralJoined(ctx context.Context, referrerTelegramID int64, newcomer string, bonus float64) {
	for _, n := range ns {
		n.ReferralJoined(ctx, referrerTelegramID, newcomer, bonus)
	}
}

func (ns Notifiers) DailyCycleCompleted(ctx context.Context, telegramID int64) {
	for _, n := range ns {
		n.DailyCycleCompleted(ctx, telegramID)
	}
}
