package service

import (
	"context"
	"time"

	"tapcoin/internal/domain"
	"tapcoin/internal/economy"
)

// List sizes for Leaderboard and History. Stores return up to the limit
// they are given, so these are the only caps.
const (
	DefaultLeaderboardSize = 100
	MaxLeaderboardSize     = 500
	DefaultHistorySize     = 50
	MaxHistorySize         = 200
)

// clampLimit maps a requested size onto [1, maxVal]; zero or negative
// means the default.
func clampLimit(limit, def, maxVal int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxVal)
}

func (s *EconomyService) account(ctx context.Context, op string, telegramID int64) (*domain.Account, error) {
	a, err := s.store.GetAccount(ctx, telegramID)
	if err != nil {
		return nil, classify(op, err)
	}
	s.rules.Settle(a, s.now())
	return a, nil
}

// Shop lists items with their next-level prices.
func (s *EconomyService) Shop(ctx context.Context, telegramID int64) (*ShopView, error) {
	const op = "service.Shop"

	a, err := s.account(ctx, op, telegramID)
	if err != nil {
		return nil, err
	}
	items, premium, err := s.store.ListShop(ctx, a.ID)
	if err != nil {
		return nil, classify(op, err)
	}

	view := &ShopView{
		Coins:   a.Coins,
		Items:   make([]ShopItemView, 0, len(items)),
		Premium: make([]PremiumItemView, 0, len(premium)),
	}
	for _, it := range items {
		price := s.rules.ItemPrice(it)
		view.Items = append(view.Items, ShopItemView{
			ShopItem:       it,
			Price:          price,
			PriceFormatted: economy.FormatCompact(price),
			Affordable:     a.Coins >= price,
		})
	}
	for _, it := range premium {
		price := s.rules.PremiumPrice(it)
		view.Premium = append(view.Premium, PremiumItemView{
			PremiumShopItem: it,
			Price:           price,
			PriceFormatted:  economy.FormatCompact(price),
			Affordable:      a.Coins >= price,
		})
	}
	return view, nil
}

// Tasks lists the account's tasks.
func (s *EconomyService) Tasks(ctx context.Context, telegramID int64) ([]TaskView, error) {
	const op = "service.Tasks"

	a, err := s.account(ctx, op, telegramID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, a.ID)
	if err != nil {
		return nil, classify(op, err)
	}
	res := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, TaskView{
			Task:      t,
			Percent:   t.Percent(),
			Manual:    !isServerTracked(t.Key),
			Claimable: t.CanClaim(),
		})
	}
	return res, nil
}

// Trophies lists the account's trophies.
func (s *EconomyService) Trophies(ctx context.Context, telegramID int64) ([]TrophyView, error) {
	const op = "service.Trophies"

	a, err := s.account(ctx, op, telegramID)
	if err != nil {
		return nil, err
	}
	trophies, err := s.store.ListTrophies(ctx, a.ID)
	if err != nil {
		return nil, classify(op, err)
	}
	res := make([]TrophyView, 0, len(trophies))
	for _, tr := range trophies {
		res = append(res, TrophyView{
			Trophy:    tr,
			Claimable: !tr.Claimed && a.Coins >= tr.Requirement,
		})
	}
	return res, nil
}

// ReferralStats summarizes the accounts a player brought in.
func (s *EconomyService) ReferralStats(ctx context.Context, telegramID int64) (*domain.ReferralStats, error) {
	const op = "service.ReferralStats"

	a, err := s.store.GetAccount(ctx, telegramID)
	if err != nil {
		return nil, classify(op, err)
	}
	refs, err := s.store.Referrals(ctx, a.ID)
	if err != nil {
		return nil, classify(op, err)
	}
	stats := &domain.ReferralStats{
		Code:           a.ReferralCode,
		TotalReferrals: len(refs),
		Referrals:      refs,
	}
	for _, r := range refs {
		stats.TotalEarned += r.Bonus
	}
	if stats.Referrals == nil {
		stats.Referrals = []domain.Referral{}
	}
	return stats, nil
}

// History returns the newest ledger rows, optionally of one type. limit is
// clamped to MaxHistorySize.
func (s *EconomyService) History(ctx context.Context, telegramID int64, txType string, limit int) ([]*domain.Transaction, error) {
	const op = "service.History"

	a, err := s.store.GetAccount(ctx, telegramID)
	if err != nil {
		return nil, classify(op, err)
	}
	res, err := s.store.History(ctx, a.ID, txType, clampLimit(limit, DefaultHistorySize, MaxHistorySize))
	if err != nil {
		return nil, classify(op, err)
	}
	if res == nil {
		res = []*domain.Transaction{}
	}
	return res, nil
}

// Leaderboard returns the top accounts by coins. limit is clamped to
// MaxLeaderboardSize.
func (s *EconomyService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	res, err := s.store.Leaderboard(ctx, clampLimit(limit, DefaultLeaderboardSize, MaxLeaderboardSize))
	if err != nil {
		return nil, classify("service.Leaderboard", err)
	}
	if res == nil {
		res = []domain.LeaderboardEntry{}
	}
	return res, nil
}

// Rank returns the player's position on the leaderboard.
func (s *EconomyService) Rank(ctx context.Context, telegramID int64) (int, error) {
	rank, err := s.store.Rank(ctx, telegramID)
	if err != nil {
		return 0, classify("service.Rank", err)
	}
	return rank, nil
}

// Stats reports global counters; "active" means touched since local
// midnight in the daily reward time zone.
func (s *EconomyService) Stats(ctx context.Context) (domain.Stats, error) {
	loc := s.rules.Location
	if loc == nil {
		loc = time.UTC
	}
	now := s.now().In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	st, err := s.store.Stats(ctx, midnight)
	if err != nil {
		return st, classify("service.Stats", err)
	}
	return st, nil
}

// Ping checks the storage backend.
func (s *EconomyService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
