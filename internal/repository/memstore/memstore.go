// Package memstore is an in-process store used by tests and by DEV_MODE
// runs without a database. Writes made inside WithAccount become visible
// only when the callback returns nil.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tapcoin/internal/catalog"
	"tapcoin/internal/domain"
	"tapcoin/internal/repository"
)

type accountData struct {
	account  domain.Account
	shop     []domain.ShopItem
	premium  []domain.PremiumShopItem
	tasks    []domain.Task
	trophies []domain.Trophy
	ledger   []domain.Transaction
}

// Store keeps every account in memory behind one mutex.
type Store struct {
	mu        sync.Mutex
	byTG      map[int64]*accountData
	byID      map[int64]*accountData
	referrals []domain.Referral
	nextID    int64
	closed    bool
}

func New() *Store {
	return &Store{
		byTG: make(map[int64]*accountData),
		byID: make(map[int64]*accountData),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("memstore: closed")
	}
	return nil
}

func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Store) CreateAccount(_ context.Context, a *domain.Account, seed catalog.Seed) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.byTG[a.TelegramID]; ok {
		*a = cloneAccount(d.account)
		return false, nil
	}
	for _, d := range s.byTG {
		if d.account.ReferralCode == a.ReferralCode {
			return false, fmt.Errorf("memstore.CreateAccount: %w", repository.ErrConflict)
		}
	}

	a.ID = s.id()
	d := &accountData{account: cloneAccount(*a)}
	for _, it := range seed.ShopItems {
		it.ID, it.AccountID = s.id(), a.ID
		d.shop = append(d.shop, it)
	}
	for _, it := range seed.PremiumItems {
		it.ID, it.AccountID = s.id(), a.ID
		d.premium = append(d.premium, it)
	}
	for _, t := range seed.Tasks {
		t.ID, t.AccountID = s.id(), a.ID
		d.tasks = append(d.tasks, t)
	}
	for _, tr := range seed.Trophies {
		tr.ID, tr.AccountID = s.id(), a.ID
		d.trophies = append(d.trophies, tr)
	}
	s.byTG[a.TelegramID] = d
	s.byID[a.ID] = d
	return true, nil
}

func (s *Store) GetAccount(_ context.Context, telegramID int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byTG[telegramID]
	if !ok {
		return nil, fmt.Errorf("memstore.GetAccount: %w", repository.ErrNotFound)
	}
	a := cloneAccount(d.account)
	return &a, nil
}

func (s *Store) GetAccountByReferralCode(_ context.Context, code string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.byTG {
		if d.account.ReferralCode == code {
			a := cloneAccount(d.account)
			return &a, nil
		}
	}
	return nil, fmt.Errorf("memstore.GetAccountByReferralCode: %w", repository.ErrNotFound)
}

// WithAccount holds the store lock for the whole callback, so calls are
// serialized across all accounts.
func (s *Store) WithAccount(ctx context.Context, telegramID int64, fn func(repository.AccountTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byTG[telegramID]
	if !ok {
		return fmt.Errorf("memstore.WithAccount: %w", repository.ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := newTx(s, d)
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) ListShop(_ context.Context, accountID int64) ([]*domain.ShopItem, []*domain.PremiumShopItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byID[accountID]
	if !ok {
		return nil, nil, nil
	}
	items := make([]*domain.ShopItem, 0, len(d.shop))
	for i := range d.shop {
		it := d.shop[i]
		items = append(items, &it)
	}
	premium := make([]*domain.PremiumShopItem, 0, len(d.premium))
	for i := range d.premium {
		it := d.premium[i]
		premium = append(premium, &it)
	}
	return items, premium, nil
}

func (s *Store) ListTasks(_ context.Context, accountID int64) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byID[accountID]
	if !ok {
		return nil, nil
	}
	res := make([]*domain.Task, 0, len(d.tasks))
	for i := range d.tasks {
		t := d.tasks[i]
		res = append(res, &t)
	}
	return res, nil
}

func (s *Store) ListTrophies(_ context.Context, accountID int64) ([]*domain.Trophy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byID[accountID]
	if !ok {
		return nil, nil
	}
	res := make([]*domain.Trophy, 0, len(d.trophies))
	for i := range d.trophies {
		tr := d.trophies[i]
		res = append(res, &tr)
	}
	return res, nil
}

func (s *Store) Referrals(_ context.Context, accountID int64) ([]domain.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []domain.Referral
	for i := len(s.referrals) - 1; i >= 0; i-- {
		ref := s.referrals[i]
		if ref.ReferrerID != accountID {
			continue
		}
		if d, ok := s.byID[ref.ReferredID]; ok {
			ref.ReferredName = d.account.Username
			if ref.ReferredName == "" {
				ref.ReferredName = d.account.FirstName
			}
		}
		res = append(res, ref)
	}
	return res, nil
}

func (s *Store) History(_ context.Context, accountID int64, txType string, limit int) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		return nil, nil
	}
	d, ok := s.byID[accountID]
	if !ok {
		return nil, nil
	}
	var res []*domain.Transaction
	for i := len(d.ledger) - 1; i >= 0 && len(res) < limit; i-- {
		entry := d.ledger[i]
		if txType != "" && entry.Type != txType {
			continue
		}
		res = append(res, &entry)
	}
	return res, nil
}

func (s *Store) Leaderboard(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		return nil, nil
	}
	accounts := s.sortedByCoins()
	if len(accounts) > limit {
		accounts = accounts[:limit]
	}
	res := make([]domain.LeaderboardEntry, 0, len(accounts))
	for i, a := range accounts {
		res = append(res, domain.LeaderboardEntry{
			Rank:       i + 1,
			TelegramID: a.TelegramID,
			Name:       a.DisplayName(),
			Coins:      a.Coins,
			Level:      a.Level,
		})
	}
	return res, nil
}

func (s *Store) Rank(_ context.Context, telegramID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.byTG[telegramID]
	if !ok {
		return 0, fmt.Errorf("memstore.Rank: %w", repository.ErrNotFound)
	}
	rank := 1
	for _, other := range s.byTG {
		if other.account.Coins > d.account.Coins {
			rank++
		}
	}
	return rank, nil
}

func (s *Store) Stats(_ context.Context, since time.Time) (domain.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := domain.Stats{
		Accounts:      int64(len(s.byTG)),
		TotalReferred: int64(len(s.referrals)),
	}
	for _, d := range s.byTG {
		st.TotalCoins += d.account.Coins
		if !d.account.UpdatedAt.Before(since) {
			st.ActiveToday++
		}
	}
	return st, nil
}

func (s *Store) sortedByCoins() []*domain.Account {
	res := make([]*domain.Account, 0, len(s.byTG))
	for _, d := range s.byTG {
		a := d.account
		res = append(res, &a)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Coins != res[j].Coins {
			return res[i].Coins > res[j].Coins
		}
		return res[i].ID < res[j].ID
	})
	return res
}

func cloneAccount(a domain.Account) domain.Account {
	a.MultiplierEndTime = cloneTime(a.MultiplierEndTime)
	a.BoosterCooldown = cloneTime(a.BoosterCooldown)
	a.DailyReward.LastClaimed = cloneTime(a.DailyReward.LastClaimed)
	if a.ReferredBy != nil {
		v := *a.ReferredBy
		a.ReferredBy = &v
	}
	return a
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
