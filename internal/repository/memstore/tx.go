package memstore

import (
	"context"
	"fmt"
	"time"

	"tapcoin/internal/domain"
	"tapcoin/internal/repository"
)

// tx stages writes against copies and applies them on commit.
type tx struct {
	store   *Store
	data    *accountData
	account domain.Account

	saveAccount bool
	shop        map[int64]domain.ShopItem
	premium     map[int64]domain.PremiumShopItem
	tasks       map[int64]domain.Task
	trophies    map[int64]domain.Trophy
	ledger      []domain.Transaction
	referrals   []stagedReferral
}

type stagedReferral struct {
	ref    domain.Referral
	credit domain.Transaction
}

func newTx(s *Store, d *accountData) *tx {
	return &tx{
		store:    s,
		data:     d,
		account:  cloneAccount(d.account),
		shop:     make(map[int64]domain.ShopItem),
		premium:  make(map[int64]domain.PremiumShopItem),
		tasks:    make(map[int64]domain.Task),
		trophies: make(map[int64]domain.Trophy),
	}
}

func (t *tx) Account() *domain.Account {
	return &t.account
}

func (t *tx) ShopItem(_ context.Context, id int64) (*domain.ShopItem, error) {
	for _, it := range t.data.shop {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, fmt.Errorf("memstore.ShopItem: %w", repository.ErrNotFound)
}

func (t *tx) PremiumItem(_ context.Context, id int64) (*domain.PremiumShopItem, error) {
	for _, it := range t.data.premium {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, fmt.Errorf("memstore.PremiumItem: %w", repository.ErrNotFound)
}

func (t *tx) Task(_ context.Context, id int64) (*domain.Task, error) {
	for _, task := range t.data.tasks {
		if task.ID == id {
			return cloneTask(task), nil
		}
	}
	return nil, fmt.Errorf("memstore.Task: %w", repository.ErrNotFound)
}

func (t *tx) TaskByKey(_ context.Context, key string) (*domain.Task, error) {
	for _, task := range t.data.tasks {
		if task.Key == key {
			return cloneTask(task), nil
		}
	}
	return nil, fmt.Errorf("memstore.TaskByKey: %w", repository.ErrNotFound)
}

func (t *tx) Trophy(_ context.Context, id int64) (*domain.Trophy, error) {
	for _, tr := range t.data.trophies {
		if tr.ID == id {
			tr.UnlockedAt = cloneTime(tr.UnlockedAt)
			return &tr, nil
		}
	}
	return nil, fmt.Errorf("memstore.Trophy: %w", repository.ErrNotFound)
}

func (t *tx) SaveAccount(context.Context) error {
	t.saveAccount = true
	return nil
}

func (t *tx) SaveShopItem(_ context.Context, item *domain.ShopItem) error {
	t.shop[item.ID] = *item
	return nil
}

func (t *tx) SavePremiumItem(_ context.Context, item *domain.PremiumShopItem) error {
	t.premium[item.ID] = *item
	return nil
}

func (t *tx) SaveTask(_ context.Context, task *domain.Task) error {
	t.tasks[task.ID] = *cloneTask(*task)
	return nil
}

func (t *tx) SaveTrophy(_ context.Context, tr *domain.Trophy) error {
	saved := *tr
	saved.UnlockedAt = cloneTime(tr.UnlockedAt)
	t.trophies[tr.ID] = saved
	return nil
}

func (t *tx) AddTransaction(_ context.Context, entry *domain.Transaction) error {
	entry.AccountID = t.account.ID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	t.ledger = append(t.ledger, *entry)
	return nil
}

func (t *tx) AddReferral(_ context.Context, ref *domain.Referral, credit *domain.Transaction) error {
	ref.ReferrerID = t.account.ID
	for _, existing := range t.store.referrals {
		if existing.ReferredID == ref.ReferredID {
			return fmt.Errorf("memstore.AddReferral: %w", repository.ErrConflict)
		}
	}
	for _, staged := range t.referrals {
		if staged.ref.ReferredID == ref.ReferredID {
			return fmt.Errorf("memstore.AddReferral: %w", repository.ErrConflict)
		}
	}
	referred, ok := t.store.byID[ref.ReferredID]
	if !ok {
		return fmt.Errorf("memstore.AddReferral: %w", repository.ErrNotFound)
	}
	if referred.account.ReferredBy != nil {
		return fmt.Errorf("memstore.AddReferral: %w", repository.ErrConflict)
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now()
	}
	credit.AccountID = ref.ReferredID
	credit.Balance = referred.account.Coins + credit.Amount
	if credit.CreatedAt.IsZero() {
		credit.CreatedAt = ref.CreatedAt
	}
	t.referrals = append(t.referrals, stagedReferral{ref: *ref, credit: *credit})
	return nil
}

func (t *tx) commit() {
	s, d := t.store, t.data
	if t.saveAccount {
		t.account.UpdatedAt = time.Now()
		d.account = cloneAccount(t.account)
	}
	for i := range d.shop {
		if it, ok := t.shop[d.shop[i].ID]; ok {
			d.shop[i] = it
		}
	}
	for i := range d.premium {
		if it, ok := t.premium[d.premium[i].ID]; ok {
			d.premium[i] = it
		}
	}
	for i := range d.tasks {
		if task, ok := t.tasks[d.tasks[i].ID]; ok {
			d.tasks[i] = task
		}
	}
	for i := range d.trophies {
		if tr, ok := t.trophies[d.trophies[i].ID]; ok {
			d.trophies[i] = tr
		}
	}
	for _, entry := range t.ledger {
		entry.ID = s.id()
		d.ledger = append(d.ledger, entry)
	}
	for _, staged := range t.referrals {
		ref := staged.ref
		ref.ID = s.id()
		s.referrals = append(s.referrals, ref)

		referred := s.byID[ref.ReferredID]
		by := ref.ReferrerID
		referred.account.ReferredBy = &by
		referred.account.Coins += staged.credit.Amount
		referred.account.UpdatedAt = time.Now()

		credit := staged.credit
		credit.ID = s.id()
		credit.Balance = referred.account.Coins
		referred.ledger = append(referred.ledger, credit)
	}
}

func cloneTask(task domain.Task) *domain.Task {
	task.CompletedAt = cloneTime(task.CompletedAt)
	task.ClaimedAt = cloneTime(task.ClaimedAt)
	return &task
}
