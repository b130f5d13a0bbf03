package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tapcoin/internal/catalog"
	"tapcoin/internal/domain"
	"tapcoin/internal/economy"
	"tapcoin/internal/logger"
	"tapcoin/internal/repository"
)

// DefaultReferralBonus is paid to both sides of a referral.
const DefaultReferralBonus = 5000

// EconomyService applies economy rules to stored accounts. Every mutating
// call runs inside one row-locked transaction per account and writes a
// ledger row for each coin movement.
type EconomyService struct {
	store    Store
	rules    economy.Rules
	seed     func() catalog.Seed
	notifier Notifier
	log      *slog.Logger

	ReferralBonus float64
	Now           func() time.Time
}

// NewEconomyService wires the orchestrator. notifier may be nil.
func NewEconomyService(store Store, rules economy.Rules, notifier Notifier) *EconomyService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &EconomyService{
		store:         store,
		rules:         rules,
		seed:          catalog.Default,
		notifier:      notifier,
		log:           logger.With("component", "economy"),
		ReferralBonus: DefaultReferralBonus,
		Now:           time.Now,
	}
}

// Rules exposes the active economy constants.
func (s *EconomyService) Rules() economy.Rules {
	return s.rules
}

// SetNotifier replaces the event relay. Used when the bot starts after the
// service is built.
func (s *EconomyService) SetNotifier(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	s.notifier = n
}

func (s *EconomyService) now() time.Time {
	return s.Now().UTC()
}

// mutate runs fn on the locked account and persists it afterwards.
func (s *EconomyService) mutate(ctx context.Context, op string, telegramID int64, fn func(repository.AccountTx, *domain.Account) error) error {
	err := s.store.WithAccount(ctx, telegramID, func(tx repository.AccountTx) error {
		a := tx.Account()
		if err := fn(tx, a); err != nil {
			return err
		}
		return tx.SaveAccount(ctx)
	})
	return classify(op, err)
}

func (s *EconomyService) ledger(ctx context.Context, tx repository.AccountTx, a *domain.Account, kind string, amount float64, meta map[string]interface{}) error {
	return tx.AddTransaction(ctx, &domain.Transaction{
		Type:    kind,
		Amount:  amount,
		Balance: a.Coins,
		Meta:    meta,
	})
}

// Register creates the account on first contact with every sub-entity
// seeded. Repeated calls return the stored account with created=false.
// A valid referrerCode on first registration pays both sides.
func (s *EconomyService) Register(ctx context.Context, p domain.Profile, referrerCode string) (*domain.Account, bool, error) {
	const op = "service.Register"

	if p.TelegramID == 0 {
		return nil, false, ErrInvalidProfile
	}

	var (
		acc     *domain.Account
		created bool
		err     error
	)
	for attempt := 0; attempt < 3; attempt++ {
		acc = domain.NewAccount(p, s.now())
		acc.ReferralCode = repository.GenerateReferralCode()
		created, err = s.store.CreateAccount(ctx, acc, s.seed())
		if !errors.Is(err, repository.ErrConflict) {
			break
		}
	}
	if err != nil {
		err = classify(op, err)
		observe("register", err)
		return nil, false, err
	}
	observe("register", nil)
	if !created {
		return acc, false, nil
	}

	AccountsCreated.Inc()
	s.log.Info("account registered", "tg_id", acc.TelegramID, "referrer_code", referrerCode)

	if referrerCode != "" && referrerCode != acc.ReferralCode {
		if err := s.applyReferral(ctx, acc, referrerCode); err != nil {
			s.log.Warn("referral not applied", "tg_id", acc.TelegramID, "code", referrerCode, "error", err)
		} else if fresh, err := s.store.GetAccount(ctx, acc.TelegramID); err == nil {
			acc = fresh
		}
	}
	return acc, true, nil
}

func (s *EconomyService) applyReferral(ctx context.Context, newcomer *domain.Account, code string) error {
	const op = "service.applyReferral"

	referrer, err := s.store.GetAccountByReferralCode(ctx, code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if referrer.TelegramID == newcomer.TelegramID {
		return nil
	}

	bonus := s.ReferralBonus
	now := s.now()
	err = s.mutate(ctx, op, referrer.TelegramID, func(tx repository.AccountTx, a *domain.Account) error {
		credit := &domain.Transaction{
			Type:   domain.TxReferralBonus,
			Amount: bonus,
			Meta:   map[string]interface{}{"referrer_id": referrer.TelegramID},
		}
		if err := tx.AddReferral(ctx, &domain.Referral{ReferredID: newcomer.ID, Bonus: bonus}, credit); err != nil {
			return err
		}
		a.Coins += bonus
		if err := s.ledger(ctx, tx, a, domain.TxReferralBonus, bonus, map[string]interface{}{"referred_id": newcomer.TelegramID}); err != nil {
			return err
		}
		return s.trackTask(ctx, tx, catalog.TaskInviteFriends, func(t *domain.Task) bool {
			return economy.AdvanceTask(t, 1, now)
		})
	})
	if err != nil {
		return err
	}
	CoinsCredited.WithLabelValues(domain.TxReferralBonus).Add(2 * bonus)

	s.notifier.ReferralJoined(ctx, referrer.TelegramID, newcomer.DisplayName(), bonus)
	return nil
}

// trackTask loads a server-tracked task by key and saves it when update
// reports a change. Accounts seeded before the task existed are skipped.
func (s *EconomyService) trackTask(ctx context.Context, tx repository.AccountTx, key string, update func(*domain.Task) bool) error {
	task, err := tx.TaskByKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !update(task) {
		return nil
	}
	return tx.SaveTask(ctx, task)
}

// State returns the account settled to now. Nothing is written: every
// time-driven field is recomputed from stored timestamps.
func (s *EconomyService) State(ctx context.Context, telegramID int64) (*AccountView, error) {
	const op = "service.State"

	a, err := s.store.GetAccount(ctx, telegramID)
	if err != nil {
		return nil, classify(op, err)
	}
	now := s.now()
	s.rules.Settle(a, now)
	return newAccountView(s.rules, a, now), nil
}

// Tap applies up to count taps.
func (s *EconomyService) Tap(ctx context.Context, telegramID int64, count int) (*TapOutcome, error) {
	const op = "service.Tap"

	var out TapOutcome
	now := s.now()
	err := s.mutate(ctx, op, telegramID, func(tx repository.AccountTx, a *domain.Account) error {
		res, err := s.rules.TapN(a, count, now)
		if err != nil {
			return err
		}
		out = TapOutcome{
			Taps:   res.Taps,
			Gained: res.Gained,
			Coins:  a.Coins,
			Energy: a.Energy,
			Exp:    a.Exp,
			Level:  a.Level,
		}
		if err := s.ledger(ctx, tx, a, domain.TxTap, res.Gained, map[string]interface{}{"taps": res.Taps}); err != nil {
			return err
		}
		return s.trackTask(ctx, tx, catalog.TaskTap1000, func(t *domain.Task) bool {
			return economy.AdvanceTask(t, res.Taps, now)
		})
	})
	observe("tap", err)
	if err != nil {
		return nil, err
	}
	CoinsCredited.WithLabelValues(domain.TxTap).Add(out.Gained)
	return &out, nil
}

// Purchase buys the next level of a regular or premium item.
func (s *EconomyService) Purchase(ctx context.Context, telegramID, itemID int64, premium bool) (*PurchaseOutcome, error) {
	const op = "service.Purchase"

	var out PurchaseOutcome
	now := s.now()
	err := s.mutate(ctx, op, telegramID, func(tx repository.AccountTx, a *domain.Account) error {
		defer func() {
			out.Coins = a.Coins
			out.ProfitPerHour = a.ProfitPerHour
			out.ClickPower = a.ClickPower
		}()
		if premium {
			item, err := tx.PremiumItem(ctx, itemID)
			if errors.Is(err, repository.ErrNotFound) {
				return ErrItemNotFound
			}
			if err != nil {
				return err
			}
			price, err := s.rules.PurchasePremium(a, item, now)
			if err != nil {
				return err
			}
			if err := tx.SavePremiumItem(ctx, item); err != nil {
				return err
			}
			out = PurchaseOutcome{Price: price, NextPrice: s.rules.PremiumPrice(item), Premium: true, Item: item}
			return s.ledger(ctx, tx, a, domain.TxPremium, -price, map[string]interface{}{"item": item.Key, "level": item.Level})
		}

		item, err := tx.ShopItem(ctx, itemID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}
		if err != nil {
			return err
		}
		price, err := s.rules.Purchase(a, item, now)
		if err != nil {
			return err
		}
		if err := tx.SaveShopItem(ctx, item); err != nil {
			return err
		}
		out = PurchaseOutcome{Price: price, NextPrice: s.rules.ItemPrice(item), Item: item}
		return s.ledger(ctx, tx, a, domain.TxPurchase, -price, map[string]interface{}{"item": item.Key, "level": item.Level})
	})
	observe("purchase", err)
	if err != nil {
		return nil, err
	}

	kind := "regular"
	if premium {
		kind = "premium"
	}
	CoinsSpent.WithLabelValues(kind).Add(out.Price)
	return &out, nil
}

// ClaimProfit moves accrued passive income into the balance.
func (s *EconomyService) ClaimProfit(ctx context.Context, telegramID int64) (*ProfitClaim, error) {
	const op = "service.ClaimProfit"

	var out ProfitClaim
	err := s.mutate(ctx, op, telegramID, func(tx repository.AccountTx, a *domain.Account) error {
		amount, err := s.rules.ClaimProfit(a, s.now())
		if err != nil {
			return err
		}
		out = ProfitClaim{Claimed: amount, Coins: a.Coins, PPHAccumulated: a.PPHAccumulated}
		return s.ledger(ctx, tx, a, domain.TxProfitClaim, amount, nil)
	})
	observe("claim_profit", err)
	if err != nil {
		return nil, err
	}
	CoinsCredited.WithLabelValues(domain.TxProfitClaim).Add(out.Claimed)
	return &out, nil
}

// ClaimDailyReward pays today's reward and advances the streak.
func (s *EconomyService) ClaimDailyReward(ctx context.Context, telegramID int64) (*DailyClaim, error) {
	const op = "service.ClaimDailyReward"

	var out DailyClaim
	now := s.now()
	err := s.mutate(ctx, op, telegramID, func(tx repository.AccountTx, a *domain.Account) error {
		reward, err := s.rules.ClaimDaily(a, now)
		if err != nil {
			return err
		}
		d := a.DailyReward
		out = DailyClaim{Reward: reward, Coins: a.Coins, Streak: d.Streak, Day: d.Day, Completed: d.Completed}
		if err := s.ledger(ctx, tx, a, domain.TxDailyReward, reward, map[string]interface{}{"day": d.Day, "streak": d.Streak}); err != nil {
			return err
		}
		return s.trackTask(ctx, tx, catalog.TaskDailyWeek, func(t *domain.Task) bool {
			return economy.SetTaskProgress(t, d.Streak, now)
		})
	})
	observe("claim_daily", err)
	if err != nil {
		return nil, err
	}
	CoinsCredited.WithLabelValues(domain.TxDailyReward).Add(out.Reward)
	if out.Completed {
		s.notifier.DailyCycleCompleted(ctx, telegramID)
	}
	return &out, nil
}

// Daily returns the reward table and the player's cycle state.
func (s *EconomyService) Daily(ctx context.Context, telegramID int64) (*DailyInfo, error) {
	a, err := s.store.GetAccount(ctx, telegramID)
	if err != nil {
		return nil, classify("service.Daily", err)
	}
	now := s.now()
	rewards := make([]float64, len(s.rules.DailyRewards))
	copy(rewards, s.rules.DailyRewards)
	return &DailyInfo{
		Rewards:      rewards,
		State:        a.DailyReward,
		ClaimedToday: s.rules.ClaimedToday(a, now),
		NextReward:   s.rules.DailyReward(s.rules.NextDailyDay(a, now)),
	}, nil
}

// ResetDailyCycle reopens a completed daily cycle. Operator only.
func (s *EconomyService) ResetDailyCycle(ctx context.Context, telegramID int64) error {
	err := s.mutate(ctx, "service.ResetDailyCycle", telegramID, func(_ repository.AccountTx, a *domain.Account) error {
		economy.ResetDaily(a)
		return nil
	})
	observe("reset_daily", err)
	if err == nil {
		s.log.Info("daily cycle reset", "tg_id", telegramID)
	}
	return err
}

// ActivateBooster starts the tap multiplier.
func (s *EconomyService) ActivateBooster(ctx context.Context, telegramID int64) (*AccountView, error) {
	const op = "service.ActivateBooster"

	var view *AccountView
	now := s.now()
	err := s.mutate(ctx, op, telegramID, func(_ repository.AccountTx, a *domain.Account) error {
		if err := s.rules.ActivateBooster(a, now); err != nil {
			return err
		}
		view = newAccountView(s.rules, a, now)
		return nil
	})
	observe("boost", err)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// SelectCoinImage changes the cosmetic coin skin.
func (s *EconomyService) SelectCoinImage(ctx context.Context, telegramID int64, image string) error {
	if !catalog.ValidCoinImage(image) {
		return ErrInvalidCoinImage
	}
	return s.mutate(ctx, "service.SelectCoinImage", telegramID, func(_ repository.AccountTx, a *domain.Account) error {
		a.SelectedCoinImage = image
		return nil
	})
}

func isServerTracked(key string) bool {
	switch key {
	case catalog.TaskInviteFriends, catalog.TaskTap1000, catalog.TaskDailyWeek:
		return true
	}
	return false
}

// AdvanceTask records client-reported progress on an external task such
// as joining a channel. Server-tracked tasks reject client progress.
func (s *EconomyService) AdvanceTask(ctx context.Context, telegramID, taskID int64, delta int) (*domain.Task, error) {
	const op = "service.AdvanceTask"

	if delta < 1 {
		delta = 1
	}
	var out *domain.Task
	now := s.now()
	err := s.mutate(ctx, op, telegramID, func(tx repository.AccountTx, _ *domain.Account) error {
		task, err := tx.Task(ctx, taskID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		if err != nil {
			return err
		}
		if isServerTracked(task.Key) {
			return ErrTaskNotManual
		}
		out = task
		if !economy.AdvanceTask(task, delta, now) {
			return nil
		}
		return tx.SaveTask(ctx, task)
	})
	observe("task_progress", err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ClaimTask pays a completed task once.
func (s *EconomyService) ClaimTask(ctx context.Context, telegramID, taskID int64) (*RewardClaim, error) {
	const op = "service.ClaimTask"

	var out RewardClaim
	now := s.now()
	err := s.mutate(ctx, op, telegramID, func(tx repository.AccountTx, a *domain.Account) error {
		task, err := tx.Task(ctx, taskID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		if err != nil {
			return err
		}
		reward, err := economy.ClaimTask(a, task, now)
		if err != nil {
			return err
		}
		if err := tx.SaveTask(ctx, task); err != nil {
			return err
		}
		out = RewardClaim{Reward: reward, Coins: a.Coins}
		return s.ledger(ctx, tx, a, domain.TxTaskReward, reward, map[string]interface{}{"task": task.Key})
	})
	observe("claim_task", err)
	if err != nil {
		return nil, err
	}
	CoinsCredited.WithLabelValues(domain.TxTaskReward).Add(out.Reward)
	return &out, nil
}

// ClaimTrophy pays a trophy whose coin requirement is met.
func (s *EconomyService) ClaimTrophy(ctx context.Context, telegramID, trophyID int64) (*RewardClaim, error) {
	const op = "service.ClaimTrophy"

	var out RewardClaim
	now := s.now()
	err := s.mutate(ctx, op, telegramID, func(tx repository.AccountTx, a *domain.Account) error {
		tr, err := tx.Trophy(ctx, trophyID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrophyNotFound
		}
		if err != nil {
			return err
		}
		reward, err := economy.ClaimTrophy(a, tr, now)
		if err != nil {
			return err
		}
		if err := tx.SaveTrophy(ctx, tr); err != nil {
			return err
		}
		out = RewardClaim{Reward: reward, Coins: a.Coins}
		return s.ledger(ctx, tx, a, domain.TxTrophyReward, reward, map[string]interface{}{"trophy": tr.Key})
	})
	observe("claim_trophy", err)
	if err != nil {
		return nil, err
	}
	CoinsCredited.WithLabelValues(domain.TxTrophyReward).Add(out.Reward)
	return &out, nil
}
