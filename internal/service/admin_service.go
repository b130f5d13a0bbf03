package service

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"tapcoin/internal/domain"
	"tapcoin/internal/logger"
	"tapcoin/internal/repository"
)

var ErrInvalidAmount = errors.New("amount must be a positive number")

// AdminService holds operator actions used by the bot. Every action is
// recorded in the ledger or the log with the operator's id.
type AdminService struct {
	economy *EconomyService
	log     *slog.Logger
}

func NewAdminService(economy *EconomyService) *AdminService {
	return &AdminService{
		economy: economy,
		log:     logger.With("component", "admin"),
	}
}

// Stats returns global counters.
func (s *AdminService) Stats(ctx context.Context) (domain.Stats, error) {
	return s.economy.Stats(ctx)
}

// Player returns the settled state of one account.
func (s *AdminService) Player(ctx context.Context, telegramID int64) (*AccountView, error) {
	return s.economy.State(ctx, telegramID)
}

// ResetDaily reopens a player's completed daily cycle.
func (s *AdminService) ResetDaily(ctx context.Context, adminID, telegramID int64) error {
	if err := s.economy.ResetDailyCycle(ctx, telegramID); err != nil {
		return err
	}
	s.log.Info("admin reset daily cycle", "admin_id", adminID, "tg_id", telegramID)
	return nil
}

// GrantCoins credits amount to a player and returns the new balance.
func (s *AdminService) GrantCoins(ctx context.Context, adminID, telegramID int64, amount float64) (float64, error) {
	const op = "service.GrantCoins"

	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}

	e := s.economy
	now := e.now()
	var balance float64
	err := e.mutate(ctx, op, telegramID, func(tx repository.AccountTx, a *domain.Account) error {
		e.rules.Settle(a, now)
		a.Coins += amount
		balance = a.Coins
		return e.ledger(ctx, tx, a, domain.TxAdminGrant, amount, map[string]interface{}{"admin_id": adminID})
	})
	observe("admin_grant", err)
	if err != nil {
		return 0, err
	}
	CoinsCredited.WithLabelValues(domain.TxAdminGrant).Add(amount)
	s.log.Info("admin granted coins", "admin_id", adminID, "tg_id", telegramID, "amount", amount)
	return balance, nil
}
