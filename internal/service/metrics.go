package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapcoin_actions_total",
			Help: "Economy actions by outcome",
		},
		[]string{"action", "outcome"},
	)
	CoinsCredited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapcoin_coins_credited_total",
			Help: "Coins credited to players by source",
		},
		[]string{"source"},
	)
	CoinsSpent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapcoin_coins_spent_total",
			Help: "Coins spent in the shop",
		},
		[]string{"kind"},
	)
	AccountsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tapcoin_accounts_created_total",
			Help: "Accounts registered",
		},
	)
)

func init() {
	prometheus.MustRegister(ActionsTotal)
	prometheus.MustRegister(CoinsCredited)
	prometheus.MustRegister(CoinsSpent)
	prometheus.MustRegister(AccountsCreated)
}

func observe(action string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrStorage):
		outcome = "error"
	case IsUserError(err):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	ActionsTotal.WithLabelValues(action, outcome).Inc()
}
