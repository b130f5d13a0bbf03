package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tapcoin/internal/logger"
	"tapcoin/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

var wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "tapcoin_ws_connections",
	Help: "Open websocket connections",
})

func init() {
	prometheus.MustRegister(wsConnections)
}

// Engine is the game surface a socket drives. *service.EconomyService
// satisfies it.
type Engine interface {
	State(ctx context.Context, telegramID int64) (*service.AccountView, error)
	Tap(ctx context.Context, telegramID int64, count int) (*service.TapOutcome, error)
	ActivateBooster(ctx context.Context, telegramID int64) (*service.AccountView, error)
}

// Hub tracks open sockets per player. A player may have several tabs.
type Hub struct {
	engine Engine
	log    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}

	// StatePeriod is how often a fresh snapshot is pushed unasked.
	StatePeriod time.Duration
	// MessageRate and MessageBurst bound inbound messages per socket.
	MessageRate  rate.Limit
	MessageBurst int
	// CallTimeout bounds each engine call made for a socket.
	CallTimeout time.Duration
}

func NewHub(engine Engine) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		engine:       engine,
		log:          logger.With("component", "ws"),
		ctx:          ctx,
		cancel:       cancel,
		clients:      make(map[int64]map[*Client]struct{}),
		StatePeriod:  5 * time.Second,
		MessageRate:  20,
		MessageBurst: 40,
		CallTimeout:  5 * time.Second,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.TelegramID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.TelegramID] = set
	}
	set[c] = struct{}{}
	wsConnections.Inc()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.TelegramID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.TelegramID)
	}
	wsConnections.Dec()
}

// Connections returns the number of open sockets.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Push queues msg on every socket the player has open.
func (h *Hub) Push(telegramID int64, msg Outbound) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	payload := encode(msg)
	for c := range h.clients[telegramID] {
		c.queue(payload)
	}
	return len(h.clients[telegramID])
}

// ReferralJoined implements service.Notifier.
func (h *Hub) ReferralJoined(_ context.Context, referrerTelegramID int64, newcomer string, bonus float64) {
	h.Push(referrerTelegramID, Outbound{Type: MsgReferral, Data: ReferralPayload{Newcomer: newcomer, Bonus: bonus}})
}

// DailyCycleCompleted implements service.Notifier.
func (h *Hub) DailyCycleCompleted(_ context.Context, telegramID int64) {
	h.Push(telegramID, Outbound{Type: MsgDailyCycle})
}

// Shutdown closes every socket and stops background pushes.
func (h *Hub) Shutdown() {
	h.cancel()

	h.mu.RLock()
	var all []*Client
	for _, set := range h.clients {
		for c := range set {
			all = append(all, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range all {
		c.close()
	}
	h.log.Info("websocket hub stopped", "closed", len(all))
}
