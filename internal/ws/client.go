package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"tapcoin/internal/service"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 1024
	sendBuffer     = 64
)

// Client is one player socket. The server owns all state; the socket only
// carries taps in and snapshots out.
type Client struct {
	TelegramID int64
	Conn       *websocket.Conn
	Send       chan []byte

	hub     *Hub
	limiter *rate.Limiter
	log     *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(telegramID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		TelegramID: telegramID,
		Conn:       conn,
		Send:       make(chan []byte, sendBuffer),
		hub:        hub,
		limiter:    rate.NewLimiter(hub.MessageRate, hub.MessageBurst),
		log:        hub.log.With("tg_id", telegramID),
		done:       make(chan struct{}),
	}
}

// Run registers the socket and blocks until it disconnects.
func (c *Client) Run() {
	c.hub.register(c)
	defer c.close()

	go c.writePump()
	go c.stateLoop()

	c.queue(encode(Outbound{Type: MsgReady}))
	c.pushState()

	c.readPump()
}

func (c *Client) queue(msg []byte) {
	select {
	case <-c.done:
	case c.Send <- msg:
	default:
		c.log.Warn("ws send buffer full, dropping message")
	}
}

func (c *Client) reply(msg Outbound) {
	c.queue(encode(msg))
}

func (c *Client) replyError(err error) {
	c.reply(Outbound{Type: MsgError, Error: err.Error(), Code: service.ErrorCode(err)})
}

func (c *Client) call() (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.hub.ctx, c.hub.CallTimeout)
}

func (c *Client) pushState() {
	ctx, cancel := c.call()
	defer cancel()

	view, err := c.hub.engine.State(ctx, c.TelegramID)
	if err != nil {
		c.replyError(err)
		return
	}
	c.reply(Outbound{Type: MsgState, Data: view})
}

func (c *Client) handle(raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		c.reply(Outbound{Type: MsgError, Error: "malformed message", Code: "bad_request"})
		return
	}

	switch in.Type {
	case MsgTap:
		ctx, cancel := c.call()
		defer cancel()
		out, err := c.hub.engine.Tap(ctx, c.TelegramID, in.Count)
		if err != nil {
			c.replyError(err)
			return
		}
		c.reply(Outbound{Type: MsgTapResult, Data: out})
	case MsgBoost:
		ctx, cancel := c.call()
		defer cancel()
		view, err := c.hub.engine.ActivateBooster(ctx, c.TelegramID)
		if err != nil {
			c.replyError(err)
			return
		}
		c.reply(Outbound{Type: MsgState, Data: view})
	case MsgState:
		c.pushState()
	case MsgPing:
		c.reply(Outbound{Type: MsgPong})
	default:
		c.reply(Outbound{Type: MsgError, Error: "unknown message type", Code: "bad_request"})
	}
}

func (c *Client) readPump() {
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("ws read error", "error", err)
			}
			return
		}
		if !c.limiter.Allow() {
			c.reply(Outbound{Type: MsgError, Error: "rate limit exceeded", Code: "rate_limited"})
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("ws write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) stateLoop() {
	if c.hub.StatePeriod <= 0 {
		return
	}
	ticker := time.NewTicker(c.hub.StatePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.pushState()
		case <-c.done:
			return
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.hub.unregister(c)
	})
}
