package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tapcoin/internal/logger"
	"tapcoin/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const outboxSize = 256

// sender is the slice of the Bot API the game bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Config struct {
	BotUsername string
	WebAppURL   string
	AdminIDs    []int64
}

// Bot is the player-facing Telegram bot. It registers players from /start
// deep links, answers balance and leaderboard queries, serves operator
// commands and relays game events to players.
type Bot struct {
	api     *tgbotapi.BotAPI
	send    sender
	economy *service.EconomyService
	admin   *service.AdminService
	cfg     Config

	outbox chan tgbotapi.Chattable
	stopCh chan struct{}
	wg     sync.WaitGroup
	log    *slog.Logger
}

// New authorizes against the Bot API.
func New(token string, economy *service.EconomyService, admin *service.AdminService, cfg Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if cfg.BotUsername == "" {
		cfg.BotUsername = api.Self.UserName
	}

	b := newBot(api, economy, admin, cfg)
	b.api = api
	b.log.Info("bot authorized", "username", api.Self.UserName)
	return b, nil
}

func newBot(s sender, economy *service.EconomyService, admin *service.AdminService, cfg Config) *Bot {
	return &Bot{
		send:    s,
		economy: economy,
		admin:   admin,
		cfg:     cfg,
		outbox:  make(chan tgbotapi.Chattable, outboxSize),
		stopCh:  make(chan struct{}),
		log:     logger.With("component", "bot"),
	}
}

// Start runs the outbox worker and the update loop until Stop.
func (b *Bot) Start() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.drainOutbox()
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() || update.Message.From == nil {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	b.log.Info("stopping bot...")
	close(b.stopCh)
	if b.api != nil {
		b.api.StopReceivingUpdates()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reply := b.respond(ctx, msg)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.send.Send(reply); err != nil {
		b.log.Error("error sending message", "chat_id", msg.Chat.ID, "error", err)
	}
}

// enqueue hands a message to the outbox worker; it never blocks callers.
func (b *Bot) enqueue(c tgbotapi.Chattable) {
	select {
	case b.outbox <- c:
	default:
		b.log.Warn("bot outbox full, dropping notification")
	}
}

func (b *Bot) drainOutbox() {
	for {
		select {
		case <-b.stopCh:
			return
		case c := <-b.outbox:
			if _, err := b.send.Send(c); err != nil {
				b.log.Warn("notification not delivered", "error", err)
			}
		}
	}
}
