package bot

import (
	"context"
	"fmt"
	"html"

	"tapcoin/internal/economy"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ReferralJoined implements service.Notifier. Private chat ids equal user
// ids, so the referrer is addressed directly.
func (b *Bot) ReferralJoined(_ context.Context, referrerTelegramID int64, newcomer string, bonus float64) {
	msg := tgbotapi.NewMessage(referrerTelegramID, fmt.Sprintf(
		"%s joined with your invite link. You both received %s coins!",
		html.EscapeString(newcomer), economy.FormatCompact(bonus)))
	msg.ParseMode = tgbotapi.ModeHTML
	b.enqueue(msg)
}

// DailyCycleCompleted implements service.Notifier.
func (b *Bot) DailyCycleCompleted(_ context.Context, telegramID int64) {
	msg := tgbotapi.NewMessage(telegramID,
		"You claimed all 30 daily rewards. The cycle is complete; an operator can start a new one for you.")
	b.enqueue(msg)
}
