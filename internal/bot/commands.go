package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"tapcoin/internal/domain"
	"tapcoin/internal/economy"
	"tapcoin/internal/service"
	"tapcoin/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	defaultTop = 10
	maxTop     = 50
)

func (b *Bot) respond(ctx context.Context, msg *tgbotapi.Message) tgbotapi.MessageConfig {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg, args)
	case "help":
		return tgbotapi.NewMessage(chatID, b.helpMessage(b.isAdmin(msg.From.ID)))
	case "balance":
		return tgbotapi.NewMessage(chatID, b.handleBalance(ctx, msg.From.ID))
	case "top":
		return tgbotapi.NewMessage(chatID, b.handleTop(ctx, args))
	case "ref":
		return tgbotapi.NewMessage(chatID, b.handleRef(ctx, msg.From.ID))
	}

	if !b.isAdmin(msg.From.ID) {
		return tgbotapi.NewMessage(chatID, "Unknown command. Use /help for the list.")
	}

	switch msg.Command() {
	case "stats":
		return tgbotapi.NewMessage(chatID, b.handleStats(ctx))
	case "player":
		return tgbotapi.NewMessage(chatID, b.handlePlayer(ctx, args))
	case "resetdaily":
		return tgbotapi.NewMessage(chatID, b.handleResetDaily(ctx, msg.From.ID, args))
	case "addcoins":
		return tgbotapi.NewMessage(chatID, b.handleAddCoins(ctx, msg.From.ID, args))
	}
	return tgbotapi.NewMessage(chatID, "Unknown command. Use /help for the list.")
}

func (b *Bot) helpMessage(admin bool) string {
	text := `<b>TapCoin</b>

/start - open the game
/balance - your coins and level
/top [n] - leaderboard
/ref - your invite link`
	if admin {
		text += `

<b>Operator</b>
/stats - player counters
/player &lt;tg_id&gt; - account details
/resetdaily &lt;tg_id&gt; - reopen a completed daily cycle
/addcoins &lt;tg_id&gt; &lt;amount&gt; - credit coins`
	}
	return text
}

func profileOf(u *tgbotapi.User) domain.Profile {
	return domain.Profile{TelegramID: u.ID, Username: u.UserName, FirstName: u.FirstName}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message, args string) tgbotapi.MessageConfig {
	acc, created, err := b.economy.Register(ctx, profileOf(msg.From), telegram.ReferralCode(args))
	if err != nil {
		b.log.Error("start: register failed", "tg_id", msg.From.ID, "error", err)
		return tgbotapi.NewMessage(msg.Chat.ID, "Something went wrong, please try again later.")
	}

	var text string
	if created {
		text = fmt.Sprintf("Welcome, %s! Tap the coin, buy upgrades and collect daily rewards.", html.EscapeString(acc.DisplayName()))
		if acc.ReferredBy != nil {
			text += fmt.Sprintf("\nYour friend's invite earned you %s coins.", economy.FormatCompact(b.economy.ReferralBonus))
		}
	} else {
		text = fmt.Sprintf("Welcome back, %s! You have %s coins.", html.EscapeString(acc.DisplayName()), economy.FormatCompact(acc.Coins))
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	if b.cfg.WebAppURL != "" {
		reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("Play", b.cfg.WebAppURL)),
		)
	}
	return reply
}

func (b *Bot) handleBalance(ctx context.Context, telegramID int64) string {
	view, err := b.economy.State(ctx, telegramID)
	if errors.Is(err, service.ErrAccountNotFound) {
		return "You have no account yet. Send /start to begin."
	}
	if err != nil {
		return "Could not load your balance, please try again later."
	}
	return formatBalance(view)
}

func formatBalance(v *service.AccountView) string {
	return fmt.Sprintf(`<b>Balance</b>
Coins: %s
Level: %d (tap level %d)
Profit per hour: %s
Energy: %d/%d`,
		v.CoinsFormatted,
		v.CoinLevel,
		v.Level,
		v.ProfitPerHourFormatted,
		int64(v.Energy), int64(v.MaxEnergy),
	)
}

func (b *Bot) handleTop(ctx context.Context, args string) string {
	limit := defaultTop
	if n, err := strconv.Atoi(args); err == nil && n > 0 && n <= maxTop {
		limit = n
	}

	top, err := b.economy.Leaderboard(ctx, limit)
	if err != nil {
		return "Leaderboard is unavailable right now."
	}
	return formatLeaderboard(top)
}

func formatLeaderboard(top []domain.LeaderboardEntry) string {
	if len(top) == 0 {
		return "No players yet."
	}
	var sb strings.Builder
	sb.WriteString("<b>Top players</b>\n\n")
	for _, e := range top {
		fmt.Fprintf(&sb, "%d. %s: %s\n", e.Rank, html.EscapeString(e.Name), economy.FormatCompact(e.Coins))
	}
	return sb.String()
}

func (b *Bot) handleRef(ctx context.Context, telegramID int64) string {
	stats, err := b.economy.ReferralStats(ctx, telegramID)
	if errors.Is(err, service.ErrAccountNotFound) {
		return "You have no account yet. Send /start to begin."
	}
	if err != nil {
		return "Could not load your invite link, please try again later."
	}
	return fmt.Sprintf("Invite friends with %s\nFriends joined: %d\nEarned: %s coins",
		telegram.ReferralLink(b.cfg.BotUsername, stats.Code),
		stats.TotalReferrals,
		economy.FormatCompact(stats.TotalEarned),
	)
}

func (b *Bot) handleStats(ctx context.Context) string {
	st, err := b.admin.Stats(ctx)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf(`<b>Stats</b>
Accounts: %d
Active today: %d
Coins in circulation: %s
Referred players: %d`,
		st.Accounts, st.ActiveToday, economy.FormatCompact(st.TotalCoins), st.TotalReferred)
}

func parseTelegramID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id, err == nil && id > 0
}

func (b *Bot) handlePlayer(ctx context.Context, args string) string {
	id, ok := parseTelegramID(args)
	if !ok {
		return "Usage: /player &lt;tg_id&gt;"
	}
	view, err := b.admin.Player(ctx, id)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("<b>%s</b> (%d)\n%s\nDaily: day %d, streak %d, completed %t",
		html.EscapeString(view.DisplayName()), view.TelegramID, formatBalance(view),
		view.DailyReward.Day, view.DailyReward.Streak, view.DailyReward.Completed)
}

func (b *Bot) handleResetDaily(ctx context.Context, adminID int64, args string) string {
	id, ok := parseTelegramID(args)
	if !ok {
		return "Usage: /resetdaily &lt;tg_id&gt;"
	}
	if err := b.admin.ResetDaily(ctx, adminID, id); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Daily cycle reset for %d.", id)
}

func (b *Bot) handleAddCoins(ctx context.Context, adminID int64, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		return "Usage: /addcoins &lt;tg_id&gt; &lt;amount&gt;"
	}
	id, ok := parseTelegramID(parts[0])
	if !ok {
		return "Invalid tg_id"
	}
	amount, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "Invalid amount"
	}
	balance, err := b.admin.GrantCoins(ctx, adminID, id, amount)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Credited %s coins to %d. Balance: %s", economy.FormatCompact(amount), id, economy.FormatCompact(balance))
}
