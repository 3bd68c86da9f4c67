package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/agenda"
)

func (b *Bot) setCommands() {
	commands := []tgbotapi.BotCommand{
		{Command: "upcoming", Description: "⏰ Sắp diễn ra (24 giờ)"},
		{Command: "today", Description: "📅 Lịch hôm nay"},
		{Command: "help", Description: "❓ Trợ giúp"},
	}
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		b.logger.Warn("set commands", zap.Error(err))
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		b.sendMessage(chatID, helpText, nil)
	case "upcoming":
		b.sendMessage(chatID, b.upcomingView(), nil)
	case "today":
		text, kb := b.todayView()
		b.sendMessage(chatID, text, kb)
	default:
		b.sendMessage(chatID, "Lệnh không hợp lệ. /help để xem danh sách lệnh", nil)
	}
}

const helpText = `<b>Lệnh:</b>
/upcoming — việc sắp diễn ra trong 24 giờ
/today — sự kiện hôm nay và việc gấp`

func (b *Bot) upcomingView() string {
	now := b.now()
	items := b.agenda.Upcoming(now)
	if len(items) == 0 {
		return "Không có việc nào trong 24 giờ tới."
	}

	window := b.agenda.Settings().ReminderWindow()
	var sb strings.Builder
	sb.WriteString("<b>Sắp diễn ra</b>\n\n")
	for _, it := range items {
		marker := "▫️"
		if agenda.HasImminent([]agenda.Item{it}, now, window) {
			marker = "🔴"
		}
		fmt.Fprintf(&sb, "%s %s %s <b>%s</b>\n",
			marker,
			it.Date.In(now.Location()).Format("15:04"),
			kindEmoji(it.Kind),
			tgbotapi.EscapeText(tgbotapi.ModeHTML, it.Title()),
		)
	}
	return sb.String()
}

func (b *Bot) todayView() (string, *tgbotapi.InlineKeyboardMarkup) {
	now := b.now()
	summary := b.agenda.Today(now)
	if summary.Empty() {
		return "Hôm nay không có sự kiện hay việc gấp.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Hôm nay %s</b>\n", now.Format("02/01"))
	if len(summary.Events) > 0 {
		sb.WriteString("\n<b>Sự kiện</b>\n")
		for _, e := range summary.Events {
			fmt.Fprintf(&sb, "%s %s\n", e.FormatTime(), tgbotapi.EscapeText(tgbotapi.ModeHTML, e.Title))
		}
	}
	if len(summary.UrgentTasks) > 0 {
		sb.WriteString("\n<b>Việc gấp</b>\n")
		for _, t := range summary.UrgentTasks {
			fmt.Fprintf(&sb, "%s %s\n", t.Priority.Emoji(), tgbotapi.EscapeText(tgbotapi.ModeHTML, t.Title))
		}
	}
	return sb.String(), taskKeyboard(summary.UrgentTasks)
}

func kindEmoji(k agenda.Kind) string {
	switch k {
	case agenda.KindTask:
		return "📌"
	case agenda.KindDocument:
		return "📄"
	default:
		return "📅"
	}
}
