package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/agenda"
	"github.com/tazhate/leaderflow/internal/domain"
)

// Agenda is the session view the bot commands read from.
type Agenda interface {
	Upcoming(now time.Time) []agenda.Item
	Today(now time.Time) agenda.Summary
	Settings() domain.NotificationSettings
	ToggleTask(id string) error
}

// Bot answers commands from the configured chat only.
type Bot struct {
	api    telegramAPI
	chatID int64
	agenda Agenda
	now    func() time.Time
	logger *zap.Logger
}

func New(api telegramAPI, chatID int64, a Agenda, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.L()
	}
	return &Bot{
		api:    api,
		chatID: chatID,
		agenda: a,
		now:    time.Now,
		logger: logger.Named("bot"),
	}
}

// Run consumes updates until ctx is done or the channel closes.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	b.setCommands()
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message != nil {
		b.handleMessage(update.Message)
	} else if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) allowed(chat *tgbotapi.Chat) bool {
	return chat != nil && chat.ID == b.chatID
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if !b.allowed(msg.Chat) {
		if msg.Chat != nil {
			b.logger.Warn("message from unknown chat", zap.Int64("chat_id", msg.Chat.ID))
		}
		return
	}
	if !msg.IsCommand() {
		return
	}
	b.handleCommand(msg)
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || !b.allowed(cb.Message.Chat) {
		return
	}

	action, id, _ := strings.Cut(cb.Data, ":")
	answer := ""
	switch action {
	case "done":
		err := b.agenda.ToggleTask(id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			answer = "Không tìm thấy công việc"
		case err != nil:
			b.logger.Error("toggle task", zap.String("id", id), zap.Error(err))
			answer = "Lỗi: " + err.Error()
		default:
			answer = "✅ Đã cập nhật"
			b.refreshToday(cb.Message.Chat.ID, cb.Message.MessageID)
		}
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, answer)); err != nil {
		b.logger.Warn("answer callback", zap.Error(err))
	}
}

func (b *Bot) sendMessage(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("send message", zap.Error(err))
	}
}

func (b *Bot) refreshToday(chatID int64, msgID int) {
	text, kb := b.todayView()
	edit := tgbotapi.NewEditMessageText(chatID, msgID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = kb
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("edit message", zap.Error(err))
	}
}
