package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/notify"
)

// telegramAPI is the part of *tgbotapi.BotAPI the package uses.
type telegramAPI interface {
	GetMe() (tgbotapi.User, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Notifier delivers notifications as Telegram messages to a single chat.
type Notifier struct {
	api    telegramAPI
	chatID int64
	logger *zap.Logger
}

var _ notify.Sink = (*Notifier)(nil)

// Connect authorizes the bot token and routes the library's logging through zap.
func Connect(token string, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	if logger == nil {
		logger = zap.L()
	}
	if err := tgbotapi.SetLogger(zap.NewStdLog(logger.Named("telegram"))); err != nil {
		return nil, fmt.Errorf("set telegram logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return api, nil
}

func NewNotifier(api telegramAPI, chatID int64, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.L()
	}
	return &Notifier{api: api, chatID: chatID, logger: logger.Named("telegram")}
}

// RequestPermission reports granted when the bot is reachable and a chat is
// configured. Telegram has no user-facing permission prompt.
func (n *Notifier) RequestPermission(ctx context.Context) (notify.Permission, error) {
	if n.chatID == 0 {
		return notify.PermissionDenied, nil
	}
	if err := ctx.Err(); err != nil {
		return notify.PermissionDefault, err
	}
	if _, err := n.api.GetMe(); err != nil {
		return notify.PermissionDefault, fmt.Errorf("telegram get me: %w", err)
	}
	return notify.PermissionGranted, nil
}

func (n *Notifier) Notify(ctx context.Context, msg notify.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text := "<b>" + tgbotapi.EscapeText(tgbotapi.ModeHTML, msg.Title) + "</b>\n" +
		tgbotapi.EscapeText(tgbotapi.ModeHTML, msg.Body)

	m := tgbotapi.NewMessage(n.chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.DisableNotification = msg.Silent
	if _, err := n.api.Send(m); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	n.logger.Debug("notification sent", zap.String("tag", msg.Tag), zap.Bool("silent", msg.Silent))
	return nil
}
