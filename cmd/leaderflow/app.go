package main

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/config"
	"github.com/tazhate/leaderflow/internal/bot"
	"github.com/tazhate/leaderflow/internal/clients/caldav"
	"github.com/tazhate/leaderflow/internal/domain"
	"github.com/tazhate/leaderflow/internal/notify"
	"github.com/tazhate/leaderflow/internal/service"
	"github.com/tazhate/leaderflow/internal/storage"
)

// app holds what every command needs: config, logger, storage and services.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    *storage.Storage
	users    *service.UserService
	entities *service.EntityService
	settings *service.SettingsService
	calendar *service.CalendarService
}

func newLogger() (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newApp() (*app, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		users:    service.NewUserService(store, logger),
		entities: service.NewEntityService(store, logger),
		settings: service.NewSettingsService(store, logger),
	}
	if cfg.CalDAV.IsConfigured() {
		client := caldav.NewClient(cfg.CalDAV.URL, cfg.CalDAV.Username, cfg.CalDAV.Password)
		a.calendar = service.NewCalendarService(client, cfg.CalDAV.CalendarPath, logger)
	}

	if err := a.users.EnsureAdmin(); err != nil {
		a.Close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close storage", zap.Error(err))
	}
	if err := a.logger.Sync(); err != nil {
		a.logger.Debug("failed to sync logger", zap.Error(err))
	}
}

func (a *app) now() time.Time {
	return time.Now().In(a.cfg.Timezone)
}

// login authenticates the --user/--password pair.
func (a *app) login() (*domain.User, error) {
	if username == "" {
		return nil, fmt.Errorf("--user is required")
	}
	user, err := a.users.Authenticate(username, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// newSink returns the configured notification sink, or nil when notifications
// are unavailable. botAPI is set for the telegram sink.
func (a *app) newSink() (sink notify.Sink, botAPI *tgbotapi.BotAPI) {
	switch a.cfg.Notify.Sink {
	case config.SinkLog:
		return notify.NewLogSink(a.logger), nil
	case config.SinkTelegram:
		api, err := bot.Connect(a.cfg.Notify.TelegramToken, a.logger)
		if err != nil {
			a.logger.Warn("telegram unavailable, notifications disabled", zap.Error(err))
			return nil, nil
		}
		return bot.NewNotifier(api, a.cfg.Notify.TelegramChatID, a.logger), api
	default:
		return nil, nil
	}
}

func (a *app) calendarService() (*service.CalendarService, error) {
	if a.calendar == nil {
		return nil, fmt.Errorf("%w: set LEADERFLOW_CALDAV_URL, _USERNAME and _PASSWORD", domain.ErrNotConfigured)
	}
	return a.calendar, nil
}
