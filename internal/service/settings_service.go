package service

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/agenda"
	"github.com/tazhate/leaderflow/internal/domain"
	"github.com/tazhate/leaderflow/internal/storage"
)

type SettingsService struct {
	store  KeyValueStore
	logger *zap.Logger
}

func NewSettingsService(store KeyValueStore, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.L()
	}
	return &SettingsService{store: store, logger: logger.Named("settings")}
}

// Load returns the stored settings, or the defaults when none are stored or
// the stored value cannot be used.
func (s *SettingsService) Load(userID string) domain.NotificationSettings {
	key := storage.ScopedKey(userID, storage.KindNotifSettings)
	raw, ok, err := s.store.Get(key)
	if err != nil {
		s.logger.Error("read settings, using defaults", zap.String("key", key), zap.Error(err))
		return domain.DefaultNotificationSettings()
	}
	if !ok {
		return domain.DefaultNotificationSettings()
	}

	var settings domain.NotificationSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		s.logger.Error("malformed settings, using defaults", zap.String("key", key), zap.Error(err))
		return domain.DefaultNotificationSettings()
	}
	if err := settings.Validate(); err != nil {
		s.logger.Error("stored settings rejected, using defaults", zap.String("key", key), zap.Error(err))
		return domain.DefaultNotificationSettings()
	}
	return settings
}

func (s *SettingsService) Save(userID string, settings domain.NotificationSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if settings.ReminderWindow() > agenda.Lookahead {
		// Only items within the fixed lookahead are ever considered, so the
		// effective window is capped at the lookahead.
		s.logger.Warn("reminder time exceeds the upcoming lookahead",
			zap.Int("reminder_minutes", settings.ReminderTime),
			zap.Duration("lookahead", agenda.Lookahead),
		)
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.store.Set(storage.ScopedKey(userID, storage.KindNotifSettings), string(data)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
