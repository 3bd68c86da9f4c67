package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SinkLog      = "log"
	SinkTelegram = "telegram"
	SinkNone     = "none"
)

type Config struct {
	DatabasePath string
	Timezone     *time.Location
	ServerPort   string
	Notify       NotifyConfig
	CalDAV       CalDAVConfig
}

type NotifyConfig struct {
	Sink           string
	TelegramToken  string
	TelegramChatID int64
}

type CalDAVConfig struct {
	URL          string
	Username     string
	Password     string
	CalendarPath string
}

func (c CalDAVConfig) IsConfigured() bool {
	return c.URL != "" && c.Username != "" && c.Password != ""
}

// Load reads .env (if present), then leaderflow.yaml (if present), then
// LEADERFLOW_* environment variables. configFile overrides the yaml lookup.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("database.path", "./data/leaderflow.db")
	v.SetDefault("timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("server.port", "8080")
	v.SetDefault("notify.sink", SinkLog)
	v.SetDefault("notify.telegram.token", "")
	v.SetDefault("notify.telegram.chat_id", 0)
	v.SetDefault("caldav.url", "")
	v.SetDefault("caldav.username", "")
	v.SetDefault("caldav.password", "")
	v.SetDefault("caldav.calendar_path", "")

	v.SetEnvPrefix("LEADERFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("leaderflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	tz, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}

	cfg := &Config{
		DatabasePath: v.GetString("database.path"),
		Timezone:     tz,
		ServerPort:   v.GetString("server.port"),
		Notify: NotifyConfig{
			Sink:           strings.ToLower(v.GetString("notify.sink")),
			TelegramToken:  v.GetString("notify.telegram.token"),
			TelegramChatID: v.GetInt64("notify.telegram.chat_id"),
		},
		CalDAV: CalDAVConfig{
			URL:          v.GetString("caldav.url"),
			Username:     v.GetString("caldav.username"),
			Password:     v.GetString("caldav.password"),
			CalendarPath: v.GetString("caldav.calendar_path"),
		},
	}

	switch cfg.Notify.Sink {
	case SinkLog, SinkNone:
	case SinkTelegram:
		if cfg.Notify.TelegramToken == "" {
			return nil, fmt.Errorf("LEADERFLOW_NOTIFY_TELEGRAM_TOKEN is required for the telegram sink")
		}
	default:
		return nil, fmt.Errorf("unknown notify sink %q", cfg.Notify.Sink)
	}
	return cfg, nil
}
