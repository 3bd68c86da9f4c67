package notify

import (
	"embed"
	"fmt"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"github.com/tazhate/leaderflow/internal/agenda"
	"github.com/tazhate/leaderflow/internal/domain"
)

//go:embed locales/*.toml
var localeFS embed.FS

const DailySummaryTag = "daily-summary"

// Composer renders alert and summary texts from the embedded message catalog.
type Composer struct {
	localizer *i18n.Localizer
}

func NewComposer() (*Composer, error) {
	bundle := i18n.NewBundle(language.Vietnamese)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	for _, e := range entries {
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", e.Name(), err)
		}
	}

	return &Composer{localizer: i18n.NewLocalizer(bundle, language.Vietnamese.String())}, nil
}

func (c *Composer) localize(id string, data map[string]any) (string, error) {
	text, err := c.localizer.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil {
		return "", fmt.Errorf("localize %s: %w", id, err)
	}
	return text, nil
}

// Alert builds the imminent-item notification for it, seen at now.
func (c *Composer) Alert(it agenda.Item, now time.Time, silent bool) (Notification, error) {
	minutes := agenda.MinutesLeft(it, now)

	var (
		id   string
		data map[string]any
	)
	switch it.Kind {
	case agenda.KindEvent:
		id, data = "AlertEvent", map[string]any{"Title": it.Event.Title, "Minutes": minutes}
	case agenda.KindTask:
		id, data = "AlertTask", map[string]any{"Title": it.Task.Title, "Minutes": minutes}
	case agenda.KindDocument:
		id, data = "AlertDocument", map[string]any{"Code": it.Document.Code, "Minutes": minutes}
	default:
		return Notification{}, fmt.Errorf("unknown item kind %q", it.Kind)
	}

	title, err := c.localize("AlertTitle", nil)
	if err != nil {
		return Notification{}, err
	}
	body, err := c.localize(id, data)
	if err != nil {
		return Notification{}, err
	}

	return Notification{
		Title:              title,
		Body:               body,
		Tag:                it.ID(),
		Silent:             silent,
		RequireInteraction: true,
	}, nil
}

// DailySummary builds the once-per-session overview notification.
func (c *Composer) DailySummary(user *domain.User, s agenda.Summary, silent bool) (Notification, error) {
	title, err := c.localize("SummaryTitle", nil)
	if err != nil {
		return Notification{}, err
	}
	body, err := c.localize("SummaryBody", map[string]any{
		"FullName": user.FullName,
		"Events":   len(s.Events),
		"Tasks":    len(s.UrgentTasks),
	})
	if err != nil {
		return Notification{}, err
	}
	return Notification{Title: title, Body: body, Tag: DailySummaryTag, Silent: silent}, nil
}

// PermissionGranted is sent once right after the user enables alerts.
func (c *Composer) PermissionGranted() (Notification, error) {
	title, err := c.localize("PermissionTitle", nil)
	if err != nil {
		return Notification{}, err
	}
	body, err := c.localize("PermissionBody", nil)
	if err != nil {
		return Notification{}, err
	}
	return Notification{Title: title, Body: body}, nil
}
