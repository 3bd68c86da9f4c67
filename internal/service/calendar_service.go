package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/clients/caldav"
	"github.com/tazhate/leaderflow/internal/domain"
)

// Imported events get ids with this prefix so they can be told apart from
// events created locally.
const caldavIDPrefix = "caldav-"

// CalendarClient is the subset of the CalDAV client the service uses.
type CalendarClient interface {
	DiscoverCalendars(ctx context.Context) ([]caldav.Calendar, error)
	GetEvents(ctx context.Context, calendarPath string, from, to time.Time) ([]caldav.Event, error)
	PutEvent(ctx context.Context, calendarPath string, event *caldav.Event) error
}

// CalendarService imports events from and exports events to a CalDAV calendar.
type CalendarService struct {
	client       CalendarClient
	calendarPath string
	logger       *zap.Logger
}

func NewCalendarService(client CalendarClient, calendarPath string, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.L()
	}
	return &CalendarService{client: client, calendarPath: calendarPath, logger: logger.Named("calendar")}
}

func (s *CalendarService) IsConfigured() bool {
	return s.client != nil && s.calendarPath != ""
}

func (s *CalendarService) DiscoverCalendars(ctx context.Context) ([]caldav.Calendar, error) {
	if s.client == nil {
		return nil, domain.ErrNotConfigured
	}
	return s.client.DiscoverCalendars(ctx)
}

// SyncResult contains sync operation results
type SyncResult struct {
	Added   int
	Updated int
	Deleted int
}

// Fetch reads the remote events in [from, to).
func (s *CalendarService) Fetch(ctx context.Context, from, to time.Time) ([]caldav.Event, error) {
	if !s.IsConfigured() {
		return nil, domain.ErrNotConfigured
	}
	remote, err := s.client.GetEvents(ctx, s.calendarPath, from, to)
	if err != nil {
		return nil, fmt.Errorf("get remote events: %w", err)
	}
	s.logger.Debug("fetched remote events", zap.Int("count", len(remote)), zap.Time("from", from), zap.Time("to", to))
	return remote, nil
}

// Merge folds remote events fetched for [from, to) into events and returns
// the new list. Imported events that disappeared remotely are dropped; local
// events are left untouched.
func Merge(events []domain.Event, remote []caldav.Event, from, to time.Time) ([]domain.Event, SyncResult) {
	var result SyncResult

	byID := make(map[string]domain.Event, len(remote))
	for _, re := range remote {
		e := FromCalDAV(re)
		byID[e.ID] = e
	}

	out := make([]domain.Event, 0, len(events)+len(remote))
	seen := make(map[string]bool, len(remote))
	for _, local := range events {
		imported, ok := byID[local.ID]
		switch {
		case ok:
			seen[local.ID] = true
			if eventChanged(local, imported) {
				result.Updated++
				out = append(out, imported)
			} else {
				out = append(out, local)
			}
		case strings.HasPrefix(local.ID, caldavIDPrefix) && !local.Start.Before(from) && local.Start.Before(to):
			result.Deleted++
		default:
			out = append(out, local)
		}
	}
	for _, re := range remote {
		id := caldavIDPrefix + re.UID
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, byID[id])
		result.Added++
	}
	return out, result
}

// Export pushes one event to the remote calendar.
func (s *CalendarService) Export(ctx context.Context, e domain.Event) error {
	if !s.IsConfigured() {
		return domain.ErrNotConfigured
	}
	ce := ToCalDAV(e)
	if err := s.client.PutEvent(ctx, s.calendarPath, &ce); err != nil {
		return fmt.Errorf("export event %s: %w", e.ID, err)
	}
	s.logger.Info("event exported", zap.String("id", e.ID), zap.String("uid", ce.UID))
	return nil
}

// FromCalDAV maps a remote event. The event type comes from the first
// category naming a known type.
func FromCalDAV(re caldav.Event) domain.Event {
	e := domain.Event{
		ID:          caldavIDPrefix + re.UID,
		Title:       re.Summary,
		Start:       re.StartTime,
		End:         re.EndTime,
		Type:        domain.EventGeneral,
		Location:    re.Location,
		Description: re.Description,
	}
	for _, c := range re.Categories {
		if t := domain.EventType(c); t.Valid() {
			e.Type = t
			break
		}
	}
	if e.End.IsZero() {
		e.End = e.Start.Add(time.Hour)
	}
	return e
}

func ToCalDAV(e domain.Event) caldav.Event {
	// Imported events keep their remote UID.
	uid := e.ID + "@leaderflow"
	if strings.HasPrefix(e.ID, caldavIDPrefix) {
		uid = strings.TrimPrefix(e.ID, caldavIDPrefix)
	}
	return caldav.Event{
		UID:         uid,
		Summary:     e.Title,
		Description: e.Description,
		Location:    e.Location,
		Categories:  []string{string(e.Type)},
		StartTime:   e.Start,
		EndTime:     e.End,
	}
}

func eventChanged(local, remote domain.Event) bool {
	return local.Title != remote.Title ||
		local.Description != remote.Description ||
		local.Location != remote.Location ||
		local.Type != remote.Type ||
		!local.Start.Equal(remote.Start) ||
		!local.End.Equal(remote.End)
}
