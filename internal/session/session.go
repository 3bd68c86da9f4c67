// Package session holds the state of one logged-in user for the lifetime of
// the process: the entity collections, notification settings, notification
// permission and the alert scheduler that watches them.
//
// Collections and settings are replaced wholesale on every change. Any change
// to what the scheduler depends on restarts it: the pending tick is cancelled
// and the scheduler is armed again with the current interval. The memory of
// already alerted items is kept across restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/agenda"
	"github.com/tazhate/leaderflow/internal/domain"
	"github.com/tazhate/leaderflow/internal/notify"
	"github.com/tazhate/leaderflow/internal/scheduler"
	"github.com/tazhate/leaderflow/internal/service"
)

var ErrClosed = errors.New("session closed")

type Deps struct {
	Entities *service.EntityService
	Settings *service.SettingsService
	Calendar *service.CalendarService // optional
	Composer *notify.Composer
	Sink     notify.Sink // nil when the environment cannot deliver notifications
	Logger   *zap.Logger
	Clock    func() time.Time
	Location *time.Location
}

type Session struct {
	user     domain.User
	entities *service.EntityService
	settings *service.SettingsService
	calendar *service.CalendarService
	composer *notify.Composer
	sink     notify.Sink
	logger   *zap.Logger
	clock    func() time.Time
	location *time.Location

	mu          sync.RWMutex
	collections domain.Collections
	prefs       domain.NotificationSettings
	permission  notify.Permission
	summary     agenda.Summary

	// restartMu serializes scheduler restarts and Close.
	restartMu sync.Mutex
	closed    bool
	memory    *notify.Memory
	scheduler *scheduler.Scheduler
}

// Open starts a session for user: it loads the user's data, checks the
// notification permission, shows the daily summary and arms the scheduler.
func Open(ctx context.Context, user domain.User, deps Deps) (*Session, error) {
	if deps.Entities == nil || deps.Settings == nil || deps.Composer == nil {
		return nil, fmt.Errorf("session: entities, settings and composer are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.L()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}

	s := &Session{
		user:     user,
		entities: deps.Entities,
		settings: deps.Settings,
		calendar: deps.Calendar,
		composer: deps.Composer,
		sink:     deps.Sink,
		logger:   deps.Logger.Named("session").With(zap.String("user", user.ID)),
		clock:    deps.Clock,
		location: deps.Location,
		memory:   notify.NewMemory(),
	}

	now := s.now()
	s.collections = s.entities.Load(user.ID, now)
	s.prefs = s.settings.Load(user.ID)
	s.permission = s.queryPermission(ctx)

	s.scheduler = scheduler.New(s, s.sink, s.memory, s.composer,
		scheduler.WithClock(s.now),
		scheduler.WithLogger(deps.Logger),
		scheduler.WithLocation(s.location),
	)

	s.summary = s.dailySummary(ctx, now)
	s.restart()

	s.logger.Info("session opened",
		zap.Int("events", len(s.collections.Events)),
		zap.Int("tasks", len(s.collections.Tasks)),
		zap.Int("documents", len(s.collections.Documents)),
		zap.String("permission", string(s.permission)),
	)
	return s, nil
}

func (s *Session) now() time.Time {
	return s.clock().In(s.location)
}

func (s *Session) User() domain.User {
	return s.user
}

// Collections returns the current collections. Callers must not modify the slices.
func (s *Session) Collections() domain.Collections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collections
}

func (s *Session) Settings() domain.NotificationSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

func (s *Session) Permission() notify.Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permission
}

// Summary is the daily summary computed when the session opened.
func (s *Session) Summary() agenda.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

func (s *Session) SchedulerState() scheduler.State {
	return s.scheduler.State()
}

func (s *Session) SchedulerInterval() time.Duration {
	return s.scheduler.Interval()
}

// Upcoming is the unified timeline for the next 24 hours.
func (s *Session) Upcoming(now time.Time) []agenda.Item {
	c := s.Collections()
	return agenda.Upcoming(c.Events, c.Tasks, c.Documents, now, agenda.Lookahead)
}

// HasImminent drives the alert badge.
func (s *Session) HasImminent(now time.Time) bool {
	return agenda.HasImminent(s.Upcoming(now), now, s.Settings().ReminderWindow())
}

func (s *Session) Today(now time.Time) agenda.Summary {
	c := s.Collections()
	return agenda.Today(c.Events, c.Tasks, now.In(s.location))
}

func (s *Session) queryPermission(ctx context.Context) notify.Permission {
	if s.sink == nil {
		return notify.PermissionUnsupported
	}
	p, err := s.sink.RequestPermission(ctx)
	if err != nil {
		s.logger.Warn("notification permission request failed", zap.Error(err))
		return notify.PermissionDefault
	}
	return p
}

func (s *Session) dailySummary(ctx context.Context, now time.Time) agenda.Summary {
	c := s.Collections()
	summary := agenda.Today(c.Events, c.Tasks, now)
	if summary.Empty() {
		return summary
	}

	s.logger.Info("daily summary",
		zap.Int("events_today", len(summary.Events)),
		zap.Int("urgent_tasks", len(summary.UrgentTasks)),
	)
	if s.Permission() != notify.PermissionGranted {
		return summary
	}

	n, err := s.composer.DailySummary(&s.user, summary, !s.Settings().EnableSound)
	if err != nil {
		s.logger.Error("compose daily summary", zap.Error(err))
		return summary
	}
	if err := s.sink.Notify(ctx, n); err != nil {
		s.logger.Warn("deliver daily summary", zap.Error(err))
	}
	return summary
}

// restart cancels the pending tick and arms the scheduler again with the
// current settings, or leaves it idle without permission.
func (s *Session) restart() {
	s.restartMu.Lock()
	defer s.restartMu.Unlock()
	if s.closed {
		return
	}

	s.mu.RLock()
	granted := s.permission == notify.PermissionGranted
	interval := s.prefs.Interval()
	s.mu.RUnlock()

	if !granted {
		s.scheduler.Disarm()
		return
	}
	if err := s.scheduler.Arm(interval); err != nil {
		s.logger.Error("arm scheduler", zap.Error(err))
	}
}

// RequestPermission asks the sink for permission again. Granting it sends a
// confirmation notification and arms the scheduler.
func (s *Session) RequestPermission(ctx context.Context) (notify.Permission, error) {
	if s.isClosed() {
		return "", ErrClosed
	}
	if s.sink == nil {
		return notify.PermissionUnsupported, nil
	}

	p, err := s.sink.RequestPermission(ctx)
	if err != nil {
		s.logger.Warn("notification permission request failed", zap.Error(err))
		return s.Permission(), nil
	}

	s.mu.Lock()
	wasGranted := s.permission == notify.PermissionGranted
	s.permission = p
	s.mu.Unlock()

	if p == notify.PermissionGranted && !wasGranted {
		if n, err := s.composer.PermissionGranted(); err == nil {
			if err := s.sink.Notify(ctx, n); err != nil {
				s.logger.Warn("deliver permission confirmation", zap.Error(err))
			}
		}
	}
	s.restart()
	return p, nil
}

func (s *Session) UpdateSettings(prefs domain.NotificationSettings) error {
	if s.isClosed() {
		return ErrClosed
	}
	if err := s.settings.Save(s.user.ID, prefs); err != nil {
		return err
	}
	s.mu.Lock()
	s.prefs = prefs
	s.mu.Unlock()

	s.restart()
	return nil
}

// update applies fn to a copy of the collections, publishes the result and
// restarts the scheduler. fn must persist what it changes.
func (s *Session) update(fn func(c *domain.Collections) error) error {
	if s.isClosed() {
		return ErrClosed
	}

	s.mu.Lock()
	next := s.collections
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.collections = next
	s.mu.Unlock()

	s.restart()
	return nil
}

func (s *Session) UpsertEvent(e domain.Event) (domain.Event, error) {
	var saved domain.Event
	err := s.update(func(c *domain.Collections) error {
		events, ev, err := s.entities.UpsertEvent(c.Events, e, s.now())
		if err != nil {
			return err
		}
		if err := s.entities.SaveEvents(s.user.ID, events); err != nil {
			return err
		}
		c.Events, saved = events, ev
		return nil
	})
	return saved, err
}

func (s *Session) UpsertTask(t domain.Task) (domain.Task, error) {
	var saved domain.Task
	err := s.update(func(c *domain.Collections) error {
		tasks, task, err := s.entities.UpsertTask(c.Tasks, t)
		if err != nil {
			return err
		}
		if err := s.entities.SaveTasks(s.user.ID, tasks); err != nil {
			return err
		}
		c.Tasks, saved = tasks, task
		return nil
	})
	return saved, err
}

func (s *Session) ToggleTask(id string) error {
	return s.update(func(c *domain.Collections) error {
		tasks, err := s.entities.ToggleTask(c.Tasks, id)
		if err != nil {
			return err
		}
		if err := s.entities.SaveTasks(s.user.ID, tasks); err != nil {
			return err
		}
		c.Tasks = tasks
		return nil
	})
}

func (s *Session) UpsertDocument(d domain.Document) (domain.Document, error) {
	var saved domain.Document
	err := s.update(func(c *domain.Collections) error {
		docs, doc, err := s.entities.UpsertDocument(c.Documents, d, s.now())
		if err != nil {
			return err
		}
		if err := s.entities.SaveDocuments(s.user.ID, docs); err != nil {
			return err
		}
		c.Documents, saved = docs, doc
		return nil
	})
	return saved, err
}

func (s *Session) SetDocumentStatus(id string, status domain.DocumentStatus) error {
	return s.update(func(c *domain.Collections) error {
		docs, err := s.entities.SetDocumentStatus(c.Documents, id, status)
		if err != nil {
			return err
		}
		if err := s.entities.SaveDocuments(s.user.ID, docs); err != nil {
			return err
		}
		c.Documents = docs
		return nil
	})
}

// ImportCalendar pulls remote calendar events for the next days and merges
// them into the user's events.
func (s *Session) ImportCalendar(ctx context.Context, days int) (service.SyncResult, error) {
	if s.calendar == nil || !s.calendar.IsConfigured() {
		return service.SyncResult{}, domain.ErrNotConfigured
	}
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	to := from.AddDate(0, 0, days)

	remote, err := s.calendar.Fetch(ctx, from, to)
	if err != nil {
		return service.SyncResult{}, err
	}

	var result service.SyncResult
	err = s.update(func(c *domain.Collections) error {
		events, r := service.Merge(c.Events, remote, from, to)
		if err := s.entities.SaveEvents(s.user.ID, events); err != nil {
			return err
		}
		c.Events, result = events, r
		return nil
	})
	if err == nil {
		s.logger.Info("calendar imported",
			zap.Int("added", result.Added),
			zap.Int("updated", result.Updated),
			zap.Int("deleted", result.Deleted),
		)
	}
	return result, err
}

// ExportEvent pushes one local event to the remote calendar.
func (s *Session) ExportEvent(ctx context.Context, id string) error {
	if s.calendar == nil || !s.calendar.IsConfigured() {
		return domain.ErrNotConfigured
	}
	for _, e := range s.Collections().Events {
		if e.ID == id {
			return s.calendar.Export(ctx, e)
		}
	}
	return fmt.Errorf("event %s: %w", id, domain.ErrNotFound)
}

func (s *Session) isClosed() bool {
	s.restartMu.Lock()
	defer s.restartMu.Unlock()
	return s.closed
}

// Close ends the session. The scheduler is stopped before Close returns.
func (s *Session) Close() {
	s.restartMu.Lock()
	defer s.restartMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.scheduler.Stop()
	s.logger.Info("session closed", zap.Int("alerted_items", s.memory.Len()))
}
