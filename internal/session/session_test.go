package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/domain"
	"github.com/tazhate/leaderflow/internal/notify"
	"github.com/tazhate/leaderflow/internal/scheduler"
	"github.com/tazhate/leaderflow/internal/service"
	"github.com/tazhate/leaderflow/internal/storage"
)

var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu         sync.Mutex
	permission notify.Permission
	sent       []notify.Notification
}

func (s *recordingSink) RequestPermission(context.Context) (notify.Permission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission, nil
}

func (s *recordingSink) Notify(_ context.Context, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

func (s *recordingSink) tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, n := range s.sent {
		out = append(out, n.Tag)
	}
	return out
}

func (s *recordingSink) grant() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permission = notify.PermissionGranted
}

func newDeps(t *testing.T, sink notify.Sink) Deps {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	composer, err := notify.NewComposer()
	require.NoError(t, err)

	logger := zap.NewNop()
	return Deps{
		Entities: service.NewEntityService(store, logger),
		Settings: service.NewSettingsService(store, logger),
		Composer: composer,
		Sink:     sink,
		Logger:   logger,
		Clock:    func() time.Time { return now },
		Location: time.UTC,
	}
}

func open(t *testing.T, deps Deps) *Session {
	t.Helper()
	s, err := Open(t.Context(), domain.User{ID: "leader", FullName: "Nguyễn Văn A", Role: domain.RoleLeader}, deps)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestOpen_SummaryIsSilentWithoutSound(t *testing.T) {
	sink := &recordingSink{permission: notify.PermissionGranted}
	deps := newDeps(t, sink)
	require.NoError(t, deps.Settings.Save("leader", domain.NotificationSettings{ReminderTime: 30, CheckFrequency: 60, EnableSound: false}))

	open(t, deps)

	require.Len(t, sink.sent, 2)
	assert.Equal(t, notify.DailySummaryTag, sink.sent[0].Tag)
	assert.True(t, sink.sent[0].Silent)
	assert.True(t, sink.sent[1].Silent)
}

func TestOpen_SummaryAndFirstTick(t *testing.T) {
	sink := &recordingSink{permission: notify.PermissionGranted}
	s := open(t, newDeps(t, sink))

	// Starter data: the demo task is due in 30 minutes, the demo event in 45.
	assert.Equal(t, []string{notify.DailySummaryTag, "t4"}, sink.tags())
	assert.Equal(t, "Xin chào Nguyễn Văn A, bạn có 3 sự kiện và 3 việc gấp hôm nay.", sink.sent[0].Body)
	assert.False(t, sink.sent[0].Silent)

	assert.Equal(t, scheduler.StateArmed, s.SchedulerState())
	assert.Equal(t, time.Minute, s.SchedulerInterval())
	assert.Equal(t, notify.PermissionGranted, s.Permission())
	assert.True(t, s.HasImminent(now))
	// t1 (due in exactly 24h), t4, d1, event 2 and the demo event
	assert.Len(t, s.Upcoming(now), 5)
	assert.False(t, s.Summary().Empty())
}

func TestMutationsRestartScheduler(t *testing.T) {
	sink := &recordingSink{permission: notify.PermissionGranted}
	s := open(t, newDeps(t, sink))

	due := now.Add(10 * time.Minute)
	task, err := s.UpsertTask(domain.Task{Title: "Ký quyết định", Priority: domain.PriorityUrgent, DueDate: &due})
	require.NoError(t, err)
	assert.Equal(t, []string{notify.DailySummaryTag, "t4", task.ID}, sink.tags())

	require.NoError(t, s.UpdateSettings(domain.NotificationSettings{ReminderTime: 60, CheckFrequency: 300, EnableSound: false}))
	assert.Equal(t, 5*time.Minute, s.SchedulerInterval())
	tags := sink.tags()
	assert.Equal(t, "demo-future", tags[len(tags)-1])
	assert.Len(t, tags, 4)
	assert.True(t, sink.sent[3].Silent)

	// toggling does not re-alert what was already alerted
	require.NoError(t, s.ToggleTask(task.ID))
	require.NoError(t, s.ToggleTask(task.ID))
	assert.Len(t, sink.tags(), 4)
}

func TestMutationsPersist(t *testing.T) {
	deps := newDeps(t, nil)
	s := open(t, deps)

	ev, err := s.UpsertEvent(domain.Event{Title: "Tiếp dân", Start: now.Add(3 * time.Hour)})
	require.NoError(t, err)
	doc, err := s.UpsertDocument(domain.Document{Code: "99/CV", Deadline: now.Add(5 * time.Hour)})
	require.NoError(t, err)
	require.NoError(t, s.SetDocumentStatus(doc.ID, domain.DocumentCompleted))

	c := deps.Entities.Load("leader", now)
	assert.Len(t, c.Events, 4)
	assert.Equal(t, ev.ID, c.Events[3].ID)
	assert.Equal(t, domain.DocumentCompleted, c.Documents[2].Status)
	assert.Len(t, s.Collections().Documents, 3)

	assert.ErrorIs(t, s.ToggleTask("missing"), domain.ErrNotFound)
	assert.ErrorIs(t, s.UpdateSettings(domain.NotificationSettings{ReminderTime: 5, CheckFrequency: 10}), domain.ErrInvalidSettings)
	assert.ErrorIs(t, s.ExportEvent(t.Context(), ev.ID), domain.ErrNotConfigured)
	_, err = s.ImportCalendar(t.Context(), 7)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestWithoutSink(t *testing.T) {
	s := open(t, newDeps(t, nil))

	assert.Equal(t, notify.PermissionUnsupported, s.Permission())
	assert.Equal(t, scheduler.StateIdle, s.SchedulerState())
	assert.True(t, s.HasImminent(now))

	p, err := s.RequestPermission(t.Context())
	require.NoError(t, err)
	assert.Equal(t, notify.PermissionUnsupported, p)
}

func TestRequestPermission(t *testing.T) {
	sink := &recordingSink{permission: notify.PermissionDenied}
	s := open(t, newDeps(t, sink))
	assert.Equal(t, scheduler.StateIdle, s.SchedulerState())
	assert.Empty(t, sink.tags())

	sink.grant()
	p, err := s.RequestPermission(t.Context())
	require.NoError(t, err)
	assert.Equal(t, notify.PermissionGranted, p)
	assert.Equal(t, scheduler.StateArmed, s.SchedulerState())

	require.Len(t, sink.sent, 2)
	assert.Equal(t, "Đã bật thông báo nhắc nhở việc gấp!", sink.sent[0].Body)
	assert.Equal(t, "t4", sink.sent[1].Tag)
}

func TestClose(t *testing.T) {
	sink := &recordingSink{permission: notify.PermissionGranted}
	s := open(t, newDeps(t, sink))

	s.Close()
	s.Close()

	assert.Equal(t, scheduler.StateStopped, s.SchedulerState())
	_, err := s.UpsertTask(domain.Task{Title: "x"})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.UpdateSettings(domain.DefaultNotificationSettings()), ErrClosed)
}
