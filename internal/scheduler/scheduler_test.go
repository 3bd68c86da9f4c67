package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/domain"
	"github.com/tazhate/leaderflow/internal/notify"
)

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu       sync.Mutex
	c        domain.Collections
	settings domain.NotificationSettings
}

func (f *fakeSource) Collections() domain.Collections {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.c
}

func (f *fakeSource) Settings() domain.NotificationSettings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

func (f *fakeSource) setEvents(events ...domain.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Events = events
}

func (f *fakeSource) setTasks(tasks ...domain.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Tasks = tasks
}

type fakeSink struct {
	mu   sync.Mutex
	sent []notify.Notification
	fail bool
}

func (f *fakeSink) RequestPermission(context.Context) (notify.Permission, error) {
	return notify.PermissionGranted, nil
}

func (f *fakeSink) Notify(_ context.Context, n notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("delivery failed")
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeSink) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeSink) tags() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, n := range f.sent {
		out = append(out, n.Tag)
	}
	return out
}

type fixture struct {
	source *fakeSource
	sink   *fakeSink
	memory *notify.Memory
	sched  *Scheduler
}

func newFixture(t *testing.T, sink notify.Sink) *fixture {
	t.Helper()
	composer, err := notify.NewComposer()
	require.NoError(t, err)

	f := &fixture{
		source: &fakeSource{settings: domain.DefaultNotificationSettings()},
		memory: notify.NewMemory(),
	}
	if s, ok := sink.(*fakeSink); ok {
		f.sink = s
	}
	f.sched = New(f.source, sink, f.memory, composer,
		WithClock(func() time.Time { return t0 }),
		WithLogger(zap.NewNop()),
		WithLocation(time.UTC),
	)
	t.Cleanup(f.sched.Stop)
	return f
}

func TestTick_AlertsOncePerItem(t *testing.T) {
	f := newFixture(t, &fakeSink{})
	f.source.setEvents(
		domain.Event{ID: "soon", Title: "Họp", Start: t0.Add(25 * time.Minute)},
		domain.Event{ID: "later", Title: "Tiếp khách", Start: t0.Add(2 * time.Hour)},
	)

	assert.Equal(t, 1, f.sched.Tick(t.Context(), t0))
	for i := 1; i <= 5; i++ {
		assert.Equal(t, 0, f.sched.Tick(t.Context(), t0.Add(time.Duration(i)*time.Minute)))
	}

	assert.Equal(t, []string{"soon"}, f.sink.tags())
	assert.Equal(t, "Sự kiện \"Họp\" sẽ diễn ra trong 25 phút nữa.", f.sink.sent[0].Body)
}

func TestTick_NewItemEnteringWindowIsAlerted(t *testing.T) {
	f := newFixture(t, &fakeSink{})
	f.source.setEvents(domain.Event{ID: "e", Title: "Họp", Start: t0.Add(40 * time.Minute)})

	assert.Equal(t, 0, f.sched.Tick(t.Context(), t0))
	assert.Equal(t, 1, f.sched.Tick(t.Context(), t0.Add(10*time.Minute)))
	assert.Equal(t, 0, f.sched.Tick(t.Context(), t0.Add(11*time.Minute)))
}

func TestTick_RescheduledItemIsNotAlertedAgain(t *testing.T) {
	f := newFixture(t, &fakeSink{})
	due := t0.Add(10 * time.Minute)
	f.source.setTasks(domain.Task{ID: "t", Title: "Ký", Priority: domain.PriorityUrgent, DueDate: &due})

	assert.Equal(t, 1, f.sched.Tick(t.Context(), t0))

	moved := t0.Add(2 * time.Hour)
	f.source.setTasks(domain.Task{ID: "t", Title: "Ký", Priority: domain.PriorityUrgent, DueDate: &moved})

	assert.Equal(t, 0, f.sched.Tick(t.Context(), t0.Add(11*time.Minute)))
	assert.Equal(t, 0, f.sched.Tick(t.Context(), t0.Add(100*time.Minute)))
	assert.Equal(t, []string{"t"}, f.sink.tags())
}

func TestTick_FailedDeliveryIsRetried(t *testing.T) {
	sink := &fakeSink{fail: true}
	f := newFixture(t, sink)
	f.source.setEvents(domain.Event{ID: "e", Title: "Họp", Start: t0.Add(10 * time.Minute)})

	assert.Equal(t, 0, f.sched.Tick(t.Context(), t0))
	assert.False(t, f.memory.Has("e"))

	sink.setFail(false)
	assert.Equal(t, 1, f.sched.Tick(t.Context(), t0.Add(time.Minute)))
	assert.True(t, f.memory.Has("e"))
}

func TestTick_ReadsCurrentSettings(t *testing.T) {
	f := newFixture(t, &fakeSink{})
	f.source.setEvents(domain.Event{ID: "e", Title: "Họp", Start: t0.Add(50 * time.Minute)})

	assert.Equal(t, 0, f.sched.Tick(t.Context(), t0))

	f.source.mu.Lock()
	f.source.settings.ReminderTime = 60
	f.source.mu.Unlock()

	assert.Equal(t, 1, f.sched.Tick(t.Context(), t0))
}

func TestTick_WithoutSink(t *testing.T) {
	f := newFixture(t, nil)
	f.source.setEvents(domain.Event{ID: "e", Start: t0.Add(time.Minute)})

	assert.Equal(t, 0, f.sched.Tick(t.Context(), t0))
	assert.Equal(t, 0, f.memory.Len())
}

func TestArm_RunsImmediateTick(t *testing.T) {
	f := newFixture(t, &fakeSink{})
	f.source.setEvents(domain.Event{ID: "e", Title: "Họp", Start: t0.Add(5 * time.Minute)})

	require.NoError(t, f.sched.Arm(time.Minute))

	assert.Equal(t, StateArmed, f.sched.State())
	assert.Equal(t, time.Minute, f.sched.Interval())
	assert.Equal(t, []string{"e"}, f.sink.tags())
}

func TestArm_RearmKeepsMemory(t *testing.T) {
	f := newFixture(t, &fakeSink{})
	f.source.setEvents(domain.Event{ID: "e", Title: "Họp", Start: t0.Add(5 * time.Minute)})

	require.NoError(t, f.sched.Arm(time.Minute))
	require.NoError(t, f.sched.Arm(30*time.Second))

	assert.Equal(t, 30*time.Second, f.sched.Interval())
	assert.Len(t, f.sink.tags(), 1)
}

func TestArm_PeriodicTicksUseNewInterval(t *testing.T) {
	f := newFixture(t, &fakeSink{})

	require.NoError(t, f.sched.Arm(time.Hour))
	require.NoError(t, f.sched.Arm(time.Second))
	f.source.setEvents(domain.Event{ID: "late", Title: "Họp", Start: t0.Add(5 * time.Minute)})

	assert.Eventually(t, func() bool {
		return len(f.sink.tags()) == 1
	}, 2500*time.Millisecond, 50*time.Millisecond)
	assert.Equal(t, []string{"late"}, f.sink.tags())
}

func TestArm_EarlierArmingNeverFires(t *testing.T) {
	f := newFixture(t, &fakeSink{})

	require.NoError(t, f.sched.Arm(time.Second))
	require.NoError(t, f.sched.Arm(time.Hour))
	f.source.setEvents(domain.Event{ID: "e", Title: "Họp", Start: t0.Add(5 * time.Minute)})

	time.Sleep(2500 * time.Millisecond)
	assert.Empty(t, f.sink.tags())
}

func TestArm_RejectsShortInterval(t *testing.T) {
	f := newFixture(t, &fakeSink{})
	assert.Error(t, f.sched.Arm(500*time.Millisecond))
	assert.Equal(t, StateIdle, f.sched.State())
}

func TestDisarmAndStop(t *testing.T) {
	f := newFixture(t, &fakeSink{})

	require.NoError(t, f.sched.Arm(time.Minute))
	f.sched.Disarm()
	assert.Equal(t, StateIdle, f.sched.State())

	f.sched.Stop()
	assert.Equal(t, StateStopped, f.sched.State())
	assert.ErrorIs(t, f.sched.Arm(time.Minute), ErrStopped)

	// stale job from an earlier arming is a no-op
	f.source.setEvents(domain.Event{ID: "e", Title: "Họp", Start: t0.Add(5 * time.Minute)})
	f.sched.run(1)
	assert.Empty(t, f.sink.tags())
}
