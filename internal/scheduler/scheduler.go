package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/agenda"
	"github.com/tazhate/leaderflow/internal/domain"
	"github.com/tazhate/leaderflow/internal/notify"
)

var ErrStopped = errors.New("scheduler stopped")

type State string

const (
	StateIdle    State = "idle"
	StateArmed   State = "armed"
	StateStopped State = "stopped"
)

// Source supplies what a tick evaluates. It is consulted on every tick so that
// the scheduler never works from values captured when it was armed.
type Source interface {
	Collections() domain.Collections
	Settings() domain.NotificationSettings
}

// Scheduler periodically alerts about items entering the reminder window, at
// most once per item for the lifetime of its Memory.
type Scheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	started  bool
	entry    cron.EntryID
	gen      uint64
	state    State
	interval time.Duration

	// tickMu serializes ticks, including the immediate one run by Arm.
	tickMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	source   Source
	sink     notify.Sink
	memory   *notify.Memory
	composer *notify.Composer
	now      func() time.Time
	location *time.Location
	logger   *zap.Logger
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.location = loc }
}

func New(source Source, sink notify.Sink, memory *notify.Memory, composer *notify.Composer, opts ...Option) *Scheduler {
	s := &Scheduler{
		state:    StateIdle,
		source:   source,
		sink:     sink,
		memory:   memory,
		composer: composer,
		now:      time.Now,
		location: time.Local,
		logger:   zap.L(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("scheduler")
	s.ctx, s.cancel = context.WithCancel(context.Background())

	cronLogger := cron.PrintfLogger(zap.NewStdLog(s.logger))
	s.cron = cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
	)
	return s
}

// Arm cancels any pending tick, schedules ticks every interval and runs the
// first tick immediately.
func (s *Scheduler) Arm(interval time.Duration) error {
	if interval < time.Second {
		return fmt.Errorf("interval %s is below one second", interval)
	}

	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return ErrStopped
	}
	s.removeLocked()
	s.gen++
	gen := s.gen
	s.entry = s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() { s.run(gen) }))
	s.state = StateArmed
	s.interval = interval
	if !s.started {
		s.cron.Start()
		s.started = true
	}
	s.mu.Unlock()

	s.logger.Info("armed", zap.Duration("interval", interval))
	s.run(gen)
	return nil
}

// Disarm cancels the pending tick and waits for a running one to finish.
func (s *Scheduler) Disarm() {
	s.mu.Lock()
	if s.state != StateArmed {
		s.mu.Unlock()
		return
	}
	s.removeLocked()
	s.gen++
	s.state = StateIdle
	s.mu.Unlock()

	s.tickMu.Lock()
	s.tickMu.Unlock()
	s.logger.Info("disarmed")
}

// Stop tears the scheduler down for good. Pending ticks never fire afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.removeLocked()
	s.gen++
	s.state = StateStopped
	started := s.started
	s.mu.Unlock()

	s.cancel()
	if started {
		<-s.cron.Stop().Done()
	}
	s.tickMu.Lock()
	s.tickMu.Unlock()
	s.logger.Info("stopped")
}

func (s *Scheduler) removeLocked() {
	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// run executes a tick unless the job belongs to an earlier arming.
func (s *Scheduler) run(gen uint64) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	current := s.state == StateArmed && s.gen == gen
	s.mu.Unlock()
	if !current {
		return
	}

	s.Tick(s.ctx, s.now())
}

// Tick evaluates the current state once and returns the number of alerts sent.
// An alert whose delivery fails is not remembered and is retried next tick.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	if s.sink == nil {
		return 0
	}

	c := s.source.Collections()
	settings := s.source.Settings()

	items := agenda.Upcoming(c.Events, c.Tasks, c.Documents, now, agenda.Lookahead)
	due := agenda.Imminent(items, now, settings.ReminderWindow())

	sent := 0
	for _, it := range due {
		id := it.ID()
		if s.memory.Has(id) {
			continue
		}

		n, err := s.composer.Alert(it, now, !settings.EnableSound)
		if err != nil {
			s.logger.Error("compose alert", zap.String("id", id), zap.Error(err))
			continue
		}
		if err := s.sink.Notify(ctx, n); err != nil {
			s.logger.Warn("deliver alert", zap.String("id", id), zap.String("kind", string(it.Kind)), zap.Error(err))
			continue
		}

		s.memory.Add(id)
		sent++
		s.logger.Info("alert sent",
			zap.String("id", id),
			zap.String("kind", string(it.Kind)),
			zap.Int("minutes_left", agenda.MinutesLeft(it, now)),
		)
	}
	return sent
}
