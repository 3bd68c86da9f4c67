package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/domain"
	"github.com/tazhate/leaderflow/internal/storage"
)

// KeyValueStore is the persistence the entity and settings services need.
type KeyValueStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// EntityService loads, saves and updates a user's events, tasks and documents.
// Update methods never modify their input slices; they return new ones.
type EntityService struct {
	store  KeyValueStore
	logger *zap.Logger
	newID  func() string
}

func NewEntityService(store KeyValueStore, logger *zap.Logger) *EntityService {
	if logger == nil {
		logger = zap.L()
	}
	return &EntityService{
		store:  store,
		logger: logger.Named("entities"),
		newID:  func() string { return uuid.NewString() },
	}
}

// Load reads all three collections. A missing or unreadable collection is
// replaced by the built-in starter data anchored at now.
func (s *EntityService) Load(userID string, now time.Time) domain.Collections {
	return domain.Collections{
		Events: loadOrDefault(s, storage.ScopedKey(userID, storage.KindEvents), func() []domain.Event {
			return DefaultEvents(now)
		}),
		Tasks: loadOrDefault(s, storage.ScopedKey(userID, storage.KindTasks), func() []domain.Task {
			return DefaultTasks(now)
		}),
		Documents: loadOrDefault(s, storage.ScopedKey(userID, storage.KindDocuments), func() []domain.Document {
			return DefaultDocuments(now)
		}),
	}
}

func loadOrDefault[T any](s *EntityService, key string, fallback func() []T) []T {
	raw, ok, err := s.store.Get(key)
	if err != nil {
		s.logger.Error("read collection, using defaults", zap.String("key", key), zap.Error(err))
		return fallback()
	}
	if !ok {
		return fallback()
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Error("malformed collection, using defaults", zap.String("key", key), zap.Error(err))
		return fallback()
	}
	return items
}

func save[T any](s *EntityService, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.store.Set(key, string(data)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *EntityService) SaveEvents(userID string, events []domain.Event) error {
	return save(s, storage.ScopedKey(userID, storage.KindEvents), events)
}

func (s *EntityService) SaveTasks(userID string, tasks []domain.Task) error {
	return save(s, storage.ScopedKey(userID, storage.KindTasks), tasks)
}

func (s *EntityService) SaveDocuments(userID string, docs []domain.Document) error {
	return save(s, storage.ScopedKey(userID, storage.KindDocuments), docs)
}

func (s *EntityService) Save(userID string, c domain.Collections) error {
	if err := s.SaveEvents(userID, c.Events); err != nil {
		return err
	}
	if err := s.SaveTasks(userID, c.Tasks); err != nil {
		return err
	}
	return s.SaveDocuments(userID, c.Documents)
}

// UpsertEvent creates e when it has no ID, otherwise replaces the event with the same ID.
func (s *EntityService) UpsertEvent(events []domain.Event, e domain.Event, now time.Time) ([]domain.Event, domain.Event, error) {
	if e.Type != "" && !e.Type.Valid() {
		return nil, e, fmt.Errorf("%w: unknown event type %q", domain.ErrInvalidEntity, e.Type)
	}
	if e.ID == "" {
		e.ID = s.newID()
		if strings.TrimSpace(e.Title) == "" {
			e.Title = "Sự kiện mới"
		}
		if e.Start.IsZero() {
			e.Start = now
		}
		if e.End.IsZero() {
			e.End = e.Start.Add(time.Hour)
		}
		if e.Type == "" {
			e.Type = domain.EventPersonal
		}
		out := make([]domain.Event, len(events), len(events)+1)
		copy(out, events)
		return append(out, e), e, nil
	}

	out, ok := replaceByID(events, e, func(x domain.Event) string { return x.ID })
	if !ok {
		return nil, e, fmt.Errorf("event %s: %w", e.ID, domain.ErrNotFound)
	}
	return out, e, nil
}

func (s *EntityService) UpsertTask(tasks []domain.Task, t domain.Task) ([]domain.Task, domain.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return nil, t, fmt.Errorf("%w: task title cannot be empty", domain.ErrInvalidEntity)
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityNormal
	}
	if !t.Priority.Valid() {
		return nil, t, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidEntity, t.Priority)
	}
	if t.ID == "" {
		t.ID = s.newID()
		t.Completed = false
		out := make([]domain.Task, len(tasks), len(tasks)+1)
		copy(out, tasks)
		return append(out, t), t, nil
	}

	out, ok := replaceByID(tasks, t, func(x domain.Task) string { return x.ID })
	if !ok {
		return nil, t, fmt.Errorf("task %s: %w", t.ID, domain.ErrNotFound)
	}
	return out, t, nil
}

func (s *EntityService) UpsertDocument(docs []domain.Document, d domain.Document, now time.Time) ([]domain.Document, domain.Document, error) {
	d.Code = strings.TrimSpace(d.Code)
	if d.Code == "" {
		return nil, d, fmt.Errorf("%w: document code cannot be empty", domain.ErrInvalidEntity)
	}
	if d.Status == "" {
		d.Status = domain.DocumentPending
	}
	if d.Priority == "" {
		d.Priority = domain.PriorityNormal
	}
	if !d.Status.Valid() {
		return nil, d, fmt.Errorf("%w: unknown document status %q", domain.ErrInvalidEntity, d.Status)
	}
	if !d.Priority.Valid() {
		return nil, d, fmt.Errorf("%w: unknown priority %q", domain.ErrInvalidEntity, d.Priority)
	}
	if d.Deadline.IsZero() {
		d.Deadline = now
	}
	if d.ID == "" {
		d.ID = s.newID()
		out := make([]domain.Document, len(docs), len(docs)+1)
		copy(out, docs)
		return append(out, d), d, nil
	}

	out, ok := replaceByID(docs, d, func(x domain.Document) string { return x.ID })
	if !ok {
		return nil, d, fmt.Errorf("document %s: %w", d.ID, domain.ErrNotFound)
	}
	return out, d, nil
}

// ToggleTask flips the completed flag of the task with id.
func (s *EntityService) ToggleTask(tasks []domain.Task, id string) ([]domain.Task, error) {
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		if out[i].ID == id {
			out[i].Completed = !out[i].Completed
			return out, nil
		}
	}
	return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
}

func (s *EntityService) SetDocumentStatus(docs []domain.Document, id string, status domain.DocumentStatus) ([]domain.Document, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown document status %q", domain.ErrInvalidEntity, status)
	}
	out := make([]domain.Document, len(docs))
	copy(out, docs)
	for i := range out {
		if out[i].ID == id {
			out[i].Status = status
			return out, nil
		}
	}
	return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}

func replaceByID[T any](items []T, item T, id func(T) string) ([]T, bool) {
	want := id(item)
	out := make([]T, len(items))
	copy(out, items)
	for i := range out {
		if id(out[i]) == want {
			out[i] = item
			return out, true
		}
	}
	return nil, false
}
