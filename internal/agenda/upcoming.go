// Package agenda merges events, tasks and documents into a single timeline and
// classifies which items are close enough to alert about. Everything here is a
// pure function of its arguments.
package agenda

import (
	"sort"
	"time"

	"github.com/tazhate/leaderflow/internal/domain"
)

// Lookahead is the fixed horizon for what counts as upcoming.
const Lookahead = 24 * time.Hour

type Kind string

const (
	KindTask     Kind = "task"
	KindDocument Kind = "document"
	KindEvent    Kind = "event"
)

// Item is one entry of the unified timeline. Exactly one of Task, Document and
// Event is set, matching Kind. Date is the due date, deadline or start.
type Item struct {
	Kind     Kind
	Date     time.Time
	Task     *domain.Task
	Document *domain.Document
	Event    *domain.Event
}

// ID is the entity id, also used as the notification dedupe key.
func (i Item) ID() string {
	switch i.Kind {
	case KindTask:
		return i.Task.ID
	case KindDocument:
		return i.Document.ID
	case KindEvent:
		return i.Event.ID
	}
	return ""
}

func (i Item) Title() string {
	switch i.Kind {
	case KindTask:
		return i.Task.Title
	case KindDocument:
		return i.Document.Title
	case KindEvent:
		return i.Event.Title
	}
	return ""
}

// Upcoming returns the pending items whose date falls in (now, now+lookahead],
// ordered by date. Items with equal dates keep the order tasks, documents, events.
func Upcoming(events []domain.Event, tasks []domain.Task, documents []domain.Document, now time.Time, lookahead time.Duration) []Item {
	end := now.Add(lookahead)
	inWindow := func(t time.Time) bool {
		return t.After(now) && !t.After(end)
	}

	var items []Item
	for i := range tasks {
		t := tasks[i]
		if t.Completed || t.DueDate == nil || !inWindow(*t.DueDate) {
			continue
		}
		items = append(items, Item{Kind: KindTask, Date: *t.DueDate, Task: &t})
	}
	for i := range documents {
		d := documents[i]
		if !d.IsPending() || !inWindow(d.Deadline) {
			continue
		}
		items = append(items, Item{Kind: KindDocument, Date: d.Deadline, Document: &d})
	}
	for i := range events {
		e := events[i]
		if !inWindow(e.Start) {
			continue
		}
		items = append(items, Item{Kind: KindEvent, Date: e.Start, Event: &e})
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Date.Before(items[b].Date)
	})
	return items
}

// HasImminent reports whether any item is due within reminder of now. The
// boundary now+reminder is inclusive.
func HasImminent(items []Item, now time.Time, reminder time.Duration) bool {
	end := now.Add(reminder)
	for _, it := range items {
		if !it.Date.After(end) {
			return true
		}
	}
	return false
}

// Imminent returns the items in (now, now+reminder], preserving order.
func Imminent(items []Item, now time.Time, reminder time.Duration) []Item {
	end := now.Add(reminder)
	var out []Item
	for _, it := range items {
		if it.Date.After(now) && !it.Date.After(end) {
			out = append(out, it)
		}
	}
	return out
}

// MinutesLeft rounds the time until the item up to whole minutes.
func MinutesLeft(it Item, now time.Time) int {
	d := it.Date.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}
