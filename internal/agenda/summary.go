package agenda

import (
	"sort"
	"time"

	"github.com/tazhate/leaderflow/internal/domain"
)

// Summary is the day overview shown once when a session starts.
type Summary struct {
	Events      []domain.Event
	UrgentTasks []domain.Task
}

func (s Summary) Empty() bool {
	return len(s.Events) == 0 && len(s.UrgentTasks) == 0
}

// Today collects events starting on now's calendar day and incomplete Urgent or
// High tasks. Day boundaries follow now's location.
func Today(events []domain.Event, tasks []domain.Task, now time.Time) Summary {
	var s Summary
	for _, e := range events {
		if e.IsOnDay(now) {
			s.Events = append(s.Events, e)
		}
	}
	sort.SliceStable(s.Events, func(a, b int) bool {
		return s.Events[a].Start.Before(s.Events[b].Start)
	})

	for _, t := range tasks {
		if t.IsPending() && t.Priority.IsPressing() {
			s.UrgentTasks = append(s.UrgentTasks, t)
		}
	}
	// Dated tasks first, nearest due date first.
	sort.SliceStable(s.UrgentTasks, func(a, b int) bool {
		ta, tb := s.UrgentTasks[a], s.UrgentTasks[b]
		switch {
		case ta.DueDate != nil && tb.DueDate != nil:
			return ta.DueDate.Before(*tb.DueDate)
		case ta.DueDate != nil:
			return true
		case tb.DueDate != nil:
			return false
		}
		return ta.Priority.Rank() > tb.Priority.Rank()
	})
	return s
}
