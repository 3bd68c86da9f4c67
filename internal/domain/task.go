package domain

import "time"

type Priority string

const (
	PriorityUrgent Priority = "Khẩn cấp"
	PriorityHigh   Priority = "Cao"
	PriorityNormal Priority = "Bình thường"
	PriorityLow    Priority = "Thấp"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities from most (3) to least (0) pressing.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 1
	default:
		return 0
	}
}

// IsPressing is true for Urgent and High, the priorities the daily summary counts.
func (p Priority) IsPressing() bool {
	return p == PriorityUrgent || p == PriorityHigh
}

func (p Priority) Emoji() string {
	switch p {
	case PriorityUrgent:
		return "🔴"
	case PriorityHigh:
		return "🟠"
	case PriorityNormal:
		return "🔵"
	case PriorityLow:
		return "⚪"
	default:
		return "⚪"
	}
}

type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Priority  Priority   `json:"priority"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Assignee  string     `json:"assignee,omitempty"`
}

func (t *Task) IsPending() bool {
	return !t.Completed
}
