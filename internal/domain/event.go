package domain

import "time"

type EventType string

const (
	EventMeeting      EventType = "Họp"
	EventBusinessTrip EventType = "Công tác"
	EventGeneral      EventType = "Sự kiện"
	EventPersonal     EventType = "Cá nhân"
	EventDeepWork     EventType = "Xử lý văn bản"
)

// EventTypes lists every known event type in display order.
var EventTypes = []EventType{EventMeeting, EventBusinessTrip, EventGeneral, EventPersonal, EventDeepWork}

func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Event is a calendar entry. End before Start is tolerated and never rejected.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Type        EventType `json:"type"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
}

// IsOnDay reports whether the event starts on the calendar day of day (in day's location).
func (e *Event) IsOnDay(day time.Time) bool {
	start := e.Start.In(day.Location())
	return start.Year() == day.Year() && start.YearDay() == day.YearDay()
}

func (e *Event) FormatTime() string {
	if e.End.IsZero() || e.End.Before(e.Start) {
		return e.Start.Format("15:04")
	}
	return e.Start.Format("15:04") + "-" + e.End.Format("15:04")
}
