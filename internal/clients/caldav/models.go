package caldav

import "time"

// Calendar is a calendar collection on the server
type Calendar struct {
	Path        string
	DisplayName string
	Description string
}

// Event is a VEVENT as exchanged with the server
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Categories  []string
	StartTime   time.Time
	EndTime     time.Time
	AllDay      bool
}
