package domain

import (
	"fmt"
	"time"
)

// Allowed tick intervals, in seconds.
var CheckFrequencies = []int{30, 60, 300}

type NotificationSettings struct {
	ReminderTime   int  `json:"reminderTime"`   // minutes before an item to alert
	CheckFrequency int  `json:"checkFrequency"` // seconds between scans
	EnableSound    bool `json:"enableSound"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		ReminderTime:   30,
		CheckFrequency: 60,
		EnableSound:    true,
	}
}

func (s NotificationSettings) Validate() error {
	if s.ReminderTime < 1 {
		return fmt.Errorf("%w: reminder time must be at least 1 minute, got %d", ErrInvalidSettings, s.ReminderTime)
	}
	for _, f := range CheckFrequencies {
		if s.CheckFrequency == f {
			return nil
		}
	}
	return fmt.Errorf("%w: check frequency must be one of %v seconds, got %d", ErrInvalidSettings, CheckFrequencies, s.CheckFrequency)
}

func (s NotificationSettings) ReminderWindow() time.Duration {
	return time.Duration(s.ReminderTime) * time.Minute
}

func (s NotificationSettings) Interval() time.Duration {
	return time.Duration(s.CheckFrequency) * time.Second
}
