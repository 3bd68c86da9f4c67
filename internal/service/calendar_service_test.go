package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/clients/caldav"
	"github.com/tazhate/leaderflow/internal/domain"
)

type calendarClientMock struct {
	mock.Mock
}

func (m *calendarClientMock) DiscoverCalendars(ctx context.Context) ([]caldav.Calendar, error) {
	args := m.Called(ctx)
	var cals []caldav.Calendar
	if v := args.Get(0); v != nil {
		cals = v.([]caldav.Calendar)
	}
	return cals, args.Error(1)
}

func (m *calendarClientMock) GetEvents(ctx context.Context, path string, from, to time.Time) ([]caldav.Event, error) {
	args := m.Called(ctx, path, from, to)
	var events []caldav.Event
	if v := args.Get(0); v != nil {
		events = v.([]caldav.Event)
	}
	return events, args.Error(1)
}

func (m *calendarClientMock) PutEvent(ctx context.Context, path string, event *caldav.Event) error {
	return m.Called(ctx, path, event).Error(0)
}

func TestMerge(t *testing.T) {
	from := now.Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, 7)
	local := []domain.Event{
		{ID: "1", Title: "Local meeting", Start: now},
		{ID: "caldav-same", Title: "Unchanged", Start: now, End: now.Add(time.Hour), Type: domain.EventGeneral},
		{ID: "caldav-moved", Title: "Moved", Start: now, End: now.Add(time.Hour), Type: domain.EventGeneral},
		{ID: "caldav-gone", Title: "Cancelled", Start: now},
		{ID: "caldav-old", Title: "Outside range", Start: from.AddDate(0, 0, -3)},
	}
	remote := []caldav.Event{
		{UID: "same", Summary: "Unchanged", StartTime: now, EndTime: now.Add(time.Hour)},
		{UID: "moved", Summary: "Moved", StartTime: now.Add(2 * time.Hour), EndTime: now.Add(3 * time.Hour)},
		{UID: "new", Summary: "Đi công tác", Categories: []string{"Công tác"}, StartTime: now.Add(24 * time.Hour)},
	}

	events, result := Merge(local, remote, from, to)

	assert.Equal(t, SyncResult{Added: 1, Updated: 1, Deleted: 1}, result)
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"1", "caldav-same", "caldav-moved", "caldav-old", "caldav-new"}, ids)
	assert.True(t, events[2].Start.Equal(now.Add(2*time.Hour)))
	assert.Equal(t, domain.EventBusinessTrip, events[4].Type)
	assert.Equal(t, now.Add(25*time.Hour), events[4].End)
	assert.Len(t, local, 5)
	assert.True(t, local[2].Start.Equal(now))
}

func TestToCalDAV(t *testing.T) {
	local := ToCalDAV(domain.Event{ID: "e1", Title: "Họp", Type: domain.EventMeeting, Start: now})
	assert.Equal(t, "e1@leaderflow", local.UID)
	assert.Equal(t, []string{"Họp"}, local.Categories)

	imported := ToCalDAV(domain.Event{ID: "caldav-xyz", Type: domain.EventGeneral, Start: now})
	assert.Equal(t, "xyz", imported.UID)
}

func TestCalendarService_FetchAndExport(t *testing.T) {
	client := new(calendarClientMock)
	svc := NewCalendarService(client, "/cal/leader/", zap.NewNop())
	from, to := now, now.Add(24*time.Hour)

	client.On("GetEvents", mock.Anything, "/cal/leader/", from, to).
		Return([]caldav.Event{{UID: "a", StartTime: now}}, nil).Once()
	client.On("PutEvent", mock.Anything, "/cal/leader/", mock.MatchedBy(func(e *caldav.Event) bool {
		return e.UID == "e1@leaderflow"
	})).Return(nil).Once()

	remote, err := svc.Fetch(t.Context(), from, to)
	require.NoError(t, err)
	assert.Len(t, remote, 1)
	require.NoError(t, svc.Export(t.Context(), domain.Event{ID: "e1", Start: now}))
	client.AssertExpectations(t)
}

func TestCalendarService_Errors(t *testing.T) {
	unconfigured := NewCalendarService(nil, "", zap.NewNop())
	_, err := unconfigured.Fetch(t.Context(), now, now)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.ErrorIs(t, unconfigured.Export(t.Context(), domain.Event{}), domain.ErrNotConfigured)

	client := new(calendarClientMock)
	client.On("GetEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("503")).Once()
	_, err = NewCalendarService(client, "/cal", zap.NewNop()).Fetch(t.Context(), now, now)
	assert.Error(t, err)
}
