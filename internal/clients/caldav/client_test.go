package caldav

import (
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeParseRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC)
	in := Event{
		UID:         "abc-123",
		Summary:     "Họp giao ban, tuần 10",
		Description: "Phòng họp A; tầng 3",
		Location:    "Trụ sở UBND",
		Categories:  []string{"Họp", "Công tác"},
		StartTime:   start,
		EndTime:     start.Add(90 * time.Minute),
	}

	text, err := Serialize(EncodeEvent(&in, start))
	require.NoError(t, err)
	assert.Contains(t, text, "CATEGORIES:Họp,Công tác")

	cal, err := ical.NewDecoder(strings.NewReader(text)).Decode()
	require.NoError(t, err)

	out, ok := ParseEvent(cal)
	require.True(t, ok)
	assert.Equal(t, in.UID, out.UID)
	assert.Equal(t, in.Summary, out.Summary)
	assert.Equal(t, in.Description, out.Description)
	assert.Equal(t, in.Location, out.Location)
	assert.Equal(t, in.Categories, out.Categories)
	assert.True(t, in.StartTime.Equal(out.StartTime))
	assert.True(t, in.EndTime.Equal(out.EndTime))
	assert.False(t, out.AllDay)
}

func TestParseEvent_RequiresUIDAndStart(t *testing.T) {
	cal := ical.NewCalendar()
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropSummary, "no uid")
	cal.Children = append(cal.Children, ev.Component)

	_, ok := ParseEvent(cal)
	assert.False(t, ok)

	_, ok = ParseEvent(ical.NewCalendar())
	assert.False(t, ok)
}

func TestObjectPath(t *testing.T) {
	assert.Equal(t, "/cal/work/x.ics", objectPath("/cal/work", "x"))
	assert.Equal(t, "/cal/work/x.ics", objectPath("/cal/work/", "x"))
}

func TestIsConfigured(t *testing.T) {
	assert.True(t, NewClient("https://dav.example.com", "u", "p").IsConfigured())
	assert.False(t, NewClient("", "u", "p").IsConfigured())
}
