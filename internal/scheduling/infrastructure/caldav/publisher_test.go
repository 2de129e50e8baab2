package caldav

import (
	"testing"
	"time"

	"github.com/emersion/go-ical"
	catalogQueries "github.com/felixgeelhaar/cinema/internal/catalog/application/queries"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func showEvent() queries.EnrichedRoomEvent {
	return queries.EnrichedRoomEvent{
		Kind:      queries.KindShow,
		RoomID:    "1",
		Date:      domain.NewDate(2026, time.March, 14),
		StartTime: domain.NewClock(17, 30),
		EndTime:   domain.NewClock(19, 0),
		Movie: &catalogQueries.MovieDTO{
			Name:                          "Dune",
			DurationMinutes:               90,
			ThreeDimensionalGlassesNeeded: true,
		},
		CleaningSlot: &domain.ClockRange{Start: domain.NewClock(19, 0), End: domain.NewClock(19, 15)},
	}
}

func vevent(t *testing.T, cal *ical.Calendar) *ical.Component {
	t.Helper()
	require.Len(t, cal.Children, 1)
	require.Equal(t, ical.CompEvent, cal.Children[0].Name)
	return cal.Children[0]
}

func TestEventUID(t *testing.T) {
	event := showEvent()

	assert.Equal(t, "cinema-1-20260314-1730", EventUID("1", event))
	assert.Equal(t, "cinema-Hall_A-20260314-1730", EventUID("Hall A", event))
	assert.Equal(t, "cinema-a_b-20260314-1730", EventUID("a/b", event))
}

func TestToICalendar_Show(t *testing.T) {
	p := NewPublisher("https://dav.example.com", "user", "secret", nil)

	cal := p.toICalendar("1", showEvent())
	assert.Equal(t, "2.0", cal.Props.Get(ical.PropVersion).Value)
	assert.Equal(t, productID, cal.Props.Get(ical.PropProductID).Value)

	event := vevent(t, cal)
	assert.Equal(t, "cinema-1-20260314-1730", event.Props.Get(ical.PropUID).Value)
	assert.Equal(t, "Dune", event.Props.Get(ical.PropSummary).Value)
	assert.Equal(t, "Room 1", event.Props.Get(ical.PropLocation).Value)
	assert.Equal(t, "1", event.Props.Get(PropXCinema).Value)
	assert.Equal(t, "1", event.Props.Get(PropXCinemaRoom).Value)

	start, err := event.Props.Get(ical.PropDateTimeStart).DateTime(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 14, 17, 30, 0, 0, time.UTC), start)

	// the room stays occupied through cleaning
	end, err := event.Props.Get(ical.PropDateTimeEnd).DateTime(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 14, 19, 15, 0, 0, time.UTC), end)

	desc := event.Props.Get(ical.PropDescription).Value
	assert.Contains(t, desc, "Screening 17:30-19:00")
	assert.Contains(t, desc, "Cleaning 19:00-19:15")
	assert.Contains(t, desc, "3D glasses needed")
}

func TestToICalendar_Unavailability(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	p := NewPublisher("https://dav.example.com", "", "", nil).WithLocation(loc)

	cal := p.toICalendar("2", queries.EnrichedRoomEvent{
		Kind:      queries.KindUnavailability,
		RoomID:    "2",
		Date:      domain.NewDate(2026, time.March, 14),
		StartTime: domain.NewClock(8, 0),
		EndTime:   domain.NewClock(12, 0),
	})

	event := vevent(t, cal)
	assert.Equal(t, "Room 2 unavailable", event.Props.Get(ical.PropSummary).Value)
	assert.Equal(t, "Unavailable 08:00-12:00", event.Props.Get(ical.PropDescription).Value)

	start, err := event.Props.Get(ical.PropDateTimeStart).DateTime(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 14, 7, 0, 0, 0, time.UTC), start)
}

func TestToICalendar_PastMidnight(t *testing.T) {
	p := NewPublisher("https://dav.example.com", "", "", nil)
	event := showEvent()
	event.StartTime = domain.NewClock(22, 45)
	event.EndTime = domain.NewClock(22, 45).Add(120)
	event.CleaningSlot = &domain.ClockRange{Start: event.EndTime, End: event.EndTime.Add(15)}

	end, err := vevent(t, p.toICalendar("1", event)).Props.Get(ical.PropDateTimeEnd).DateTime(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 15, 1, 0, 0, 0, time.UTC), end)
}

func TestIsManagedRoomEvent(t *testing.T) {
	p := NewPublisher("https://dav.example.com", "", "", nil)
	cal := p.toICalendar("1", showEvent())

	assert.True(t, isManagedRoomEvent(cal, "1"))
	assert.False(t, isManagedRoomEvent(cal, "2"))
	assert.False(t, isManagedRoomEvent(nil, "1"))

	foreign := ical.NewCalendar()
	other := ical.NewEvent()
	other.Props.SetText(ical.PropUID, "someone-elses-event")
	foreign.Children = append(foreign.Children, other.Component)
	assert.False(t, isManagedRoomEvent(foreign, "1"))
}

func TestWithCalendarPath_AddsTrailingSlash(t *testing.T) {
	p := NewPublisher("https://dav.example.com", "", "", nil).WithCalendarPath("/calendars/cinema/rooms")
	assert.Equal(t, "/calendars/cinema/rooms/", p.calendarPath)
}
