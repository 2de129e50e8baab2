package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestShow_DerivedTimes(t *testing.T) {
	show := domain.NewShow(uuid.New(), domain.NewDate(2023, time.April, 27), domain.NewClock(18, 0), 110, 15)

	assert.Equal(t, domain.NewClock(19, 50), show.ShowEnd())
	assert.Equal(t, domain.NewClock(19, 50), show.CleaningSlotStart())
	assert.Equal(t, domain.NewClock(20, 5), show.CleaningSlotEnd())
	assert.Equal(t, show.CleaningSlotEnd(), show.EndTime())
	assert.Equal(t, domain.ClockRange{Start: domain.NewClock(19, 50), End: domain.NewClock(20, 5)}, show.CleaningSlot())
	assert.Equal(t, domain.ClockRange{Start: domain.NewClock(18, 0), End: domain.NewClock(20, 5)}, domain.Occupancy(show))
}

func TestShow_DistinguishesScreeningFromCleaning(t *testing.T) {
	show := domain.NewShow(uuid.New(), domain.NewDate(2023, time.April, 27), domain.NewClock(17, 30), 90, 15)

	assert.Equal(t, 90, int(show.ShowEnd()-show.StartTime()))
	assert.Equal(t, 105, domain.Occupancy(show).DurationMinutes())
}

func TestShow_AcceptsDurationsAsGiven(t *testing.T) {
	show := domain.NewShow(uuid.New(), domain.NewDate(2023, time.April, 27), domain.NewClock(18, 0), 0, 0)

	assert.Equal(t, show.StartTime(), show.EndTime())
}

func TestUnavailability_HasNoCleaningSlot(t *testing.T) {
	date := domain.NewDate(2023, time.April, 27)
	block := domain.NewUnavailability(date, domain.NewClock(8, 0), domain.NewClock(10, 0))

	assert.Equal(t, date, block.Date())
	assert.Equal(t, domain.NewClock(8, 0), block.StartTime())
	assert.Equal(t, domain.NewClock(10, 0), block.EndTime())
}

func TestRoomEvent_Equality(t *testing.T) {
	movieID := uuid.New()
	date := domain.NewDate(2023, time.April, 27)

	var a domain.RoomEvent = domain.NewShow(movieID, date, domain.NewClock(18, 0), 110, 15)
	var b domain.RoomEvent = domain.NewShow(movieID, date, domain.NewClock(18, 0), 110, 15)
	var c domain.RoomEvent = domain.NewUnavailability(date, domain.NewClock(18, 0), domain.NewClock(20, 5))

	assert.True(t, a == b)
	assert.False(t, a == c)
}
