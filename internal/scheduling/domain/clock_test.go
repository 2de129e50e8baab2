package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.Clock
		wantErr bool
	}{
		{name: "evening", input: "18:00", want: domain.NewClock(18, 0)},
		{name: "midnight", input: "00:00", want: 0},
		{name: "minutes", input: "09:59", want: domain.NewClock(9, 59)},
		{name: "garbage", input: "late", wantErr: true},
		{name: "out of range", input: "25:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseClock(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidClock)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClock_AddAndString(t *testing.T) {
	start := domain.NewClock(17, 30)

	assert.Equal(t, "19:00", start.Add(90).String())
	assert.Equal(t, "19:15", start.Add(105).String())
	assert.True(t, start.Before(start.Add(1)))
	assert.Equal(t, 17, start.Hour())
	assert.Equal(t, 30, start.Minute())
}

func TestClock_PastMidnight(t *testing.T) {
	late := domain.NewClock(23, 0).Add(120)

	assert.Equal(t, "25:00", late.String())
	assert.True(t, domain.NewClock(23, 30).Before(late))
}

func TestParseDate(t *testing.T) {
	date, err := domain.ParseDate("2023-04-27")
	require.NoError(t, err)

	assert.Equal(t, domain.NewDate(2023, time.April, 27), date)
	assert.Equal(t, "2023-04-27", date.String())

	_, err = domain.ParseDate("27/04/2023")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestDate_Compare(t *testing.T) {
	d1 := domain.NewDate(2023, time.April, 27)
	d2 := domain.NewDate(2023, time.April, 28)
	d3 := domain.NewDate(2024, time.January, 1)

	assert.Equal(t, -1, d1.Compare(d2))
	assert.Equal(t, 1, d3.Compare(d2))
	assert.Equal(t, 0, d1.Compare(domain.NewDate(2023, time.April, 27)))
	assert.True(t, d1.Before(d3))
	assert.False(t, d1.IsZero())
	assert.True(t, domain.Date{}.IsZero())
}

func TestDate_Normalizes(t *testing.T) {
	assert.Equal(t, domain.NewDate(2023, time.May, 1), domain.NewDate(2023, time.April, 31))
}

func TestDate_At(t *testing.T) {
	date := domain.NewDate(2023, time.April, 27)

	got := date.At(domain.NewClock(18, 5), time.UTC)

	assert.Equal(t, time.Date(2023, time.April, 27, 18, 5, 0, 0, time.UTC), got)
}

func TestClockRange_Overlaps(t *testing.T) {
	r := func(from, to string) domain.ClockRange {
		start, _ := domain.ParseClock(from)
		end, _ := domain.ParseClock(to)
		return domain.ClockRange{Start: start, End: end}
	}

	tests := []struct {
		name string
		a, b domain.ClockRange
		want bool
	}{
		{"disjoint", r("10:00", "11:00"), r("12:00", "13:00"), false},
		{"touching end to start", r("10:00", "11:00"), r("11:00", "12:00"), false},
		{"partial", r("10:00", "11:00"), r("10:30", "11:30"), true},
		{"contained", r("10:00", "12:00"), r("10:30", "11:00"), true},
		{"identical", r("10:00", "11:00"), r("10:00", "11:00"), true},
		{"empty inside other", r("10:30", "10:30"), r("10:00", "11:00"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestClockAndDate_Text(t *testing.T) {
	late := domain.NewClock(25, 30)
	text, err := late.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "25:30", string(text))

	var parsed domain.Clock
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, late, parsed)
	assert.ErrorIs(t, parsed.UnmarshalText([]byte("noon")), domain.ErrInvalidClock)

	for _, bad := range []string{"10:30xyz", "10:3", "10:60", "-1:00", "+9:00", "10:+5", "10", ":30", "1030", " 10:30"} {
		assert.ErrorIs(t, parsed.UnmarshalText([]byte(bad)), domain.ErrInvalidClock, bad)
	}
	assert.Equal(t, late, parsed)

	var date domain.Date
	require.NoError(t, date.UnmarshalText([]byte("2024-02-29")))
	assert.Equal(t, domain.NewDate(2024, time.February, 29), date)
	assert.ErrorIs(t, date.UnmarshalText([]byte("2024-02-30")), domain.ErrInvalidDate)
}
