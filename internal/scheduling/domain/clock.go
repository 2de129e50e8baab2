package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidClock = errors.New("invalid time of day, use HH:MM")
	ErrInvalidDate  = errors.New("invalid date, use YYYY-MM-DD")
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Clock is a wall-clock time of day counted in minutes after midnight.
// Events running past midnight produce values beyond 24:00; they still
// belong to the date they started on.
type Clock int

// NewClock creates a Clock from an hour and a minute.
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock parses a HH:MM time of day.
func ParseClock(value string) (Clock, error) {
	parsed, err := time.Parse(ClockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return NewClock(parsed.Hour(), parsed.Minute()), nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Add returns the clock shifted by minutes.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// Before reports whether c is earlier than other.
func (c Clock) Before(other Clock) bool {
	return c < other
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText reads the HH:MM form MarshalText writes, including hours
// past 23 for events running past midnight.
func (c *Clock) UnmarshalText(text []byte) error {
	hours, minutes, ok := strings.Cut(string(text), ":")
	if !ok || len(hours) < 2 || len(minutes) != 2 || !isDigits(hours) || !isDigits(minutes) {
		return fmt.Errorf("%w: %q", ErrInvalidClock, string(text))
	}
	h, err := strconv.Atoi(hours)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidClock, string(text))
	}
	m, _ := strconv.Atoi(minutes)
	if m > 59 {
		return fmt.Errorf("%w: %q", ErrInvalidClock, string(text))
	}
	*c = NewClock(h, m)
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Date is a calendar day without a time zone.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate creates a Date, normalizing out-of-range values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return DateOf(parsed), nil
}

func (d Date) Year() int          { return d.year }
func (d Date) Month() time.Month  { return d.month }
func (d Date) Day() int           { return d.day }
func (d Date) IsZero() bool       { return d == Date{} }
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.year != o.year:
		return compareInts(d.year, o.year)
	case d.month != o.month:
		return compareInts(int(d.month), int(o.month))
	default:
		return compareInts(d.day, o.day)
	}
}

// At returns the instant at clock c on day d in loc.
func (d Date) At(c Clock, loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc).Add(time.Duration(c) * time.Minute)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ClockRange is a half-open interval [Start, End) within one day.
type ClockRange struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// IsEmpty reports whether the range covers no time at all.
func (r ClockRange) IsEmpty() bool {
	return r.End <= r.Start
}

// Overlaps reports whether two ranges share any instant. The end of one
// range touching the start of the other is not an overlap.
func (r ClockRange) Overlaps(other ClockRange) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return r.Start < other.End && other.Start < r.End
}

// DurationMinutes returns the length of the range.
func (r ClockRange) DurationMinutes() int {
	return int(r.End - r.Start)
}

func (r ClockRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}
