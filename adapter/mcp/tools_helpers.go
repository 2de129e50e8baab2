package mcp

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
)

func parseDate(value string, fallback time.Time) (domain.Date, error) {
	if value == "" {
		return domain.DateOf(fallback), nil
	}
	date, err := domain.ParseDate(value)
	if err != nil {
		return domain.Date{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return date, nil
}

func parseOptionalDate(value string) (*domain.Date, error) {
	if value == "" {
		return nil, nil
	}
	date, err := parseDate(value, time.Time{})
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func parseClock(value string) (domain.Clock, error) {
	if value == "" {
		return 0, errors.New("time is required")
	}
	clock, err := domain.ParseClock(value)
	if err != nil {
		return 0, fmt.Errorf("invalid time format, use HH:MM: %w", err)
	}
	return clock, nil
}
