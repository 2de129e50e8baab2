package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/pkg/config"
)

// ErrValidation matches every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError rejects a request before the schedule is consulted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ShowRequest is what validators see of a show booking.
type ShowRequest struct {
	RoomID     string
	MovieName  string
	Date       domain.Date
	StartTime  domain.Clock
	IsPremiere bool
}

// ShowValidator checks a show request. It returns nil or a *ValidationError.
type ShowValidator interface {
	Validate(req ShowRequest) error
}

// ShowValidatorFunc adapts a function to ShowValidator.
type ShowValidatorFunc func(req ShowRequest) error

func (f ShowValidatorFunc) Validate(req ShowRequest) error { return f(req) }

// Window is a closed range of start times.
type Window struct {
	From domain.Clock
	To   domain.Clock
}

// WindowFromConfig converts a configured window.
func WindowFromConfig(w config.Window) Window {
	return Window{From: domain.Clock(w.From), To: domain.Clock(w.To)}
}

// Contains reports whether c lies in the window, bounds included.
func (w Window) Contains(c domain.Clock) bool {
	return c >= w.From && c <= w.To
}

// ShowStartTimeValidator only admits shows starting inside window.
func ShowStartTimeValidator(window Window) ShowValidator {
	return ShowValidatorFunc(func(req ShowRequest) error {
		if window.Contains(req.StartTime) {
			return nil
		}
		return validationErrorf("show can start only between %s and %s", window.From, window.To)
	})
}

// PremiereStartTimeValidator only admits premieres starting inside window.
func PremiereStartTimeValidator(window Window) ShowValidator {
	return ShowValidatorFunc(func(req ShowRequest) error {
		if !req.IsPremiere || window.Contains(req.StartTime) {
			return nil
		}
		return validationErrorf("a premiere show can only be scheduled between %s and %s", window.From, window.To)
	})
}

// RunValidators returns the first validation error.
func RunValidators(req ShowRequest, validators ...ShowValidator) error {
	for _, v := range validators {
		if err := v.Validate(req); err != nil {
			return err
		}
	}
	return nil
}

// DurationValidator rejects shows the schedule would take as given but that
// make no sense: a movie of non-positive length or a negative cleaning slot.
// It runs once the movie is known.
type DurationValidator struct{}

func (DurationValidator) Validate(show domain.Show) error {
	if show.DurationMinutes() <= 0 {
		return validationErrorf("movie duration must be positive, got %d minutes", show.DurationMinutes())
	}
	if show.CleaningSlotDurationMinutes() < 0 {
		return validationErrorf("cleaning slot must not be negative, got %d minutes", show.CleaningSlotDurationMinutes())
	}
	return nil
}

// ValidateUnavailability rejects blocks that do not end after they start.
func ValidateUnavailability(start, end domain.Clock) error {
	if end <= start {
		return validationErrorf("unavailability must end after it starts (%s-%s)", start, end)
	}
	return nil
}

// ValidateRoomID rejects blank room ids.
func ValidateRoomID(roomID string) error {
	if strings.TrimSpace(roomID) == "" {
		return validationErrorf("room id is required")
	}
	return nil
}
