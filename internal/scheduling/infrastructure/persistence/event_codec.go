package persistence

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/google/uuid"
)

const (
	kindShow           = "show"
	kindUnavailability = "unavailability"
)

// ErrMalformedEvent is returned when a stored payload cannot be decoded.
var ErrMalformedEvent = errors.New("malformed schedule event")

// RoomEventRecord is the JSON form of a room event.
type RoomEventRecord struct {
	Kind                string     `json:"kind"`
	Date                string     `json:"date"`
	StartTime           string     `json:"start_time"`
	EndTime             string     `json:"end_time,omitempty"`
	MovieID             *uuid.UUID `json:"movie_id,omitempty"`
	DurationMinutes     int        `json:"duration_minutes,omitempty"`
	CleaningSlotMinutes int        `json:"cleaning_slot_minutes,omitempty"`
}

// eventRecord is the JSON form of a schedule event.
type eventRecord struct {
	Version int64           `json:"version"`
	RoomID  string          `json:"room_id"`
	Event   RoomEventRecord `json:"event"`
}

// EncodeScheduleEvent returns the event type and JSON payload of event. The
// type is the event's routing key.
func EncodeScheduleEvent(event domain.ScheduleEvent) (string, json.RawMessage, error) {
	var record eventRecord
	switch e := event.(type) {
	case domain.RoomEventAdded:
		record = eventRecord{Version: e.Version, RoomID: e.RoomID, Event: EncodeRoomEvent(e.Event)}
	case domain.RoomEventCancelled:
		record = eventRecord{Version: e.Version, RoomID: e.RoomID, Event: EncodeRoomEvent(e.Event)}
	default:
		return "", nil, fmt.Errorf("%w: %T", domain.ErrUnknownScheduleEvent, event)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode schedule event: %w", err)
	}
	return event.RoutingKey(), payload, nil
}

// DecodeScheduleEvent rebuilds an event stored by EncodeScheduleEvent.
func DecodeScheduleEvent(eventType string, payload []byte) (domain.ScheduleEvent, error) {
	var record eventRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	roomEvent, err := DecodeRoomEvent(record.Event)
	if err != nil {
		return nil, err
	}

	switch eventType {
	case domain.RoutingKeyRoomEventAdded:
		return domain.RoomEventAdded{Version: record.Version, RoomID: record.RoomID, Event: roomEvent}, nil
	case domain.RoutingKeyRoomEventCancelled:
		return domain.RoomEventCancelled{Version: record.Version, RoomID: record.RoomID, Event: roomEvent}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownScheduleEvent, eventType)
	}
}

// EncodeRoomEvent converts a room event to its JSON form.
func EncodeRoomEvent(event domain.RoomEvent) RoomEventRecord {
	switch e := event.(type) {
	case domain.Show:
		movieID := e.MovieID()
		return RoomEventRecord{
			Kind:                kindShow,
			Date:                e.Date().String(),
			StartTime:           e.StartTime().String(),
			MovieID:             &movieID,
			DurationMinutes:     e.DurationMinutes(),
			CleaningSlotMinutes: e.CleaningSlotDurationMinutes(),
		}
	default:
		return RoomEventRecord{
			Kind:      kindUnavailability,
			Date:      event.Date().String(),
			StartTime: event.StartTime().String(),
			EndTime:   event.EndTime().String(),
		}
	}
}

// DecodeRoomEvent converts the JSON form back to a room event.
func DecodeRoomEvent(record RoomEventRecord) (domain.RoomEvent, error) {
	date, err := domain.ParseDate(record.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	start, err := parseStoredClock(record.StartTime)
	if err != nil {
		return nil, err
	}

	switch record.Kind {
	case kindShow:
		if record.MovieID == nil {
			return nil, fmt.Errorf("%w: show without movie id", ErrMalformedEvent)
		}
		return domain.NewShow(*record.MovieID, date, start,
			record.DurationMinutes, record.CleaningSlotMinutes), nil
	case kindUnavailability:
		end, err := parseStoredClock(record.EndTime)
		if err != nil {
			return nil, err
		}
		return domain.NewUnavailability(date, start, end), nil
	default:
		return nil, fmt.Errorf("%w: unknown room event kind %q", ErrMalformedEvent, record.Kind)
	}
}

func parseStoredClock(value string) (domain.Clock, error) {
	var c domain.Clock
	if err := c.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return c, nil
}
