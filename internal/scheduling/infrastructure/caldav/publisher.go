package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/cinema/pkg/observability"
)

// Custom properties marking events written by the publisher.
const (
	PropXCinema     = "X-CINEMA"
	PropXCinemaRoom = "X-CINEMA-ROOM"
)

const productID = "-//Cinema//Room Schedule//EN"

// PublishResult counts what a PublishRoom call changed on the server.
type PublishResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Publisher mirrors room schedules into a CalDAV calendar, one VEVENT per
// room event.
type Publisher struct {
	baseURL      string
	username     string
	password     string
	calendarPath string
	location     *time.Location
	httpClient   *http.Client
	metrics      observability.Metrics
	logger       *slog.Logger
}

// NewPublisher creates a CalDAV publisher using basic auth.
func NewPublisher(baseURL, username, password string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		location:   time.UTC,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		metrics:    observability.NoopMetrics{},
		logger:     logger,
	}
}

// WithCalendarPath sets the calendar collection to write to. Without it the
// first calendar of the current principal is used.
func (p *Publisher) WithCalendarPath(path string) *Publisher {
	if path != "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	p.calendarPath = path
	return p
}

// WithLocation sets the zone schedule dates and clocks are interpreted in.
func (p *Publisher) WithLocation(loc *time.Location) *Publisher {
	if loc != nil {
		p.location = loc
	}
	return p
}

// WithHTTPClient replaces the HTTP client.
func (p *Publisher) WithHTTPClient(client *http.Client) *Publisher {
	if client != nil {
		p.httpClient = client
	}
	return p
}

// WithMetrics sets the metrics collector.
func (p *Publisher) WithMetrics(metrics observability.Metrics) *Publisher {
	if metrics != nil {
		p.metrics = metrics
	}
	return p
}

// PublishRoom upserts the given events of roomID and removes managed events
// of that room which are no longer scheduled.
func (p *Publisher) PublishRoom(ctx context.Context, roomID string, events []queries.EnrichedRoomEvent) (PublishResult, error) {
	var result PublishResult

	client, err := p.client()
	if err != nil {
		return result, err
	}
	calPath, err := p.findCalendarPath(ctx, client)
	if err != nil {
		return result, fmt.Errorf("failed to find calendar: %w", err)
	}

	keep := make(map[string]struct{}, len(events))
	for _, event := range events {
		path := calPath + EventUID(roomID, event) + ".ics"
		keep[path] = struct{}{}

		updated, err := upsertEvent(ctx, client, path, p.toICalendar(roomID, event))
		if err != nil {
			p.logger.WarnContext(ctx, "caldav publish failed", "room_id", roomID, "event_path", path, "error", err)
			result.Failed++
			continue
		}
		if updated {
			result.Updated++
		} else {
			result.Created++
		}
	}

	deleted, err := p.deleteStale(ctx, client, calPath, roomID, keep)
	if err != nil {
		p.logger.WarnContext(ctx, "caldav stale cleanup failed", "room_id", roomID, "error", err)
	}
	result.Deleted = deleted

	p.record(result)
	p.logger.InfoContext(ctx, "room schedule published",
		"room_id", roomID,
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
		"failed", result.Failed,
	)
	return result, nil
}

func (p *Publisher) record(result PublishResult) {
	for outcome, n := range map[string]int{
		"created": result.Created,
		"updated": result.Updated,
		"deleted": result.Deleted,
		"failed":  result.Failed,
	} {
		if n > 0 {
			p.metrics.Counter(observability.MetricCalendarPublished, int64(n), observability.T("outcome", outcome))
		}
	}
}

func (p *Publisher) client() (*caldav.Client, error) {
	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(p.httpClient, p.username, p.password), p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (p *Publisher) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if p.calendarPath != "" {
		return p.calendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}

	path := cals[0].Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return path, nil
}

func upsertEvent(ctx context.Context, client *caldav.Client, path string, cal *ical.Calendar) (bool, error) {
	_, err := client.GetCalendarObject(ctx, path)
	exists := err == nil

	if _, err := client.PutCalendarObject(ctx, path, cal); err != nil {
		return false, err
	}
	return exists, nil
}

func (p *Publisher) deleteStale(ctx context.Context, client *caldav.Client, calPath, roomID string, keep map[string]struct{}) (int, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{
				{Name: "VEVENT", Props: []string{"UID", PropXCinema, PropXCinemaRoom}},
			},
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: "VEVENT"}},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for i := range objects {
		obj := &objects[i]
		if !isManagedRoomEvent(obj.Data, roomID) {
			continue
		}
		if _, ok := keep[obj.Path]; ok {
			continue
		}
		if err := client.RemoveAll(ctx, obj.Path); err != nil {
			p.logger.WarnContext(ctx, "failed to delete caldav event", "path", obj.Path, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// isManagedRoomEvent reports whether cal holds a VEVENT written by the
// publisher for roomID.
func isManagedRoomEvent(cal *ical.Calendar, roomID string) bool {
	if cal == nil {
		return false
	}
	for _, child := range cal.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		managed := child.Props.Get(PropXCinema)
		room := child.Props.Get(PropXCinemaRoom)
		if managed != nil && managed.Value == "1" && room != nil && room.Value == roomID {
			return true
		}
	}
	return false
}

// EventUID identifies a room event on the calendar. A room holds at most one
// active event per date and start time, so the triple is unique.
func EventUID(roomID string, event queries.EnrichedRoomEvent) string {
	return fmt.Sprintf("cinema-%s-%04d%02d%02d-%02d%02d",
		sanitize(roomID),
		event.Date.Year(), int(event.Date.Month()), event.Date.Day(),
		event.StartTime.Hour(), event.StartTime.Minute(),
	)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (p *Publisher) toICalendar(roomID string, event queries.EnrichedRoomEvent) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	end := event.EndTime
	if event.CleaningSlot != nil {
		end = event.CleaningSlot.End
	}

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, EventUID(roomID, event))
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeStart, event.Date.At(event.StartTime, p.location).UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, event.Date.At(end, p.location).UTC())
	vevent.Props.SetText(ical.PropSummary, summary(roomID, event))
	vevent.Props.SetText(ical.PropDescription, description(event))
	vevent.Props.SetText(ical.PropLocation, "Room "+roomID)

	managed := ical.NewProp(PropXCinema)
	managed.Value = "1"
	vevent.Props.Set(managed)
	room := ical.NewProp(PropXCinemaRoom)
	room.Value = roomID
	vevent.Props.Set(room)

	cal.Children = append(cal.Children, vevent.Component)
	return cal
}

func summary(roomID string, event queries.EnrichedRoomEvent) string {
	if event.Kind == queries.KindShow && event.Movie != nil {
		return event.Movie.Name
	}
	return "Room " + roomID + " unavailable"
}

func description(event queries.EnrichedRoomEvent) string {
	if event.Kind != queries.KindShow {
		return fmt.Sprintf("Unavailable %s-%s", event.StartTime, event.EndTime)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Screening %s-%s", event.StartTime, event.EndTime)
	if event.CleaningSlot != nil {
		fmt.Fprintf(&b, "\nCleaning %s-%s", event.CleaningSlot.Start, event.CleaningSlot.End)
	}
	if event.Movie != nil && event.Movie.ThreeDimensionalGlassesNeeded {
		b.WriteString("\n3D glasses needed")
	}
	return b.String()
}
