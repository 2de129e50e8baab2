package commands

import (
	"context"
	"fmt"
	"log/slog"

	catalogDomain "github.com/felixgeelhaar/cinema/internal/catalog/domain"
	"github.com/felixgeelhaar/cinema/internal/scheduling/application/services"
	"github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	"github.com/felixgeelhaar/cinema/pkg/observability"
)

// ScheduleShowCommand contains the data needed to schedule a show.
type ScheduleShowCommand struct {
	RoomID     string
	MovieName  string
	Date       domain.Date
	StartTime  domain.Clock
	IsPremiere bool
}

func (c ScheduleShowCommand) request() services.ShowRequest {
	return services.ShowRequest{
		RoomID:     c.RoomID,
		MovieName:  c.MovieName,
		Date:       c.Date,
		StartTime:  c.StartTime,
		IsPremiere: c.IsPremiere,
	}
}

// ScheduleShowResult contains the result of scheduling a show.
type ScheduleShowResult struct {
	RoomID    string
	Date      domain.Date
	StartTime domain.Clock
	Movie     *catalogDomain.Movie
	Show      domain.Show
	Version   int64
}

// ScheduleShowHandler handles the ScheduleShowCommand.
type ScheduleShowHandler struct {
	writer              *ScheduleWriter
	movies              catalogDomain.Repository
	validators          []services.ShowValidator
	cleaningSlotMinutes int
	metrics             observability.Metrics
	logger              *slog.Logger
}

// NewScheduleShowHandler creates a new ScheduleShowHandler. Validators run in
// order and the first error wins.
func NewScheduleShowHandler(
	writer *ScheduleWriter,
	movies catalogDomain.Repository,
	cleaningSlotMinutes int,
	metrics observability.Metrics,
	logger *slog.Logger,
	validators ...services.ShowValidator,
) *ScheduleShowHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleShowHandler{
		writer:              writer,
		movies:              movies,
		validators:          validators,
		cleaningSlotMinutes: cleaningSlotMinutes,
		metrics:             metrics,
		logger:              logger,
	}
}

// Handle executes the ScheduleShowCommand.
func (h *ScheduleShowHandler) Handle(ctx context.Context, cmd ScheduleShowCommand) (*ScheduleShowResult, error) {
	return observability.TimeOperationResult(ctx, h.logger, h.metrics, "schedule.show", func() (*ScheduleShowResult, error) {
		return h.handle(ctx, cmd)
	})
}

func (h *ScheduleShowHandler) handle(ctx context.Context, cmd ScheduleShowCommand) (*ScheduleShowResult, error) {
	if err := services.ValidateRoomID(cmd.RoomID); err != nil {
		return nil, err
	}
	if err := services.RunValidators(cmd.request(), h.validators...); err != nil {
		return nil, err
	}

	movie, err := h.movies.FindByName(ctx, cmd.MovieName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up movie: %w", err)
	}
	if movie == nil {
		return nil, fmt.Errorf("%w: %s", catalogDomain.ErrMovieNotFound, cmd.MovieName)
	}

	show := domain.NewShow(movie.ID(), cmd.Date, cmd.StartTime, movie.DurationMinutes(), h.cleaningSlotMinutes)
	if err := (services.DurationValidator{}).Validate(show); err != nil {
		return nil, err
	}

	outcome, err := h.writer.Write(ctx, "schedule_show", domain.ScheduleRoomEvent{RoomID: cmd.RoomID, Event: show})
	if err != nil {
		return nil, err
	}

	return &ScheduleShowResult{
		RoomID:    cmd.RoomID,
		Date:      cmd.Date,
		StartTime: cmd.StartTime,
		Movie:     movie,
		Show:      show,
		Version:   outcome.Version,
	}, nil
}
