package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/cinema/internal/catalog/domain"
	"github.com/felixgeelhaar/cinema/pkg/observability"
	"github.com/google/uuid"
)

// AddMovieCommand contains the data needed to add a movie to the catalog.
type AddMovieCommand struct {
	Name                          string
	DurationMinutes               int
	ThreeDimensionalGlassesNeeded bool
}

// AddMovieResult contains the result of adding a movie.
type AddMovieResult struct {
	MovieID uuid.UUID
	Name    string
}

// AddMovieHandler handles the AddMovieCommand.
type AddMovieHandler struct {
	movieRepo domain.Repository
	metrics   observability.Metrics
	logger    *slog.Logger
}

// NewAddMovieHandler creates a new AddMovieHandler.
func NewAddMovieHandler(movieRepo domain.Repository, metrics observability.Metrics, logger *slog.Logger) *AddMovieHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AddMovieHandler{
		movieRepo: movieRepo,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle executes the AddMovieCommand.
func (h *AddMovieHandler) Handle(ctx context.Context, cmd AddMovieCommand) (*AddMovieResult, error) {
	movie, err := domain.NewMovie(cmd.Name, cmd.DurationMinutes, cmd.ThreeDimensionalGlassesNeeded)
	if err != nil {
		return nil, err
	}

	existing, err := h.movieRepo.FindByName(ctx, movie.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to look up movie: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateMovieName, movie.Name())
	}

	if err := h.movieRepo.Add(ctx, movie); err != nil {
		return nil, err
	}

	h.metrics.Counter(observability.MetricMoviesAdded, 1)
	h.logger.InfoContext(ctx, "movie added",
		"movie_id", movie.ID(),
		"name", movie.Name(),
		"duration_minutes", movie.DurationMinutes(),
	)

	return &AddMovieResult{MovieID: movie.ID(), Name: movie.Name()}, nil
}
