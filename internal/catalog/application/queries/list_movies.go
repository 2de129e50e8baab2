package queries

import (
	"context"

	"github.com/felixgeelhaar/cinema/internal/catalog/domain"
	"github.com/google/uuid"
)

// MovieDTO is a data transfer object for movies.
type MovieDTO struct {
	ID                            uuid.UUID `json:"id"`
	Name                          string    `json:"name"`
	DurationMinutes               int       `json:"duration_minutes"`
	ThreeDimensionalGlassesNeeded bool      `json:"three_dimensional_glasses_needed"`
}

// ListMoviesQuery lists the catalog.
type ListMoviesQuery struct{}

// ListMoviesHandler handles the ListMoviesQuery.
type ListMoviesHandler struct {
	movieRepo domain.Repository
}

// NewListMoviesHandler creates a new ListMoviesHandler.
func NewListMoviesHandler(movieRepo domain.Repository) *ListMoviesHandler {
	return &ListMoviesHandler{movieRepo: movieRepo}
}

// Handle returns every movie in the order they were added.
func (h *ListMoviesHandler) Handle(ctx context.Context, _ ListMoviesQuery) ([]MovieDTO, error) {
	movies, err := h.movieRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]MovieDTO, 0, len(movies))
	for _, m := range movies {
		dtos = append(dtos, ToMovieDTO(m))
	}
	return dtos, nil
}

// ToMovieDTO converts a movie to its DTO.
func ToMovieDTO(m *domain.Movie) MovieDTO {
	return MovieDTO{
		ID:                            m.ID(),
		Name:                          m.Name(),
		DurationMinutes:               m.DurationMinutes(),
		ThreeDimensionalGlassesNeeded: m.ThreeDimensionalGlassesNeeded(),
	}
}
