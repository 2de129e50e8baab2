package persistence

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/cinema/internal/catalog/domain"
	"github.com/google/uuid"
)

// InMemoryMovieRepository keeps the catalog in memory, in insertion order.
type InMemoryMovieRepository struct {
	mu     sync.RWMutex
	movies []*domain.Movie
}

// NewInMemoryMovieRepository creates an empty in-memory catalog.
func NewInMemoryMovieRepository() *InMemoryMovieRepository {
	return &InMemoryMovieRepository{}
}

func (r *InMemoryMovieRepository) Add(_ context.Context, movie *domain.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.movies {
		if existing.Name() == movie.Name() {
			return domain.ErrDuplicateMovieName
		}
	}
	r.movies = append(r.movies, movie)
	return nil
}

func (r *InMemoryMovieRepository) List(_ context.Context) ([]*domain.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*domain.Movie(nil), r.movies...), nil
}

func (r *InMemoryMovieRepository) FindByName(_ context.Context, name string) (*domain.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, movie := range r.movies {
		if movie.Name() == name {
			return movie, nil
		}
	}
	return nil, nil
}

func (r *InMemoryMovieRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, movie := range r.movies {
		if movie.ID() == id {
			return movie, nil
		}
	}
	return nil, domain.ErrMovieNotFound
}
