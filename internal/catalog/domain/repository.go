package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores the movie catalog.
type Repository interface {
	// Add stores a new movie. It returns ErrDuplicateMovieName when the name
	// is taken.
	Add(ctx context.Context, movie *Movie) error

	// List returns every movie in the order they were added.
	List(ctx context.Context) ([]*Movie, error)

	// FindByName returns nil and no error when no movie has the name.
	FindByName(ctx context.Context, name string) (*Movie, error)

	// FindByID returns ErrMovieNotFound when the id is unknown.
	FindByID(ctx context.Context, id uuid.UUID) (*Movie, error)
}
