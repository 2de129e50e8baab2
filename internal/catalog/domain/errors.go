package domain

import "errors"

var (
	// ErrMovieNotFound indicates the requested movie is not in the catalog.
	ErrMovieNotFound = errors.New("movie not found")

	// ErrDuplicateMovieName indicates another movie already uses the name.
	ErrDuplicateMovieName = errors.New("movie name already exists")

	// ErrEmptyName indicates the name cannot be empty.
	ErrEmptyName = errors.New("movie name cannot be empty")

	// ErrInvalidDuration indicates a movie length that is not positive.
	ErrInvalidDuration = errors.New("movie duration must be positive")
)
