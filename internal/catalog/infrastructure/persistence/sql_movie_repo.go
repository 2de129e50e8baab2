package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/cinema/internal/catalog/domain"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const movieColumns = `id, name, duration_minutes, needs_3d_glasses, created_at`

// SQLMovieRepository implements domain.Repository on SQLite and PostgreSQL.
type SQLMovieRepository struct {
	conn database.Connection
}

// NewSQLMovieRepository creates a new SQL movie repository.
func NewSQLMovieRepository(conn database.Connection) *SQLMovieRepository {
	return &SQLMovieRepository{conn: conn}
}

func (r *SQLMovieRepository) executor(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

// Add inserts a movie. Duplicate names surface as domain.ErrDuplicateMovieName.
func (r *SQLMovieRepository) Add(ctx context.Context, movie *domain.Movie) error {
	_, err := r.executor(ctx).Exec(ctx, `
		INSERT INTO movies (`+movieColumns+`)
		VALUES (?, ?, ?, ?, ?)`,
		movie.ID().String(),
		movie.Name(),
		movie.DurationMinutes(),
		movie.ThreeDimensionalGlassesNeeded(),
		movie.CreatedAt().UTC().UnixMilli(),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateMovieName, movie.Name())
		}
		return fmt.Errorf("failed to insert movie: %w", err)
	}
	return nil
}

// List returns the catalog ordered by creation time.
func (r *SQLMovieRepository) List(ctx context.Context) ([]*domain.Movie, error) {
	rows, err := r.executor(ctx).Query(ctx, `
		SELECT `+movieColumns+`
		FROM movies
		ORDER BY created_at, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	var movies []*domain.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

// FindByName returns nil when no movie has the name.
func (r *SQLMovieRepository) FindByName(ctx context.Context, name string) (*domain.Movie, error) {
	row := r.executor(ctx).QueryRow(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE name = ?`, name)
	movie, err := scanMovie(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return movie, nil
}

// FindByID retrieves a movie by id.
func (r *SQLMovieRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Movie, error) {
	row := r.executor(ctx).QueryRow(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id.String())
	movie, err := scanMovie(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, err
	}
	return movie, nil
}

func scanMovie(row database.Row) (*domain.Movie, error) {
	var (
		id        string
		name      string
		duration  int
		glasses   bool
		createdAt int64
	)
	if err := row.Scan(&id, &name, &duration, &glasses, &createdAt); err != nil {
		return nil, err
	}

	movieID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid movie id %q: %w", id, err)
	}
	return domain.RehydrateMovie(movieID, name, duration, glasses, time.UnixMilli(createdAt).UTC()), nil
}
