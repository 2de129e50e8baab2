package app

import (
	"fmt"

	catalogDomain "github.com/felixgeelhaar/cinema/internal/catalog/domain"
	catalogPersistence "github.com/felixgeelhaar/cinema/internal/catalog/infrastructure/persistence"
	schedulingDomain "github.com/felixgeelhaar/cinema/internal/scheduling/domain"
	schedulingPersistence "github.com/felixgeelhaar/cinema/internal/scheduling/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/cinema/internal/shared/application"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// MovieRepository creates the movie catalog for the configured driver.
func (f *RepositoryFactory) MovieRepository() (catalogDomain.Repository, error) {
	if err := f.supported(); err != nil {
		return nil, err
	}
	return catalogPersistence.NewSQLMovieRepository(f.conn), nil
}

// EventStore creates the schedule event store for the configured driver.
func (f *RepositoryFactory) EventStore() (schedulingDomain.EventStore, error) {
	if err := f.supported(); err != nil {
		return nil, err
	}
	return schedulingPersistence.NewSQLEventStore(f.conn), nil
}

// OutboxRepository creates an outbox repository for the configured driver.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	if err := f.supported(); err != nil {
		return nil, err
	}
	return outbox.NewSQLRepository(f.conn), nil
}

// UnitOfWork creates a unit of work whose transaction the repositories above
// join through the context.
func (f *RepositoryFactory) UnitOfWork() (sharedApplication.UnitOfWork, error) {
	if err := f.supported(); err != nil {
		return nil, err
	}
	return database.NewUnitOfWork(f.conn), nil
}

// The SQL repositories speak both dialects through database.Rebind, so the
// driver only has to be one the connection layer knows.
func (f *RepositoryFactory) supported() error {
	if !f.driver.IsValid() {
		return fmt.Errorf("unsupported driver: %s", f.driver)
	}
	return nil
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
