// Package migrations applies the embedded schema for each database driver.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	sharedApplication "github.com/felixgeelhaar/cinema/internal/shared/application"
	"github.com/felixgeelhaar/cinema/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY
)`

// Run applies every pending .up.sql file for the connection's driver, in
// file name order. Each file runs in its own transaction and is recorded in
// schema_migrations.
func Run(ctx context.Context, conn database.Connection) error {
	files, err := upFiles(conn.Driver())
	if err != nil {
		return err
	}

	if _, err := conn.Exec(ctx, createVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	uow := database.NewUnitOfWork(conn)
	for _, file := range files {
		err := sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
			return apply(txCtx, database.ExecutorFromContext(txCtx, conn), conn.Driver(), file)
		})
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", file, err)
		}
	}
	return nil
}

// Pending returns the migration files not applied yet.
func Pending(ctx context.Context, conn database.Connection) ([]string, error) {
	files, err := upFiles(conn.Driver())
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, createVersionTable); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var pending []string
	for _, file := range files {
		applied, err := isApplied(ctx, conn, file)
		if err != nil {
			return nil, err
		}
		if !applied {
			pending = append(pending, file)
		}
	}
	return pending, nil
}

func upFiles(driver database.Driver) ([]string, error) {
	if !driver.IsValid() {
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	entries, err := fs.ReadDir(migrationsFS, driver.String())
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func isApplied(ctx context.Context, exec database.Executor, file string) (bool, error) {
	var count int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, file).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func apply(ctx context.Context, exec database.Executor, driver database.Driver, file string) error {
	applied, err := isApplied(ctx, exec, file)
	if err != nil || applied {
		return err
	}

	content, err := migrationsFS.ReadFile(driver.String() + "/" + file)
	if err != nil {
		return err
	}
	for _, stmt := range statements(string(content)) {
		if _, err := exec.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	_, err = exec.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES (?)`, file)
	return err
}

// statements splits a migration file on semicolons ending a line.
func statements(content string) []string {
	var result []string
	for _, part := range strings.Split(content, ";\n") {
		stmt := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ";"))
		if stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}
