package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator wraps golang-migrate with structured logging around every
// schema operation.
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// New builds a Migrator reading .sql pairs from migrationsPath against
// an open postgres connection.
func New(db *sql.DB, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{m: m, logger: logger}, nil
}

// Up applies every pending migration.
func (mg *Migrator) Up() error {
	mg.logger.Info("Running migrations up")

	switch err := mg.m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		mg.logger.Info("No migrations to apply")
		return nil
	case err != nil:
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, err := mg.m.Version()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	mg.logger.Info("Migrations completed", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Down rolls every migration back.
func (mg *Migrator) Down() error {
	mg.logger.Info("Running migrations down")

	switch err := mg.m.Down(); {
	case errors.Is(err, migrate.ErrNoChange):
		mg.logger.Info("No migrations to roll back")
		return nil
	case err != nil:
		return fmt.Errorf("migration down failed: %w", err)
	}

	mg.logger.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations, negative n rolls back.
func (mg *Migrator) Steps(n int) error {
	mg.logger.Info("Running migration steps", zap.Int("steps", n))

	switch err := mg.m.Steps(n); {
	case errors.Is(err, migrate.ErrNoChange):
		mg.logger.Info("No migrations to apply")
		return nil
	case err != nil:
		return fmt.Errorf("migration steps failed: %w", err)
	}

	version, dirty, err := mg.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	mg.logger.Info("Migration steps completed", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// GoTo migrates up or down until the schema sits at version.
func (mg *Migrator) GoTo(version uint) error {
	mg.logger.Info("Migrating to version", zap.Uint("target_version", version))

	switch err := mg.m.Migrate(version); {
	case errors.Is(err, migrate.ErrNoChange):
		mg.logger.Info("Already at target version")
		return nil
	case err != nil:
		return fmt.Errorf("migration to version %d failed: %w", version, err)
	}

	mg.logger.Info("Migration to version completed", zap.Uint("version", version))
	return nil
}

// Version reports the current schema version. A database with no
// applied migrations reports version 0.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded version without running any migration.
// Only for recovering from a dirty state.
func (mg *Migrator) Force(version int) error {
	mg.logger.Warn("Forcing migration version", zap.Int("version", version))

	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}

	mg.logger.Info("Migration version forced", zap.Int("version", version))
	return nil
}

// Drop destroys every object in the database.
func (mg *Migrator) Drop() error {
	mg.logger.Warn("Dropping database - all data will be lost")

	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}

	mg.logger.Info("Database dropped")
	return nil
}

// Close releases the source and database handles.
func (mg *Migrator) Close() error {
	sourceErr, dbErr := mg.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("failed to close source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close database: %w", dbErr)
	}
	return nil
}
