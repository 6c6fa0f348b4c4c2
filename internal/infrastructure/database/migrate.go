package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func migrationSource() (source.Driver, error) {
	return iofs.New(migrationFiles, "migrations")
}

// NewMigrator runs the embedded migrations against db. Closing the returned
// migrator closes db as well.
func NewMigrator(db *gorm.DB) (*migrate.Migrate, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	src, err := migrationSource()
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, "postgres", driver)
}

// MigrateUp applies every pending migration
func MigrateUp(m *migrate.Migrate, log *logrus.Logger) error {
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Database schema is up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logVersion(m, log)
	return nil
}

// MigrateDown reverts steps migrations, or all of them when steps <= 0
func MigrateDown(m *migrate.Migrate, steps int, log *logrus.Logger) error {
	var err error
	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("No migrations to revert")
			return nil
		}
		return fmt.Errorf("failed to revert migrations: %w", err)
	}

	logVersion(m, log)
	return nil
}

func logVersion(m *migrate.Migrate, log *logrus.Logger) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info("Database schema is empty")
	case err != nil:
		log.Warnf("Failed to read schema version: %+v", err)
	default:
		log.Infof("Database schema at version %d (dirty=%t)", version, dirty)
	}
}
