package db

import (
	"embed"
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
)

//go:embed migrations/*.json
var migrationFiles embed.FS

// RunMigrations applies the embedded index migrations to the named database.
func RunMigrations(mongoURI, database string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	databaseURL, err := migrationURL(mongoURI, database)
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if dirty {
		logger.App().Warnf("Database is in a dirty state at version %d, forcing clean state", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force migration: %w", err)
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.App().Info("Database migrations completed")
	return nil
}

// migrationURL points the connection string at database, which the migrate
// driver reads from the URL path.
func migrationURL(mongoURI, database string) (string, error) {
	u, err := url.Parse(mongoURI)
	if err != nil {
		return "", fmt.Errorf("failed to parse MongoDB URI: %w", err)
	}
	u.Path = "/" + database
	return u.String(), nil
}
