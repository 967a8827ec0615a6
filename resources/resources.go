// Package resources holds the files shipped inside the binary.
package resources

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // migrate driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var Migrations embed.FS

// ErrNotURL is returned for key=value connection strings, golang-migrate
// only understands postgres:// URLs.
var ErrNotURL = errors.New("migrations need a postgres:// database URL, key=value DSNs are not supported")

// NewMigrator returns a golang-migrate instance reading the embedded
// migrations, databaseURL must be a postgres:// URL.
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	if !strings.HasPrefix(databaseURL, "postgres://") && !strings.HasPrefix(databaseURL, "postgresql://") {
		return nil, ErrNotURL
	}

	src, err := iofs.New(Migrations, "migrations")
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create migrator: %w", err)
	}

	return m, nil
}

// MigrateUp applies every pending migration, being up to date is not an error.
func MigrateUp(databaseURL string) (err error) {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil && srcErr != nil {
			err = srcErr
		}
		if err == nil && dbErr != nil {
			err = dbErr
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
