package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrator applies the embedded schema migrations.
type Migrator struct {
	m *migrate.Migrate
}

func NewMigrator(db *sql.DB, migrations fs.FS) (*Migrator, error) {
	src, err := iofs.New(migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}

	return &Migrator{m: m}, nil
}

// Run migrates all the way in dir. Having nothing to do is not an error.
func (mg *Migrator) Run(dir Direction) error {
	var err error

	switch dir {
	case Up:
		err = mg.m.Up()
	case Down:
		err = mg.m.Down()
	default:
		return fmt.Errorf("unknown direction %q", dir)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("no migrations to apply", "direction", dir)
		return nil
	}

	if err != nil {
		return fmt.Errorf("migrating %s: %w", dir, err)
	}

	slog.Info("migrations applied", "direction", dir)

	return nil
}

// Version reports the applied version and whether the last run left it dirty.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("reading version: %w", err)
	}

	return v, dirty, nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()

	return errors.Join(srcErr, dbErr)
}
