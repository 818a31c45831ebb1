// Package migration applies the embedded schema migrations. Postgres goes
// through golang-migrate under an advisory lock; sqlite deployments (dev and
// tests) use gorm's AutoMigrate instead, since iofs migrations target the
// postgres dialect.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stockadefence/stockade/internal/config"
	templatedomain "github.com/stockadefence/stockade/internal/formulatemplate/domain"
	materialdomain "github.com/stockadefence/stockade/internal/material/domain"
	producttypedomain "github.com/stockadefence/stockade/internal/producttype/domain"
	projectdomain "github.com/stockadefence/stockade/internal/project/domain"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// Run applies the schema for the configured driver. It must be invoked
// explicitly by the migrate entrypoint before serve starts.
func Run(cfg *config.Config, conn *gorm.DB) error {
	if cfg.DBDriver == "postgres" {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return runPostgres(sqlDB)
	}
	return autoMigrate(conn)
}

func autoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&producttypedomain.ProductType{},
		&producttypedomain.ProductStyle{},
		&producttypedomain.Variable{},
		&producttypedomain.ComponentType{},
		&producttypedomain.ComponentAssignment{},
		&templatedomain.FormulaTemplate{},
		&materialdomain.Material{},
		&materialdomain.EligibilityRule{},
		&projectdomain.Project{},
		&projectdomain.LineItem{},
		&projectdomain.MaterialRowRecord{},
	)
}

func runPostgres(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	unlock, err := acquireAdvisoryLock(ctx, db)
	if err != nil {
		return err
	}
	defer func() {
		_ = unlock(context.Background())
	}()

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if _, err := ensureNotDirty(migrator); err != nil {
		return err
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	if _, err := ensureNotDirty(migrator); err != nil {
		return err
	}
	return nil
}

func ensureNotDirty(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database migrations are dirty at version %d", version)
	}
	return version, nil
}
