package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate brings the schema up to date for the given driver.
func Migrate(ctx context.Context, db *gorm.DB, driver string, log *logrus.Logger) error {
	switch driver {
	case DriverPostgres:
		return migratePostgres(db, log)
	case DriverSQLite:
		return migrateSQLite(ctx, db, log)
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func migratePostgres(db *gorm.DB, log *logrus.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(sqlDB, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("migrate driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("migrate source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Infof("Database schema at version %d (dirty=%v)", version, dirty)
	return nil
}

// migrateSQLite applies the embedded *.up.sql files in order. Every statement
// is written with IF NOT EXISTS so reruns are harmless.
func migrateSQLite(ctx context.Context, db *gorm.DB, log *logrus.Logger) error {
	files, err := fs.Glob(migrationsFS, "migrations/sqlite/*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, name := range files {
		raw, err := migrationsFS.ReadFile(name)
		if err != nil {
			return err
		}
		for _, stmt := range strings.Split(string(raw), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				return fmt.Errorf("migration %s: %w", name, err)
			}
		}
		log.Debugf("Applied migration %s", name)
	}

	log.Infof("Applied %d sqlite migrations", len(files))
	return nil
}
