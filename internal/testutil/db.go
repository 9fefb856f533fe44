// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"io"
	"testing"

	"slot-booking/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Logger returns a logger that discards everything.
func Logger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// SetupTestDB opens a migrated in-memory SQLite database that is closed when
// the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	log := Logger()
	db, err := database.NewSQLiteConnection(":memory:", log)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(context.Background(), db, database.DriverSQLite, log); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}
