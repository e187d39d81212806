// Package testing provides testing utilities and helpers for the debtfolio project.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/aristath/debtfolio/internal/database"
)

// NewTestDB creates a temporary-file SQLite database for testing with automatic schema migration.
// Returns the database instance and a cleanup function that closes the connection.
//
// Supported schema names:
//   - "warehouse" - applies warehouse_schema.sql
//   - "cache" - applies cache_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	// Each test gets its own file so parallel tests never share state
	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	profile := database.ProfileStandard
	switch name {
	case database.NameWarehouse:
		profile = database.ProfileWarehouse
	case database.NameCache:
		profile = database.ProfileCache
	}

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db, func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			_ = os.Remove(tmpPath + suffix)
		}
	}
}

// NewTestDBWithSchema creates a test database and executes a custom schema on it.
func NewTestDBWithSchema(t *testing.T, name string, schema string) (*database.DB, func()) {
	t.Helper()

	db, cleanup := NewTestDB(t, name)
	if schema != "" {
		if _, err := db.Conn().Exec(schema); err != nil {
			cleanup()
			t.Fatalf("Failed to execute custom schema for test database %s: %v", name, err)
		}
	}
	return db, cleanup
}
