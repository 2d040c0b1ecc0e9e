// Package testutil gives integration tests a throwaway Postgres schema with
// the run history tables.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/taskflow-qa/taskflow-e2e/internal/config"
	"github.com/taskflow-qa/taskflow-e2e/internal/database"
)

// Local docker defaults, overridden by the usual POSTGRES_* variables
var defaults = map[string]string{
	"POSTGRES_USER":     "postgres",
	"POSTGRES_PASSWORD": "postgres",
	"POSTGRES_DB":       "postgres",
	"POSTGRES_HOSTNAME": "localhost",
}

// TestDatabase is a connection scoped to a schema of its own
type TestDatabase struct {
	DB         *sql.DB
	SchemaName string

	admin *sql.DB
}

func getenv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaults[key]
}

// SetupTestDatabase creates a schema named after a fresh uuid, migrates it
// and returns a connection whose search_path points at it
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	pg, err := config.LoadPostgresConfig(getenv)
	if err != nil {
		t.Fatalf("Failed to load postgres config: %v", err)
	}

	admin, err := open(pg.ConnectionString())
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}

	schema := "runs_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Exec(fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		admin.Close()
		t.Fatalf("Failed to create schema %s: %v", schema, err)
	}

	td := &TestDatabase{SchemaName: schema, admin: admin}

	td.DB, err = open(fmt.Sprintf("%s search_path=%s", pg.ConnectionString(), schema))
	if err != nil {
		td.Teardown(t)
		t.Fatalf("Failed to connect to schema %s: %v", schema, err)
	}
	td.DB.SetMaxOpenConns(5)
	td.DB.SetConnMaxLifetime(time.Minute)

	if err := database.Migrate(td.DB); err != nil {
		td.Teardown(t)
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return td
}

func open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Teardown drops the schema and closes both connections
func (td *TestDatabase) Teardown(t *testing.T) {
	t.Helper()

	if td.DB != nil {
		td.DB.Close()
	}
	if _, err := td.admin.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", td.SchemaName)); err != nil {
		t.Logf("Warning: failed to drop schema %s: %v", td.SchemaName, err)
	}
	td.admin.Close()
}
