package testutil

import (
	"database/sql"
	"testing"

	"travelhost-backend/lib/telemetry"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// OpenDB opens an in-memory sqlite database with the given schemas
// applied, closed when the test finishes.
func OpenDB(t testing.TB, schemas ...string) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, schema := range schemas {
		_, err = db.Exec(schema)
		require.NoError(t, err)
	}
	return db
}

// Setup prepares telemetry and an in-memory database for one package's
// tests.
func Setup(t testing.TB, name string, schemas ...string) *sql.DB {
	cleanup := telemetry.SetupForTesting(t, "test:"+name)
	t.Cleanup(cleanup)
	return OpenDB(t, schemas...)
}
