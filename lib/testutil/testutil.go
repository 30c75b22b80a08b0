package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// OpenSqlite opens an in-memory sqlite database that is closed when the test
// ends. It is limited to one connection since every connection to `:memory:`
// gets its own database.
func OpenSqlite(t testing.TB) *sql.DB {
	t.Helper()

	database, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	database.SetMaxOpenConns(1)
	t.Cleanup(func() {
		database.Close()
	})
	return database
}
