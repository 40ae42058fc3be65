package migrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

var testMigrations = fstest.MapFS{
	"sql/001_create_notes.up.sql":    {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)")},
	"sql/001_create_notes.down.sql":  {Data: []byte("DROP TABLE notes")},
	"sql/002_add_notes_tag.up.sql":   {Data: []byte("ALTER TABLE notes ADD COLUMN tag TEXT")},
	"sql/002_add_notes_tag.down.sql": {Data: []byte("ALTER TABLE notes DROP COLUMN tag")},
	"sql/README.md":                  {Data: []byte("not a migration")},
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFSProviderGetMigrations(t *testing.T) {
	migrations, err := NewFSProvider(testMigrations, "sql", "").GetMigrations()
	if err != nil {
		t.Fatalf("GetMigrations() error = %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("got %d migrations, want 2", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "create notes" || migrations[0].Down == "" {
		t.Errorf("first migration = %+v", migrations[0])
	}
	if migrations[1].Version != 2 {
		t.Errorf("second migration version = %d", migrations[1].Version)
	}
}

func TestMigrator(t *testing.T) {
	db := openDB(t)
	m := NewMigrator(db, NewFSProvider(testMigrations, "sql", "test_migrations"))

	var applied []int
	m.Applied = func(mig Migration, up bool) { applied = append(applied, mig.Version) }

	pending, err := m.GetPendingMigrations()
	if err != nil || len(pending) != 2 {
		t.Fatalf("GetPendingMigrations() = %d, %v; want 2 pending", len(pending), err)
	}

	if err := m.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	if v, _ := m.GetCurrentVersion(); v != 2 {
		t.Errorf("version after MigrateUp = %d, want 2", v)
	}
	if _, err := db.Exec("INSERT INTO notes (body, tag) VALUES ('a', 'b')"); err != nil {
		t.Errorf("schema not applied: %v", err)
	}

	// Applying again is a no-op.
	if err := m.MigrateUp(); err != nil {
		t.Fatalf("second MigrateUp() error = %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("applied = %v, want two migrations", applied)
	}

	if err := m.MigrateDown(0); err != nil {
		t.Fatalf("MigrateDown(0) error = %v", err)
	}
	if v, _ := m.GetCurrentVersion(); v != 0 {
		t.Errorf("version after MigrateDown = %d, want 0", v)
	}
	if _, err := db.Exec("SELECT * FROM notes"); err == nil {
		t.Errorf("notes table still exists after rollback")
	}

	if err := m.MigrateDown(0); err == nil {
		t.Errorf("MigrateDown to the current version should fail")
	}
}
