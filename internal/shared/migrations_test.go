package shared

import (
	"testing"
	"testing/fstest"
)

func TestMigrations(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations(migrationFiles)
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}
		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}
		if migrations[0].Name != "create_tables" {
			t.Errorf("expected first migration create_tables, got %q", migrations[0].Name)
		}
	})

	t.Run("incomplete migration", func(t *testing.T) {
		fsys := fstest.MapFS{
			"sql/0000_init_up.sql":   {Data: []byte("CREATE TABLE a (id INTEGER)")},
			"sql/0001_more_up.sql":   {Data: []byte("CREATE TABLE b (id INTEGER)")},
			"sql/0000_init_down.sql": {Data: []byte("DROP TABLE a")},
			"sql/README.md":          {Data: []byte("ignored")},
		}
		if _, err := loadMigrations(fsys); err == nil {
			t.Error("expected an error for a migration without a down script")
		}
	})

	t.Run("statements", func(t *testing.T) {
		got := statements("-- header\nCREATE TABLE a (id INTEGER); -- trailing\n\nINSERT INTO a VALUES (1);\n")
		if len(got) != 2 {
			t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
		}
		if got[0] != "CREATE TABLE a (id INTEGER)" {
			t.Errorf("unexpected first statement %q", got[0])
		}
	})

	t.Run("RunMigrations and RollbackMigration", func(t *testing.T) {
		db, err := NewDatabase(MemoryDSN)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		for _, table := range []string{"diagrams", "diagrams_sequence", "chord_shapes", "chord_shapes_sequence"} {
			if _, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1"); err != nil {
				t.Errorf("%s table should exist after migrations: %v", table, err)
			}
		}

		var seq int
		if err := db.QueryRow("SELECT value FROM diagrams_sequence WHERE id = 1").Scan(&seq); err != nil {
			t.Fatalf("sequence row should be seeded: %v", err)
		}
		if seq != 0 {
			t.Errorf("expected seeded sequence 0, got %d", seq)
		}

		status, err := Migrations(db)
		if err != nil {
			t.Fatalf("failed to list migrations: %v", err)
		}
		for _, s := range status {
			if !s.Applied {
				t.Errorf("migration %d should be applied", s.Version)
			}
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}
		if _, err := db.Exec("SELECT 1 FROM diagrams LIMIT 1"); err == nil {
			t.Error("diagrams table should be dropped after rollback")
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count != len(status)-1 {
			t.Errorf("expected %d applied migrations after rollback, got %d", len(status)-1, count)
		}
	})

	t.Run("rollback with nothing applied", func(t *testing.T) {
		db, err := NewDatabase(MemoryDSN)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RollbackMigration(db); err == nil {
			t.Error("expected an error rolling back an empty database")
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		db, err := NewDatabase(MemoryDSN)
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		for i := range 2 {
			if err := RunMigrations(db); err != nil {
				t.Fatalf("run %d failed: %v", i+1, err)
			}
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		migrations, _ := loadMigrations(migrationFiles)
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})
}
