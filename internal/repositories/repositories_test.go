package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDSN)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newDiagram(chord, pt string, fret int, theme models.Theme) *models.PersistedDiagram {
	v := models.VariantKey{ChordName: chord, PositionType: pt, FretPosition: fret, Theme: theme}
	key := chord + "_" + pt + "_" + string(rune('0'+fret)) + "_" + string(theme)
	return models.NewPersistedDiagram(0, key, v, "./out/"+key+".svg", "checksum-"+key, 100)
}

func newShape(t *testing.T, name, frets, fingering string) models.ChordShape {
	t.Helper()
	s, err := models.RestoreShape(name, "", 0, frets, fingering)
	if err != nil {
		t.Fatalf("failed to build shape: %v", err)
	}
	return s
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "diagrams")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if got, _ := NextSequence(db, "chord_shapes"); got != 1 {
		t.Errorf("sequences are per table, got %d", got)
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for a table without a sequence")
	}
}

func TestDiagramRepository(t *testing.T) {
	t.Run("Create and Get", func(t *testing.T) {
		repo := NewDiagramRepository(setupTestDB(t))
		d := newDiagram("Am", "open", 0, models.ThemeLight)

		if err := repo.Create(d); err != nil {
			t.Fatalf("failed to create diagram: %v", err)
		}
		if d.ID() == "" || d.Sequence() != 1 {
			t.Errorf("expected id and sequence 1, got %q %d", d.ID(), d.Sequence())
		}

		got, err := repo.Get(d.ID())
		if err != nil {
			t.Fatalf("failed to get diagram: %v", err)
		}
		if got.Key() != d.Key() || got.Variant() != d.Variant() || got.Size() != 100 {
			t.Errorf("round trip mismatch: %+v vs %+v", got.Variant(), d.Variant())
		}

		byKey, err := repo.GetByKey(d.Key())
		if err != nil {
			t.Fatalf("failed to get diagram by key: %v", err)
		}
		if byKey.ID() != d.ID() {
			t.Errorf("expected id %s, got %s", d.ID(), byKey.ID())
		}
	})

	t.Run("unique variant keys", func(t *testing.T) {
		repo := NewDiagramRepository(setupTestDB(t))
		if err := repo.Create(newDiagram("Am", "open", 0, models.ThemeLight)); err != nil {
			t.Fatal(err)
		}
		err := repo.Create(newDiagram("Am", "open", 0, models.ThemeLight))
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		repo := NewDiagramRepository(setupTestDB(t))
		d := newDiagram("Am", "open", 0, models.ThemeLight)
		d.SetRender("", "", 0)
		if err := repo.Create(d); err == nil {
			t.Error("expected validation error")
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewDiagramRepository(setupTestDB(t))
		d := newDiagram("C", "open", 0, models.ThemeDark)
		if err := repo.Create(d); err != nil {
			t.Fatal(err)
		}

		d.SetRender("https://cdn.example.com/C_open_0_dark.svg", "new-sum", 250)
		if err := repo.Update(d); err != nil {
			t.Fatalf("failed to update diagram: %v", err)
		}

		got, _ := repo.Get(d.ID())
		if got.Checksum() != "new-sum" || got.Size() != 250 {
			t.Errorf("update not persisted: %s %d", got.Checksum(), got.Size())
		}

		missing := newDiagram("D", "open", 0, models.ThemeDark)
		missing.SetID("nope")
		if err := repo.Update(missing); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewDiagramRepository(setupTestDB(t))
		d := newDiagram("G", "open", 0, models.ThemeLight)
		if err := repo.Create(d); err != nil {
			t.Fatal(err)
		}

		if err := repo.Delete(d.ID()); err != nil {
			t.Fatalf("failed to delete diagram: %v", err)
		}
		if _, err := repo.Get(d.ID()); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound after delete, got %v", err)
		}
		if err := repo.Delete(d.ID()); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("second delete should fail, got %v", err)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		repo := NewDiagramRepository(setupTestDB(t))
		first := newDiagram("Em", "open", 0, models.ThemeLight)
		if err := repo.Upsert(first); err != nil {
			t.Fatalf("first upsert failed: %v", err)
		}

		if err := repo.Delete(first.ID()); err != nil {
			t.Fatal(err)
		}

		again := newDiagram("Em", "open", 0, models.ThemeLight)
		again.SetRender(first.Locator(), "rerendered", 99)
		if err := repo.Upsert(again); err != nil {
			t.Fatalf("second upsert failed: %v", err)
		}
		if again.ID() != first.ID() || again.Sequence() != first.Sequence() {
			t.Errorf("upsert should reuse the stored row, got %s/%d want %s/%d", again.ID(), again.Sequence(), first.ID(), first.Sequence())
		}

		got, err := repo.GetByKey(first.Key())
		if err != nil {
			t.Fatalf("upsert should revive a deleted row: %v", err)
		}
		if got.Checksum() != "rerendered" {
			t.Errorf("expected new checksum, got %s", got.Checksum())
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewDiagramRepository(setupTestDB(t))
		for _, d := range []*models.PersistedDiagram{
			newDiagram("Am", "open", 0, models.ThemeLight),
			newDiagram("Am", "open", 0, models.ThemeDark),
			newDiagram("Am", "barre", 5, models.ThemeLight),
			newDiagram("C", "open", 0, models.ThemeLight),
		} {
			if err := repo.Create(d); err != nil {
				t.Fatal(err)
			}
		}

		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list diagrams: %v", err)
		}
		if len(all) != 4 {
			t.Errorf("expected 4 diagrams, got %d", len(all))
		}
		for i := 1; i < len(all); i++ {
			if all[i].Sequence() <= all[i-1].Sequence() {
				t.Error("list should be in sequence order")
			}
		}

		am, _ := repo.List(map[string]any{"chord_name": "Am"})
		if len(am) != 3 {
			t.Errorf("expected 3 Am diagrams, got %d", len(am))
		}

		light, _ := repo.List(map[string]any{"chord_name": "Am", "theme": "light"})
		if len(light) != 2 {
			t.Errorf("expected 2 light Am diagrams, got %d", len(light))
		}
	})
}

func TestShapeRepository(t *testing.T) {
	t.Run("Create and Get", func(t *testing.T) {
		repo := NewShapeRepository(setupTestDB(t))
		p := models.NewPersistedShape(0, newShape(t, "Cadd9", "x32030", "x21x3x"), "https://tabs.example.com/wonderwall")

		if err := repo.Create(p); err != nil {
			t.Fatalf("failed to create shape: %v", err)
		}

		got, err := repo.Get(p.ID())
		if err != nil {
			t.Fatalf("failed to get shape: %v", err)
		}
		if got.FretsCompact() != "x32030" || got.FingeringCompact() != "x21x3x" {
			t.Errorf("unexpected columns %s %s", got.FretsCompact(), got.FingeringCompact())
		}
		if got.Shape().PositionType() != models.PositionOpen || got.SourceURL() != p.SourceURL() {
			t.Errorf("unexpected restored shape %v", got.Shape())
		}
	})

	t.Run("unique name and frets", func(t *testing.T) {
		repo := NewShapeRepository(setupTestDB(t))
		if err := repo.Create(models.NewPersistedShape(0, newShape(t, "Cadd9", "x32030", ""), "")); err != nil {
			t.Fatal(err)
		}
		err := repo.Create(models.NewPersistedShape(0, newShape(t, "Cadd9", "x32030", ""), "other"))
		if !errors.Is(err, shared.ErrDuplicate) {
			t.Errorf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("GetByVariant", func(t *testing.T) {
		repo := NewShapeRepository(setupTestDB(t))
		for _, s := range []models.ChordShape{
			newShape(t, "Bbadd9", "x13311", ""),
			newShape(t, "Bbadd9", "x-x-8-7-6-8", ""),
		} {
			if err := repo.Create(models.NewPersistedShape(0, s, "")); err != nil {
				t.Fatal(err)
			}
		}

		got, err := repo.GetByVariant("Bbadd9", models.PositionBarre, 1)
		if err != nil {
			t.Fatalf("failed to get by variant: %v", err)
		}
		if got.FretsCompact() != "x13311" {
			t.Errorf("expected barre voicing, got %s", got.FretsCompact())
		}

		if _, err := repo.GetByVariant("Bbadd9", models.PositionOpen, 0); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("Delete and Shapes", func(t *testing.T) {
		repo := NewShapeRepository(setupTestDB(t))
		keep := models.NewPersistedShape(0, newShape(t, "Dadd11", "xx0233", ""), "")
		drop := models.NewPersistedShape(0, newShape(t, "Fadd9", "xx3213", ""), "")
		for _, p := range []*models.PersistedShape{keep, drop} {
			if err := repo.Create(p); err != nil {
				t.Fatal(err)
			}
		}
		if err := repo.Delete(drop.ID()); err != nil {
			t.Fatalf("failed to delete shape: %v", err)
		}

		shapes, err := repo.Shapes()
		if err != nil {
			t.Fatalf("failed to list shapes: %v", err)
		}
		if len(shapes) != 1 || shapes[0].Name() != "Dadd11" {
			t.Errorf("expected only Dadd11, got %v", shapes)
		}
	})
}

func TestShapeCacheAdapter(t *testing.T) {
	repo := NewShapeRepository(setupTestDB(t))
	cache := NewShapeCacheAdapter(repo)

	bare := newShape(t, "E7sus4", "020200", "")
	wrote, err := cache.CacheShape(bare, "https://tabs.example.com/a")
	if err != nil || !wrote {
		t.Fatalf("first cache should write, got %v %v", wrote, err)
	}

	wrote, err = cache.CacheShape(bare, "https://tabs.example.com/b")
	if err != nil || wrote {
		t.Errorf("duplicate cache should be a no-op, got %v %v", wrote, err)
	}

	fingered := newShape(t, "E7sus4", "020200", "x2x3xx")
	wrote, err = cache.CacheShape(fingered, "https://tabs.example.com/c")
	if err != nil || !wrote {
		t.Errorf("fingering should upgrade the cached shape, got %v %v", wrote, err)
	}

	got, err := repo.GetByFrets("E7sus4", "020200")
	if err != nil {
		t.Fatal(err)
	}
	if got.FingeringCompact() != "x2x3xx" || got.SourceURL() != "https://tabs.example.com/c" {
		t.Errorf("unexpected cached row %s %s", got.FingeringCompact(), got.SourceURL())
	}

	all, _ := repo.List(nil)
	if len(all) != 1 {
		t.Errorf("expected a single cached row, got %d", len(all))
	}
}
