package venue

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	catalog := Default()

	if catalog.RequiresFloor("Home") {
		t.Fatalf("expected Home to not require a floor")
	}
	if !catalog.RequiresFloor("masjid abii bakar") {
		t.Fatalf("expected Masjid Abii Bakar to require a floor")
	}
	if catalog.RequiresFloor("Unknown Hall") {
		t.Fatalf("expected unknown venue to not require a floor")
	}

	v, ok := catalog.Lookup("Masjid Abii Bakar")
	if !ok {
		t.Fatalf("expected lookup to succeed")
	}
	if !v.OffersFloor("rooftop") || v.OffersFloor("4th Floor") || v.OffersFloor("") {
		t.Fatalf("unexpected floor membership for %+v", v)
	}

	all := catalog.All()
	if len(all) != 5 || all[0].Name != "Home" {
		t.Fatalf("unexpected venue list %+v", all)
	}
	all[3].Floors[0] = "mutated"
	if again, _ := catalog.Lookup("Masjid Abii Bakar"); again.Floors[0] != "3rd Floor" {
		t.Fatalf("All must return copies, catalog changed to %v", again.Floors)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("floors imply floor requirement", func(t *testing.T) {
		t.Parallel()
		catalog, err := Parse([]byte(`
venues:
  - name: Library
  - name: Annex
    floors: ["Ground", "First"]
  - name: Hall
    requires_floor: true
`))
		if err != nil {
			t.Fatalf("Parse returned error: %v", err)
		}
		if catalog.RequiresFloor("Library") {
			t.Fatalf("Library should not require a floor")
		}
		if !catalog.RequiresFloor("Annex") || !catalog.RequiresFloor("Hall") {
			t.Fatalf("Annex and Hall should require a floor")
		}
		hall, _ := catalog.Lookup("Hall")
		if !hall.OffersFloor("Mezzanine") {
			t.Fatalf("venue without floor list should accept any floor")
		}
	})

	t.Run("empty catalog is rejected", func(t *testing.T) {
		t.Parallel()
		if _, err := Parse([]byte("venues: []")); !errors.Is(err, ErrEmptyCatalog) {
			t.Fatalf("expected ErrEmptyCatalog, got %v", err)
		}
	})

	t.Run("duplicate names are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := Parse([]byte("venues:\n  - name: Home\n  - name: home\n"))
		if !errors.Is(err, ErrDuplicateVenue) {
			t.Fatalf("expected ErrDuplicateVenue, got %v", err)
		}
	})

	t.Run("invalid yaml is reported", func(t *testing.T) {
		t.Parallel()
		if _, err := Parse([]byte("venues: [")); err == nil {
			t.Fatalf("expected parse error")
		}
	})
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "venues.yaml")
	if err := os.WriteFile(path, []byte("venues:\n  - name: Courtyard\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	catalog, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if _, ok := catalog.Lookup("Courtyard"); !ok {
		t.Fatalf("expected Courtyard in catalog")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
