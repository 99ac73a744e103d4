package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/example/study-scheduler/internal/persistence"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := New()

	empty, err := store.Load(ctx, persistence.CollectionTimetables, "owner-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty set, got %v", empty)
	}

	records := persistence.RecordSet{{"id": "s-1", "extra": "kept"}}
	if err := store.Save(ctx, persistence.CollectionTimetables, "owner-1", records); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	records[0]["id"] = "mutated"

	loaded, err := store.Load(ctx, persistence.CollectionTimetables, "owner-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded[0].String("id") != "s-1" || loaded[0].String("extra") != "kept" {
		t.Fatalf("unexpected stored record %v", loaded[0])
	}

	loaded[0]["id"] = "mutated-again"
	again, _ := store.Load(ctx, persistence.CollectionTimetables, "owner-1")
	if again[0].String("id") != "s-1" {
		t.Fatalf("Load must return copies, got %v", again[0])
	}

	other, _ := store.Load(ctx, persistence.CollectionTimetables, "owner-2")
	if len(other) != 0 {
		t.Fatalf("owners must be isolated, got %v", other)
	}
}

func TestStoreRejectsUseAfterClose(t *testing.T) {
	t.Parallel()

	store := New()
	_ = store.Close()

	if _, err := store.Load(context.Background(), persistence.CollectionBookings, ""); !errors.Is(err, persistence.ErrStoreClosed) {
		t.Fatalf("expected ErrStoreClosed, got %v", err)
	}
	if err := store.Save(context.Background(), persistence.CollectionBookings, "", nil); !errors.Is(err, persistence.ErrStoreClosed) {
		t.Fatalf("expected ErrStoreClosed, got %v", err)
	}
}

func TestStoreHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Load(ctx, persistence.CollectionBookings, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestStoreOwners(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := New()
	_ = store.Save(ctx, persistence.CollectionTimetables, "owner-b", nil)
	_ = store.Save(ctx, persistence.CollectionTimetables, "owner-a", nil)
	_ = store.Save(ctx, persistence.CollectionBookings, "", nil)

	owners, err := store.Owners(ctx, persistence.CollectionTimetables)
	if err != nil {
		t.Fatalf("Owners returned error: %v", err)
	}
	if len(owners) != 2 || owners[0] != "owner-a" || owners[1] != "owner-b" {
		t.Fatalf("unexpected owners %v", owners)
	}
}
