package testfixtures

import (
	"context"
	"testing"

	"github.com/example/study-scheduler/internal/application"
	"github.com/example/study-scheduler/internal/persistence"
)

func TestServiceFactoryNewBookingService(t *testing.T) {
	t.Parallel()

	factory := NewServiceFactory(WithIDGenerator(NewIDGenerator("fixture")))
	store := NewSQLiteStore(t)
	svc := factory.NewBookingService(store, nil)
	owner := NewOwner("owner-factory")

	result, err := svc.Submit(context.Background(), application.SubmitParams{
		Owner: owner,
		Input: NewSessionFixture().Input(),
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if result.Session.ID != "fixture-1" {
		t.Fatalf("expected generated ID fixture-1, got %q", result.Session.ID)
	}
	if !result.Session.CreatedAt.Equal(factory.Clock.Now()) {
		t.Fatalf("expected timestamp %v, got %v", factory.Clock.Now(), result.Session.CreatedAt)
	}

	records, err := store.Load(context.Background(), persistence.CollectionTimetables, owner.ID)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(records) != 1 || records[0].String("id") != "fixture-1" {
		t.Fatalf("expected persisted session, got %v", records)
	}
}

func TestSessionFixtureRecord(t *testing.T) {
	t.Parallel()

	owner := NewOwner("owner-7")
	fixture := NewSessionFixture(
		WithOwner(owner),
		WithVenue("Masjid Abii Bakar", "Rooftop"),
		WithTimes("13:00", "14:30"),
		WithStudyMode(application.StudyModeGroup),
	)
	record := fixture.Record()

	if record.String("duration") != "1hr 30min" {
		t.Fatalf("expected duration 1hr 30min, got %v", record["duration"])
	}
	if record.String("floor") != "Rooftop" || record.String("username") != "owner7" {
		t.Fatalf("unexpected record %v", record)
	}

	alone := NewSessionFixture().Record()
	if alone["floor"] != nil || alone.Has("username") {
		t.Fatalf("timetable record should have null floor and no username: %v", alone)
	}
}
