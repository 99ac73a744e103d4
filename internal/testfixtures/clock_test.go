package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
	if clock.Today() != ReferenceDate {
		t.Fatalf("expected %s, got %s", ReferenceDate, clock.Today())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.Advance(24 * time.Hour)
	if !updated.Equal(start.Add(24 * time.Hour)) {
		t.Fatalf("advance returned %v", updated)
	}
	if clock.Today() != "2025-03-15" {
		t.Fatalf("expected next day, got %s", clock.Today())
	}

	clock.Set(start)
	if got := clock.NowFunc()(); !got.Equal(start) {
		t.Fatalf("expected %v, got %v", start, got)
	}
}
