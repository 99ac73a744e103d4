// Package scheduler detects overlapping sessions on half-open minute intervals
// and finds the free ranges between them.
package scheduler

import (
	"sort"

	"github.com/example/study-scheduler/internal/timeofday"
)

// Session is the interval view of a scheduled study session used for conflict detection.
type Session struct {
	ID    string
	Date  string
	Start string
	End   string
}

type interval struct {
	start int
	end   int
}

func (s Session) interval() (interval, bool) {
	start, err := timeofday.ToMinutes(s.Start)
	if err != nil {
		return interval{}, false
	}
	end, err := timeofday.ToMinutes(s.End)
	if err != nil || end <= start {
		return interval{}, false
	}
	return interval{start: start, end: end}, true
}

// Overlaps reports whether two sessions share a date and their [start, end)
// ranges intersect. Back-to-back sessions do not overlap. A session with an
// unparseable or empty range never overlaps anything.
func Overlaps(a, b Session) bool {
	if a.Date != b.Date {
		return false
	}
	ai, ok := a.interval()
	if !ok {
		return false
	}
	bi, ok := b.interval()
	if !ok {
		return false
	}
	return ai.start < bi.end && bi.start < ai.end
}

// FindConflicts returns the existing sessions on the candidate's date that
// overlap it, in input order. Sessions sharing the candidate's ID are skipped
// so an edited session is never reported against itself. The input slice is
// not modified.
func FindConflicts(existing []Session, candidate Session) []Session {
	if _, ok := candidate.interval(); !ok {
		return nil
	}

	var conflicts []Session
	for _, session := range existing {
		if candidate.ID != "" && session.ID == candidate.ID {
			continue
		}
		if Overlaps(session, candidate) {
			conflicts = append(conflicts, session)
		}
	}
	return conflicts
}

// FreeRanges returns the gaps between sessions on date within [dayStart, dayEnd),
// each as a Session with empty ID. It lets callers suggest conflict-free slots.
func FreeRanges(existing []Session, date, dayStart, dayEnd string) []Session {
	window := Session{Date: date, Start: dayStart, End: dayEnd}
	bounds, ok := window.interval()
	if !ok {
		return nil
	}

	busy := make([]interval, 0, len(existing))
	for _, session := range existing {
		if session.Date != date {
			continue
		}
		if iv, ok := session.interval(); ok {
			busy = append(busy, iv)
		}
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].start < busy[j].start })

	var free []Session
	cursor := bounds.start
	for _, iv := range busy {
		if iv.end <= cursor {
			continue
		}
		if iv.start >= bounds.end {
			break
		}
		if iv.start > cursor {
			free = append(free, Session{Date: date, Start: timeofday.FromMinutes(cursor), End: timeofday.FromMinutes(iv.start)})
		}
		cursor = iv.end
	}
	if cursor < bounds.end {
		free = append(free, Session{Date: date, Start: timeofday.FromMinutes(cursor), End: timeofday.FromMinutes(bounds.end)})
	}
	return free
}
