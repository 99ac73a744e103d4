package application

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/example/study-scheduler/internal/persistence"
	"github.com/example/study-scheduler/internal/scheduler"
	"github.com/example/study-scheduler/internal/timeofday"
)

// Record keys of the exported session shape.
const (
	keyID        = "id"
	keyOwnerID   = "ownerId"
	keyDate      = "date"
	keyStartTime = "startTime"
	keyEndTime   = "endTime"
	keyDuration  = "duration"
	keySubject   = "subject"
	keyVenue     = "venue"
	keyFloor     = "floor"
	keyStudyMode = "studyMode"
	keyCreatedAt = "createdAt"

	keyUsername = "username"
	keyEmail    = "email"

	// older records
	keyLegacyUserID    = "userId"
	keyLegacyTimestamp = "timestamp"
	keyLegacyTime      = "time"
)

// createdAtLayout matches the millisecond ISO-8601 timestamps of existing data.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

func firstString(record persistence.Record, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(record.String(key)); value != "" {
			return value
		}
	}
	return ""
}

func parseCreatedAt(value any) time.Time {
	switch v := value.(type) {
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v)); err == nil {
			return parsed.UTC()
		}
	case json.Number:
		if millis, err := v.Int64(); err == nil {
			return time.UnixMilli(millis).UTC()
		}
	case float64:
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Time{}
}

// sessionFromRecord reads a stored record. Records without a study mode take
// fallbackMode, which depends on the collection they were loaded from.
func sessionFromRecord(record persistence.Record, fallbackMode StudyMode) Session {
	session := Session{
		ID:        record.String(keyID),
		OwnerID:   firstString(record, keyOwnerID, keyLegacyUserID),
		Date:      strings.TrimSpace(record.String(keyDate)),
		StartTime: firstString(record, keyStartTime, keyLegacyTime),
		EndTime:   strings.TrimSpace(record.String(keyEndTime)),
		Duration:  record.String(keyDuration),
		Subject:   record.String(keySubject),
		Venue:     record.String(keyVenue),
		Floor:     record.String(keyFloor),
		StudyMode: fallbackMode,
	}
	if mode, ok := ParseStudyMode(record.String(keyStudyMode)); ok && record.String(keyStudyMode) != "" {
		session.StudyMode = mode
	}
	if session.Duration == "" {
		session.Duration = timeofday.Duration(session.StartTime, session.EndTime)
	}
	if record.Has(keyCreatedAt) {
		session.CreatedAt = parseCreatedAt(record[keyCreatedAt])
	} else {
		session.CreatedAt = parseCreatedAt(record[keyLegacyTimestamp])
	}
	return session
}

func sessionsFromRecords(records persistence.RecordSet, fallbackMode StudyMode) []Session {
	sessions := make([]Session, 0, len(records))
	for _, record := range records {
		sessions = append(sessions, sessionFromRecord(record, fallbackMode))
	}
	return sessions
}

// sessionRecord renders the flat exported shape. An absent floor is null.
func sessionRecord(session Session) persistence.Record {
	record := persistence.Record{
		keyID:        session.ID,
		keyOwnerID:   session.OwnerID,
		keyDate:      session.Date,
		keyStartTime: session.StartTime,
		keyEndTime:   session.EndTime,
		keyDuration:  session.Duration,
		keySubject:   session.Subject,
		keyVenue:     session.Venue,
		keyFloor:     nil,
		keyStudyMode: string(session.StudyMode),
		keyCreatedAt: nil,
	}
	if session.Floor != "" {
		record[keyFloor] = session.Floor
	}
	if !session.CreatedAt.IsZero() {
		record[keyCreatedAt] = session.CreatedAt.UTC().Format(createdAtLayout)
	}
	return record
}

func bookingRecord(session Session, owner Owner) persistence.Record {
	record := sessionRecord(session)
	record[keyUsername] = owner.Username
	record[keyEmail] = owner.Email
	return record
}

// mergeSession writes the editable fields of session onto a copy of stored.
// Identity keys and keys the service does not interpret are left as stored.
func mergeSession(stored persistence.Record, session Session) persistence.Record {
	merged := stored.Clone()
	if merged == nil {
		merged = persistence.Record{}
	}
	merged[keyDate] = session.Date
	merged[keyStartTime] = session.StartTime
	merged[keyEndTime] = session.EndTime
	merged[keyDuration] = session.Duration
	merged[keySubject] = session.Subject
	merged[keyVenue] = session.Venue
	merged[keyStudyMode] = string(session.StudyMode)
	if session.Floor == "" {
		merged[keyFloor] = nil
	} else {
		merged[keyFloor] = session.Floor
	}
	if merged.Has(keyLegacyTime) {
		merged[keyLegacyTime] = session.StartTime
	}
	return merged
}

func indexOfRecord(records persistence.RecordSet, id string) int {
	for i, record := range records {
		if record.String(keyID) == id {
			return i
		}
	}
	return -1
}

func intervalOf(session Session) scheduler.Session {
	return scheduler.Session{ID: session.ID, Date: session.Date, Start: session.StartTime, End: session.EndTime}
}

// sortSessions orders by date, then start time, then id.
func sortSessions(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if as, bs := startMinutes(a), startMinutes(b); as != bs {
			return as < bs
		}
		return a.ID < b.ID
	})
}

// startMinutes sorts unparseable start times after every valid one.
func startMinutes(session Session) int {
	minutes, err := timeofday.ToMinutes(session.StartTime)
	if err != nil {
		return timeofday.MinutesPerDay
	}
	return minutes
}

// GroupByDate buckets sessions per date in ascending order. Within a day the
// sessions are ordered by start time.
func GroupByDate(sessions []Session) []DayGroup {
	if len(sessions) == 0 {
		return nil
	}
	ordered := append([]Session(nil), sessions...)
	sortSessions(ordered)

	var groups []DayGroup
	for _, session := range ordered {
		if n := len(groups); n > 0 && groups[n-1].Date == session.Date {
			groups[n-1].Sessions = append(groups[n-1].Sessions, session)
			continue
		}
		groups = append(groups, DayGroup{Date: session.Date, Sessions: []Session{session}})
	}
	return groups
}

func cloneSessions(sessions []Session) []Session {
	if sessions == nil {
		return nil
	}
	out := make([]Session, len(sessions))
	copy(out, sessions)
	return out
}
