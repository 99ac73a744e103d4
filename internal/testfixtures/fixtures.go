package testfixtures

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/study-scheduler/internal/application"
	"github.com/example/study-scheduler/internal/persistence"
	"github.com/example/study-scheduler/internal/timeofday"
)

var (
	sessionCounter uint64
	ownerCounter   uint64
)

var referenceTime = time.Date(2025, time.February, 1, 8, 0, 0, 0, time.UTC)

// ReferenceDate is the calendar date of ReferenceTime.
const ReferenceDate = "2025-02-01"

// ReferenceTime returns the canonical "now" used by fixtures. Sessions dated
// 2025-02-01 or later are upcoming relative to it.
func ReferenceTime() time.Time {
	return referenceTime
}

// NewOwner returns an owner whose username and email derive from id. An
// empty id draws the next "owner-NNN" identifier.
func NewOwner(id string) application.Owner {
	if id == "" {
		id = fmt.Sprintf("owner-%03d", atomic.AddUint64(&ownerCounter, 1))
	}
	username := strings.ReplaceAll(id, "-", "")
	return application.Owner{ID: id, Username: username, Email: username + "@example.com"}
}

// SessionFixture is a session in both its input and stored forms.
type SessionFixture struct {
	ID        string
	Owner     application.Owner
	Date      string
	StartTime string
	EndTime   string
	Subject   string
	Venue     string
	Floor     string
	StudyMode application.StudyMode
	CreatedAt time.Time
}

// SessionOption configures a SessionFixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a one-hour alone session at Home on 2025-02-03.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("fixture-%03d", idx),
		Owner:     application.Owner{ID: "owner-fixture", Username: "fixture", Email: "fixture@example.com"},
		Date:      "2025-02-03",
		StartTime: "09:00",
		EndTime:   "10:00",
		Subject:   "Hadith",
		Venue:     "Home",
		StudyMode: application.StudyModeAlone,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the identifier.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) { f.ID = id }
}

// WithOwner overrides the owner.
func WithOwner(owner application.Owner) SessionOption {
	return func(f *SessionFixture) { f.Owner = owner }
}

// WithDate overrides the date.
func WithDate(date string) SessionOption {
	return func(f *SessionFixture) { f.Date = date }
}

// WithTimes overrides the start and end times.
func WithTimes(start, end string) SessionOption {
	return func(f *SessionFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithSubject overrides the subject.
func WithSubject(subject string) SessionOption {
	return func(f *SessionFixture) { f.Subject = subject }
}

// WithVenue sets the venue and floor; pass an empty floor for venues without floors.
func WithVenue(venue, floor string) SessionOption {
	return func(f *SessionFixture) {
		f.Venue = venue
		f.Floor = floor
	}
}

// WithStudyMode overrides the study mode.
func WithStudyMode(mode application.StudyMode) SessionOption {
	return func(f *SessionFixture) { f.StudyMode = mode }
}

// Input returns the fixture as submission form values.
func (f SessionFixture) Input() application.SessionInput {
	return application.SessionInput{
		Date:      f.Date,
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
		Subject:   f.Subject,
		Venue:     f.Venue,
		Floor:     f.Floor,
		StudyMode: string(f.StudyMode),
	}
}

// Record returns the fixture in its stored shape. Shared bookings also carry
// the owner's username and email.
func (f SessionFixture) Record() persistence.Record {
	record := persistence.Record{
		"id":        f.ID,
		"ownerId":   f.Owner.ID,
		"date":      f.Date,
		"startTime": f.StartTime,
		"endTime":   f.EndTime,
		"duration":  timeofday.Duration(f.StartTime, f.EndTime),
		"subject":   f.Subject,
		"venue":     f.Venue,
		"floor":     nil,
		"studyMode": string(f.StudyMode),
		"createdAt": f.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if f.Floor != "" {
		record["floor"] = f.Floor
	}
	if !f.StudyMode.UsesTimetable() {
		record["username"] = f.Owner.Username
		record["email"] = f.Owner.Email
	}
	return record
}

// Records converts fixtures into a record set.
func Records(fixtures ...SessionFixture) persistence.RecordSet {
	set := make(persistence.RecordSet, 0, len(fixtures))
	for _, fixture := range fixtures {
		set = append(set, fixture.Record())
	}
	return set
}
