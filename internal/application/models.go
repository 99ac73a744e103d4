package application

import (
	"context"
	"strings"
	"time"
)

// StudyMode selects whether a session lives in the owner's timetable or in
// the shared booking list.
type StudyMode string

const (
	StudyModeAlone     StudyMode = "alone"
	StudyModeCompanion StudyMode = "companion"
	StudyModeGroup     StudyMode = "group"
)

// ParseStudyMode normalises value. An empty value means alone.
func ParseStudyMode(value string) (StudyMode, bool) {
	mode := StudyMode(strings.ToLower(strings.TrimSpace(value)))
	if mode == "" {
		return StudyModeAlone, true
	}
	return mode, mode.Valid()
}

// Valid reports whether the mode is one of the known values.
func (m StudyMode) Valid() bool {
	switch m {
	case StudyModeAlone, StudyModeCompanion, StudyModeGroup:
		return true
	}
	return false
}

// UsesTimetable reports whether sessions in this mode go to the personal timetable.
func (m StudyMode) UsesTimetable() bool {
	return m == StudyModeAlone
}

// Session is a single scheduled study slot.
type Session struct {
	ID        string
	OwnerID   string
	Date      string
	StartTime string
	EndTime   string
	Duration  string
	Subject   string
	Venue     string
	Floor     string
	StudyMode StudyMode
	CreatedAt time.Time
}

// Owner identifies the user a request acts for.
type Owner struct {
	ID       string
	Username string
	Email    string
}

// SessionInput carries the raw form values of a proposed session.
type SessionInput struct {
	Date      string
	StartTime string
	EndTime   string
	Subject   string
	Venue     string
	Floor     string
	StudyMode string
}

// SubmitParams describes a session submission.
type SubmitParams struct {
	Owner Owner
	Input SessionInput
}

// SubmitResult is the created session together with advisory conflicts.
type SubmitResult struct {
	Session   Session
	Conflicts []Session
}

// SessionPatch lists the fields an edit may change. Nil fields are left as
// stored. A non-nil empty Floor clears the floor.
type SessionPatch struct {
	Date      *string
	StartTime *string
	EndTime   *string
	Subject   *string
	Venue     *string
	Floor     *string
	StudyMode *string
}

// ConflictParams asks for the timetable sessions a candidate would overlap.
// ExcludeID skips a stored session, typically the one being edited.
type ConflictParams struct {
	Owner     Owner
	Input     SessionInput
	ExcludeID string
}

// ListFilter restricts listings by date relative to today.
type ListFilter string

const (
	ListAll       ListFilter = "all"
	ListUpcoming  ListFilter = "upcoming"
	ListCompleted ListFilter = "completed"
)

// ListParams selects the sessions returned by ListSessions. An empty Mode
// lists both the timetable and the owner's bookings.
type ListParams struct {
	Owner  Owner
	Mode   StudyMode
	Filter ListFilter
}

// DayGroup is one date with its sessions ordered by start time.
type DayGroup struct {
	Date     string
	Sessions []Session
}

// Stats counts an owner's bookings.
type Stats struct {
	Total     int
	Upcoming  int
	Completed int
}

// TimeRange is a free window on a date.
type TimeRange struct {
	Date      string
	StartTime string
	EndTime   string
}

// Export is a downloadable JSON document.
type Export struct {
	Filename string
	Data     []byte
	Count    int
}

// OwnerSummary groups the shared bookings of one owner.
type OwnerSummary struct {
	OwnerID  string
	Username string
	Email    string
	Total    int
	Days     []DayGroup
}

// PendingNotification is an undelivered message held in the outbox.
type PendingNotification struct {
	ID         string
	ToEmail    string
	Subject    string
	Message    string
	Username   string
	UserEmail  string
	ReceivedAt string
	Sent       bool
}

// EventKind names the event a notification reports.
type EventKind string

const (
	EventBooking EventKind = "booking"
	EventLogin   EventKind = "login"
)

// Notification is handed to the Notifier after a booking is persisted or a
// login is reported. Bookings holds the owner's full booking list.
type Notification struct {
	Kind       EventKind
	Owner      Owner
	Session    *Session
	Bookings   []Session
	OccurredAt time.Time
}

//go:generate mockgen -destination=mocks/notifier_mock.go -package=mocks . Notifier

// Notifier delivers notifications on a best-effort basis.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}
