package application

import (
	"strings"
	"time"

	"github.com/example/study-scheduler/internal/timeofday"
	"github.com/example/study-scheduler/internal/venue"
)

const dateLayout = "2006-01-02"

// VenueCatalog resolves venue names and their floor requirement.
type VenueCatalog interface {
	Lookup(name string) (venue.Venue, bool)
}

// validateSessionInput runs the submission checks in order and stops at the
// first failing step. The returned session has every field except identity,
// owner and creation time populated, with venue and floor in catalog spelling.
func validateSessionInput(catalog VenueCatalog, input SessionInput) (Session, *ValidationError) {
	date := strings.TrimSpace(input.Date)
	start := strings.TrimSpace(input.StartTime)
	end := strings.TrimSpace(input.EndTime)
	subject := strings.TrimSpace(input.Subject)
	venueName := strings.TrimSpace(input.Venue)
	floor := strings.TrimSpace(input.Floor)

	place, known := lookupVenue(catalog, venueName)

	missing := newValidationError(ErrMissingField)
	if date == "" {
		missing.add("date", "date is required")
	}
	if start == "" {
		missing.add("startTime", "start time is required")
	}
	if end == "" {
		missing.add("endTime", "end time is required")
	}
	if subject == "" {
		missing.add("subject", "subject is required")
	}
	if venueName == "" {
		missing.add("venue", "venue is required")
	}
	if known && place.RequiresFloor && floor == "" {
		missing.add("floor", "floor is required for "+place.Name)
	}
	if missing.HasErrors() {
		return Session{}, missing
	}

	invalid := newValidationError(ErrInvalidValue)
	if _, err := time.Parse(dateLayout, date); err != nil {
		invalid.add("date", "date must use YYYY-MM-DD")
	}
	startMinutes, startErr := timeofday.ToMinutes(start)
	if startErr != nil {
		invalid.add("startTime", "start time must use HH:MM")
	}
	endMinutes, endErr := timeofday.ToMinutes(end)
	if endErr != nil {
		invalid.add("endTime", "end time must use HH:MM")
	}
	if !known {
		invalid.add("venue", "unknown venue "+venueName)
	}
	if known && place.RequiresFloor {
		if canonical, ok := canonicalFloor(place, floor); ok {
			floor = canonical
		} else {
			invalid.add("floor", "floor "+floor+" is not available at "+place.Name)
		}
	} else {
		floor = ""
	}
	mode, ok := ParseStudyMode(input.StudyMode)
	if !ok {
		invalid.add("studyMode", "study mode must be alone, companion or group")
	}
	if invalid.HasErrors() {
		return Session{}, invalid
	}

	if endMinutes <= startMinutes {
		order := newValidationError(ErrInvalidTimeRange)
		order.add("endTime", "end time must be after start time")
		return Session{}, order
	}

	startLabel := timeofday.FromMinutes(startMinutes)
	endLabel := timeofday.FromMinutes(endMinutes)
	duration := timeofday.Duration(startLabel, endLabel)
	if duration == "" {
		order := newValidationError(ErrInvalidTimeRange)
		order.add("endTime", "duration could not be computed")
		return Session{}, order
	}

	return Session{
		Date:      date,
		StartTime: startLabel,
		EndTime:   endLabel,
		Duration:  duration,
		Subject:   subject,
		Venue:     place.Name,
		Floor:     floor,
		StudyMode: mode,
	}, nil
}

func lookupVenue(catalog VenueCatalog, name string) (venue.Venue, bool) {
	if catalog == nil || name == "" {
		return venue.Venue{}, false
	}
	return catalog.Lookup(name)
}

func canonicalFloor(place venue.Venue, floor string) (string, bool) {
	if !place.OffersFloor(floor) {
		return "", false
	}
	for _, candidate := range place.Floors {
		if strings.EqualFold(candidate, floor) {
			return candidate, true
		}
	}
	return floor, true
}

// inputFromSession is the inverse of validateSessionInput, used to re-validate edits.
func inputFromSession(session Session) SessionInput {
	return SessionInput{
		Date:      session.Date,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
		Subject:   session.Subject,
		Venue:     session.Venue,
		Floor:     session.Floor,
		StudyMode: string(session.StudyMode),
	}
}

func applyPatch(input SessionInput, patch SessionPatch) SessionInput {
	if patch.Date != nil {
		input.Date = *patch.Date
	}
	if patch.StartTime != nil {
		input.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		input.EndTime = *patch.EndTime
	}
	if patch.Subject != nil {
		input.Subject = *patch.Subject
	}
	if patch.Venue != nil {
		input.Venue = *patch.Venue
	}
	if patch.Floor != nil {
		input.Floor = *patch.Floor
	}
	if patch.StudyMode != nil {
		input.StudyMode = *patch.StudyMode
	}
	return input
}
