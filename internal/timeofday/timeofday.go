// Package timeofday converts 24-hour "HH:MM" wall-clock strings into minute
// offsets and renders durations and 12-hour display labels.
//
// Values carry no date or time zone; a session never spans midnight.
package timeofday

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MinutesPerDay bounds every offset returned by ToMinutes.
const MinutesPerDay = 24 * 60

var (
	// ErrEmpty is returned when no time was selected.
	ErrEmpty = errors.New("timeofday: empty time")
	// ErrMalformed is returned when a value is not a valid "HH:MM" string.
	ErrMalformed = errors.New("timeofday: malformed time")
	// ErrMalformedDuration is returned by ParseDuration for labels Duration never produces.
	ErrMalformedDuration = errors.New("timeofday: malformed duration")
)

var durationPattern = regexp.MustCompile(`^(?:(\d+)hr)?(?: ?(\d+)min)?$`)

// ToMinutes parses "HH:MM" (hour 0-23, minute 0-59) into minutes since midnight.
// Single-digit hours such as "9:00" are accepted.
func ToMinutes(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrEmpty
	}

	hourPart, minutePart, ok := strings.Cut(value, ":")
	if !ok || len(minutePart) != 2 || len(hourPart) == 0 || len(hourPart) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, value)
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, value)
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, value)
	}

	return hour*60 + minute, nil
}

// FromMinutes renders a minute offset as zero-padded "HH:MM", clamped to a single day.
func FromMinutes(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	if minutes >= MinutesPerDay {
		minutes = MinutesPerDay - 1
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DurationMinutes returns end-start in minutes. ok is false when either value is
// missing or malformed, or when end is not strictly after start.
func DurationMinutes(start, end string) (minutes int, ok bool) {
	startMinutes, err := ToMinutes(start)
	if err != nil {
		return 0, false
	}
	endMinutes, err := ToMinutes(end)
	if err != nil {
		return 0, false
	}
	if endMinutes <= startMinutes {
		return 0, false
	}
	return endMinutes - startMinutes, true
}

// Duration formats the span between start and end as "{h}hr {m}min", "{h}hr"
// or "{m}min". It returns "" when the span is not positive or an input is missing.
func Duration(start, end string) string {
	minutes, ok := DurationMinutes(start, end)
	if !ok {
		return ""
	}
	return FormatMinutes(minutes)
}

// FormatMinutes renders a positive minute count in the Duration label format.
func FormatMinutes(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	hours, rest := minutes/60, minutes%60
	switch {
	case hours > 0 && rest > 0:
		return fmt.Sprintf("%dhr %dmin", hours, rest)
	case hours > 0:
		return fmt.Sprintf("%dhr", hours)
	default:
		return fmt.Sprintf("%dmin", rest)
	}
}

// ParseDuration reads a label produced by Duration back into minutes.
func ParseDuration(label string) (int, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, ErrMalformedDuration
	}
	matches := durationPattern.FindStringSubmatch(label)
	if matches == nil || (matches[1] == "" && matches[2] == "") {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, label)
	}

	total := 0
	if matches[1] != "" {
		hours, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, label)
		}
		total += hours * 60
	}
	if matches[2] != "" {
		minutes, err := strconv.Atoi(matches[2])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedDuration, label)
		}
		total += minutes
	}
	return total, nil
}

// FormatDisplay renders a 24-hour time as "h:MM AM" or "h:MM PM".
// Midnight is 12 AM and noon is 12 PM. Empty or malformed input yields "N/A".
func FormatDisplay(time24 string) string {
	minutes, err := ToMinutes(time24)
	if err != nil {
		return "N/A"
	}
	hour, minute := minutes/60, minutes%60

	switch {
	case hour == 0:
		return fmt.Sprintf("12:%02d AM", minute)
	case hour == 12:
		return fmt.Sprintf("12:%02d PM", minute)
	case hour > 12:
		return fmt.Sprintf("%d:%02d PM", hour-12, minute)
	default:
		return fmt.Sprintf("%d:%02d AM", hour, minute)
	}
}

// FormatRange renders "h:MM AM - h:MM PM" for a start and end pair.
func FormatRange(start, end string) string {
	return FormatDisplay(start) + " - " + FormatDisplay(end)
}

// HourSlots lists the whole-hour start options offered to users, "00:00" to "23:00".
func HourSlots() []string {
	slots := make([]string, 0, 24)
	for hour := 0; hour < 24; hour++ {
		slots = append(slots, FromMinutes(hour*60))
	}
	return slots
}

// EndSlots lists whole-hour end options strictly after start, up to "23:00".
// A malformed start yields nil.
func EndSlots(start string) []string {
	startMinutes, err := ToMinutes(start)
	if err != nil {
		return nil
	}
	var slots []string
	for hour := startMinutes/60 + 1; hour < 24; hour++ {
		slots = append(slots, FromMinutes(hour*60))
	}
	return slots
}
