package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/study-scheduler/internal/application"
	"github.com/example/study-scheduler/internal/timeofday"
)

const (
	bookingSubjectPrefix = "New Session Booking - Username: "
	loginSubjectPrefix   = "User Login - Username: "
	confirmationSubject  = "Session Booking Confirmation"
	footer               = "This is an automated notification from the study session booking system."
)

var rule = strings.Repeat("-", 52)

// Compose renders the administrator message for a notification.
func Compose(n application.Notification, adminEmail string) Message {
	msg := Message{
		Kind:       n.Kind,
		To:         adminEmail,
		Username:   n.Owner.Username,
		UserEmail:  n.Owner.Email,
		OccurredAt: n.OccurredAt,
	}
	if n.Kind == application.EventLogin {
		msg.Subject = loginSubjectPrefix + n.Owner.Username
		msg.Body = composeLogin(n)
		return msg
	}
	msg.Subject = bookingSubjectPrefix + n.Owner.Username
	msg.Body = composeBooking(n)
	if n.Session != nil {
		msg.SessionID = n.Session.ID
	}
	return msg
}

// ComposeConfirmation renders the owner's copy of a booking. ok is false for
// logins and for owners without an email address.
func ComposeConfirmation(n application.Notification) (msg Message, ok bool) {
	if n.Kind != application.EventBooking || n.Session == nil || strings.TrimSpace(n.Owner.Email) == "" {
		return Message{}, false
	}
	s := n.Session

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", n.Owner.Username)
	b.WriteString("Your session has been booked successfully!\n\n")
	b.WriteString("Booking Details:\n")
	fmt.Fprintf(&b, "- Date: %s\n", FormatDate(s.Date))
	fmt.Fprintf(&b, "- Time: %s\n", timeLine(*s))
	fmt.Fprintf(&b, "- Subject: %s\n", s.Subject)
	fmt.Fprintf(&b, "- Venue: %s\n", venueLine(*s))
	b.WriteString("\nWe look forward to seeing you!")

	return Message{
		Kind:       n.Kind,
		To:         n.Owner.Email,
		Subject:    confirmationSubject,
		Body:       b.String(),
		Username:   n.Owner.Username,
		UserEmail:  n.Owner.Email,
		SessionID:  s.ID,
		OccurredAt: n.OccurredAt,
	}, true
}

func composeBooking(n application.Notification) string {
	var b strings.Builder
	b.WriteString("NEW SESSION BOOKING RECEIVED\n\n")
	section(&b, "USER INFORMATION")
	fmt.Fprintf(&b, "Username: %s\nEmail: %s\n\n", n.Owner.Username, n.Owner.Email)

	newID := ""
	if s := n.Session; s != nil {
		newID = s.ID
		section(&b, "NEW BOOKING DETAILS")
		fmt.Fprintf(&b, "Date: %s\n", FormatDate(s.Date))
		fmt.Fprintf(&b, "Time: %s\n", timeLine(*s))
		fmt.Fprintf(&b, "Subject: %s\n", s.Subject)
		fmt.Fprintf(&b, "Venue: %s\n", venueLine(*s))
		fmt.Fprintf(&b, "Study Mode: %s\n", s.StudyMode)
		fmt.Fprintf(&b, "Booking ID: %s\n", s.ID)
		fmt.Fprintf(&b, "Booked At: %s\n\n", formatInstant(s.CreatedAt))
	}

	if len(n.Bookings) > 0 {
		section(&b, "ALL SESSIONS FOR "+strings.ToUpper(n.Owner.Username))
		for _, day := range application.GroupByDate(n.Bookings) {
			fmt.Fprintf(&b, "%s\n", FormatDate(day.Date))
			for _, s := range day.Sessions {
				fmt.Fprintf(&b, "  Time: %s\n", timeLine(s))
				fmt.Fprintf(&b, "  Subject: %s\n", s.Subject)
				fmt.Fprintf(&b, "  Venue: %s\n", venueLine(s))
				fmt.Fprintf(&b, "  Booking ID: %s\n", s.ID)
				if s.ID == newID {
					b.WriteString("  NEW BOOKING\n")
				}
				b.WriteString("\n")
			}
		}
		fmt.Fprintf(&b, "Total Sessions: %d\n\n", len(n.Bookings))
	}

	b.WriteString(rule + "\n\n" + footer)
	return b.String()
}

func composeLogin(n application.Notification) string {
	var b strings.Builder
	b.WriteString("USER LOGIN\n\n")
	section(&b, "USER INFORMATION")
	fmt.Fprintf(&b, "Username: %s\nEmail: %s\n", n.Owner.Username, n.Owner.Email)
	fmt.Fprintf(&b, "Logged In At: %s\n\n", formatInstant(n.OccurredAt))
	b.WriteString(rule + "\n\n" + footer)
	return b.String()
}

func section(b *strings.Builder, title string) {
	b.WriteString(rule + "\n" + title + "\n" + rule + "\n")
}

func timeLine(s application.Session) string {
	if s.StartTime == "" || s.EndTime == "" {
		return timeofday.FormatDisplay(s.StartTime)
	}
	duration := s.Duration
	if duration == "" {
		duration = timeofday.Duration(s.StartTime, s.EndTime)
	}
	return fmt.Sprintf("%s (%s)", timeofday.FormatRange(s.StartTime, s.EndTime), duration)
}

func venueLine(s application.Session) string {
	if s.Floor == "" {
		return s.Venue
	}
	return s.Venue + " - " + s.Floor
}

// FormatDate renders YYYY-MM-DD as "Monday, February 3, 2025". Other input is returned as is.
func FormatDate(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return parsed.Format("Monday, January 2, 2006")
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}
