package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/study-scheduler/internal/persistence"
	"github.com/example/study-scheduler/internal/scheduler"
	"github.com/example/study-scheduler/internal/timeofday"
)

const (
	defaultNotifyTimeout = 5 * time.Second
	defaultRecentLimit   = 5
	defaultDayStart      = "00:00"
	defaultDayEnd        = "23:00"
)

// BookingService validates sessions, routes them to the owner's timetable or
// the shared booking list, and serves the read-side views over both.
type BookingService struct {
	store         persistence.RecordStore
	catalog       VenueCatalog
	notifier      Notifier
	idGenerator   func() string
	now           func() time.Time
	logger        *slog.Logger
	notifyTimeout time.Duration
	cache         *listingCache

	// writeMu serialises load-modify-save cycles issued by this process.
	writeMu  sync.Mutex
	inflight sync.WaitGroup
}

// BookingOption customises a BookingService.
type BookingOption func(*BookingService)

// WithLogger sets the base logger used when the context carries none.
func WithLogger(logger *slog.Logger) BookingOption {
	return func(s *BookingService) { s.logger = defaultLogger(logger) }
}

// WithNotifyTimeout bounds each notification attempt.
func WithNotifyTimeout(timeout time.Duration) BookingOption {
	return func(s *BookingService) {
		if timeout > 0 {
			s.notifyTimeout = timeout
		}
	}
}

// WithListingCache keeps decoded listings for ttl. A zero ttl disables caching.
func WithListingCache(ttl time.Duration) BookingOption {
	return func(s *BookingService) { s.cache = newListingCache(ttl, 0, s.now) }
}

// NewBookingService wires the booking service. A nil idGenerator produces
// random UUIDs and a nil clock uses time.Now. notifier may be nil.
func NewBookingService(store persistence.RecordStore, catalog VenueCatalog, notifier Notifier, idGenerator func() string, now func() time.Time, opts ...BookingOption) *BookingService {
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	s := &BookingService{
		store:         store,
		catalog:       catalog,
		notifier:      notifier,
		idGenerator:   idGenerator,
		now:           now,
		logger:        defaultLogger(nil),
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

func (s *BookingService) ready() error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.store == nil {
		return fmt.Errorf("BookingService has no record store")
	}
	return nil
}

func requireOwner(owner Owner) *ValidationError {
	if strings.TrimSpace(owner.ID) != "" {
		return nil
	}
	vErr := newValidationError(ErrMissingField)
	vErr.add("ownerId", "owner is required")
	return vErr
}

// Submit validates input and persists the session. Alone sessions are checked
// against the owner's timetable and stored whatever the outcome; the overlaps
// are returned as advisory conflicts. Companion and group sessions go to the
// shared booking list and trigger a notification that never affects the result.
func (s *BookingService) Submit(ctx context.Context, params SubmitParams) (result SubmitResult, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Submit", "owner_id", params.Owner.ID)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session created",
			"session_id", result.Session.ID,
			"study_mode", result.Session.StudyMode,
			"conflict_count", len(result.Conflicts),
		)
	}()

	if vErr := requireOwner(params.Owner); vErr != nil {
		err = vErr
		return
	}
	session, vErr := validateSessionInput(s.catalog, params.Input)
	if vErr != nil {
		err = vErr
		return
	}
	session.ID = s.idGenerator()
	session.OwnerID = params.Owner.ID
	session.CreatedAt = s.now().UTC()

	if session.StudyMode.UsesTimetable() {
		conflicts, saveErr := s.appendToTimetable(ctx, session)
		if saveErr != nil {
			err = saveErr
			return
		}
		result = SubmitResult{Session: session, Conflicts: conflicts}
		return
	}

	bookings, saveErr := s.appendToBookings(ctx, session, params.Owner)
	if saveErr != nil {
		err = saveErr
		return
	}
	created := session
	s.dispatch(ctx, Notification{
		Kind:       EventBooking,
		Owner:      params.Owner,
		Session:    &created,
		Bookings:   bookings,
		OccurredAt: session.CreatedAt,
	})
	result = SubmitResult{Session: session}
	return
}

func (s *BookingService) appendToTimetable(ctx context.Context, session Session) ([]Session, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	records, err := s.store.Load(ctx, persistence.CollectionTimetables, session.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load timetable: %w", err)
	}
	conflicts := conflictsWith(sessionsFromRecords(records, StudyModeAlone), session)

	records = append(records, sessionRecord(session))
	if err := s.store.Save(ctx, persistence.CollectionTimetables, session.OwnerID, records); err != nil {
		return nil, fmt.Errorf("save timetable: %w", err)
	}
	s.cache.Invalidate()
	return conflicts, nil
}

// appendToBookings stores the booking and returns the owner's bookings after the append.
func (s *BookingService) appendToBookings(ctx context.Context, session Session, owner Owner) ([]Session, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	records, err := s.store.Load(ctx, persistence.CollectionBookings, persistence.SharedOwnerKey)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	records = append(records, bookingRecord(session, owner))
	if err := s.store.Save(ctx, persistence.CollectionBookings, persistence.SharedOwnerKey, records); err != nil {
		return nil, fmt.Errorf("save bookings: %w", err)
	}
	s.cache.Invalidate()

	return filterOwner(sessionsFromRecords(records, StudyModeCompanion), owner.ID), nil
}

// conflictsWith maps the detector's interval views back onto full sessions.
// FindConflicts returns an ordered subsequence of its input, so one pass suffices.
func conflictsWith(existing []Session, candidate Session) []Session {
	intervals := make([]scheduler.Session, len(existing))
	for i, session := range existing {
		intervals[i] = intervalOf(session)
	}
	found := scheduler.FindConflicts(intervals, intervalOf(candidate))
	if len(found) == 0 {
		return nil
	}

	conflicts := make([]Session, 0, len(found))
	next := 0
	for i, interval := range intervals {
		if next < len(found) && interval == found[next] {
			conflicts = append(conflicts, existing[i])
			next++
		}
	}
	return conflicts
}

func filterOwner(sessions []Session, ownerID string) []Session {
	out := make([]Session, 0, len(sessions))
	for _, session := range sessions {
		if session.OwnerID == ownerID {
			out = append(out, session)
		}
	}
	return out
}

func (s *BookingService) dispatch(ctx context.Context, notification Notification) {
	if s.notifier == nil {
		return
	}
	detached := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		notifyCtx, cancel := context.WithTimeout(detached, s.notifyTimeout)
		defer cancel()

		logger := s.loggerWith(notifyCtx, "Notify", "event", notification.Kind, "owner_id", notification.Owner.ID)
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("%w: panic: %v", ErrNotificationFailed, r)
				logger.ErrorContext(notifyCtx, "notifier panicked", "error", err, "error_kind", ErrorKind(err))
			}
		}()

		if err := s.notifier.Notify(notifyCtx, notification); err != nil {
			err = fmt.Errorf("%w: %w", ErrNotificationFailed, err)
			logger.WarnContext(notifyCtx, "notification failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.DebugContext(notifyCtx, "notification dispatched")
	}()
}

// Wait blocks until every in-flight notification has finished or ctx ends.
func (s *BookingService) Wait(ctx context.Context) error {
	if s == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NotifyLogin reports a login to the notifier without waiting for delivery.
func (s *BookingService) NotifyLogin(ctx context.Context, owner Owner) error {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if vErr := requireOwner(owner); vErr != nil {
		return vErr
	}
	s.dispatch(ctx, Notification{Kind: EventLogin, Owner: owner, OccurredAt: s.now().UTC()})
	return nil
}

// Edit applies patch to one of the owner's timetable sessions. The patched
// session is validated like a submission, but conflicts are not re-checked.
// Identity, owner and creation time always keep their stored values.
func (s *BookingService) Edit(ctx context.Context, owner Owner, sessionID string, patch SessionPatch) (session Session, err error) {
	if err = s.ready(); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "Edit", "owner_id", owner.ID, "session_id", sessionID)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session edit failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session updated")
	}()

	if vErr := requireOwner(owner); vErr != nil {
		err = vErr
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	records, loadErr := s.store.Load(ctx, persistence.CollectionTimetables, owner.ID)
	if loadErr != nil {
		err = fmt.Errorf("load timetable: %w", loadErr)
		return
	}
	idx := indexOfRecord(records, sessionID)
	if sessionID == "" || idx < 0 {
		err = ErrNotFound
		return
	}
	stored := sessionFromRecord(records[idx], StudyModeAlone)

	updated, vErr := validateSessionInput(s.catalog, applyPatch(inputFromSession(stored), patch))
	if vErr != nil {
		err = vErr
		return
	}
	if !updated.StudyMode.UsesTimetable() {
		mode := newValidationError(ErrInvalidValue)
		mode.add("studyMode", "timetable sessions must stay in alone mode")
		err = mode
		return
	}
	updated.ID = stored.ID
	updated.OwnerID = stored.OwnerID
	if updated.OwnerID == "" {
		updated.OwnerID = owner.ID
	}
	updated.CreatedAt = stored.CreatedAt

	records[idx] = mergeSession(records[idx], updated)
	if saveErr := s.store.Save(ctx, persistence.CollectionTimetables, owner.ID, records); saveErr != nil {
		err = fmt.Errorf("save timetable: %w", saveErr)
		return
	}
	s.cache.Invalidate()
	session = updated
	return
}

// Remove deletes the session from the owner's timetable and from the shared
// bookings the owner holds. Unknown ids are ignored.
func (s *BookingService) Remove(ctx context.Context, owner Owner, sessionID string) (err error) {
	if err = s.ready(); err != nil {
		return
	}

	removed := 0
	logger := s.loggerWith(ctx, "Remove", "owner_id", owner.ID, "session_id", sessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session removal failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session removal finished", "removed", removed)
	}()

	if vErr := requireOwner(owner); vErr != nil {
		err = vErr
		return
	}
	if sessionID == "" {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	timetable, loadErr := s.store.Load(ctx, persistence.CollectionTimetables, owner.ID)
	if loadErr != nil {
		err = fmt.Errorf("load timetable: %w", loadErr)
		return
	}
	if kept, n := dropRecords(timetable, func(r persistence.Record) bool { return r.String(keyID) == sessionID }); n > 0 {
		if saveErr := s.store.Save(ctx, persistence.CollectionTimetables, owner.ID, kept); saveErr != nil {
			err = fmt.Errorf("save timetable: %w", saveErr)
			return
		}
		removed += n
	}

	bookings, loadErr := s.store.Load(ctx, persistence.CollectionBookings, persistence.SharedOwnerKey)
	if loadErr != nil {
		err = fmt.Errorf("load bookings: %w", loadErr)
		return
	}
	ownsBooking := func(r persistence.Record) bool {
		return r.String(keyID) == sessionID && firstString(r, keyOwnerID, keyLegacyUserID) == owner.ID
	}
	if kept, n := dropRecords(bookings, ownsBooking); n > 0 {
		if saveErr := s.store.Save(ctx, persistence.CollectionBookings, persistence.SharedOwnerKey, kept); saveErr != nil {
			err = fmt.Errorf("save bookings: %w", saveErr)
			return
		}
		removed += n
	}

	if removed > 0 {
		s.cache.Invalidate()
	}
	return nil
}

func dropRecords(records persistence.RecordSet, match func(persistence.Record) bool) (persistence.RecordSet, int) {
	kept := make(persistence.RecordSet, 0, len(records))
	for _, record := range records {
		if !match(record) {
			kept = append(kept, record)
		}
	}
	return kept, len(records) - len(kept)
}

// FindConflicts reports the timetable sessions a candidate would overlap
// without storing anything.
func (s *BookingService) FindConflicts(ctx context.Context, params ConflictParams) (conflicts []Session, err error) {
	if err = s.ready(); err != nil {
		return
	}
	if vErr := requireOwner(params.Owner); vErr != nil {
		return nil, vErr
	}
	candidate, vErr := validateSessionInput(s.catalog, params.Input)
	if vErr != nil {
		return nil, vErr
	}
	candidate.ID = params.ExcludeID

	existing, err := s.loadSessions(ctx, persistence.CollectionTimetables, params.Owner.ID, StudyModeAlone)
	if err != nil {
		return nil, err
	}
	return conflictsWith(existing, candidate), nil
}

// FreeSlots lists the gaps in the owner's timetable on date between dayStart
// and dayEnd. Empty bounds cover the whole bookable day.
func (s *BookingService) FreeSlots(ctx context.Context, owner Owner, date, dayStart, dayEnd string) ([]TimeRange, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if vErr := requireOwner(owner); vErr != nil {
		return nil, vErr
	}
	if strings.TrimSpace(dayStart) == "" {
		dayStart = defaultDayStart
	}
	if strings.TrimSpace(dayEnd) == "" {
		dayEnd = defaultDayEnd
	}

	invalid := newValidationError(ErrInvalidValue)
	if _, err := time.Parse(dateLayout, date); err != nil {
		invalid.add("date", "date must use YYYY-MM-DD")
	}
	startMinutes, startErr := timeofday.ToMinutes(dayStart)
	if startErr != nil {
		invalid.add("start", "start must use HH:MM")
	}
	endMinutes, endErr := timeofday.ToMinutes(dayEnd)
	if endErr != nil {
		invalid.add("end", "end must use HH:MM")
	}
	if invalid.HasErrors() {
		return nil, invalid
	}
	if endMinutes <= startMinutes {
		order := newValidationError(ErrInvalidTimeRange)
		order.add("end", "end must be after start")
		return nil, order
	}

	existing, err := s.loadSessions(ctx, persistence.CollectionTimetables, owner.ID, StudyModeAlone)
	if err != nil {
		return nil, err
	}
	intervals := make([]scheduler.Session, len(existing))
	for i, session := range existing {
		intervals[i] = intervalOf(session)
	}

	gaps := scheduler.FreeRanges(intervals, date, timeofday.FromMinutes(startMinutes), timeofday.FromMinutes(endMinutes))
	ranges := make([]TimeRange, 0, len(gaps))
	for _, gap := range gaps {
		ranges = append(ranges, TimeRange{Date: gap.Date, StartTime: gap.Start, EndTime: gap.End})
	}
	return ranges, nil
}

// loadSessions decodes a collection, serving from the listing cache when enabled.
func (s *BookingService) loadSessions(ctx context.Context, collection, ownerKey string, fallbackMode StudyMode) ([]Session, error) {
	key := listingCacheKey(collection, ownerKey)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}
	generation := s.cache.Generation()
	records, err := s.store.Load(ctx, collection, ownerKey)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	sessions := sessionsFromRecords(records, fallbackMode)
	s.cache.Store(key, sessions, generation)
	return sessions, nil
}

func (s *BookingService) ownerBookings(ctx context.Context, ownerID string) ([]Session, error) {
	bookings, err := s.loadSessions(ctx, persistence.CollectionBookings, persistence.SharedOwnerKey, StudyModeCompanion)
	if err != nil {
		return nil, err
	}
	return filterOwner(bookings, ownerID), nil
}

func (s *BookingService) today() string {
	return s.now().Format(dateLayout)
}

// IsUpcoming reports whether session falls on today or later by the service clock.
func (s *BookingService) IsUpcoming(session Session) bool {
	return session.Date >= s.today()
}

// ListSessions returns the owner's sessions ordered by date and start time.
func (s *BookingService) ListSessions(ctx context.Context, params ListParams) ([]Session, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if vErr := requireOwner(params.Owner); vErr != nil {
		return nil, vErr
	}

	invalid := newValidationError(ErrInvalidValue)
	filter := ListFilter(strings.ToLower(strings.TrimSpace(string(params.Filter))))
	switch filter {
	case "":
		filter = ListAll
	case ListAll, ListUpcoming, ListCompleted:
	default:
		invalid.add("status", "status must be all, upcoming or completed")
	}
	mode := StudyMode(strings.ToLower(strings.TrimSpace(string(params.Mode))))
	if mode != "" && !mode.Valid() {
		invalid.add("mode", "mode must be alone, companion or group")
	}
	if invalid.HasErrors() {
		return nil, invalid
	}

	var sessions []Session
	if mode == "" || mode.UsesTimetable() {
		timetable, err := s.loadSessions(ctx, persistence.CollectionTimetables, params.Owner.ID, StudyModeAlone)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, timetable...)
	}
	if mode == "" || !mode.UsesTimetable() {
		bookings, err := s.ownerBookings(ctx, params.Owner.ID)
		if err != nil {
			return nil, err
		}
		for _, booking := range bookings {
			if mode == "" || booking.StudyMode == mode {
				sessions = append(sessions, booking)
			}
		}
	}

	today := s.today()
	out := make([]Session, 0, len(sessions))
	for _, session := range sessions {
		upcoming := session.Date >= today
		if (filter == ListUpcoming && !upcoming) || (filter == ListCompleted && upcoming) {
			continue
		}
		out = append(out, session)
	}
	sortSessions(out)
	return out, nil
}

// Timetable returns the owner's timetable grouped by day.
func (s *BookingService) Timetable(ctx context.Context, owner Owner) ([]DayGroup, error) {
	sessions, err := s.ListSessions(ctx, ListParams{Owner: owner, Mode: StudyModeAlone, Filter: ListAll})
	if err != nil {
		return nil, err
	}
	return GroupByDate(sessions), nil
}

// Stats counts the owner's bookings by upcoming and completed.
func (s *BookingService) Stats(ctx context.Context, owner Owner) (Stats, error) {
	if err := s.ready(); err != nil {
		return Stats{}, err
	}
	if vErr := requireOwner(owner); vErr != nil {
		return Stats{}, vErr
	}
	bookings, err := s.ownerBookings(ctx, owner.ID)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(bookings)}
	for _, booking := range bookings {
		if s.IsUpcoming(booking) {
			stats.Upcoming++
		} else {
			stats.Completed++
		}
	}
	return stats, nil
}

// RecentBookings returns the owner's most recently created bookings, newest first.
func (s *BookingService) RecentBookings(ctx context.Context, owner Owner, limit int) ([]Session, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if vErr := requireOwner(owner); vErr != nil {
		return nil, vErr
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	bookings, err := s.ownerBookings(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(bookings, func(i, j int) bool {
		if !bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
		}
		return bookings[i].ID > bookings[j].ID
	})
	if len(bookings) > limit {
		bookings = bookings[:limit]
	}
	return bookings, nil
}

// ExportTimetable renders the owner's timetable as a JSON download.
func (s *BookingService) ExportTimetable(ctx context.Context, owner Owner) (Export, error) {
	sessions, err := s.ListSessions(ctx, ListParams{Owner: owner, Mode: StudyModeAlone, Filter: ListAll})
	if err != nil {
		return Export{}, err
	}
	records := make(persistence.RecordSet, 0, len(sessions))
	for _, session := range sessions {
		records = append(records, sessionRecord(session))
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return Export{}, fmt.Errorf("encode timetable export: %w", err)
	}

	name := owner.Username
	if strings.TrimSpace(name) == "" {
		name = owner.ID
	}
	return Export{
		Filename: fmt.Sprintf("timetable-%s-%s.json", filenameSafe(name), s.today()),
		Data:     data,
		Count:    len(records),
	}, nil
}

// ExportBookings renders the whole shared booking list, every stored key included.
func (s *BookingService) ExportBookings(ctx context.Context) (Export, error) {
	if err := s.ready(); err != nil {
		return Export{}, err
	}
	records, err := s.store.Load(ctx, persistence.CollectionBookings, persistence.SharedOwnerKey)
	if err != nil {
		return Export{}, fmt.Errorf("load bookings: %w", err)
	}
	if records == nil {
		records = persistence.RecordSet{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return Export{}, fmt.Errorf("encode bookings export: %w", err)
	}
	return Export{
		Filename: fmt.Sprintf("bookings-export-%s.json", s.today()),
		Data:     data,
		Count:    len(records),
	}, nil
}

func filenameSafe(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(value))
}

// SummarizeBookings groups the shared bookings per owner, ordered by username.
func (s *BookingService) SummarizeBookings(ctx context.Context) ([]OwnerSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	records, err := s.store.Load(ctx, persistence.CollectionBookings, persistence.SharedOwnerKey)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	byOwner := make(map[string]*OwnerSummary)
	sessionsByOwner := make(map[string][]Session)
	for _, record := range records {
		session := sessionFromRecord(record, StudyModeCompanion)
		summary, ok := byOwner[session.OwnerID]
		if !ok {
			summary = &OwnerSummary{OwnerID: session.OwnerID}
			byOwner[session.OwnerID] = summary
		}
		if summary.Username == "" {
			summary.Username = record.String(keyUsername)
		}
		if summary.Email == "" {
			summary.Email = record.String(keyEmail)
		}
		summary.Total++
		sessionsByOwner[session.OwnerID] = append(sessionsByOwner[session.OwnerID], session)
	}

	summaries := make([]OwnerSummary, 0, len(byOwner))
	for ownerID, summary := range byOwner {
		summary.Days = GroupByDate(sessionsByOwner[ownerID])
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := strings.ToLower(summaries[i].Username), strings.ToLower(summaries[j].Username)
		if a != b {
			return a < b
		}
		return summaries[i].OwnerID < summaries[j].OwnerID
	})
	return summaries, nil
}

// PendingNotifications lists outbox entries not yet marked sent.
func (s *BookingService) PendingNotifications(ctx context.Context) ([]PendingNotification, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	records, err := s.store.Load(ctx, persistence.CollectionNotifications, persistence.SharedOwnerKey)
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}

	pending := make([]PendingNotification, 0, len(records))
	for _, record := range records {
		sent, _ := record["sent"].(bool)
		if sent {
			continue
		}
		pending = append(pending, PendingNotification{
			ID:         record.String("id"),
			ToEmail:    record.String("to_email"),
			Subject:    record.String("subject"),
			Message:    record.String("message"),
			Username:   record.String("username"),
			UserEmail:  record.String("user_email"),
			ReceivedAt: record.String("received_at"),
			Sent:       sent,
		})
	}
	return pending, nil
}

// ClearPendingNotifications empties the outbox and returns how many entries it held.
func (s *BookingService) ClearPendingNotifications(ctx context.Context) (cleared int, err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "ClearPendingNotifications")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to clear notifications", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "notifications cleared", "count", cleared)
	}()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	records, loadErr := s.store.Load(ctx, persistence.CollectionNotifications, persistence.SharedOwnerKey)
	if loadErr != nil {
		err = fmt.Errorf("load notifications: %w", loadErr)
		return
	}
	if len(records) == 0 {
		return 0, nil
	}
	if saveErr := s.store.Save(ctx, persistence.CollectionNotifications, persistence.SharedOwnerKey, persistence.RecordSet{}); saveErr != nil {
		err = fmt.Errorf("save notifications: %w", saveErr)
		return
	}
	cleared = len(records)
	return
}

// TimetableOwners lists the owners holding a timetable when the store can enumerate them.
func (s *BookingService) TimetableOwners(ctx context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	index, ok := s.store.(persistence.OwnerIndex)
	if !ok {
		return nil, ErrUnsupported
	}
	owners, err := index.Owners(ctx, persistence.CollectionTimetables)
	if err != nil {
		return nil, fmt.Errorf("list timetable owners: %w", err)
	}
	out := make([]string, 0, len(owners))
	for _, owner := range owners {
		if owner != persistence.SharedOwnerKey {
			out = append(out, owner)
		}
	}
	return out, nil
}
