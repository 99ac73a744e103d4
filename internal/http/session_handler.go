package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/example/study-scheduler/internal/application"
	"github.com/example/study-scheduler/internal/timeofday"
)

type sessionService interface {
	Submit(ctx context.Context, params application.SubmitParams) (application.SubmitResult, error)
	Edit(ctx context.Context, owner application.Owner, sessionID string, patch application.SessionPatch) (application.Session, error)
	Remove(ctx context.Context, owner application.Owner, sessionID string) error
	FindConflicts(ctx context.Context, params application.ConflictParams) ([]application.Session, error)
	FreeSlots(ctx context.Context, owner application.Owner, date, dayStart, dayEnd string) ([]application.TimeRange, error)
	ListSessions(ctx context.Context, params application.ListParams) ([]application.Session, error)
	IsUpcoming(session application.Session) bool
	Timetable(ctx context.Context, owner application.Owner) ([]application.DayGroup, error)
	Stats(ctx context.Context, owner application.Owner) (application.Stats, error)
	RecentBookings(ctx context.Context, owner application.Owner, limit int) ([]application.Session, error)
	ExportTimetable(ctx context.Context, owner application.Owner) (application.Export, error)
}

// SessionHandler serves the owner-scoped session and timetable routes.
type SessionHandler struct {
	service   sessionService
	validate  *validator.Validate
	responder responder
	logger    *slog.Logger
}

func NewSessionHandler(service sessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		service:   service,
		validate:  newValidator(),
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.responder.writeInvalid(r.Context(), w, err)
		return
	}

	owner, _ := OwnerFromContext(r.Context())
	result, err := h.service.Submit(r.Context(), application.SubmitParams{Owner: owner, Input: req.toInput()})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		handlerLogger(r.Context(), h.logger, "SessionHandler", "Submit").
			InfoContext(r.Context(), "session stored with conflicts", "session_id", result.Session.ID, "conflict_count", len(result.Conflicts))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, submitResponse{
		Session:       h.toDTO(result.Session),
		Conflicts:     h.toDTOs(result.Conflicts),
		ConflictCount: len(result.Conflicts),
	})
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	owner, _ := OwnerFromContext(r.Context())
	query := r.URL.Query()
	sessions, err := h.service.ListSessions(r.Context(), application.ListParams{
		Owner:  owner,
		Mode:   application.StudyMode(query.Get("mode")),
		Filter: application.ListFilter(query.Get("status")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResponse{Sessions: h.toDTOs(sessions)})
}

func (h *SessionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	owner, _ := OwnerFromContext(r.Context())
	if err := h.service.Remove(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *SessionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.responder.writeInvalid(r.Context(), w, err)
		return
	}

	owner, _ := OwnerFromContext(r.Context())
	session, err := h.service.Edit(r.Context(), owner, chi.URLParam(r, "id"), req.toPatch())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: h.toDTO(session)})
}

func (h *SessionHandler) Timetable(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	owner, _ := OwnerFromContext(r.Context())
	days, err := h.service.Timetable(r.Context(), owner)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, timetableResponse{Days: h.toDayDTOs(days)})
}

func (h *SessionHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req conflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.responder.writeInvalid(r.Context(), w, err)
		return
	}

	owner, _ := OwnerFromContext(r.Context())
	conflicts, err := h.service.FindConflicts(r.Context(), application.ConflictParams{
		Owner:     owner,
		Input:     req.sessionRequest.toInput(),
		ExcludeID: strings.TrimSpace(req.ExcludeID),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, conflictsResponse{
		Conflicts:     h.toDTOs(conflicts),
		ConflictCount: len(conflicts),
	})
}

func (h *SessionHandler) FreeSlots(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	owner, _ := OwnerFromContext(r.Context())
	query := r.URL.Query()
	ranges, err := h.service.FreeSlots(r.Context(), owner, query.Get("date"), query.Get("start"), query.Get("end"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	free := make([]timeRangeDTO, 0, len(ranges))
	for _, tr := range ranges {
		free = append(free, timeRangeDTO{
			Date:        tr.Date,
			StartTime:   tr.StartTime,
			EndTime:     tr.EndTime,
			Duration:    timeofday.Duration(tr.StartTime, tr.EndTime),
			TimeDisplay: timeofday.FormatRange(tr.StartTime, tr.EndTime),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, freeSlotsResponse{Free: free})
}

func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	owner, _ := OwnerFromContext(r.Context())
	export, err := h.service.ExportTimetable(r.Context(), owner)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeAttachment(r.Context(), w, export)
}

func (h *SessionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	owner, _ := OwnerFromContext(r.Context())
	stats, err := h.service.Stats(r.Context(), owner)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, statsDTO{
		Total:     stats.Total,
		Upcoming:  stats.Upcoming,
		Completed: stats.Completed,
	})
}

func (h *SessionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLimit)
			return
		}
		limit = parsed
	}

	owner, _ := OwnerFromContext(r.Context())
	sessions, err := h.service.RecentBookings(r.Context(), owner, limit)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResponse{Sessions: h.toDTOs(sessions)})
}

func (h *SessionHandler) toDTO(session application.Session) sessionDTO {
	return toSessionDTO(session, h.service.IsUpcoming(session))
}

func (h *SessionHandler) toDTOs(sessions []application.Session) []sessionDTO {
	out := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, h.toDTO(session))
	}
	return out
}

func (h *SessionHandler) toDayDTOs(days []application.DayGroup) []dayDTO {
	out := make([]dayDTO, 0, len(days))
	for _, day := range days {
		out = append(out, dayDTO{Date: day.Date, Sessions: h.toDTOs(day.Sessions)})
	}
	return out
}

type sessionRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Subject   string `json:"subject" validate:"max=200"`
	Venue     string `json:"venue" validate:"max=100"`
	Floor     string `json:"floor" validate:"max=50"`
	StudyMode string `json:"studyMode"`
}

func (r sessionRequest) toInput() application.SessionInput {
	return application.SessionInput{
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Subject:   r.Subject,
		Venue:     r.Venue,
		Floor:     r.Floor,
		StudyMode: r.StudyMode,
	}
}

type conflictRequest struct {
	sessionRequest
	ExcludeID string `json:"excludeId"`
}

// patchRequest ignores identity fields; keys such as id, ownerId or createdAt are dropped.
type patchRequest struct {
	Date      *string `json:"date"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Subject   *string `json:"subject" validate:"omitempty,max=200"`
	Venue     *string `json:"venue" validate:"omitempty,max=100"`
	Floor     *string `json:"floor" validate:"omitempty,max=50"`
	StudyMode *string `json:"studyMode"`
}

func (r patchRequest) toPatch() application.SessionPatch {
	return application.SessionPatch{
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Subject:   r.Subject,
		Venue:     r.Venue,
		Floor:     r.Floor,
		StudyMode: r.StudyMode,
	}
}

// sessionDTO is the exported record shape plus display fields. Floor is
// null for venues without floors.
type sessionDTO struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"ownerId"`
	Date        string  `json:"date"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Duration    string  `json:"duration"`
	TimeDisplay string  `json:"timeDisplay"`
	Subject     string  `json:"subject"`
	Venue       string  `json:"venue"`
	Floor       *string `json:"floor"`
	StudyMode   string  `json:"studyMode"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt,omitempty"`
}

func toSessionDTO(session application.Session, upcoming bool) sessionDTO {
	status := string(application.ListCompleted)
	if upcoming {
		status = string(application.ListUpcoming)
	}
	dto := sessionDTO{
		ID:          session.ID,
		OwnerID:     session.OwnerID,
		Date:        session.Date,
		StartTime:   session.StartTime,
		EndTime:     session.EndTime,
		Duration:    session.Duration,
		TimeDisplay: timeofday.FormatRange(session.StartTime, session.EndTime),
		Subject:     session.Subject,
		Venue:       session.Venue,
		StudyMode:   string(session.StudyMode),
		Status:      status,
	}
	if session.Floor != "" {
		floor := session.Floor
		dto.Floor = &floor
	}
	if !session.CreatedAt.IsZero() {
		dto.CreatedAt = session.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	}
	return dto
}

type dayDTO struct {
	Date     string       `json:"date"`
	Sessions []sessionDTO `json:"sessions"`
}

type timeRangeDTO struct {
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Duration    string `json:"duration"`
	TimeDisplay string `json:"timeDisplay"`
}

type statsDTO struct {
	Total     int `json:"total"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
}

type submitResponse struct {
	Session       sessionDTO   `json:"session"`
	Conflicts     []sessionDTO `json:"conflicts"`
	ConflictCount int          `json:"conflict_count"`
}

type sessionResponse struct {
	Session sessionDTO `json:"session"`
}

type listResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}

type timetableResponse struct {
	Days []dayDTO `json:"days"`
}

type conflictsResponse struct {
	Conflicts     []sessionDTO `json:"conflicts"`
	ConflictCount int          `json:"conflict_count"`
}

type freeSlotsResponse struct {
	Free []timeRangeDTO `json:"free"`
}
