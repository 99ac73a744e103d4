package http

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/example/study-scheduler/internal/timeofday"
	"github.com/example/study-scheduler/internal/venue"
)

type venueLister interface {
	All() []venue.Venue
}

// CatalogHandler serves reference data: venues and time helpers.
type CatalogHandler struct {
	venues    venueLister
	validate  *validator.Validate
	responder responder
}

func NewCatalogHandler(venues venueLister, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{venues: venues, validate: newValidator(), responder: newResponder(logger)}
}

func (h *CatalogHandler) Venues(w http.ResponseWriter, r *http.Request) {
	var venues []venue.Venue
	if h.venues != nil {
		venues = h.venues.All()
	}
	if venues == nil {
		venues = []venue.Venue{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, venuesResponse{Venues: venues})
}

func (h *CatalogHandler) Duration(w http.ResponseWriter, r *http.Request) {
	query := durationQuery{Start: r.URL.Query().Get("start"), End: r.URL.Query().Get("end")}
	if err := h.validate.Struct(&query); err != nil {
		h.responder.writeInvalid(r.Context(), w, err)
		return
	}

	minutes, ok := timeofday.DurationMinutes(query.Start, query.End)
	if !ok {
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "invalid_time_range",
			Message:   "end time must be after start time",
			Errors:    map[string]string{"end": "must be after start"},
		})
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, durationResponse{
		Duration: timeofday.FormatMinutes(minutes),
		Minutes:  minutes,
	})
}

func (h *CatalogHandler) Display(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("time")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, displayResponse{Time: value, Display: timeofday.FormatDisplay(value)})
}

func (h *CatalogHandler) Slots(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	resp := slotsResponse{StartSlots: timeofday.HourSlots(), EndSlots: []string{}}
	if start != "" {
		if ends := timeofday.EndSlots(start); ends != nil {
			resp.EndSlots = ends
		}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type durationQuery struct {
	Start string `query:"start" validate:"required"`
	End   string `query:"end" validate:"required"`
}

type venuesResponse struct {
	Venues []venue.Venue `json:"venues"`
}

type durationResponse struct {
	Duration string `json:"duration"`
	Minutes  int    `json:"minutes"`
}

type displayResponse struct {
	Time    string `json:"time"`
	Display string `json:"display"`
}

type slotsResponse struct {
	StartSlots []string `json:"start_slots"`
	EndSlots   []string `json:"end_slots"`
}

