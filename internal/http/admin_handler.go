package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/study-scheduler/internal/application"
)

type adminService interface {
	IsUpcoming(session application.Session) bool
	SummarizeBookings(ctx context.Context) ([]application.OwnerSummary, error)
	ExportBookings(ctx context.Context) (application.Export, error)
	PendingNotifications(ctx context.Context) ([]application.PendingNotification, error)
	ClearPendingNotifications(ctx context.Context) (int, error)
	TimetableOwners(ctx context.Context) ([]string, error)
}

// AdminHandler serves the cross-owner views under /admin.
type AdminHandler struct {
	service   adminService
	responder responder
	logger    *slog.Logger
}

func NewAdminHandler(service adminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: service, responder: newResponder(logger), logger: logger}
}

func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	summaries, err := h.service.SummarizeBookings(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	owners := make([]ownerSummaryDTO, 0, len(summaries))
	for _, summary := range summaries {
		days := make([]dayDTO, 0, len(summary.Days))
		for _, day := range summary.Days {
			sessions := make([]sessionDTO, 0, len(day.Sessions))
			for _, session := range day.Sessions {
				sessions = append(sessions, toSessionDTO(session, h.service.IsUpcoming(session)))
			}
			days = append(days, dayDTO{Date: day.Date, Sessions: sessions})
		}
		owners = append(owners, ownerSummaryDTO{
			OwnerID:  summary.OwnerID,
			Username: summary.Username,
			Email:    summary.Email,
			Total:    summary.Total,
			Days:     days,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, summaryResponse{Owners: owners})
}

func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	export, err := h.service.ExportBookings(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeAttachment(r.Context(), w, export)
}

func (h *AdminHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	pending, err := h.service.PendingNotifications(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	out := make([]notificationDTO, 0, len(pending))
	for _, n := range pending {
		out = append(out, notificationDTO{
			ID:         n.ID,
			ToEmail:    n.ToEmail,
			Subject:    n.Subject,
			Message:    n.Message,
			Username:   n.Username,
			UserEmail:  n.UserEmail,
			ReceivedAt: n.ReceivedAt,
			Sent:       n.Sent,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationsResponse{Notifications: out})
}

func (h *AdminHandler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	cleared, err := h.service.ClearPendingNotifications(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	handlerLogger(r.Context(), h.logger, "AdminHandler", "ClearNotifications").
		InfoContext(r.Context(), "notification outbox cleared", "cleared", cleared)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, clearedResponse{Cleared: cleared})
}

func (h *AdminHandler) TimetableOwners(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	owners, err := h.service.TimetableOwners(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if owners == nil {
		owners = []string{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, ownersResponse{Owners: owners})
}

type ownerSummaryDTO struct {
	OwnerID  string   `json:"ownerId"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Total    int      `json:"total"`
	Days     []dayDTO `json:"days"`
}

type summaryResponse struct {
	Owners []ownerSummaryDTO `json:"owners"`
}

type notificationDTO struct {
	ID         string `json:"id"`
	ToEmail    string `json:"to_email"`
	Subject    string `json:"subject"`
	Message    string `json:"message"`
	Username   string `json:"username"`
	UserEmail  string `json:"user_email"`
	ReceivedAt string `json:"received_at"`
	Sent       bool   `json:"sent"`
}

type notificationsResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}

type clearedResponse struct {
	Cleared int `json:"cleared"`
}

type ownersResponse struct {
	Owners []string `json:"owners"`
}
