package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/study-scheduler/internal/application"
)

type loginReporter interface {
	NotifyLogin(ctx context.Context, owner application.Owner) error
}

// AuthHandler accepts login reports from the front end so administrators
// are told who signed in.
type AuthHandler struct {
	service   loginReporter
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service loginReporter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, responder: newResponder(logger), logger: logger}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// LoginEvent queues a login notification for the owner in the request headers.
func (h *AuthHandler) LoginEvent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	owner, _ := OwnerFromContext(r.Context())
	if err := h.service.NotifyLogin(r.Context(), owner); err != nil {
		h.log(r.Context(), "LoginEvent", "error_kind", application.ErrorKind(err)).
			WarnContext(r.Context(), "login report rejected", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "LoginEvent").InfoContext(r.Context(), "login reported")
	h.responder.writeJSON(r.Context(), w, http.StatusAccepted, statusResponse{Status: "accepted"})
}

type statusResponse struct {
	Status string `json:"status"`
}
