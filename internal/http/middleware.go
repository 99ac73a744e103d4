package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/study-scheduler/internal/application"
	"github.com/example/study-scheduler/internal/logging"
)

const (
	headerOwnerID    = "X-Owner-ID"
	headerOwnerName  = "X-Owner-Name"
	headerOwnerEmail = "X-Owner-Email"
	headerAdminToken = "X-Admin-Token"
)

// RequireOwner resolves the acting owner from request headers. The username
// falls back to the owner id.
func RequireOwner(logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(headerOwnerID))
			if id == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingOwner)
				return
			}
			owner := application.Owner{
				ID:       id,
				Username: strings.TrimSpace(r.Header.Get(headerOwnerName)),
				Email:    strings.TrimSpace(r.Header.Get(headerOwnerEmail)),
			}
			if owner.Username == "" {
				owner.Username = id
			}

			ctx := ContextWithOwner(r.Context(), owner)
			if l := logging.FromContext(ctx); l != nil {
				ctx = logging.ContextWithLogger(ctx, l.With("owner_id", id))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdminToken guards administrator routes. An empty token disables the check.
func RequireAdminToken(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := r.Header.Get(headerAdminToken)
			if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				responder.writeError(r.Context(), w, http.StatusForbidden, errAdminToken)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger stores a request-scoped logger in the context and logs the
// outcome of every request.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed",
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
