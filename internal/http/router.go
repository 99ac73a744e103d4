package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Sessions   *SessionHandler
	Catalog    *CatalogHandler
	Admin      *AdminHandler
	Auth       *AuthHandler
	AdminToken string
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		newResponder(cfg.Logger).writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: "ok"})
	})

	if cfg.Catalog != nil {
		r.Get("/venues", cfg.Catalog.Venues)
		r.Route("/time", func(r chi.Router) {
			r.Get("/duration", cfg.Catalog.Duration)
			r.Get("/display", cfg.Catalog.Display)
			r.Get("/slots", cfg.Catalog.Slots)
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(RequireOwner(cfg.Logger))

		if cfg.Sessions != nil {
			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", cfg.Sessions.List)
				r.Post("/", cfg.Sessions.Submit)
				r.Delete("/{id}", cfg.Sessions.Remove)
			})
			r.Route("/timetable", func(r chi.Router) {
				r.Get("/", cfg.Sessions.Timetable)
				r.Post("/conflicts", cfg.Sessions.Conflicts)
				r.Get("/free", cfg.Sessions.FreeSlots)
				r.Get("/export", cfg.Sessions.Export)
				r.Patch("/{id}", cfg.Sessions.Edit)
			})
			r.Get("/stats", cfg.Sessions.Stats)
			r.Get("/bookings/recent", cfg.Sessions.Recent)
		}
		if cfg.Auth != nil {
			r.Post("/auth/login-events", cfg.Auth.LoginEvent)
		}
	})

	if cfg.Admin != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdminToken(cfg.AdminToken, cfg.Logger))
			r.Get("/bookings/summary", cfg.Admin.Summary)
			r.Get("/bookings/export", cfg.Admin.Export)
			r.Get("/notifications", cfg.Admin.Notifications)
			r.Delete("/notifications", cfg.Admin.ClearNotifications)
			r.Get("/timetables", cfg.Admin.TimetableOwners)
		})
	}

	return r
}
