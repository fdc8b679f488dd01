// Package api implements the Boss Machine HTTP API: minions and their work,
// ideas, and meetings.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bossmachine/bossmachine/internal/core"
	"github.com/bossmachine/bossmachine/internal/store"
)

// Handler holds all API handler state.
type Handler struct {
	store  *store.MemoryStore
	mw     *core.Middleware
	logger *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s *store.MemoryStore, mw *core.Middleware, logger *slog.Logger) *Handler {
	return &Handler{store: s, mw: mw, logger: logger}
}

// Routes mounts the API under basePath. An empty basePath mounts it at the
// root.
func (h *Handler) Routes(r chi.Router, basePath string) {
	mount := func(r chi.Router) {
		// Fault injection for API routes (not admin)
		r.Use(h.mw.FaultInjection)

		r.Route("/minions", func(r chi.Router) {
			r.Get("/", h.ListMinions)
			r.With(decodeFields).Post("/", h.CreateMinion)

			r.Route("/{minionId}", func(r chi.Router) {
				r.Use(h.resolveMinion)
				r.Get("/", h.GetMinion)
				r.With(decodeFields).Put("/", h.UpdateMinion)
				r.Delete("/", h.DeleteMinion)

				r.Route("/work", func(r chi.Router) {
					r.Get("/", h.ListWork)
					r.With(decodeFields).Post("/", h.CreateWork)

					r.Route("/{workId}", func(r chi.Router) {
						r.Use(h.resolveWork)
						r.With(decodeFields).Put("/", h.UpdateWork)
						r.Delete("/", h.DeleteWork)
					})
				})
			})
		})

		r.Route("/ideas", func(r chi.Router) {
			r.Get("/", h.ListIdeas)
			r.With(decodeFields, checkMillionDollarIdea).Post("/", h.CreateIdea)

			r.Route("/{ideaId}", func(r chi.Router) {
				r.Use(h.resolveIdea)
				r.Get("/", h.GetIdea)
				r.With(decodeFields, checkMillionDollarIdea).Put("/", h.UpdateIdea)
				r.Delete("/", h.DeleteIdea)
			})
		})

		r.Route("/meetings", func(r chi.Router) {
			r.Get("/", h.ListMeetings)
			r.Post("/", h.CreateMeeting)
			r.Delete("/", h.DeleteMeetings)
		})
	}

	if basePath == "" || basePath == "/" {
		r.Group(mount)
		return
	}
	r.Route(basePath, mount)
}

// rejectBody answers 400 with no body. Validation failures are logged at
// debug only.
func (h *Handler) rejectBody(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug("request rejected",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
		"request_id", chimw.GetReqID(r.Context()),
	)
	core.Empty(w, http.StatusBadRequest)
}

// storeFailed answers a store error: validation errors are the client's
// fault, anything else is ours.
func (h *Handler) storeFailed(w http.ResponseWriter, r *http.Request, err error) {
	if isValidation(err) {
		h.rejectBody(w, r, err)
		return
	}
	h.logger.Error("store operation failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
		"request_id", chimw.GetReqID(r.Context()),
	)
	core.Empty(w, http.StatusInternalServerError)
}

func isValidation(err error) bool {
	var verr *store.ValidationError
	return errors.As(err, &verr)
}
