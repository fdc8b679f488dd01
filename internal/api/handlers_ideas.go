package api

import (
	"net/http"

	"github.com/bossmachine/bossmachine/internal/core"
	"github.com/bossmachine/bossmachine/internal/store"
)

// ListIdeas handles GET /ideas.
func (h *Handler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, http.StatusOK, h.store.ListIdeas())
}

// CreateIdea handles POST /ideas. checkMillionDollarIdea has already run.
func (h *Handler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	idea, err := store.IdeaFromFields(fieldsFrom(r))
	if err != nil {
		h.rejectBody(w, r, err)
		return
	}
	created, err := h.store.InsertIdea(idea)
	if err != nil {
		h.storeFailed(w, r, err)
		return
	}
	h.logger.Debug("idea created", "id", created.ID, "value", created.Value())
	core.JSON(w, http.StatusCreated, created)
}

// GetIdea handles GET /ideas/{ideaId}.
func (h *Handler) GetIdea(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, http.StatusOK, ideaFrom(r))
}

// UpdateIdea handles PUT /ideas/{ideaId}.
func (h *Handler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	idea, err := store.IdeaFromFields(fieldsFrom(r))
	if err != nil {
		h.rejectBody(w, r, err)
		return
	}
	idea.ID = ideaFrom(r).ID

	updated, ok, err := h.store.UpdateIdea(idea)
	if err != nil {
		h.storeFailed(w, r, err)
		return
	}
	if !ok {
		core.Error(w, http.StatusNotFound, "Idea not found")
		return
	}
	h.logger.Debug("idea updated", "id", updated.ID, "value", updated.Value())
	core.JSON(w, http.StatusOK, updated)
}

// DeleteIdea handles DELETE /ideas/{ideaId}.
func (h *Handler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	id := ideaFrom(r).ID
	if !h.store.DeleteIdea(id) {
		core.Empty(w, http.StatusInternalServerError)
		return
	}
	h.logger.Debug("idea deleted", "id", id)
	core.Empty(w, http.StatusNoContent)
}
