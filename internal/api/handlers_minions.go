package api

import (
	"net/http"

	"github.com/bossmachine/bossmachine/internal/core"
	"github.com/bossmachine/bossmachine/internal/store"
)

// ListMinions handles GET /minions.
func (h *Handler) ListMinions(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, http.StatusOK, h.store.ListMinions())
}

// CreateMinion handles POST /minions.
func (h *Handler) CreateMinion(w http.ResponseWriter, r *http.Request) {
	m, err := store.MinionFromFields(fieldsFrom(r))
	if err != nil {
		h.rejectBody(w, r, err)
		return
	}
	created := h.store.InsertMinion(m)
	h.logger.Debug("minion created", "id", created.ID)
	core.JSON(w, http.StatusCreated, created)
}

// GetMinion handles GET /minions/{minionId}.
func (h *Handler) GetMinion(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, http.StatusOK, minionFrom(r))
}

// UpdateMinion handles PUT /minions/{minionId}. The record is replaced
// wholesale; the id always comes from the path.
func (h *Handler) UpdateMinion(w http.ResponseWriter, r *http.Request) {
	m, err := store.MinionFromFields(fieldsFrom(r))
	if err != nil {
		h.rejectBody(w, r, err)
		return
	}
	m.ID = minionFrom(r).ID

	updated, ok := h.store.UpdateMinion(m)
	if !ok {
		core.Error(w, http.StatusNotFound, "Minion not found")
		return
	}
	h.logger.Debug("minion updated", "id", updated.ID)
	core.JSON(w, http.StatusOK, updated)
}

// DeleteMinion handles DELETE /minions/{minionId}. Work assigned to the
// minion is left in place.
func (h *Handler) DeleteMinion(w http.ResponseWriter, r *http.Request) {
	id := minionFrom(r).ID
	if !h.store.DeleteMinion(id) {
		core.Empty(w, http.StatusInternalServerError)
		return
	}
	h.logger.Debug("minion deleted", "id", id)
	core.Empty(w, http.StatusNoContent)
}
