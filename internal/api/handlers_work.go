package api

import (
	"errors"
	"net/http"

	"github.com/bossmachine/bossmachine/internal/core"
	"github.com/bossmachine/bossmachine/internal/store"
)

var errMinionMismatch = errors.New("minionId does not match the minion in the path")

// ListWork handles GET /minions/{minionId}/work.
func (h *Handler) ListWork(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, http.StatusOK, h.store.WorkForMinion(minionFrom(r).ID))
}

// CreateWork handles POST /minions/{minionId}/work. The owning minion is
// taken from the path, whatever the body says.
func (h *Handler) CreateWork(w http.ResponseWriter, r *http.Request) {
	f := fieldsFrom(r)
	f["minionId"] = minionFrom(r).ID

	work, err := store.WorkFromFields(f)
	if err != nil {
		h.rejectBody(w, r, err)
		return
	}
	created, err := h.store.InsertWork(work)
	if err != nil {
		h.storeFailed(w, r, err)
		return
	}
	h.logger.Debug("work created", "id", created.ID, "minion_id", created.MinionID)
	core.JSON(w, http.StatusCreated, created)
}

// UpdateWork handles PUT /minions/{minionId}/work/{workId}. The body must
// name the minion in the path.
func (h *Handler) UpdateWork(w http.ResponseWriter, r *http.Request) {
	f := fieldsFrom(r)
	minion := minionFrom(r)
	if id, _ := f["minionId"].(string); id != minion.ID {
		h.rejectBody(w, r, errMinionMismatch)
		return
	}

	work, err := store.WorkFromFields(f)
	if err != nil {
		h.rejectBody(w, r, err)
		return
	}
	work.ID = workFrom(r).ID

	updated, ok, err := h.store.UpdateWork(work)
	if err != nil {
		h.storeFailed(w, r, err)
		return
	}
	if !ok {
		core.Error(w, http.StatusNotFound, "Work not found")
		return
	}
	h.logger.Debug("work updated", "id", updated.ID, "minion_id", updated.MinionID)
	core.JSON(w, http.StatusOK, updated)
}

// DeleteWork handles DELETE /minions/{minionId}/work/{workId}.
func (h *Handler) DeleteWork(w http.ResponseWriter, r *http.Request) {
	id := workFrom(r).ID
	if !h.store.DeleteWork(id) {
		core.Empty(w, http.StatusInternalServerError)
		return
	}
	h.logger.Debug("work deleted", "id", id)
	core.Empty(w, http.StatusNoContent)
}
