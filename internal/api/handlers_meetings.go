package api

import (
	"net/http"

	"github.com/bossmachine/bossmachine/internal/core"
)

// ListMeetings handles GET /meetings.
func (h *Handler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, http.StatusOK, h.store.ListMeetings())
}

// CreateMeeting handles POST /meetings. Any request body is ignored; the
// meeting is generated from the simulated clock.
func (h *Handler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	m := h.store.CreateMeeting()
	h.logger.Debug("meeting created", "id", m.ID, "date", m.Date)
	core.JSON(w, http.StatusCreated, m)
}

// DeleteMeetings handles DELETE /meetings.
func (h *Handler) DeleteMeetings(w http.ResponseWriter, r *http.Request) {
	h.store.DeleteAllMeetings()
	h.logger.Debug("meetings cleared")
	core.Empty(w, http.StatusNoContent)
}
