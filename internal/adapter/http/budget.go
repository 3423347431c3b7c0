package httpadapter

import "net/http"

// handleBudget returns the caller's optimistic budget view: total,
// allocated (pending deltas included) and the clamped remainder.
func (h *Handler) handleBudget(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.GetBudget(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// handleLogout drops the caller's ledger. The next request rebuilds it
// from the store.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.svc.CloseUser(userID(r))
	w.WriteHeader(http.StatusNoContent)
}
