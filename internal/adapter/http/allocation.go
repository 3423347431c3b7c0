package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type changeRequest struct {
	DeltaCents int64 `json:"delta_cents"`
}

type setRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type allocationResponse struct {
	TargetID    string `json:"target_id"`
	AmountCents int64  `json:"amount_cents"`
}

// handleListAllocations returns the optimistic view of every non-zero
// allocation for the caller.
func (h *Handler) handleListAllocations(w http.ResponseWriter, r *http.Request) {
	allocs, err := h.svc.ListAllocations(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]allocationResponse, 0, len(allocs))
	for target, amount := range allocs {
		out = append(out, allocationResponse{TargetID: target, AmountCents: amount})
	}
	h.writeJSON(w, http.StatusOK, out)
}

// handleGetAllocation returns the optimistic amount for one target. An
// unknown target reads as zero, per the ledger's absent-equals-zero rule.
func (h *Handler) handleGetAllocation(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "targetID")
	amount, err := h.svc.GetAllocation(r.Context(), userID(r), targetID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, allocationResponse{TargetID: targetID, AmountCents: amount})
}

// handleChange applies a signed delta to one target. Accepted changes are
// optimistic, so the response is 202 with the updated view; the durable
// outcome arrives on the events stream. Over-budget changes return 409
// with nothing mutated.
func (h *Handler) handleChange(w http.ResponseWriter, r *http.Request) {
	var req changeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	view, err := h.svc.Change(r.Context(), userID(r), chi.URLParam(r, "targetID"), req.DeltaCents)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, view)
}

// handleSetAbsolute sets one target's amount outright, with the same
// semantics as handleChange. Used for custom-amount entry.
func (h *Handler) handleSetAbsolute(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	view, err := h.svc.SetAbsolute(r.Context(), userID(r), chi.URLParam(r, "targetID"), req.AmountCents)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, view)
}
