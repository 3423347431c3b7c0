package httpadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"pledge-ledger/internal/core/domain"
)

type eventBody struct {
	Kind        string `json:"kind"`
	TargetID    string `json:"target_id"`
	AmountCents int64  `json:"amount_cents"`
	Error       string `json:"error,omitempty"`
}

// handleEvents streams the caller's confirm/rollback events as
// server-sent events. The stream stays open until the client disconnects.
// Slow consumers drop events rather than block the ledger; the current
// state is always recoverable from the budget and allocation endpoints.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	events := make(chan domain.Event, 16)
	cancel, err := h.svc.Subscribe(userID(r), func(ev domain.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			body := eventBody{
				Kind:        string(ev.Kind),
				TargetID:    ev.TargetID,
				AmountCents: ev.AmountCents,
			}
			if ev.Err != nil {
				body.Error = ev.Err.Error()
			}
			data, err := json.Marshal(body)
			if err != nil {
				h.logger.Error("encode event error", slog.Any("error", err))
				continue
			}
			if _, err = fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
