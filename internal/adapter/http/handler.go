package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pledge-ledger/internal/adapter/usecase"
	"pledge-ledger/internal/core/domain"
	"pledge-ledger/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. It holds a LedgerUseCase to execute business logic and a logger
// for structured logging. Routes are registered on a chi.Router for
// convenient method handling.
type Handler struct {
	svc    port.LedgerUseCase
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured. Every route
// runs behind the identity middleware; auth itself is external and the
// adapter only requires a resolved user id.
func NewHandler(svc port.LedgerUseCase, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1/me", func(r chi.Router) {
		r.Use(h.requireUser)
		r.Get("/budget", h.handleBudget)
		r.Get("/allocations", h.handleListAllocations)
		r.Get("/allocations/{targetID}", h.handleGetAllocation)
		r.Post("/allocations/{targetID}/change", h.handleChange)
		r.Put("/allocations/{targetID}", h.handleSetAbsolute)
		r.Get("/events", h.handleEvents)
		r.Delete("/session", h.handleLogout)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

// writeJSON encodes v with the JSON content type. Encoding should rarely
// fail; failures are logged and the response left as-is.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeError maps the domain taxonomy and validation errors onto HTTP
// statuses. Synchronous rejections carry their reason inline; unexpected
// failures are logged and reported generically.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientBudget):
		h.writeJSON(w, http.StatusConflict, errorBody{Error: "insufficient_budget"})
	case errors.Is(err, domain.ErrUnauthorized):
		h.writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	case errors.Is(err, domain.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found"})
	case errors.Is(err, usecase.ErrZeroDelta), errors.Is(err, usecase.ErrNegativeAmount):
		h.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	default:
		h.logger.Error("ledger error", slog.Any("error", err))
		h.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

type errorBody struct {
	Error string `json:"error"`
}
