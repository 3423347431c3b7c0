package httpadapter

import (
	"context"
	"net/http"

	"pledge-ledger/internal/core/domain"
)

type ctxKey int

const userIDKey ctxKey = 0

// requireUser resolves the caller's identity. Authentication is a black
// box upstream of this service; the gateway forwards the verified user id
// in X-User-ID, and a request without one has no session.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			h.writeError(w, domain.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// userID returns the identity resolved by requireUser.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
