package domain

import "errors"

// Ledger error taxonomy. ErrInsufficientBudget is rejected synchronously
// before any mutation. The remaining errors classify asynchronous persist
// failures after the optimistic change has been rolled back.
var (
	// ErrInsufficientBudget means the proposed change would push the
	// allocated sum past the budget total. Not retryable; the user must
	// free up budget elsewhere first.
	ErrInsufficientBudget = errors.New("insufficient budget")

	// ErrUnauthorized means the caller has no valid session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the target or user no longer exists in the store.
	ErrNotFound = errors.New("not found")

	// ErrTransient marks a retryable persistence failure (timeout,
	// connection loss, serialization conflict). The ledger rolls back and
	// never retries on its own.
	ErrTransient = errors.New("transient store error")
)
