package port

import (
	"context"

	"pledge-ledger/internal/core/domain"
)

// LedgerUseCase is the inbound port into the allocation ledger. This is
// the surface the presentation layer calls. Mock implementations can be
// generated from this interface for testing.
type LedgerUseCase interface {
	// GetBudget returns the optimistic budget view for a user, loading
	// the user's ledger from the store on first touch.
	GetBudget(ctx context.Context, userID string) (*BudgetView, error)

	// GetAllocation returns the current known amount for a target: the
	// optimistic value if a change is in flight, else the confirmed
	// value, else 0.
	GetAllocation(ctx context.Context, userID, targetID string) (int64, error)

	// ListAllocations returns the optimistic view of every non-zero
	// allocation keyed by target id.
	ListAllocations(ctx context.Context, userID string) (map[string]int64, error)

	// Change applies a signed delta to one target. Accepted changes take
	// effect optimistically before the call returns and persist
	// asynchronously; over-budget changes are rejected with
	// domain.ErrInsufficientBudget and mutate nothing. The eventual
	// confirm or rollback arrives on the event surface.
	Change(ctx context.Context, userID, targetID string, deltaCents int64) (*BudgetView, error)

	// SetAbsolute sets a target's amount outright, with the same cap and
	// rollback semantics as Change. Setting the current value is accepted
	// without issuing a write.
	SetAbsolute(ctx context.Context, userID, targetID string, amountCents int64) (*BudgetView, error)

	// Subscribe registers fn for a user's confirm/rollback events and
	// returns a cancel func. Events fire after the asynchronous persist
	// resolves, never during the mutating call.
	Subscribe(userID string, fn func(domain.Event)) (cancel func(), err error)

	// CloseUser drops one user's ledger (logout). Pending persists for
	// that user are abandoned; the store remains authoritative.
	CloseUser(userID string)

	// Close drops all ledgers.
	Close()
}

// BudgetView is the optimistic budget snapshot returned to clients. It is
// a DTO used by the HTTP layer and carries no domain behaviour.
type BudgetView struct {
	TotalCents     int64 `json:"total_cents"`
	AllocatedCents int64 `json:"allocated_cents"`
	AvailableCents int64 `json:"available_cents"`
}
