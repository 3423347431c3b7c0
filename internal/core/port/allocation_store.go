package port

import (
	"context"

	"pledge-ledger/internal/core/domain"
)

// ChangeNotification is pushed by the store's optional subscription
// channel when allocation or budget state changes outside the local
// ledger (another device, a subscription renewal, an admin adjustment).
type ChangeNotification struct {
	UserID      string
	TargetID    string // empty for budget-total changes
	AmountCents int64
}

// AllocationStore is the outbound port to the durable store. It is the
// single source of truth for confirmed state; the ledger's local state is
// a cache over it. Implementations must enforce the budget cap atomically
// so a stale writer can never push the stored allocated sum past the
// total.
type AllocationStore interface {
	// FetchBudget returns the user's budget row. A user without one gets
	// domain.ErrNotFound.
	FetchBudget(ctx context.Context, userID string) (*domain.Budget, error)

	// FetchAllocations returns all non-zero allocations for a user keyed
	// by target id. A user with none returns an empty map.
	FetchAllocations(ctx context.Context, userID string) (map[string]int64, error)

	// PersistAllocation durably sets the amount for one (user, target)
	// pair and maintains the budget's allocated sum in the same
	// transaction. Setting zero deletes the row. Failures are classified
	// into the domain error taxonomy.
	PersistAllocation(ctx context.Context, userID, targetID string, amountCents int64) error

	// SubscribeToChanges invokes fn for externally observed changes until
	// ctx is cancelled. The channel is best-effort: ledger correctness
	// must not depend on it being available.
	SubscribeToChanges(ctx context.Context, fn func(ChangeNotification)) error
}
