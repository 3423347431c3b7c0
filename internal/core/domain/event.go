package domain

// EventKind distinguishes ledger notifications delivered after an
// asynchronous persist resolves.
type EventKind string

const (
	// EventConfirmed reports that an optimistic amount became the new
	// confirmed baseline.
	EventConfirmed EventKind = "confirmed"
	// EventRolledBack reports that an optimistic change was reverted and
	// carries the restored amount plus the classified error.
	EventRolledBack EventKind = "rolled_back"
)

// Event is delivered on the ledger's callback surface and drives UI
// re-render and error toasts downstream.
type Event struct {
	Kind        EventKind
	UserID      string
	TargetID    string
	AmountCents int64
	Err         error
}
