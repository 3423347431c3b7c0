package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"pledge-ledger/internal/core/domain"
	"pledge-ledger/internal/core/port"
)

// Validation errors returned synchronously by the mutating calls. These
// are caller mistakes, distinct from the domain taxonomy.
var (
	ErrZeroDelta      = errors.New("delta must be nonzero")
	ErrNegativeAmount = errors.New("amount must not be negative")
)

// DefaultPersistTimeout bounds a single PersistAllocation round trip. A
// write that has not resolved by then is rolled back; the ledger never
// holds a pending operation indefinitely.
const DefaultPersistTimeout = 10 * time.Second

// pendingOp tracks one in-flight optimistic change for a target. At most
// one exists per target; rapid successive intents coalesce into it by
// replacing desired, so the last submitted amount is the one that
// ultimately persists.
type pendingOp struct {
	requestID  string
	previous   int64  // confirmed amount when the op was created; rollback snapshot
	desired    int64  // latest optimistic amount
	dispatched int64  // amount currently on the wire
	buffered   *int64 // server-reported value parked until the op resolves
}

// Ledger maintains one user's budget and allocation set: a cache over the
// durable store with optimistic writes. The getters and the optimistic
// part of the mutating calls are synchronous and never touch the network;
// persistence runs in per-target goroutines and reports back through the
// notify callback.
type Ledger struct {
	userID  string
	store   port.AllocationStore
	logger  *slog.Logger
	timeout time.Duration
	notify  func(domain.Event)

	mu        sync.Mutex
	total     int64
	allocated int64 // optimistic sum of all amounts, pending deltas included
	confirmed map[string]int64
	pending   map[string]*pendingOp
	closed    bool
}

// NewLedger loads a user's budget and allocations from the store and
// returns a ready ledger. notify may be nil when the caller has no use
// for confirm/rollback events.
func NewLedger(ctx context.Context, userID string, store port.AllocationStore, logger *slog.Logger, timeout time.Duration, notify func(domain.Event)) (*Ledger, error) {
	budget, err := store.FetchBudget(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch budget: %w", err)
	}
	allocs, err := store.FetchAllocations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch allocations: %w", err)
	}
	if timeout <= 0 {
		timeout = DefaultPersistTimeout
	}
	if notify == nil {
		notify = func(domain.Event) {}
	}
	var sum int64
	confirmed := make(map[string]int64, len(allocs))
	for target, amount := range allocs {
		if amount <= 0 {
			continue
		}
		confirmed[target] = amount
		sum += amount
	}
	if sum != budget.AllocatedCents && logger != nil {
		// the store's mirrored sum drifted from the rows; the rows win
		logger.Warn("allocated sum drift",
			slog.String("user_id", userID),
			slog.Int64("budget_allocated", budget.AllocatedCents),
			slog.Int64("computed", sum))
	}
	return &Ledger{
		userID:    userID,
		store:     store,
		logger:    logger,
		timeout:   timeout,
		notify:    notify,
		total:     budget.TotalCents,
		allocated: sum,
		confirmed: confirmed,
		pending:   make(map[string]*pendingOp),
	}, nil
}

// GetAllocation returns the optimistic amount for a target: the pending
// value if a change is in flight, else the confirmed value, else 0.
func (l *Ledger) GetAllocation(targetID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentLocked(targetID)
}

// GetAvailable returns the unallocated remainder under the optimistic
// view, clamped at zero.
func (l *Ledger) GetAvailable() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.allocated >= l.total {
		return 0
	}
	return l.total - l.allocated
}

// View returns the optimistic budget snapshot.
func (l *Ledger) View() port.BudgetView {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.viewLocked()
}

// Allocations returns the optimistic view of every non-zero allocation.
func (l *Ledger) Allocations() map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int64, len(l.confirmed)+len(l.pending))
	for target, amount := range l.confirmed {
		out[target] = amount
	}
	for target, p := range l.pending {
		if p.desired == 0 {
			delete(out, target)
			continue
		}
		out[target] = p.desired
	}
	return out
}

// Change applies a signed delta to one target. The proposed amount clamps
// at zero, so decreasing past zero behaves like setting zero. An accepted
// change mutates the optimistic state before returning and persists
// asynchronously; an over-budget change returns
// domain.ErrInsufficientBudget with zero state change and zero store
// calls.
func (l *Ledger) Change(targetID string, deltaCents int64) (port.BudgetView, error) {
	if deltaCents == 0 {
		return l.View(), ErrZeroDelta
	}
	return l.propose(targetID, func(current int64) int64 {
		proposed := current + deltaCents
		if proposed < 0 {
			proposed = 0
		}
		return proposed
	})
}

// SetAbsolute sets a target's amount outright. Setting the value the
// target already has is accepted without issuing a write, which makes
// back-to-back identical sets idempotent.
func (l *Ledger) SetAbsolute(targetID string, amountCents int64) (port.BudgetView, error) {
	if amountCents < 0 {
		return l.View(), ErrNegativeAmount
	}
	return l.propose(targetID, func(int64) int64 { return amountCents })
}

// propose runs the cap check and, when it passes, applies the optimistic
// mutation and schedules persistence. next maps the current optimistic
// amount to the proposed one.
func (l *Ledger) propose(targetID string, next func(current int64) int64) (port.BudgetView, error) {
	l.mu.Lock()
	current := l.currentLocked(targetID)
	proposed := next(current)
	if proposed == current {
		view := l.viewLocked()
		l.mu.Unlock()
		return view, nil
	}
	proposedTotal := l.allocated - current + proposed
	if proposedTotal > l.total {
		view := l.viewLocked()
		l.mu.Unlock()
		return view, fmt.Errorf("%w: allocating %d of %d", domain.ErrInsufficientBudget, proposedTotal, l.total)
	}

	l.allocated = proposedTotal
	if p, ok := l.pending[targetID]; ok {
		// Coalesce: the in-flight op adopts the new amount. One write
		// goes out for the latest value; if the previous amount is
		// already on the wire the worker issues a single follow-up.
		p.desired = proposed
	} else {
		p := &pendingOp{
			requestID: uuid.NewString(),
			previous:  l.confirmed[targetID],
			desired:   proposed,
		}
		l.pending[targetID] = p
		go l.runPersist(targetID, p)
	}
	view := l.viewLocked()
	l.mu.Unlock()
	return view, nil
}

// runPersist is the per-target worker: it writes the latest desired
// amount, re-dispatching when the op was coalesced mid-flight, and
// resolves the op with a confirm or a rollback. Exactly one worker runs
// per pending op.
func (l *Ledger) runPersist(targetID string, p *pendingOp) {
	for {
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			return
		}
		p.dispatched = p.desired
		amount := p.dispatched
		l.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		err := l.store.PersistAllocation(ctx, l.userID, targetID, amount)
		cancel()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: persist timed out after %s", domain.ErrTransient, l.timeout)
		}

		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			return
		}
		if err != nil {
			l.rollbackLocked(targetID, p, err)
			return
		}
		if p.desired != p.dispatched {
			l.mu.Unlock()
			continue
		}
		l.confirmLocked(targetID, p)
		return
	}
}

// confirmLocked promotes the persisted amount to the confirmed baseline
// and resolves the op. Called with l.mu held; unlocks it.
func (l *Ledger) confirmLocked(targetID string, p *pendingOp) {
	amount := p.dispatched
	if amount == 0 {
		delete(l.confirmed, targetID)
	} else {
		l.confirmed[targetID] = amount
	}
	delete(l.pending, targetID)
	if p.buffered != nil {
		l.applyServerLocked(targetID, *p.buffered)
	}
	l.mu.Unlock()
	l.notify(domain.Event{
		Kind:        domain.EventConfirmed,
		UserID:      l.userID,
		TargetID:    targetID,
		AmountCents: amount,
	})
}

// rollbackLocked restores the pre-operation snapshot and resolves the op
// with the classified error. Called with l.mu held; unlocks it.
func (l *Ledger) rollbackLocked(targetID string, p *pendingOp, err error) {
	l.allocated += p.previous - p.desired
	delete(l.pending, targetID)
	if p.buffered != nil {
		l.applyServerLocked(targetID, *p.buffered)
	}
	restored := l.confirmed[targetID]
	l.mu.Unlock()
	if l.logger != nil {
		l.logger.Warn("allocation rolled back",
			slog.String("user_id", l.userID),
			slog.String("target_id", targetID),
			slog.String("request_id", p.requestID),
			slog.Any("error", err))
	}
	l.notify(domain.Event{
		Kind:        domain.EventRolledBack,
		UserID:      l.userID,
		TargetID:    targetID,
		AmountCents: restored,
		Err:         err,
	})
}

// ReconcileFromServer applies an externally observed amount for a target.
// With no pending op the baseline is replaced outright. With one in
// flight the value is buffered and applied after the op resolves, so a
// push never clobbers an optimistic update — last resolved wins, no
// merging.
func (l *Ledger) ReconcileFromServer(targetID string, serverCents int64) {
	if serverCents < 0 {
		serverCents = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.pending[targetID]; ok {
		v := serverCents
		p.buffered = &v
		return
	}
	l.applyServerLocked(targetID, serverCents)
}

// ReconcileBudget applies an externally observed budget total. The total
// is read-only from the ledger's perspective; this is the only way it
// changes.
func (l *Ledger) ReconcileBudget(totalCents int64) {
	if totalCents < 0 {
		totalCents = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total = totalCents
}

// applyServerLocked replaces one target's confirmed baseline and keeps
// the allocated sum consistent. Caller holds l.mu.
func (l *Ledger) applyServerLocked(targetID string, serverCents int64) {
	l.allocated += serverCents - l.confirmed[targetID]
	if l.allocated < 0 {
		l.allocated = 0
	}
	if serverCents == 0 {
		delete(l.confirmed, targetID)
	} else {
		l.confirmed[targetID] = serverCents
	}
}

// Close abandons pending persists. Workers observing the flag exit
// without resolving their ops; the store remains authoritative.
func (l *Ledger) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

func (l *Ledger) currentLocked(targetID string) int64 {
	if p, ok := l.pending[targetID]; ok {
		return p.desired
	}
	return l.confirmed[targetID]
}

func (l *Ledger) viewLocked() port.BudgetView {
	available := l.total - l.allocated
	if available < 0 {
		available = 0
	}
	return port.BudgetView{
		TotalCents:     l.total,
		AllocatedCents: l.allocated,
		AvailableCents: available,
	}
}
