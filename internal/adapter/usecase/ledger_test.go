package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pledge-ledger/internal/core/domain"
	"pledge-ledger/internal/core/port"
)

// fakeStore is a hand-written AllocationStore for ledger tests. The
// mockery mock cannot park a persist call mid-flight, which several
// properties here need: when gated is true every PersistAllocation
// announces itself on started and then blocks until it reads an error
// (nil for success) from proceed.
type fakeStore struct {
	mu     sync.Mutex
	total  int64
	allocs map[string]int64
	calls  []persistCall

	gated   bool
	started chan persistCall
	proceed chan error

	failNext error // returned by the next ungated persist

	waitCtx bool // block on ctx instead of proceed, to exercise timeouts
}

type persistCall struct {
	targetID string
	amount   int64
}

func newFakeStore(total int64, allocs map[string]int64) *fakeStore {
	if allocs == nil {
		allocs = map[string]int64{}
	}
	return &fakeStore{
		total:   total,
		allocs:  allocs,
		started: make(chan persistCall, 8),
		proceed: make(chan error, 8),
	}
}

func (s *fakeStore) FetchBudget(_ context.Context, userID string) (*domain.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, v := range s.allocs {
		sum += v
	}
	return &domain.Budget{UserID: userID, TotalCents: s.total, AllocatedCents: sum}, nil
}

func (s *fakeStore) FetchAllocations(context.Context, string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.allocs))
	for k, v := range s.allocs {
		out[k] = v
	}
	return out, nil
}

func (s *fakeStore) PersistAllocation(ctx context.Context, _, targetID string, amountCents int64) error {
	call := persistCall{targetID: targetID, amount: amountCents}
	s.mu.Lock()
	s.calls = append(s.calls, call)
	gated, waitCtx, failNext := s.gated, s.waitCtx, s.failNext
	s.failNext = nil
	s.mu.Unlock()

	if waitCtx {
		<-ctx.Done()
		return ctx.Err()
	}
	if gated {
		s.started <- call
		if err := <-s.proceed; err != nil {
			return err
		}
	} else if failNext != nil {
		return failNext
	}
	s.mu.Lock()
	if amountCents == 0 {
		delete(s.allocs, targetID)
	} else {
		s.allocs[targetID] = amountCents
	}
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) SubscribeToChanges(ctx context.Context, _ func(port.ChangeNotification)) error {
	<-ctx.Done()
	return ctx.Err()
}

func (s *fakeStore) persists() []persistCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]persistCall(nil), s.calls...)
}

func newTestLedger(t *testing.T, store *fakeStore, timeout time.Duration) (*Ledger, chan domain.Event) {
	t.Helper()
	events := make(chan domain.Event, 16)
	l, err := NewLedger(context.Background(), "u1", store, nil, timeout, func(ev domain.Event) {
		events <- ev
	})
	require.NoError(t, err)
	return l, events
}

func waitEvent(t *testing.T, events chan domain.Event, kind domain.EventKind) domain.Event {
	t.Helper()
	select {
	case ev := <-events:
		require.Equal(t, kind, ev.Kind)
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s event", kind)
		return domain.Event{}
	}
}

// TestBudgetCapWalkthrough runs the canonical sequence: a 1000-cent
// budget, a 600 allocation, a rejected 500, a 200 decrease, then the 500
// fits.
func TestBudgetCapWalkthrough(t *testing.T) {
	store := newFakeStore(1000, nil)
	l, events := newTestLedger(t, store, 0)

	view, err := l.Change("pageA", 600)
	require.NoError(t, err)
	require.Equal(t, int64(600), l.GetAllocation("pageA"))
	require.Equal(t, int64(400), view.AvailableCents)
	waitEvent(t, events, domain.EventConfirmed)

	_, err = l.Change("pageB", 500)
	require.ErrorIs(t, err, domain.ErrInsufficientBudget)
	require.Equal(t, int64(400), l.GetAvailable())

	_, err = l.Change("pageA", -200)
	require.NoError(t, err)
	require.Equal(t, int64(400), l.GetAllocation("pageA"))
	require.Equal(t, int64(600), l.GetAvailable())
	waitEvent(t, events, domain.EventConfirmed)

	_, err = l.Change("pageB", 500)
	require.NoError(t, err)
	require.Equal(t, int64(100), l.GetAvailable())
	waitEvent(t, events, domain.EventConfirmed)

	require.Equal(t, []persistCall{
		{"pageA", 600},
		{"pageA", 400},
		{"pageB", 500},
	}, store.persists())
}

// TestRejectionPurity checks that an over-budget change leaves zero
// observable state change and issues zero store writes, even while
// another target's write is in flight.
func TestRejectionPurity(t *testing.T) {
	store := newFakeStore(1000, nil)
	store.gated = true
	l, events := newTestLedger(t, store, 0)

	_, err := l.Change("pageA", 600)
	require.NoError(t, err)
	<-store.started

	before := l.View()
	_, err = l.Change("pageB", 500)
	require.ErrorIs(t, err, domain.ErrInsufficientBudget)
	require.Equal(t, before, l.View())
	require.Equal(t, int64(0), l.GetAllocation("pageB"))
	require.Len(t, store.persists(), 1)

	store.proceed <- nil
	waitEvent(t, events, domain.EventConfirmed)
}

// TestRollbackRestoresSnapshot checks that a failed persist reverts both
// the target amount and availability to their pre-call values before the
// error surfaces.
func TestRollbackRestoresSnapshot(t *testing.T) {
	store := newFakeStore(1000, map[string]int64{"pageA": 200})
	store.failNext = domain.ErrNotFound
	l, events := newTestLedger(t, store, 0)

	require.Equal(t, int64(800), l.GetAvailable())
	_, err := l.Change("pageA", 300)
	require.NoError(t, err)
	require.Equal(t, int64(500), l.GetAllocation("pageA"))

	ev := waitEvent(t, events, domain.EventRolledBack)
	require.ErrorIs(t, ev.Err, domain.ErrNotFound)
	require.Equal(t, int64(200), ev.AmountCents)
	require.Equal(t, int64(200), l.GetAllocation("pageA"))
	require.Equal(t, int64(800), l.GetAvailable())
}

// TestPersistTimeoutRollsBack checks that a write that never resolves is
// classified transient and rolled back within the configured bound.
func TestPersistTimeoutRollsBack(t *testing.T) {
	store := newFakeStore(1000, nil)
	store.waitCtx = true
	l, events := newTestLedger(t, store, 50*time.Millisecond)

	_, err := l.Change("pageA", 600)
	require.NoError(t, err)

	ev := waitEvent(t, events, domain.EventRolledBack)
	require.ErrorIs(t, ev.Err, domain.ErrTransient)
	require.Equal(t, int64(0), l.GetAllocation("pageA"))
	require.Equal(t, int64(1000), l.GetAvailable())
}

// TestCoalescing parks the first write mid-flight, submits two more rapid
// changes, and expects exactly one follow-up write carrying the final
// cumulative amount.
func TestCoalescing(t *testing.T) {
	store := newFakeStore(1000, nil)
	store.gated = true
	l, events := newTestLedger(t, store, 0)

	_, err := l.Change("pageA", 600)
	require.NoError(t, err)
	first := <-store.started
	require.Equal(t, int64(600), first.amount)

	_, err = l.Change("pageA", 100)
	require.NoError(t, err)
	_, err = l.Change("pageA", 100)
	require.NoError(t, err)
	require.Equal(t, int64(800), l.GetAllocation("pageA"))

	store.proceed <- nil
	second := <-store.started
	require.Equal(t, int64(800), second.amount)
	store.proceed <- nil

	ev := waitEvent(t, events, domain.EventConfirmed)
	require.Equal(t, int64(800), ev.AmountCents)
	require.Len(t, store.persists(), 2)
}

// TestCoalescedRollback checks that a coalesced op that ultimately fails
// reverts the whole batch to the snapshot taken when the op was created.
func TestCoalescedRollback(t *testing.T) {
	store := newFakeStore(1000, map[string]int64{"pageA": 100})
	store.gated = true
	l, events := newTestLedger(t, store, 0)

	_, err := l.Change("pageA", 400)
	require.NoError(t, err)
	<-store.started
	_, err = l.Change("pageA", 200)
	require.NoError(t, err)
	require.Equal(t, int64(700), l.GetAllocation("pageA"))

	store.proceed <- nil // first write succeeds, follow-up dispatches
	<-store.started
	store.proceed <- domain.ErrTransient

	ev := waitEvent(t, events, domain.EventRolledBack)
	require.ErrorIs(t, ev.Err, domain.ErrTransient)
	require.Equal(t, int64(100), l.GetAllocation("pageA"))
	require.Equal(t, int64(900), l.GetAvailable())
}

// TestSetAbsoluteIdempotent checks that a repeated identical set is
// accepted without a second write.
func TestSetAbsoluteIdempotent(t *testing.T) {
	store := newFakeStore(1000, nil)
	l, events := newTestLedger(t, store, 0)

	_, err := l.SetAbsolute("pageA", 500)
	require.NoError(t, err)
	waitEvent(t, events, domain.EventConfirmed)

	view, err := l.SetAbsolute("pageA", 500)
	require.NoError(t, err)
	require.Equal(t, int64(500), view.AllocatedCents)
	require.Len(t, store.persists(), 1)
}

// TestDecreaseClampsAtZero checks that decreasing past zero behaves like
// setting zero and deletes the durable row.
func TestDecreaseClampsAtZero(t *testing.T) {
	store := newFakeStore(1000, map[string]int64{"pageA": 300})
	l, events := newTestLedger(t, store, 0)

	_, err := l.Change("pageA", -500)
	require.NoError(t, err)
	require.Equal(t, int64(0), l.GetAllocation("pageA"))
	require.Equal(t, int64(1000), l.GetAvailable())

	waitEvent(t, events, domain.EventConfirmed)
	require.Equal(t, []persistCall{{"pageA", 0}}, store.persists())
	require.Empty(t, l.Allocations())
}

// TestValidation covers the synchronous caller-mistake errors.
func TestValidation(t *testing.T) {
	store := newFakeStore(1000, nil)
	l, _ := newTestLedger(t, store, 0)

	_, err := l.Change("pageA", 0)
	require.ErrorIs(t, err, ErrZeroDelta)
	_, err = l.SetAbsolute("pageA", -5)
	require.ErrorIs(t, err, ErrNegativeAmount)
	require.Empty(t, store.persists())
}

// TestReconcileWithoutPending replaces the baseline outright for both
// allocations and the budget total.
func TestReconcileWithoutPending(t *testing.T) {
	store := newFakeStore(1000, nil)
	l, _ := newTestLedger(t, store, 0)

	l.ReconcileFromServer("pageA", 250)
	require.Equal(t, int64(250), l.GetAllocation("pageA"))
	require.Equal(t, int64(750), l.GetAvailable())

	l.ReconcileBudget(2000)
	require.Equal(t, int64(1750), l.GetAvailable())

	l.ReconcileFromServer("pageA", 0)
	require.Equal(t, int64(0), l.GetAllocation("pageA"))
	require.Equal(t, int64(2000), l.GetAvailable())
}

// TestReconcileBufferedDuringPending parks a write, delivers a server
// value for the same target, and expects the buffered value to become
// the baseline only after the op resolves.
func TestReconcileBufferedDuringPending(t *testing.T) {
	store := newFakeStore(1000, nil)
	store.gated = true
	l, events := newTestLedger(t, store, 0)

	_, err := l.Change("pageA", 600)
	require.NoError(t, err)
	<-store.started

	l.ReconcileFromServer("pageA", 100)
	require.Equal(t, int64(600), l.GetAllocation("pageA"))

	store.proceed <- nil
	ev := waitEvent(t, events, domain.EventConfirmed)
	require.Equal(t, int64(600), ev.AmountCents)
	require.Equal(t, int64(100), l.GetAllocation("pageA"))
	require.Equal(t, int64(900), l.GetAvailable())
}

// TestAllocatedNeverExceedsTotal hammers the cap with mixed accepted and
// rejected changes across targets.
func TestAllocatedNeverExceedsTotal(t *testing.T) {
	store := newFakeStore(500, nil)
	l, events := newTestLedger(t, store, 0)

	targets := []string{"a", "b", "c", "d"}
	for i := 0; i < 40; i++ {
		delta := int64(150)
		if i%3 == 2 {
			delta = -100
		}
		if _, err := l.Change(targets[i%len(targets)], delta); err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientBudget)
		}
		view := l.View()
		require.LessOrEqual(t, view.AllocatedCents, view.TotalCents)
		require.GreaterOrEqual(t, view.AllocatedCents, int64(0))
	}
	// drain confirmations; coalesced ops confirm fewer times than the
	// accepted-change count
	for draining := true; draining; {
		select {
		case <-events:
		case <-time.After(200 * time.Millisecond):
			draining = false
		}
	}
	var sum int64
	for _, amount := range l.Allocations() {
		require.Greater(t, amount, int64(0))
		sum += amount
	}
	require.LessOrEqual(t, sum, int64(500))
}

// TestCloseAbandonsPending closes the ledger while a write is parked and
// expects the worker to exit without resolving the op.
func TestCloseAbandonsPending(t *testing.T) {
	store := newFakeStore(1000, nil)
	store.gated = true
	l, events := newTestLedger(t, store, 0)

	_, err := l.Change("pageA", 600)
	require.NoError(t, err)
	<-store.started
	l.Close()
	store.proceed <- nil

	select {
	case ev := <-events:
		t.Fatalf("unexpected event after close: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFetchBudgetErrorPropagates(t *testing.T) {
	store := newFakeStore(1000, nil)
	_, err := NewLedger(context.Background(), "u1", failingBudgetStore{store}, nil, 0, nil)
	require.ErrorIs(t, err, domain.ErrTransient)
}

type failingBudgetStore struct{ *fakeStore }

func (failingBudgetStore) FetchBudget(context.Context, string) (*domain.Budget, error) {
	return nil, domain.ErrTransient
}
