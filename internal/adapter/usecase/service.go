package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pledge-ledger/internal/core/domain"
	"pledge-ledger/internal/core/port"
)

// LedgerService implements port.LedgerUseCase over a registry of per-user
// ledgers. Ledgers are built lazily from the store on first touch and
// dropped on logout; each ledger owns its user's state exclusively, so
// operations on different users never contend.
type LedgerService struct {
	store   port.AllocationStore
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	ledgers map[string]*Ledger
	subs    map[string]map[int]func(domain.Event)
	nextSub int
	closed  bool
}

// NewLedgerService creates the registry. persistTimeout <= 0 falls back
// to DefaultPersistTimeout.
func NewLedgerService(store port.AllocationStore, logger *slog.Logger, persistTimeout time.Duration) *LedgerService {
	return &LedgerService{
		store:   store,
		logger:  logger,
		timeout: persistTimeout,
		ledgers: make(map[string]*Ledger),
		subs:    make(map[string]map[int]func(domain.Event)),
	}
}

// GetBudget returns the optimistic budget view for a user.
func (s *LedgerService) GetBudget(ctx context.Context, userID string) (*port.BudgetView, error) {
	l, err := s.ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := l.View()
	return &view, nil
}

// GetAllocation returns the optimistic amount for one target.
func (s *LedgerService) GetAllocation(ctx context.Context, userID, targetID string) (int64, error) {
	l, err := s.ledger(ctx, userID)
	if err != nil {
		return 0, err
	}
	return l.GetAllocation(targetID), nil
}

// ListAllocations returns the optimistic view of all non-zero allocations.
func (s *LedgerService) ListAllocations(ctx context.Context, userID string) (map[string]int64, error) {
	l, err := s.ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	return l.Allocations(), nil
}

// Change applies a signed delta to one target's allocation.
func (s *LedgerService) Change(ctx context.Context, userID, targetID string, deltaCents int64) (*port.BudgetView, error) {
	l, err := s.ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	view, err := l.Change(targetID, deltaCents)
	if err != nil {
		return &view, err
	}
	return &view, nil
}

// SetAbsolute sets one target's allocation outright.
func (s *LedgerService) SetAbsolute(ctx context.Context, userID, targetID string, amountCents int64) (*port.BudgetView, error) {
	l, err := s.ledger(ctx, userID)
	if err != nil {
		return nil, err
	}
	view, err := l.SetAbsolute(targetID, amountCents)
	if err != nil {
		return &view, err
	}
	return &view, nil
}

// Subscribe registers fn for a user's confirm/rollback events. The
// returned cancel func removes the subscription; it is safe to call more
// than once.
func (s *LedgerService) Subscribe(userID string, fn func(domain.Event)) (func(), error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("ledger service closed")
	}
	id := s.nextSub
	s.nextSub++
	if s.subs[userID] == nil {
		s.subs[userID] = make(map[int]func(domain.Event))
	}
	s.subs[userID][id] = fn
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if m, ok := s.subs[userID]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(s.subs, userID)
			}
		}
	}
	return cancel, nil
}

// HandleNotification routes an external store change into the owning
// ledger. Users without a loaded ledger are skipped: the store is the
// source of truth and their next load fetches fresh state. An empty
// target id carries a budget-total change.
func (s *LedgerService) HandleNotification(n port.ChangeNotification) {
	s.mu.Lock()
	l, ok := s.ledgers[n.UserID]
	s.mu.Unlock()
	if !ok {
		return
	}
	if n.TargetID == "" {
		l.ReconcileBudget(n.AmountCents)
		return
	}
	l.ReconcileFromServer(n.TargetID, n.AmountCents)
}

// RunSubscriber attaches the registry to the store's optional push
// channel until ctx is cancelled. The service is fully functional when
// this is never called or the channel fails.
func (s *LedgerService) RunSubscriber(ctx context.Context) error {
	return s.store.SubscribeToChanges(ctx, s.HandleNotification)
}

// CloseUser drops one user's ledger and subscriptions (logout).
func (s *LedgerService) CloseUser(userID string) {
	s.mu.Lock()
	l, ok := s.ledgers[userID]
	delete(s.ledgers, userID)
	delete(s.subs, userID)
	s.mu.Unlock()
	if ok {
		l.Close()
	}
}

// Close drops every ledger.
func (s *LedgerService) Close() {
	s.mu.Lock()
	ledgers := s.ledgers
	s.ledgers = make(map[string]*Ledger)
	s.subs = make(map[string]map[int]func(domain.Event))
	s.closed = true
	s.mu.Unlock()
	for _, l := range ledgers {
		l.Close()
	}
}

// ledger returns the user's ledger, building it from the store on first
// touch. Construction happens outside the registry lock so one user's
// slow load does not stall others; the rare duplicate build loses the
// race and is discarded.
func (s *LedgerService) ledger(ctx context.Context, userID string) (*Ledger, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("ledger service closed")
	}
	if l, ok := s.ledgers[userID]; ok {
		s.mu.Unlock()
		return l, nil
	}
	s.mu.Unlock()

	l, err := NewLedger(ctx, userID, s.store, s.logger, s.timeout, func(ev domain.Event) {
		s.dispatch(ev)
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.ledgers[userID]; ok {
		l.Close()
		return existing, nil
	}
	if s.closed {
		l.Close()
		return nil, fmt.Errorf("ledger service closed")
	}
	s.ledgers[userID] = l
	return l, nil
}

// dispatch fans an event out to the user's subscribers. Callbacks run
// outside the registry lock.
func (s *LedgerService) dispatch(ev domain.Event) {
	s.mu.Lock()
	fns := make([]func(domain.Event), 0, len(s.subs[ev.UserID]))
	for _, fn := range s.subs[ev.UserID] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
