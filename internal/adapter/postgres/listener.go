package postgres

import (
	"context"
	"encoding/json"
	"time"

	"pledge-ledger/internal/core/port"
)

// changeChannel is the NOTIFY channel the schema triggers publish on. The
// payload is a JSON document with user_id, target_id and amount_cents;
// budget-total changes carry an empty target_id.
const changeChannel = "allocation_changes"

// notifyPayload mirrors the JSON emitted by the allocations and budgets
// triggers.
type notifyPayload struct {
	UserID      string `json:"user_id"`
	TargetID    string `json:"target_id"`
	AmountCents int64  `json:"amount_cents"`
}

// SubscribeToChanges listens on the NOTIFY channel and invokes fn for
// each change until ctx is cancelled. A broken connection is reacquired
// with backoff; notifications sent while disconnected are lost, which is
// acceptable because the subscription is a best-effort hint layered over
// write-through confirmation.
func (s *AllocationStore) SubscribeToChanges(ctx context.Context, fn func(port.ChangeNotification)) error {
	const retryDelay = 3 * time.Second
	for {
		if err := s.listenOnce(ctx, fn); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

// listenOnce holds one dedicated connection on LISTEN until it fails.
func (s *AllocationStore) listenOnce(ctx context.Context, fn func(port.ChangeNotification)) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err = conn.Exec(ctx, "LISTEN "+changeChannel); err != nil {
		return err
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var p notifyPayload
		if err = json.Unmarshal([]byte(n.Payload), &p); err != nil {
			// malformed payload, skip
			continue
		}
		fn(port.ChangeNotification{
			UserID:      p.UserID,
			TargetID:    p.TargetID,
			AmountCents: p.AmountCents,
		})
	}
}
