package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pledge-ledger/internal/core/domain"
)

// AllocationStore implements port.AllocationStore using pgxpool for
// PostgreSQL. The budget row is the per-user serialization point: every
// write locks it FOR UPDATE and re-checks the cap inside the transaction,
// so a stale client can never push allocated_cents past total_cents.
type AllocationStore struct {
	pool *pgxpool.Pool
}

// NewAllocationStore returns a new store instance.
func NewAllocationStore(pool *pgxpool.Pool) *AllocationStore {
	return &AllocationStore{pool: pool}
}

// FetchBudget returns the user's budget row.
func (s *AllocationStore) FetchBudget(ctx context.Context, userID string) (*domain.Budget, error) {
	var b domain.Budget
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, total_cents, allocated_cents, created_at, updated_at FROM budgets WHERE user_id = $1`,
		userID).Scan(&b.UserID, &b.TotalCents, &b.AllocatedCents, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: budget for user %s", domain.ErrNotFound, userID)
	}
	if err != nil {
		return nil, classify(err)
	}
	return &b, nil
}

// FetchAllocations returns all non-zero allocations for a user keyed by
// target id.
func (s *AllocationStore) FetchAllocations(ctx context.Context, userID string) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT target_id, amount_cents FROM allocations WHERE user_id = $1 AND amount_cents > 0`, userID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			target string
			amount int64
		)
		if err = rows.Scan(&target, &amount); err != nil {
			return nil, classify(err)
		}
		out[target] = amount
	}
	if err = rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// PersistAllocation durably sets one allocation and maintains the
// budget's allocated sum in the same transaction. Zero deletes the row.
func (s *AllocationStore) PersistAllocation(ctx context.Context, userID, targetID string, amountCents int64) (err error) {
	if amountCents < 0 {
		return fmt.Errorf("negative amount %d for target %s", amountCents, targetID)
	}
	var tx pgx.Tx
	tx, err = s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return classify(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = classify(tx.Commit(ctx))
		}
	}()

	// lock the budget row
	var total, allocated int64
	err = tx.QueryRow(ctx,
		`SELECT total_cents, allocated_cents FROM budgets WHERE user_id = $1 FOR UPDATE`,
		userID).Scan(&total, &allocated)
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("%w: budget for user %s", domain.ErrNotFound, userID)
		return err
	}
	if err != nil {
		err = classify(err)
		return err
	}

	var current int64
	err = tx.QueryRow(ctx,
		`SELECT amount_cents FROM allocations WHERE user_id = $1 AND target_id = $2`,
		userID, targetID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		current, err = 0, nil
	}
	if err != nil {
		err = classify(err)
		return err
	}

	newAllocated := allocated - current + amountCents
	if newAllocated > total {
		err = fmt.Errorf("%w: allocating %d of %d", domain.ErrInsufficientBudget, newAllocated, total)
		return err
	}

	if amountCents == 0 {
		_, err = tx.Exec(ctx,
			`DELETE FROM allocations WHERE user_id = $1 AND target_id = $2`, userID, targetID)
	} else {
		_, err = tx.Exec(ctx,
			`INSERT INTO allocations (user_id, target_id, amount_cents, created_at, updated_at)
			 VALUES ($1, $2, $3, now(), now())
			 ON CONFLICT (user_id, target_id)
			 DO UPDATE SET amount_cents = EXCLUDED.amount_cents, updated_at = now()`,
			userID, targetID, amountCents)
	}
	if err != nil {
		err = classify(err)
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE budgets SET allocated_cents = $1, updated_at = now() WHERE user_id = $2`,
		newAllocated, userID)
	if err != nil {
		err = classify(err)
	}
	return err
}

// classify maps driver failures into the domain taxonomy. Serialization
// conflicts, deadlocks and connection-class failures are transient and
// safe for the caller to resubmit; anything else passes through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001" || pgErr.Code == "40P01": // serialization failure, deadlock
			return fmt.Errorf("%w: %v", domain.ErrTransient, err)
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08": // connection exceptions
			return fmt.Errorf("%w: %v", domain.ErrTransient, err)
		}
	}
	return err
}
