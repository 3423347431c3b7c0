package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo budgets and allocations for local runs. Each demo
// user gets a monthly budget with roughly half of it spread across a few
// shared pages, always under the cap.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	pages := make([]string, 20)
	for i := range pages {
		pages[i] = uuid.NewString()
	}

	for i := 1; i <= 10; i++ {
		userID := fmt.Sprintf("user-%d", i)
		totalCents := int64(1000 + r.Intn(10)*500)
		_, err := db.Exec(ctx, `INSERT INTO budgets (user_id, total_cents, allocated_cents, created_at, updated_at)
VALUES ($1, $2, 0, now(), now()) ON CONFLICT DO NOTHING`, userID, totalCents)
		if err != nil {
			return err
		}

		remaining := totalCents / 2
		var allocated int64
		for j := 0; j < 3 && remaining > 0; j++ {
			amount := int64(r.Intn(int(remaining)) + 1)
			remaining -= amount
			target := pages[r.Intn(len(pages))]
			_, err = db.Exec(ctx, `INSERT INTO allocations (user_id, target_id, amount_cents, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (user_id, target_id)
DO UPDATE SET amount_cents = allocations.amount_cents + EXCLUDED.amount_cents, updated_at = now()`,
				userID, target, amount)
			if err != nil {
				return err
			}
			allocated += amount
		}
		_, err = db.Exec(ctx, `UPDATE budgets SET allocated_cents = $1, updated_at = now() WHERE user_id = $2`,
			allocated, userID)
		if err != nil {
			return err
		}
	}
	return nil
}
