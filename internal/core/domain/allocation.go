package domain

import "time"

// Allocation is the portion of one user's budget directed at one target
// (page). A target with no row and a target with amount zero are
// equivalent; setting an allocation to zero logically deletes it.
type Allocation struct {
	UserID      string
	TargetID    string
	AmountCents int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
