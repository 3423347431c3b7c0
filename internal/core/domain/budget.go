package domain

import "time"

// Budget is a user's total monthly allocatable amount and the mirrored sum
// of that user's allocations. All amounts are integer minor currency units
// (cents). The confirmed store state always satisfies
// AllocatedCents <= TotalCents.
type Budget struct {
	UserID         string
	TotalCents     int64
	AllocatedCents int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Available returns the unallocated remainder, clamped at zero.
func (b Budget) Available() int64 {
	if b.AllocatedCents >= b.TotalCents {
		return 0
	}
	return b.TotalCents - b.AllocatedCents
}
