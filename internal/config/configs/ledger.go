package configs

import "time"

// Ledger holds configuration for the allocation ledger. PersistTimeout
// bounds a single durable write; a write not resolved by then is rolled
// back. Listen enables the Postgres LISTEN/NOTIFY subscription feeding
// external-change reconciliation; the service works without it.
type Ledger struct {
	// PersistTimeout bounds one PersistAllocation round trip.
	PersistTimeout time.Duration `env:"PERSIST_TIMEOUT" envDefault:"10s"`
	// Listen starts the store change subscriber on boot.
	Listen bool `env:"LISTEN" envDefault:"true"`
}
