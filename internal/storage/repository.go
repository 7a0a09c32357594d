package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Config is the minimal configuration needed to create a repository.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Repository is a backend-agnostic interface for executing table plans.
//
// IMPORTANT: the interface is intentionally minimal. Each backend implements
// the semantics in its own idiomatic way (pgx batching, INSERT OR IGNORE-free
// plain inserts on SQLite, etc), but the contract is shared:
//
//   - EnsureTable is create-if-not-exists and safe to repeat.
//   - ReplaceDate deletes every date partition the plan touches and inserts
//     the plan's rows inside one transaction, so a partially written date is
//     never visible and re-imports converge instead of accumulating.
type Repository interface {
	// Close releases backend resources. Treat as "call once".
	Close()

	// EnsureTable creates the plan's table when missing.
	EnsureTable(ctx context.Context, plan TablePlan) error

	// ReplaceDate atomically replaces the rows under plan.DeleteDates(date)
	// with plan.Rows and returns the number of rows inserted.
	ReplaceDate(ctx context.Context, plan TablePlan, date time.Time) (int64, error)
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
//
// Call Register from an init() function in a backend package. Registering the
// same kind twice panics; failing fast beats ambiguous backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
//
// Errors:
//   - cfg.Kind empty or unknown.
//   - whatever the registered factory returns.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing Kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
