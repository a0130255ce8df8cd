package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"entgo.io/ent/dialect"
)

// sequenceCounter hands out the global monotonic sequence that orders review
// logs. Dates alone can tie, and backfilled entries can carry older dates, so
// the sequence is the authoritative append order.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// newSequenceCounter seeds the counter row if it is missing.
func newSequenceCounter(ctx context.Context, db *sql.DB, name string) (*sequenceCounter, error) {
	seed := `INSERT INTO global_sequence (id, next_val) VALUES (1, 1) ON CONFLICT (id) DO NOTHING`
	if name == dialect.SQLite {
		seed = `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`
	}
	if _, err := db.ExecContext(ctx, seed); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequenceCounter{}, nil
}

// Next atomically returns the next sequence number and increments the counter.
// Pass a transaction to make the increment part of a larger write.
func (sc *sequenceCounter) Next(ctx context.Context, q queryRower) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := q.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}
