// Package memory holds an in-process TransactionRepository used by
// tests and by local runs without BigQuery credentials.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ntarasov/finchat/internal/domain"
)

// TransactionRepository stores transactions in a mutex-guarded slice.
// Safe for concurrent use.
type TransactionRepository struct {
	mu  sync.Mutex
	txs []*domain.Transaction
}

// NewTransactionRepository creates an empty repository.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{}
}

// InsertTransaction appends a copy of the transaction. jobID and
// snapshotURI exist to satisfy the repository contract; the in-memory
// store has no columns for them.
func (r *TransactionRepository) InsertTransaction(_ context.Context, tx *domain.Transaction, _, _ string) error {
	cp := *tx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, &cp)
	return nil
}

// ListTransactionsByDateRange returns the user's transactions recorded
// within [start, end], oldest first.
func (r *TransactionRepository) ListTransactionsByDateRange(_ context.Context, userID string, start, end time.Time) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Transaction
	for _, tx := range r.txs {
		if tx.UserID != userID {
			continue
		}
		if tx.RecordedAt.Before(start) || tx.RecordedAt.After(end) {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.Before(out[j].RecordedAt)
	})
	return out, nil
}

// Close is a no-op; it exists to satisfy the repository contract.
func (r *TransactionRepository) Close() error {
	return nil
}
