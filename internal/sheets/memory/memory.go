// Package memory is an in-memory mirror backend used in tests and when
// no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"savvy/internal/core"
)

type Store struct {
	mu   sync.Mutex
	rows map[string]core.Transaction
}

func New() *Store {
	return &Store{rows: make(map[string]core.Transaction)}
}

// Upsert stores the transaction keyed by ID and returns a synthetic
// row reference.
func (s *Store) Upsert(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[tx.ID] = tx
	return fmt.Sprintf("mem:%s", tx.ID), nil
}

// Remove deletes the row for the given ID. Unknown IDs are ignored.
func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

// Get returns a mirrored transaction, used by tests to assert state.
func (s *Store) Get(id string) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.rows[id]
	return tx, ok
}

// Len returns the number of mirrored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
