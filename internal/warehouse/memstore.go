package warehouse

import (
	"context"
	"fmt"
	"sync"
)

// MemStore is an in-memory Store used in tests and dry runs. It keeps
// appended rows per table and honors transactional rollback by snapshot.
type MemStore struct {
	mu     sync.Mutex
	tables map[string][][]any

	// PingErr makes Ping fail.
	PingErr error

	// FailTruncate and FailAppend make the named table's operation fail.
	FailTruncate string
	FailAppend   string

	// ShortAppend drops one row from appends to the named table, to
	// exercise count-mismatch handling.
	ShortAppend string

	// QueryCounts maps exact SQL to the count QueryCount returns.
	// Unknown queries return 0.
	QueryCounts map[string]int64
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{tables: make(map[string][][]any)}
}

// Ping verifies the store is reachable.
func (s *MemStore) Ping(ctx context.Context) error {
	return s.PingErr
}

// Truncate removes all rows from a table.
func (s *MemStore) Truncate(ctx context.Context, table string) error {
	if table == s.FailTruncate {
		return fmt.Errorf("truncate %s: injected failure", table)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = nil
	return nil
}

// Append stores rows and returns the number appended.
func (s *MemStore) Append(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if table == s.FailAppend {
		return 0, fmt.Errorf("append %s: injected failure", table)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if table == s.ShortAppend && len(rows) > 0 {
		rows = rows[:len(rows)-1]
	}
	s.tables[table] = append(s.tables[table], rows...)
	return int64(len(rows)), nil
}

// Count returns the row count of a table.
func (s *MemStore) Count(ctx context.Context, table string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.tables[table])), nil
}

// QueryCount returns the stubbed count for the query, defaulting to zero.
func (s *MemStore) QueryCount(ctx context.Context, sql string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.QueryCounts[sql], nil
}

// InTx snapshots the tables, runs fn, and restores the snapshot if fn
// fails.
func (s *MemStore) InTx(ctx context.Context, fn func(Store) error) error {
	s.mu.Lock()
	snapshot := make(map[string][][]any, len(s.tables))
	for name, rows := range s.tables {
		snapshot[name] = append([][]any(nil), rows...)
	}
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.tables = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Rows returns the rows currently held for a table.
func (s *MemStore) Rows(table string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[table]
}
