package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the minimal surface needed to run DDL.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Store is the relational target the coordinator loads into. The transform
// only needs truncate, bulk append, row counts, and count-returning queries
// for anti-join verification.
type Store interface {
	// Ping verifies the target is reachable.
	Ping(ctx context.Context) error

	// Truncate removes all rows from a table.
	Truncate(ctx context.Context, table string) error

	// Append bulk-inserts rows and returns the number inserted.
	Append(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Count returns the current row count of a table.
	Count(ctx context.Context, table string) (int64, error)

	// QueryCount runs a query returning a single count, used for the
	// anti-join integrity checks.
	QueryCount(ctx context.Context, sql string) (int64, error)

	// InTx runs fn against a transactional view of the store. fn's
	// writes commit only if it returns nil.
	InTx(ctx context.Context, fn func(Store) error) error
}

// CountMismatchError reports that a table holds a different number of rows
// than the builder produced. Partial loads corrupt the key space, so this
// is always fatal for the run.
type CountMismatchError struct {
	Table    string
	Produced int64
	Loaded   int64
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("load count mismatch on %s: produced %d rows, target holds %d",
		e.Table, e.Produced, e.Loaded)
}

// pgDB is the pgx surface shared by *pgxpool.Pool and pgx.Tx.
type pgDB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Pinger is implemented by *pgxpool.Pool but not by pgx.Tx.
type pinger interface {
	Ping(ctx context.Context) error
}

// PGStore implements Store on PostgreSQL via pgx.
type PGStore struct {
	db pgDB
}

// NewPGStore creates a store over a pgx pool or transaction.
func NewPGStore(db pgDB) *PGStore {
	return &PGStore{db: db}
}

// Ping verifies the target is reachable.
func (s *PGStore) Ping(ctx context.Context) error {
	if p, ok := s.db.(pinger); ok {
		return p.Ping(ctx)
	}
	// Inside a transaction a trivial query serves the same purpose.
	var one int
	return s.db.QueryRow(ctx, "SELECT 1").Scan(&one)
}

// Truncate removes all rows from a table.
func (s *PGStore) Truncate(ctx context.Context, table string) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
	if err != nil {
		return fmt.Errorf("failed to truncate %s: %w", table, err)
	}
	return nil
}

// Append bulk-inserts rows through the CopyFrom fast path.
func (s *PGStore) Append(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	n, err := s.db.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("failed to append to %s: %w", table, err)
	}
	return n, nil
}

// Count returns the current row count of a table.
func (s *PGStore) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// QueryCount runs a single-count query.
func (s *PGStore) QueryCount(ctx context.Context, sql string) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, sql).Scan(&n); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return n, nil
}

// InTx runs fn inside a database transaction.
func (s *PGStore) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&PGStore{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
