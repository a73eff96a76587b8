package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dwforge/dwforge/internal/star/calendar"
	"github.com/dwforge/dwforge/internal/star/dims"
	"github.com/dwforge/dwforge/internal/star/fact"
)

// State is the load coordinator's position in the load sequence.
type State int

// Loader states. Failed is terminal and reachable from any non-terminal
// state.
const (
	StateIdle State = iota
	StateConnected
	StateCleared
	StateDimensionsLoaded
	StateFactLoaded
	StateVerified
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:             "idle",
	StateConnected:        "connected",
	StateCleared:          "cleared",
	StateDimensionsLoaded: "dimensions_loaded",
	StateFactLoaded:       "fact_loaded",
	StateVerified:         "verified",
	StateDone:             "done",
	StateFailed:           "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Payload carries the finished builder outputs to load.
type Payload struct {
	Customers []dims.CustomerRow
	Products  []dims.ProductRow
	Sellers   []dims.SellerRow
	Calendar  []calendar.DateRow
	Facts     []fact.OrderFact

	// DroppedFacts is the mandatory-key drop count reported by the fact
	// builder, carried into the run summary.
	DroppedFacts int
}

// TableResult compares rows produced by a builder against rows present in
// the target after loading.
type TableResult struct {
	Table    string
	Produced int64
	Loaded   int64
}

// Summary is the structured result of a load run, returned on success and
// failure alike.
type Summary struct {
	RunID        string
	State        State
	StartedAt    time.Time
	FinishedAt   time.Time
	Tables       []TableResult
	Checks       []FKResult
	DroppedFacts int

	// Passed is true when the load completed and every mandatory foreign
	// key verified with zero violations.
	Passed bool
}

// TotalViolations sums violation counts across all checks.
func (s *Summary) TotalViolations() int64 {
	var n int64
	for _, c := range s.Checks {
		n += c.Violations
	}
	return n
}

// Loader coordinates the truncate-and-reload of the star schema. It is a
// single-run object: create one per transform run.
type Loader struct {
	store Store
	log   zerolog.Logger
	runID string
	now   func() time.Time
	state State
}

// NewLoader creates a loader for one run.
func NewLoader(store Store, log zerolog.Logger, runID string) *Loader {
	return &Loader{
		store: store,
		log:   log,
		runID: runID,
		now:   time.Now,
		state: StateIdle,
	}
}

// State returns the loader's current state.
func (l *Loader) State() State {
	return l.state
}

func (l *Loader) advance(s State) {
	l.log.Debug().
		Str("from", l.state.String()).
		Str("to", s.String()).
		Msg("Loader state transition")
	l.state = s
}

func (l *Loader) fail(summary *Summary, err error) (*Summary, error) {
	stage := l.state.String()
	l.advance(StateFailed)
	summary.State = StateFailed
	summary.FinishedAt = l.now().UTC()
	l.log.Error().Err(err).Str("stage", stage).Msg("Load run failed")
	return summary, err
}

// Run executes the full load sequence: connect, clear, load dimensions,
// load fact, verify. Clear and load happen inside one transaction, so a
// mid-load failure leaves the previous target state visible to readers.
// Verification runs after commit against the live tables.
func (l *Loader) Run(ctx context.Context, p Payload) (*Summary, error) {
	summary := &Summary{
		RunID:        l.runID,
		StartedAt:    l.now().UTC(),
		DroppedFacts: p.DroppedFacts,
	}

	if l.state != StateIdle {
		return l.fail(summary, fmt.Errorf("loader already ran (state %s)", l.state))
	}

	if err := l.store.Ping(ctx); err != nil {
		return l.fail(summary, fmt.Errorf("failed to connect to warehouse: %w", err))
	}
	l.advance(StateConnected)

	err := l.store.InTx(ctx, func(tx Store) error {
		for _, table := range TruncateOrder {
			if err := tx.Truncate(ctx, table); err != nil {
				return err
			}
		}
		l.advance(StateCleared)
		l.log.Info().Msg("Cleared warehouse tables")

		for _, dim := range []struct {
			table   string
			columns []string
			rows    [][]any
		}{
			{TableCustomers, customerColumns, customerValues(p.Customers)},
			{TableProducts, productColumns, productValues(p.Products)},
			{TableSellers, sellerColumns, sellerValues(p.Sellers)},
			{TableDate, dateColumns, dateValues(p.Calendar)},
		} {
			result, err := l.loadTable(ctx, tx, dim.table, dim.columns, dim.rows)
			if err != nil {
				return err
			}
			summary.Tables = append(summary.Tables, result)
		}
		l.advance(StateDimensionsLoaded)

		result, err := l.loadTable(ctx, tx, TableFacts, factColumns, factValues(p.Facts))
		if err != nil {
			return err
		}
		summary.Tables = append(summary.Tables, result)
		l.advance(StateFactLoaded)

		return nil
	})
	if err != nil {
		return l.fail(summary, err)
	}

	checks, err := Verify(ctx, l.store, l.log)
	if err != nil {
		return l.fail(summary, err)
	}
	summary.Checks = checks
	l.advance(StateVerified)

	summary.Passed = summary.TotalViolations() == 0
	summary.FinishedAt = l.now().UTC()
	l.advance(StateDone)
	summary.State = StateDone

	if err := l.recordRun(ctx, summary, int64(len(p.Facts))); err != nil {
		// The load itself succeeded; a missing audit row is not worth
		// failing the run over.
		l.log.Warn().Err(err).Msg("Failed to record run metadata")
	}

	l.log.Info().
		Bool("passed", summary.Passed).
		Int64("violations", summary.TotalViolations()).
		Int("dropped_facts", summary.DroppedFacts).
		Msg("Load run complete")

	return summary, nil
}

// loadTable appends one table's rows and re-counts the target. A count
// differing from what the builder produced aborts the run.
func (l *Loader) loadTable(ctx context.Context, tx Store, table string, columns []string, rows [][]any) (TableResult, error) {
	produced := int64(len(rows))

	if _, err := tx.Append(ctx, table, columns, rows); err != nil {
		return TableResult{}, err
	}

	loaded, err := tx.Count(ctx, table)
	if err != nil {
		return TableResult{}, err
	}

	if loaded != produced {
		return TableResult{}, &CountMismatchError{Table: table, Produced: produced, Loaded: loaded}
	}

	l.log.Info().
		Str("table", table).
		Int64("rows", loaded).
		Msg("Loaded table")

	return TableResult{Table: table, Produced: produced, Loaded: loaded}, nil
}

func (l *Loader) recordRun(ctx context.Context, summary *Summary, factRows int64) error {
	_, err := l.store.Append(ctx, TableRuns, runColumns, [][]any{{
		summary.RunID,
		summary.StartedAt,
		summary.FinishedAt,
		summary.State.String(),
		factRows,
		int64(summary.DroppedFacts),
	}})
	return err
}
