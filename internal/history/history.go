// Package history records completed runs in a SQLite database so results
// can be compared across runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/AndreyAkinshin/conformrun/internal/classify"
	"github.com/AndreyAkinshin/conformrun/internal/suite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	root        TEXT NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	unknown     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS test_results (
	run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	suite   TEXT NOT NULL,
	test    TEXT NOT NULL,
	outcome TEXT NOT NULL,
	reason  TEXT,
	PRIMARY KEY (run_id, suite, test)
);
CREATE INDEX IF NOT EXISTS test_results_by_test ON test_results (suite, test);
`

// timeLayout is fixed-width so stored timestamps sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Run is one recorded invocation.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Root      string
	Totals    suite.Counts
}

// Change is a test whose outcome differs from the previous run that
// included it.
type Change struct {
	Suite    string
	Test     string
	Previous classify.Kind
	Current  classify.Kind
}

// Store is a run history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps the
	// foreign_keys pragma in effect.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure history: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewRun describes a finished run for recording.
func NewRun(root string, startedAt time.Time, res *suite.Result) Run {
	return Run{
		ID:        uuid.NewString(),
		StartedAt: startedAt.UTC(),
		Duration:  time.Since(startedAt),
		Root:      root,
		Totals:    res.Total.Counts,
	}
}

// Record stores run and every test outcome of res in one transaction.
func (s *Store) Record(ctx context.Context, run Run, res *suite.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, duration_ms, root, passed, failed, skipped, unknown)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(timeLayout), run.Duration.Milliseconds(), run.Root,
		run.Totals.Passed, run.Totals.Failed, run.Totals.Skipped, run.Totals.Unknown)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO test_results (run_id, suite, test, outcome, reason) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range res.Reports {
		for _, e := range r.Entries {
			var reason sql.NullString
			if e.Outcome.HasReason {
				reason = sql.NullString{String: e.Outcome.Reason, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, run.ID, r.Suite, e.Test, e.Outcome.Kind.String(), reason); err != nil {
				return fmt.Errorf("insert result %s/%s: %w", r.Suite, e.Test, err)
			}
		}
	}
	return tx.Commit()
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, root, passed, failed, skipped, unknown
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			started string
			durMs   int64
		)
		if err := rows.Scan(&run.ID, &started, &durMs, &run.Root,
			&run.Totals.Passed, &run.Totals.Failed, &run.Totals.Skipped, &run.Totals.Unknown); err != nil {
			return nil, err
		}
		run.StartedAt, err = time.Parse(timeLayout, started)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad timestamp %q: %w", run.ID, started, err)
		}
		run.Duration = time.Duration(durMs) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Changes compares every test of run with its most recent earlier
// recorded outcome and returns those that differ.
func (s *Store) Changes(ctx context.Context, run Run) ([]Change, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cur.suite, cur.test, prev.outcome, cur.outcome
		FROM test_results cur
		JOIN test_results prev ON prev.suite = cur.suite AND prev.test = cur.test
		JOIN runs pr ON pr.id = prev.run_id
		WHERE cur.run_id = ?
		  AND pr.started_at = (
			SELECT MAX(r2.started_at) FROM runs r2
			JOIN test_results t2 ON t2.run_id = r2.id
			WHERE t2.suite = cur.suite AND t2.test = cur.test AND r2.started_at < ?
		  )
		  AND prev.outcome <> cur.outcome
		ORDER BY cur.suite, cur.test`,
		run.ID, run.StartedAt.UTC().Format(timeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var c Change
		var prev, cur string
		if err := rows.Scan(&c.Suite, &c.Test, &prev, &cur); err != nil {
			return nil, err
		}
		if err := c.Previous.UnmarshalText([]byte(prev)); err != nil {
			return nil, err
		}
		if err := c.Current.UnmarshalText([]byte(cur)); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}
