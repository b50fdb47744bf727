/*
Package sqlite provides a SQLite-backed implementation of overtime.Store.

PURPOSE:
  The embedded-file deployment: one database file next to the binary, no
  server. Uses database/sql with mattn/go-sqlite3.

KEY TABLE:
  entries: (id, login, work_date, shift, created_at)

INDEXES:
  - uq_entries_login_work_date: enforces one entry per login per day
  - idx_entries_work_date:      week/day/month views (hot path)
  - idx_entries_login:          per-login history

CONCURRENCY:
  No application lock. The UNIQUE index decides races between handlers:
  exactly one INSERT wins, the other gets a constraint error which is
  translated to overtime.ErrDuplicateEntry.

STORAGE FORMATS:
  work_date:  TEXT 'YYYY-MM-DD' (sorts and compares as a date)
  created_at: TEXT fixed-width UTC timestamp with nanoseconds

WAL MODE:
  File databases are opened with WAL and a busy timeout so concurrent
  readers do not block the single writer.

USAGE:
  store, err := sqlite.New("./data/overtime.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - overtime/store.go: interface definition
  - store/gormstore: ORM variant (SQLite or Postgres)
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/overtime-board/overtime"
)

const timestampLayout = "2006-01-02 15:04:05.000000000"

var _ overtime.Store = (*Store)(nil)

// Store implements overtime.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		login TEXT NOT NULL,
		work_date TEXT NOT NULL,
		shift TEXT NOT NULL DEFAULT 'day',
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS uq_entries_login_work_date
		ON entries(login, work_date);
	CREATE INDEX IF NOT EXISTS idx_entries_work_date
		ON entries(work_date);
	CREATE INDEX IF NOT EXISTS idx_entries_login
		ON entries(login);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WRITES
// =============================================================================

// Insert adds an entry. A second entry for the same login and date fails
// with overtime.ErrDuplicateEntry.
func (s *Store) Insert(ctx context.Context, e overtime.Entry) (overtime.Entry, error) {
	e.WorkDate = overtime.Date(e.WorkDate)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO entries (login, work_date, shift, created_at) VALUES (?, ?, ?, ?)",
		e.Login,
		e.WorkDate.Format(overtime.DateLayout),
		string(e.Shift),
		e.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return overtime.Entry{}, &overtime.DuplicateEntryError{Login: e.Login, WorkDate: e.WorkDate}
		}
		return overtime.Entry{}, fmt.Errorf("failed to insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return overtime.Entry{}, fmt.Errorf("failed to read entry id: %w", err)
	}
	e.ID = id
	return e, nil
}

// Delete removes matching entries. Deleting nothing is fine.
func (s *Store) Delete(ctx context.Context, login string, workDate time.Time, shift overtime.Shift) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM entries WHERE login = ? AND work_date = ? AND shift = ?",
		login, overtime.Date(workDate).Format(overtime.DateLayout), string(shift),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entry: %w", err)
	}
	return res.RowsAffected()
}

// =============================================================================
// QUERIES
// =============================================================================

const selectEntries = `SELECT id, login, work_date, shift, created_at FROM entries`

// ListByDates returns entries on any of the dates in creation order.
func (s *Store) ListByDates(ctx context.Context, dates []time.Time) ([]overtime.Entry, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	args := make([]any, len(dates))
	for i, d := range dates {
		args[i] = overtime.Date(d).Format(overtime.DateLayout)
	}

	query := selectEntries + `
		WHERE work_date IN (` + placeholders(len(dates)) + `)
		ORDER BY created_at ASC, id ASC`

	return s.queryEntries(ctx, query, args...)
}

// ListByDate returns the entries of one day in creation order.
func (s *Store) ListByDate(ctx context.Context, date time.Time) ([]overtime.Entry, error) {
	query := selectEntries + `
		WHERE work_date = ?
		ORDER BY created_at ASC, id ASC`

	return s.queryEntries(ctx, query, overtime.Date(date).Format(overtime.DateLayout))
}

// ListByMonth matches the month number regardless of year.
func (s *Store) ListByMonth(ctx context.Context, month int) ([]overtime.Entry, error) {
	query := selectEntries + `
		WHERE CAST(strftime('%m', work_date) AS INTEGER) = ?
		ORDER BY work_date ASC, created_at ASC, id ASC`

	return s.queryEntries(ctx, query, month)
}

// ListByLogin returns one login's entries by date.
func (s *Store) ListByLogin(ctx context.Context, login string) ([]overtime.Entry, error) {
	query := selectEntries + `
		WHERE login = ?
		ORDER BY work_date ASC, created_at ASC, id ASC`

	return s.queryEntries(ctx, query, login)
}

// CountByLogin groups entries of year in the given months by login.
func (s *Store) CountByLogin(ctx context.Context, year int, months []int) ([]overtime.LoginCount, error) {
	if len(months) == 0 {
		return nil, nil
	}

	args := []any{year}
	for _, m := range months {
		args = append(args, m)
	}

	query := `
		SELECT login, COUNT(*)
		FROM entries
		WHERE CAST(strftime('%Y', work_date) AS INTEGER) = ?
		  AND CAST(strftime('%m', work_date) AS INTEGER) IN (` + placeholders(len(months)) + `)
		GROUP BY login
		ORDER BY login ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	defer rows.Close()

	var counts []overtime.LoginCount
	for rows.Next() {
		var c overtime.LoginCount
		if err := rows.Scan(&c.Login, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *Store) queryEntries(ctx context.Context, query string, args ...any) ([]overtime.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []overtime.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (overtime.Entry, error) {
	var (
		e         overtime.Entry
		workDate  string
		shift     string
		createdAt string
	)

	if err := rows.Scan(&e.ID, &e.Login, &workDate, &shift, &createdAt); err != nil {
		return e, fmt.Errorf("failed to scan entry: %w", err)
	}

	d, err := time.Parse(overtime.DateLayout, workDate)
	if err != nil {
		return e, fmt.Errorf("bad work_date %q in row %d: %w", workDate, e.ID, err)
	}
	e.WorkDate = d
	e.Shift = overtime.Shift(shift)
	created, err := time.Parse(timestampLayout, createdAt)
	if err != nil {
		return e, fmt.Errorf("bad created_at %q in row %d: %w", createdAt, e.ID, err)
	}
	e.CreatedAt = created
	return e, nil
}

// Helper functions

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
