/*
store.go - Persistence contract for overtime entries

PURPOSE:
  Defines the interface between the Tracker and the database. The Tracker
  never talks SQL; every query it needs is one method here.

UNIQUENESS:
  Insert MUST be an atomic check-and-insert on (login, work_date). SQL
  implementations rely on a UNIQUE index so that two racing requests from
  independent handlers end with exactly one row and one ErrDuplicateEntry.

ORDERING:
  "Creation order" means created_at ascending, then id ascending.

IMPLEMENTATIONS:
  - store/sqlite:      database/sql + go-sqlite3 (default)
  - store/gormstore:   GORM on SQLite or Postgres
  - overtime/store:    in-memory, for tests and local demos
*/
package overtime

import (
	"context"
	"time"
)

// Store persists entries.
type Store interface {
	// Insert stores e and returns it with ID set. Returns an error wrapping
	// ErrDuplicateEntry if (e.Login, e.WorkDate) already exists.
	Insert(ctx context.Context, e Entry) (Entry, error)

	// Delete removes entries matching the exact triple and returns how many
	// rows went away. Zero is not an error.
	Delete(ctx context.Context, login string, workDate time.Time, shift Shift) (int64, error)

	// ListByDates returns entries on any of dates, in creation order.
	ListByDates(ctx context.Context, dates []time.Time) ([]Entry, error)

	// ListByDate returns entries on one date, in creation order.
	ListByDate(ctx context.Context, date time.Time) ([]Entry, error)

	// ListByMonth returns entries whose work date falls in month (any year),
	// ordered by work date then creation order.
	ListByMonth(ctx context.Context, month int) ([]Entry, error)

	// CountByLogin counts entries per login in year restricted to months.
	CountByLogin(ctx context.Context, year int, months []int) ([]LoginCount, error)

	// ListByLogin returns every entry of one login ordered by work date.
	ListByLogin(ctx context.Context, login string) ([]Entry, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	Close() error
}
