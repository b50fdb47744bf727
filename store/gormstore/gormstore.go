// Package gormstore implements overtime.Store on GORM, for managed Postgres
// deployments or SQLite through the ORM.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/overtime-board/overtime"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

var _ overtime.Store = (*Store)(nil)

// entryRow is the entries table.
type entryRow struct {
	ID        uint      `gorm:"primaryKey"`
	Login     string    `gorm:"size:255;not null;index;uniqueIndex:uq_entries_login_work_date,priority:1"`
	WorkDate  time.Time `gorm:"type:date;not null;index;uniqueIndex:uq_entries_login_work_date,priority:2"`
	Shift     string    `gorm:"size:20;not null;default:day"`
	CreatedAt time.Time `gorm:"not null"`
}

func (entryRow) TableName() string {
	return "entries"
}

func (r entryRow) toEntry() overtime.Entry {
	return overtime.Entry{
		ID:        int64(r.ID),
		Login:     r.Login,
		WorkDate:  overtime.Date(r.WorkDate),
		Shift:     overtime.Shift(r.Shift),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store implements overtime.Store with GORM.
type Store struct {
	db      *gorm.DB
	dialect string
	logger  logrus.FieldLogger
}

// Open connects with the given dialect ("postgres" or "sqlite") and migrates
// the entries table.
func Open(dialect, dsn string, opts Options, logger *logrus.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.Open(dsn)
	case DialectSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if dialect == DialectSQLite && dsn == ":memory:" {
		// the database lives and dies with its single connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	if err := db.AutoMigrate(&entryRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate entries table: %w", err)
	}

	logger.WithField("dialect", dialect).Info("Entry store initialized")
	return &Store{db: db, dialect: dialect, logger: logger}, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Insert relies on uq_entries_login_work_date; the losing side of a race
// gets gorm.ErrDuplicatedKey, reported as overtime.ErrDuplicateEntry.
func (s *Store) Insert(ctx context.Context, e overtime.Entry) (overtime.Entry, error) {
	row := entryRow{
		Login:     e.Login,
		WorkDate:  overtime.Date(e.WorkDate),
		Shift:     string(e.Shift),
		CreatedAt: e.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return overtime.Entry{}, &overtime.DuplicateEntryError{Login: row.Login, WorkDate: row.WorkDate}
		}
		s.logger.WithError(err).WithField("login", row.Login).Error("Failed to insert entry")
		return overtime.Entry{}, fmt.Errorf("failed to insert entry: %w", err)
	}
	return row.toEntry(), nil
}

func (s *Store) Delete(ctx context.Context, login string, workDate time.Time, shift overtime.Shift) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("login = ? AND work_date = ? AND shift = ?", login, overtime.Date(workDate), string(shift)).
		Delete(&entryRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete entry: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) ListByDates(ctx context.Context, dates []time.Time) ([]overtime.Entry, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	days := make([]time.Time, len(dates))
	for i, d := range dates {
		days[i] = overtime.Date(d)
	}
	return s.find(s.db.WithContext(ctx).
		Where("work_date IN ?", days).
		Order("created_at ASC").Order("id ASC"))
}

func (s *Store) ListByDate(ctx context.Context, date time.Time) ([]overtime.Entry, error) {
	return s.find(s.db.WithContext(ctx).
		Where("work_date = ?", overtime.Date(date)).
		Order("created_at ASC").Order("id ASC"))
}

// ListByMonth is not scoped by year.
func (s *Store) ListByMonth(ctx context.Context, month int) ([]overtime.Entry, error) {
	return s.find(s.db.WithContext(ctx).
		Where(s.datePart("month")+" = ?", month).
		Order("work_date ASC").Order("created_at ASC").Order("id ASC"))
}

func (s *Store) ListByLogin(ctx context.Context, login string) ([]overtime.Entry, error) {
	return s.find(s.db.WithContext(ctx).
		Where("login = ?", login).
		Order("work_date ASC").Order("created_at ASC").Order("id ASC"))
}

func (s *Store) CountByLogin(ctx context.Context, year int, months []int) ([]overtime.LoginCount, error) {
	if len(months) == 0 {
		return nil, nil
	}

	var rows []struct {
		Login string
		Cnt   int
	}
	err := s.db.WithContext(ctx).
		Model(&entryRow{}).
		Select("login, COUNT(id) AS cnt").
		Where(s.datePart("year")+" = ?", year).
		Where(s.datePart("month")+" IN ?", months).
		Group("login").
		Order("login ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}

	counts := make([]overtime.LoginCount, len(rows))
	for i, r := range rows {
		counts[i] = overtime.LoginCount{Login: r.Login, Count: r.Cnt}
	}
	return counts, nil
}

func (s *Store) find(q *gorm.DB) ([]overtime.Entry, error) {
	var rows []entryRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	entries := make([]overtime.Entry, len(rows))
	for i, r := range rows {
		entries[i] = r.toEntry()
	}
	return entries, nil
}

// datePart extracts "year" or "month" from work_date as an integer.
func (s *Store) datePart(part string) string {
	if s.dialect == DialectPostgres {
		return "CAST(EXTRACT(" + part + " FROM work_date) AS INTEGER)"
	}
	format := "%m"
	if part == "year" {
		format = "%Y"
	}
	return "CAST(strftime('" + format + "', work_date) AS INTEGER)"
}
