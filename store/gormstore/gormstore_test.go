package gormstore_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/overtime-board/overtime"
	"github.com/warp/overtime-board/store/gormstore"
)

func newTestStore(t *testing.T) *gormstore.Store {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := gormstore.Open(gormstore.DialectSQLite, ":memory:", gormstore.Options{}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

var base = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

func insert(t *testing.T, s *gormstore.Store, login string, d time.Time, shift overtime.Shift, created time.Time) overtime.Entry {
	t.Helper()
	e, err := s.Insert(context.Background(), overtime.Entry{Login: login, WorkDate: d, Shift: shift, CreatedAt: created})
	require.NoError(t, err)
	return e
}

func TestOpen_UnknownDialect(t *testing.T) {
	_, err := gormstore.Open("mysql", "x", gormstore.Options{}, logrus.New())
	assert.Error(t, err)
}

func TestStore_InsertAndDuplicate(t *testing.T) {
	// GIVEN: jdoe works on March 5
	// WHEN: Inserting again for the same day, other shift
	// THEN: The unique index surfaces as ErrDuplicateEntry

	s := newTestStore(t)
	d := overtime.NewDate(2024, time.March, 5)

	e := insert(t, s, "jdoe", d, overtime.ShiftDay, base)
	assert.NotZero(t, e.ID)
	assert.Equal(t, d, e.WorkDate)

	_, err := s.Insert(context.Background(), overtime.Entry{Login: "jdoe", WorkDate: d, Shift: overtime.ShiftNight})
	assert.ErrorIs(t, err, overtime.ErrDuplicateEntry)
}

func TestOpen_MemoryIgnoresConnMaxLifetime(t *testing.T) {
	// GIVEN: An in-memory store configured with a tiny connection lifetime
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s, err := gormstore.Open(gormstore.DialectSQLite, ":memory:",
		gormstore.Options{ConnMaxLifetime: time.Millisecond}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	d := overtime.NewDate(2024, time.March, 5)
	insert(t, s, "jdoe", d, overtime.ShiftDay, base)

	// WHEN: The lifetime has long passed
	time.Sleep(50 * time.Millisecond)

	// THEN: The same database still answers with the row
	entries, err := s.ListByDate(context.Background(), d)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "jdoe", entries[0].Login)
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := overtime.NewDate(2024, time.March, 5)
	insert(t, s, "jdoe", d, overtime.ShiftNight, base)

	n, err := s.Delete(ctx, "jdoe", d, overtime.ShiftDay)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.Delete(ctx, "jdoe", d, overtime.ShiftNight)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_Views(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insert(t, s, "late", overtime.NewDate(2024, time.March, 5), overtime.ShiftDay, base.Add(2*time.Hour))
	insert(t, s, "early", overtime.NewDate(2024, time.March, 5), overtime.ShiftNight, base.Add(time.Hour))
	insert(t, s, "asmith", overtime.NewDate(2023, time.March, 2), overtime.ShiftDay, base)
	insert(t, s, "jdoe", overtime.NewDate(2024, time.April, 1), overtime.ShiftDay, base)

	day, err := s.ListByDate(ctx, overtime.NewDate(2024, time.March, 5))
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, "early", day[0].Login)
	assert.Equal(t, overtime.ShiftNight, day[0].Shift)

	week, err := s.ListByDates(ctx, overtime.WeekDates(overtime.NewDate(2024, time.March, 3)))
	require.NoError(t, err)
	assert.Len(t, week, 2)

	month, err := s.ListByMonth(ctx, 3)
	require.NoError(t, err)
	require.Len(t, month, 3)
	assert.Equal(t, "asmith", month[0].Login)

	history, err := s.ListByLogin(ctx, "jdoe")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, overtime.NewDate(2024, time.April, 1), history[0].WorkDate)
}

func TestStore_CountByLogin(t *testing.T) {
	s := newTestStore(t)

	for d := 1; d <= 6; d++ {
		insert(t, s, "jdoe", overtime.NewDate(2024, time.Month(1+(d-1)/2), d), overtime.ShiftDay, base)
	}
	insert(t, s, "jdoe", overtime.NewDate(2023, time.February, 1), overtime.ShiftDay, base)
	insert(t, s, "asmith", overtime.NewDate(2024, time.May, 1), overtime.ShiftDay, base)

	counts, err := s.CountByLogin(context.Background(), 2024, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []overtime.LoginCount{{Login: "jdoe", Count: 6}}, counts)

	counts, err = s.CountByLogin(context.Background(), 2024, []int{4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, []overtime.LoginCount{{Login: "asmith", Count: 1}}, counts)
}
