package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/overtime-board/overtime"
	"github.com/warp/overtime-board/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func insert(t *testing.T, s *sqlite.Store, login string, d time.Time, shift overtime.Shift, created time.Time) overtime.Entry {
	t.Helper()
	e, err := s.Insert(context.Background(), overtime.Entry{Login: login, WorkDate: d, Shift: shift, CreatedAt: created})
	require.NoError(t, err)
	return e
}

var base = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

// =============================================================================
// UNIQUENESS INVARIANT TESTS
// =============================================================================

func TestStore_Insert_DuplicateLoginDateRejected(t *testing.T) {
	// GIVEN: jdoe works the day shift on March 5
	// WHEN: Inserting a night shift for the same day
	// THEN: The unique index rejects it as DuplicateEntryError

	s := newTestStore(t)
	d := overtime.NewDate(2024, time.March, 5)
	first := insert(t, s, "jdoe", d, overtime.ShiftDay, base)
	assert.NotZero(t, first.ID)

	_, err := s.Insert(context.Background(), overtime.Entry{Login: "jdoe", WorkDate: d, Shift: overtime.ShiftNight})
	assert.ErrorIs(t, err, overtime.ErrDuplicateEntry)

	var dupErr *overtime.DuplicateEntryError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, d, dupErr.WorkDate)
}

func TestStore_Insert_ConcurrentSameKey(t *testing.T) {
	// GIVEN: A file database shared by many connections
	// WHEN: 10 goroutines insert the same (login, date)
	// THEN: Exactly one succeeds; the rest get DuplicateEntryError

	s, err := sqlite.New(filepath.Join(t.TempDir(), "race.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	d := overtime.NewDate(2024, time.March, 5)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Insert(ctx, overtime.Entry{Login: "jdoe", WorkDate: d, Shift: overtime.ShiftDay})
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
			continue
		}
		assert.ErrorIs(t, err, overtime.ErrDuplicateEntry)
	}
	assert.Equal(t, 1, success)
}

// =============================================================================
// DELETE
// =============================================================================

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	d := overtime.NewDate(2024, time.March, 5)
	insert(t, s, "jdoe", d, overtime.ShiftNight, base)

	n, err := s.Delete(ctx, "jdoe", d, overtime.ShiftDay)
	require.NoError(t, err)
	assert.Zero(t, n, "wrong shift deletes nothing")

	n, err = s.Delete(ctx, "jdoe", d, overtime.ShiftNight)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Delete(ctx, "jdoe", d, overtime.ShiftNight)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestStore_ListByDates_CreationOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	insert(t, s, "late", overtime.NewDate(2024, time.March, 4), overtime.ShiftDay, base.Add(2*time.Hour))
	insert(t, s, "early", overtime.NewDate(2024, time.March, 6), overtime.ShiftNight, base.Add(time.Hour))
	insert(t, s, "other-week", overtime.NewDate(2024, time.March, 10), overtime.ShiftDay, base)

	entries, err := s.ListByDates(ctx, overtime.WeekDates(overtime.NewDate(2024, time.March, 3)))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "early", entries[0].Login)
	assert.Equal(t, overtime.ShiftNight, entries[0].Shift)
	assert.Equal(t, overtime.NewDate(2024, time.March, 6), entries[0].WorkDate)
	assert.True(t, base.Add(time.Hour).Equal(entries[0].CreatedAt))
	assert.Equal(t, "late", entries[1].Login)

	none, err := s.ListByDates(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ListByDate(t *testing.T) {
	s := newTestStore(t)

	insert(t, s, "b", overtime.NewDate(2024, time.March, 5), overtime.ShiftDay, base.Add(time.Minute))
	insert(t, s, "a", overtime.NewDate(2024, time.March, 5), overtime.ShiftDay, base)
	insert(t, s, "c", overtime.NewDate(2024, time.March, 6), overtime.ShiftDay, base)

	entries, err := s.ListByDate(context.Background(), overtime.NewDate(2024, time.March, 5))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Login)
	assert.Equal(t, "b", entries[1].Login)
}

func TestStore_ListByMonth_IgnoresYear(t *testing.T) {
	s := newTestStore(t)

	insert(t, s, "jdoe", overtime.NewDate(2024, time.March, 20), overtime.ShiftDay, base)
	insert(t, s, "asmith", overtime.NewDate(2023, time.March, 2), overtime.ShiftDay, base)
	insert(t, s, "jdoe", overtime.NewDate(2024, time.April, 1), overtime.ShiftDay, base)

	entries, err := s.ListByMonth(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, overtime.NewDate(2023, time.March, 2), entries[0].WorkDate)
	assert.Equal(t, overtime.NewDate(2024, time.March, 20), entries[1].WorkDate)
}

func TestStore_ListByLogin(t *testing.T) {
	s := newTestStore(t)

	insert(t, s, "jdoe", overtime.NewDate(2024, time.March, 20), overtime.ShiftDay, base)
	insert(t, s, "jdoe", overtime.NewDate(2024, time.January, 2), overtime.ShiftNight, base)
	insert(t, s, "asmith", overtime.NewDate(2024, time.January, 2), overtime.ShiftDay, base)

	entries, err := s.ListByLogin(context.Background(), "jdoe")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, overtime.NewDate(2024, time.January, 2), entries[0].WorkDate)
}

func TestStore_CountByLogin_YearAndMonths(t *testing.T) {
	s := newTestStore(t)

	for d := 1; d <= 6; d++ {
		insert(t, s, "jdoe", overtime.NewDate(2024, time.Month(1+(d-1)/2), d), overtime.ShiftDay, base)
	}
	insert(t, s, "jdoe", overtime.NewDate(2024, time.April, 1), overtime.ShiftDay, base)
	insert(t, s, "jdoe", overtime.NewDate(2023, time.January, 1), overtime.ShiftDay, base)
	insert(t, s, "asmith", overtime.NewDate(2024, time.March, 31), overtime.ShiftNight, base)

	counts, err := s.CountByLogin(context.Background(), 2024, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []overtime.LoginCount{
		{Login: "asmith", Count: 1},
		{Login: "jdoe", Count: 6},
	}, counts)
}

func TestStore_Ping(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestStore_List_MalformedCreatedAt(t *testing.T) {
	// GIVEN: A row whose created_at was written by hand in another format
	path := filepath.Join(t.TempDir(), "bad.db")
	s, err := sqlite.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Exec(
		"INSERT INTO entries (login, work_date, shift, created_at) VALUES (?, ?, ?, ?)",
		"jdoe", "2024-03-05", "day", "yesterday")
	require.NoError(t, err)

	// WHEN: Listing that date
	_, err = s.ListByDate(context.Background(), overtime.NewDate(2024, time.March, 5))

	// THEN: The bad timestamp is reported instead of a zero time
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad created_at")
}
