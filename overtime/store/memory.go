// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/overtime-board/overtime"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

var _ overtime.Store = (*Memory)(nil)

type Memory struct {
	mu      sync.RWMutex
	entries []overtime.Entry
	byKey   map[key]int64
	nextID  int64
}

type key struct {
	Login    string
	WorkDate time.Time
}

func NewMemory() *Memory {
	return &Memory{byKey: make(map[key]int64)}
}

// Insert is an atomic check-and-insert on (login, work date).
func (m *Memory) Insert(_ context.Context, e overtime.Entry) (overtime.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.WorkDate = overtime.Date(e.WorkDate)
	k := key{Login: e.Login, WorkDate: e.WorkDate}
	if _, exists := m.byKey[k]; exists {
		return overtime.Entry{}, &overtime.DuplicateEntryError{Login: e.Login, WorkDate: e.WorkDate}
	}

	m.nextID++
	e.ID = m.nextID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.entries = append(m.entries, e)
	m.byKey[k] = e.ID
	return e, nil
}

func (m *Memory) Delete(_ context.Context, login string, workDate time.Time, shift overtime.Shift) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	workDate = overtime.Date(workDate)
	kept := m.entries[:0]
	var removed int64
	for _, e := range m.entries {
		if e.Login == login && e.WorkDate.Equal(workDate) && e.Shift == shift {
			delete(m.byKey, key{Login: e.Login, WorkDate: e.WorkDate})
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

func (m *Memory) ListByDates(_ context.Context, dates []time.Time) ([]overtime.Entry, error) {
	want := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		want[overtime.Date(d)] = true
	}
	return m.filter(func(e overtime.Entry) bool { return want[e.WorkDate] }, byCreation), nil
}

func (m *Memory) ListByDate(_ context.Context, date time.Time) ([]overtime.Entry, error) {
	date = overtime.Date(date)
	return m.filter(func(e overtime.Entry) bool { return e.WorkDate.Equal(date) }, byCreation), nil
}

func (m *Memory) ListByMonth(_ context.Context, month int) ([]overtime.Entry, error) {
	return m.filter(func(e overtime.Entry) bool { return int(e.WorkDate.Month()) == month }, byDateThenCreation), nil
}

func (m *Memory) CountByLogin(_ context.Context, year int, months []int) ([]overtime.LoginCount, error) {
	inQuarter := make(map[int]bool, len(months))
	for _, mo := range months {
		inQuarter[mo] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, e := range m.entries {
		if e.WorkDate.Year() == year && inQuarter[int(e.WorkDate.Month())] {
			counts[e.Login]++
		}
	}

	out := make([]overtime.LoginCount, 0, len(counts))
	for login, n := range counts {
		out = append(out, overtime.LoginCount{Login: login, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Login < out[j].Login })
	return out, nil
}

func (m *Memory) ListByLogin(_ context.Context, login string) ([]overtime.Entry, error) {
	return m.filter(func(e overtime.Entry) bool { return e.Login == login }, byDateThenCreation), nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func (m *Memory) filter(match func(overtime.Entry) bool, less func(a, b overtime.Entry) bool) []overtime.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []overtime.Entry
	for _, e := range m.entries {
		if match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byCreation(a, b overtime.Entry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func byDateThenCreation(a, b overtime.Entry) bool {
	if !a.WorkDate.Equal(b.WorkDate) {
		return a.WorkDate.Before(b.WorkDate)
	}
	return byCreation(a, b)
}
