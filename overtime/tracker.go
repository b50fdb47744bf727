/*
tracker.go - Aggregation engine for the overtime board

PURPOSE:
  Turns raw entries into the four views the board shows, and guards the
  add/remove operations. Depends on a Store, a roster Directory and a
  ManagerTable, all injected.

VIEWS:
  Week:    7 dense days, logins per shift, creation order
  Day:     one date, enriched {login, name, shift pattern} per shift
  Month:   flat list for a month number across ALL years, enriched
  Quarter: per-manager top-N logins by entry count for one year

QUARTER SUMMARY:
  1. months of the quarter
  2. count entries per login in (year, months), both shifts together
  3. roster manager → normalized → alias table → bucket (or catch-all)
  4. sort count desc, login asc
  5. keep the top N (5)
  6. every bucket is present, even if empty

UNKNOWN LOGINS:
  Strict mode (default) rejects logins missing from the roster on Add.
  Lenient mode stores them; views render an empty name.
*/
package overtime

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/overtime-board/roster"
)

// DefaultTopN is how many logins each quarterly bucket keeps.
const DefaultTopN = 5

// Directory resolves a login to its roster record.
type Directory interface {
	Resolve(login string) (roster.Record, bool)
}

// =============================================================================
// VIEW TYPES
// =============================================================================

// DayLogins lists who works each shift on one date.
type DayLogins struct {
	Date       time.Time
	DayShift   []string
	NightShift []string
}

// WeekView is the dense Sunday..Saturday overview.
type WeekView struct {
	WeekStart time.Time
	Days      []DayLogins
}

// Assignee is an entry enriched from the roster.
type Assignee struct {
	Login        string
	Name         string
	ShiftPattern string
}

// DayView lists enriched assignees per shift for one date.
type DayView struct {
	Date       time.Time
	DayShift   []Assignee
	NightShift []Assignee
}

// MonthEntry is one row of the month listing.
type MonthEntry struct {
	Login    string
	Name     string
	WorkDate time.Time
	Shift    Shift
}

// ManagerRanking is one quarterly table.
type ManagerRanking struct {
	Manager string
	Top     []LoginCount
}

// QuarterSummary is the per-manager top list for one quarter.
type QuarterSummary struct {
	Quarter int
	Year    int
	Months  []int
	Buckets []ManagerRanking
}

// Bucket returns the ranking for manager, or nil.
func (q QuarterSummary) Bucket(manager string) []LoginCount {
	for _, b := range q.Buckets {
		if b.Manager == manager {
			return b.Top
		}
	}
	return nil
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker is the application service behind the HTTP API.
type Tracker struct {
	store     Store
	directory Directory
	managers  *ManagerTable
	logger    logrus.FieldLogger
	strict    bool
	topN      int
	now       func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithStrictLogins toggles rejecting logins that are not in the roster.
func WithStrictLogins(strict bool) Option {
	return func(t *Tracker) { t.strict = strict }
}

// WithTopN sets the quarterly bucket size.
func WithTopN(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.topN = n
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// NewTracker wires a Tracker. A nil managers table means DefaultManagerTable.
func NewTracker(store Store, directory Directory, managers *ManagerTable, opts ...Option) *Tracker {
	if managers == nil {
		managers = DefaultManagerTable()
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	t := &Tracker{
		store:     store,
		directory: directory,
		managers:  managers,
		logger:    discard,
		strict:    true,
		topN:      DefaultTopN,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Today returns the current calendar date.
func (t *Tracker) Today() time.Time {
	return Date(t.now())
}

// Managers returns the alias table in use.
func (t *Tracker) Managers() *ManagerTable { return t.managers }

// Employee resolves a login against the roster.
func (t *Tracker) Employee(login string) (roster.Record, bool) {
	return t.directory.Resolve(NormalizeLogin(login))
}

// RosterSize returns how many employees the directory knows, or -1 if it
// cannot tell.
func (t *Tracker) RosterSize() int {
	if sized, ok := t.directory.(interface{ Len() int }); ok {
		return sized.Len()
	}
	return -1
}

// Ping checks the store.
func (t *Tracker) Ping(ctx context.Context) error {
	return t.store.Ping(ctx)
}

// Weeks returns the picker window: 3 weeks back, this week, 3 weeks ahead.
func (t *Tracker) Weeks() []Week {
	return WeeksAround(t.Today(), 3, 3)
}

// =============================================================================
// WRITES
// =============================================================================

// Add records that login works shift on workDate.
func (t *Tracker) Add(ctx context.Context, login string, workDate time.Time, shift Shift) (Entry, error) {
	login = NormalizeLogin(login)
	if login == "" {
		return Entry{}, Invalid("login", "login and work_date required")
	}
	if workDate.IsZero() {
		return Entry{}, Invalid("work_date", "login and work_date required")
	}
	if !shift.Valid() {
		return Entry{}, Invalid("shift", "shift must be one of: day, night")
	}
	if t.strict {
		if _, ok := t.directory.Resolve(login); !ok {
			return Entry{}, &UnknownEmployeeError{Login: login}
		}
	}

	entry, err := t.store.Insert(ctx, Entry{
		Login:     login,
		WorkDate:  Date(workDate),
		Shift:     shift,
		CreatedAt: t.now().UTC(),
	})
	if err != nil {
		return Entry{}, err
	}

	t.logger.WithFields(logrus.Fields{
		"login":     entry.Login,
		"work_date": entry.WorkDate.Format(DateLayout),
		"shift":     entry.Shift,
	}).Info("Overtime entry added")
	return entry, nil
}

// Remove deletes the exact (login, workDate, shift) entry. Removing nothing succeeds.
func (t *Tracker) Remove(ctx context.Context, login string, workDate time.Time, shift Shift) (int64, error) {
	login = NormalizeLogin(login)
	if login == "" || workDate.IsZero() || !shift.Valid() {
		return 0, Invalid("entry", "missing data")
	}

	n, err := t.store.Delete(ctx, login, Date(workDate), shift)
	if err != nil {
		return 0, err
	}

	t.logger.WithFields(logrus.Fields{
		"login":     login,
		"work_date": Date(workDate).Format(DateLayout),
		"shift":     shift,
		"removed":   n,
	}).Info("Overtime entry removed")
	return n, nil
}

// =============================================================================
// VIEWS
// =============================================================================

// Week builds the 7-day view starting at sunday.
func (t *Tracker) Week(ctx context.Context, sunday time.Time) (WeekView, error) {
	sunday = Date(sunday)
	if !IsWeekStart(sunday) {
		return WeekView{}, Invalid("week_start", "week_start must be a Sunday")
	}

	dates := WeekDates(sunday)
	entries, err := t.store.ListByDates(ctx, dates)
	if err != nil {
		return WeekView{}, fmt.Errorf("list week %s: %w", sunday.Format(DateLayout), err)
	}

	view := WeekView{WeekStart: sunday, Days: make([]DayLogins, len(dates))}
	byDate := make(map[time.Time]*DayLogins, len(dates))
	for i, d := range dates {
		view.Days[i] = DayLogins{Date: d, DayShift: []string{}, NightShift: []string{}}
		byDate[d] = &view.Days[i]
	}

	for _, e := range entries {
		day, ok := byDate[Date(e.WorkDate)]
		if !ok {
			continue
		}
		if e.Shift == ShiftNight {
			day.NightShift = append(day.NightShift, e.Login)
		} else {
			day.DayShift = append(day.DayShift, e.Login)
		}
	}
	return view, nil
}

// Day builds the enriched view of one date.
func (t *Tracker) Day(ctx context.Context, date time.Time) (DayView, error) {
	date = Date(date)
	entries, err := t.store.ListByDate(ctx, date)
	if err != nil {
		return DayView{}, fmt.Errorf("list day %s: %w", date.Format(DateLayout), err)
	}

	view := DayView{Date: date, DayShift: []Assignee{}, NightShift: []Assignee{}}
	for _, e := range entries {
		rec, _ := t.directory.Resolve(e.Login)
		a := Assignee{Login: e.Login, Name: rec.Name, ShiftPattern: rec.ShiftPattern}
		if e.Shift == ShiftNight {
			view.NightShift = append(view.NightShift, a)
		} else {
			view.DayShift = append(view.DayShift, a)
		}
	}
	return view, nil
}

// Month lists every entry whose work date is in month, across all years.
func (t *Tracker) Month(ctx context.Context, month int) ([]MonthEntry, error) {
	if month < 1 || month > 12 {
		return nil, OutOfRange("month", "month must be 1-12")
	}

	entries, err := t.store.ListByMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("list month %d: %w", month, err)
	}

	out := make([]MonthEntry, 0, len(entries))
	for _, e := range entries {
		rec, _ := t.directory.Resolve(e.Login)
		out = append(out, MonthEntry{
			Login:    e.Login,
			Name:     rec.Name,
			WorkDate: Date(e.WorkDate),
			Shift:    e.Shift,
		})
	}
	return out, nil
}

// History lists every entry of one login ordered by work date.
func (t *Tracker) History(ctx context.Context, login string) ([]Entry, error) {
	login = NormalizeLogin(login)
	if login == "" {
		return nil, Invalid("login", "login is required")
	}
	entries, err := t.store.ListByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("list history of %s: %w", login, err)
	}
	return entries, nil
}

// Quarter builds the per-manager top list for quarter q of year.
func (t *Tracker) Quarter(ctx context.Context, q, year int) (QuarterSummary, error) {
	months, err := QuarterMonths(q)
	if err != nil {
		return QuarterSummary{}, err
	}

	counts, err := t.store.CountByLogin(ctx, year, months)
	if err != nil {
		return QuarterSummary{}, fmt.Errorf("count quarter %d/%d: %w", q, year, err)
	}

	grouped := make(map[string][]LoginCount)
	for _, c := range counts {
		login := NormalizeLogin(c.Login)
		rec, _ := t.directory.Resolve(login)
		bucket := t.managers.Resolve(rec.Manager)
		grouped[bucket] = append(grouped[bucket], LoginCount{Login: login, Count: c.Count})
	}

	summary := QuarterSummary{Quarter: q, Year: year, Months: months}
	for _, name := range t.managers.Buckets() {
		summary.Buckets = append(summary.Buckets, ManagerRanking{
			Manager: name,
			Top:     rankTop(grouped[name], t.topN),
		})
	}
	return summary, nil
}

// rankTop sorts by count desc, login asc and keeps the first n.
func rankTop(counts []LoginCount, n int) []LoginCount {
	ranked := append([]LoginCount{}, counts...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Login < ranked[j].Login
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
