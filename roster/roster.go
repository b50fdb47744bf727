/*
Package roster loads the static employee roster.

FILE FORMAT:

	Delimited text with a header row. The delimiter (comma, semicolon or tab)
	is taken from the header line. A UTF-8 BOM is tolerated.

	User ID,Employee Name,Shift Pattern,Menago
	jdoe,Jane Doe,A-Day,Pawel

	Column names are matched case-insensitively; see columnAliases. Only the
	login column is mandatory, the others default to "".

LIFETIME:

	A Lookup is built once at startup and never mutated, so it can be shared
	by concurrent request handlers without locking. Inject it where needed;
	there is no package-level roster.
*/
package roster

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Record is one employee row.
type Record struct {
	Login        string
	Name         string
	ShiftPattern string
	Manager      string
}

// Lookup is an immutable login → Record index.
type Lookup struct {
	records map[string]Record
}

// ErrNoLoginColumn is returned when the header has no identifier column.
var ErrNoLoginColumn = errors.New("roster header has no login column")

type column int

const (
	colLogin column = iota
	colName
	colShift
	colManager
)

var columnAliases = map[string]column{
	"user id":       colLogin,
	"userid":        colLogin,
	"login":         colLogin,
	"id":            colLogin,
	"employee name": colName,
	"name":          colName,
	"shift pattern": colShift,
	"shift":         colShift,
	"menago":        colManager,
	"manager":       colManager,
}

// New builds a Lookup from records. Logins are normalized; later records win.
func New(records ...Record) *Lookup {
	l := &Lookup{records: make(map[string]Record, len(records))}
	for _, r := range records {
		r.Login = normalize(r.Login)
		if r.Login == "" {
			continue
		}
		l.records[r.Login] = r
	}
	return l
}

// Empty returns a Lookup with no records.
func Empty() *Lookup { return New() }

// Load reads the roster file at path.
func Load(path string) (*Lookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	l, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	return l, nil
}

// LoadOrEmpty loads path and degrades to an empty Lookup on failure.
// Every login is then unknown, but the process keeps serving.
func LoadOrEmpty(path string, logger logrus.FieldLogger) *Lookup {
	l, err := Load(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Error("Employee roster load failed, continuing with empty roster")
		return Empty()
	}
	logger.WithFields(logrus.Fields{"path": path, "employees": l.Len()}).Info("Employee roster loaded")
	return l
}

// Parse reads a roster from r.
func Parse(r io.Reader) (*Lookup, error) {
	br := bufio.NewReader(r)
	header, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	header = strings.TrimPrefix(header, "\ufeff")
	if strings.TrimSpace(header) == "" {
		return nil, fmt.Errorf("roster is empty")
	}

	cr := csv.NewReader(io.MultiReader(strings.NewReader(header), br))
	cr.Comma = detectDelimiter(header)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	names, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index, err := headerIndex(names)
	if err != nil {
		return nil, err
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rec := Record{
			Login:        field(row, index, colLogin),
			Name:         field(row, index, colName),
			ShiftPattern: field(row, index, colShift),
			Manager:      field(row, index, colManager),
		}
		if normalize(rec.Login) == "" {
			continue
		}
		records = append(records, rec)
	}

	return New(records...), nil
}

// Resolve returns the record for login, case-insensitively.
func (l *Lookup) Resolve(login string) (Record, bool) {
	r, ok := l.records[normalize(login)]
	return r, ok
}

// Len returns the number of employees.
func (l *Lookup) Len() int { return len(l.records) }

// Logins returns every login, sorted.
func (l *Lookup) Logins() []string {
	out := make([]string, 0, len(l.records))
	for login := range l.records {
		out = append(out, login)
	}
	sort.Strings(out)
	return out
}

func headerIndex(names []string) (map[column]int, error) {
	index := make(map[column]int)
	for i, n := range names {
		c, ok := columnAliases[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			continue
		}
		if _, seen := index[c]; !seen {
			index[c] = i
		}
	}
	if _, ok := index[colLogin]; !ok {
		return nil, ErrNoLoginColumn
	}
	return index, nil
}

func field(row []string, index map[column]int, c column) string {
	i, ok := index[c]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func detectDelimiter(header string) rune {
	best, bestCount := ',', strings.Count(header, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(header, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func normalize(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}
