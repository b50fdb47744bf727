package overtime

import (
	"fmt"
	"strings"
)

// DefaultOtherBucket collects every manager the alias table does not know.
const DefaultOtherBucket = "Inni"

// ManagerBucket is one canonical manager name and the roster spellings that
// map to it. The canonical name itself always matches.
type ManagerBucket struct {
	Name    string
	Aliases []string
}

// DefaultManagerBuckets are the six quarterly tables shown on the board.
// The roster writes names without Polish diacritics, so both spellings map.
var DefaultManagerBuckets = []ManagerBucket{
	{Name: "Paweł", Aliases: []string{"pawel"}},
	{Name: "Michał", Aliases: []string{"michal"}},
	{Name: "Mariia"},
	{Name: "Aleksy"},
	{Name: "Piotr"},
	{Name: "Daria"},
}

// ManagerTable resolves free-text manager names to summary buckets.
// It is immutable after construction and safe for concurrent use.
type ManagerTable struct {
	names   []string
	aliases map[string]string
	other   string
}

// NewManagerTable validates and indexes the buckets.
func NewManagerTable(buckets []ManagerBucket, other string) (*ManagerTable, error) {
	other = strings.TrimSpace(other)
	if other == "" {
		other = DefaultOtherBucket
	}

	t := &ManagerTable{
		names:   make([]string, 0, len(buckets)),
		aliases: make(map[string]string),
		other:   other,
	}

	for _, b := range buckets {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			return nil, fmt.Errorf("manager bucket with empty name")
		}
		if name == other {
			return nil, fmt.Errorf("manager bucket %q collides with the catch-all bucket", name)
		}
		for _, existing := range t.names {
			if existing == name {
				return nil, fmt.Errorf("manager bucket %q listed twice", name)
			}
		}
		t.names = append(t.names, name)

		for _, alias := range append([]string{name}, b.Aliases...) {
			key := NormalizeManager(alias)
			if key == "" {
				continue
			}
			if owner, ok := t.aliases[key]; ok && owner != name {
				return nil, fmt.Errorf("alias %q maps to both %q and %q", alias, owner, name)
			}
			t.aliases[key] = name
		}
	}

	return t, nil
}

// DefaultManagerTable returns the built-in table.
func DefaultManagerTable() *ManagerTable {
	t, err := NewManagerTable(DefaultManagerBuckets, DefaultOtherBucket)
	if err != nil {
		panic(err)
	}
	return t
}

// Resolve maps raw roster text to a bucket name, falling back to Other().
func (t *ManagerTable) Resolve(raw string) string {
	if name, ok := t.aliases[NormalizeManager(raw)]; ok {
		return name
	}
	return t.other
}

// Names returns the canonical bucket names in display order, without the catch-all.
func (t *ManagerTable) Names() []string {
	return append([]string(nil), t.names...)
}

// Buckets returns every bucket name, canonical ones first, catch-all last.
func (t *ManagerTable) Buckets() []string {
	return append(t.Names(), t.other)
}

// Other returns the catch-all bucket name.
func (t *ManagerTable) Other() string { return t.other }

// NormalizeManager trims, collapses internal whitespace and lowercases.
func NormalizeManager(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
