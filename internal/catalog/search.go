package catalog

import (
	"fmt"
	"strings"
)

// Filter applies all non-empty criteria and returns matching records.
type Filter struct {
	Status   Status
	Language string
	Format   string
	Search   string // matches title, authors or publisher
	Uploaded *bool
}

// Apply returns the subset of records matching all non-empty filter fields.
func (f Filter) Apply(records []BookRecord) []BookRecord {
	var out []BookRecord
	for _, r := range records {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Language != "" && !strings.EqualFold(r.Language, f.Language) {
			continue
		}
		if f.Format != "" && !strings.EqualFold(strings.TrimPrefix(r.Extension, "."), strings.TrimPrefix(f.Format, ".")) {
			continue
		}
		if f.Uploaded != nil && r.Uploaded() != *f.Uploaded {
			continue
		}
		if f.Search != "" && !matchesSearch(r, f.Search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ByID returns the first record with the given ID, or nil.
func ByID(records []BookRecord, id string) *BookRecord {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}

// SearchColumns are the column names accepted by Search.
var SearchColumns = []string{"title", "authors", "publisher", "language", "extension", "year", "isbn", "search_query"}

// Search returns records whose column contains query, case-insensitively.
// An empty column searches title, authors and publisher.
func Search(records []BookRecord, query, column string) ([]BookRecord, error) {
	if column == "" {
		return Filter{Search: query}.Apply(records), nil
	}

	get, err := columnGetter(column)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []BookRecord
	for _, r := range records {
		if strings.Contains(strings.ToLower(get(r)), q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func columnGetter(column string) (func(BookRecord) string, error) {
	switch strings.ToLower(column) {
	case "title":
		return func(r BookRecord) string { return r.Title }, nil
	case "authors", "author":
		return BookRecord.AuthorLine, nil
	case "publisher":
		return func(r BookRecord) string { return r.Publisher }, nil
	case "language":
		return func(r BookRecord) string { return r.Language }, nil
	case "extension", "format":
		return func(r BookRecord) string { return r.Extension }, nil
	case "year":
		return func(r BookRecord) string { return r.Year }, nil
	case "isbn":
		return func(r BookRecord) string { return r.ISBN }, nil
	case "search_query":
		return func(r BookRecord) string { return r.SearchQuery }, nil
	default:
		return nil, fmt.Errorf("unknown search column %q", column)
	}
}

func matchesSearch(r BookRecord, q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(r.Title), q) {
		return true
	}
	for _, a := range r.Authors {
		if strings.Contains(strings.ToLower(a), q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(r.Publisher), q)
}
