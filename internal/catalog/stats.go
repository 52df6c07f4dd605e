package catalog

import "sort"

// Statistics is an aggregate view over every record in the store.
type Statistics struct {
	TotalCount         int            `json:"total_books"`
	StatusCounts       map[Status]int `json:"status_counts"`
	LanguageCounts     map[string]int `json:"language_counts"`
	ExtensionCounts    map[string]int `json:"extension_counts"`
	BooksWithDriveLink int            `json:"books_with_drive_link"`
	DownloadedCount    int            `json:"downloaded_books"`
}

// ComputeStatistics aggregates records. Blank languages and extensions are
// not counted.
func ComputeStatistics(records []BookRecord) Statistics {
	st := Statistics{
		TotalCount:      len(records),
		StatusCounts:    map[Status]int{},
		LanguageCounts:  map[string]int{},
		ExtensionCounts: map[string]int{},
	}
	for _, r := range records {
		st.StatusCounts[r.Status]++
		if r.Language != "" {
			st.LanguageCounts[r.Language]++
		}
		if r.Extension != "" {
			st.ExtensionCounts[r.Extension]++
		}
		if r.DriveLink != "" {
			st.BooksWithDriveLink++
		}
		if r.Status == StatusCompleted {
			st.DownloadedCount++
		}
	}
	return st
}

// Languages returns the distinct non-empty languages, sorted.
func (s Statistics) Languages() []string {
	return sortedKeys(s.LanguageCounts)
}

// Extensions returns the distinct non-empty extensions, sorted.
func (s Statistics) Extensions() []string {
	return sortedKeys(s.ExtensionCounts)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
