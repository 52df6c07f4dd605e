package catalog_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
)

var sampleCSV = []byte(`id,title,authors,year,publisher,language,extension,url,download_status,local_path,drive_link
1,Structure and Interpretation of Computer Programs,"Harold Abelson, Gerald Jay Sussman",1996,MIT Press,english,pdf,https://z-lib.io/book/1/abc123/sicp,completed,downloads/sicp.pdf,https://cloud.example/sicp
2,Operating Systems: Three Easy Pieces,Remzi Arpaci-Dusseau,2018,Arpaci-Dusseau Books,english,epub,https://z-lib.io/book/2/def456/ostep,pending,,
3,Le Petit Prince,Antoine de Saint-Exupéry,1943,Gallimard,french,pdf,,bogus,,
`)

var sampleYAML = []byte(`
- id: "10"
  title: "The Go Programming Language"
  authors: [Alan Donovan, Brian Kernighan]
  language: english
  extension: pdf
  download_status: completed
  local_path: downloads/gopl.pdf

- id: "11"
  title: "Concurrency in Go"
  authors: [Katherine Cox-Buday]
  extension: epub
  download_status: pending
`)

// --- Parse / Marshal round-trip ---

func TestParse_CSV(t *testing.T) {
	records, err := catalog.Parse(sampleCSV, catalog.FormatCSV)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].ID != "1" {
		t.Errorf("records[0].ID = %q, want %q", records[0].ID, "1")
	}
	if got := records[0].Authors; len(got) != 2 || got[1] != "Gerald Jay Sussman" {
		t.Errorf("records[0].Authors = %v", got)
	}
	if records[0].SourceURL != "https://z-lib.io/book/1/abc123/sicp" {
		t.Errorf("legacy url column not mapped: %q", records[0].SourceURL)
	}
	if records[1].Status != catalog.StatusPending {
		t.Errorf("records[1].Status = %q, want pending", records[1].Status)
	}
}

func TestParse_UnknownStatusBecomesPending(t *testing.T) {
	records, err := catalog.Parse(sampleCSV, catalog.FormatCSV)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if records[2].Status != catalog.StatusPending {
		t.Errorf("records[2].Status = %q, want pending", records[2].Status)
	}
}

func TestParse_YAML(t *testing.T) {
	records, err := catalog.Parse(sampleYAML, catalog.FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].AuthorLine() != "Alan Donovan, Brian Kernighan" {
		t.Errorf("AuthorLine = %q", records[0].AuthorLine())
	}
}

func TestParse_Empty(t *testing.T) {
	for _, f := range []catalog.Format{catalog.FormatCSV, catalog.FormatYAML} {
		records, err := catalog.Parse([]byte("  \n"), f)
		if err != nil {
			t.Fatalf("Parse empty %s: %v", f, err)
		}
		if len(records) != 0 {
			t.Errorf("expected 0 records, got %d", len(records))
		}
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	records, err := catalog.Parse([]byte("id,title,authors\n"), catalog.FormatCSV)
	if err != nil {
		t.Fatalf("Parse header only: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected 0 records, got %d", len(records))
	}
}

func TestParse_CorruptCSV(t *testing.T) {
	_, err := catalog.Parse([]byte("id,title\n1,a,b,c\n"), catalog.FormatCSV)
	if !errors.Is(err, catalog.ErrCorrupt) {
		t.Errorf("Parse corrupt CSV = %v, want ErrCorrupt", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := catalog.Parse([]byte(":: bad yaml ["), catalog.FormatYAML)
	if !errors.Is(err, catalog.ErrCorrupt) {
		t.Errorf("Parse invalid YAML = %v, want ErrCorrupt", err)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	for _, f := range []catalog.Format{catalog.FormatCSV, catalog.FormatYAML} {
		records, err := catalog.Parse(sampleCSV, catalog.FormatCSV)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		data, err := catalog.Marshal(records, f)
		if err != nil {
			t.Fatalf("Marshal %s: %v", f, err)
		}
		again, err := catalog.Parse(data, f)
		if err != nil {
			t.Fatalf("re-Parse %s: %v", f, err)
		}
		if len(again) != len(records) {
			t.Fatalf("%s round-trip length: got %d, want %d", f, len(again), len(records))
		}
		for i := range records {
			if records[i].ID != again[i].ID || records[i].AuthorLine() != again[i].AuthorLine() {
				t.Errorf("%s [%d] mismatch: %+v vs %+v", f, i, records[i], again[i])
			}
		}
	}
}

func TestMarshal_CSVHeader(t *testing.T) {
	data, err := catalog.Marshal(nil, catalog.FormatCSV)
	if err != nil {
		t.Fatalf("Marshal empty: %v", err)
	}
	header := strings.TrimSpace(string(data))
	for _, col := range []string{"id", "source_url", "cover_url", "download_status", "drive_link", "added_at", "updated_at"} {
		if !strings.Contains(header, col) {
			t.Errorf("header %q missing column %q", header, col)
		}
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]catalog.Format{
		"books.csv":      catalog.FormatCSV,
		"books.yml":      catalog.FormatYAML,
		"dir/Books.YAML": catalog.FormatYAML,
		"noext":          catalog.FormatCSV,
	}
	for path, want := range tests {
		if got := catalog.FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %q, want %q", path, got, want)
		}
	}
}

// --- AppendNew / Remove ---

func TestAppendNew(t *testing.T) {
	records, _ := catalog.Parse(sampleCSV, catalog.FormatCSV)
	records, added := catalog.AppendNew(records, catalog.BookRecord{ID: "4", Title: "New"})
	if !added || len(records) != 4 {
		t.Errorf("AppendNew new: added=%v len=%d", added, len(records))
	}
	records, added = catalog.AppendNew(records, catalog.BookRecord{ID: "1", Title: "Dup"})
	if added || len(records) != 4 {
		t.Errorf("AppendNew dup: added=%v len=%d", added, len(records))
	}
	if records[0].Title == "Dup" {
		t.Error("AppendNew replaced an existing record")
	}
}

func TestRemove(t *testing.T) {
	records, _ := catalog.Parse(sampleCSV, catalog.FormatCSV)
	records, ok := catalog.Remove(records, "2")
	if !ok || len(records) != 2 {
		t.Errorf("Remove existing: ok=%v len=%d", ok, len(records))
	}
	_, ok = catalog.Remove(records, "nope")
	if ok {
		t.Error("Remove returned ok=true for missing record")
	}
}

// --- Filter / Search ---

func TestFilter(t *testing.T) {
	records, _ := catalog.Parse(sampleCSV, catalog.FormatCSV)
	yes := true

	tests := []struct {
		name string
		f    catalog.Filter
		want []string
	}{
		{"empty", catalog.Filter{}, []string{"1", "2", "3"}},
		{"status", catalog.Filter{Status: catalog.StatusPending}, []string{"2", "3"}},
		{"language", catalog.Filter{Language: "FRENCH"}, []string{"3"}},
		{"format", catalog.Filter{Format: ".pdf"}, []string{"1", "3"}},
		{"search author", catalog.Filter{Search: "sussman"}, []string{"1"}},
		{"search publisher", catalog.Filter{Search: "gallimard"}, []string{"3"}},
		{"uploaded", catalog.Filter{Uploaded: &yes}, []string{"1"}},
		{"combined", catalog.Filter{Format: "pdf", Status: catalog.StatusPending}, []string{"3"}},
		{"no match", catalog.Filter{Search: "zzz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.f.Apply(records))
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearch_Column(t *testing.T) {
	records, _ := catalog.Parse(sampleCSV, catalog.FormatCSV)
	got, err := catalog.Search(records, "199", "year")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Errorf("year search: got %v", ids(got))
	}
	if _, err := catalog.Search(records, "x", "shoe_size"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestByID(t *testing.T) {
	records, _ := catalog.Parse(sampleCSV, catalog.FormatCSV)
	if r := catalog.ByID(records, "2"); r == nil || r.Extension != "epub" {
		t.Errorf("ByID(2) = %+v", r)
	}
	if catalog.ByID(records, "missing") != nil {
		t.Error("ByID returned non-nil for missing record")
	}
}

// --- Status ---

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to catalog.Status
		want     bool
	}{
		{catalog.StatusPending, catalog.StatusDownloading, true},
		{catalog.StatusPending, catalog.StatusCompleted, false},
		{catalog.StatusPending, catalog.StatusError, false},
		{catalog.StatusDownloading, catalog.StatusCompleted, true},
		{catalog.StatusDownloading, catalog.StatusError, true},
		{catalog.StatusCompleted, catalog.StatusCompleted, true},
		{catalog.StatusCompleted, catalog.StatusPending, false},
		{catalog.StatusError, catalog.StatusPending, true},
		{catalog.StatusError, catalog.StatusCompleted, false},
		{catalog.StatusPending, catalog.Status("weird"), false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if st, err := catalog.ParseStatus(" Completed "); err != nil || st != catalog.StatusCompleted {
		t.Errorf("ParseStatus = %q, %v", st, err)
	}
	if _, err := catalog.ParseStatus("uploaded"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestSplitAuthors(t *testing.T) {
	if got := catalog.SplitAuthors("A; B ;C"); len(got) != 3 || got[1] != "B" {
		t.Errorf("SplitAuthors semicolons = %v", got)
	}
	if got := catalog.SplitAuthors(""); got != nil {
		t.Errorf("SplitAuthors empty = %v", got)
	}
}

// --- Statistics ---

func TestComputeStatistics(t *testing.T) {
	records, _ := catalog.Parse(sampleCSV, catalog.FormatCSV)
	st := catalog.ComputeStatistics(records)

	if st.TotalCount != 3 {
		t.Errorf("TotalCount = %d, want 3", st.TotalCount)
	}
	if st.StatusCounts[catalog.StatusCompleted] != 1 || st.StatusCounts[catalog.StatusPending] != 2 {
		t.Errorf("StatusCounts = %v", st.StatusCounts)
	}
	if st.LanguageCounts["english"] != 2 || st.LanguageCounts["french"] != 1 {
		t.Errorf("LanguageCounts = %v", st.LanguageCounts)
	}
	if st.ExtensionCounts["pdf"] != 2 {
		t.Errorf("ExtensionCounts = %v", st.ExtensionCounts)
	}
	if st.BooksWithDriveLink != 1 || st.DownloadedCount != 1 {
		t.Errorf("BooksWithDriveLink=%d DownloadedCount=%d", st.BooksWithDriveLink, st.DownloadedCount)
	}
	if got := strings.Join(st.Languages(), ","); got != "english,french" {
		t.Errorf("Languages = %q", got)
	}
	if got := strings.Join(st.Extensions(), ","); got != "epub,pdf" {
		t.Errorf("Extensions = %q", got)
	}
}

func ids(records []catalog.BookRecord) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
