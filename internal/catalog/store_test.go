package catalog_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)

func newStore(t *testing.T, name string) *catalog.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	return catalog.NewStore(path, nil).WithClock(func() time.Time { return fixedNow })
}

func twoResults() []catalog.BookRecord {
	return []catalog.BookRecord{
		{ID: "1", Title: "First", Authors: catalog.Authors{"A"}, Language: "english", Extension: "pdf"},
		{ID: "2", Title: "Second", Authors: catalog.Authors{"B"}, Language: "german", Extension: "epub"},
	}
}

func TestStore_AddRecords(t *testing.T) {
	s := newStore(t, "books.csv")

	n, err := s.AddRecords(twoResults())
	if err != nil {
		t.Fatalf("AddRecords: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted = %d, want 2", n)
	}

	r, ok := s.GetByID("1")
	if !ok {
		t.Fatal("record 1 missing")
	}
	if r.Status != catalog.StatusPending {
		t.Errorf("Status = %q, want pending", r.Status)
	}
	want := fixedNow.Format(catalog.TimeLayout)
	if r.AddedAt != want || r.UpdatedAt != want {
		t.Errorf("timestamps = %q/%q, want %q", r.AddedAt, r.UpdatedAt, want)
	}
}

func TestStore_AddRecords_Idempotent(t *testing.T) {
	s := newStore(t, "books.csv")
	if _, err := s.AddRecords(twoResults()); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	n, err := s.AddRecords(twoResults())
	if err != nil {
		t.Fatalf("second AddRecords: %v", err)
	}
	if n != 0 {
		t.Errorf("second insert count = %d, want 0", n)
	}
	after, _ := os.ReadFile(s.Path())
	if !bytes.Equal(before, after) {
		t.Error("store changed after re-adding the same records")
	}
}

func TestStore_AddRecords_DuplicateInBatch(t *testing.T) {
	s := newStore(t, "books.yml")
	batch := append(twoResults(), catalog.BookRecord{ID: "1", Title: "Dup"})
	n, err := s.AddRecords(batch)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}
	if r, _ := s.GetByID("1"); r.Title != "First" {
		t.Errorf("Title = %q, want first occurrence kept", r.Title)
	}
}

func TestStore_AddRecords_SkipsBlankID(t *testing.T) {
	s := newStore(t, "books.csv")
	n, err := s.AddRecords([]catalog.BookRecord{{ID: "  ", Title: "No id"}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || len(s.GetAll()) != 0 {
		t.Errorf("blank id inserted: n=%d", n)
	}
}

func TestStore_UpdateStatus_NotFound(t *testing.T) {
	s := newStore(t, "books.csv")
	if _, err := s.AddRecords(twoResults()); err != nil {
		t.Fatal(err)
	}
	before, _ := os.ReadFile(s.Path())

	ok, err := s.UpdateStatus("nope", catalog.StatusDownloading, catalog.Update{})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if ok {
		t.Error("UpdateStatus returned true for missing id")
	}
	after, _ := os.ReadFile(s.Path())
	if !bytes.Equal(before, after) {
		t.Error("store changed after updating a missing id")
	}
}

func TestStore_UpdateStatus_Lifecycle(t *testing.T) {
	s := newStore(t, "books.csv")
	if _, err := s.AddRecords(twoResults()); err != nil {
		t.Fatal(err)
	}

	later := fixedNow.Add(time.Hour)
	s.WithClock(func() time.Time { return later })

	if ok, err := s.UpdateStatus("1", catalog.StatusDownloading, catalog.Update{}); !ok || err != nil {
		t.Fatalf("-> downloading: %v %v", ok, err)
	}
	ok, err := s.UpdateStatus("1", catalog.StatusCompleted, catalog.Update{
		LocalPath:   catalog.Str("downloads/First - A.pdf"),
		DownloadURL: catalog.Str("https://dl.example/1"),
	})
	if !ok || err != nil {
		t.Fatalf("-> completed: %v %v", ok, err)
	}
	ok, err = s.UpdateStatus("1", catalog.StatusCompleted, catalog.Update{DriveLink: catalog.Str("https://cloud/1")})
	if !ok || err != nil {
		t.Fatalf("add drive link: %v %v", ok, err)
	}

	r, _ := s.GetByID("1")
	if r.Status != catalog.StatusCompleted || r.LocalPath == "" || r.DriveLink != "https://cloud/1" {
		t.Errorf("record = %+v", r)
	}
	if r.DownloadURL != "https://dl.example/1" {
		t.Errorf("DownloadURL = %q", r.DownloadURL)
	}
	if r.UpdatedAt != later.Format(catalog.TimeLayout) {
		t.Errorf("UpdatedAt = %q, want refreshed", r.UpdatedAt)
	}
	if r.AddedAt != fixedNow.Format(catalog.TimeLayout) {
		t.Errorf("AddedAt changed to %q", r.AddedAt)
	}
}

func TestStore_UpdateStatus_RejectsSkippingDownloading(t *testing.T) {
	s := newStore(t, "books.csv")
	if _, err := s.AddRecords(twoResults()); err != nil {
		t.Fatal(err)
	}
	for _, st := range []catalog.Status{catalog.StatusCompleted, catalog.StatusError} {
		ok, err := s.UpdateStatus("1", st, catalog.Update{})
		if !ok {
			t.Errorf("%s: expected found", st)
		}
		if !errors.Is(err, catalog.ErrInvalidTransition) {
			t.Errorf("pending -> %s err = %v, want ErrInvalidTransition", st, err)
		}
	}
	if r, _ := s.GetByID("1"); r.Status != catalog.StatusPending {
		t.Errorf("Status = %q after rejected transitions", r.Status)
	}
}

func TestStore_UpdateStatus_ValidatesFields(t *testing.T) {
	s := newStore(t, "books.csv")
	if _, err := s.AddRecords(twoResults()); err != nil {
		t.Fatal(err)
	}

	_, err := s.UpdateStatus("1", catalog.StatusDownloading, catalog.Update{LocalPath: catalog.Str("x.pdf")})
	if !errors.Is(err, catalog.ErrInvalidUpdate) {
		t.Errorf("local_path while downloading: err = %v", err)
	}

	if _, err := s.UpdateStatus("2", catalog.StatusDownloading, catalog.Update{}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpdateStatus("2", catalog.StatusCompleted, catalog.Update{}); err != nil {
		t.Fatal(err)
	}
	_, err = s.UpdateStatus("2", catalog.StatusCompleted, catalog.Update{DriveLink: catalog.Str("https://cloud/2")})
	if !errors.Is(err, catalog.ErrInvalidUpdate) {
		t.Errorf("drive_link without local_path: err = %v", err)
	}
}

func TestStore_Reset(t *testing.T) {
	s := newStore(t, "books.csv")
	if _, err := s.AddRecords(twoResults()); err != nil {
		t.Fatal(err)
	}
	_, _ = s.UpdateStatus("1", catalog.StatusDownloading, catalog.Update{})
	_, _ = s.UpdateStatus("1", catalog.StatusError, catalog.Update{})

	n, err := s.Reset(catalog.StatusError)
	if err != nil || n != 1 {
		t.Fatalf("Reset = %d, %v", n, err)
	}
	if r, _ := s.GetByID("1"); r.Status != catalog.StatusPending {
		t.Errorf("Status = %q, want pending", r.Status)
	}
	if _, err := s.Reset(catalog.StatusCompleted); !errors.Is(err, catalog.ErrInvalidTransition) {
		t.Errorf("Reset(completed) err = %v", err)
	}
}

func TestStore_Remove(t *testing.T) {
	s := newStore(t, "books.csv")
	if _, err := s.AddRecords(twoResults()); err != nil {
		t.Fatal(err)
	}
	if ok, err := s.Remove("2"); !ok || err != nil {
		t.Fatalf("Remove = %v, %v", ok, err)
	}
	if len(s.GetAll()) != 1 {
		t.Errorf("expected 1 record after remove")
	}
}

func TestStore_GetByStatusAndStatistics(t *testing.T) {
	s := newStore(t, "books.csv")
	if _, err := s.AddRecords(twoResults()); err != nil {
		t.Fatal(err)
	}
	_, _ = s.UpdateStatus("2", catalog.StatusDownloading, catalog.Update{})

	if got := s.GetByStatus(catalog.StatusPending); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("GetByStatus(pending) = %v", ids(got))
	}
	st := s.ComputeStatistics()
	if st.TotalCount != 2 || st.StatusCounts[catalog.StatusDownloading] != 1 {
		t.Errorf("stats = %+v", st)
	}
	if st.LanguageCounts["german"] != 1 {
		t.Errorf("LanguageCounts = %v", st.LanguageCounts)
	}
}

func TestStore_SearchColumn(t *testing.T) {
	s := newStore(t, "books.csv")
	if _, err := s.AddRecords(twoResults()); err != nil {
		t.Fatal(err)
	}
	got, err := s.Search("GERM", "language")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("Search = %v", ids(got))
	}
}

func TestStore_CorruptFileIsEmpty(t *testing.T) {
	s := newStore(t, "books.csv")
	if err := os.WriteFile(s.Path(), []byte("id,title\n1,a,b,c\n\"unterminated"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := s.GetAll(); len(got) != 0 {
		t.Errorf("corrupt store returned %d records", len(got))
	}
	n, err := s.AddRecords(twoResults())
	if err != nil || n != 2 {
		t.Errorf("AddRecords over corrupt store = %d, %v", n, err)
	}
}

func TestStore_WriteFailureReported(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	s := catalog.NewStore(filepath.Join(blocker, "books.csv"), nil)

	n, err := s.AddRecords(twoResults())
	if err == nil {
		t.Fatal("expected write error")
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2 even when save fails", n)
	}
}

func TestStore_MissingFileIsEmpty(t *testing.T) {
	s := newStore(t, "absent.csv")
	if len(s.GetAll()) != 0 {
		t.Error("missing store should be empty")
	}
	if _, ok := s.GetByID("1"); ok {
		t.Error("GetByID on empty store returned ok")
	}
}
