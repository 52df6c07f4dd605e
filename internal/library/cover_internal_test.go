package library

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFirstPage_BracketedPrefix(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "Same [2].page")
	for _, name := range []string{"Same [2].page-01.jpg", "Same 2.page-1.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("jpeg"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	if got, want := firstPage(prefix), prefix+"-01.jpg"; got != want {
		t.Errorf("firstPage = %q, want %q", got, want)
	}
	if got := firstPage(filepath.Join(dir, "Other [x].page")); got != "" {
		t.Errorf("firstPage with no output = %q, want empty", got)
	}
}

// onePagePDF is a minimal single-page document pdftoppm can render.
const onePagePDF = `%PDF-1.4
1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj
2 0 obj << /Type /Pages /Kids [3 0 R] /Count 1 >> endobj
3 0 obj << /Type /Page /Parent 2 0 R /MediaBox [0 0 200 300] >> endobj
trailer << /Root 1 0 R >>
%%EOF
`

func TestExtractCover_BracketedName(t *testing.T) {
	if !PopplerInstalled() {
		t.Skip("pdftoppm not installed")
	}
	m := New(t.TempDir())
	pdf := m.Path("Foo [2nd ed].pdf")
	if err := os.MkdirAll(filepath.Dir(pdf), 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pdf, []byte(onePagePDF), 0600); err != nil {
		t.Fatal(err)
	}

	got := m.ExtractCover(pdf, "Foo [2nd ed].jpg")
	if got != m.Path("Foo [2nd ed].jpg") {
		t.Fatalf("ExtractCover = %q", got)
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(pdf), "*.page-*"))
	if len(leftovers) != 0 {
		t.Errorf("page files left behind: %v", leftovers)
	}
}
