package ingest

import "testing"

func TestGuessFilenameFromURL(t *testing.T) {
	tests := []struct{ url, want string }{
		{"https://example.com/books/sicp.pdf", "sicp.pdf"},
		{"https://example.com/book.pdf?token=abc123", "book.pdf"},
		{"https://example.com", "download"},
		{"https://example.com/", "download"},
	}
	for _, tt := range tests {
		if got := guessFilenameFromURL(tt.url); got != tt.want {
			t.Errorf("guessFilenameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestFilenameFromDisposition(t *testing.T) {
	tests := map[string]string{
		`attachment; filename="Dune.epub"`:      "Dune.epub",
		`attachment; filename="../../etc/x.pdf"`: "x.pdf",
		"":                                      "",
		"garbage;;;":                            "",
	}
	for in, want := range tests {
		if got := filenameFromDisposition(in); got != want {
			t.Errorf("filenameFromDisposition(%q) = %q, want %q", in, got, want)
		}
	}
}
