package library

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// StoreCover saves a cover image under name. Returns the stored path, or
// empty string on failure: covers are never worth failing a book over.
func (m *Manager) StoreCover(name string, r io.Reader) string {
	path, err := m.Store(name, r)
	if err != nil {
		return ""
	}
	return path
}

// ExtractCover renders the first page of a PDF as a JPEG named coverName.
// Returns the cover path, or empty string when pdftoppm is unavailable or
// the book is not a PDF.
func (m *Manager) ExtractCover(pdfPath, coverName string) string {
	if !isPDF(pdfPath) {
		return ""
	}
	if !PopplerInstalled() {
		return ""
	}
	if err := m.EnsureDir(); err != nil {
		return ""
	}

	coverPath := m.Path(coverName)
	outputPrefix := strings.TrimSuffix(coverPath, filepath.Ext(coverPath)) + ".page"

	// -f 1 -l 1: first page only; -scale-to 300: max 300px edge.
	cmd := exec.Command("pdftoppm",
		"-jpeg",
		"-f", "1",
		"-l", "1",
		"-scale-to", "300",
		"-jpegopt", "quality=85",
		pdfPath,
		outputPrefix,
	)
	if err := cmd.Run(); err != nil {
		if page := firstPage(outputPrefix); page != "" {
			_ = os.Remove(page)
		}
		return ""
	}

	page := firstPage(outputPrefix)
	if page == "" {
		return ""
	}
	_ = os.Remove(coverPath)
	if err := os.Rename(page, coverPath); err != nil {
		_ = os.Remove(page)
		return ""
	}
	return coverPath
}

// firstPage finds the file pdftoppm wrote for page 1. It zero-pads the
// page number to the digit count of the last page, so the name is one of
// <prefix>-1.jpg, <prefix>-01.jpg and so on. Each name is checked with Stat
// rather than globbed because titles may contain '[' or '*'.
func firstPage(prefix string) string {
	for width := 1; width <= 6; width++ {
		p := fmt.Sprintf("%s-%0*d.jpg", prefix, width, 1)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// PopplerInstalled reports whether pdftoppm is on PATH.
func PopplerInstalled() bool {
	_, err := exec.LookPath("pdftoppm")
	return err == nil
}

// PopplerHint tells the user how to install pdftoppm for the current OS.
func PopplerHint() string {
	const lead = "Tip: install poppler to extract covers from PDFs without one:\n  "
	switch runtime.GOOS {
	case "darwin":
		return lead + "brew install poppler"
	case "windows":
		return lead + "choco install poppler"
	default:
		return lead + "sudo apt install poppler-utils  (or your distro's poppler package)"
	}
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
