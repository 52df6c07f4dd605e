// Package render produces the static HTML catalog and statistics pages.
package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/blackwell-systems/bookpipe/internal/util"
)

// DefaultTitle heads the catalog page when Options.Title is empty.
const DefaultTitle = "Book Catalog"

// Options controls page rendering.
type Options struct {
	Title string
	// BaseDir is the directory the page is written to. Local cover and book
	// paths are made relative to it so the page works when moved together
	// with the library.
	BaseDir string
	// GeneratedAt stamps the footer. Zero means time.Now.
	GeneratedAt time.Time
	// LibraryFiles and LibraryBytes describe the local download directory on
	// the stats page. Zero values hide the card.
	LibraryFiles int
	LibraryBytes int64
}

func (o Options) title() string {
	if o.Title == "" {
		return DefaultTitle
	}
	return o.Title
}

func (o Options) generatedAt() time.Time {
	if o.GeneratedAt.IsZero() {
		return time.Now()
	}
	return o.GeneratedAt
}

// WriteFile renders into path atomically: content goes to a temp file in
// the same directory and is renamed into place once fn succeeds.
func WriteFile(path string, fn func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := util.EnsureDir(dir); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}

	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func relLink(baseDir, path string) string {
	if path == "" {
		return ""
	}
	if baseDir != "" && filepath.IsAbs(path) == filepath.IsAbs(baseDir) {
		if rel, err := filepath.Rel(baseDir, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	if filepath.IsAbs(path) {
		return "file://" + filepath.ToSlash(path)
	}
	return filepath.ToSlash(path)
}
