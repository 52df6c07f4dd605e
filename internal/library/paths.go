// Package library manages the local directory that holds downloaded books
// and their covers.
package library

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/bookpipe/internal/util"
)

// Manager handles files under the library directory.
type Manager struct {
	baseDir string
}

// New creates a Manager rooted at baseDir.
func New(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// Dir returns the library root.
func (m *Manager) Dir() string { return m.baseDir }

// Path returns the full path for a file name.
// Layout: <baseDir>/<name>
func (m *Manager) Path(name string) string {
	return filepath.Join(m.baseDir, name)
}

// Exists reports whether the named file exists.
func (m *Manager) Exists(name string) bool {
	_, err := os.Stat(m.Path(name))
	return err == nil
}

// EnsureDir creates the library directory.
func (m *Manager) EnsureDir() error {
	return util.EnsureDir(m.baseDir)
}

// Remove deletes the named file if it exists.
func (m *Manager) Remove(name string) error {
	err := os.Remove(m.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Usage reports the number of files and total bytes in the library.
// A missing directory is empty.
func (m *Manager) Usage() (files int, bytes int64, err error) {
	err = filepath.WalkDir(m.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == m.baseDir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) == ".tmp" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		bytes += info.Size()
		return nil
	})
	return files, bytes, err
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
