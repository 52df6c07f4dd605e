package library

import (
	"fmt"
	"io"
	"os"
)

// Store writes r to the named file in the library and returns its path.
//
// Bytes go to name+".tmp" first and are renamed into place only after the
// copy succeeded, so a failed or interrupted write never leaves a partial
// file under the final name. Callers that need a digest hash the stream
// on their side (ingest.Reader).
func (m *Manager) Store(name string, r io.Reader) (string, error) {
	if err := m.EnsureDir(); err != nil {
		return "", fmt.Errorf("create library dir: %w", err)
	}

	dest := m.Path(name)
	tmp := dest + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return dest, nil
}
