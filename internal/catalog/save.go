package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// Marshal encodes records in the given format. CSV output always carries
// the header row, even for an empty store.
func Marshal(records []BookRecord, format Format) ([]byte, error) {
	if records == nil {
		records = []BookRecord{}
	}

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return nil, fmt.Errorf("encoding store: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := gocsv.MarshalBytes(&records)
		if err != nil {
			return nil, fmt.Errorf("encoding store: %w", err)
		}
		return data, nil
	}
}

// Save writes records to path, replacing the file atomically.
func Save(path string, records []BookRecord) error {
	data, err := Marshal(records, FormatFor(path))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating store directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing store: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing store: %w", err)
	}
	return nil
}

// AppendNew adds r unless a record with the same ID already exists.
// It reports whether r was added.
func AppendNew(records []BookRecord, r BookRecord) ([]BookRecord, bool) {
	if ByID(records, r.ID) != nil {
		return records, false
	}
	return append(records, r), true
}

// Remove removes a record by ID. Returns the updated slice and whether a
// record was actually removed.
func Remove(records []BookRecord, id string) ([]BookRecord, bool) {
	for i, r := range records {
		if r.ID == id {
			return append(records[:i], records[i+1:]...), true
		}
	}
	return records, false
}
