package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// Format is the on-disk encoding of a store file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from the file extension. Anything that is
// not .yml/.yaml is treated as CSV.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatCSV
	}
}

// Load reads a store file from disk.
// A missing file is an empty store; undecodable content wraps ErrCorrupt.
func Load(path string) ([]BookRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []BookRecord{}, nil
		}
		return nil, fmt.Errorf("reading store: %w", err)
	}
	return Parse(data, FormatFor(path))
}

// Parse decodes store bytes in the given format.
func Parse(data []byte, format Format) ([]BookRecord, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []BookRecord{}, nil
	}

	var records []BookRecord
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: parsing YAML: %v", ErrCorrupt, err)
		}
	default:
		if err := gocsv.UnmarshalBytes(data, &records); err != nil {
			if errors.Is(err, gocsv.ErrEmptyCSVFile) {
				return []BookRecord{}, nil
			}
			return nil, fmt.Errorf("%w: parsing CSV: %v", ErrCorrupt, err)
		}
	}

	if records == nil {
		return []BookRecord{}, nil
	}
	for i := range records {
		records[i].Status = normalizeStatus(records[i].Status)
	}
	return records, nil
}
