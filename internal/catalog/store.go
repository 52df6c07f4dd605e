package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimeLayout is the timestamp format written to added_at/updated_at.
const TimeLayout = "2006-01-02T15:04:05"

// Store is the file-backed metadata store and the only writer of its file.
// Every operation runs load → modify → save over the whole file.
type Store struct {
	path   string
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

// NewStore creates a store over the file at path. The format follows the
// file extension (see FormatFor).
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:   path,
		logger: logger.With(zap.String("store", path)),
		now:    time.Now,
	}
}

// WithClock replaces the time source used for timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// load never fails: an unreadable or corrupt file degrades to an empty store.
func (s *Store) load() []BookRecord {
	records, err := Load(s.path)
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			s.logger.Warn("store file is corrupt, treating as empty", zap.Error(err))
		} else {
			s.logger.Warn("store file unreadable, treating as empty", zap.Error(err))
		}
		return []BookRecord{}
	}
	return records
}

func (s *Store) save(records []BookRecord) error {
	if err := Save(s.path, records); err != nil {
		s.logger.Error("saving store", zap.Error(err))
		return err
	}
	return nil
}

// update loads the store, applies fn, and saves when fn reports a change.
func (s *Store) update(fn func([]BookRecord) ([]BookRecord, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, changed, err := fn(s.load())
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.save(records)
}

func (s *Store) timestamp() string {
	return s.now().Format(TimeLayout)
}

// AddRecords appends records whose ID is not yet stored and returns how
// many were inserted. New records start pending with fresh timestamps.
func (s *Store) AddRecords(records []BookRecord) (int, error) {
	inserted := 0
	err := s.update(func(existing []BookRecord) ([]BookRecord, bool, error) {
		ts := s.timestamp()
		for _, r := range records {
			r.ID = strings.TrimSpace(r.ID)
			if r.ID == "" {
				s.logger.Warn("skipping record without id", zap.String("title", r.Title))
				continue
			}
			r.Status = StatusPending
			r.AddedAt = ts
			r.UpdatedAt = ts
			var added bool
			existing, added = AppendNew(existing, r)
			if added {
				inserted++
			}
		}
		return existing, inserted > 0, nil
	})
	if err != nil {
		return inserted, err
	}
	s.logger.Info("records added", zap.Int("inserted", inserted), zap.Int("offered", len(records)))
	return inserted, nil
}

// UpdateStatus moves the record with id to status and merges the non-nil
// fields of upd. It returns false, and leaves the store untouched, when id
// does not exist. A save error is returned with true: the change was
// applied but may not be on disk.
func (s *Store) UpdateStatus(id string, status Status, upd Update) (bool, error) {
	found := false
	err := s.update(func(records []BookRecord) ([]BookRecord, bool, error) {
		r := ByID(records, id)
		if r == nil {
			return records, false, nil
		}
		found = true

		if !r.Status.CanTransition(status) {
			return nil, false, fmt.Errorf("%w: %s -> %s for %s", ErrInvalidTransition, r.Status, status, id)
		}
		if err := upd.validate(*r, status); err != nil {
			return nil, false, fmt.Errorf("%s: %w", id, err)
		}

		r.Status = status
		upd.apply(r)
		r.UpdatedAt = s.timestamp()
		return records, true, nil
	})
	if found && err == nil {
		s.logger.Debug("status updated", zap.String("id", id), zap.Stringer("status", status))
	}
	return found, err
}

// Reset moves every record in one of the given statuses back to pending
// and returns how many moved. Only statuses that may return to pending are
// accepted.
func (s *Store) Reset(from ...Status) (int, error) {
	for _, st := range from {
		if st == StatusPending || !st.CanTransition(StatusPending) {
			return 0, fmt.Errorf("%w: cannot reset %s records", ErrInvalidTransition, st)
		}
	}

	n := 0
	err := s.update(func(records []BookRecord) ([]BookRecord, bool, error) {
		ts := s.timestamp()
		for i := range records {
			for _, st := range from {
				if records[i].Status == st {
					records[i].Status = StatusPending
					records[i].DownloadURL = ""
					records[i].UpdatedAt = ts
					n++
					break
				}
			}
		}
		return records, n > 0, nil
	})
	return n, err
}

// Remove deletes a record. It reports whether the id existed.
func (s *Store) Remove(id string) (bool, error) {
	var found bool
	err := s.update(func(records []BookRecord) ([]BookRecord, bool, error) {
		records, found = Remove(records, id)
		return records, found, nil
	})
	return found, err
}

// GetAll returns every record in file order.
func (s *Store) GetAll() []BookRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// GetByStatus returns the records currently in status.
func (s *Store) GetByStatus(status Status) []BookRecord {
	return Filter{Status: status}.Apply(s.GetAll())
}

// GetByID returns the record with id.
func (s *Store) GetByID(id string) (BookRecord, bool) {
	if r := ByID(s.GetAll(), id); r != nil {
		return *r, true
	}
	return BookRecord{}, false
}

// Search matches query against column (or title/authors/publisher when
// column is empty).
func (s *Store) Search(query, column string) ([]BookRecord, error) {
	return Search(s.GetAll(), query, column)
}

// ComputeStatistics aggregates the current file contents.
func (s *Store) ComputeStatistics() Statistics {
	return ComputeStatistics(s.GetAll())
}
