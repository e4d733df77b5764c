package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/roostaq/irasutoya-images-english/internal/logging"
)

// CorruptDataError reports a catalogue document that exists but cannot be
// parsed. It is fatal: processing never starts on top of unreadable data.
type CorruptDataError struct {
	Path string
	Err  error
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt catalogue document %s: %v", e.Path, e.Err)
}

func (e *CorruptDataError) Unwrap() error { return e.Err }

// Store binds the enriched catalogue document to its path and serializes all
// writes to it. It holds no records itself; the orchestrator owns the
// in-memory collection and hands it to Save at checkpoints.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewStore creates a store for the document at path. Call Acquire before the
// first Save to guard against a concurrent run writing the same document.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Path returns the document path the store writes to.
func (s *Store) Path() string { return s.path }

// Acquire takes the store's file lock without blocking. A held lock means
// another run is already enriching this document.
func (s *Store) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire catalogue lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another run already holds %s", s.lock.Path())
	}
	return nil
}

// Release drops the store's file lock.
func (s *Store) Release() {
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release catalogue lock", "path", s.lock.Path(), "error", err)
	}
}

// Load reads the store's document. A missing file yields an empty collection
// (first run).
func (s *Store) Load() ([]Record, error) {
	return LoadFile(s.path)
}

// Save writes the full collection atomically: marshal, write to a temporary
// sibling, rename over the target. A crash mid-write leaves either the old
// document or the new one, never a truncated mix. Safe to call repeatedly for
// checkpointing.
func (s *Store) Save(records []Record) error {
	if records == nil {
		records = []Record{}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal catalogue: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace document: %w", err)
	}

	s.logger.Debug("catalogue checkpoint written", "path", s.path, "records", len(records))
	return nil
}

// LoadFile parses a catalogue document into records. A missing file is not an
// error: it returns an empty collection so a first run starts from nothing.
// Any other read or parse failure is surfaced as *CorruptDataError.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &CorruptDataError{Path: path, Err: err}
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &CorruptDataError{Path: path, Err: err}
	}
	return records, nil
}
