package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saudeviva/clinic-agenda/internal/observability/metrics"
)

// Store defines persistence operations for appointments.
type Store interface {
	Load(ctx context.Context) ([]Appointment, error)
	Save(ctx context.Context, appts []Appointment) error
	Add(ctx context.Context, appt Appointment) (Appointment, error)
	Remove(ctx context.Context, id string) (bool, error)
	FindByDate(ctx context.Context, date time.Time) ([]Appointment, error)
}

// FileStore persists the full appointment collection in a single JSON file.
// Mutations are load-mutate-persist units serialized by a mutex; the process
// is the only writer (no cross-process locking).
type FileStore struct {
	path    string
	mu      sync.Mutex
	newID   func() string
	metrics *metrics.StoreMetrics
}

// FileStoreOption customizes a FileStore during construction.
type FileStoreOption func(*FileStore)

// WithIDGenerator overrides identifier generation, used by tests.
func WithIDGenerator(gen func() string) FileStoreOption {
	return func(s *FileStore) {
		s.newID = gen
	}
}

// WithStoreMetrics attaches write instrumentation.
func WithStoreMetrics(m *metrics.StoreMetrics) FileStoreOption {
	return func(s *FileStore) {
		s.metrics = m
	}
}

// NewFileStore creates a store backed by the given file path. The file does
// not need to exist yet.
func NewFileStore(path string, opts ...FileStoreOption) *FileStore {
	if path == "" {
		panic("appointment: store path required")
	}
	store := &FileStore{
		path:  path,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Load reads the backing file. A missing or empty file is the first-run case
// and yields an empty collection.
func (s *FileStore) Load(ctx context.Context) ([]Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save rewrites the backing file with the given collection.
func (s *FileStore) Save(ctx context.Context, appts []Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(appts)
}

// Add assigns a fresh identifier, appends the appointment and persists the
// collection, returning the stored record.
func (s *FileStore) Add(ctx context.Context, appt Appointment) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadLocked()
	if err != nil {
		return Appointment{}, err
	}

	appt.ID = s.newID()
	appt.StartAt = appt.StartAt.Truncate(time.Minute)
	if err := s.saveLocked(append(existing, appt)); err != nil {
		return Appointment{}, err
	}
	return appt, nil
}

// Remove deletes the appointment with the given identifier. An unknown id is
// a non-error outcome reported through the boolean.
func (s *FileStore) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadLocked()
	if err != nil {
		return false, err
	}

	kept := existing[:0]
	removed := false
	for _, appt := range existing {
		if appt.ID == id {
			removed = true
			continue
		}
		kept = append(kept, appt)
	}
	if !removed {
		return false, nil
	}
	if err := s.saveLocked(kept); err != nil {
		return false, err
	}
	return true, nil
}

// FindByDate returns the active appointments whose start falls on the given
// calendar date.
func (s *FileStore) FindByDate(ctx context.Context, date time.Time) ([]Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadLocked()
	if err != nil {
		return nil, err
	}

	y, m, d := date.Date()
	var matched []Appointment
	for _, appt := range existing {
		ay, am, ad := appt.StartAt.Date()
		if ay == y && am == m && ad == d {
			matched = append(matched, appt)
		}
	}
	return matched, nil
}

func (s *FileStore) loadLocked() ([]Appointment, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &StorageError{Path: s.path, Err: err}
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &StorageError{Path: s.path, Err: fmt.Errorf("parse: %w", err)}
	}

	appts := make([]Appointment, 0, len(records))
	for _, r := range records {
		appt, err := fromRecord(r)
		if err != nil {
			return nil, &StorageError{Path: s.path, Err: err}
		}
		appts = append(appts, appt)
	}
	return appts, nil
}

// saveLocked writes to a temp file in the same directory and renames it over
// the target so a crash mid-write never leaves a half-written file behind.
func (s *FileStore) saveLocked(appts []Appointment) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveWrite(time.Since(start).Seconds(), err)
	}()

	records := make([]record, 0, len(appts))
	for _, appt := range appts {
		records = append(records, toRecord(appt))
	}

	encoded, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &StorageError{Path: s.path, Err: fmt.Errorf("encode: %w", err)}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &StorageError{Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &StorageError{Path: s.path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &StorageError{Path: s.path, Err: err}
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &StorageError{Path: s.path, Err: err}
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &StorageError{Path: s.path, Err: err}
	}
	return nil
}
