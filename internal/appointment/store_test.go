package appointment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...FileStoreOption) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "consultas.json")
	return NewFileStore(path, opts...), path
}

func TestLoadFirstRun(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	appts, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, appts)
}

func TestLoadEmptyFile(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	appts, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, appts)
}

func TestAddAssignsIDAndPersists(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)
	startAt := time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)

	stored, err := store.Add(ctx, Appointment{PatientName: "Maria", StartAt: startAt})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "Maria", stored.PatientName)
	assert.True(t, stored.StartAt.Equal(startAt))

	// A fresh store over the same file sees the record.
	reopened := NewFileStore(path)
	appts, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, stored.ID, appts[0].ID)
	assert.True(t, appts[0].StartAt.Equal(startAt))
}

func TestAddIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	startAt := time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)

	first, err := store.Add(ctx, Appointment{PatientName: "Ana", StartAt: startAt})
	require.NoError(t, err)
	second, err := store.Add(ctx, Appointment{PatientName: "Carlos", StartAt: startAt.Add(time.Hour)})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.Add(ctx, Appointment{PatientName: "Paulo", StartAt: time.Date(2026, 3, 3, 9, 0, 0, 0, time.Local)})
	require.NoError(t, err)
	_, err = store.Add(ctx, Appointment{PatientName: "Maria", StartAt: time.Date(2026, 3, 4, 14, 30, 0, 0, time.Local)})
	require.NoError(t, err)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, loaded))

	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, loaded, again)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	stored, err := store.Add(ctx, Appointment{PatientName: "Paulo", StartAt: time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)})
	require.NoError(t, err)

	removed, err := store.Remove(ctx, stored.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	appts, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, appts)

	// Removing the same id again is a non-error "not found" outcome.
	removed, err = store.Remove(ctx, stored.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFindByDate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.Add(ctx, Appointment{PatientName: "Ana", StartAt: time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)})
	require.NoError(t, err)
	_, err = store.Add(ctx, Appointment{PatientName: "Carlos", StartAt: time.Date(2026, 3, 3, 16, 30, 0, 0, time.Local)})
	require.NoError(t, err)
	_, err = store.Add(ctx, Appointment{PatientName: "Paulo", StartAt: time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local)})
	require.NoError(t, err)

	sameDay, err := store.FindByDate(ctx, time.Date(2026, 3, 3, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	require.Len(t, sameDay, 2)
	for _, appt := range sameDay {
		assert.Equal(t, 3, appt.StartAt.Day())
	}

	otherDay, err := store.FindByDate(ctx, time.Date(2026, 3, 5, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Empty(t, otherDay)
}

func TestLoadMalformedJSON(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := store.Load(ctx)
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
}

func TestLoadInvalidRecordShape(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		body string
	}{
		{"missing id", `[{"id":"","patient_name":"Maria","start_at":"2026-03-03T10:00"}]`},
		{"missing patient", `[{"id":"a1","patient_name":"","start_at":"2026-03-03T10:00"}]`},
		{"bad start_at", `[{"id":"a1","patient_name":"Maria","start_at":"next tuesday"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, path := newTestStore(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := store.Load(ctx)
			var storageErr *StorageError
			require.ErrorAs(t, err, &storageErr)
		})
	}
}

func TestMutationsRefuseToClobberCorruptFile(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)
	corrupt := []byte("{not json")
	require.NoError(t, os.WriteFile(path, corrupt, 0o644))

	_, err := store.Add(ctx, Appointment{PatientName: "Maria", StartAt: time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)})
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)

	_, err = store.Remove(ctx, "anything")
	require.ErrorAs(t, err, &storageErr)

	// The corrupt file must be left untouched for manual repair.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, corrupt, data)
}

func TestLoadAcceptsSecondPrecisionTimestamps(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)
	body := `[{"id":"a1","patient_name":"Maria","start_at":"2026-03-03T10:00:00"}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	appts, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.True(t, appts[0].StartAt.Equal(time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)

	_, err := store.Add(ctx, Appointment{PatientName: "Maria", StartAt: time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)})
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(path), entries[0].Name())
}

func TestWithIDGenerator(t *testing.T) {
	ctx := context.Background()
	n := 0
	store, _ := newTestStore(t, WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("appt-%d", n)
	}))

	stored, err := store.Add(ctx, Appointment{PatientName: "Maria", StartAt: time.Date(2026, 3, 3, 10, 0, 0, 0, time.Local)})
	require.NoError(t, err)
	assert.Equal(t, "appt-1", stored.ID)
}
