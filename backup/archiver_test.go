package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLiveness struct {
	open map[string]bool
}

func (f *fakeLiveness) IsOpen(name string) bool { return f.open[name] }

func newTestArchiver(t *testing.T) (*Archiver, string, *fakeLiveness) {
	t.Helper()
	instances := t.TempDir()
	backups := t.TempDir()
	live := &fakeLiveness{open: make(map[string]bool)}
	a := NewArchiver(instances, backups, live, nil, nil)
	a.now = func() time.Time { return time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC) }
	return a, instances, live
}

func writeInstance(t *testing.T, root, name string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schema"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "graphstore.nodes"), []byte("nodes"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema", "index.1"), []byte("idx"), 0o600))
}

func TestBackupMissingInstance(t *testing.T) {
	a, _, _ := newTestArchiver(t)
	_, err := a.Backup("dbA")
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestBackupRunningInstance(t *testing.T) {
	a, instances, live := newTestArchiver(t)
	writeInstance(t, instances, "dbA")
	live.open["dbA"] = true

	_, err := a.Backup("dbA")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestBackupAndRestoreRoundTrip(t *testing.T) {
	a, instances, _ := newTestArchiver(t)
	writeInstance(t, instances, "dbA")

	archive, err := a.Backup("dbA")
	require.NoError(t, err)
	assert.Equal(t, "dbA_20260115_093000.zip", archive)

	// Restore into a clean instances root.
	require.NoError(t, os.RemoveAll(filepath.Join(instances, "dbA")))

	name, err := a.Restore(archive)
	require.NoError(t, err)
	assert.Equal(t, "dbA", name)

	data, err := os.ReadFile(filepath.Join(instances, "dbA", "graphstore.nodes"))
	require.NoError(t, err)
	assert.Equal(t, []byte("nodes"), data)

	data, err = os.ReadFile(filepath.Join(instances, "dbA", "schema", "index.1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("idx"), data)
}

func TestRestoreMissingArchive(t *testing.T) {
	a, _, _ := newTestArchiver(t)
	_, err := a.Restore("dbA_20260115_093000.zip")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestoreExistingInstance(t *testing.T) {
	a, instances, _ := newTestArchiver(t)
	writeInstance(t, instances, "dbA")

	archive, err := a.Backup("dbA")
	require.NoError(t, err)

	// dbA still exists on disk.
	_, err = a.Restore(archive)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestInstanceName(t *testing.T) {
	tests := []struct {
		file    string
		want    string
		wantErr bool
	}{
		{file: "dbA_20260115_093000.zip", want: "dbA"},
		{file: "my_graph_db_20260115_093000.zip", want: "my_graph_db"},
		{file: "dbA_20260115_093000.tar", wantErr: true},
		{file: "dbA.zip", wantErr: true},
		{file: "dbA_notadate_093000.zip", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := InstanceName(tt.file)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
