package bbolt

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/graphgate/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStoreFromFile(filepath.Join(t.TempDir(), "users.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorePutAndGet(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Put(&storage.UserRecord{
		Username:           "alice",
		PasswordHash:       []byte("hash"),
		MustChangePassword: true,
	}))

	got, err := s.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, []byte("hash"), got.PasswordHash)
	assert.True(t, got.MustChangePassword)
}

func TestStoreGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreCount(t *testing.T) {
	s := newTestStore(t)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Put(&storage.UserRecord{Username: "a"}))
	require.NoError(t, s.Put(&storage.UserRecord{Username: "b"}))

	n, err = s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	s1, err := NewStoreFromFile(path, nil)
	require.NoError(t, err)
	require.NoError(t, s1.Put(&storage.UserRecord{Username: "alice", PasswordHash: []byte("h")}))
	require.NoError(t, s1.Close())

	s2, err := NewStoreFromFile(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("h"), got.PasswordHash)
}
