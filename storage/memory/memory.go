// Package memory provides a thread-safe in-memory implementation of storage.UserStore.
package memory

import (
	"sync"

	"github.com/jmcleod/graphgate/storage"
)

// Store is a thread-safe in-memory implementation of storage.UserStore.
// Suitable for testing and single-process use cases.
type Store struct {
	mu   sync.RWMutex
	data map[string]*storage.UserRecord
}

var _ storage.UserStore = (*Store)(nil)

// NewStore creates a new empty in-memory Store.
func NewStore() *Store {
	return &Store{data: make(map[string]*storage.UserRecord)}
}

func cloneRecord(r *storage.UserRecord) *storage.UserRecord {
	if r == nil {
		return nil
	}
	return &storage.UserRecord{
		Username:           r.Username,
		PasswordHash:       append([]byte(nil), r.PasswordHash...),
		MustChangePassword: r.MustChangePassword,
	}
}

func (s *Store) Get(username string) (*storage.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.data[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneRecord(record), nil
}

func (s *Store) Put(record *storage.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[record.Username] = cloneRecord(record)
	return nil
}

func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}
