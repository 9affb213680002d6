// Package storage provides the persistence abstraction for user credentials.
package storage

import "errors"

// ErrNotFound is returned when a username has no stored record.
var ErrNotFound = errors.New("user not found")

// UserRecord is the persisted form of one account.
type UserRecord struct {
	Username           string `json:"username"`
	PasswordHash       []byte `json:"password_hash"`
	MustChangePassword bool   `json:"must_change_password"`
}

// UserStore defines the interface for credential persistence.
type UserStore interface {
	// Get returns the record for username, or ErrNotFound.
	Get(username string) (*UserRecord, error)
	// Put creates or replaces the record for record.Username.
	Put(record *UserRecord) error
	// Count returns the number of stored records.
	Count() (int, error)
}
