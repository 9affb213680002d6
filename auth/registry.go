// Package auth holds the credential registry and the session store backing
// the access gate.
package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/jmcleod/graphgate/internal/util"
	"github.com/jmcleod/graphgate/storage"
)

// bcryptCost is the fixed work factor for password hashing.
const bcryptCost = 12

var (
	// ErrDuplicateUser indicates a registration attempt for a taken username.
	ErrDuplicateUser = errors.New("username already taken")
	// ErrInvalidInput indicates an empty username or password.
	ErrInvalidInput = errors.New("username and password must not be empty")
)

// User is an account as seen by the access gate and the handlers.
type User struct {
	Username           string
	MustChangePassword bool
}

// Registry persists username -> credential records and verifies passwords.
type Registry struct {
	// mu serializes check-and-set sequences against the store so two
	// concurrent writers cannot both pass the same existence check.
	mu    sync.Mutex
	store store
}

// store is the slice of storage.UserStore the registry needs.
type store interface {
	Get(username string) (*storage.UserRecord, error)
	Put(record *storage.UserRecord) error
	Count() (int, error)
}

// NewRegistry creates a credential registry over the given store.
func NewRegistry(s storage.UserStore) *Registry {
	return &Registry{store: s}
}

// Bootstrap creates the default account with a forced password change when
// the store is empty. Safe to call on every startup.
func (r *Registry) Bootstrap(username, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, err := r.store.Count()
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if n > 0 {
		return nil
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return r.store.Put(&storage.UserRecord{
		Username:           username,
		PasswordHash:       hash,
		MustChangePassword: true,
	})
}

// Get returns the user for username, or storage.ErrNotFound.
func (r *Registry) Get(username string) (*User, error) {
	record, err := r.store.Get(username)
	if err != nil {
		return nil, err
	}
	return &User{
		Username:           record.Username,
		MustChangePassword: record.MustChangePassword,
	}, nil
}

// Register creates a new account. Empty fields yield ErrInvalidInput and a
// taken username ErrDuplicateUser.
func (r *Registry) Register(username, password string) error {
	if username == "" || password == "" {
		return ErrInvalidInput
	}
	// Hash before taking the lock: bcrypt is slow and registrations of
	// different usernames must not queue behind it.
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.store.Get(username); err == nil {
		return ErrDuplicateUser
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return r.store.Put(&storage.UserRecord{
		Username:     username,
		PasswordHash: hash,
	})
}

// Verify reports whether password matches the stored hash for username.
func (r *Registry) Verify(username, password string) bool {
	record, err := r.store.Get(username)
	if err != nil {
		return false
	}
	return checkPassword(record.PasswordHash, password)
}

// ChangePassword replaces the stored hash and clears the must-change flag.
// It returns false without mutation when username is unknown, current does
// not match, or the new password equals the current one.
func (r *Registry) ChangePassword(username, current, newPassword string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, err := r.store.Get(username)
	if err != nil {
		return false
	}
	if newPassword == "" || !checkPassword(record.PasswordHash, current) {
		return false
	}
	if checkPassword(record.PasswordHash, newPassword) {
		return false
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return false
	}
	record.PasswordHash = hash
	record.MustChangePassword = false
	return r.store.Put(record) == nil
}

func hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(util.Normalize(password)), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return hash, nil
}

func checkPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(util.Normalize(password))) == nil
}
