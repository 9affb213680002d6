// Package engine defines the capability surface GraphGate requires from the
// embedded graph-storage engine: open, close, exists, path. Graph storage,
// traversal, and transactions live behind this boundary and are never
// reimplemented here.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
)

// Handle is an opaque reference to one open instance.
type Handle interface {
	// Name returns the instance name the handle was opened for.
	Name() string
	// Path returns the instance's on-disk directory.
	Path() string
}

// Engine is the external graph-engine capability.
type Engine interface {
	// Open opens (creating if necessary) the named instance and returns a
	// handle to it.
	Open(name string) (Handle, error)
	// Close releases the handle. Closing an already-closed handle is an error.
	Close(h Handle) error
	// Exists reports whether the named instance has on-disk data.
	Exists(name string) bool
	// Path returns the on-disk directory for the named instance whether or
	// not it is open.
	Path(name string) string
}

// lockMarker is the file an open instance holds in its directory. Its
// presence is how out-of-process tooling detects a live instance.
const lockMarker = "store_lock"

// DirEngine adapts a directory tree to the Engine interface. Each instance
// is a subdirectory of Root; opening creates the directory and drops a lock
// marker, closing removes the marker.
type DirEngine struct {
	Root string
}

var _ Engine = (*DirEngine)(nil)

type dirHandle struct {
	name string
	path string
}

func (h *dirHandle) Name() string { return h.name }
func (h *dirHandle) Path() string { return h.path }

func (e *DirEngine) Open(name string) (Handle, error) {
	path := e.Path(name)
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, fmt.Errorf("creating instance directory: %w", err)
	}
	lock := filepath.Join(path, lockMarker)
	f, err := os.OpenFile(lock, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("instance %s is already locked", name)
		}
		return nil, fmt.Errorf("acquiring instance lock: %w", err)
	}
	f.Close()
	return &dirHandle{name: name, path: path}, nil
}

func (e *DirEngine) Close(h Handle) error {
	if h == nil {
		return fmt.Errorf("closing nil handle")
	}
	if err := os.Remove(filepath.Join(h.Path(), lockMarker)); err != nil {
		return fmt.Errorf("releasing instance lock: %w", err)
	}
	return nil
}

func (e *DirEngine) Exists(name string) bool {
	info, err := os.Stat(e.Path(name))
	return err == nil && info.IsDir()
}

func (e *DirEngine) Path(name string) string {
	return filepath.Join(e.Root, name)
}

// Locked reports whether the named instance directory carries a lock marker.
// Used as a secondary liveness check by the backup archiver.
func (e *DirEngine) Locked(name string) bool {
	_, err := os.Stat(filepath.Join(e.Path(name), lockMarker))
	return err == nil
}
