// Package backup snapshots closed instance directories to timestamped zip
// archives and restores instances from them.
package backup

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const timestampLayout = "20060102_150405"

var (
	// ErrInstanceNotFound indicates the instance to back up has no on-disk
	// directory.
	ErrInstanceNotFound = errors.New("instance not found")
	// ErrNotFound indicates a missing archive file.
	ErrNotFound = errors.New("archive not found")
	// ErrConflict indicates the instance is running, or a restore target
	// directory already exists.
	ErrConflict = errors.New("conflict")
)

// Liveness answers whether a named instance is currently open. Satisfied by
// lifecycle.Manager; preferred over re-deriving liveness from lock files.
type Liveness interface {
	IsOpen(name string) bool
}

// LockChecker reports whether an instance directory carries a lock marker.
// A secondary heuristic for instances opened outside this process.
type LockChecker interface {
	Locked(name string) bool
}

// Archiver writes and restores instance backups. Archive naming is the sole
// source of truth for which instance a backup belongs to:
// <name>_<yyyyMMdd_HHmmss>.zip.
type Archiver struct {
	instancesRoot string
	backupsRoot   string
	liveness      Liveness
	locks         LockChecker
	logger        *slog.Logger
	now           func() time.Time
}

// NewArchiver creates an archiver. locks may be nil when no lock-marker
// check is available.
func NewArchiver(instancesRoot, backupsRoot string, liveness Liveness, locks LockChecker, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{
		instancesRoot: instancesRoot,
		backupsRoot:   backupsRoot,
		liveness:      liveness,
		locks:         locks,
		logger:        logger,
		now:           time.Now,
	}
}

// Backup compresses the named instance's directory tree into a timestamped
// archive and returns the archive file name. The instance must exist and
// must not be running.
func (a *Archiver) Backup(name string) (string, error) {
	src := filepath.Join(a.instancesRoot, name)
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("instance %s: %w", name, ErrInstanceNotFound)
	}
	if a.liveness.IsOpen(name) {
		return "", fmt.Errorf("instance %s is running: %w", name, ErrConflict)
	}
	if a.locks != nil && a.locks.Locked(name) {
		return "", fmt.Errorf("instance %s is locked: %w", name, ErrConflict)
	}

	if err := os.MkdirAll(a.backupsRoot, 0o700); err != nil {
		return "", fmt.Errorf("creating backups root: %w", err)
	}
	fileName := name + "_" + a.now().Format(timestampLayout) + ".zip"
	dest := filepath.Join(a.backupsRoot, fileName)
	if err := zipTree(src, dest); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("archiving %s: %w", name, err)
	}
	a.logger.Info("backup created", "instance", name, "archive", fileName)
	return fileName, nil
}

// Restore extracts the archive into the instances root, recreating the
// original layout. The target instance name is derived by stripping the
// trailing _<timestamp>.zip suffix; a malformed file name fails the parse.
func (a *Archiver) Restore(fileName string) (string, error) {
	archive := filepath.Join(a.backupsRoot, filepath.Base(fileName))
	if _, err := os.Stat(archive); err != nil {
		return "", fmt.Errorf("archive %s: %w", fileName, ErrNotFound)
	}
	name, err := InstanceName(fileName)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(a.instancesRoot, name)
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("instance %s already exists: %w", name, ErrConflict)
	}
	if err := unzipTree(archive, dest); err != nil {
		os.RemoveAll(dest)
		return "", fmt.Errorf("restoring %s: %w", fileName, err)
	}
	a.logger.Info("backup restored", "instance", name, "archive", fileName)
	return name, nil
}

// InstanceName parses the source instance name out of an archive file name.
func InstanceName(fileName string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(fileName), ".zip")
	if base == filepath.Base(fileName) {
		return "", fmt.Errorf("archive %s: not a zip file name", fileName)
	}
	// The timestamp suffix is _yyyyMMdd_HHmmss: two underscore-separated parts.
	idx := strings.LastIndex(base, "_")
	if idx > 0 {
		idx = strings.LastIndex(base[:idx], "_")
	}
	if idx <= 0 {
		return "", fmt.Errorf("archive %s: missing timestamp suffix", fileName)
	}
	if _, err := time.Parse(timestampLayout, base[idx+1:]); err != nil {
		return "", fmt.Errorf("archive %s: malformed timestamp suffix", fileName)
	}
	return base[:idx], nil
}

func zipTree(src, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	err = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			_, err = zw.Create(rel + "/")
			return err
		}
		w, err := zw.Create(rel)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		out.Close()
		return err
	}
	// Both closes flush buffered archive data; either failing means a
	// truncated archive, so neither error may be dropped.
	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func unzipTree(archive, dest string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, entry := range zr.File {
		target := filepath.Join(dest, filepath.FromSlash(entry.Name))
		// Reject entries escaping the destination directory.
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %s escapes destination", entry.Name)
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o700); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
			return err
		}
		if err := extractFile(entry, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(entry *zip.File, target string) error {
	in, err := entry.Open()
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
