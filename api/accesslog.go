package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// accessLog appends one plaintext line per admitted request to the
// requesting user's log file under the logs root.
type accessLog struct {
	root   string
	logger *slog.Logger
	mu     sync.Mutex
}

func newAccessLog(root string, logger *slog.Logger) *accessLog {
	return &accessLog{root: root, logger: logger}
}

// record appends a line for username. Failures are logged, never surfaced:
// access logging must not fail a request.
func (l *accessLog) record(username string, r *http.Request) {
	if l.root == "" || username == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(l.root, 0o700); err != nil {
		l.logger.Warn("creating logs root failed", "error", err)
		return
	}
	f, err := os.OpenFile(l.path(username), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		l.logger.Warn("opening access log failed", "user", username, "error", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s %s %s %s\n",
		time.Now().UTC().Format(time.RFC3339), r.RemoteAddr, r.Method, r.URL.Path)
}

// read returns the full contents of username's access log.
func (l *accessLog) read(username string) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return os.ReadFile(l.path(username))
}

func (l *accessLog) path(username string) string {
	return filepath.Join(l.root, username+".log")
}
