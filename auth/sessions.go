package auth

import (
	"sync"
	"time"

	"github.com/jmcleod/graphgate/internal/util"
)

const (
	// IdleTimeout is how long a non-rememberMe session survives without a
	// successful validation.
	IdleTimeout = 30 * time.Minute
	// MaxLifetime is the fixed lifetime of a rememberMe session. It is not
	// extended by activity.
	MaxLifetime = 7 * 24 * time.Hour
	// SweepInterval is how often the background sweep evicts stale entries.
	SweepInterval = 10 * time.Minute
)

// Session is the server-side record for one authenticated login.
type Session struct {
	Username   string
	ExpiresAt  time.Time
	RememberMe bool
}

// Sessions issues, validates, and expires session tokens. All methods are
// safe for concurrent use. The background sweep started by NewSessions must
// be stopped with Close.
type Sessions struct {
	mu   sync.RWMutex
	data map[string]Session
	now  func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewSessions creates a session store and starts its background sweep.
func NewSessions() *Sessions {
	s := &Sessions{
		data:   make(map[string]Session),
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

// Close stops the background sweep goroutine.
func (s *Sessions) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Create issues a fresh unguessable session id for username. RememberMe
// sessions get a fixed MaxLifetime expiry; others an IdleTimeout sliding one.
func (s *Sessions) Create(username string, rememberMe bool) string {
	id := util.SessionToken()
	ttl := IdleTimeout
	if rememberMe {
		ttl = MaxLifetime
	}
	s.mu.Lock()
	s.data[id] = Session{
		Username:   username,
		ExpiresAt:  s.now().Add(ttl),
		RememberMe: rememberMe,
	}
	s.mu.Unlock()
	return id
}

// Validate resolves id to a username. Unknown and expired ids return false;
// expired entries are evicted eagerly. Non-rememberMe sessions have their
// expiry pushed forward on each successful validation.
func (s *Sessions) Validate(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.data[id]
	if !ok {
		return "", false
	}
	now := s.now()
	if !session.ExpiresAt.After(now) {
		delete(s.data, id)
		return "", false
	}
	if !session.RememberMe {
		session.ExpiresAt = now.Add(IdleTimeout)
		s.data[id] = session
	}
	return session.Username, true
}

// Invalidate removes id. Removing an absent id is a no-op.
func (s *Sessions) Invalidate(id string) {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
}

func (s *Sessions) sweepLoop() {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweepExpired()
		}
	}
}

// sweepExpired removes all entries past their expiry, independent of access
// pattern. Racing with lazy eviction in Validate is fine: both sides delete.
func (s *Sessions) sweepExpired() {
	now := s.now()
	s.mu.Lock()
	for id, session := range s.data {
		if !session.ExpiresAt.After(now) {
			delete(s.data, id)
		}
	}
	s.mu.Unlock()
}
