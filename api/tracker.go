package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ActiveRequest describes one in-flight request.
type ActiveRequest struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	StartTime time.Time `json:"start_time"`
}

// RequestTracker is a concurrent registry of in-flight requests, exposed on
// the admin introspection endpoint. Start and End may be called from any
// number of request goroutines in any order.
type RequestTracker struct {
	mu   sync.RWMutex
	data map[string]ActiveRequest
}

// NewRequestTracker creates an empty tracker.
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{data: make(map[string]ActiveRequest)}
}

// Start records a request entering the server.
func (t *RequestTracker) Start(id, path, method string) {
	t.mu.Lock()
	t.data[id] = ActiveRequest{ID: id, Path: path, Method: method, StartTime: time.Now()}
	t.mu.Unlock()
}

// End removes a request. An absent id is a silent no-op.
func (t *RequestTracker) End(id string) {
	t.mu.Lock()
	delete(t.data, id)
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the in-flight set.
func (t *RequestTracker) Snapshot() []ActiveRequest {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ActiveRequest, 0, len(t.data))
	for _, req := range t.data {
		out = append(out, req)
	}
	return out
}

// TrackingMiddleware registers every request with the tracker for its
// lifetime.
func (a *API) TrackingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		a.tracker.Start(id, r.URL.Path, r.Method)
		defer a.tracker.End(id)
		next.ServeHTTP(w, r)
	})
}
