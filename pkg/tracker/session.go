// Package tracker provides the concurrent session-tracking registry: an
// in-memory, process-wide record of which clients currently hold an active
// interaction with the server, plus a point-in-time snapshot listing for
// operational monitoring.
package tracker

import (
	"sync/atomic"
	"time"
)

// Kind classifies how a session was established.
type Kind string

const (
	// KindHTTP marks a session established over a plain HTTP page flow.
	KindHTTP Kind = "http"

	// KindREST marks a session established through the REST API.
	KindREST Kind = "rest"

	// KindRPC marks a session derived from an RPC-style correlation id
	// rather than a container-assigned key.
	KindRPC Kind = "rpc"
)

// Session is the live, mutable record for one tracked session. The ID,
// TransportID, Kind, and CreatedAt fields are fixed at construction; the
// remaining fields are updated independently through atomics, so a reader
// may observe any interleaving of them across concurrent writers but never
// a torn value.
type Session struct {
	// ID is the registry key. Never reused for a different logical session.
	ID string

	// TransportID is an auxiliary correlation identifier supplied by the
	// transport layer (e.g. an externally visible token distinct from the
	// registry key). Informational only; may be empty.
	TransportID string

	// Kind classifies how the session was established.
	Kind Kind

	// CreatedAt is when the record was constructed.
	CreatedAt time.Time

	requests   atomic.Int64
	lastAccess atomic.Int64 // unix nanos; 0 means unknown
	username   atomic.Pointer[string]
	remoteAddr atomic.Pointer[string]
}

// newSession constructs a record with a zero request count. The initial
// username may be empty (anonymous).
func newSession(kind Kind, id, transportID, username string) *Session {
	s := &Session{
		ID:          id,
		TransportID: transportID,
		Kind:        kind,
		CreatedAt:   time.Now(),
	}
	if username != "" {
		s.username.Store(&username)
	}
	return s
}

// touch records one interaction: increments the request count and
// last-write-wins assigns the liveness metadata. Empty username and
// remoteAddr values are ignored so a later anonymous request does not
// erase a known identity.
func (s *Session) touch(now time.Time, remoteAddr, username string) {
	s.requests.Add(1)
	s.lastAccess.Store(now.UnixNano())
	if remoteAddr != "" {
		s.remoteAddr.Store(&remoteAddr)
	}
	if username != "" {
		s.username.Store(&username)
	}
}

// RequestCount returns the number of interactions recorded so far.
func (s *Session) RequestCount() int64 {
	return s.requests.Load()
}

// LastAccessAt returns the most recent interaction time, or the zero time
// if no interaction has been recorded yet.
func (s *Session) LastAccessAt() time.Time {
	ns := s.lastAccess.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Username returns the latest known identity, or empty for anonymous.
func (s *Session) Username() string {
	if p := s.username.Load(); p != nil {
		return *p
	}
	return ""
}

// RemoteAddr returns the latest known network origin, or empty if unknown.
func (s *Session) RemoteAddr() string {
	if p := s.remoteAddr.Load(); p != nil {
		return *p
	}
	return ""
}
