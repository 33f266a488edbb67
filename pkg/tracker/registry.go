package tracker

import (
	"log/slog"
	"sync"
	"time"
)

// rpcKeyPrefix namespaces keys derived from RPC correlation ids so they
// cannot collide with container-assigned session keys.
const rpcKeyPrefix = "rpc:"

// RemovalListener is notified after a session is explicitly removed. The
// username is the last one recorded for the session, or empty if it was
// never identified.
type RemovalListener func(sessionID, username string)

// Interaction carries the transport metadata for one inbound request.
// The dispatch layer decides the Kind once at the boundary; the registry
// never probes the request shape.
type Interaction struct {
	// Kind classifies the interaction.
	Kind Kind

	// SessionID is the container-assigned session key. Used as the
	// registry key for HTTP and REST interactions.
	SessionID string

	// CorrelationID is the caller-supplied correlation id for RPC-style
	// interactions; the registry key is derived from it for KindRPC.
	CorrelationID string

	// TransportID is an optional secondary identifier recorded verbatim.
	TransportID string

	// RemoteAddr is the client's network origin, if known.
	RemoteAddr string

	// Username is the claimed identity, if known at call time.
	Username string
}

// Registry is the process-wide map from session key to live Session
// record. All methods are safe for concurrent use from any number of
// goroutines; none of them blocks on a lock held by another caller.
type Registry struct {
	sessions sync.Map // session key -> *Session
	evict    evictor
	onRemove RemovalListener
}

// Option configures a Registry.
type Option func(*Registry)

// WithMaxSessionAge overrides how long a session may stay idle before the
// aging sweep evicts it.
func WithMaxSessionAge(d time.Duration) Option {
	return func(r *Registry) { r.evict.maxAge = d }
}

// WithSweepInterval overrides the minimum spacing between aging sweeps.
func WithSweepInterval(d time.Duration) Option {
	return func(r *Registry) { r.evict.interval = d }
}

// WithRemovalListener registers a callback fired after explicit removal.
func WithRemovalListener(fn RemovalListener) Option {
	return func(r *Registry) { r.onRemove = fn }
}

// New creates an empty Registry. The registry owns no goroutines; aging
// cleanup piggybacks on RecordInteraction calls.
func New(opts ...Option) *Registry {
	r := &Registry{
		evict: evictor{
			maxAge:   DefaultMaxSessionAge,
			interval: DefaultSweepInterval,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordInteraction attributes one inbound request to its session,
// creating the session record on first sight. It never fails: metadata
// that yields no usable key degrades to a no-op. Called on the hot path
// of every request, so the common case costs a map lookup and a handful
// of atomic stores.
func (r *Registry) RecordInteraction(in Interaction) {
	r.evict.maybeSweep(&r.sessions)

	key := interactionKey(in)
	if key == "" {
		slog.Debug("tracker: interaction without a session key, skipping",
			"kind", in.Kind)
		return
	}

	value, ok := r.sessions.Load(key)
	if !ok {
		// First interaction for this key. Under a concurrent first
		// interaction the LoadOrStore loser discards its fresh record
		// and touches the winner's instead.
		value, _ = r.sessions.LoadOrStore(key,
			newSession(in.Kind, key, in.TransportID, in.Username))
	}
	sess, ok := value.(*Session)
	if !ok {
		return
	}
	sess.touch(time.Now(), in.RemoteAddr, in.Username)
}

// RecordRPC records an RPC-style interaction from its correlation id.
func (r *Registry) RecordRPC(correlationID, remoteAddr, username string) {
	r.RecordInteraction(Interaction{
		Kind:          KindRPC,
		CorrelationID: correlationID,
		RemoteAddr:    remoteAddr,
		Username:      username,
	})
}

// RemoveSession removes a session immediately. Removing an unknown key is
// a no-op. The removal listener, if any, receives the last-known username.
func (r *Registry) RemoveSession(sessionID string) {
	value, loaded := r.sessions.LoadAndDelete(sessionID)
	if !loaded {
		return
	}
	if r.onRemove != nil {
		if sess, ok := value.(*Session); ok {
			r.onRemove(sessionID, sess.Username())
		}
	}
}

// Snapshot returns an immutable copy of every live session, ordered
// most-recently-active first (unknown last-access times sort last). The
// listing is assembled from independently mutating records, so it is a
// monitoring view, not a linearizable one.
func (r *Registry) Snapshot() []Info {
	infos := make([]Info, 0, 16)
	r.sessions.Range(func(_, value any) bool {
		if sess, ok := value.(*Session); ok {
			infos = append(infos, infoOf(sess))
		}
		return true
	})
	sortInfos(infos)
	return infos
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	n := 0
	r.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// interactionKey derives the registry key for an interaction, or empty
// when the metadata is insufficient to classify it.
func interactionKey(in Interaction) string {
	if in.Kind == KindRPC {
		if in.CorrelationID == "" {
			return ""
		}
		return rpcKeyPrefix + in.CorrelationID
	}
	return in.SessionID
}
