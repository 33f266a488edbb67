package tracker

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/google/uuid"
)

const (
	// DefaultSessionHeader carries the session key between client and
	// server when no other container assigns one.
	DefaultSessionHeader = "X-Session-Id"

	// usernameHeader is an optional identity hint set by an upstream
	// authentication layer.
	usernameHeader = "X-Auth-Username"
)

// HandlerConfig configures a tracking Handler.
type HandlerConfig struct {
	// Registry receives one interaction per request. Required.
	Registry *Registry

	// Kind classifies every interaction this handler records. The
	// boundary decides the kind once; defaults to KindHTTP.
	Kind Kind

	// SessionHeader overrides DefaultSessionHeader.
	SessionHeader string
}

// Handler wraps an HTTP handler and records one interaction per request
// against the registry. Requests without a session id are issued a fresh
// one, echoed back in the session header. A DELETE carrying a session id
// is treated as the session-destroyed lifecycle signal. Tracking never
// fails the wrapped request.
type Handler struct {
	inner    http.Handler
	registry *Registry
	kind     Kind
	header   string
}

// NewHandler creates a tracking handler around inner.
func NewHandler(inner http.Handler, cfg HandlerConfig) *Handler {
	h := &Handler{
		inner:    inner,
		registry: cfg.Registry,
		kind:     cfg.Kind,
		header:   cfg.SessionHeader,
	}
	if h.kind == "" {
		h.kind = KindHTTP
	}
	if h.header == "" {
		h.header = DefaultSessionHeader
	}
	return h
}

// ServeHTTP records the interaction and forwards to the wrapped handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(h.header)

	if r.Method == http.MethodDelete && sessionID != "" {
		h.registry.RemoveSession(sessionID)
		h.inner.ServeHTTP(w, r)
		return
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
		slog.Debug("tracker: issued session id", "session_id", sessionID)
	}
	w.Header().Set(h.header, sessionID)

	h.registry.RecordInteraction(Interaction{
		Kind:       h.kind,
		SessionID:  sessionID,
		RemoteAddr: remoteHost(r),
		Username:   r.Header.Get(usernameHeader),
	})

	h.inner.ServeHTTP(w, r)
}

// remoteHost strips the port from the request's remote address.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
