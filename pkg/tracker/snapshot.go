package tracker

import (
	"sort"
	"time"
)

// Info is an immutable copy of one session's fields taken at a single
// instant. Once returned it is owned by the caller and never changes, even
// while the live record keeps mutating.
type Info struct {
	ID           string    `json:"id"`
	TransportID  string    `json:"transport_id,omitempty"`
	Kind         Kind      `json:"kind"`
	Username     string    `json:"username,omitempty"`
	RemoteAddr   string    `json:"remote_addr,omitempty"`
	RequestCount int64     `json:"request_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessAt time.Time `json:"last_access_at,omitzero"`
}

// infoOf copies a live record into a value snapshot.
func infoOf(s *Session) Info {
	return Info{
		ID:           s.ID,
		TransportID:  s.TransportID,
		Kind:         s.Kind,
		Username:     s.Username(),
		RemoteAddr:   s.RemoteAddr(),
		RequestCount: s.RequestCount(),
		CreatedAt:    s.CreatedAt,
		LastAccessAt: s.LastAccessAt(),
	}
}

// sortInfos orders a snapshot most-recently-active first. Records with an
// unknown (zero) last-access time sort after all known values in both the
// ascending base order and the final descending listing: unknown-last
// regardless of direction.
func sortInfos(infos []Info) {
	sort.SliceStable(infos, func(i, j int) bool {
		a, b := infos[i].LastAccessAt, infos[j].LastAccessAt
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
}
