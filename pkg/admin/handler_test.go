package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txn2/sessiontrack/pkg/auth"
	"github.com/txn2/sessiontrack/pkg/tracker"
)

const adminTestKey = "sk-admin-test"

func seededRegistry(t *testing.T) *tracker.Registry {
	t.Helper()
	r := tracker.New()
	r.RecordInteraction(tracker.Interaction{
		Kind: tracker.KindHTTP, SessionID: "web-1", Username: "alice",
	})
	time.Sleep(2 * time.Millisecond)
	r.RecordInteraction(tracker.Interaction{
		Kind: tracker.KindREST, SessionID: "api-1",
	})
	time.Sleep(2 * time.Millisecond)
	r.RecordRPC("corr-1", "192.0.2.9", "bob")
	return r
}

func TestHandler_ListSessions(t *testing.T) {
	h := NewHandler(seededRegistry(t), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/sessions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 3, body.Count)
	require.Len(t, body.Sessions, 3)

	// Most recently active first.
	assert.Equal(t, "rpc:corr-1", body.Sessions[0].ID)
	assert.Equal(t, "api-1", body.Sessions[1].ID)
	assert.Equal(t, "web-1", body.Sessions[2].ID)
	assert.Equal(t, "alice", body.Sessions[2].Username)
}

func TestHandler_SessionStats(t *testing.T) {
	h := NewHandler(seededRegistry(t), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/sessions/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, 1, body.ByKind[tracker.KindHTTP])
	assert.Equal(t, 1, body.ByKind[tracker.KindREST])
	assert.Equal(t, 1, body.ByKind[tracker.KindRPC])
}

func TestHandler_DeleteSession(t *testing.T) {
	r := seededRegistry(t)
	h := NewHandler(r, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/sessions/web-1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 2, r.Len())

	// Idempotent: deleting again still answers 204.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/sessions/web-1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_AuthMiddlewareEnforced(t *testing.T) {
	authMiddle := auth.Require(auth.NewAPIKeyAuthenticator([]auth.APIKey{
		{Key: adminTestKey, Name: "ops"},
	}))
	h := NewHandler(seededRegistry(t), authMiddle)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/sessions", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/sessions", nil)
	req.Header.Set("X-API-Key", adminTestKey)
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_UnknownRouteIs404(t *testing.T) {
	h := NewHandler(tracker.New(), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
