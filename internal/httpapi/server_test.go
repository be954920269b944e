package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"ichat/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) (*Server, *core.Roster, *core.History) {
	t.Helper()
	roster := core.NewRoster()
	history := core.NewHistory()
	return New(roster, history, "test"), roster, history
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, roster, _ := newTestAPI(t)
	_, err := roster.Add("Alice", netip.MustParseAddrPort("127.0.0.1:50001"), false, nil)
	require.NoError(t, err)

	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Clients)
}

func TestStatus(t *testing.T) {
	s, _, history := newTestAPI(t)
	history.Append("history$ Alice: hi\n")

	rec := get(t, s, "/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "test", body.Version)
	assert.Equal(t, 1, body.HistoryLines)
	assert.Equal(t, 0, body.Clients)
}

func TestRosterListing(t *testing.T) {
	s, roster, _ := newTestAPI(t)
	_, err := roster.Add("Mod", netip.MustParseAddrPort("127.0.0.1:6666"), true, nil)
	require.NoError(t, err)
	_, err = roster.Add("Alice", netip.MustParseAddrPort("127.0.0.1:50001"), false, nil)
	require.NoError(t, err)

	rec := get(t, s, "/v1/roster")
	require.Equal(t, http.StatusOK, rec.Code)

	var body rosterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Clients, 2)
	assert.Equal(t, "Alice", body.Clients[0].Name)
	assert.False(t, body.Clients[0].Admin)
	assert.Equal(t, "Mod", body.Clients[1].Name)
	assert.True(t, body.Clients[1].Admin)
	assert.Equal(t, "127.0.0.1:6666", body.Clients[1].Addr)
}

func TestHistoryListing(t *testing.T) {
	s, _, history := newTestAPI(t)
	history.Append("history$ Alice: hello\n")
	history.Append("history$ Bob: hi\n")

	rec := get(t, s, "/v1/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var body historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Alice: hello", "Bob: hi"}, body.Lines)
}

func TestHistoryEmpty(t *testing.T) {
	s, _, _ := newTestAPI(t)

	rec := get(t, s, "/v1/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var body historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Lines)
}
