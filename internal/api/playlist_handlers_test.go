package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createPlaylist(t *testing.T, token, name string, recordIDs ...string) PlaylistResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/playlists", bearer(token), map[string]any{
		"name":       name,
		"record_ids": recordIDs,
	})
	require.Equal(t, http.StatusOK, resp.Code, "Create playlist failed: %s", resp.Body.String())

	var envelope testEnvelope[PlaylistResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestCreateAndListPlaylists(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerAdmin(t, "admin@example.com")
	fan := ts.registerUser(t, "fan@example.com")

	rec := ts.createRecord(t, admin.AccessToken, "Giant Steps", "John Coltrane", "Hard Bop", 26.00)

	created := ts.createPlaylist(t, fan.AccessToken, "Late Night", rec.ID)
	assert.Equal(t, fan.User.ID, created.UserID)
	assert.Equal(t, []string{rec.ID}, created.RecordIDs)

	resp := ts.api.Get("/api/v1/playlists", bearer(fan.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code)

	var listed testEnvelope[[]PlaylistResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	assert.Equal(t, "Late Night", listed.Data[0].Name)
}

func TestCreatePlaylist_MissingName(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	fan := ts.registerUser(t, "fan@example.com")

	resp := ts.api.Post("/api/v1/playlists", bearer(fan.AccessToken), map[string]any{
		"name": "",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestAddPlaylistRecord(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerAdmin(t, "admin@example.com")
	fan := ts.registerUser(t, "fan@example.com")

	first := ts.createRecord(t, admin.AccessToken, "Giant Steps", "John Coltrane", "Hard Bop", 26.00)
	second := ts.createRecord(t, admin.AccessToken, "My Favorite Things", "John Coltrane", "Modal Jazz", 24.00)

	playlist := ts.createPlaylist(t, fan.AccessToken, "Coltrane", first.ID)

	resp := ts.api.Post("/api/v1/playlists/"+playlist.ID+"/records", bearer(fan.AccessToken), map[string]any{
		"record_id": second.ID,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[PlaylistResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, []string{first.ID, second.ID}, envelope.Data.RecordIDs)
}

func TestAddPlaylistRecord_NotOwner(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerAdmin(t, "admin@example.com")
	alice := ts.registerUser(t, "alice@example.com")
	bob := ts.registerUser(t, "bob@example.com")

	rec := ts.createRecord(t, admin.AccessToken, "Giant Steps", "John Coltrane", "Hard Bop", 26.00)
	playlist := ts.createPlaylist(t, alice.AccessToken, "Alice Only")

	resp := ts.api.Post("/api/v1/playlists/"+playlist.ID+"/records", bearer(bob.AccessToken), map[string]any{
		"record_id": rec.ID,
	})
	assert.Equal(t, http.StatusForbidden, resp.Code, resp.Body.String())
}

func TestGetPlaylist_OwnerOrAdminOnly(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerAdmin(t, "admin@example.com")
	alice := ts.registerUser(t, "alice@example.com")
	bob := ts.registerUser(t, "bob@example.com")

	playlist := ts.createPlaylist(t, alice.AccessToken, "Private Stash")

	resp := ts.api.Get("/api/v1/playlists/"+playlist.ID, bearer(alice.AccessToken))
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/playlists/"+playlist.ID, bearer(bob.AccessToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/api/v1/playlists/"+playlist.ID, bearer(admin.AccessToken))
	assert.Equal(t, http.StatusOK, resp.Code)
}
