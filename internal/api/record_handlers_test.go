package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createRecord(t *testing.T, adminToken, title, artist, genre string, price float64) RecordResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/records", bearer(adminToken), map[string]any{
		"title":  title,
		"artist": artist,
		"genre":  genre,
		"price":  price,
	})
	require.Equal(t, http.StatusOK, resp.Code, "Create record failed: %s", resp.Body.String())

	var envelope testEnvelope[RecordResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestCreateAndGetRecord(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerAdmin(t, "admin@example.com")

	created := ts.createRecord(t, admin.AccessToken, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)
	assert.NotEmpty(t, created.ID)

	resp := ts.api.Get("/api/v1/records/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[RecordResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Kind of Blue", envelope.Data.Title)
	assert.Equal(t, "Miles Davis", envelope.Data.Artist)
}

func TestCreateRecord_RequiresAdmin(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	user := ts.registerUser(t, "fan@example.com")

	resp := ts.api.Post("/api/v1/records", bearer(user.AccessToken), map[string]any{
		"title":  "Kind of Blue",
		"artist": "Miles Davis",
		"price":  29.99,
	})
	assert.Equal(t, http.StatusForbidden, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/records", map[string]any{
		"title":  "Kind of Blue",
		"artist": "Miles Davis",
		"price":  29.99,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())
}

func TestGetRecord_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/records/rec-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
}

func TestUpdateRecord_Patch(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerAdmin(t, "admin@example.com")
	created := ts.createRecord(t, admin.AccessToken, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)

	resp := ts.api.Patch("/api/v1/records/"+created.ID, bearer(admin.AccessToken), map[string]any{
		"price": 34.99,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[RecordResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.InDelta(t, 34.99, envelope.Data.Price, 0.001)
	assert.Equal(t, "Kind of Blue", envelope.Data.Title)
}

func TestDeleteRecord(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerAdmin(t, "admin@example.com")
	created := ts.createRecord(t, admin.AccessToken, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)

	resp := ts.api.Delete("/api/v1/records/"+created.ID, bearer(admin.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/records/" + created.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListRecords(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerAdmin(t, "admin@example.com")
	ts.createRecord(t, admin.AccessToken, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)
	ts.createRecord(t, admin.AccessToken, "Giant Steps", "John Coltrane", "Hard Bop", 23.00)

	resp := ts.api.Get("/api/v1/records")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[[]RecordResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 2)
}

func TestSearchRecords(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerAdmin(t, "admin@example.com")
	ts.createRecord(t, admin.AccessToken, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)
	ts.createRecord(t, admin.AccessToken, "A Love Supreme", "John Coltrane", "Spiritual Jazz", 26.00)

	resp := ts.api.Get("/api/v1/search?q=coltrane")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[SearchResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.Hits)
	assert.Equal(t, "A Love Supreme", envelope.Data.Hits[0].Title)
}
