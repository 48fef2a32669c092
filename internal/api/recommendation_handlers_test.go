package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRecommendations(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerAdmin(t, "admin@example.com")
	fan := ts.registerUser(t, "fan@example.com")

	bought := ts.createRecord(t, admin.AccessToken, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)
	match := ts.createRecord(t, admin.AccessToken, "Milestones", "Miles Davis", "Hard Bop", 21.00)

	resp := ts.api.Post("/api/v1/orders", bearer(fan.AccessToken), map[string]any{
		"lines": []map[string]any{{"record_id": bought.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/recommendations/"+fan.User.ID, bearer(fan.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[[]RecordResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, match.ID, envelope.Data[0].ID)
}

func TestGetRecommendations_EmptyForNewUser(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	fan := ts.registerUser(t, "fan@example.com")

	resp := ts.api.Get("/api/v1/recommendations/"+fan.User.ID, bearer(fan.AccessToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[[]RecordResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Empty(t, envelope.Data)
}

func TestGetRecommendations_OtherUserForbidden(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	alice := ts.registerUser(t, "alice@example.com")
	bob := ts.registerUser(t, "bob@example.com")

	resp := ts.api.Get("/api/v1/recommendations/"+alice.User.ID, bearer(bob.AccessToken))
	assert.Equal(t, http.StatusForbidden, resp.Code, resp.Body.String())

	// Admins may inspect anyone's recommendations.
	admin := ts.registerAdmin(t, "admin@example.com")
	resp = ts.api.Get("/api/v1/recommendations/"+alice.User.ID, bearer(admin.AccessToken))
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestGetRecommendations_UnknownUser(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	admin := ts.registerAdmin(t, "admin@example.com")

	resp := ts.api.Get("/api/v1/recommendations/usr-missing", bearer(admin.AccessToken))
	assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
}
