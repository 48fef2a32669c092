package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/juzzt/juzzt-server/internal/auth"
	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/media/images"
	"github.com/juzzt/juzzt-server/internal/search"
	"github.com/juzzt/juzzt-server/internal/service"
	"github.com/juzzt/juzzt-server/internal/store"
	"github.com/juzzt/juzzt-server/internal/store/cache"
	"github.com/juzzt/juzzt-server/internal/store/sqlite"
)

// testEnvelope mirrors the response envelope for unmarshalling in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api     humatest.TestAPI
	store   store.Store
	cleanup func()
}

// stubLookup answers release-group lookups from a fixed map.
type stubLookup struct {
	results map[string]string
}

func (f *stubLookup) LookupReleaseGroup(_ context.Context, artist, title string) (string, bool, error) {
	id, ok := f.results[artist+"|"+title]
	return id, ok, nil
}

// stubCovers answers cover probes from a fixed map.
type stubCovers struct {
	results map[string]string
}

func (f *stubCovers) FrontCover(_ context.Context, releaseGroupID string) (string, bool, error) {
	url, ok := f.results[releaseGroupID]
	return url, ok, nil
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "juzzt-api-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)

	metaCache, err := cache.Open(filepath.Join(tmpDir, "cache"), logger)
	require.NoError(t, err)

	index, err := search.NewIndex(search.Options{
		IndexPath: filepath.Join(tmpDir, "search.bleve"),
		Logger:    logger,
	})
	require.NoError(t, err)

	storage, err := images.NewStorage(filepath.Join(tmpDir, "images"))
	require.NoError(t, err)
	uploader := images.NewUploader(logger, storage, "", "")

	key := bytes.Repeat([]byte{0x42}, 32)
	tokenService, err := auth.NewTokenService(key, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	sessionService := service.NewSessionService(st, tokenService, logger)
	searchService := service.NewSearchService(index, st, logger)
	st.SetSearchIndexer(searchService)

	services := &Services{
		Auth:     service.NewAuthService(st, tokenService, sessionService, logger),
		Catalog:  service.NewCatalogService(st, uploader, logger),
		Order:    service.NewOrderService(st, logger),
		Playlist: service.NewPlaylistService(st, logger),
		Recommend: service.NewRecommendationService(st, logger),
		Enrich: service.NewEnrichmentService(
			st,
			&stubLookup{results: map[string]string{}},
			&stubCovers{results: map[string]string{}},
			metaCache,
			uploader,
			filepath.Join(tmpDir, "covers-in"),
			logger,
		),
		Search:  searchService,
		Session: sessionService,
	}

	s := NewServer(st, services, storage, logger)

	cleanup := func() {
		s.Close()
		_ = index.Close()
		_ = metaCache.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return &testServer{
		Server:  s,
		api:     humatest.Wrap(t, s.api),
		store:   st,
		cleanup: cleanup,
	}
}

// registerUser creates an account via the API and returns its auth response.
func (ts *testServer) registerUser(t *testing.T, email string) AuthResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        email,
		"password":     "TestPassword123!",
		"display_name": "Test User",
	})
	require.Equal(t, http.StatusOK, resp.Code, "Register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

// registerAdmin creates an account and promotes it to admin directly in the store.
func (ts *testServer) registerAdmin(t *testing.T, email string) AuthResponse {
	t.Helper()

	authResp := ts.registerUser(t, email)

	ctx := context.Background()
	user, err := ts.store.GetUser(ctx, authResp.User.ID)
	require.NoError(t, err)
	user.Role = domain.RoleAdmin
	require.NoError(t, ts.store.UpdateUser(ctx, user))

	return authResp
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}
