package service

import (
	"context"
	"errors"
	"testing"

	domainerrors "github.com/juzzt/juzzt-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlaylist(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	user := createTestUser(t, s, "curator@example.com")
	kob := createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)
	giant := createTestRecord(t, s, "Giant Steps", "John Coltrane", "Hard Bop", 23.00)

	svc := NewPlaylistService(s, testLogger())

	playlist, err := svc.CreatePlaylist(context.Background(), user.ID, CreatePlaylistRequest{
		Name:      "Late Night",
		RecordIDs: []string{kob.ID, giant.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Late Night", playlist.Name)
	assert.Equal(t, user.ID, playlist.UserID)
	assert.Equal(t, []string{kob.ID, giant.ID}, playlist.RecordIDs)

	saved, err := s.GetPlaylist(context.Background(), playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, playlist.RecordIDs, saved.RecordIDs)
}

func TestCreatePlaylist_UnknownRecord(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	user := createTestUser(t, s, "curator@example.com")

	svc := NewPlaylistService(s, testLogger())

	_, err := svc.CreatePlaylist(context.Background(), user.ID, CreatePlaylistRequest{
		Name:      "Ghosts",
		RecordIDs: []string{"rec-missing"},
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestCreatePlaylist_MissingName(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	user := createTestUser(t, s, "curator@example.com")

	svc := NewPlaylistService(s, testLogger())

	_, err := svc.CreatePlaylist(context.Background(), user.ID, CreatePlaylistRequest{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestAddRecord(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	user := createTestUser(t, s, "curator@example.com")
	kob := createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)
	giant := createTestRecord(t, s, "Giant Steps", "John Coltrane", "Hard Bop", 23.00)

	svc := NewPlaylistService(s, testLogger())

	playlist, err := svc.CreatePlaylist(context.Background(), user.ID, CreatePlaylistRequest{
		Name:      "Late Night",
		RecordIDs: []string{kob.ID},
	})
	require.NoError(t, err)

	playlist, err = svc.AddRecord(context.Background(), playlist.ID, giant.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{kob.ID, giant.ID}, playlist.RecordIDs)
}

func TestAddRecord_AlreadyPresentIsNoop(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	user := createTestUser(t, s, "curator@example.com")
	kob := createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)

	svc := NewPlaylistService(s, testLogger())

	playlist, err := svc.CreatePlaylist(context.Background(), user.ID, CreatePlaylistRequest{
		Name:      "Late Night",
		RecordIDs: []string{kob.ID},
	})
	require.NoError(t, err)

	playlist, err = svc.AddRecord(context.Background(), playlist.ID, kob.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{kob.ID}, playlist.RecordIDs)
}

func TestAddRecord_NotOwner(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	owner := createTestUser(t, s, "owner@example.com")
	other := createTestUser(t, s, "other@example.com")
	kob := createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)

	svc := NewPlaylistService(s, testLogger())

	playlist, err := svc.CreatePlaylist(context.Background(), owner.ID, CreatePlaylistRequest{
		Name: "Private",
	})
	require.NoError(t, err)

	_, err = svc.AddRecord(context.Background(), playlist.ID, kob.ID, other.ID)
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeForbidden, domainErr.Code)
}

func TestGetPlaylist_OwnerAndAdmin(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	owner := createTestUser(t, s, "owner@example.com")
	other := createTestUser(t, s, "other@example.com")

	svc := NewPlaylistService(s, testLogger())

	playlist, err := svc.CreatePlaylist(context.Background(), owner.ID, CreatePlaylistRequest{
		Name: "Private",
	})
	require.NoError(t, err)

	got, err := svc.GetPlaylist(context.Background(), playlist.ID, owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, playlist.ID, got.ID)

	_, err = svc.GetPlaylist(context.Background(), playlist.ID, other.ID, false)
	require.Error(t, err)

	got, err = svc.GetPlaylist(context.Background(), playlist.ID, other.ID, true)
	require.NoError(t, err)
	assert.Equal(t, playlist.ID, got.ID)
}

func TestListPlaylists(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	user := createTestUser(t, s, "curator@example.com")
	other := createTestUser(t, s, "other@example.com")

	svc := NewPlaylistService(s, testLogger())

	_, err := svc.CreatePlaylist(context.Background(), user.ID, CreatePlaylistRequest{Name: "A"})
	require.NoError(t, err)
	_, err = svc.CreatePlaylist(context.Background(), user.ID, CreatePlaylistRequest{Name: "B"})
	require.NoError(t, err)
	_, err = svc.CreatePlaylist(context.Background(), other.ID, CreatePlaylistRequest{Name: "C"})
	require.NoError(t, err)

	playlists, err := svc.ListPlaylists(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, playlists, 2)
}
