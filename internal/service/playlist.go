package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/juzzt/juzzt-server/internal/domain"
	domainerrors "github.com/juzzt/juzzt-server/internal/errors"
	"github.com/juzzt/juzzt-server/internal/id"
	"github.com/juzzt/juzzt-server/internal/store"
)

// PlaylistService manages user-curated record lists.
type PlaylistService struct {
	store  store.Store
	logger *slog.Logger
}

// NewPlaylistService creates a new playlist service.
func NewPlaylistService(store store.Store, logger *slog.Logger) *PlaylistService {
	return &PlaylistService{
		store:  store,
		logger: logger,
	}
}

// CreatePlaylistRequest contains the fields for a new playlist.
type CreatePlaylistRequest struct {
	Name      string   `json:"name" validate:"required,max=200"`
	RecordIDs []string `json:"record_ids"`
}

// CreatePlaylist creates a playlist for the user.
// Every referenced record must exist.
func (s *PlaylistService) CreatePlaylist(ctx context.Context, userID string, req CreatePlaylistRequest) (*domain.Playlist, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	for _, recordID := range req.RecordIDs {
		if _, err := s.store.GetRecord(ctx, recordID); err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return nil, domainerrors.Validation(fmt.Sprintf("record %s does not exist", recordID))
			}
			return nil, fmt.Errorf("lookup record %s: %w", recordID, err)
		}
	}

	playlistID, err := id.Generate(id.Playlist)
	if err != nil {
		return nil, fmt.Errorf("generate playlist ID: %w", err)
	}

	now := time.Now()
	playlist := &domain.Playlist{
		ID:        playlistID,
		UserID:    userID,
		Name:      req.Name,
		RecordIDs: req.RecordIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreatePlaylist(ctx, playlist); err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}

	s.logger.Info("playlist created",
		"playlist_id", playlistID,
		"user_id", userID,
		"records", len(req.RecordIDs),
	)

	return playlist, nil
}

// GetPlaylist fetches a playlist, restricted to its owner unless the caller
// is an admin.
func (s *PlaylistService) GetPlaylist(ctx context.Context, playlistID, callerID string, callerIsAdmin bool) (*domain.Playlist, error) {
	playlist, err := s.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	if playlist.UserID != callerID && !callerIsAdmin {
		return nil, domainerrors.Forbidden("playlist belongs to another user")
	}

	return playlist, nil
}

// ListPlaylists returns the user's playlists.
func (s *PlaylistService) ListPlaylists(ctx context.Context, userID string) ([]*domain.Playlist, error) {
	return s.store.ListPlaylistsByUser(ctx, userID)
}

// AddRecord appends a record to a playlist. Adding a record that is already
// present is a no-op, not an error.
func (s *PlaylistService) AddRecord(ctx context.Context, playlistID, recordID, callerID string) (*domain.Playlist, error) {
	playlist, err := s.store.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.UserID != callerID {
		return nil, domainerrors.Forbidden("playlist belongs to another user")
	}

	if _, err := s.store.GetRecord(ctx, recordID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, domainerrors.Validation(fmt.Sprintf("record %s does not exist", recordID))
		}
		return nil, fmt.Errorf("lookup record: %w", err)
	}

	if playlist.HasRecord(recordID) {
		return playlist, nil
	}

	if err := s.store.AddRecordToPlaylist(ctx, playlistID, recordID); err != nil {
		return nil, fmt.Errorf("add record to playlist: %w", err)
	}

	playlist.RecordIDs = append(playlist.RecordIDs, recordID)
	playlist.UpdatedAt = time.Now()
	return playlist, nil
}
