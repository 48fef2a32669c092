package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/service"
)

func (s *Server) registerPlaylistRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createPlaylist",
		Method:      http.MethodPost,
		Path:        "/api/v1/playlists",
		Summary:     "Create playlist",
		Description: "Creates a playlist for the authenticated user",
		Tags:        []string{"Playlists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPlaylists",
		Method:      http.MethodGet,
		Path:        "/api/v1/playlists",
		Summary:     "List playlists",
		Description: "Returns the authenticated user's playlists",
		Tags:        []string{"Playlists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListPlaylists)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPlaylist",
		Method:      http.MethodGet,
		Path:        "/api/v1/playlists/{id}",
		Summary:     "Get playlist",
		Description: "Returns a playlist. Restricted to its owner unless the caller is an admin.",
		Tags:        []string{"Playlists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPlaylist)

	huma.Register(s.api, huma.Operation{
		OperationID: "addPlaylistRecord",
		Method:      http.MethodPost,
		Path:        "/api/v1/playlists/{id}/records",
		Summary:     "Add record to playlist",
		Description: "Appends a record to a playlist. Adding a record already present is a no-op.",
		Tags:        []string{"Playlists"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddPlaylistRecord)
}

// === DTOs ===

// CreatePlaylistRequest is the request body for creating a playlist.
type CreatePlaylistRequest struct {
	Name      string   `json:"name" validate:"required,max=200" doc:"Playlist name"`
	RecordIDs []string `json:"record_ids,omitempty" doc:"Initial records"`
}

// CreatePlaylistInput wraps the create request for Huma.
type CreatePlaylistInput struct {
	Body CreatePlaylistRequest
}

// PlaylistResponse contains a playlist in API responses.
type PlaylistResponse struct {
	ID        string    `json:"id" doc:"Playlist ID"`
	UserID    string    `json:"user_id" doc:"Owning user"`
	Name      string    `json:"name" doc:"Playlist name"`
	RecordIDs []string  `json:"record_ids" doc:"Records in order"`
	CreatedAt time.Time `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update timestamp"`
}

// PlaylistOutput wraps a single playlist for Huma.
type PlaylistOutput struct {
	Body PlaylistResponse
}

// PlaylistListOutput wraps a playlist list for Huma.
type PlaylistListOutput struct {
	Body []PlaylistResponse
}

// GetPlaylistInput identifies a playlist by path parameter.
type GetPlaylistInput struct {
	ID string `path:"id" doc:"Playlist ID"`
}

// AddPlaylistRecordRequest is the request body for adding a record.
type AddPlaylistRecordRequest struct {
	RecordID string `json:"record_id" validate:"required" doc:"Record to add"`
}

// AddPlaylistRecordInput wraps the add-record request for Huma.
type AddPlaylistRecordInput struct {
	ID   string `path:"id" doc:"Playlist ID"`
	Body AddPlaylistRecordRequest
}

func mapPlaylistResponse(playlist *domain.Playlist) PlaylistResponse {
	return PlaylistResponse{
		ID:        playlist.ID,
		UserID:    playlist.UserID,
		Name:      playlist.Name,
		RecordIDs: playlist.RecordIDs,
		CreatedAt: playlist.CreatedAt,
		UpdatedAt: playlist.UpdatedAt,
	}
}

// === Handlers ===

func (s *Server) handleCreatePlaylist(ctx context.Context, input *CreatePlaylistInput) (*PlaylistOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	playlist, err := s.services.Playlist.CreatePlaylist(ctx, userID, service.CreatePlaylistRequest{
		Name:      input.Body.Name,
		RecordIDs: input.Body.RecordIDs,
	})
	if err != nil {
		return nil, err
	}

	return &PlaylistOutput{Body: mapPlaylistResponse(playlist)}, nil
}

func (s *Server) handleListPlaylists(ctx context.Context, _ *struct{}) (*PlaylistListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	playlists, err := s.services.Playlist.ListPlaylists(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]PlaylistResponse, len(playlists))
	for i, playlist := range playlists {
		out[i] = mapPlaylistResponse(playlist)
	}
	return &PlaylistListOutput{Body: out}, nil
}

func (s *Server) handleGetPlaylist(ctx context.Context, input *GetPlaylistInput) (*PlaylistOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	playlist, err := s.services.Playlist.GetPlaylist(ctx, input.ID, user.ID, user.IsAdmin())
	if err != nil {
		return nil, err
	}

	return &PlaylistOutput{Body: mapPlaylistResponse(playlist)}, nil
}

func (s *Server) handleAddPlaylistRecord(ctx context.Context, input *AddPlaylistRecordInput) (*PlaylistOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	playlist, err := s.services.Playlist.AddRecord(ctx, input.ID, input.Body.RecordID, userID)
	if err != nil {
		return nil, err
	}

	return &PlaylistOutput{Body: mapPlaylistResponse(playlist)}, nil
}
