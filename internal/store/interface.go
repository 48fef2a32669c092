// Package store defines the persistence interface for the juzzt server.
package store

import (
	"context"

	"github.com/juzzt/juzzt-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	SetSearchIndexer(indexer SearchIndexer)

	// Records
	CreateRecord(ctx context.Context, record *domain.Record) error
	GetRecord(ctx context.Context, id string) (*domain.Record, error)
	ListRecords(ctx context.Context) ([]*domain.Record, error)
	ListRecordsMissingMusicBrainzID(ctx context.Context) ([]*domain.Record, error)
	UpdateRecord(ctx context.Context, record *domain.Record) error
	DeleteRecord(ctx context.Context, id string) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	ListUsers(ctx context.Context) ([]*domain.User, error)

	// Orders
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error)

	// Playlists
	CreatePlaylist(ctx context.Context, playlist *domain.Playlist) error
	GetPlaylist(ctx context.Context, id string) (*domain.Playlist, error)
	ListPlaylistsByUser(ctx context.Context, userID string) ([]*domain.Playlist, error)
	AddRecordToPlaylist(ctx context.Context, playlistID, recordID string) error

	// Auth sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByRefreshTokenHash(ctx context.Context, hash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search
// implementation details.
type SearchIndexer interface {
	IndexRecord(ctx context.Context, record *domain.Record) error
	DeleteRecord(ctx context.Context, recordID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexRecord is a no-op.
func (NoopSearchIndexer) IndexRecord(context.Context, *domain.Record) error { return nil }

// DeleteRecord is a no-op.
func (NoopSearchIndexer) DeleteRecord(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}
