package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/store"
)

// CreatePlaylist inserts a playlist and its initial records.
func (s *Store) CreatePlaylist(ctx context.Context, playlist *domain.Playlist) error {
	now := time.Now()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin playlist tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO playlists (id, user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		playlist.ID,
		playlist.UserID,
		playlist.Name,
		formatTime(playlist.CreatedAt),
		formatTime(playlist.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert playlist: %w", err)
	}

	for i, recordID := range playlist.RecordIDs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO playlist_records (playlist_id, record_id, position)
			VALUES (?, ?, ?)`,
			playlist.ID, recordID, i,
		)
		if err != nil {
			return fmt.Errorf("insert playlist record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit playlist: %w", err)
	}
	return nil
}

// GetPlaylist returns a playlist with its record IDs in position order.
func (s *Store) GetPlaylist(ctx context.Context, id string) (*domain.Playlist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at, updated_at FROM playlists WHERE id = ?`, id)

	playlist, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist %s: %w", id, err)
	}

	if err := s.loadPlaylistRecords(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// ListPlaylistsByUser returns a user's playlists with record IDs loaded.
func (s *Store) ListPlaylistsByUser(ctx context.Context, userID string) ([]*domain.Playlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at, updated_at FROM playlists
		 WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list playlists for user %s: %w", userID, err)
	}
	defer rows.Close()

	var playlists []*domain.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	for _, playlist := range playlists {
		if err := s.loadPlaylistRecords(ctx, playlist); err != nil {
			return nil, err
		}
	}
	return playlists, nil
}

// AddRecordToPlaylist appends a record to the end of a playlist.
// Adding a record that is already present is a no-op.
func (s *Store) AddRecordToPlaylist(ctx context.Context, playlistID, recordID string) error {
	playlist, err := s.GetPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}
	if playlist.HasRecord(recordID) {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO playlist_records (playlist_id, record_id, position)
		VALUES (?, ?, ?)`,
		playlistID, recordID, len(playlist.RecordIDs),
	)
	if err != nil {
		return fmt.Errorf("add record to playlist: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE playlists SET updated_at = ? WHERE id = ?`,
		formatTime(time.Now()), playlistID)
	if err != nil {
		return fmt.Errorf("touch playlist: %w", err)
	}
	return nil
}

func scanPlaylist(scanner interface{ Scan(dest ...any) error }) (*domain.Playlist, error) {
	var p domain.Playlist
	var createdAt, updatedAt string

	if err := scanner.Scan(&p.ID, &p.UserID, &p.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) loadPlaylistRecords(ctx context.Context, playlist *domain.Playlist) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id FROM playlist_records WHERE playlist_id = ? ORDER BY position ASC`,
		playlist.ID)
	if err != nil {
		return fmt.Errorf("list playlist records: %w", err)
	}
	defer rows.Close()

	playlist.RecordIDs = nil
	for rows.Next() {
		var recordID string
		if err := rows.Scan(&recordID); err != nil {
			return fmt.Errorf("scan playlist record: %w", err)
		}
		playlist.RecordIDs = append(playlist.RecordIDs, recordID)
	}
	return rows.Err()
}
