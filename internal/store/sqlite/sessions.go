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

const sessionColumns = `id, user_id, refresh_token_hash, client_name, ip_address,
	created_at, last_seen_at, expires_at`

func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.Session, error) {
	var s domain.Session

	var (
		clientName sql.NullString
		ipAddress  sql.NullString
		createdAt  string
		lastSeenAt string
		expiresAt  string
	)

	err := scanner.Scan(
		&s.ID,
		&s.UserID,
		&s.RefreshTokenHash,
		&clientName,
		&ipAddress,
		&createdAt,
		&lastSeenAt,
		&expiresAt,
	)
	if err != nil {
		return nil, err
	}

	if clientName.Valid {
		s.ClientName = clientName.String
	}
	if ipAddress.Valid {
		s.IPAddress = ipAddress.String
	}

	s.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	s.LastSeenAt, err = parseTime(lastSeenAt)
	if err != nil {
		return nil, err
	}
	s.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// CreateSession inserts a new auth session.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	now := time.Now()
	session.CreatedAt = now
	session.LastSeenAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, refresh_token_hash, client_name,
			ip_address, created_at, last_seen_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.RefreshTokenHash,
		nullableString(session.ClientName),
		nullableString(session.IPAddress),
		formatTime(session.CreatedAt),
		formatTime(session.LastSeenAt),
		formatTime(session.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSessionByRefreshTokenHash looks up a session by the hash of its refresh
// token.
func (s *Store) GetSessionByRefreshTokenHash(ctx context.Context, hash string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token_hash = ?`, hash)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return session, nil
}

// UpdateSession persists rotation of the refresh token and activity timestamps.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	session.LastSeenAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET refresh_token_hash = ?, client_name = ?, ip_address = ?,
			last_seen_at = ?, expires_at = ?
		WHERE id = ?`,
		session.RefreshTokenHash,
		nullableString(session.ClientName),
		nullableString(session.IPAddress),
		formatTime(session.LastSeenAt),
		formatTime(session.ExpiresAt),
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrSessionNotFound
	}
	return nil
}

// DeleteSession removes a session (logout).
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrSessionNotFound
	}
	return nil
}

// DeleteExpiredSessions removes sessions past their expiry and returns the
// number removed.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions rows affected: %w", err)
	}
	return int(affected), nil
}
