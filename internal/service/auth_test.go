package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juzzt/juzzt-server/internal/auth"
	"github.com/juzzt/juzzt-server/internal/domain"
	domainerrors "github.com/juzzt/juzzt-server/internal/errors"
	"github.com/juzzt/juzzt-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuth(t *testing.T, s store.Store) *AuthService {
	t.Helper()

	key := bytes.Repeat([]byte{0x42}, 32)
	tokenService, err := auth.NewTokenService(key, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	sessionService := NewSessionService(s, tokenService, testLogger())
	return NewAuthService(s, tokenService, sessionService, testLogger())
}

func TestRegister(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupAuth(t, s)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "new@example.com",
		Password:    "correct horse battery",
		DisplayName: "New User",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.Equal(t, domain.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken, "registration logs the user in")
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, "correct horse battery", resp.User.PasswordHash)

	claims, err := svc.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupAuth(t, s)

	req := RegisterRequest{
		Email:       "taken@example.com",
		Password:    "correct horse battery",
		DisplayName: "First",
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	req.DisplayName = "Second"
	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainErr.Code)
}

func TestRegister_Validation(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupAuth(t, s)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "not-an-email", Password: "long enough pass", DisplayName: "X"}},
		{"short password", RegisterRequest{Email: "x@example.com", Password: "short", DisplayName: "X"}},
		{"missing display name", RegisterRequest{Email: "x@example.com", Password: "long enough pass"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupAuth(t, s)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "user@example.com",
		Password:    "correct horse battery",
		DisplayName: "User",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "user@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
}

func TestLogin_BadCredentials(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupAuth(t, s)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "user@example.com",
		Password:    "correct horse battery",
		DisplayName: "User",
	})
	require.NoError(t, err)

	// Wrong password and unknown email must be indistinguishable.
	for _, req := range []LoginRequest{
		{Email: "user@example.com", Password: "wrong password"},
		{Email: "nobody@example.com", Password: "correct horse battery"},
	} {
		_, err := svc.Login(context.Background(), req)
		require.Error(t, err)

		var domainErr *domainerrors.Error
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
	}
}

func TestRefresh_RotatesTokens(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupAuth(t, s)

	registered, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "user@example.com",
		Password:    "correct horse battery",
		DisplayName: "User",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, registered.SessionID, refreshed.SessionID, "rotation keeps the session")

	// The old refresh token is dead after rotation.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeTokenExpired, domainErr.Code)
}

func TestLogout_KillsRefreshToken(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupAuth(t, s)

	registered, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "user@example.com",
		Password:    "correct horse battery",
		DisplayName: "User",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), registered.SessionID))

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	require.Error(t, err)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := setupAuth(t, s)

	_, err := svc.VerifyAccessToken("v4.local.not-a-real-token")
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeUnauthorized, domainErr.Code)
}

func TestPurgeExpiredSessions(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	key := bytes.Repeat([]byte{0x42}, 32)
	tokenService, err := auth.NewTokenService(key, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	sessions := NewSessionService(s, tokenService, testLogger())

	user := createTestUser(t, s, "user@example.com")

	live, err := sessions.CreateSession(context.Background(), user, "test", "127.0.0.1")
	require.NoError(t, err)

	// Backdate a second session past its expiry.
	expired := &domain.Session{
		ID:               "ses-expired",
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken("stale"),
		CreatedAt:        time.Now().Add(-60 * 24 * time.Hour),
		LastSeenAt:       time.Now().Add(-31 * 24 * time.Hour),
		ExpiresAt:        time.Now().Add(-24 * time.Hour),
	}
	require.NoError(t, s.CreateSession(context.Background(), expired))

	n, err := sessions.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetSessionByRefreshTokenHash(context.Background(), auth.HashRefreshToken(live.RefreshToken))
	assert.NoError(t, err, "live session survives the purge")
	_, err = s.GetSessionByRefreshTokenHash(context.Background(), expired.RefreshTokenHash)
	assert.True(t, errors.Is(err, store.ErrSessionNotFound))
}
