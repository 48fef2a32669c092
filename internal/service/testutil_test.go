package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/id"
	"github.com/juzzt/juzzt-server/internal/store"
	"github.com/juzzt/juzzt-server/internal/store/sqlite"
	"github.com/stretchr/testify/require"
)

// setupStore creates a temporary sqlite store for testing.
func setupStore(t *testing.T) (store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "juzzt-service-test-*")
	require.NoError(t, err)

	s, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), testLogger())
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// createTestUser inserts a user with defaults.
func createTestUser(t *testing.T, s store.Store, email string) *domain.User {
	t.Helper()

	now := time.Now()
	user := &domain.User{
		ID:           id.MustGenerate(id.User),
		CreatedAt:    now,
		UpdatedAt:    now,
		Email:        email,
		DisplayName:  email,
		Role:         domain.RoleUser,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

// createTestRecord inserts a catalog record.
func createTestRecord(t *testing.T, s store.Store, title, artist, genre string, price float64) *domain.Record {
	t.Helper()

	now := time.Now()
	record := &domain.Record{
		ID:        id.MustGenerate(id.Record),
		CreatedAt: now,
		UpdatedAt: now,
		Title:     title,
		Artist:    artist,
		Genre:     genre,
		Price:     price,
	}
	require.NoError(t, s.CreateRecord(context.Background(), record))
	return record
}

// createTestOrder inserts an order of the given records, one unit each.
func createTestOrder(t *testing.T, s store.Store, userID string, records ...*domain.Record) *domain.Order {
	t.Helper()

	order := &domain.Order{
		ID:        id.MustGenerate(id.Order),
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	for _, record := range records {
		order.Lines = append(order.Lines, domain.OrderLine{
			ID:        id.MustGenerate(id.Line),
			OrderID:   order.ID,
			RecordID:  record.ID,
			Quantity:  1,
			UnitPrice: record.Price,
		})
		order.TotalPrice += record.Price
	}
	require.NoError(t, s.CreateOrder(context.Background(), order))
	return order
}
