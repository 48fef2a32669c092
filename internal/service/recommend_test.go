package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordIDs(records []*domain.Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

func TestRecommend_UnknownUser(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	svc := NewRecommendationService(s, testLogger())

	_, err := svc.Recommend(context.Background(), "usr-missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrUserNotFound))
}

func TestRecommend_NoOrdersMeansEmpty(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	user := createTestUser(t, s, "newcomer@example.com")
	createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)

	svc := NewRecommendationService(s, testLogger())

	got, err := svc.Recommend(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecommend_ContentMatchByGenreAndArtist(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	user := createTestUser(t, s, "fan@example.com")

	bought := createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)
	sameGenre := createTestRecord(t, s, "My Favorite Things", "John Coltrane", "Modal Jazz", 24.99)
	sameArtist := createTestRecord(t, s, "Bitches Brew", "Miles Davis", "Fusion", 27.99)
	unrelated := createTestRecord(t, s, "The Köln Concert", "Keith Jarrett", "Solo Piano", 31.00)

	createTestOrder(t, s, user.ID, bought)

	svc := NewRecommendationService(s, testLogger())

	got, err := svc.Recommend(context.Background(), user.ID)
	require.NoError(t, err)

	ids := recordIDs(got)
	assert.Contains(t, ids, sameGenre.ID)
	assert.Contains(t, ids, sameArtist.ID)
	assert.NotContains(t, ids, unrelated.ID)
	assert.NotContains(t, ids, bought.ID, "purchased records must not be recommended")
}

func TestRecommend_GenreMatchIsCaseInsensitive(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	user := createTestUser(t, s, "fan@example.com")

	bought := createTestRecord(t, s, "Saxophone Colossus", "Sonny Rollins", "Bebop", 22.00)
	match := createTestRecord(t, s, "Steamin'", "Miles Davis Quintet", "BEBOP", 19.50)

	createTestOrder(t, s, user.ID, bought)

	svc := NewRecommendationService(s, testLogger())

	got, err := svc.Recommend(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Contains(t, recordIDs(got), match.ID)
}

func TestRecommend_CollaborativeViaSharedPurchase(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	alice := createTestUser(t, s, "alice@example.com")
	bob := createTestUser(t, s, "bob@example.com")

	shared := createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)
	bobsOther := createTestRecord(t, s, "Out to Lunch!", "Eric Dolphy", "Avant-Garde", 26.00)

	// Alice bought the shared record. Bob bought the shared record plus
	// another one; that other one should reach Alice collaboratively even
	// though it shares no genre or artist with her purchase.
	createTestOrder(t, s, alice.ID, shared)
	createTestOrder(t, s, bob.ID, shared, bobsOther)

	svc := NewRecommendationService(s, testLogger())

	got, err := svc.Recommend(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Contains(t, recordIDs(got), bobsOther.ID)
}

func TestRecommend_CollaborativeRankedAboveContent(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	alice := createTestUser(t, s, "alice@example.com")
	bob := createTestUser(t, s, "bob@example.com")

	shared := createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)
	collab := createTestRecord(t, s, "Out to Lunch!", "Eric Dolphy", "Avant-Garde", 26.00)
	content := createTestRecord(t, s, "Milestones", "Miles Davis", "Hard Bop", 21.00)

	createTestOrder(t, s, alice.ID, shared)
	createTestOrder(t, s, bob.ID, shared, collab)

	svc := NewRecommendationService(s, testLogger())

	got, err := svc.Recommend(context.Background(), alice.ID)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 2)

	ids := recordIDs(got)
	assert.Equal(t, collab.ID, ids[0], "collaborative hit should lead")
	assert.Contains(t, ids, content.ID)
}

func TestRecommend_NonOverlappingBuyersIgnored(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	alice := createTestUser(t, s, "alice@example.com")
	stranger := createTestUser(t, s, "stranger@example.com")

	aliceRecord := createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)
	strangerRecord := createTestRecord(t, s, "Enter the Wu-Tang", "Wu-Tang Clan", "Hip Hop", 25.00)

	createTestOrder(t, s, alice.ID, aliceRecord)
	createTestOrder(t, s, stranger.ID, strangerRecord)

	svc := NewRecommendationService(s, testLogger())

	got, err := svc.Recommend(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.NotContains(t, recordIDs(got), strangerRecord.ID,
		"purchases from users with no overlap must not leak in")
}

func TestRecommend_CappedAtTen(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	user := createTestUser(t, s, "completist@example.com")

	bought := createTestRecord(t, s, "Giant Steps", "John Coltrane", "Hard Bop", 23.00)
	createTestOrder(t, s, user.ID, bought)

	// Plenty of genre matches, more than the cap.
	for i := 0; i < 15; i++ {
		createTestRecord(t, s, fmt.Sprintf("Hard Bop Vol. %d", i), "Various", "Hard Bop", 18.00)
	}

	svc := NewRecommendationService(s, testLogger())

	got, err := svc.Recommend(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestRecommend_Idempotent(t *testing.T) {
	s, cleanup := setupStore(t)
	defer cleanup()

	user := createTestUser(t, s, "fan@example.com")
	bought := createTestRecord(t, s, "Kind of Blue", "Miles Davis", "Modal Jazz", 29.99)
	createTestRecord(t, s, "Milestones", "Miles Davis", "Hard Bop", 21.00)
	createTestOrder(t, s, user.ID, bought)

	svc := NewRecommendationService(s, testLogger())

	first, err := svc.Recommend(context.Background(), user.ID)
	require.NoError(t, err)
	second, err := svc.Recommend(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, recordIDs(first), recordIDs(second))
}
