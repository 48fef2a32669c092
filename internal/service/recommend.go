package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/store"
)

// maxRecommendations caps the size of a recommendation list.
const maxRecommendations = 10

// RecommendationService produces per-user record suggestions from purchase
// history. It blends two signals:
//
//  1. Collaborative: records bought by other customers whose purchases
//     overlap with this user's, ranked by how often they co-occur.
//  2. Content: records sharing a genre or artist with something the user
//     already bought, in catalog order.
//
// Collaborative hits come first; content matches fill the remaining slots.
// Records the user has already purchased are never suggested.
type RecommendationService struct {
	store  store.Store
	logger *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(store store.Store, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{
		store:  store,
		logger: logger,
	}
}

// Recommend returns up to 10 suggested records for the user.
// A user with no purchase history gets an empty list, not an error. The only
// domain error is a missing user.
func (s *RecommendationService) Recommend(ctx context.Context, userID string) ([]*domain.Record, error) {
	// The user must exist even if we end up returning nothing.
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	userOrders, err := s.store.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}

	// No history means no signal to recommend from.
	if len(userOrders) == 0 {
		return []*domain.Record{}, nil
	}

	// Everything the user already owns is excluded from suggestions.
	owned := make(map[string]struct{})
	for _, order := range userOrders {
		for _, recordID := range order.RecordIDs() {
			owned[recordID] = struct{}{}
		}
	}

	collaborative, err := s.collaborativeCandidates(ctx, userID, owned)
	if err != nil {
		return nil, err
	}

	catalog, err := s.store.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	byID := make(map[string]*domain.Record, len(catalog))
	for _, record := range catalog {
		byID[record.ID] = record
	}

	results := make([]*domain.Record, 0, maxRecommendations)
	included := make(map[string]struct{})

	// Collaborative hits first, strongest signal leading.
	for _, recordID := range collaborative {
		record, ok := byID[recordID]
		if !ok {
			// Purchased record since removed from the catalog.
			continue
		}
		results = append(results, record)
		included[recordID] = struct{}{}
		if len(results) == maxRecommendations {
			return results, nil
		}
	}

	// Content matches fill the rest, in catalog order.
	ownedRecords := make([]*domain.Record, 0, len(owned))
	for recordID := range owned {
		if record, ok := byID[recordID]; ok {
			ownedRecords = append(ownedRecords, record)
		}
	}

	for _, candidate := range catalog {
		if _, isOwned := owned[candidate.ID]; isOwned {
			continue
		}
		if _, already := included[candidate.ID]; already {
			continue
		}
		for _, ownedRecord := range ownedRecords {
			if candidate.MatchesTaste(ownedRecord) {
				results = append(results, candidate)
				included[candidate.ID] = struct{}{}
				break
			}
		}
		if len(results) == maxRecommendations {
			break
		}
	}

	s.logger.Debug("recommendations computed",
		"user_id", userID,
		"collaborative", len(collaborative),
		"total", len(results),
	)

	return results, nil
}

// collaborativeCandidates returns record IDs bought by users whose purchases
// overlap with this user's, ranked by co-purchase count descending. Ties
// break on record ID for stable output.
func (s *RecommendationService) collaborativeCandidates(ctx context.Context, userID string, owned map[string]struct{}) ([]string, error) {
	allOrders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	counts := make(map[string]int)
	for _, order := range allOrders {
		if order.UserID == userID {
			continue
		}

		// Only orders that share a record with the user count as overlap.
		overlaps := false
		for _, recordID := range order.RecordIDs() {
			if _, ok := owned[recordID]; ok {
				overlaps = true
				break
			}
		}
		if !overlaps {
			continue
		}

		for _, recordID := range order.RecordIDs() {
			if _, ok := owned[recordID]; ok {
				continue
			}
			counts[recordID]++
		}
	}

	candidates := make([]string, 0, len(counts))
	for recordID := range counts {
		candidates = append(candidates, recordID)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if counts[candidates[i]] != counts[candidates[j]] {
			return counts[candidates[i]] > counts[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})

	return candidates, nil
}
