package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	domainerrors "github.com/juzzt/juzzt-server/internal/errors"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/{userId}",
		Summary:     "Get recommendations",
		Description: "Returns up to 10 recommended records based on the user's purchase history. A user with no orders gets an empty list.",
		Tags:        []string{"Recommendations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecommendations)
}

// === DTOs ===

// GetRecommendationsInput identifies the target user.
type GetRecommendationsInput struct {
	UserID string `path:"userId" doc:"User to recommend for"`
}

// === Handlers ===

func (s *Server) handleGetRecommendations(ctx context.Context, input *GetRecommendationsInput) (*RecordListOutput, error) {
	caller, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	// Recommendations reveal purchase history, so only the user themselves
	// or an admin may ask.
	if caller.ID != input.UserID && !caller.IsAdmin() {
		return nil, domainerrors.Forbidden("Cannot view another user's recommendations")
	}

	records, err := s.services.Recommend.Recommend(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	return &RecordListOutput{Body: mapRecordListResponse(records)}, nil
}
