package api

import (
	"github.com/juzzt/juzzt-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth      *service.AuthService
	Catalog   *service.CatalogService
	Order     *service.OrderService
	Playlist  *service.PlaylistService
	Recommend *service.RecommendationService
	Enrich    *service.EnrichmentService
	Search    *service.SearchService
	Session   *service.SessionService
}
