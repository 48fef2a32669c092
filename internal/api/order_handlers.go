package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/service"
)

func (s *Server) registerOrderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "placeOrder",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders",
		Summary:     "Place order",
		Description: "Purchases the listed records at their current prices",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePlaceOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "listOrders",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders",
		Summary:     "List orders",
		Description: "Returns the authenticated user's orders, newest first",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListOrders)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOrder",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders/{id}",
		Summary:     "Get order",
		Description: "Returns a single order. Restricted to its owner unless the caller is an admin.",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetOrder)
}

// === DTOs ===

// OrderLineRequest is a single item in a purchase request.
type OrderLineRequest struct {
	RecordID string `json:"record_id" validate:"required" doc:"Record to purchase"`
	Quantity int    `json:"quantity" validate:"required,gt=0" doc:"Number of copies"`
}

// PlaceOrderRequest is the request body for placing an order.
type PlaceOrderRequest struct {
	Lines []OrderLineRequest `json:"lines" validate:"required,min=1,dive" doc:"Items to purchase"`
}

// PlaceOrderInput wraps the order request for Huma.
type PlaceOrderInput struct {
	Body PlaceOrderRequest
}

// OrderLineResponse is a single purchased line in API responses.
type OrderLineResponse struct {
	ID        string  `json:"id" doc:"Line ID"`
	RecordID  string  `json:"record_id" doc:"Purchased record"`
	Quantity  int     `json:"quantity" doc:"Number of copies"`
	UnitPrice float64 `json:"unit_price" doc:"Price per copy at order time"`
}

// OrderResponse contains an order in API responses.
type OrderResponse struct {
	ID         string              `json:"id" doc:"Order ID"`
	UserID     string              `json:"user_id" doc:"Purchasing user"`
	TotalPrice float64             `json:"total_price" doc:"Order total at order time"`
	CreatedAt  time.Time           `json:"created_at" doc:"Placement timestamp"`
	Lines      []OrderLineResponse `json:"lines" doc:"Purchased items"`
}

// OrderOutput wraps a single order for Huma.
type OrderOutput struct {
	Body OrderResponse
}

// OrderListOutput wraps an order list for Huma.
type OrderListOutput struct {
	Body []OrderResponse
}

// GetOrderInput identifies an order by path parameter.
type GetOrderInput struct {
	ID string `path:"id" doc:"Order ID"`
}

func mapOrderResponse(order *domain.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = OrderLineResponse{
			ID:        line.ID,
			RecordID:  line.RecordID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	return OrderResponse{
		ID:         order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
		Lines:      lines,
	}
}

// === Handlers ===

func (s *Server) handlePlaceOrder(ctx context.Context, input *PlaceOrderInput) (*OrderOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]service.OrderLineRequest, len(input.Body.Lines))
	for i, line := range input.Body.Lines {
		lines[i] = service.OrderLineRequest{
			RecordID: line.RecordID,
			Quantity: line.Quantity,
		}
	}

	order, err := s.services.Order.PlaceOrder(ctx, userID, service.PlaceOrderRequest{Lines: lines})
	if err != nil {
		return nil, err
	}

	return &OrderOutput{Body: mapOrderResponse(order)}, nil
}

func (s *Server) handleListOrders(ctx context.Context, _ *struct{}) (*OrderListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := s.services.Order.ListOrdersForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]OrderResponse, len(orders))
	for i, order := range orders {
		out[i] = mapOrderResponse(order)
	}
	return &OrderListOutput{Body: out}, nil
}

func (s *Server) handleGetOrder(ctx context.Context, input *GetOrderInput) (*OrderOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Order.GetOrder(ctx, input.ID, user.ID, user.IsAdmin())
	if err != nil {
		return nil, err
	}

	return &OrderOutput{Body: mapOrderResponse(order)}, nil
}
