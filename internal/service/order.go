package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/juzzt/juzzt-server/internal/domain"
	domainerrors "github.com/juzzt/juzzt-server/internal/errors"
	"github.com/juzzt/juzzt-server/internal/id"
	"github.com/juzzt/juzzt-server/internal/store"
)

// OrderService handles order placement and retrieval.
type OrderService struct {
	store  store.Store
	logger *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(store store.Store, logger *slog.Logger) *OrderService {
	return &OrderService{
		store:  store,
		logger: logger,
	}
}

// OrderLineRequest is a single item in a purchase.
type OrderLineRequest struct {
	RecordID string `json:"record_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// PlaceOrderRequest contains the items to purchase.
type PlaceOrderRequest struct {
	Lines []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PlaceOrder creates an order for the user, snapshotting each record's
// current price into the order lines. The total and unit prices never change
// afterwards, even when catalog prices do.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (*domain.Order, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	// The user must exist; a deleted account can't buy records.
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	orderID, err := id.Generate(id.Order)
	if err != nil {
		return nil, fmt.Errorf("generate order ID: %w", err)
	}

	// Merge duplicate record lines before pricing.
	quantities := make(map[string]int)
	orderedIDs := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		if _, seen := quantities[line.RecordID]; !seen {
			orderedIDs = append(orderedIDs, line.RecordID)
		}
		quantities[line.RecordID] += line.Quantity
	}

	order := &domain.Order{
		ID:        orderID,
		UserID:    userID,
		CreatedAt: time.Now(),
		Lines:     make([]domain.OrderLine, 0, len(orderedIDs)),
	}

	for _, recordID := range orderedIDs {
		record, err := s.store.GetRecord(ctx, recordID)
		if err != nil {
			if errors.Is(err, store.ErrRecordNotFound) {
				return nil, domainerrors.Validation(fmt.Sprintf("record %s does not exist", recordID))
			}
			return nil, fmt.Errorf("lookup record %s: %w", recordID, err)
		}

		lineID, err := id.Generate(id.Line)
		if err != nil {
			return nil, fmt.Errorf("generate line ID: %w", err)
		}

		qty := quantities[recordID]
		order.Lines = append(order.Lines, domain.OrderLine{
			ID:        lineID,
			OrderID:   orderID,
			RecordID:  recordID,
			Quantity:  qty,
			UnitPrice: record.Price,
		})
		order.TotalPrice += record.Price * float64(qty)
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order placed",
		"order_id", orderID,
		"user_id", userID,
		"lines", len(order.Lines),
		"total", order.TotalPrice,
	)

	return order, nil
}

// GetOrder fetches an order, restricted to its owner unless the caller is an
// admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID, callerID string, callerIsAdmin bool) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != callerID && !callerIsAdmin {
		return nil, domainerrors.Forbidden("order belongs to another user")
	}

	return order, nil
}

// ListOrdersForUser returns the user's orders, newest first.
func (s *OrderService) ListOrdersForUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}
