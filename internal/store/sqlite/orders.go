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

// CreateOrder inserts an order and all of its lines in a single transaction.
// Line unit prices are stored as given; they are snapshots and never touched
// again.
func (s *Store) CreateOrder(ctx context.Context, order *domain.Order) error {
	order.CreatedAt = time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_price, created_at)
		VALUES (?, ?, ?, ?)`,
		order.ID,
		order.UserID,
		order.TotalPrice,
		formatTime(order.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		line.OrderID = order.ID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (id, order_id, record_id, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)`,
			line.ID,
			line.OrderID,
			line.RecordID,
			line.Quantity,
			line.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

// GetOrder returns an order with its lines eagerly loaded.
func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, total_price, created_at FROM orders WHERE id = ?`, id)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}

	lines, err := s.orderLines(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order.Lines = lines[id]
	return order, nil
}

// ListOrders returns every order in the system with lines eagerly loaded.
// The recommendation engine scans this full set for co-purchase overlap, so
// lines are fetched in one query rather than per order.
func (s *Store) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, total_price, created_at FROM orders ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	return s.collectOrdersWithLines(ctx, rows)
}

// ListOrdersByUser returns a user's orders, newest first, with lines
// eagerly loaded.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, total_price, created_at FROM orders
		 WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	return s.collectOrdersWithLines(ctx, rows)
}

// scanOrder scans an order row without its lines.
func scanOrder(scanner interface{ Scan(dest ...any) error }) (*domain.Order, error) {
	var o domain.Order
	var createdAt string

	if err := scanner.Scan(&o.ID, &o.UserID, &o.TotalPrice, &createdAt); err != nil {
		return nil, err
	}

	var err error
	o.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// collectOrdersWithLines drains order rows and attaches their lines in a
// single follow-up query.
func (s *Store) collectOrdersWithLines(ctx context.Context, rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	var ids []string
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	lines, err := s.orderLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		order.Lines = lines[order.ID]
	}
	return orders, nil
}

// orderLines loads the lines for a set of orders keyed by order ID.
func (s *Store) orderLines(ctx context.Context, orderIDs []string) (map[string][]domain.OrderLine, error) {
	query := `SELECT id, order_id, record_id, quantity, unit_price FROM order_lines
		WHERE order_id IN (` + placeholders(len(orderIDs)) + `) ORDER BY id ASC`

	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[string][]domain.OrderLine, len(orderIDs))
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.RecordID, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines[line.OrderID] = append(lines[line.OrderID], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return lines, nil
}

// placeholders builds "?, ?, ..." for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, '?')
	}
	return string(buf)
}
