package domain

import "time"

// Order is a completed purchase. Orders are immutable after placement: the
// total and every line's unit price are snapshots taken at order time and are
// never recomputed when catalog prices change.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	TotalPrice float64     `json:"total_price"`
	CreatedAt  time.Time   `json:"created_at"`
	Lines      []OrderLine `json:"lines"`
}

// OrderLine is a single record purchase within an order.
type OrderLine struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	RecordID string `json:"record_id"`
	Quantity int    `json:"quantity"`
	// UnitPrice is the record's price at the moment the order was placed.
	UnitPrice float64 `json:"unit_price"`
}

// RecordIDs returns the distinct record IDs across the order's lines.
func (o *Order) RecordIDs() []string {
	seen := make(map[string]struct{}, len(o.Lines))
	ids := make([]string, 0, len(o.Lines))
	for _, line := range o.Lines {
		if _, ok := seen[line.RecordID]; ok {
			continue
		}
		seen[line.RecordID] = struct{}{}
		ids = append(ids, line.RecordID)
	}
	return ids
}

// Contains reports whether the order includes the given record.
func (o *Order) Contains(recordID string) bool {
	for _, line := range o.Lines {
		if line.RecordID == recordID {
			return true
		}
	}
	return false
}
