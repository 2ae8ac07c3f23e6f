package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/mwo/internal/ports/secondary"
)

// OrderNumberSequence implements secondary.OrderNumberSequence with a
// counter row per hotel and year.
type OrderNumberSequence struct {
	db *sql.DB
}

// NewOrderNumberSequence creates a new SQLite order number sequence.
func NewOrderNumberSequence(db *sql.DB) *OrderNumberSequence {
	return &OrderNumberSequence{db: db}
}

// Next advances the hotel/year counter in a single statement. A missing row
// is seeded from the highest sequence already used under prefix.
func (s *OrderNumberSequence) Next(ctx context.Context, hotelID int64, year int, prefix string) (int, error) {
	var next int
	err := conn(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO order_number_sequences (hotel_id, year, last_value)
		VALUES (?, ?, 1 + (
			SELECT COALESCE(MAX(CAST(SUBSTR(order_number, -5) AS INTEGER)), 0)
			FROM maintenance_orders
			WHERE hotel_id = ? AND SUBSTR(order_number, 1, LENGTH(?)) = ?
		))
		ON CONFLICT (hotel_id, year) DO UPDATE SET last_value = last_value + 1
		RETURNING last_value`,
		hotelID, year, hotelID, prefix, prefix,
	).Scan(&next)
	if err != nil {
		return 0, mapError("next order number", err)
	}
	return next, nil
}

// Ensure OrderNumberSequence implements the interface
var _ secondary.OrderNumberSequence = (*OrderNumberSequence)(nil)
