package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/ports/secondary"
)

// SparePartRepository implements secondary.SparePartRepository with SQLite.
type SparePartRepository struct {
	db *sql.DB
}

// NewSparePartRepository creates a new SQLite spare part repository.
func NewSparePartRepository(db *sql.DB) *SparePartRepository {
	return &SparePartRepository{db: db}
}

// GetByID retrieves a spare part by its ID.
func (r *SparePartRepository) GetByID(ctx context.Context, id int64) (*secondary.SparePartRecord, error) {
	var (
		p         secondary.SparePartRecord
		updatedAt sql.NullTime
	)
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, hotel_id, part_number, name, quantity_on_hand, minimum_quantity, unit_cost, updated_at
		FROM spare_parts WHERE id = ?`, id,
	).Scan(&p.ID, &p.HotelID, &p.PartNumber, &p.Name, &p.QuantityOnHand, &p.MinimumQuantity, &p.UnitCost, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, failure.NotFound("spare part", id)
	}
	if err != nil {
		return nil, mapError("get spare part", err)
	}
	p.UpdatedAt = updatedAt.Time.UTC()
	return &p, nil
}

// SetQuantity moves quantity_on_hand from before to after. The write only
// lands if no one else changed the stock in between.
func (r *SparePartRepository) SetQuantity(ctx context.Context, id int64, before, after int) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE spare_parts SET quantity_on_hand = ?, updated_at = ? WHERE id = ? AND quantity_on_hand = ?",
		after, time.Now().UTC(), id, before,
	)
	if err != nil {
		return mapError("update spare part stock", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("update spare part stock", err)
	}
	if n == 0 {
		return failure.Conflict("stock of spare part %d changed concurrently (expected %d on hand)", id, before)
	}
	return nil
}

// RecordUsage persists a consumption row.
func (r *SparePartRepository) RecordUsage(ctx context.Context, u *secondary.SparePartUsageRecord) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO order_spare_part_usages (order_id, spare_part_id, quantity_used, unit_cost, total_cost, used_by_user_id, used_at, command_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.OrderID, u.SparePartID, u.QuantityUsed, u.UnitCost, u.TotalCost, u.UsedByUserID, u.UsedAt.UTC(), nullString(u.CommandID),
	)
	if err != nil {
		return mapError("record spare part usage", err)
	}
	u.ID, err = res.LastInsertId()
	return mapError("record spare part usage", err)
}

// ListUsageByOrder returns the parts consumed by an order.
func (r *SparePartRepository) ListUsageByOrder(ctx context.Context, orderID int64) ([]*secondary.SparePartUsageRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, order_id, spare_part_id, quantity_used, unit_cost, total_cost, used_by_user_id, used_at, command_id
		FROM order_spare_part_usages WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, mapError("list spare part usage", err)
	}
	defer rows.Close()

	var out []*secondary.SparePartUsageRecord
	for rows.Next() {
		var (
			u       secondary.SparePartUsageRecord
			command sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.OrderID, &u.SparePartID, &u.QuantityUsed, &u.UnitCost, &u.TotalCost, &u.UsedByUserID, &u.UsedAt, &command); err != nil {
			return nil, mapError("scan spare part usage", err)
		}
		u.CommandID = command.String
		u.UsedAt = u.UsedAt.UTC()
		out = append(out, &u)
	}
	return out, mapError("list spare part usage", rows.Err())
}

// Ensure SparePartRepository implements the interface
var _ secondary.SparePartRepository = (*SparePartRepository)(nil)
