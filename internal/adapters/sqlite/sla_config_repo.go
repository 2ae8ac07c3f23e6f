package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/mwo/internal/ports/secondary"
)

// SLAConfigRepository implements secondary.SLAConfigRepository with SQLite.
type SLAConfigRepository struct {
	db *sql.DB
}

// NewSLAConfigRepository creates a new SQLite SLA configuration repository.
func NewSLAConfigRepository(db *sql.DB) *SLAConfigRepository {
	return &SLAConfigRepository{db: db}
}

const slaSelectCols = "id, hotel_id, priority, response_time_minutes, resolution_time_minutes, is_active"

func scanSLAConfig(scanner rowScanner) (*secondary.SLAConfigRecord, error) {
	var c secondary.SLAConfigRecord
	if err := scanner.Scan(&c.ID, &c.HotelID, &c.Priority, &c.ResponseTimeMinutes, &c.ResolutionTimeMinutes, &c.IsActive); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetActive returns the active configuration for hotel/priority, or nil.
func (r *SLAConfigRepository) GetActive(ctx context.Context, hotelID int64, priority string) (*secondary.SLAConfigRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+slaSelectCols+" FROM sla_configurations WHERE hotel_id = ? AND priority = ? AND is_active = 1",
		hotelID, priority)

	c, err := scanSLAConfig(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("get sla configuration", err)
	}
	return c, nil
}

// ListByHotel returns every configuration of a hotel.
func (r *SLAConfigRepository) ListByHotel(ctx context.Context, hotelID int64) ([]*secondary.SLAConfigRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+slaSelectCols+` FROM sla_configurations WHERE hotel_id = ?
		ORDER BY CASE priority WHEN 'critical' THEN 1 WHEN 'high' THEN 2 WHEN 'medium' THEN 3 ELSE 4 END, id`,
		hotelID)
	if err != nil {
		return nil, mapError("list sla configurations", err)
	}
	defer rows.Close()

	var out []*secondary.SLAConfigRecord
	for rows.Next() {
		c, err := scanSLAConfig(rows)
		if err != nil {
			return nil, mapError("scan sla configuration", err)
		}
		out = append(out, c)
	}
	return out, mapError("list sla configurations", rows.Err())
}

// Ensure SLAConfigRepository implements the interface
var _ secondary.SLAConfigRepository = (*SLAConfigRepository)(nil)
