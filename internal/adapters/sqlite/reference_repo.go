package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/ports/secondary"
)

// ReferenceLookup implements secondary.ReferenceLookup with SQLite.
type ReferenceLookup struct {
	db *sql.DB
}

// NewReferenceLookup creates a new SQLite master-data lookup.
func NewReferenceLookup(db *sql.DB) *ReferenceLookup {
	return &ReferenceLookup{db: db}
}

func lookupErr(entity string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return failure.NotFound(entity, id)
	}
	return mapError("get "+entity, err)
}

// GetHotel retrieves a hotel by its ID.
func (r *ReferenceLookup) GetHotel(ctx context.Context, id int64) (*secondary.HotelRecord, error) {
	var h secondary.HotelRecord
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, code, name, is_active FROM hotels WHERE id = ?", id,
	).Scan(&h.ID, &h.Code, &h.Name, &h.IsActive)
	if err != nil {
		return nil, lookupErr("hotel", id, err)
	}
	return &h, nil
}

// GetDepartment retrieves a department by its ID.
func (r *ReferenceLookup) GetDepartment(ctx context.Context, id int64) (*secondary.DepartmentRecord, error) {
	var d secondary.DepartmentRecord
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, hotel_id, name FROM departments WHERE id = ?", id,
	).Scan(&d.ID, &d.HotelID, &d.Name)
	if err != nil {
		return nil, lookupErr("department", id, err)
	}
	return &d, nil
}

// GetLocation retrieves a location by its ID.
func (r *ReferenceLookup) GetLocation(ctx context.Context, id int64) (*secondary.LocationRecord, error) {
	var (
		l      secondary.LocationRecord
		parent sql.NullInt64
	)
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, hotel_id, parent_id, name FROM locations WHERE id = ?", id,
	).Scan(&l.ID, &l.HotelID, &parent, &l.Name)
	if err != nil {
		return nil, lookupErr("location", id, err)
	}
	l.ParentID = parent.Int64
	return &l, nil
}

// GetItem retrieves an item by its ID.
func (r *ReferenceLookup) GetItem(ctx context.Context, id int64) (*secondary.ItemRecord, error) {
	var (
		i        secondary.ItemRecord
		location sql.NullInt64
	)
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, hotel_id, location_id, name FROM items WHERE id = ?", id,
	).Scan(&i.ID, &i.HotelID, &location, &i.Name)
	if err != nil {
		return nil, lookupErr("item", id, err)
	}
	i.LocationID = location.Int64
	return &i, nil
}

// GetUser retrieves a user by its ID.
func (r *ReferenceLookup) GetUser(ctx context.Context, id int64) (*secondary.UserRecord, error) {
	var (
		u    secondary.UserRecord
		dept sql.NullInt64
	)
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, hotel_id, department_id, name, email, is_available, is_active FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.HotelID, &dept, &u.Name, &u.Email, &u.IsAvailable, &u.IsActive)
	if err != nil {
		return nil, lookupErr("user", id, err)
	}
	u.DepartmentID = dept.Int64
	return &u, nil
}

// Ensure ReferenceLookup implements the interface
var _ secondary.ReferenceLookup = (*ReferenceLookup)(nil)
