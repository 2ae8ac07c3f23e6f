package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/mwo/internal/ports/secondary"
)

// HistoryRepository implements secondary.HistoryRepository with SQLite.
// The tables reject UPDATE and DELETE through triggers.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new SQLite history repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// AppendStatus records a status change.
func (r *HistoryRepository) AppendStatus(ctx context.Context, e *secondary.StatusHistoryRecord) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO order_status_history (order_id, from_status, to_status, changed_by_user_id, changed_at, notes, command_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.OrderID, nullString(e.FromStatus), e.ToStatus, e.ChangedByUserID, e.ChangedAt.UTC(), nullString(e.Notes), nullString(e.CommandID),
	)
	if err != nil {
		return mapError("append status history", err)
	}
	e.ID, err = res.LastInsertId()
	return mapError("append status history", err)
}

// AppendAssignment records an assignment change.
func (r *HistoryRepository) AppendAssignment(ctx context.Context, e *secondary.AssignmentHistoryRecord) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO order_assignment_history (order_id, from_department_id, to_department_id, from_user_id, to_user_id, assigned_by_user_id, assigned_at, reason, command_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.OrderID, nullInt64(e.FromDepartmentID), nullInt64(e.ToDepartmentID), nullInt64(e.FromUserID), nullInt64(e.ToUserID),
		e.AssignedByUserID, e.AssignedAt.UTC(), nullString(e.Reason), nullString(e.CommandID),
	)
	if err != nil {
		return mapError("append assignment history", err)
	}
	e.ID, err = res.LastInsertId()
	return mapError("append assignment history", err)
}

// ListStatus returns an order's status history, oldest first.
func (r *HistoryRepository) ListStatus(ctx context.Context, orderID int64) ([]*secondary.StatusHistoryRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, order_id, from_status, to_status, changed_by_user_id, changed_at, notes, command_id
		FROM order_status_history WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, mapError("list status history", err)
	}
	defer rows.Close()

	var out []*secondary.StatusHistoryRecord
	for rows.Next() {
		var (
			e                    secondary.StatusHistoryRecord
			from, notes, command sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &from, &e.ToStatus, &e.ChangedByUserID, &e.ChangedAt, &notes, &command); err != nil {
			return nil, mapError("scan status history", err)
		}
		e.FromStatus = from.String
		e.Notes = notes.String
		e.CommandID = command.String
		e.ChangedAt = e.ChangedAt.UTC()
		out = append(out, &e)
	}
	return out, mapError("list status history", rows.Err())
}

// ListAssignments returns an order's assignment history, oldest first.
func (r *HistoryRepository) ListAssignments(ctx context.Context, orderID int64) ([]*secondary.AssignmentHistoryRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, order_id, from_department_id, to_department_id, from_user_id, to_user_id, assigned_by_user_id, assigned_at, reason, command_id
		FROM order_assignment_history WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, mapError("list assignment history", err)
	}
	defer rows.Close()

	var out []*secondary.AssignmentHistoryRecord
	for rows.Next() {
		var (
			e                                  secondary.AssignmentHistoryRecord
			fromDept, toDept, fromUser, toUser sql.NullInt64
			reason, command                    sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.OrderID, &fromDept, &toDept, &fromUser, &toUser, &e.AssignedByUserID, &e.AssignedAt, &reason, &command); err != nil {
			return nil, mapError("scan assignment history", err)
		}
		e.FromDepartmentID = fromDept.Int64
		e.ToDepartmentID = toDept.Int64
		e.FromUserID = fromUser.Int64
		e.ToUserID = toUser.Int64
		e.Reason = reason.String
		e.CommandID = command.String
		e.AssignedAt = e.AssignedAt.UTC()
		out = append(out, &e)
	}
	return out, mapError("list assignment history", rows.Err())
}

// Ensure HistoryRepository implements the interface
var _ secondary.HistoryRepository = (*HistoryRepository)(nil)
