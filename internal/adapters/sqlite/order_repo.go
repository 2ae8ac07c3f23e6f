package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/ports/secondary"
)

// OrderRepository implements secondary.OrderRepository with SQLite.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new SQLite order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// orderMutableCols are written by both Create and Update, in the order
// produced by orderMutableValues.
var orderMutableCols = []string{
	"department_id", "assigned_department_id", "location_id", "item_id",
	"title", "description", "priority", "type", "status", "assignment_status",
	"submitted_at", "scheduled_start_date", "actual_start_date", "actual_completion_date", "expected_completion_date",
	"assigned_to_user_id", "assigned_by_user_id", "assigned_at",
	"sla_deadline", "is_sla_breached", "sla_breached_at", "response_time_minutes", "resolution_time_minutes",
	"estimated_cost", "actual_cost", "labor_cost", "material_cost",
	"completed_by_user_id", "resolution_notes", "requires_follow_up", "follow_up_date",
	"is_approved_by_requester", "approved_at", "approved_by_user_id", "rating", "requester_feedback",
	"is_rejected", "rejected_at", "rejected_by_user_id", "rejection_reason",
	"is_cancelled", "cancelled_at", "cancelled_by_user_id", "cancellation_reason",
	"is_urgent", "is_safety_issue", "is_guest_facing",
	"updated_at",
}

var orderSelectCols = "id, order_number, hotel_id, created_by_user_id, created_at, version, " + strings.Join(orderMutableCols, ", ")

func orderMutableValues(o *secondary.OrderRecord) []any {
	return []any{
		o.DepartmentID, nullInt64(o.AssignedDepartmentID), o.LocationID, nullInt64(o.ItemID),
		o.Title, nullString(o.Description), o.Priority, o.Type, o.Status, o.AssignmentStatus,
		nullTime(o.SubmittedAt), nullTime(o.ScheduledStartDate), nullTime(o.ActualStartDate), nullTime(o.ActualCompletionDate), nullTime(o.ExpectedCompletionDate),
		nullInt64(o.AssignedToUserID), nullInt64(o.AssignedByUserID), nullTime(o.AssignedAt),
		nullTime(o.SLADeadline), o.IsSLABreached, nullTime(o.SLABreachedAt), nullIntPtr(o.ResponseTimeMinutes), nullIntPtr(o.ResolutionTimeMinutes),
		o.EstimatedCost, o.ActualCost, o.LaborCost, o.MaterialCost,
		nullInt64(o.CompletedByUserID), nullString(o.ResolutionNotes), o.RequiresFollowUp, nullTime(o.FollowUpDate),
		o.IsApprovedByRequester, nullTime(o.ApprovedAt), nullInt64(o.ApprovedByUserID), nullInt64(int64(o.Rating)), nullString(o.RequesterFeedback),
		o.IsRejected, nullTime(o.RejectedAt), nullInt64(o.RejectedByUserID), nullString(o.RejectionReason),
		o.IsCancelled, nullTime(o.CancelledAt), nullInt64(o.CancelledByUserID), nullString(o.CancellationReason),
		o.IsUrgent, o.IsSafetyIssue, o.IsGuestFacing,
		o.UpdatedAt.UTC(),
	}
}

// scanOrder scans an order row selected with orderSelectCols.
func scanOrder(scanner rowScanner) (*secondary.OrderRecord, error) {
	var (
		assignedDept, itemID                                   sql.NullInt64
		desc, resolutionNotes, feedback, rejection, cancelNote sql.NullString
		submittedAt, scheduledAt, startedAt, completedAt       sql.NullTime
		expectedAt, assignedAt, deadline, breachedAt           sql.NullTime
		followUpAt, approvedAt, rejectedAt, cancelledAt        sql.NullTime
		assignedTo, assignedBy, completedBy                    sql.NullInt64
		approvedBy, rejectedBy, cancelledBy, rating            sql.NullInt64
		responseMins, resolutionMins                           sql.NullInt64
		createdAt, updatedAt                                   time.Time
	)

	o := &secondary.OrderRecord{}
	err := scanner.Scan(
		&o.ID, &o.OrderNumber, &o.HotelID, &o.CreatedByUserID, &createdAt, &o.Version,
		&o.DepartmentID, &assignedDept, &o.LocationID, &itemID,
		&o.Title, &desc, &o.Priority, &o.Type, &o.Status, &o.AssignmentStatus,
		&submittedAt, &scheduledAt, &startedAt, &completedAt, &expectedAt,
		&assignedTo, &assignedBy, &assignedAt,
		&deadline, &o.IsSLABreached, &breachedAt, &responseMins, &resolutionMins,
		&o.EstimatedCost, &o.ActualCost, &o.LaborCost, &o.MaterialCost,
		&completedBy, &resolutionNotes, &o.RequiresFollowUp, &followUpAt,
		&o.IsApprovedByRequester, &approvedAt, &approvedBy, &rating, &feedback,
		&o.IsRejected, &rejectedAt, &rejectedBy, &rejection,
		&o.IsCancelled, &cancelledAt, &cancelledBy, &cancelNote,
		&o.IsUrgent, &o.IsSafetyIssue, &o.IsGuestFacing,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	o.AssignedDepartmentID = assignedDept.Int64
	o.ItemID = itemID.Int64
	o.Description = desc.String
	o.SubmittedAt = timePtr(submittedAt)
	o.ScheduledStartDate = timePtr(scheduledAt)
	o.ActualStartDate = timePtr(startedAt)
	o.ActualCompletionDate = timePtr(completedAt)
	o.ExpectedCompletionDate = timePtr(expectedAt)
	o.AssignedToUserID = assignedTo.Int64
	o.AssignedByUserID = assignedBy.Int64
	o.AssignedAt = timePtr(assignedAt)
	o.SLADeadline = timePtr(deadline)
	o.SLABreachedAt = timePtr(breachedAt)
	o.ResponseTimeMinutes = intPtr(responseMins)
	o.ResolutionTimeMinutes = intPtr(resolutionMins)
	o.CompletedByUserID = completedBy.Int64
	o.ResolutionNotes = resolutionNotes.String
	o.FollowUpDate = timePtr(followUpAt)
	o.ApprovedAt = timePtr(approvedAt)
	o.ApprovedByUserID = approvedBy.Int64
	o.Rating = int(rating.Int64)
	o.RequesterFeedback = feedback.String
	o.RejectedAt = timePtr(rejectedAt)
	o.RejectedByUserID = rejectedBy.Int64
	o.RejectionReason = rejection.String
	o.CancelledAt = timePtr(cancelledAt)
	o.CancelledByUserID = cancelledBy.Int64
	o.CancellationReason = cancelNote.String
	o.CreatedAt = createdAt.UTC()
	o.UpdatedAt = updatedAt.UTC()

	return o, nil
}

// Create persists a new order. A duplicate order number is reported as a
// concurrency conflict so the caller can retry with a fresh number.
func (r *OrderRepository) Create(ctx context.Context, o *secondary.OrderRecord) error {
	cols := append([]string{"order_number", "hotel_id", "created_by_user_id", "created_at", "version"}, orderMutableCols...)
	args := append([]any{o.OrderNumber, o.HotelID, o.CreatedByUserID, o.CreatedAt.UTC(), 1}, orderMutableValues(o)...)

	query := "INSERT INTO maintenance_orders (" + strings.Join(cols, ", ") + ") VALUES (" +
		placeholders(len(cols)) + ")"

	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("create order "+o.OrderNumber, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return mapError("create order", err)
	}
	o.ID = id
	o.Version = 1
	return nil
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*secondary.OrderRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+orderSelectCols+" FROM maintenance_orders WHERE id = ?", id)

	record, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, failure.NotFound("order", id)
	}
	if err != nil {
		return nil, mapError("get order", err)
	}
	return record, nil
}

// GetByNumber retrieves an order by its order number.
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*secondary.OrderRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+orderSelectCols+" FROM maintenance_orders WHERE order_number = ?", number)

	record, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, failure.NotFound("order", number)
	}
	if err != nil {
		return nil, mapError("get order", err)
	}
	return record, nil
}

// Update writes the mutable columns if the stored version matches.
func (r *OrderRepository) Update(ctx context.Context, o *secondary.OrderRecord) error {
	sets := make([]string, len(orderMutableCols))
	for i, c := range orderMutableCols {
		sets[i] = c + " = ?"
	}
	query := "UPDATE maintenance_orders SET " + strings.Join(sets, ", ") +
		", version = version + 1 WHERE id = ? AND version = ?"
	args := append(orderMutableValues(o), o.ID, o.Version)

	ex := conn(ctx, r.db)
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update order "+o.OrderNumber, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("update order", err)
	}
	if n == 0 {
		var exists int
		err := ex.QueryRowContext(ctx, "SELECT COUNT(*) FROM maintenance_orders WHERE id = ?", o.ID).Scan(&exists)
		if err != nil {
			return mapError("update order", err)
		}
		if exists == 0 {
			return failure.NotFound("order", o.ID)
		}
		return failure.Conflict("order %s was modified concurrently (version %d is stale)", o.OrderNumber, o.Version)
	}
	o.Version++
	return nil
}

var orderSortExprs = map[string]string{
	"":             "created_at",
	"created_at":   "created_at",
	"order_number": "order_number",
	"priority":     "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 WHEN 'critical' THEN 4 END",
	"sla_deadline": "sla_deadline",
}

// List retrieves orders matching the filters plus the unpaged total.
func (r *OrderRepository) List(ctx context.Context, filters secondary.OrderFilters) ([]*secondary.OrderRecord, int, error) {
	where := " WHERE 1=1"
	args := []any{}

	if filters.HotelID != 0 {
		where += " AND hotel_id = ?"
		args = append(args, filters.HotelID)
	}
	if len(filters.Statuses) > 0 {
		where += " AND status IN (" + placeholders(len(filters.Statuses)) + ")"
		for _, s := range filters.Statuses {
			args = append(args, s)
		}
	}
	if filters.Priority != "" {
		where += " AND priority = ?"
		args = append(args, filters.Priority)
	}
	if filters.AssignedDepartmentID != 0 {
		where += " AND assigned_department_id = ?"
		args = append(args, filters.AssignedDepartmentID)
	}
	if filters.AssignedToUserID != 0 {
		where += " AND assigned_to_user_id = ?"
		args = append(args, filters.AssignedToUserID)
	}
	if filters.BreachedOnly {
		if len(filters.BreachStatuses) > 0 && !filters.Now.IsZero() {
			where += " AND (is_sla_breached = 1 OR (sla_deadline IS NOT NULL AND sla_deadline < ?" +
				" AND status IN (" + placeholders(len(filters.BreachStatuses)) + ")))"
			args = append(args, filters.Now.UTC())
			for _, s := range filters.BreachStatuses {
				args = append(args, s)
			}
		} else {
			where += " AND is_sla_breached = 1"
		}
	}
	if filters.CreatedFrom != nil {
		where += " AND created_at >= ?"
		args = append(args, filters.CreatedFrom.UTC())
	}
	if filters.CreatedTo != nil {
		where += " AND created_at < ?"
		args = append(args, filters.CreatedTo.UTC())
	}

	ex := conn(ctx, r.db)

	var total int
	if err := ex.QueryRowContext(ctx, "SELECT COUNT(*) FROM maintenance_orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count orders", err)
	}

	sortExpr, ok := orderSortExprs[filters.SortBy]
	if !ok {
		return nil, 0, failure.Validation(failure.Violation{Field: "sort", Message: "unknown sort field " + filters.SortBy})
	}
	dir := " ASC"
	if filters.Descending {
		dir = " DESC"
	}
	order := " ORDER BY " + sortExpr + dir + ", id" + dir
	if filters.SortBy == "sla_deadline" {
		order = " ORDER BY sla_deadline IS NULL, sla_deadline" + dir + ", id" + dir
	}

	query := "SELECT " + orderSelectCols + " FROM maintenance_orders" + where + order
	if filters.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filters.Limit, filters.Offset)
	}

	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list orders", err)
	}
	defer rows.Close()

	var orders []*secondary.OrderRecord
	for rows.Next() {
		record, err := scanOrder(rows)
		if err != nil {
			return nil, 0, mapError("scan order", err)
		}
		orders = append(orders, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError("list orders", err)
	}

	return orders, total, nil
}

// ListBreachCandidates retrieves unflagged orders past their deadline.
func (r *OrderRepository) ListBreachCandidates(ctx context.Context, now time.Time, statuses []string, limit int) ([]*secondary.OrderRecord, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	args := []any{now.UTC()}
	for _, s := range statuses {
		args = append(args, s)
	}
	args = append(args, limit)

	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+orderSelectCols+" FROM maintenance_orders"+
			" WHERE is_sla_breached = 0 AND sla_deadline IS NOT NULL AND sla_deadline < ?"+
			" AND status IN ("+placeholders(len(statuses))+")"+
			" ORDER BY sla_deadline, id LIMIT ?",
		args...)
	if err != nil {
		return nil, mapError("list breach candidates", err)
	}
	defer rows.Close()

	var orders []*secondary.OrderRecord
	for rows.Next() {
		record, err := scanOrder(rows)
		if err != nil {
			return nil, mapError("scan order", err)
		}
		orders = append(orders, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list breach candidates", err)
	}
	return orders, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Ensure OrderRepository implements the interface
var _ secondary.OrderRepository = (*OrderRepository)(nil)
