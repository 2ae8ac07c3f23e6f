// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Transactor runs a unit of work inside one database transaction.
// The transaction travels on the context passed to fn; repositories called
// with that context join it. Nested calls reuse the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderRepository defines the secondary port for maintenance order persistence.
type OrderRepository interface {
	// Create persists a new order and sets its ID and Version.
	Create(ctx context.Context, order *OrderRecord) error

	// GetByID retrieves an order by its ID.
	GetByID(ctx context.Context, id int64) (*OrderRecord, error)

	// GetByNumber retrieves an order by its order number.
	GetByNumber(ctx context.Context, number string) (*OrderRecord, error)

	// Update writes every mutable column if the stored version still equals
	// order.Version, then increments order.Version. A stale version fails
	// with failure.ErrConcurrencyConflict.
	Update(ctx context.Context, order *OrderRecord) error

	// List retrieves a page of orders and the total number matching filters.
	List(ctx context.Context, filters OrderFilters) ([]*OrderRecord, int, error)

	// ListBreachCandidates retrieves unflagged orders in one of statuses
	// whose SLA deadline is before now.
	ListBreachCandidates(ctx context.Context, now time.Time, statuses []string, limit int) ([]*OrderRecord, error)
}

// OrderRecord represents a maintenance order as stored in persistence.
// Zero IDs and nil pointers mean null.
type OrderRecord struct {
	ID                   int64
	OrderNumber          string
	HotelID              int64
	DepartmentID         int64 // requesting department
	AssignedDepartmentID int64
	LocationID           int64
	ItemID               int64
	Title                string
	Description          string
	Priority             string // low, medium, high, critical
	Type                 string // corrective, preventive, inspection, emergency, improvement
	Status               string
	AssignmentStatus     string // not_assigned, assigned

	SubmittedAt            *time.Time
	ScheduledStartDate     *time.Time
	ActualStartDate        *time.Time
	ActualCompletionDate   *time.Time
	ExpectedCompletionDate *time.Time

	AssignedToUserID int64
	AssignedByUserID int64
	AssignedAt       *time.Time

	SLADeadline           *time.Time
	IsSLABreached         bool
	SLABreachedAt         *time.Time
	ResponseTimeMinutes   *int
	ResolutionTimeMinutes *int

	EstimatedCost decimal.Decimal
	ActualCost    decimal.Decimal
	LaborCost     decimal.Decimal
	MaterialCost  decimal.Decimal

	CompletedByUserID int64
	ResolutionNotes   string
	RequiresFollowUp  bool
	FollowUpDate      *time.Time

	IsApprovedByRequester bool
	ApprovedAt            *time.Time
	ApprovedByUserID      int64
	Rating                int // 0 means unrated
	RequesterFeedback     string

	IsRejected       bool
	RejectedAt       *time.Time
	RejectedByUserID int64
	RejectionReason  string

	IsCancelled        bool
	CancelledAt        *time.Time
	CancelledByUserID  int64
	CancellationReason string

	IsUrgent      bool
	IsSafetyIssue bool
	IsGuestFacing bool

	CreatedByUserID int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
}

// Clone returns a deep copy so guards can run against a snapshot while the
// original is mutated.
func (r *OrderRecord) Clone() *OrderRecord {
	c := *r
	for _, p := range []**time.Time{
		&c.SubmittedAt, &c.ScheduledStartDate, &c.ActualStartDate, &c.ActualCompletionDate,
		&c.ExpectedCompletionDate, &c.AssignedAt, &c.SLADeadline, &c.SLABreachedAt,
		&c.FollowUpDate, &c.ApprovedAt, &c.RejectedAt, &c.CancelledAt,
	} {
		if *p != nil {
			t := **p
			*p = &t
		}
	}
	for _, p := range []**int{&c.ResponseTimeMinutes, &c.ResolutionTimeMinutes} {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	return &c
}

// OrderFilters contains filter, sort and page options for listing orders.
type OrderFilters struct {
	HotelID              int64
	Statuses             []string
	Priority             string
	AssignedDepartmentID int64
	AssignedToUserID     int64
	BreachedOnly         bool
	// Now and BreachStatuses let BreachedOnly also match orders past their
	// deadline that no sweep has flagged yet.
	Now                  time.Time
	BreachStatuses       []string
	CreatedFrom          *time.Time
	CreatedTo            *time.Time
	SortBy               string // created_at, sla_deadline, priority, order_number
	Descending           bool
	Limit                int
	Offset               int
}

// OrderNumberSequence hands out per-hotel, per-year order sequences.
type OrderNumberSequence interface {
	// Next atomically advances and returns the sequence for hotel/year.
	// The first call for a hotel/year starts after the highest existing
	// order number with the given prefix.
	Next(ctx context.Context, hotelID int64, year int, prefix string) (int, error)
}

// HistoryRepository defines the secondary port for append-only audit trails.
type HistoryRepository interface {
	// AppendStatus records a status change and sets its ID.
	AppendStatus(ctx context.Context, entry *StatusHistoryRecord) error

	// AppendAssignment records an assignment change and sets its ID.
	AppendAssignment(ctx context.Context, entry *AssignmentHistoryRecord) error

	// ListStatus returns an order's status history, oldest first.
	ListStatus(ctx context.Context, orderID int64) ([]*StatusHistoryRecord, error)

	// ListAssignments returns an order's assignment history, oldest first.
	ListAssignments(ctx context.Context, orderID int64) ([]*AssignmentHistoryRecord, error)
}

// StatusHistoryRecord is one immutable status change.
type StatusHistoryRecord struct {
	ID              int64
	OrderID         int64
	FromStatus      string // empty for the creation entry
	ToStatus        string
	ChangedByUserID int64
	ChangedAt       time.Time
	Notes           string
	CommandID       string
}

// AssignmentHistoryRecord is one immutable assignment change.
type AssignmentHistoryRecord struct {
	ID               int64
	OrderID          int64
	FromDepartmentID int64
	ToDepartmentID   int64
	FromUserID       int64
	ToUserID         int64
	AssignedByUserID int64
	AssignedAt       time.Time
	Reason           string
	CommandID        string
}

// SparePartRepository defines the secondary port for spare-part stock and
// per-order consumption rows.
type SparePartRepository interface {
	// GetByID retrieves a spare part by its ID.
	GetByID(ctx context.Context, id int64) (*SparePartRecord, error)

	// SetQuantity sets quantity_on_hand to after if it still equals before.
	// A mismatch fails with failure.ErrConcurrencyConflict.
	SetQuantity(ctx context.Context, id int64, before, after int) error

	// RecordUsage persists a consumption row and sets its ID.
	RecordUsage(ctx context.Context, usage *SparePartUsageRecord) error

	// ListUsageByOrder returns the parts consumed by an order.
	ListUsageByOrder(ctx context.Context, orderID int64) ([]*SparePartUsageRecord, error)
}

// SparePartRecord represents a stocked spare part.
type SparePartRecord struct {
	ID              int64
	HotelID         int64
	PartNumber      string
	Name            string
	QuantityOnHand  int
	MinimumQuantity int
	UnitCost        decimal.Decimal
	UpdatedAt       time.Time
}

// SparePartUsageRecord is one spare part consumed by an order.
type SparePartUsageRecord struct {
	ID           int64
	OrderID      int64
	SparePartID  int64
	QuantityUsed int
	UnitCost     decimal.Decimal
	TotalCost    decimal.Decimal
	UsedByUserID int64
	UsedAt       time.Time
	CommandID    string
}

// LedgerRepository defines the secondary port for the append-only inventory
// ledger.
type LedgerRepository interface {
	// Append records a stock movement and sets its ID.
	Append(ctx context.Context, tx *LedgerTransactionRecord) error

	// ListBySparePart returns a part's movements, oldest first.
	ListBySparePart(ctx context.Context, sparePartID int64) ([]*LedgerTransactionRecord, error)

	// ListByReference returns the movements caused by one referenced entity.
	ListByReference(ctx context.Context, referenceType string, referenceID int64) ([]*LedgerTransactionRecord, error)
}

// Ledger transaction types and reference types.
const (
	LedgerTypeUsage           = "usage"
	ReferenceMaintenanceOrder = "maintenance_order"
)

// LedgerTransactionRecord is one immutable stock movement.
type LedgerTransactionRecord struct {
	ID              int64
	SparePartID     int64
	Type            string
	Quantity        int // signed delta
	QuantityBefore  int
	QuantityAfter   int
	Cost            decimal.Decimal
	ReferenceType   string
	ReferenceID     int64
	ReferenceNumber string
	Notes           string
	CreatedByUserID int64
	CreatedAt       time.Time
	CommandID       string
}

// CommentRepository defines the secondary port for order comments.
type CommentRepository interface {
	// Create persists a comment and sets its ID.
	Create(ctx context.Context, comment *CommentRecord) error

	// ListByOrder returns an order's comments, oldest first.
	ListByOrder(ctx context.Context, orderID int64) ([]*CommentRecord, error)
}

// CommentRecord is a note attached to an order.
type CommentRecord struct {
	ID         int64
	OrderID    int64
	UserID     int64
	Comment    string
	IsInternal bool
	CreatedAt  time.Time
}

// SLAConfigRepository defines the secondary port for SLA targets.
type SLAConfigRepository interface {
	// GetActive returns the active configuration for hotel/priority, or
	// nil without error when none exists.
	GetActive(ctx context.Context, hotelID int64, priority string) (*SLAConfigRecord, error)

	// ListByHotel returns every configuration of a hotel.
	ListByHotel(ctx context.Context, hotelID int64) ([]*SLAConfigRecord, error)
}

// SLAConfigRecord represents a hotel's SLA target for one priority.
type SLAConfigRecord struct {
	ID                    int64
	HotelID               int64
	Priority              string
	ResponseTimeMinutes   int
	ResolutionTimeMinutes int
	IsActive              bool
}

// ReferenceLookup reads master data owned outside the engine.
// Every getter fails with failure.ErrNotFound when the row is missing.
type ReferenceLookup interface {
	GetHotel(ctx context.Context, id int64) (*HotelRecord, error)
	GetDepartment(ctx context.Context, id int64) (*DepartmentRecord, error)
	GetLocation(ctx context.Context, id int64) (*LocationRecord, error)
	GetItem(ctx context.Context, id int64) (*ItemRecord, error)
	GetUser(ctx context.Context, id int64) (*UserRecord, error)
}

// HotelRecord represents a hotel property.
type HotelRecord struct {
	ID       int64
	Code     string
	Name     string
	IsActive bool
}

// DepartmentRecord represents a hotel department.
type DepartmentRecord struct {
	ID      int64
	HotelID int64
	Name    string
}

// LocationRecord represents a place inside a hotel. ParentID 0 means root.
type LocationRecord struct {
	ID       int64
	HotelID  int64
	ParentID int64
	Name     string
}

// ItemRecord represents a piece of equipment.
type ItemRecord struct {
	ID         int64
	HotelID    int64
	LocationID int64
	Name       string
}

// UserRecord represents a staff member.
type UserRecord struct {
	ID           int64
	HotelID      int64
	DepartmentID int64
	Name         string
	Email        string
	IsAvailable  bool
	IsActive     bool
}
