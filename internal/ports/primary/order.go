package primary

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OrderService defines the primary port for maintenance order operations.
// Every command runs in one transaction and either applies completely or
// leaves the order untouched.
type OrderService interface {
	// CreateOrder opens a new order in draft (or submitted, if requested).
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)

	// UpdateOrder edits descriptive fields of an order.
	UpdateOrder(ctx context.Context, req UpdateOrderRequest) (*Order, error)

	// ChangeStatus moves an order along one edge of the transition table.
	ChangeStatus(ctx context.Context, req ChangeStatusRequest) (*Order, error)

	// AssignOrder (re)assigns an order to a department and optionally a user.
	AssignOrder(ctx context.Context, req AssignOrderRequest) (*Order, error)

	// CompleteOrder records the resolution, consumes spare parts and rolls
	// up the actual cost.
	CompleteOrder(ctx context.Context, req CompleteOrderRequest) (*Order, error)

	// VerifyOrder records the requester's approval or rejection.
	VerifyOrder(ctx context.Context, req VerifyOrderRequest) (*Order, error)

	// CancelOrder cancels an order.
	CancelOrder(ctx context.Context, req CancelOrderRequest) (*Order, error)

	// AddComment attaches a note to an order.
	AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error)

	// GetOrder retrieves an order by ID.
	GetOrder(ctx context.Context, orderID int64) (*Order, error)

	// GetOrderByNumber retrieves an order by its order number.
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)

	// ListOrders lists orders with filters, sorting and paging.
	ListOrders(ctx context.Context, req ListOrdersRequest) (*OrderPage, error)

	// GetStatusHistory returns an order's status changes, oldest first.
	GetStatusHistory(ctx context.Context, orderID int64) ([]*StatusChange, error)

	// GetAssignmentHistory returns an order's assignment changes, oldest first.
	GetAssignmentHistory(ctx context.Context, orderID int64) ([]*AssignmentChange, error)

	// ListComments returns an order's comments, oldest first.
	ListComments(ctx context.Context, orderID int64) ([]*Comment, error)

	// ListSparePartUsage returns the parts consumed by an order.
	ListSparePartUsage(ctx context.Context, orderID int64) ([]*PartUsage, error)

	// ListLedger returns the stock movements of a spare part, oldest first.
	ListLedger(ctx context.Context, sparePartID int64) ([]*LedgerEntry, error)
}

// SLAService defines the primary port for service-level tracking.
type SLAService interface {
	// SweepBreaches flags open orders whose deadline passed before now.
	SweepBreaches(ctx context.Context, now time.Time) (*SweepResult, error)

	// ResolveTarget returns the active target for a hotel/priority, or nil
	// when none is configured.
	ResolveTarget(ctx context.Context, hotelID int64, priority string) (*SLATarget, error)

	// ListTargets returns every target configured for a hotel.
	ListTargets(ctx context.Context, hotelID int64) ([]*SLATarget, error)
}

// CreateOrderRequest contains parameters for opening an order.
type CreateOrderRequest struct {
	HotelID            int64
	DepartmentID       int64 // requesting department
	LocationID         int64
	ItemID             int64 // Optional
	Title              string
	Description        string
	Priority           string // low, medium, high, critical
	Type               string // corrective, preventive, inspection, emergency, improvement
	EstimatedCost      decimal.Decimal
	ExpectedCompletion *time.Time
	IsUrgent           bool
	IsSafetyIssue      bool
	IsGuestFacing      bool
	Submit             bool // move straight to submitted
	ActorID            int64
}

// UpdateOrderRequest contains the fields to change; nil means unchanged.
type UpdateOrderRequest struct {
	OrderID            int64
	Title              *string
	Description        *string
	Priority           *string
	LocationID         *int64
	ItemID             *int64
	ExpectedCompletion *time.Time
	IsUrgent           *bool
	IsSafetyIssue      *bool
	IsGuestFacing      *bool
	ActorID            int64
}

// ChangeStatusRequest contains parameters for a generic status change.
type ChangeStatusRequest struct {
	OrderID        int64
	Status         string
	Notes          string
	ScheduledStart *time.Time // required when Status is scheduled
	ActualStart    *time.Time // Optional, for in_progress; defaults to now
	ActorID        int64
}

// AssignOrderRequest contains parameters for assigning an order.
type AssignOrderRequest struct {
	OrderID      int64
	DepartmentID int64
	UserID       int64 // Optional
	Reason       string
	ActorID      int64
}

// PartUsageRequest is one spare part consumed by a completion.
type PartUsageRequest struct {
	SparePartID int64
	Quantity    int
	UnitCost    decimal.NullDecimal // defaults to the part's catalog cost
}

// CompleteOrderRequest contains parameters for completing an order.
type CompleteOrderRequest struct {
	OrderID          int64
	ResolutionNotes  string
	RequiresFollowUp bool
	FollowUpDate     *time.Time
	LaborCost        decimal.Decimal
	MaterialCost     decimal.Decimal
	Parts            []PartUsageRequest
	ActorID          int64
}

// VerifyOrderRequest contains the requester's verdict.
type VerifyOrderRequest struct {
	OrderID  int64
	Approved bool
	Rating   int // 1-5, required when approved
	Feedback string
	ActorID  int64
}

// CancelOrderRequest contains parameters for cancelling an order.
type CancelOrderRequest struct {
	OrderID int64
	Reason  string
	ActorID int64
}

// AddCommentRequest contains parameters for commenting on an order.
type AddCommentRequest struct {
	OrderID    int64
	Comment    string
	IsInternal bool
	ActorID    int64
}

// ListOrdersRequest contains filters, sort and paging for listing orders.
type ListOrdersRequest struct {
	HotelID              int64
	Statuses             []string
	Priority             string
	AssignedDepartmentID int64
	AssignedToUserID     int64
	BreachedOnly         bool
	OpenOnly             bool
	Period               string // today, week, month, year
	SortBy               string // created_at (default), sla_deadline, priority, order_number
	Descending           bool
	Page                 int // 1-based
	PageSize             int // default 50, max 100
}

// OrderPage is one page of a listing.
type OrderPage struct {
	Orders   []*Order
	Total    int
	Page     int
	PageSize int
}

// Order represents a maintenance order at the primary port boundary.
type Order struct {
	ID                   int64
	OrderNumber          string
	HotelID              int64
	DepartmentID         int64
	AssignedDepartmentID int64
	LocationID           int64
	ItemID               int64
	Title                string
	Description          string
	Priority             string
	Type                 string
	Status               string
	AssignmentStatus     string
	AllowedTransitions   []string

	SubmittedAt            *time.Time
	ScheduledStartDate     *time.Time
	ActualStartDate        *time.Time
	ActualCompletionDate   *time.Time
	ExpectedCompletionDate *time.Time

	AssignedToUserID int64
	AssignedByUserID int64
	AssignedAt       *time.Time

	SLADeadline           *time.Time
	SLABreached           bool // stored flag or deadline passed while open
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
	Rating                int
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

// StatusChange is one entry of an order's status history.
type StatusChange struct {
	ID              int64
	FromStatus      string // empty for the creation entry
	ToStatus        string
	ChangedByUserID int64
	ChangedAt       time.Time
	Notes           string
	CommandID       string
}

// AssignmentChange is one entry of an order's assignment history.
type AssignmentChange struct {
	ID               int64
	FromDepartmentID int64
	ToDepartmentID   int64
	FromUserID       int64
	ToUserID         int64
	AssignedByUserID int64
	AssignedAt       time.Time
	Reason           string
	CommandID        string
}

// PartUsage is one spare part consumed by an order.
type PartUsage struct {
	ID           int64
	SparePartID  int64
	QuantityUsed int
	UnitCost     decimal.Decimal
	TotalCost    decimal.Decimal
	UsedByUserID int64
	UsedAt       time.Time
}

// LedgerEntry is one stock movement of a spare part.
type LedgerEntry struct {
	ID              int64
	SparePartID     int64
	Type            string
	Quantity        int
	QuantityBefore  int
	QuantityAfter   int
	Cost            decimal.Decimal
	ReferenceType   string
	ReferenceID     int64
	ReferenceNumber string
	CreatedByUserID int64
	CreatedAt       time.Time
	CommandID       string
}

// Comment is a note attached to an order.
type Comment struct {
	ID         int64
	OrderID    int64
	UserID     int64
	Comment    string
	IsInternal bool
	CreatedAt  time.Time
}

// SweepResult summarises one SLA sweep.
type SweepResult struct {
	Checked   int
	Flagged   []string // order numbers newly flagged
	Conflicts int      // orders skipped because a concurrent command won
}

// SLATarget is a hotel's service-level target for one priority.
type SLATarget struct {
	HotelID               int64
	Priority              string
	ResponseTimeMinutes   int
	ResolutionTimeMinutes int
	IsActive              bool
}
