// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/example/mwo/internal/ports/primary"
)

const timeLayout = "2006-01-02 15:04"

// OrderAdapter is a thin adapter that translates CLI operations to OrderService calls.
// It depends only on the OrderService interface, enabling easy testing with mocks.
type OrderAdapter struct {
	service primary.OrderService
	out     io.Writer
}

// NewOrderAdapter creates a new OrderAdapter with the given service.
func NewOrderAdapter(service primary.OrderService, out io.Writer) *OrderAdapter {
	return &OrderAdapter{
		service: service,
		out:     out,
	}
}

// Create opens a new order.
func (a *OrderAdapter) Create(ctx context.Context, req primary.CreateOrderRequest) error {
	o, err := a.service.CreateOrder(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created order %s: %s [%s]\n", o.OrderNumber, o.Title, statusLabel(o.Status))
	if o.SLADeadline != nil {
		fmt.Fprintf(a.out, "  SLA deadline: %s\n", o.SLADeadline.Local().Format(timeLayout))
	}
	return nil
}

// Update edits an order's descriptive fields.
func (a *OrderAdapter) Update(ctx context.Context, req primary.UpdateOrderRequest) error {
	o, err := a.service.UpdateOrder(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Updated order %s\n", o.OrderNumber)
	return nil
}

// ChangeStatus moves an order along one edge of its lifecycle.
func (a *OrderAdapter) ChangeStatus(ctx context.Context, req primary.ChangeStatusRequest) error {
	return a.transition(a.service.ChangeStatus(ctx, req))
}

// Assign (re)assigns an order.
func (a *OrderAdapter) Assign(ctx context.Context, req primary.AssignOrderRequest) error {
	o, err := a.service.AssignOrder(ctx, req)
	if err != nil {
		return err
	}
	who := fmt.Sprintf("department %d", o.AssignedDepartmentID)
	if o.AssignedToUserID != 0 {
		who += fmt.Sprintf(", user %d", o.AssignedToUserID)
	}
	fmt.Fprintf(a.out, "✓ Order %s assigned to %s [%s]\n", o.OrderNumber, who, statusLabel(o.Status))
	return nil
}

// Complete records the resolution of an order.
func (a *OrderAdapter) Complete(ctx context.Context, req primary.CompleteOrderRequest) error {
	o, err := a.service.CompleteOrder(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Order %s completed, actual cost %s\n", o.OrderNumber, o.ActualCost.StringFixed(2))
	if o.SLABreached {
		fmt.Fprintf(a.out, "  %s\n", breachLabel())
	}
	return nil
}

// Verify records the requester's verdict.
func (a *OrderAdapter) Verify(ctx context.Context, req primary.VerifyOrderRequest) error {
	return a.transition(a.service.VerifyOrder(ctx, req))
}

// Cancel cancels an order.
func (a *OrderAdapter) Cancel(ctx context.Context, req primary.CancelOrderRequest) error {
	return a.transition(a.service.CancelOrder(ctx, req))
}

// Comment attaches a note to an order.
func (a *OrderAdapter) Comment(ctx context.Context, req primary.AddCommentRequest) error {
	c, err := a.service.AddComment(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Comment %d added to order %d\n", c.ID, c.OrderID)
	return nil
}

func (a *OrderAdapter) transition(o *primary.Order, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Order %s is now %s\n", o.OrderNumber, statusLabel(o.Status))
	return nil
}

// List prints one page of orders.
func (a *OrderAdapter) List(ctx context.Context, req primary.ListOrdersRequest) error {
	page, err := a.service.ListOrders(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}

	if len(page.Orders) == 0 {
		fmt.Fprintln(a.out, "No orders found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-20s %-16s %-9s %-17s %s\n", "NUMBER", "STATUS", "PRIORITY", "SLA", "TITLE")
	fmt.Fprintln(a.out, "──────────────────────────────────────────────────────────────────────────────────")
	for _, o := range page.Orders {
		fmt.Fprintf(a.out, "%-20s %s %-9s %-17s %s\n",
			o.OrderNumber, padLabel(o.Status, 16), o.Priority, slaCell(o), o.Title)
	}
	fmt.Fprintf(a.out, "\nPage %d: %d of %d orders\n\n", page.Page, len(page.Orders), page.Total)
	return nil
}

// Show prints an order with its history, parts and comments. ref is either
// a numeric ID or an order number.
func (a *OrderAdapter) Show(ctx context.Context, ref string) error {
	o, err := a.resolve(ctx, ref)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nOrder:    %s (id %d, v%d)\n", o.OrderNumber, o.ID, o.Version)
	fmt.Fprintf(a.out, "Title:    %s\n", o.Title)
	if o.Description != "" {
		fmt.Fprintf(a.out, "Details:  %s\n", o.Description)
	}
	fmt.Fprintf(a.out, "Status:   %s\n", statusLabel(o.Status))
	fmt.Fprintf(a.out, "Priority: %s (%s)\n", o.Priority, o.Type)
	fmt.Fprintf(a.out, "Hotel:    %d  Location: %d", o.HotelID, o.LocationID)
	if o.ItemID != 0 {
		fmt.Fprintf(a.out, "  Item: %d", o.ItemID)
	}
	fmt.Fprintln(a.out)
	if o.AssignmentStatus == "assigned" {
		fmt.Fprintf(a.out, "Assigned: department %d", o.AssignedDepartmentID)
		if o.AssignedToUserID != 0 {
			fmt.Fprintf(a.out, ", user %d", o.AssignedToUserID)
		}
		fmt.Fprintln(a.out)
	}
	fmt.Fprintf(a.out, "SLA:      %s\n", slaCell(o))
	if o.ResponseTimeMinutes != nil {
		fmt.Fprintf(a.out, "Response: %d min\n", *o.ResponseTimeMinutes)
	}
	if o.ResolutionTimeMinutes != nil {
		fmt.Fprintf(a.out, "Resolved: %d min\n", *o.ResolutionTimeMinutes)
	}
	if !o.ActualCost.IsZero() {
		fmt.Fprintf(a.out, "Cost:     %s (labor %s, material %s)\n",
			o.ActualCost.StringFixed(2), o.LaborCost.StringFixed(2), o.MaterialCost.StringFixed(2))
	}
	if o.ResolutionNotes != "" {
		fmt.Fprintf(a.out, "Notes:    %s\n", o.ResolutionNotes)
	}
	if o.IsCancelled {
		fmt.Fprintf(a.out, "Cancelled: %s\n", o.CancellationReason)
	}
	if o.IsRejected {
		fmt.Fprintf(a.out, "Rejected: %s\n", o.RejectionReason)
	}
	if o.IsApprovedByRequester {
		fmt.Fprintf(a.out, "Approved: rating %d/5\n", o.Rating)
	}
	if len(o.AllowedTransitions) > 0 {
		fmt.Fprintf(a.out, "Next:     %s\n", strings.Join(o.AllowedTransitions, ", "))
	}

	history, err := a.service.GetStatusHistory(ctx, o.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "\nHistory:")
	for _, h := range history {
		from := h.FromStatus
		if from == "" {
			from = "·"
		}
		fmt.Fprintf(a.out, "  %s  %s → %s by user %d", h.ChangedAt.Local().Format(timeLayout), from, h.ToStatus, h.ChangedByUserID)
		if h.Notes != "" {
			fmt.Fprintf(a.out, "  %q", h.Notes)
		}
		fmt.Fprintln(a.out)
	}

	parts, err := a.service.ListSparePartUsage(ctx, o.ID)
	if err != nil {
		return err
	}
	if len(parts) > 0 {
		fmt.Fprintln(a.out, "\nParts:")
		for _, p := range parts {
			fmt.Fprintf(a.out, "  part %d × %d @ %s = %s\n", p.SparePartID, p.QuantityUsed, p.UnitCost.StringFixed(2), p.TotalCost.StringFixed(2))
		}
	}

	comments, err := a.service.ListComments(ctx, o.ID)
	if err != nil {
		return err
	}
	if len(comments) > 0 {
		fmt.Fprintln(a.out, "\nComments:")
		for _, c := range comments {
			marker := ""
			if c.IsInternal {
				marker = color.New(color.FgYellow).Sprint("[internal] ")
			}
			fmt.Fprintf(a.out, "  %s user %d: %s%s\n", c.CreatedAt.Local().Format(timeLayout), c.UserID, marker, c.Comment)
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// Assignments prints an order's assignment trail.
func (a *OrderAdapter) Assignments(ctx context.Context, ref string) error {
	o, err := a.resolve(ctx, ref)
	if err != nil {
		return err
	}
	entries, err := a.service.GetAssignmentHistory(ctx, o.ID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(a.out, "Order %s has never been assigned\n", o.OrderNumber)
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "%s  dept %d/user %d → dept %d/user %d by user %d",
			e.AssignedAt.Local().Format(timeLayout), e.FromDepartmentID, e.FromUserID, e.ToDepartmentID, e.ToUserID, e.AssignedByUserID)
		if e.Reason != "" {
			fmt.Fprintf(a.out, "  %q", e.Reason)
		}
		fmt.Fprintln(a.out)
	}
	return nil
}

// Ledger prints the stock movements of a spare part.
func (a *OrderAdapter) Ledger(ctx context.Context, sparePartID int64) error {
	entries, err := a.service.ListLedger(ctx, sparePartID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(a.out, "No stock movements for spare part %d\n", sparePartID)
		return nil
	}

	fmt.Fprintf(a.out, "\n%-17s %-8s %6s %6s %6s %10s %s\n", "WHEN", "TYPE", "QTY", "BEFORE", "AFTER", "COST", "REFERENCE")
	for _, e := range entries {
		fmt.Fprintf(a.out, "%-17s %-8s %6d %6d %6d %10s %s\n",
			e.CreatedAt.Local().Format(timeLayout), e.Type, e.Quantity, e.QuantityBefore, e.QuantityAfter, e.Cost.StringFixed(2), e.ReferenceNumber)
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *OrderAdapter) resolve(ctx context.Context, ref string) (*primary.Order, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return a.service.GetOrder(ctx, id)
	}
	return a.service.GetOrderByNumber(ctx, ref)
}

func statusLabel(status string) string {
	return statusColor(status).Sprint(status)
}

// padLabel pads before colouring so escape codes do not break alignment.
func padLabel(status string, width int) string {
	return statusColor(status).Sprintf("%-*s", width, status)
}

func statusColor(status string) *color.Color {
	switch status {
	case "draft":
		return color.New(color.FgHiBlack)
	case "submitted", "assigned", "scheduled":
		return color.New(color.FgCyan)
	case "in_progress":
		return color.New(color.FgHiBlue)
	case "on_hold", "awaiting_parts", "external_work":
		return color.New(color.FgYellow)
	case "completed", "verified", "closed":
		return color.New(color.FgGreen)
	case "reopened", "rejected":
		return color.New(color.FgHiMagenta)
	case "cancelled":
		return color.New(color.FgRed)
	}
	return color.New(color.FgWhite)
}

func breachLabel() string {
	return color.New(color.FgRed, color.Bold).Sprint("SLA BREACHED")
}

func slaCell(o *primary.Order) string {
	switch {
	case o.SLABreached:
		return breachLabel()
	case o.SLADeadline == nil:
		return "-"
	}
	return "due " + o.SLADeadline.Local().Format(timeLayout)
}

// ParseWhen parses a CLI timestamp in local time. Both "2006-01-02 15:04"
// and RFC 3339 are accepted.
func ParseWhen(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (want %q or RFC 3339)", s, timeLayout)
	}
	return t, nil
}
