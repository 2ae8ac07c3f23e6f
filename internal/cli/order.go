package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/example/mwo/internal/ports/primary"
	"github.com/example/mwo/internal/wire"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Manage maintenance orders",
	Long:  "Create, assign, complete and verify maintenance orders",
}

var orderCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Open a new maintenance order",
	Long: `Open a new maintenance order in draft, or submitted with --submit.

Examples:
  mwo order create "Air conditioner not cooling" --location 2 --priority critical --submit
  mwo order create "Repaint pool fence" --location 5 --type improvement --estimated-cost 250`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := actorID(cmd)
		if err != nil {
			return err
		}
		estimate, err := parseMoney(cmd, "estimated-cost")
		if err != nil {
			return err
		}
		expected, err := parseTimeFlag(cmd, "expected")
		if err != nil {
			return err
		}

		req := primary.CreateOrderRequest{
			HotelID:            hotelID(cmd),
			Title:              args[0],
			EstimatedCost:      estimate,
			ExpectedCompletion: expected,
			ActorID:            actor,
		}
		req.DepartmentID, _ = cmd.Flags().GetInt64("department")
		req.LocationID, _ = cmd.Flags().GetInt64("location")
		req.ItemID, _ = cmd.Flags().GetInt64("item")
		req.Description, _ = cmd.Flags().GetString("description")
		req.Priority, _ = cmd.Flags().GetString("priority")
		req.Type, _ = cmd.Flags().GetString("type")
		req.IsUrgent, _ = cmd.Flags().GetBool("urgent")
		req.IsSafetyIssue, _ = cmd.Flags().GetBool("safety")
		req.IsGuestFacing, _ = cmd.Flags().GetBool("guest-facing")
		req.Submit, _ = cmd.Flags().GetBool("submit")

		return wire.OrderAdapter().Create(commandContext(cmd, actor), req)
	},
}

var orderUpdateCmd = &cobra.Command{
	Use:   "update [order]",
	Short: "Edit an order's descriptive fields",
	Long: `Edit an order's descriptive fields. Only flags that are given change.
Changing the priority recomputes the SLA deadline.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := actorID(cmd)
		if err != nil {
			return err
		}
		ctx := commandContext(cmd, actor)
		id, err := orderRef(ctx, args[0])
		if err != nil {
			return err
		}

		req := primary.UpdateOrderRequest{OrderID: id, ActorID: actor}
		flags := cmd.Flags()
		if flags.Changed("title") {
			v, _ := flags.GetString("title")
			req.Title = &v
		}
		if flags.Changed("description") {
			v, _ := flags.GetString("description")
			req.Description = &v
		}
		if flags.Changed("priority") {
			v, _ := flags.GetString("priority")
			req.Priority = &v
		}
		if flags.Changed("location") {
			v, _ := flags.GetInt64("location")
			req.LocationID = &v
		}
		if flags.Changed("item") {
			v, _ := flags.GetInt64("item")
			req.ItemID = &v
		}
		if flags.Changed("urgent") {
			v, _ := flags.GetBool("urgent")
			req.IsUrgent = &v
		}
		if flags.Changed("safety") {
			v, _ := flags.GetBool("safety")
			req.IsSafetyIssue = &v
		}
		if flags.Changed("guest-facing") {
			v, _ := flags.GetBool("guest-facing")
			req.IsGuestFacing = &v
		}
		if req.ExpectedCompletion, err = parseTimeFlag(cmd, "expected"); err != nil {
			return err
		}

		return wire.OrderAdapter().Update(ctx, req)
	},
}

var orderStatusCmd = &cobra.Command{
	Use:   "status [order] [status]",
	Short: "Move an order to another status",
	Long: `Move an order along one edge of its lifecycle.

Examples:
  mwo order status MO-GRD-2026-00001 scheduled --scheduled-start "2026-03-11 08:00"
  mwo order status 4 on_hold --notes "Guest asked to come back later"
  mwo order status 4 closed`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := actorID(cmd)
		if err != nil {
			return err
		}
		ctx := commandContext(cmd, actor)
		id, err := orderRef(ctx, args[0])
		if err != nil {
			return err
		}

		req := primary.ChangeStatusRequest{OrderID: id, Status: args[1], ActorID: actor}
		req.Notes, _ = cmd.Flags().GetString("notes")
		if req.ScheduledStart, err = parseTimeFlag(cmd, "scheduled-start"); err != nil {
			return err
		}
		if req.ActualStart, err = parseTimeFlag(cmd, "actual-start"); err != nil {
			return err
		}

		return wire.OrderAdapter().ChangeStatus(ctx, req)
	},
}

var orderAssignCmd = &cobra.Command{
	Use:   "assign [order]",
	Short: "Assign an order to a department and optionally a technician",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := actorID(cmd)
		if err != nil {
			return err
		}
		ctx := commandContext(cmd, actor)
		id, err := orderRef(ctx, args[0])
		if err != nil {
			return err
		}

		req := primary.AssignOrderRequest{OrderID: id, ActorID: actor}
		req.DepartmentID, _ = cmd.Flags().GetInt64("department")
		req.UserID, _ = cmd.Flags().GetInt64("user")
		req.Reason, _ = cmd.Flags().GetString("reason")

		return wire.OrderAdapter().Assign(ctx, req)
	},
}

var orderCompleteCmd = &cobra.Command{
	Use:   "complete [order]",
	Short: "Record the resolution of an order",
	Long: `Record the resolution of an in-progress order. Spare parts are consumed
from stock and their cost is added to labor and material.

Examples:
  mwo order complete 4 --notes "Replaced filter" --labor 50 --part 1:2
  mwo order complete 4 --notes "Belt swapped" --part 2:1:17.50 --follow-up "2026-04-01 09:00"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := actorID(cmd)
		if err != nil {
			return err
		}
		ctx := commandContext(cmd, actor)
		id, err := orderRef(ctx, args[0])
		if err != nil {
			return err
		}

		req := primary.CompleteOrderRequest{OrderID: id, ActorID: actor}
		req.ResolutionNotes, _ = cmd.Flags().GetString("notes")
		if req.LaborCost, err = parseMoney(cmd, "labor"); err != nil {
			return err
		}
		if req.MaterialCost, err = parseMoney(cmd, "material"); err != nil {
			return err
		}
		if req.FollowUpDate, err = parseTimeFlag(cmd, "follow-up"); err != nil {
			return err
		}
		req.RequiresFollowUp = req.FollowUpDate != nil

		specs, _ := cmd.Flags().GetStringArray("part")
		for _, spec := range specs {
			part, err := parsePart(spec)
			if err != nil {
				return err
			}
			req.Parts = append(req.Parts, part)
		}

		return wire.OrderAdapter().Complete(ctx, req)
	},
}

var orderVerifyCmd = &cobra.Command{
	Use:   "verify [order]",
	Short: "Approve or reject completed work as the requester",
	Long: `Approve or reject completed work as the requester.

Examples:
  mwo order verify 4 --approve --rating 5
  mwo order verify 4 --reject --feedback "Still too warm"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		approve, _ := cmd.Flags().GetBool("approve")
		reject, _ := cmd.Flags().GetBool("reject")
		if approve == reject {
			return fmt.Errorf("exactly one of --approve or --reject is required")
		}

		actor, err := actorID(cmd)
		if err != nil {
			return err
		}
		ctx := commandContext(cmd, actor)
		id, err := orderRef(ctx, args[0])
		if err != nil {
			return err
		}

		req := primary.VerifyOrderRequest{OrderID: id, Approved: approve, ActorID: actor}
		req.Rating, _ = cmd.Flags().GetInt("rating")
		req.Feedback, _ = cmd.Flags().GetString("feedback")

		return wire.OrderAdapter().Verify(ctx, req)
	},
}

var orderCancelCmd = &cobra.Command{
	Use:   "cancel [order]",
	Short: "Cancel an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := actorID(cmd)
		if err != nil {
			return err
		}
		ctx := commandContext(cmd, actor)
		id, err := orderRef(ctx, args[0])
		if err != nil {
			return err
		}

		reason, _ := cmd.Flags().GetString("reason")
		return wire.OrderAdapter().Cancel(ctx, primary.CancelOrderRequest{OrderID: id, Reason: reason, ActorID: actor})
	},
}

var orderCommentCmd = &cobra.Command{
	Use:   "comment [order] [text]",
	Short: "Add a comment to an order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		actor, err := actorID(cmd)
		if err != nil {
			return err
		}
		ctx := commandContext(cmd, actor)
		id, err := orderRef(ctx, args[0])
		if err != nil {
			return err
		}

		internal, _ := cmd.Flags().GetBool("internal")
		return wire.OrderAdapter().Comment(ctx, primary.AddCommentRequest{
			OrderID:    id,
			Comment:    args[1],
			IsInternal: internal,
			ActorID:    actor,
		})
	},
}

var orderShowCmd = &cobra.Command{
	Use:   "show [order]",
	Short: "Show an order with its history, parts and comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.OrderAdapter().Show(commandContext(cmd, 0), args[0])
	},
}

var orderAssignmentsCmd = &cobra.Command{
	Use:   "assignments [order]",
	Short: "Show an order's assignment trail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.OrderAdapter().Assignments(commandContext(cmd, 0), args[0])
	},
}

var orderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders",
	Long: `List orders with filters, sorting and paging.

Examples:
  mwo order list --open
  mwo order list --status in_progress --status on_hold --assignee 3
  mwo order list --breached --sort sla_deadline
  mwo order list --period week --sort priority --desc --page 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := primary.ListOrdersRequest{HotelID: hotelID(cmd)}
		flags := cmd.Flags()
		req.Statuses, _ = flags.GetStringArray("status")
		req.Priority, _ = flags.GetString("priority")
		req.AssignedDepartmentID, _ = flags.GetInt64("department")
		req.AssignedToUserID, _ = flags.GetInt64("assignee")
		req.BreachedOnly, _ = flags.GetBool("breached")
		req.OpenOnly, _ = flags.GetBool("open")
		req.Period, _ = flags.GetString("period")
		req.SortBy, _ = flags.GetString("sort")
		req.Descending, _ = flags.GetBool("desc")
		req.Page, _ = flags.GetInt("page")
		req.PageSize, _ = flags.GetInt("page-size")

		return wire.OrderAdapter().List(commandContext(cmd, 0), req)
	},
}

var partLedgerCmd = &cobra.Command{
	Use:   "ledger [spare-part-id]",
	Short: "Show the stock movements of a spare part",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid spare part id %q", args[0])
		}
		return wire.OrderAdapter().Ledger(commandContext(cmd, 0), id)
	},
}

// parsePart parses a --part value of the form id:qty[:unit-cost].
func parsePart(spec string) (primary.PartUsageRequest, error) {
	var part primary.PartUsageRequest
	fields := strings.Split(spec, ":")
	if len(fields) < 2 || len(fields) > 3 {
		return part, fmt.Errorf("invalid --part %q (want id:qty[:unit-cost])", spec)
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return part, fmt.Errorf("invalid --part %q: bad spare part id", spec)
	}
	qty, err := strconv.Atoi(fields[1])
	if err != nil {
		return part, fmt.Errorf("invalid --part %q: bad quantity", spec)
	}
	part.SparePartID = id
	part.Quantity = qty

	if len(fields) == 3 {
		cost, err := decimal.NewFromString(fields[2])
		if err != nil {
			return part, fmt.Errorf("invalid --part %q: bad unit cost", spec)
		}
		part.UnitCost = decimal.NewNullDecimal(cost)
	}
	return part, nil
}

// OrderCmd returns the order command
func OrderCmd() *cobra.Command {
	addActorFlag(orderCmd)
	orderCmd.PersistentFlags().Int64("hotel", 0, "Hotel ID (default: default_hotel_id from config)")

	orderCreateCmd.Flags().Int64("department", 0, "Requesting department ID")
	orderCreateCmd.Flags().Int64("location", 0, "Location ID")
	orderCreateCmd.Flags().Int64("item", 0, "Maintainable item ID")
	orderCreateCmd.Flags().StringP("description", "d", "", "Order description")
	orderCreateCmd.Flags().StringP("priority", "p", "medium", "Priority (low, medium, high, critical)")
	orderCreateCmd.Flags().StringP("type", "t", "corrective", "Type (corrective, preventive, inspection, emergency, improvement)")
	orderCreateCmd.Flags().String("estimated-cost", "", "Estimated cost")
	orderCreateCmd.Flags().String("expected", "", "Expected completion time")
	orderCreateCmd.Flags().Bool("urgent", false, "Flag as urgent")
	orderCreateCmd.Flags().Bool("safety", false, "Flag as a safety issue")
	orderCreateCmd.Flags().Bool("guest-facing", false, "Flag as guest facing")
	orderCreateCmd.Flags().Bool("submit", false, "Submit immediately instead of leaving a draft")
	orderCreateCmd.MarkFlagRequired("location")

	orderUpdateCmd.Flags().String("title", "", "New title")
	orderUpdateCmd.Flags().StringP("description", "d", "", "New description")
	orderUpdateCmd.Flags().StringP("priority", "p", "", "New priority")
	orderUpdateCmd.Flags().Int64("location", 0, "New location ID")
	orderUpdateCmd.Flags().Int64("item", 0, "New item ID (0 clears)")
	orderUpdateCmd.Flags().String("expected", "", "New expected completion time")
	orderUpdateCmd.Flags().Bool("urgent", false, "Urgent flag")
	orderUpdateCmd.Flags().Bool("safety", false, "Safety issue flag")
	orderUpdateCmd.Flags().Bool("guest-facing", false, "Guest facing flag")

	orderStatusCmd.Flags().StringP("notes", "n", "", "Notes recorded with the status change")
	orderStatusCmd.Flags().String("scheduled-start", "", "Scheduled start (required for scheduled)")
	orderStatusCmd.Flags().String("actual-start", "", "Actual start for in_progress (default: now)")

	orderAssignCmd.Flags().Int64("department", 0, "Department ID to assign to")
	orderAssignCmd.Flags().Int64("user", 0, "Technician user ID")
	orderAssignCmd.Flags().StringP("reason", "r", "", "Reason for the (re)assignment")
	orderAssignCmd.MarkFlagRequired("department")

	orderCompleteCmd.Flags().StringP("notes", "n", "", "Resolution notes")
	orderCompleteCmd.Flags().String("labor", "", "Labor cost")
	orderCompleteCmd.Flags().String("material", "", "Material cost")
	orderCompleteCmd.Flags().String("follow-up", "", "Follow-up date; sets requires follow-up")
	orderCompleteCmd.Flags().StringArray("part", nil, "Spare part consumed as id:qty[:unit-cost] (repeatable)")

	orderVerifyCmd.Flags().Bool("approve", false, "Approve the work")
	orderVerifyCmd.Flags().Bool("reject", false, "Reject the work and reopen the order")
	orderVerifyCmd.Flags().Int("rating", 0, "Rating 1-5 (required with --approve)")
	orderVerifyCmd.Flags().StringP("feedback", "f", "", "Feedback (required with --reject)")

	orderCancelCmd.Flags().StringP("reason", "r", "", "Cancellation reason")

	orderCommentCmd.Flags().Bool("internal", false, "Hide the comment from the requester")

	orderListCmd.Flags().StringArrayP("status", "s", nil, "Filter by status (repeatable)")
	orderListCmd.Flags().StringP("priority", "p", "", "Filter by priority")
	orderListCmd.Flags().Int64("department", 0, "Filter by assigned department")
	orderListCmd.Flags().Int64("assignee", 0, "Filter by assigned technician")
	orderListCmd.Flags().Bool("breached", false, "Only orders past their SLA")
	orderListCmd.Flags().Bool("open", false, "Only orders that are not closed or cancelled")
	orderListCmd.Flags().String("period", "", "Created in (today, week, month, year)")
	orderListCmd.Flags().String("sort", "", "Sort by (created_at, sla_deadline, priority, order_number)")
	orderListCmd.Flags().Bool("desc", false, "Sort descending")
	orderListCmd.Flags().Int("page", 1, "Page number")
	orderListCmd.Flags().Int("page-size", 0, "Page size (default 50, max 100)")

	orderCmd.AddCommand(orderCreateCmd)
	orderCmd.AddCommand(orderUpdateCmd)
	orderCmd.AddCommand(orderStatusCmd)
	orderCmd.AddCommand(orderAssignCmd)
	orderCmd.AddCommand(orderCompleteCmd)
	orderCmd.AddCommand(orderVerifyCmd)
	orderCmd.AddCommand(orderCancelCmd)
	orderCmd.AddCommand(orderCommentCmd)
	orderCmd.AddCommand(orderShowCmd)
	orderCmd.AddCommand(orderAssignmentsCmd)
	orderCmd.AddCommand(orderListCmd)

	return orderCmd
}

// PartCmd returns the part command
func PartCmd() *cobra.Command {
	partCmd := &cobra.Command{
		Use:   "part",
		Short: "Inspect spare part stock",
	}
	partCmd.AddCommand(partLedgerCmd)
	return partCmd
}
