package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/mwo/internal/core/failure"
)

const (
	maxTitleLength = 200
	maxTextLength  = 4000
	minRating      = 1
	maxRating      = 5
)

// Precondition checks one aspect of a command's input.
type Precondition func() []failure.Violation

// Validate runs the preconditions in order and returns a ValidationError
// holding every violation found, or nil.
func Validate(checks ...Precondition) error {
	var all []failure.Violation
	for _, check := range checks {
		all = append(all, check()...)
	}
	return failure.Validation(all...)
}

func violation(field, format string, args ...any) []failure.Violation {
	return []failure.Violation{{Field: field, Message: fmt.Sprintf(format, args...)}}
}

// RequiredText rejects blank values and values longer than max runes.
func RequiredText(field, value string, max int) Precondition {
	return func() []failure.Violation {
		if strings.TrimSpace(value) == "" {
			return violation(field, "is required")
		}
		return OptionalText(field, value, max)()
	}
}

// OptionalText rejects values longer than max runes.
func OptionalText(field, value string, max int) Precondition {
	return func() []failure.Violation {
		if n := len([]rune(value)); n > max {
			return violation(field, "must be at most %d characters (got %d)", max, n)
		}
		return nil
	}
}

// RequiredID rejects non-positive identifiers.
func RequiredID(field string, id int64) Precondition {
	return func() []failure.Violation {
		if id <= 0 {
			return violation(field, "is required")
		}
		return nil
	}
}

// OptionalID rejects negative identifiers; zero means "not given".
func OptionalID(field string, id int64) Precondition {
	return func() []failure.Violation {
		if id < 0 {
			return violation(field, "must not be negative")
		}
		return nil
	}
}

// ValidPriority rejects unknown priorities.
func ValidPriority(field string, p Priority) Precondition {
	return func() []failure.Violation {
		if !p.Valid() {
			return violation(field, "unknown priority %q", p)
		}
		return nil
	}
}

// ValidType rejects unknown order types.
func ValidType(field string, t Type) Precondition {
	return func() []failure.Violation {
		if !t.Valid() {
			return violation(field, "unknown order type %q", t)
		}
		return nil
	}
}

// NonNegativeMoney rejects negative amounts.
func NonNegativeMoney(field string, d decimal.Decimal) Precondition {
	return func() []failure.Violation {
		if d.IsNegative() {
			return violation(field, "must not be negative")
		}
		return nil
	}
}

// NotBefore rejects a set time earlier than ref.
func NotBefore(field string, t *time.Time, ref time.Time) Precondition {
	return func() []failure.Violation {
		if t != nil && t.Before(ref) {
			return violation(field, "must not be before %s", ref.Format(time.RFC3339))
		}
		return nil
	}
}

// RatingInRange rejects ratings outside 1..5.
func RatingInRange(field string, rating int) Precondition {
	return func() []failure.Violation {
		if rating < minRating || rating > maxRating {
			return violation(field, "must be between %d and %d", minRating, maxRating)
		}
		return nil
	}
}

// UsageInput is one requested spare-part consumption line. UnitCost is
// optional; when invalid the part's catalog cost applies.
type UsageInput struct {
	SparePartID int64
	Quantity    int
	UnitCost    decimal.NullDecimal
}

// ValidUsage rejects non-positive quantities, negative unit costs and
// duplicate spare parts.
func ValidUsage(field string, lines []UsageInput) Precondition {
	return func() []failure.Violation {
		var out []failure.Violation
		seen := make(map[int64]bool, len(lines))
		for i, l := range lines {
			f := fmt.Sprintf("%s[%d]", field, i)
			if l.SparePartID <= 0 {
				out = append(out, violation(f+".spare_part_id", "is required")...)
			} else if seen[l.SparePartID] {
				out = append(out, violation(f+".spare_part_id", "spare part %d listed more than once", l.SparePartID)...)
			}
			seen[l.SparePartID] = true
			if l.Quantity <= 0 {
				out = append(out, violation(f+".quantity", "must be positive")...)
			}
			if l.UnitCost.Valid && l.UnitCost.Decimal.IsNegative() {
				out = append(out, violation(f+".unit_cost", "must not be negative")...)
			}
		}
		return out
	}
}

// CreateInput is the validated shape of an order creation command.
type CreateInput struct {
	HotelID            int64
	DepartmentID       int64
	LocationID         int64
	ItemID             int64
	Title              string
	Description        string
	Priority           Priority
	Type               Type
	EstimatedCost      decimal.Decimal
	ExpectedCompletion *time.Time
	ActorID            int64
}

// ValidateCreate composes the creation preconditions.
func ValidateCreate(in CreateInput, now time.Time) error {
	return Validate(
		RequiredID("hotel_id", in.HotelID),
		RequiredID("department_id", in.DepartmentID),
		RequiredID("location_id", in.LocationID),
		OptionalID("item_id", in.ItemID),
		RequiredText("title", in.Title, maxTitleLength),
		OptionalText("description", in.Description, maxTextLength),
		ValidPriority("priority", in.Priority),
		ValidType("type", in.Type),
		NonNegativeMoney("estimated_cost", in.EstimatedCost),
		NotBefore("expected_completion", in.ExpectedCompletion, now.Add(-time.Minute)),
		RequiredID("actor_id", in.ActorID),
	)
}

// UpdateInput holds the optional fields of an update; nil means unchanged.
type UpdateInput struct {
	Title              *string
	Description        *string
	Priority           *Priority
	LocationID         *int64
	ItemID             *int64
	ExpectedCompletion *time.Time
	IsUrgent           *bool
	IsSafetyIssue      *bool
	IsGuestFacing      *bool
	ActorID            int64
}

// Empty reports whether the update changes nothing.
func (in UpdateInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Priority == nil &&
		in.LocationID == nil && in.ItemID == nil && in.ExpectedCompletion == nil &&
		in.IsUrgent == nil && in.IsSafetyIssue == nil && in.IsGuestFacing == nil
}

// ValidateUpdate composes the update preconditions.
func ValidateUpdate(in UpdateInput) error {
	checks := []Precondition{RequiredID("actor_id", in.ActorID)}
	if in.Empty() {
		checks = append(checks, func() []failure.Violation {
			return violation("", "no fields to update")
		})
	}
	if in.Title != nil {
		checks = append(checks, RequiredText("title", *in.Title, maxTitleLength))
	}
	if in.Description != nil {
		checks = append(checks, OptionalText("description", *in.Description, maxTextLength))
	}
	if in.Priority != nil {
		checks = append(checks, ValidPriority("priority", *in.Priority))
	}
	if in.LocationID != nil {
		checks = append(checks, RequiredID("location_id", *in.LocationID))
	}
	if in.ItemID != nil {
		checks = append(checks, OptionalID("item_id", *in.ItemID))
	}
	return Validate(checks...)
}

// CompleteInput is the validated shape of a completion command.
type CompleteInput struct {
	ResolutionNotes  string
	RequiresFollowUp bool
	FollowUpDate     *time.Time
	LaborCost        decimal.Decimal
	MaterialCost     decimal.Decimal
	Parts            []UsageInput
	ActorID          int64
}

// ValidateComplete composes the completion preconditions.
func ValidateComplete(in CompleteInput, now time.Time) error {
	checks := []Precondition{
		RequiredText("resolution_notes", in.ResolutionNotes, maxTextLength),
		NonNegativeMoney("labor_cost", in.LaborCost),
		NonNegativeMoney("material_cost", in.MaterialCost),
		ValidUsage("spare_parts", in.Parts),
		RequiredID("actor_id", in.ActorID),
	}
	if in.RequiresFollowUp {
		checks = append(checks, func() []failure.Violation {
			if in.FollowUpDate == nil {
				return violation("follow_up_date", "is required when follow-up is requested")
			}
			return nil
		}, NotBefore("follow_up_date", in.FollowUpDate, now.Add(-time.Minute)))
	}
	return Validate(checks...)
}

// ValidateVerify composes the verification preconditions.
func ValidateVerify(approved bool, rating int, feedback string, actorID int64) error {
	checks := []Precondition{
		RequiredID("actor_id", actorID),
		OptionalText("feedback", feedback, maxTextLength),
	}
	if approved {
		checks = append(checks, RatingInRange("rating", rating))
	} else {
		checks = append(checks, RequiredText("feedback", feedback, maxTextLength))
	}
	return Validate(checks...)
}

// ValidateCancel composes the cancellation preconditions.
func ValidateCancel(reason string, actorID int64) error {
	return Validate(
		RequiredText("reason", reason, maxTextLength),
		RequiredID("actor_id", actorID),
	)
}

// ValidateAssign composes the assignment preconditions.
func ValidateAssign(departmentID, userID int64, reason string, actorID int64) error {
	return Validate(
		RequiredID("department_id", departmentID),
		OptionalID("user_id", userID),
		OptionalText("reason", reason, maxTextLength),
		RequiredID("actor_id", actorID),
	)
}

// ValidateComment composes the comment preconditions.
func ValidateComment(text string, actorID int64) error {
	return Validate(
		RequiredText("comment", text, maxTextLength),
		RequiredID("actor_id", actorID),
	)
}

// ValidateStatusChange composes the generic status-change preconditions.
func ValidateStatusChange(target string, notes string, actorID int64) error {
	return Validate(
		func() []failure.Violation {
			if _, err := ParseStatus(target); err != nil {
				return violation("status", "%v", err)
			}
			return nil
		},
		OptionalText("notes", notes, maxTextLength),
		RequiredID("actor_id", actorID),
	)
}
