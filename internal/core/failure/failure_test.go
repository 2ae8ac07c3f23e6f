package failure

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "plain error", err: errors.New("boom"), want: nil},
		{name: "not found", err: NotFound("order", 42), want: ErrNotFound},
		{name: "validation", err: Validation(Violation{Field: "title", Message: "is required"}), want: ErrValidationFailed},
		{name: "conflict", err: Conflict("order %d changed", 1), want: ErrConcurrencyConflict},
		{name: "wrapped twice", err: fmt.Errorf("outer: %w", NotFound("user", 7)), want: ErrNotFound},
		{name: "infrastructure", err: Infrastructure("load order", sql.ErrConnDone), want: ErrInfrastructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInfrastructure_PreservesDomainKinds(t *testing.T) {
	err := Infrastructure("save order", NotFound("order", 3))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrInfrastructure) {
		t.Errorf("domain failure should not be reclassified as infrastructure")
	}
	if !errors.Is(Infrastructure("x", sql.ErrConnDone), sql.ErrConnDone) {
		t.Errorf("driver error should stay reachable through the wrap")
	}
}

func TestValidation(t *testing.T) {
	if Validation() != nil {
		t.Fatal("expected nil for no violations")
	}

	err := Validation(
		Violation{Field: "quantity", Message: "must be positive"},
		Violation{Message: "no fields to update"},
	)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Violations) != 2 {
		t.Errorf("expected 2 violations, got %d", len(verr.Violations))
	}
	want := "validation failed: quantity: must be positive; no fields to update"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !IsDomain(err) {
		t.Errorf("validation failure should be a domain failure")
	}
}
