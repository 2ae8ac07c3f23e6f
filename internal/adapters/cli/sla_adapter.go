package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/example/mwo/internal/ports/primary"
)

// SLAAdapter translates CLI operations to SLAService calls.
type SLAAdapter struct {
	service primary.SLAService
	out     io.Writer
}

// NewSLAAdapter creates a new SLAAdapter with the given service.
func NewSLAAdapter(service primary.SLAService, out io.Writer) *SLAAdapter {
	return &SLAAdapter{
		service: service,
		out:     out,
	}
}

// Sweep runs one breach sweep and reports what it flagged.
func (a *SLAAdapter) Sweep(ctx context.Context, now time.Time) error {
	res, err := a.service.SweepBreaches(ctx, now)
	if err != nil {
		return err
	}

	if len(res.Flagged) == 0 {
		fmt.Fprintf(a.out, "✓ No new SLA breaches (%d checked)\n", res.Checked)
	} else {
		fmt.Fprintf(a.out, "%s %d order(s) breached SLA:\n", color.New(color.FgRed).Sprint("✗"), len(res.Flagged))
		for _, number := range res.Flagged {
			fmt.Fprintf(a.out, "  %s\n", number)
		}
	}
	if res.Conflicts > 0 {
		fmt.Fprintf(a.out, "  %d order(s) changed during the sweep and will be rechecked\n", res.Conflicts)
	}
	return nil
}

// Watch sweeps immediately and then on every tick until ctx is cancelled.
func (a *SLAAdapter) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := a.Sweep(ctx, time.Now()); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Targets prints the SLA targets configured for a hotel.
func (a *SLAAdapter) Targets(ctx context.Context, hotelID int64) error {
	targets, err := a.service.ListTargets(ctx, hotelID)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Fprintf(a.out, "No SLA targets configured for hotel %d\n", hotelID)
		return nil
	}

	fmt.Fprintf(a.out, "\n%-9s %10s %12s %s\n", "PRIORITY", "RESPONSE", "RESOLUTION", "ACTIVE")
	for _, t := range targets {
		active := color.New(color.FgGreen).Sprint("yes")
		if !t.IsActive {
			active = color.New(color.FgHiBlack).Sprint("no")
		}
		fmt.Fprintf(a.out, "%-9s %7d min %9d min %s\n", t.Priority, t.ResponseTimeMinutes, t.ResolutionTimeMinutes, active)
	}
	fmt.Fprintln(a.out)
	return nil
}
