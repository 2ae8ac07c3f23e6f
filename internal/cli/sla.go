package cli

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/mwo/internal/wire"
)

var slaCmd = &cobra.Command{
	Use:   "sla",
	Short: "Track service-level deadlines",
}

var slaSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Flag open orders whose SLA deadline has passed",
	Long: `Flag open orders whose SLA deadline has passed. Each order is flagged in
its own transaction; orders changed concurrently are picked up next sweep.

Examples:
  mwo sla sweep
  mwo sla sweep --at "2026-03-10 18:00"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		at := time.Now()
		when, err := parseTimeFlag(cmd, "at")
		if err != nil {
			return err
		}
		if when != nil {
			at = *when
		}
		return wire.SLAAdapter().Sweep(commandContext(cmd, 0), at)
	},
}

var slaWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Sweep for SLA breaches on an interval until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			var err error
			if interval, err = wire.Config().Sweep(); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd, 0), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return wire.SLAAdapter().Watch(ctx, interval)
	},
}

var slaTargetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Show a hotel's SLA targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.SLAAdapter().Targets(commandContext(cmd, 0), hotelID(cmd))
	},
}

// SLACmd returns the sla command
func SLACmd() *cobra.Command {
	slaSweepCmd.Flags().String("at", "", "Evaluate deadlines as of this time (default: now)")
	slaWatchCmd.Flags().Duration("interval", 0, "Sweep interval (default: sweep_interval from config, 5m)")
	slaTargetsCmd.Flags().Int64("hotel", 0, "Hotel ID (default: default_hotel_id from config)")

	slaCmd.AddCommand(slaSweepCmd)
	slaCmd.AddCommand(slaWatchCmd)
	slaCmd.AddCommand(slaTargetsCmd)

	return slaCmd
}
