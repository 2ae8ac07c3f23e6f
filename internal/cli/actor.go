package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	cliadapter "github.com/example/mwo/internal/adapters/cli"
	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/ctxutil"
	"github.com/example/mwo/internal/logging"
	"github.com/example/mwo/internal/wire"
)

// Exit codes by failure kind. Anything unclassified exits 1.
const (
	ExitError          = 1
	ExitValidation     = 2
	ExitNotFound       = 3
	ExitInvalidState   = 4
	ExitPermission     = 5
	ExitConflict       = 6
	ExitInfrastructure = 7
)

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	switch failure.KindOf(err) {
	case nil:
		if err == nil {
			return 0
		}
		return ExitError
	case failure.ErrValidationFailed:
		return ExitValidation
	case failure.ErrNotFound:
		return ExitNotFound
	case failure.ErrInvalidStateTransition, failure.ErrAlreadyTerminal:
		return ExitInvalidState
	case failure.ErrPermissionDenied:
		return ExitPermission
	case failure.ErrConcurrencyConflict:
		return ExitConflict
	case failure.ErrInfrastructure:
		return ExitInfrastructure
	}
	return ExitError
}

// addActorFlag registers --as on a command tree.
func addActorFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Int64("as", 0, "User ID to act as (default: actor_user_id from config or MWO_ACTOR)")
}

// actorID resolves the acting user: --as wins over configuration.
func actorID(cmd *cobra.Command) (int64, error) {
	if id, _ := cmd.Flags().GetInt64("as"); id != 0 {
		return id, nil
	}
	if id := wire.Config().ActorUserID; id != 0 {
		return id, nil
	}
	return 0, errors.New("no acting user: pass --as <user-id> or set actor_user_id / MWO_ACTOR")
}

// commandContext returns the command's context carrying the logger and actor.
func commandContext(cmd *cobra.Command, actor int64) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, wire.Logger())
	if actor != 0 {
		ctx = ctxutil.WithActorID(ctx, actor)
	}
	return ctx
}

// hotelID returns --hotel, falling back to default_hotel_id.
func hotelID(cmd *cobra.Command) int64 {
	if id, _ := cmd.Flags().GetInt64("hotel"); id != 0 {
		return id
	}
	return wire.Config().DefaultHotelID
}

// orderRef resolves an order ID or order number argument to an ID.
func orderRef(ctx context.Context, ref string) (int64, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}
	o, err := wire.OrderService().GetOrderByNumber(ctx, ref)
	if err != nil {
		return 0, err
	}
	return o.ID, nil
}

func parseMoney(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, raw, err)
	}
	return d, nil
}

func parseTimeFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	t, err := cliadapter.ParseWhen(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &t, nil
}
