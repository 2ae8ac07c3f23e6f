package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/example/mwo/internal/core/failure"
	"github.com/example/mwo/internal/core/order"
	"github.com/example/mwo/internal/ctxutil"
	"github.com/example/mwo/internal/logging"
	"github.com/example/mwo/internal/ports/primary"
	"github.com/example/mwo/internal/ports/secondary"
)

const defaultSweepBatch = 500

// SLAServiceImpl implements the SLAService interface.
type SLAServiceImpl struct {
	tx        secondary.Transactor
	orders    secondary.OrderRepository
	slas      secondary.SLAConfigRepository
	logger    *zap.Logger
	batchSize int
}

// NewSLAService creates a new SLAService with injected dependencies.
func NewSLAService(
	tx secondary.Transactor,
	orders secondary.OrderRepository,
	slas secondary.SLAConfigRepository,
	logger *zap.Logger,
) *SLAServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SLAServiceImpl{
		tx:        tx,
		orders:    orders,
		slas:      slas,
		logger:    logger,
		batchSize: defaultSweepBatch,
	}
}

// SweepBreaches flags open orders whose deadline passed before now. Each
// order is flagged in its own short transaction under the version check; an
// order changed by a concurrent command is skipped and counted.
func (s *SLAServiceImpl) SweepBreaches(ctx context.Context, now time.Time) (*primary.SweepResult, error) {
	ctx, _ = ctxutil.EnsureCommandID(ctx)
	log := logging.FromContext(ctx, s.logger).With(zap.String("command", "sla_sweep"))
	now = now.UTC()

	var statuses []string
	for _, st := range order.OpenStatuses() {
		statuses = append(statuses, string(st))
	}
	candidates, err := s.orders.ListBreachCandidates(ctx, now, statuses, s.batchSize)
	if err != nil {
		return nil, err
	}

	result := &primary.SweepResult{Checked: len(candidates), Flagged: []string{}}
	for _, o := range candidates {
		snapshot := order.BreachSnapshot{Status: order.Status(o.Status), Deadline: o.SLADeadline, CompletedAt: o.ActualCompletionDate}
		if o.IsSLABreached || !order.IsBreached(snapshot, now) {
			continue
		}
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			o.IsSLABreached = true
			o.SLABreachedAt = timeRef(now)
			o.UpdatedAt = now
			return s.orders.Update(ctx, o)
		})
		switch {
		case err == nil:
			result.Flagged = append(result.Flagged, o.OrderNumber)
			log.Info("sla breached", zap.String("order_number", o.OrderNumber), zap.Timep("deadline", o.SLADeadline))
		case errors.Is(err, failure.ErrConcurrencyConflict), errors.Is(err, failure.ErrNotFound):
			result.Conflicts++
			log.Debug("skipped order changed during sweep", zap.String("order_number", o.OrderNumber))
		default:
			log.Error("sla sweep failed", zap.Error(err))
			return result, err
		}
	}
	log.Info("sla sweep finished",
		zap.Int("checked", result.Checked),
		zap.Int("flagged", len(result.Flagged)),
		zap.Int("conflicts", result.Conflicts))
	return result, nil
}

// ResolveTarget returns the active target for a hotel/priority, or nil when
// none is configured.
func (s *SLAServiceImpl) ResolveTarget(ctx context.Context, hotelID int64, priority string) (*primary.SLATarget, error) {
	if !order.Priority(priority).Valid() {
		return nil, failure.Validation(failure.Violation{Field: "priority", Message: "unknown priority " + priority})
	}
	cfg, err := s.slas.GetActive(ctx, hotelID, priority)
	if err != nil || cfg == nil {
		return nil, err
	}
	return toSLATarget(cfg), nil
}

// ListTargets returns every target configured for a hotel.
func (s *SLAServiceImpl) ListTargets(ctx context.Context, hotelID int64) ([]*primary.SLATarget, error) {
	records, err := s.slas.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	out := make([]*primary.SLATarget, len(records))
	for i, r := range records {
		out[i] = toSLATarget(r)
	}
	return out, nil
}
