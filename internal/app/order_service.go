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
	"github.com/example/mwo/internal/ports/secondary"
)

// defaultMaxAttempts bounds how often a command is retried after losing a
// version race.
const defaultMaxAttempts = 3

// OrderServiceDeps holds the driven ports an OrderServiceImpl needs.
type OrderServiceDeps struct {
	Transactor  secondary.Transactor
	Orders      secondary.OrderRepository
	History     secondary.HistoryRepository
	SpareParts  secondary.SparePartRepository
	Ledger      secondary.LedgerRepository
	Comments    secondary.CommentRepository
	References  secondary.ReferenceLookup
	SLAConfigs  secondary.SLAConfigRepository
	Sequence    secondary.OrderNumberSequence
	Logger      *zap.Logger
	Clock       func() time.Time // defaults to time.Now
	MaxAttempts int              // defaults to 3
}

// OrderServiceImpl implements the OrderService interface.
type OrderServiceImpl struct {
	tx          secondary.Transactor
	orders      secondary.OrderRepository
	history     secondary.HistoryRepository
	parts       secondary.SparePartRepository
	ledger      secondary.LedgerRepository
	comments    secondary.CommentRepository
	refs        secondary.ReferenceLookup
	slas        secondary.SLAConfigRepository
	sequence    secondary.OrderNumberSequence
	logger      *zap.Logger
	now         func() time.Time
	maxAttempts int
}

// NewOrderService creates a new OrderService with injected dependencies.
func NewOrderService(deps OrderServiceDeps) *OrderServiceImpl {
	s := &OrderServiceImpl{
		tx:          deps.Transactor,
		orders:      deps.Orders,
		history:     deps.History,
		parts:       deps.SpareParts,
		ledger:      deps.Ledger,
		comments:    deps.Comments,
		refs:        deps.References,
		slas:        deps.SLAConfigs,
		sequence:    deps.Sequence,
		logger:      deps.Logger,
		now:         deps.Clock,
		maxAttempts: deps.MaxAttempts,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.maxAttempts < 1 {
		s.maxAttempts = defaultMaxAttempts
	}
	return s
}

// execute runs fn inside one transaction, retrying on concurrency conflicts.
// fn receives a fresh timestamp per attempt. Every outcome is logged once.
func execute[T any](ctx context.Context, s *OrderServiceImpl, command string, actorID int64, fn func(ctx context.Context, now time.Time) (T, error)) (T, error) {
	if actorID != 0 {
		ctx = ctxutil.WithActorID(ctx, actorID)
	}
	ctx, _ = ctxutil.EnsureCommandID(ctx)
	log := logging.FromContext(ctx, s.logger).With(zap.String("command", command))

	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		now := s.now().UTC()
		err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
			var fnErr error
			result, fnErr = fn(ctx, now)
			return fnErr
		})
		if !errors.Is(err, failure.ErrConcurrencyConflict) {
			break
		}
		log.Debug("retrying after concurrency conflict", zap.Int("attempt", attempt), zap.Error(err))
	}

	switch {
	case err == nil:
		if rec, ok := any(result).(*secondary.OrderRecord); ok && rec != nil {
			log = log.With(zap.Int64("order_id", rec.ID), zap.String("order_number", rec.OrderNumber), zap.String("status", rec.Status))
		}
		log.Info("command applied")
	case failure.IsDomain(err):
		log.Info("command rejected", zap.Error(err))
	default:
		log.Error("command failed", zap.Error(err))
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// applyTransition is the only place an order's status changes. It checks the
// edge against the transition table and returns the history entry to append.
func applyTransition(ctx context.Context, o *secondary.OrderRecord, to order.Status, now time.Time, notes string) (*secondary.StatusHistoryRecord, error) {
	from := order.Status(o.Status)
	if r := order.CanTransition(order.TransitionContext{OrderNumber: o.OrderNumber, From: from, To: to}); !r.Allowed {
		return nil, r.Error()
	}
	o.Status = string(to)
	o.UpdatedAt = now
	return &secondary.StatusHistoryRecord{
		OrderID:         o.ID,
		FromStatus:      string(from),
		ToStatus:        string(to),
		ChangedByUserID: ctxutil.ActorFromContext(ctx),
		ChangedAt:       now,
		Notes:           notes,
		CommandID:       ctxutil.CommandIDFromContext(ctx),
	}, nil
}

// save writes the order under its version check, then appends history.
func (s *OrderServiceImpl) save(ctx context.Context, o *secondary.OrderRecord, entries ...*secondary.StatusHistoryRecord) error {
	if err := s.orders.Update(ctx, o); err != nil {
		return err
	}
	return s.appendStatus(ctx, o.ID, entries...)
}

func (s *OrderServiceImpl) appendStatus(ctx context.Context, orderID int64, entries ...*secondary.StatusHistoryRecord) error {
	for _, e := range entries {
		e.OrderID = orderID
		if err := s.history.AppendStatus(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// slaTarget resolves the active SLA target, or nil when none is configured.
func (s *OrderServiceImpl) slaTarget(ctx context.Context, hotelID int64, priority string) (*order.SLATarget, error) {
	cfg, err := s.slas.GetActive(ctx, hotelID, priority)
	if err != nil || cfg == nil {
		return nil, err
	}
	return &order.SLATarget{
		HotelID:               cfg.HotelID,
		Priority:              order.Priority(cfg.Priority),
		ResponseTimeMinutes:   cfg.ResponseTimeMinutes,
		ResolutionTimeMinutes: cfg.ResolutionTimeMinutes,
	}, nil
}

// found folds a lookup error into an existence flag. Errors other than
// ErrNotFound are passed through.
func found(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, failure.ErrNotFound):
		return false, nil
	}
	return false, err
}

func timeRef(t time.Time) *time.Time {
	return &t
}
