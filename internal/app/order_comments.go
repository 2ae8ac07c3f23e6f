package app

import (
	"context"
	"time"

	"github.com/example/mwo/internal/core/order"
	"github.com/example/mwo/internal/ports/primary"
	"github.com/example/mwo/internal/ports/secondary"
)

// AddComment attaches a note to an order. Comments do not touch the order
// row or its version.
func (s *OrderServiceImpl) AddComment(ctx context.Context, req primary.AddCommentRequest) (*primary.Comment, error) {
	rec, err := execute(ctx, s, "add_comment", req.ActorID, func(ctx context.Context, now time.Time) (*secondary.CommentRecord, error) {
		if err := order.ValidateComment(req.Comment, req.ActorID); err != nil {
			return nil, err
		}
		if _, err := s.orders.GetByID(ctx, req.OrderID); err != nil {
			return nil, err
		}
		if _, err := s.refs.GetUser(ctx, req.ActorID); err != nil {
			return nil, err
		}

		c := &secondary.CommentRecord{
			OrderID:    req.OrderID,
			UserID:     req.ActorID,
			Comment:    req.Comment,
			IsInternal: req.IsInternal,
			CreatedAt:  now,
		}
		if err := s.comments.Create(ctx, c); err != nil {
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return toComment(rec), nil
}

// ListComments returns an order's comments, oldest first.
func (s *OrderServiceImpl) ListComments(ctx context.Context, orderID int64) ([]*primary.Comment, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	records, err := s.comments.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]*primary.Comment, len(records))
	for i, r := range records {
		out[i] = toComment(r)
	}
	return out, nil
}
