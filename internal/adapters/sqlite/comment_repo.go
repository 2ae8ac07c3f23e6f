package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/mwo/internal/ports/secondary"
)

// CommentRepository implements secondary.CommentRepository with SQLite.
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new SQLite comment repository.
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create persists a comment.
func (r *CommentRepository) Create(ctx context.Context, c *secondary.CommentRecord) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO order_comments (order_id, user_id, comment, is_internal, created_at) VALUES (?, ?, ?, ?, ?)",
		c.OrderID, c.UserID, c.Comment, c.IsInternal, c.CreatedAt.UTC(),
	)
	if err != nil {
		return mapError("create comment", err)
	}
	c.ID, err = res.LastInsertId()
	return mapError("create comment", err)
}

// ListByOrder returns an order's comments, oldest first.
func (r *CommentRepository) ListByOrder(ctx context.Context, orderID int64) ([]*secondary.CommentRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT id, order_id, user_id, comment, is_internal, created_at FROM order_comments WHERE order_id = ? ORDER BY id",
		orderID)
	if err != nil {
		return nil, mapError("list comments", err)
	}
	defer rows.Close()

	var out []*secondary.CommentRecord
	for rows.Next() {
		var c secondary.CommentRecord
		if err := rows.Scan(&c.ID, &c.OrderID, &c.UserID, &c.Comment, &c.IsInternal, &c.CreatedAt); err != nil {
			return nil, mapError("scan comment", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		out = append(out, &c)
	}
	return out, mapError("list comments", rows.Err())
}

// Ensure CommentRepository implements the interface
var _ secondary.CommentRepository = (*CommentRepository)(nil)
