package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/mwo/internal/ports/secondary"
)

// LedgerRepository implements secondary.LedgerRepository with SQLite.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new SQLite inventory ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const ledgerSelectCols = "id, spare_part_id, transaction_type, quantity, quantity_before, quantity_after, cost, reference_type, reference_id, reference_number, notes, created_by_user_id, created_at, command_id"

// Append records a stock movement.
func (r *LedgerRepository) Append(ctx context.Context, t *secondary.LedgerTransactionRecord) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO spare_part_transactions (spare_part_id, transaction_type, quantity, quantity_before, quantity_after, cost,
			reference_type, reference_id, reference_number, notes, created_by_user_id, created_at, command_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.SparePartID, t.Type, t.Quantity, t.QuantityBefore, t.QuantityAfter, t.Cost,
		nullString(t.ReferenceType), nullInt64(t.ReferenceID), nullString(t.ReferenceNumber), nullString(t.Notes),
		t.CreatedByUserID, t.CreatedAt.UTC(), nullString(t.CommandID),
	)
	if err != nil {
		return mapError("append ledger transaction", err)
	}
	t.ID, err = res.LastInsertId()
	return mapError("append ledger transaction", err)
}

// ListBySparePart returns a part's movements, oldest first.
func (r *LedgerRepository) ListBySparePart(ctx context.Context, sparePartID int64) ([]*secondary.LedgerTransactionRecord, error) {
	return r.query(ctx, "SELECT "+ledgerSelectCols+" FROM spare_part_transactions WHERE spare_part_id = ? ORDER BY id", sparePartID)
}

// ListByReference returns the movements caused by one referenced entity.
func (r *LedgerRepository) ListByReference(ctx context.Context, referenceType string, referenceID int64) ([]*secondary.LedgerTransactionRecord, error) {
	return r.query(ctx, "SELECT "+ledgerSelectCols+" FROM spare_part_transactions WHERE reference_type = ? AND reference_id = ? ORDER BY id", referenceType, referenceID)
}

func (r *LedgerRepository) query(ctx context.Context, query string, args ...any) ([]*secondary.LedgerTransactionRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list ledger transactions", err)
	}
	defer rows.Close()

	var out []*secondary.LedgerTransactionRecord
	for rows.Next() {
		var (
			t                         secondary.LedgerTransactionRecord
			refType, refNumber, notes sql.NullString
			command                   sql.NullString
			refID                     sql.NullInt64
		)
		err := rows.Scan(&t.ID, &t.SparePartID, &t.Type, &t.Quantity, &t.QuantityBefore, &t.QuantityAfter, &t.Cost,
			&refType, &refID, &refNumber, &notes, &t.CreatedByUserID, &t.CreatedAt, &command)
		if err != nil {
			return nil, mapError("scan ledger transaction", err)
		}
		t.ReferenceType = refType.String
		t.ReferenceID = refID.Int64
		t.ReferenceNumber = refNumber.String
		t.Notes = notes.String
		t.CommandID = command.String
		t.CreatedAt = t.CreatedAt.UTC()
		out = append(out, &t)
	}
	return out, mapError("list ledger transactions", rows.Err())
}

// Ensure LedgerRepository implements the interface
var _ secondary.LedgerRepository = (*LedgerRepository)(nil)
