package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danindra/warungbot/core/logger"
)

var _ Ledger = (*PGLedger)(nil)

// PGLedger persists committed transactions in Postgres.
//
// Rows written before the multi-item schema carry a single product in the
// legacy_* columns and have no rows in transaction_items. Scanning normalizes
// them into one synthetic item, so callers never see the legacy shape.
type PGLedger struct {
	db *sqlx.DB
}

// NewPGLedger wraps a database handle as a Ledger.
func NewPGLedger(db *sqlx.DB) *PGLedger {
	return &PGLedger{db: db}
}

type transactionRow struct {
	ID            int64          `db:"id"`
	Buyer         string         `db:"buyer"`
	Total         int64          `db:"total"`
	CreatedAt     time.Time      `db:"created_at"`
	LegacyProduct sql.NullString `db:"legacy_product"`
	LegacyQty     sql.NullInt64  `db:"legacy_qty"`
	LegacyPrice   sql.NullInt64  `db:"legacy_price"`
}

type itemRow struct {
	TransactionID int64  `db:"transaction_id"`
	Position      int    `db:"position"`
	Name          string `db:"name"`
	UnitPrice     int64  `db:"unit_price"`
	Quantity      int64  `db:"quantity"`
	Subtotal      int64  `db:"subtotal"`
}

func (r transactionRow) normalize(items []TransactionItem) Transaction {
	tx := Transaction{
		ID:        r.ID,
		Buyer:     r.Buyer,
		Total:     r.Total,
		CreatedAt: r.CreatedAt,
		Items:     items,
	}
	if len(tx.Items) == 0 && r.LegacyProduct.Valid {
		unitPrice := r.LegacyPrice.Int64 // zero when the legacy row has no price
		qty := r.LegacyQty.Int64
		tx.Items = []TransactionItem{{
			Name:      r.LegacyProduct.String,
			UnitPrice: unitPrice,
			Quantity:  qty,
			Subtotal:  unitPrice * qty,
		}}
	}
	return tx
}

// List returns all transactions with their items in id order.
func (l *PGLedger) List(ctx context.Context) ([]Transaction, error) {
	var rows []transactionRow
	err := l.db.SelectContext(ctx, &rows,
		`SELECT id, buyer, total, created_at, legacy_product, legacy_qty, legacy_price
		 FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ledger list: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var items []itemRow
	err = l.db.SelectContext(ctx, &items,
		`SELECT transaction_id, position, name, unit_price, quantity, subtotal
		 FROM transaction_items ORDER BY transaction_id, position`)
	if err != nil {
		return nil, fmt.Errorf("ledger list items: %w", err)
	}

	byTx := make(map[int64][]TransactionItem, len(rows))
	for _, it := range items {
		byTx[it.TransactionID] = append(byTx[it.TransactionID], TransactionItem{
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}

	out := make([]Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.normalize(byTx[r.ID]))
	}
	return out, nil
}

// Get returns one transaction with its items.
func (l *PGLedger) Get(ctx context.Context, id int64) (Transaction, error) {
	var row transactionRow
	err := l.db.GetContext(ctx, &row,
		`SELECT id, buyer, total, created_at, legacy_product, legacy_qty, legacy_price
		 FROM transactions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("ledger get: %w", err)
	}

	var items []itemRow
	err = l.db.SelectContext(ctx, &items,
		`SELECT transaction_id, position, name, unit_price, quantity, subtotal
		 FROM transaction_items WHERE transaction_id = $1 ORDER BY position`, id)
	if err != nil {
		return Transaction{}, fmt.Errorf("ledger get items: %w", err)
	}

	converted := make([]TransactionItem, 0, len(items))
	for _, it := range items {
		converted = append(converted, TransactionItem{
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal,
		})
	}
	return row.normalize(converted), nil
}

// Append inserts the draft and its items in a single database transaction.
// The write is synchronous; when Append returns nil the sale is durable.
func (l *PGLedger) Append(ctx context.Context, draft TransactionDraft) (Transaction, error) {
	if len(draft.Items) == 0 {
		return Transaction{}, fmt.Errorf("ledger append: empty draft")
	}

	start := time.Now()
	dbtx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return Transaction{}, fmt.Errorf("ledger append begin: %w", err)
	}
	defer func() { _ = dbtx.Rollback() }()

	created := draft.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	var id int64
	err = dbtx.GetContext(ctx, &id,
		`INSERT INTO transactions (buyer, total, created_at) VALUES ($1, $2, $3) RETURNING id`,
		draft.Buyer, draft.Total, created)
	if err != nil {
		return Transaction{}, fmt.Errorf("ledger append: %w", err)
	}

	for pos, it := range draft.Items {
		_, err = dbtx.ExecContext(ctx,
			`INSERT INTO transaction_items (transaction_id, position, name, unit_price, quantity, subtotal)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, pos, it.Name, it.UnitPrice, it.Quantity, it.Subtotal)
		if err != nil {
			return Transaction{}, fmt.Errorf("ledger append item %d: %w", pos, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return Transaction{}, fmt.Errorf("ledger append commit: %w", err)
	}

	logger.SVCLedger.Info("transaction committed",
		slog.String("event", "ledger.append"),
		slog.Int64("transaction_id", id),
		slog.Int("items", len(draft.Items)),
		slog.Int64("total", draft.Total),
		slog.Duration("duration", logger.Took(start)),
	)

	return Transaction{
		ID:        id,
		Buyer:     draft.Buyer,
		Total:     draft.Total,
		CreatedAt: created,
		Items:     draft.Items,
	}, nil
}

// Remove deletes a transaction; its items cascade.
func (l *PGLedger) Remove(ctx context.Context, id int64) error {
	res, err := l.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ledger remove: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ledger remove: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	logger.SVCLedger.Info("transaction removed",
		slog.String("event", "ledger.remove"),
		slog.Int64("transaction_id", id),
	)
	return nil
}

// SequenceOf returns the 1-based position of the transaction in id order.
// A single query keeps the existence check and the count in one snapshot;
// a zero count means the row itself is gone.
func (l *PGLedger) SequenceOf(ctx context.Context, id int64) (int, error) {
	var seq int
	err := l.db.GetContext(ctx, &seq,
		`SELECT COUNT(*) FROM transactions
		 WHERE id <= $1 AND EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id)
	if err != nil {
		return 0, fmt.Errorf("ledger sequence: %w", err)
	}
	if seq == 0 {
		return 0, ErrNotFound
	}
	return seq, nil
}
