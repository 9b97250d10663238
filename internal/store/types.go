package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound marks a referential miss: the id names a row that no longer exists.
var ErrNotFound = errors.New("store: not found")

// Product is a catalog entry. Price is in whole rupiah.
type Product struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Price     int64     `db:"price"`
	CreatedAt time.Time `db:"created_at"`
}

// TransactionItem is a snapshot of a product at selection time. Later catalog
// edits never change it.
type TransactionItem struct {
	Name      string `db:"name"`
	UnitPrice int64  `db:"unit_price"`
	Quantity  int64  `db:"quantity"`
	Subtotal  int64  `db:"subtotal"`
}

// Transaction is a committed sale.
type Transaction struct {
	ID        int64     `db:"id"`
	Buyer     string    `db:"buyer"`
	Total     int64     `db:"total"`
	CreatedAt time.Time `db:"created_at"`
	Items     []TransactionItem
}

// TransactionDraft is a completed draft ready to be appended to the ledger.
// Items must be non-empty; the flow guarantees that structurally.
type TransactionDraft struct {
	Buyer     string
	Items     []TransactionItem
	Total     int64
	CreatedAt time.Time
}

// Catalog is the product store contract.
type Catalog interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
	Add(ctx context.Context, name string, price int64) (Product, error)
	Remove(ctx context.Context, id int64) (Product, error)
}

// Ledger is the committed-transaction store contract.
type Ledger interface {
	List(ctx context.Context) ([]Transaction, error)
	Get(ctx context.Context, id int64) (Transaction, error)
	Append(ctx context.Context, draft TransactionDraft) (Transaction, error)
	Remove(ctx context.Context, id int64) error
	// SequenceOf returns the 1-based position of a transaction in id order,
	// used as the printed receipt number.
	SequenceOf(ctx context.Context, id int64) (int, error)
}

// SumItems recomputes the total of a set of items.
func SumItems(items []TransactionItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Subtotal
	}
	return total
}
