package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	_ Catalog = (*MemCatalog)(nil)
	_ Ledger  = (*MemLedger)(nil)
)

// MemCatalog is an in-memory Catalog for tests and development.
type MemCatalog struct {
	mu       sync.Mutex
	nextID   int64
	products []Product
}

// NewMemCatalog constructs an empty in-memory catalog.
func NewMemCatalog() *MemCatalog {
	return &MemCatalog{nextID: 1}
}

// List returns a copy of all products in id order.
func (c *MemCatalog) List(_ context.Context) ([]Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

// Get returns one product by id.
func (c *MemCatalog) Get(_ context.Context, id int64) (Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// Search returns products whose name contains the query, case-insensitive.
func (c *MemCatalog) Search(_ context.Context, query string) ([]Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := strings.ToLower(query)
	var out []Product
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Add appends a product with a generated id.
func (c *MemCatalog) Add(_ context.Context, name string, price int64) (Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := Product{ID: c.nextID, Name: name, Price: price, CreatedAt: time.Now()}
	c.nextID++
	c.products = append(c.products, p)
	return p, nil
}

// Remove deletes a product by id.
func (c *MemCatalog) Remove(_ context.Context, id int64) (Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, p := range c.products {
		if p.ID == id {
			c.products = append(c.products[:i], c.products[i+1:]...)
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

// MemLedger is an in-memory Ledger for tests and development.
type MemLedger struct {
	mu           sync.Mutex
	nextID       int64
	transactions []Transaction
}

// NewMemLedger constructs an empty in-memory ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{nextID: 1}
}

// List returns a copy of all transactions in id order.
func (l *MemLedger) List(_ context.Context) ([]Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, len(l.transactions))
	for i, tx := range l.transactions {
		out[i] = cloneTransaction(tx)
	}
	return out, nil
}

// Get returns one transaction by id.
func (l *MemLedger) Get(_ context.Context, id int64) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, tx := range l.transactions {
		if tx.ID == id {
			return cloneTransaction(tx), nil
		}
	}
	return Transaction{}, ErrNotFound
}

// Append stores the draft with a generated id.
func (l *MemLedger) Append(_ context.Context, draft TransactionDraft) (Transaction, error) {
	if len(draft.Items) == 0 {
		return Transaction{}, errors.New("store: empty transaction draft")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	created := draft.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	tx := Transaction{
		ID:        l.nextID,
		Buyer:     draft.Buyer,
		Total:     draft.Total,
		CreatedAt: created,
		Items:     append([]TransactionItem(nil), draft.Items...),
	}
	l.nextID++
	l.transactions = append(l.transactions, tx)
	return cloneTransaction(tx), nil
}

// Remove deletes a transaction by id.
func (l *MemLedger) Remove(_ context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, tx := range l.transactions {
		if tx.ID == id {
			l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// SequenceOf returns the 1-based position of the transaction in id order.
func (l *MemLedger) SequenceOf(_ context.Context, id int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, tx := range l.transactions {
		if tx.ID == id {
			return i + 1, nil
		}
	}
	return 0, ErrNotFound
}

func cloneTransaction(tx Transaction) Transaction {
	out := tx
	out.Items = append([]TransactionItem(nil), tx.Items...)
	return out
}
