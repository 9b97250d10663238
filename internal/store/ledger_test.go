package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyRow() transactionRow {
	return transactionRow{
		ID:            1,
		Buyer:         "Sari",
		Total:         15000,
		CreatedAt:     time.Date(2024, 11, 2, 9, 0, 0, 0, time.UTC),
		LegacyProduct: sql.NullString{String: "Keripik", Valid: true},
		LegacyQty:     sql.NullInt64{Int64: 3, Valid: true},
		LegacyPrice:   sql.NullInt64{Int64: 5000, Valid: true},
	}
}

func TestNormalizeLegacyRow(t *testing.T) {
	tx := legacyRow().normalize(nil)

	require.Len(t, tx.Items, 1)
	assert.Equal(t, TransactionItem{
		Name:      "Keripik",
		UnitPrice: 5000,
		Quantity:  3,
		Subtotal:  15000,
	}, tx.Items[0])
	assert.Equal(t, "Sari", tx.Buyer)
	assert.Equal(t, int64(15000), tx.Total)
}

func TestNormalizeLegacyRowWithoutPrice(t *testing.T) {
	row := legacyRow()
	row.LegacyPrice = sql.NullInt64{}

	tx := row.normalize(nil)
	require.Len(t, tx.Items, 1)
	assert.Equal(t, "Keripik", tx.Items[0].Name)
	assert.Equal(t, int64(3), tx.Items[0].Quantity)
	assert.Zero(t, tx.Items[0].UnitPrice)
	assert.Zero(t, tx.Items[0].Subtotal)
}

func TestNormalizeItemsTakePrecedenceOverLegacy(t *testing.T) {
	items := []TransactionItem{
		{Name: "Abon", UnitPrice: 20000, Quantity: 2, Subtotal: 40000},
	}
	tx := legacyRow().normalize(items)

	require.Len(t, tx.Items, 1)
	assert.Equal(t, "Abon", tx.Items[0].Name, "stored items win over legacy columns")
}

func TestNormalizePlainRow(t *testing.T) {
	row := transactionRow{ID: 2, Buyer: "Budi", Total: 0, CreatedAt: time.Now()}
	tx := row.normalize(nil)
	assert.Empty(t, tx.Items)
}
