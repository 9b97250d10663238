package flow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danindra/warungbot/internal/session"
	"github.com/danindra/warungbot/internal/store"
)

const testUser int64 = 7

func newTestEngine(t *testing.T) (*Engine, *store.MemCatalog, *store.MemLedger) {
	t.Helper()
	catalog := store.NewMemCatalog()
	ledger := store.NewMemLedger()
	e := NewEngine(catalog, ledger, session.NewManager(), 10)
	e.now = func() time.Time { return time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC) }
	return e, catalog, ledger
}

func mustAction(t *testing.T, e *Engine, act Action) Reply {
	t.Helper()
	reply, err := e.HandleAction(context.Background(), testUser, act)
	require.NoError(t, err)
	return reply
}

func mustText(t *testing.T, e *Engine, text string) Reply {
	t.Helper()
	reply, err := e.HandleText(context.Background(), testUser, text)
	require.NoError(t, err)
	return reply
}

func buttonFor(reply Reply, kind ActionKind, ref int64) (Button, bool) {
	for _, row := range reply.Keyboard {
		for _, b := range row {
			if b.Action.Kind == kind && b.Action.Ref == ref {
				return b, true
			}
		}
	}
	return Button{}, false
}

func hasButtonKind(reply Reply, kind ActionKind) bool {
	for _, row := range reply.Keyboard {
		for _, b := range row {
			if b.Action.Kind == kind {
				return true
			}
		}
	}
	return false
}

func TestAddProductFlow(t *testing.T) {
	e, catalog, _ := newTestEngine(t)
	ctx := context.Background()

	reply := mustAction(t, e, Action{Kind: ActAddProduct})
	assert.Contains(t, reply.Text, "nama produk")

	reply = mustText(t, e, "Keripik Singkong")
	assert.Contains(t, reply.Text, "harga")

	reply = mustText(t, e, "5000")
	assert.Contains(t, reply.Text, "Berhasil")
	assert.Contains(t, reply.Text, "Keripik Singkong")
	assert.Contains(t, reply.Text, "Rp5.000")
	assert.True(t, reply.ShowMenu)
	assert.False(t, e.sessions.Has(testUser))

	products, err := catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Keripik Singkong", products[0].Name)
	assert.Equal(t, int64(5000), products[0].Price)
}

func TestAddProductPriceValidation(t *testing.T) {
	e, catalog, _ := newTestEngine(t)

	mustAction(t, e, Action{Kind: ActAddProduct})
	mustText(t, e, "Keripik")

	for _, bad := range []string{"-5", "abc", "12.5", ""} {
		reply := mustText(t, e, bad)
		assert.Contains(t, reply.Text, "tidak valid", "input %q", bad)
	}

	// still at the price step, draft intact
	sess, ok := e.sessions.Get(testUser)
	require.True(t, ok)
	assert.Equal(t, session.StepProductPrice, sess.Step)
	assert.Equal(t, "Keripik", sess.ProductDraft.Name)

	products, err := catalog.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestAddProductAcceptsDegenerateName(t *testing.T) {
	e, catalog, _ := newTestEngine(t)

	mustAction(t, e, Action{Kind: ActAddProduct})
	mustText(t, e, "   ")
	reply := mustText(t, e, "0")
	assert.Contains(t, reply.Text, "Berhasil")

	products, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "   ", products[0].Name)
	assert.Zero(t, products[0].Price)
}

func TestAddTransactionEmptyCatalogRefused(t *testing.T) {
	e, _, _ := newTestEngine(t)

	reply := mustAction(t, e, Action{Kind: ActAddTransaction})
	assert.Contains(t, reply.Text, "Tidak ada produk")
	assert.False(t, e.sessions.Has(testUser))
}

func TestMultiItemCheckout(t *testing.T) {
	e, catalog, ledger := newTestEngine(t)
	ctx := context.Background()

	keripik, err := catalog.Add(ctx, "Keripik", 15000)
	require.NoError(t, err)
	abon, err := catalog.Add(ctx, "Abon", 20000)
	require.NoError(t, err)

	reply := mustAction(t, e, Action{Kind: ActAddTransaction})
	_, ok := buttonFor(reply, ActChooseProduct, keripik.ID)
	require.True(t, ok)

	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: keripik.ID})
	reply = mustText(t, e, "3")
	assert.Contains(t, reply.Text, "Ringkasan")
	assert.Contains(t, reply.Text, "Rp45.000")

	mustAction(t, e, Action{Kind: ActAddMore})
	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: abon.ID})
	reply = mustText(t, e, "2")
	assert.Contains(t, reply.Text, "Rp85.000")

	reply = mustAction(t, e, Action{Kind: ActCheckout})
	assert.Contains(t, reply.Text, "nama pembeli")

	reply = mustText(t, e, "Budi")
	assert.Contains(t, reply.Text, "Transaksi Berhasil")
	assert.Contains(t, reply.Text, "Budi")
	assert.Contains(t, reply.Text, "Rp85.000")
	assert.False(t, e.sessions.Has(testUser))

	txs, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	tx := txs[0]
	assert.Equal(t, "Budi", tx.Buyer)
	assert.Equal(t, int64(85000), tx.Total)
	require.Len(t, tx.Items, 2)
	assert.Equal(t, store.TransactionItem{Name: "Keripik", UnitPrice: 15000, Quantity: 3, Subtotal: 45000}, tx.Items[0])
	assert.Equal(t, store.TransactionItem{Name: "Abon", UnitPrice: 20000, Quantity: 2, Subtotal: 40000}, tx.Items[1])
}

func TestQuantityValidation(t *testing.T) {
	e, catalog, _ := newTestEngine(t)
	ctx := context.Background()

	p, err := catalog.Add(ctx, "Keripik", 5000)
	require.NoError(t, err)

	mustAction(t, e, Action{Kind: ActAddTransaction})
	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: p.ID})

	for _, bad := range []string{"0", "-1", "abc", "1.5"} {
		reply := mustText(t, e, bad)
		assert.Contains(t, reply.Text, "Jumlah tidak valid", "input %q", bad)
	}

	sess, ok := e.sessions.Get(testUser)
	require.True(t, ok)
	assert.Equal(t, session.StepTxQuantity, sess.Step)
	require.NotNil(t, sess.Selection)
	assert.Equal(t, p.ID, sess.Selection.ID)
}

func TestItemKeepsSnapshotAfterProductDeleted(t *testing.T) {
	e, catalog, ledger := newTestEngine(t)
	ctx := context.Background()

	p, err := catalog.Add(ctx, "Keripik", 5000)
	require.NoError(t, err)

	mustAction(t, e, Action{Kind: ActAddTransaction})
	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: p.ID})
	mustText(t, e, "3")

	// the product disappears after the item entered the draft
	_, err = catalog.Remove(ctx, p.ID)
	require.NoError(t, err)

	mustAction(t, e, Action{Kind: ActCheckout})
	mustText(t, e, "Sari")

	txs, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Len(t, txs[0].Items, 1)
	assert.Equal(t, "Keripik", txs[0].Items[0].Name)
	assert.Equal(t, int64(5000), txs[0].Items[0].UnitPrice)
	assert.Equal(t, int64(15000), txs[0].Items[0].Subtotal)
}

func TestChooseVanishedProductRepromptsKeepingDraft(t *testing.T) {
	e, catalog, _ := newTestEngine(t)
	ctx := context.Background()

	keep, err := catalog.Add(ctx, "Keripik", 5000)
	require.NoError(t, err)
	gone, err := catalog.Add(ctx, "Abon", 35000)
	require.NoError(t, err)

	mustAction(t, e, Action{Kind: ActAddTransaction})
	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: keep.ID})
	mustText(t, e, "2")
	mustAction(t, e, Action{Kind: ActAddMore})

	_, err = catalog.Remove(ctx, gone.ID)
	require.NoError(t, err)

	reply := mustAction(t, e, Action{Kind: ActChooseProduct, Ref: gone.ID})
	assert.Contains(t, reply.Text, "tidak ditemukan")
	_, ok := buttonFor(reply, ActChooseProduct, keep.ID)
	assert.True(t, ok)

	sess, ok := e.sessions.Get(testUser)
	require.True(t, ok)
	require.Len(t, sess.TxDraft.Items, 1)
	assert.Equal(t, "Keripik", sess.TxDraft.Items[0].Name)
}

func TestRemoveItemRecomputesTotal(t *testing.T) {
	e, catalog, _ := newTestEngine(t)
	ctx := context.Background()

	a, err := catalog.Add(ctx, "Keripik", 5000)
	require.NoError(t, err)
	b, err := catalog.Add(ctx, "Abon", 35000)
	require.NoError(t, err)

	mustAction(t, e, Action{Kind: ActAddTransaction})
	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: a.ID})
	mustText(t, e, "10")
	mustAction(t, e, Action{Kind: ActAddMore})
	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: b.ID})
	mustText(t, e, "1")

	reply := mustAction(t, e, Action{Kind: ActRemoveItemMenu})
	_, ok := buttonFor(reply, ActRemoveItem, 0)
	require.True(t, ok)

	reply = mustAction(t, e, Action{Kind: ActRemoveItem, Ref: 0})
	assert.Contains(t, reply.Text, "Rp35.000")
	assert.NotContains(t, reply.Text, "Keripik")

	sess, ok := e.sessions.Get(testUser)
	require.True(t, ok)
	require.Len(t, sess.TxDraft.Items, 1)
	assert.Equal(t, "Abon", sess.TxDraft.Items[0].Name)
}

func TestRemoveItemOutOfRangeKeepsDraft(t *testing.T) {
	e, catalog, _ := newTestEngine(t)
	ctx := context.Background()

	p, err := catalog.Add(ctx, "Keripik", 5000)
	require.NoError(t, err)

	mustAction(t, e, Action{Kind: ActAddTransaction})
	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: p.ID})
	mustText(t, e, "2")

	reply := mustAction(t, e, Action{Kind: ActRemoveItem, Ref: 5})
	assert.Contains(t, reply.Text, "tidak ditemukan")
	assert.Contains(t, reply.Text, "Ringkasan")

	sess, ok := e.sessions.Get(testUser)
	require.True(t, ok)
	assert.Len(t, sess.TxDraft.Items, 1)
}

func TestRemovingLastItemCancelsFlow(t *testing.T) {
	e, catalog, ledger := newTestEngine(t)
	ctx := context.Background()

	p, err := catalog.Add(ctx, "Keripik", 5000)
	require.NoError(t, err)

	mustAction(t, e, Action{Kind: ActAddTransaction})
	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: p.ID})
	mustText(t, e, "2")

	reply := mustAction(t, e, Action{Kind: ActRemoveItem, Ref: 0})
	assert.Contains(t, reply.Text, "dibatalkan")
	assert.True(t, reply.ShowMenu)
	assert.False(t, e.sessions.Has(testUser))

	// nothing was committed
	txs, err := ledger.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestCheckoutWithoutSessionRejected(t *testing.T) {
	e, _, _ := newTestEngine(t)

	reply := mustAction(t, e, Action{Kind: ActCheckout})
	assert.Contains(t, reply.Text, "tidak valid")
	assert.True(t, reply.ShowMenu)
}

func TestSearchDetourPreservesDraft(t *testing.T) {
	e, catalog, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := catalog.Add(ctx, "Keripik", 5000)
	require.NoError(t, err)
	var abon store.Product
	for i := 0; i < 12; i++ {
		p, err := catalog.Add(ctx, "Abon Sapi", 35000)
		require.NoError(t, err)
		abon = p
	}

	reply := mustAction(t, e, Action{Kind: ActAddTransaction})
	assert.True(t, hasButtonKind(reply, ActSearchProducts), "large catalog offers search")

	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: first.ID})
	mustText(t, e, "1")
	mustAction(t, e, Action{Kind: ActAddMore})

	reply = mustAction(t, e, Action{Kind: ActSearchProducts})
	assert.Contains(t, reply.Text, "Cari Produk")

	reply = mustText(t, e, "a")
	assert.Contains(t, reply.Text, "terlalu pendek")

	reply = mustText(t, e, "zzz")
	assert.Contains(t, reply.Text, "Tidak ada hasil")
	assert.True(t, hasButtonKind(reply, ActAddMore))

	reply = mustText(t, e, "abon")
	_, ok := buttonFor(reply, ActChooseProduct, abon.ID)
	require.True(t, ok)

	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: abon.ID})
	reply = mustText(t, e, "2")
	assert.Contains(t, reply.Text, "Ringkasan")

	sess, ok := e.sessions.Get(testUser)
	require.True(t, ok)
	require.Len(t, sess.TxDraft.Items, 2)
	assert.Equal(t, "Keripik", sess.TxDraft.Items[0].Name)
	assert.Equal(t, "Abon Sapi", sess.TxDraft.Items[1].Name)
}

func TestSmallCatalogHidesSearchButton(t *testing.T) {
	e, catalog, _ := newTestEngine(t)
	_, err := catalog.Add(context.Background(), "Keripik", 5000)
	require.NoError(t, err)

	reply := mustAction(t, e, Action{Kind: ActAddTransaction})
	assert.False(t, hasButtonKind(reply, ActSearchProducts))
}

func TestTextWithoutSessionIgnored(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.HandleText(context.Background(), testUser, "halo")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMainMenuAbandonsFlow(t *testing.T) {
	e, catalog, _ := newTestEngine(t)
	ctx := context.Background()

	p, err := catalog.Add(ctx, "Keripik", 5000)
	require.NoError(t, err)

	mustAction(t, e, Action{Kind: ActAddTransaction})
	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: p.ID})
	mustText(t, e, "2")

	reply := mustAction(t, e, Action{Kind: ActMainMenu})
	assert.True(t, reply.ShowMenu)
	assert.False(t, e.sessions.Has(testUser))
}

func TestStrayTextAtSummaryIgnored(t *testing.T) {
	e, catalog, _ := newTestEngine(t)
	ctx := context.Background()

	p, err := catalog.Add(ctx, "Keripik", 5000)
	require.NoError(t, err)

	mustAction(t, e, Action{Kind: ActAddTransaction})
	mustAction(t, e, Action{Kind: ActChooseProduct, Ref: p.ID})
	mustText(t, e, "2")

	reply := mustText(t, e, "random chatter")
	assert.True(t, reply.Empty())

	sess, ok := e.sessions.Get(testUser)
	require.True(t, ok)
	assert.Equal(t, session.StepTxSummary, sess.Step)
	assert.Len(t, sess.TxDraft.Items, 1)
}

func TestDeleteProductAndTransactionViews(t *testing.T) {
	e, catalog, ledger := newTestEngine(t)
	ctx := context.Background()

	p, err := catalog.Add(ctx, "Keripik", 5000)
	require.NoError(t, err)

	reply := mustAction(t, e, Action{Kind: ActDeleteProductMenu})
	_, ok := buttonFor(reply, ActDeleteProduct, p.ID)
	require.True(t, ok)

	reply = mustAction(t, e, Action{Kind: ActDeleteProduct, Ref: p.ID})
	assert.Contains(t, reply.Text, "Dihapus")

	reply = mustAction(t, e, Action{Kind: ActDeleteProduct, Ref: p.ID})
	assert.Contains(t, reply.Text, "tidak ditemukan")

	tx, err := ledger.Append(ctx, store.TransactionDraft{
		Buyer: "Budi",
		Items: []store.TransactionItem{{Name: "Keripik", UnitPrice: 5000, Quantity: 1, Subtotal: 5000}},
		Total: 5000,
	})
	require.NoError(t, err)

	reply = mustAction(t, e, Action{Kind: ActDeleteTransactionMenu})
	_, ok = buttonFor(reply, ActDeleteTransaction, tx.ID)
	require.True(t, ok)

	reply = mustAction(t, e, Action{Kind: ActDeleteTransaction, Ref: tx.ID})
	assert.Contains(t, reply.Text, "Dihapus")

	txs, err := ledger.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestReceiptActionRequestsRender(t *testing.T) {
	e, _, ledger := newTestEngine(t)
	ctx := context.Background()

	tx, err := ledger.Append(ctx, store.TransactionDraft{
		Buyer: "Budi",
		Items: []store.TransactionItem{{Name: "Keripik", UnitPrice: 5000, Quantity: 2, Subtotal: 10000}},
		Total: 10000,
	})
	require.NoError(t, err)

	reply := mustAction(t, e, Action{Kind: ActReceiptMenu})
	_, ok := buttonFor(reply, ActReceipt, tx.ID)
	require.True(t, ok)

	reply = mustAction(t, e, Action{Kind: ActReceipt, Ref: tx.ID})
	require.NotNil(t, reply.Receipt)
	assert.Equal(t, tx.ID, reply.Receipt.TransactionID)

	reply = mustAction(t, e, Action{Kind: ActReceipt, Ref: tx.ID + 99})
	assert.Nil(t, reply.Receipt)
	assert.Contains(t, reply.Text, "tidak ditemukan")
}

func TestViewTransactionsGrandTotal(t *testing.T) {
	e, _, ledger := newTestEngine(t)
	ctx := context.Background()

	for _, total := range []int64{10000, 25000} {
		_, err := ledger.Append(ctx, store.TransactionDraft{
			Buyer: "Budi",
			Items: []store.TransactionItem{{Name: "Keripik", UnitPrice: total, Quantity: 1, Subtotal: total}},
			Total: total,
		})
		require.NoError(t, err)
	}

	reply := mustAction(t, e, Action{Kind: ActViewTransactions})
	assert.Contains(t, reply.Text, "Total Keseluruhan: Rp35.000")
}
