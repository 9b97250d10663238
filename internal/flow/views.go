package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danindra/warungbot/internal/store"
)

func (e *Engine) help() Reply {
	return Reply{
		Text: "📖 *Panduan Penggunaan Bot*\n\n" +
			"📦 *Lihat Produk* - Menampilkan daftar produk\n" +
			"➕ *Tambah Produk* - Menambah produk baru\n" +
			"🗑️ *Hapus Produk* - Menghapus produk dari katalog\n" +
			"🛒 *Tambah Transaksi* - Mencatat transaksi penjualan\n" +
			"📊 *Lihat Transaksi* - Menampilkan riwayat transaksi\n" +
			"🧾 *Cetak Struk* - Membuat struk PDF transaksi\n\n" +
			"Ketik /start untuk kembali ke menu utama.\n" +
			"Ketik /stop untuk menonaktifkan bot sementara.",
		ShowMenu: true,
	}
}

func (e *Engine) viewProducts(ctx context.Context) (Reply, error) {
	products, err := e.catalog.List(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("view products: %w", err)
	}
	if len(products) == 0 {
		return Reply{
			Text:     "📦 *Daftar Produk*\n\nBelum ada produk. Tambahkan produk terlebih dahulu.",
			ShowMenu: true,
		}, nil
	}

	var b strings.Builder
	b.WriteString("📦 *Daftar Produk:*\n\n")
	for i, p := range products {
		fmt.Fprintf(&b, "%d. *%s* - Rp%s\n", i+1, p.Name, FormatRupiah(p.Price))
	}
	return Reply{Text: b.String(), ShowMenu: true}, nil
}

func (e *Engine) viewTransactions(ctx context.Context) (Reply, error) {
	txs, err := e.ledger.List(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("view transactions: %w", err)
	}
	if len(txs) == 0 {
		return Reply{
			Text:     "📊 *Riwayat Transaksi*\n\nBelum ada transaksi tercatat.",
			ShowMenu: true,
		}, nil
	}

	var b strings.Builder
	b.WriteString("📊 *Riwayat Transaksi:*\n\n")
	var grandTotal int64
	for i, tx := range txs {
		fmt.Fprintf(&b, "%d. %s - %s\n   Rp%s - %s\n",
			i+1, tx.Buyer, formatItemSummary(tx.Items),
			FormatRupiah(tx.Total), tx.CreatedAt.Format("02/01/2006"))
		grandTotal += tx.Total
	}
	fmt.Fprintf(&b, "\n💰 *Total Keseluruhan: Rp%s*", FormatRupiah(grandTotal))
	return Reply{Text: b.String(), ShowMenu: true}, nil
}

func (e *Engine) deleteProductMenu(ctx context.Context) (Reply, error) {
	products, err := e.catalog.List(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("delete product menu: %w", err)
	}
	if len(products) == 0 {
		return Reply{
			Text:     "🗑️ *Hapus Produk*\n\nTidak ada produk yang bisa dihapus.",
			ShowMenu: true,
		}, nil
	}

	keyboard := make([][]Button, 0, len(products)+1)
	for _, p := range products {
		label := fmt.Sprintf("🗑️ %s - Rp%s", p.Name, FormatRupiah(p.Price))
		keyboard = append(keyboard, row(btn(label, ActDeleteProduct, p.ID)))
	}
	keyboard = append(keyboard, row(btn("🔙 Kembali ke Menu", ActMainMenu)))
	return Reply{
		Text:     "🗑️ *Hapus Produk*\n\nPilih produk yang ingin dihapus:",
		Keyboard: keyboard,
	}, nil
}

func (e *Engine) deleteProduct(ctx context.Context, productID int64) (Reply, error) {
	removed, err := e.catalog.Remove(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return Reply{
			Text:     "❌ *Produk tidak ditemukan*\n\nProduk mungkin sudah dihapus.",
			ShowMenu: true,
		}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("delete product: %w", err)
	}
	return Reply{
		Text: fmt.Sprintf("✅ *Produk Dihapus*\n\n📦 %s (Rp%s) telah dihapus dari katalog.",
			removed.Name, FormatRupiah(removed.Price)),
		ShowMenu: true,
	}, nil
}

func (e *Engine) deleteTransactionMenu(ctx context.Context) (Reply, error) {
	txs, err := e.ledger.List(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("delete transaction menu: %w", err)
	}
	if len(txs) == 0 {
		return Reply{
			Text:     "🗑️ *Hapus Transaksi*\n\nTidak ada transaksi yang bisa dihapus.",
			ShowMenu: true,
		}, nil
	}

	keyboard := make([][]Button, 0, len(txs)+1)
	for _, tx := range txs {
		label := fmt.Sprintf("🗑️ %s - Rp%s (%s)",
			tx.Buyer, FormatRupiah(tx.Total), tx.CreatedAt.Format("02/01"))
		keyboard = append(keyboard, row(btn(label, ActDeleteTransaction, tx.ID)))
	}
	keyboard = append(keyboard, row(btn("🔙 Kembali ke Menu", ActMainMenu)))
	return Reply{
		Text:     "🗑️ *Hapus Transaksi*\n\nPilih transaksi yang ingin dihapus:",
		Keyboard: keyboard,
	}, nil
}

func (e *Engine) deleteTransaction(ctx context.Context, txID int64) (Reply, error) {
	err := e.ledger.Remove(ctx, txID)
	if errors.Is(err, store.ErrNotFound) {
		return Reply{
			Text:     "❌ *Transaksi tidak ditemukan*\n\nTransaksi mungkin sudah dihapus.",
			ShowMenu: true,
		}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("delete transaction: %w", err)
	}
	return Reply{
		Text:     "✅ *Transaksi Dihapus*\n\nTransaksi telah dihapus dari riwayat.",
		ShowMenu: true,
	}, nil
}

func (e *Engine) receiptMenu(ctx context.Context) (Reply, error) {
	txs, err := e.ledger.List(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("receipt menu: %w", err)
	}
	if len(txs) == 0 {
		return Reply{
			Text:     "🧾 *Cetak Struk*\n\nBelum ada transaksi untuk dicetak.",
			ShowMenu: true,
		}, nil
	}

	keyboard := make([][]Button, 0, len(txs)+1)
	for _, tx := range txs {
		label := fmt.Sprintf("🧾 %s - Rp%s (%s)",
			tx.Buyer, FormatRupiah(tx.Total), tx.CreatedAt.Format("02/01"))
		keyboard = append(keyboard, row(
			btn(label, ActReceipt, tx.ID),
			btn("🔁", ActReceiptResend, tx.ID),
		))
	}
	keyboard = append(keyboard, row(btn("🔙 Kembali ke Menu", ActMainMenu)))
	return Reply{
		Text:     "🧾 *Cetak Struk*\n\nPilih transaksi yang ingin dicetak struknya:",
		Keyboard: keyboard,
	}, nil
}

func (e *Engine) receipt(ctx context.Context, txID int64) (Reply, error) {
	tx, err := e.ledger.Get(ctx, txID)
	if errors.Is(err, store.ErrNotFound) {
		return Reply{
			Text:     "❌ *Transaksi tidak ditemukan*\n\nStruk tidak bisa dibuat.",
			ShowMenu: true,
		}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("receipt: %w", err)
	}
	return Reply{
		Text:    "🖨️ Sedang membuat struk...",
		Receipt: &ReceiptRequest{TransactionID: tx.ID},
	}, nil
}
