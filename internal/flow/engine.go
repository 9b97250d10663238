// Package flow implements the conversation state machine behind the bot:
// add-product, add-transaction with its selection/quantity/summary cycle, and
// the product search detour. The engine is transport-free; it consumes parsed
// actions and text and produces Reply view models for the bot layer to send.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/danindra/warungbot/core/logger"
	"github.com/danindra/warungbot/internal/session"
	"github.com/danindra/warungbot/internal/store"
)

// ErrNoSession is returned for text input when the user has no active flow.
// The dispatcher ignores such input.
var ErrNoSession = errors.New("flow: no active session")

// minSearchQuery is the shortest accepted product search query.
const minSearchQuery = 2

// Engine drives all conversations against the shared stores.
type Engine struct {
	catalog  store.Catalog
	ledger   store.Ledger
	sessions *session.Manager
	// searchThreshold is the catalog size above which pickers offer search.
	searchThreshold int
	now             func() time.Time
}

// NewEngine wires the conversation engine.
func NewEngine(catalog store.Catalog, ledger store.Ledger, sessions *session.Manager, searchThreshold int) *Engine {
	if searchThreshold <= 0 {
		searchThreshold = 10
	}
	return &Engine{
		catalog:         catalog,
		ledger:          ledger,
		sessions:        sessions,
		searchThreshold: searchThreshold,
		now:             time.Now,
	}
}

// Sessions exposes the session manager for routing decisions.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Welcome is the /start greeting.
func (e *Engine) Welcome() Reply {
	return Reply{
		Text: "🎉 *Selamat datang di Bot Toko!* 🎉\n\n" +
			"🛍️ Kelola produk dan transaksi dengan mudah\n" +
			"💼 Fitur lengkap untuk bisnis Anda\n\n" +
			"Pilih menu di bawah untuk memulai:",
		ShowMenu: true,
	}
}

// HandleAction processes a parsed button press.
func (e *Engine) HandleAction(ctx context.Context, userID int64, act Action) (Reply, error) {
	switch act.Kind {
	case ActMainMenu:
		e.sessions.Clear(userID)
		return Reply{
			Text:     "🏠 *Kembali ke Menu Utama*\n\nPilih menu yang ingin Anda gunakan:",
			ShowMenu: true,
		}, nil
	case ActHelp:
		return e.help(), nil
	case ActViewProducts:
		return e.viewProducts(ctx)
	case ActViewTransactions:
		return e.viewTransactions(ctx)
	case ActAddProduct:
		e.sessions.Start(userID, session.FlowAddProduct, session.StepProductName)
		return Reply{Text: "📦 *Tambah Produk Baru*\n\nMasukkan nama produk:"}, nil
	case ActDeleteProductMenu:
		return e.deleteProductMenu(ctx)
	case ActDeleteProduct:
		return e.deleteProduct(ctx, act.Ref)
	case ActDeleteTransactionMenu:
		return e.deleteTransactionMenu(ctx)
	case ActDeleteTransaction:
		return e.deleteTransaction(ctx, act.Ref)
	case ActAddTransaction:
		return e.startTransaction(ctx, userID)
	case ActChooseProduct:
		return e.chooseProduct(ctx, userID, act.Ref)
	case ActSearchProducts:
		return e.enterSearch(userID)
	case ActAddMore:
		return e.addMore(ctx, userID)
	case ActRemoveItemMenu:
		return e.removeItemMenu(userID)
	case ActRemoveItem:
		return e.removeItem(userID, act.Ref)
	case ActBackToSummary:
		return e.backToSummary(userID)
	case ActCheckout:
		return e.checkout(userID)
	case ActReceiptMenu:
		return e.receiptMenu(ctx)
	case ActReceipt, ActReceiptResend:
		return e.receipt(ctx, act.Ref)
	default:
		return Reply{}, fmt.Errorf("flow: unhandled action %q", act.Kind)
	}
}

// HandleText processes free text against the user's active flow.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) (Reply, error) {
	sess, ok := e.sessions.Get(userID)
	if !ok {
		return Reply{}, ErrNoSession
	}

	switch sess.Flow {
	case session.FlowAddProduct:
		return e.productText(ctx, userID, sess, text)
	case session.FlowAddTransaction:
		return e.transactionText(ctx, userID, sess, text)
	default:
		// Unreachable: the manager never stores FlowNone.
		e.sessions.Clear(userID)
		return Reply{}, ErrNoSession
	}
}

// --- add-product flow ---

func (e *Engine) productText(ctx context.Context, userID int64, sess session.Session, text string) (Reply, error) {
	switch sess.Step {
	case session.StepProductName:
		// Any name is accepted, degenerate ones included.
		e.sessions.Mutate(userID, func(s *session.Session) {
			s.ProductDraft.Name = text
			s.Step = session.StepProductPrice
		})
		return Reply{Text: "💰 *Input Harga Produk*\n\nMasukkan harga produk (angka saja):"}, nil

	case session.StepProductPrice:
		price, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil || price < 0 {
			// Stay at the price step; the draft is untouched.
			return Reply{Text: "❌ *Harga tidak valid*\n\nMasukkan angka positif untuk harga produk."}, nil
		}
		product, err := e.catalog.Add(ctx, sess.ProductDraft.Name, price)
		if err != nil {
			// Persistence failed: keep the session so the user can retry.
			return Reply{}, fmt.Errorf("add product: %w", err)
		}
		e.sessions.Clear(userID)
		return Reply{
			Text: fmt.Sprintf("✅ *Produk Berhasil Ditambahkan*\n\n📦 Produk: %s\n💰 Harga: Rp%s",
				product.Name, FormatRupiah(product.Price)),
			ShowMenu: true,
		}, nil

	default:
		return Reply{}, nil
	}
}

// --- add-transaction flow ---

func (e *Engine) startTransaction(ctx context.Context, userID int64) (Reply, error) {
	products, err := e.catalog.List(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("start transaction: %w", err)
	}
	if len(products) == 0 {
		// Refused before any session exists.
		return Reply{
			Text:     "❌ *Tidak ada produk tersedia*\n\nTambahkan produk terlebih dahulu sebelum membuat transaksi.",
			ShowMenu: true,
		}, nil
	}

	e.sessions.Start(userID, session.FlowAddTransaction, session.StepTxSelect)
	return e.productPicker(products, "🛒 *Tambah Transaksi Baru*\n\nPilih produk untuk transaksi:", false), nil
}

func (e *Engine) productPicker(products []store.Product, header string, withCheckout bool) Reply {
	keyboard := make([][]Button, 0, len(products)+2)
	for _, p := range products {
		label := fmt.Sprintf("🛒 %s - Rp%s", p.Name, FormatRupiah(p.Price))
		keyboard = append(keyboard, row(btn(label, ActChooseProduct, p.ID)))
	}
	if len(products) > e.searchThreshold {
		keyboard = append(keyboard, row(btn("🔍 Cari Produk", ActSearchProducts)))
	}
	if withCheckout {
		keyboard = append(keyboard, row(btn("✅ Selesai & Checkout", ActCheckout)))
	}
	keyboard = append(keyboard, row(btn("🔙 Kembali ke Menu", ActMainMenu)))
	return Reply{Text: header, Keyboard: keyboard}
}

func (e *Engine) chooseProduct(ctx context.Context, userID int64, productID int64) (Reply, error) {
	sess, ok := e.sessions.Get(userID)
	if !ok || sess.Flow != session.FlowAddTransaction {
		return Reply{
			Text:     "❌ Transaksi tidak valid atau sudah selesai. Silakan mulai transaksi baru.",
			ShowMenu: true,
		}, nil
	}

	product, err := e.catalog.Get(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		// The product vanished under the button. Re-prompt selection; the
		// draft accumulated so far stays intact.
		products, listErr := e.catalog.List(ctx)
		if listErr != nil {
			return Reply{}, fmt.Errorf("choose product: %w", listErr)
		}
		if len(products) == 0 {
			e.sessions.Clear(userID)
			return Reply{
				Text:     "❌ *Produk tidak ditemukan*\n\nKatalog kosong, transaksi dibatalkan.",
				ShowMenu: true,
			}, nil
		}
		picker := e.productPicker(products,
			"❌ *Produk tidak ditemukan*\n\nProduk sudah dihapus. Pilih produk lain:",
			len(sess.TxDraft.Items) > 0)
		return picker, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("choose product: %w", err)
	}

	e.sessions.Mutate(userID, func(s *session.Session) {
		s.Selection = &session.ProductRef{ID: product.ID, Name: product.Name, Price: product.Price}
		s.Step = session.StepTxQuantity
	})
	return Reply{
		Text: fmt.Sprintf("🔢 *Input Jumlah*\n\nProduk: %s\nHarga: Rp%s/pcs\n\nMasukkan jumlah (qty):",
			product.Name, FormatRupiah(product.Price)),
	}, nil
}

func (e *Engine) transactionText(ctx context.Context, userID int64, sess session.Session, text string) (Reply, error) {
	switch sess.Step {
	case session.StepTxSearch:
		return e.searchText(ctx, userID, sess, text)

	case session.StepTxQuantity:
		qty, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil || qty <= 0 {
			return Reply{Text: "❌ *Jumlah tidak valid*\n\nMasukkan angka positif untuk jumlah produk."}, nil
		}
		if sess.Selection == nil {
			// Selection lost (should not happen); back to the picker.
			return e.addMore(ctx, userID)
		}
		sel := *sess.Selection
		var items []store.TransactionItem
		e.sessions.Mutate(userID, func(s *session.Session) {
			s.TxDraft.Items = append(s.TxDraft.Items, store.TransactionItem{
				Name:      sel.Name,
				UnitPrice: sel.Price,
				Quantity:  qty,
				Subtotal:  sel.Price * qty,
			})
			s.Selection = nil
			s.Step = session.StepTxSummary
			items = s.TxDraft.Items
		})
		return summaryReply(items), nil

	case session.StepTxBuyer:
		draft := store.TransactionDraft{
			Buyer:     text,
			Items:     sess.TxDraft.Items,
			Total:     store.SumItems(sess.TxDraft.Items),
			CreatedAt: e.now(),
		}
		committed, err := e.ledger.Append(ctx, draft)
		if err != nil {
			// Not committed; the session stays at the buyer step.
			return Reply{}, fmt.Errorf("commit transaction: %w", err)
		}
		e.sessions.Clear(userID)
		logger.SVCLedger.Debug("draft flushed",
			slog.String("event", "flow.commit"),
			slog.Int64("user_id", userID),
			slog.Int64("transaction_id", committed.ID),
		)
		return Reply{
			Text: fmt.Sprintf("🎉 *Transaksi Berhasil!*\n\n📋 *Detail Transaksi:*\n%s\n\n💰 *Total: Rp%s*\n👤 *Pembeli: %s*\n📅 *Tanggal: %s*",
				formatItemLines(committed.Items, true),
				FormatRupiah(committed.Total),
				committed.Buyer,
				committed.CreatedAt.Format("02/01/2006")),
			ShowMenu: true,
		}, nil

	default:
		// Selection and summary steps are button-driven; stray text is ignored.
		return Reply{}, nil
	}
}

func summaryReply(items []store.TransactionItem) Reply {
	return Reply{
		Text: fmt.Sprintf("📋 *Ringkasan Transaksi:*\n%s\n\n💰 *Subtotal: Rp%s*\n\nPilih aksi berikut:",
			formatItemLines(items, false), FormatRupiah(store.SumItems(items))),
		Keyboard: [][]Button{
			row(btn("➕ Tambah Produk", ActAddMore)),
			row(btn("➖ Kurangi Produk", ActRemoveItemMenu)),
			row(btn("✅ Checkout Sekarang", ActCheckout)),
		},
	}
}

func (e *Engine) addMore(ctx context.Context, userID int64) (Reply, error) {
	sess, ok := e.sessions.Get(userID)
	if !ok || sess.Flow != session.FlowAddTransaction {
		return Reply{
			Text:     "❌ Transaksi tidak valid atau sudah selesai. Silakan mulai transaksi baru.",
			ShowMenu: true,
		}, nil
	}
	products, err := e.catalog.List(ctx)
	if err != nil {
		return Reply{}, fmt.Errorf("add more: %w", err)
	}
	e.sessions.Mutate(userID, func(s *session.Session) {
		s.Step = session.StepTxSelect
		s.Selection = nil
	})
	return e.productPicker(products,
		"🛒 *Tambah Produk Lagi*\n\nPilih produk tambahan atau checkout:",
		len(sess.TxDraft.Items) > 0), nil
}

func (e *Engine) removeItemMenu(userID int64) (Reply, error) {
	sess, ok := e.sessions.Get(userID)
	if !ok || sess.Flow != session.FlowAddTransaction || len(sess.TxDraft.Items) == 0 {
		return Reply{Text: "❌ Tidak ada produk yang bisa dikurangi."}, nil
	}
	keyboard := make([][]Button, 0, len(sess.TxDraft.Items)+1)
	for i, it := range sess.TxDraft.Items {
		label := fmt.Sprintf("➖ %s x%d", it.Name, it.Quantity)
		keyboard = append(keyboard, row(btn(label, ActRemoveItem, int64(i))))
	}
	keyboard = append(keyboard, row(btn("🔙 Kembali", ActBackToSummary)))
	return Reply{
		Text:     "Pilih produk yang ingin dihapus dari transaksi:",
		Keyboard: keyboard,
	}, nil
}

func (e *Engine) removeItem(userID int64, index int64) (Reply, error) {
	sess, ok := e.sessions.Get(userID)
	if !ok || sess.Flow != session.FlowAddTransaction {
		return Reply{Text: "❌ Produk tidak ditemukan dalam transaksi."}, nil
	}
	if index < 0 || index >= int64(len(sess.TxDraft.Items)) {
		// Stale picker button; back to the nearest stable view.
		if len(sess.TxDraft.Items) == 0 {
			return Reply{Text: "❌ Produk tidak ditemukan dalam transaksi."}, nil
		}
		reply := summaryReply(sess.TxDraft.Items)
		reply.Text = "❌ Produk tidak ditemukan dalam transaksi.\n\n" + reply.Text
		return reply, nil
	}

	var remaining []store.TransactionItem
	e.sessions.Mutate(userID, func(s *session.Session) {
		items := s.TxDraft.Items
		s.TxDraft.Items = append(items[:index], items[index+1:]...)
		remaining = s.TxDraft.Items
	})

	if len(remaining) == 0 {
		// Removing the last item cancels the whole flow; an empty
		// transaction can never reach the ledger.
		e.sessions.Clear(userID)
		return Reply{
			Text:     "🏠 *Transaksi dibatalkan*\n\nSemua produk dihapus dari transaksi.",
			ShowMenu: true,
		}, nil
	}
	return summaryReply(remaining), nil
}

func (e *Engine) backToSummary(userID int64) (Reply, error) {
	sess, ok := e.sessions.Get(userID)
	if !ok || sess.Flow != session.FlowAddTransaction || len(sess.TxDraft.Items) == 0 {
		return Reply{
			Text:     "❌ Transaksi tidak valid atau sudah selesai. Silakan mulai transaksi baru.",
			ShowMenu: true,
		}, nil
	}
	e.sessions.Mutate(userID, func(s *session.Session) {
		s.Step = session.StepTxSummary
	})
	return summaryReply(sess.TxDraft.Items), nil
}

func (e *Engine) checkout(userID int64) (Reply, error) {
	sess, ok := e.sessions.Get(userID)
	if !ok || sess.Flow != session.FlowAddTransaction || len(sess.TxDraft.Items) == 0 {
		return Reply{
			Text:     "❌ Transaksi tidak valid atau sudah selesai. Silakan mulai transaksi baru.",
			ShowMenu: true,
		}, nil
	}
	e.sessions.Mutate(userID, func(s *session.Session) {
		s.Step = session.StepTxBuyer
	})
	return Reply{Text: "👤 *Data Pembeli*\n\nMasukkan nama pembeli:"}, nil
}
