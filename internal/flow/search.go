package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/danindra/warungbot/internal/session"
)

func (e *Engine) enterSearch(userID int64) (Reply, error) {
	sess, ok := e.sessions.Get(userID)
	if !ok || sess.Flow != session.FlowAddTransaction {
		return Reply{
			Text:     "❌ Transaksi tidak valid atau sudah selesai. Silakan mulai transaksi baru.",
			ShowMenu: true,
		}, nil
	}
	e.sessions.Mutate(userID, func(s *session.Session) {
		s.Step = session.StepTxSearch
	})
	return Reply{Text: "🔍 *Cari Produk*\n\nKetik nama produk yang dicari (minimal 2 huruf):"}, nil
}

func (e *Engine) searchText(ctx context.Context, userID int64, sess session.Session, text string) (Reply, error) {
	query := strings.TrimSpace(text)
	if len([]rune(query)) < minSearchQuery {
		return Reply{Text: "❌ *Kata kunci terlalu pendek*\n\nKetik minimal 2 huruf untuk mencari produk."}, nil
	}

	matches, err := e.catalog.Search(ctx, query)
	if err != nil {
		return Reply{}, fmt.Errorf("search products: %w", err)
	}
	if len(matches) == 0 {
		// The draft is untouched; the user can retry or go back to the
		// full picker.
		return Reply{
			Text: fmt.Sprintf("🔍 *Tidak ada hasil untuk \"%s\"*\n\nKetik kata kunci lain, atau kembali ke daftar produk:", query),
			Keyboard: [][]Button{
				row(btn("📋 Semua Produk", ActAddMore)),
			},
		}, nil
	}

	e.sessions.Mutate(userID, func(s *session.Session) {
		s.Step = session.StepTxSelect
	})
	header := fmt.Sprintf("🔍 *Hasil pencarian \"%s\"*\n\nPilih produk:", query)
	picker := e.productPicker(matches, header, len(sess.TxDraft.Items) > 0)
	return picker, nil
}
