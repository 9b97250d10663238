package bot

import (
	"bytes"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/danindra/warungbot/core/logger"
	tghelpers "github.com/danindra/warungbot/core/telegram/helpers"
	"github.com/danindra/warungbot/core/telegram/keyboard"
	"github.com/danindra/warungbot/internal/flow"
	"github.com/danindra/warungbot/internal/receipt"
)

// send renders a Reply into Telegram messages.
func (b *Bot) send(c tele.Context, reply flow.Reply) error {
	if reply.Empty() {
		return nil
	}
	if reply.Receipt != nil {
		return b.sendReceipt(c, reply.Text, reply.Receipt.TransactionID)
	}
	// A button press updates its own message so pickers do not pile up;
	// free text gets a fresh message.
	if c.Callback() != nil {
		return tghelpers.EditOrSendMD(c, reply.Text, b.markupFor(reply))
	}
	return tghelpers.SendMD(c, reply.Text, b.markupFor(reply))
}

func (b *Bot) markupFor(reply flow.Reply) *tele.ReplyMarkup {
	if reply.ShowMenu {
		return mainMenuMarkup()
	}
	if len(reply.Keyboard) == 0 {
		return nil
	}
	rows := make([][]keyboard.InlineBtn, len(reply.Keyboard))
	for i, row := range reply.Keyboard {
		btns := make([]keyboard.InlineBtn, len(row))
		for j, btn := range row {
			btns[j] = keyboard.InlineBtn{
				Text:   btn.Label,
				Unique: string(btn.Action.Kind),
				Data:   btn.Action.Payload(),
			}
		}
		rows[i] = btns
	}
	return keyboard.InlineButtonsRows(rows...)
}

func mainMenuMarkup() *tele.ReplyMarkup {
	mk := func(label string, kind flow.ActionKind) keyboard.InlineBtn {
		return keyboard.InlineBtn{Text: label, Unique: string(kind)}
	}
	return keyboard.InlineButtonsNPerRow([]keyboard.InlineBtn{
		mk("➕ Tambah Produk", flow.ActAddProduct),
		mk("🗑️ Hapus Produk", flow.ActDeleteProductMenu),
		mk("🛒 Tambah Transaksi", flow.ActAddTransaction),
		mk("🗑️ Hapus Transaksi", flow.ActDeleteTransactionMenu),
		mk("📦 Lihat Produk", flow.ActViewProducts),
		mk("📊 Lihat Transaksi", flow.ActViewTransactions),
		mk("🧾 Cetak Struk", flow.ActReceiptMenu),
		mk("❓ Bantuan", flow.ActHelp),
	}, 2)
}

// sendReceipt sends a placeholder, renders the PDF from the stored snapshot
// and replaces the placeholder with the document. The ledger is never touched
// on failure; the receipt can simply be requested again.
func (b *Bot) sendReceipt(c tele.Context, placeholderText string, txID int64) error {
	ctx := tghelpers.BuildContext(c)

	placeholder, err := c.Bot().Send(c.Recipient(), placeholderText,
		&tele.SendOptions{ParseMode: tele.ModeMarkdown})
	if err != nil {
		return fmt.Errorf("receipt placeholder: %w", err)
	}
	cleanup := func() {
		if derr := c.Bot().Delete(placeholder); derr != nil {
			logger.Warn(ctx, "receipt", "receipt.placeholder_delete_failed",
				slog.String("err", derr.Error()))
		}
	}

	tx, err := b.ledger.Get(ctx, txID)
	if err != nil {
		cleanup()
		return fmt.Errorf("receipt load %d: %w", txID, err)
	}
	seq, err := b.ledger.SequenceOf(ctx, txID)
	if err != nil {
		cleanup()
		return fmt.Errorf("receipt sequence %d: %w", txID, err)
	}
	pdf, err := receipt.Render(tx, seq, b.shop)
	if err != nil {
		cleanup()
		return err
	}

	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(pdf)),
		FileName: receipt.FileName(seq),
		MIME:     "application/pdf",
		Caption: fmt.Sprintf("🧾 Struk %s\n👤 %s\n💰 Total: Rp%s",
			receipt.Number(seq), tx.Buyer, flow.FormatRupiah(tx.Total)),
	}
	if _, err := c.Bot().Send(c.Recipient(), doc); err != nil {
		cleanup()
		return fmt.Errorf("receipt send %d: %w", txID, err)
	}
	cleanup()

	logger.Info(ctx, "receipt", "receipt.sent",
		slog.Int64("transaction_id", txID),
		slog.String("number", receipt.Number(seq)),
		slog.Int("bytes", len(pdf)),
	)
	return nil
}
