// Package receipt renders committed transactions into small PDF receipts.
// Rendering is pure: the same transaction snapshot and shop identity always
// produce the same bytes, so receipts can be regenerated at any time.
package receipt

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/danindra/warungbot/core/config"
	"github.com/danindra/warungbot/internal/flow"
	"github.com/danindra/warungbot/internal/store"
)

// page geometry, millimetres (A6 portrait)
const (
	pageW   = 105.0
	pageH   = 148.0
	marginX = 8.0
	lineH   = 4.5
)

// Number formats the sequential receipt number for a transaction.
func Number(seq int) string {
	return fmt.Sprintf("TRX-%04d", seq)
}

// FileName is the suggested attachment name for a rendered receipt.
func FileName(seq int) string {
	return fmt.Sprintf("struk-%s.pdf", Number(seq))
}

// Render produces the receipt PDF for a committed transaction. seq is the
// 1-based position of the transaction in the ledger, used for the receipt
// number. The transaction's stored snapshot is the only source of item data.
func Render(tx store.Transaction, seq int, shop config.ShopConfig) ([]byte, error) {
	if len(tx.Items) == 0 {
		return nil, fmt.Errorf("receipt: transaction %d has no items", tx.ID)
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "mm",
		Size:    fpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	// Pin document metadata to the transaction timestamp so regenerated
	// receipts are byte-identical.
	pdf.SetCreationDate(tx.CreatedAt)
	pdf.SetModificationDate(tx.CreatedAt)
	pdf.SetTitle(Number(seq), false)
	pdf.SetMargins(marginX, 8, marginX)
	pdf.SetAutoPageBreak(true, 8)
	pdf.AddPage()

	usable := pageW - 2*marginX

	// shop identity block
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(usable, 6, shop.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	if shop.Tagline != "" {
		pdf.CellFormat(usable, lineH, shop.Tagline, "", 1, "C", false, 0, "")
	}
	for _, line := range shop.AddressLines {
		pdf.CellFormat(usable, lineH, line, "", 1, "C", false, 0, "")
	}
	if shop.Phone != "" {
		pdf.CellFormat(usable, lineH, "Telp: "+shop.Phone, "", 1, "C", false, 0, "")
	}
	divider(pdf, usable)

	// transaction header
	pdf.SetFont("Courier", "", 8)
	headerRow(pdf, usable, "No. Struk", Number(seq))
	headerRow(pdf, usable, "Tanggal", tx.CreatedAt.Format("02/01/2006 15:04"))
	headerRow(pdf, usable, "Pembeli", tx.Buyer)
	divider(pdf, usable)

	// item table
	for _, it := range tx.Items {
		pdf.SetFont("Courier", "B", 8)
		pdf.CellFormat(usable, lineH, it.Name, "", 1, "L", false, 0, "")
		pdf.SetFont("Courier", "", 8)
		left := fmt.Sprintf("%d x Rp%s", it.Quantity, flow.FormatRupiah(it.UnitPrice))
		right := "Rp" + flow.FormatRupiah(it.Subtotal)
		pdf.CellFormat(usable/2, lineH, left, "", 0, "L", false, 0, "")
		pdf.CellFormat(usable/2, lineH, right, "", 1, "R", false, 0, "")
	}
	divider(pdf, usable)

	// total
	pdf.SetFont("Courier", "B", 10)
	pdf.CellFormat(usable/2, 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(usable/2, 6, "Rp"+flow.FormatRupiah(tx.Total), "", 1, "R", false, 0, "")
	divider(pdf, usable)

	// footer
	pdf.SetFont("Helvetica", "I", 8)
	for _, note := range shop.FooterNotes {
		pdf.CellFormat(usable, lineH, note, "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt: render %s: %w", Number(seq), err)
	}
	return buf.Bytes(), nil
}

func headerRow(pdf *fpdf.Fpdf, usable float64, label, value string) {
	pdf.CellFormat(usable*0.35, lineH, label, "", 0, "L", false, 0, "")
	pdf.CellFormat(usable*0.65, lineH, ": "+value, "", 1, "L", false, 0, "")
}

func divider(pdf *fpdf.Fpdf, usable float64) {
	pdf.SetFont("Courier", "", 8)
	pdf.CellFormat(usable, 3.5, "--------------------------------", "", 1, "C", false, 0, "")
}
