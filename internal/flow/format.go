package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danindra/warungbot/internal/store"
)

// FormatRupiah renders an amount with Indonesian thousand separators,
// e.g. 15000 -> "15.000".
func FormatRupiah(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func formatItemLines(items []store.TransactionItem, withUnitPrice bool) string {
	lines := make([]string, 0, len(items))
	for i, it := range items {
		if withUnitPrice {
			lines = append(lines, fmt.Sprintf("%d. *%s* x%d (Rp%s/pcs) = Rp%s",
				i+1, it.Name, it.Quantity, FormatRupiah(it.UnitPrice), FormatRupiah(it.Subtotal)))
		} else {
			lines = append(lines, fmt.Sprintf("%d. *%s* x%d = Rp%s",
				i+1, it.Name, it.Quantity, FormatRupiah(it.Subtotal)))
		}
	}
	return strings.Join(lines, "\n")
}

func formatItemSummary(items []store.TransactionItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}
	return strings.Join(parts, ", ")
}
