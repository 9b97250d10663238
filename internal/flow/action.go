package flow

import (
	"fmt"
	"sort"
	"strconv"
)

// ActionKind is the closed set of button actions the bot understands.
// The dispatcher parses tokens into Actions; unknown tokens never reach the
// engine.
type ActionKind string

const (
	// ActMainMenu returns to the main menu, abandoning any active flow.
	ActMainMenu ActionKind = "menu"
	// ActHelp shows the usage guide.
	ActHelp ActionKind = "help"
	// ActViewProducts lists the catalog.
	ActViewProducts ActionKind = "view_products"
	// ActViewTransactions lists committed transactions.
	ActViewTransactions ActionKind = "view_trans"
	// ActAddProduct starts the add-product flow.
	ActAddProduct ActionKind = "add_product"
	// ActDeleteProductMenu shows the delete-product picker.
	ActDeleteProductMenu ActionKind = "del_product_menu"
	// ActDeleteProduct deletes the product referenced by Ref.
	ActDeleteProduct ActionKind = "del_product"
	// ActDeleteTransactionMenu shows the delete-transaction picker.
	ActDeleteTransactionMenu ActionKind = "del_trans_menu"
	// ActDeleteTransaction deletes the transaction referenced by Ref.
	ActDeleteTransaction ActionKind = "del_trans"
	// ActAddTransaction starts the add-transaction flow.
	ActAddTransaction ActionKind = "add_trans"
	// ActChooseProduct selects the product referenced by Ref for the draft.
	ActChooseProduct ActionKind = "choose_product"
	// ActSearchProducts enters the product search detour.
	ActSearchProducts ActionKind = "search_products"
	// ActAddMore returns from the summary to product selection.
	ActAddMore ActionKind = "add_more"
	// ActRemoveItemMenu shows the remove-item picker for the draft.
	ActRemoveItemMenu ActionKind = "remove_item_menu"
	// ActRemoveItem removes the draft item at index Ref.
	ActRemoveItem ActionKind = "remove_item"
	// ActBackToSummary re-renders the draft summary.
	ActBackToSummary ActionKind = "back_to_summary"
	// ActCheckout moves the draft to buyer capture.
	ActCheckout ActionKind = "checkout"
	// ActReceiptMenu lists transactions with print/resend buttons.
	ActReceiptMenu ActionKind = "receipt_menu"
	// ActReceipt renders and sends the receipt for transaction Ref.
	ActReceipt ActionKind = "receipt"
	// ActReceiptResend re-sends the receipt for transaction Ref.
	ActReceiptResend ActionKind = "receipt_resend"
)

var knownActions = map[ActionKind]bool{
	ActMainMenu:              true,
	ActHelp:                  true,
	ActViewProducts:          true,
	ActViewTransactions:      true,
	ActAddProduct:            true,
	ActDeleteProductMenu:     true,
	ActDeleteProduct:         true,
	ActDeleteTransactionMenu: true,
	ActDeleteTransaction:     true,
	ActAddTransaction:        true,
	ActChooseProduct:         true,
	ActSearchProducts:        true,
	ActAddMore:               true,
	ActRemoveItemMenu:        true,
	ActRemoveItem:            true,
	ActBackToSummary:         true,
	ActCheckout:              true,
	ActReceiptMenu:           true,
	ActReceipt:               true,
	ActReceiptResend:         true,
}

// Kinds returns every known ActionKind in stable order, for callback
// registration.
func Kinds() []ActionKind {
	kinds := make([]ActionKind, 0, len(knownActions))
	for k := range knownActions {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Action is a parsed button press: what to do and, where relevant, to which
// entity (a stable store id, or a draft item index for ActRemoveItem).
type Action struct {
	Kind ActionKind
	Ref  int64
}

// ParseAction rebuilds an Action from a callback key and payload.
func ParseAction(key, payload string) (Action, error) {
	kind := ActionKind(key)
	if !knownActions[kind] {
		return Action{}, fmt.Errorf("unknown action %q", key)
	}
	act := Action{Kind: kind}
	if payload != "" {
		ref, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("bad action payload %q: %w", payload, err)
		}
		act.Ref = ref
	}
	return act, nil
}

// Payload encodes the reference for transport in a callback token.
func (a Action) Payload() string {
	if a.Ref == 0 {
		return ""
	}
	return strconv.FormatInt(a.Ref, 10)
}
