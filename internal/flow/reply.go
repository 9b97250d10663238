package flow

// Button is a transport-agnostic inline button.
type Button struct {
	Label  string
	Action Action
}

// ReceiptRequest asks the bot layer to render and send a receipt.
type ReceiptRequest struct {
	TransactionID int64
}

// Reply is what the engine wants said back to the user. The bot layer turns
// it into Telegram messages; an empty Reply means stay silent.
type Reply struct {
	Text     string
	Keyboard [][]Button
	// ShowMenu attaches the main menu keyboard to the message.
	ShowMenu bool
	// Receipt, when set, triggers a receipt render after the text is sent.
	Receipt *ReceiptRequest
}

// Empty reports whether there is nothing to send.
func (r Reply) Empty() bool {
	return r.Text == "" && len(r.Keyboard) == 0 && !r.ShowMenu && r.Receipt == nil
}

func row(buttons ...Button) []Button {
	return buttons
}

func btn(label string, kind ActionKind, ref ...int64) Button {
	b := Button{Label: label, Action: Action{Kind: kind}}
	if len(ref) > 0 {
		b.Action.Ref = ref[0]
	}
	return b
}
