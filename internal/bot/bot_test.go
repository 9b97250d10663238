package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danindra/warungbot/core/config"
	"github.com/danindra/warungbot/core/telegram"
	"github.com/danindra/warungbot/internal/flow"
	"github.com/danindra/warungbot/internal/session"
	"github.com/danindra/warungbot/internal/store"
)

func newTestBot() *Bot {
	cfg := &config.Config{
		Sessions: config.SessionConfig{
			PressWindow:     15 * time.Second,
			SearchThreshold: 10,
		},
		Shop: config.ShopConfig{Name: "WARUNG"},
	}
	engine := flow.NewEngine(store.NewMemCatalog(), store.NewMemLedger(), session.NewManager(), cfg.Sessions.SearchThreshold)
	return New(cfg, engine, store.NewMemLedger())
}

func TestBotStartsActive(t *testing.T) {
	b := newTestBot()
	assert.True(t, b.Active())

	b.active.Store(false)
	assert.False(t, b.Active())
}

func TestRegisterCoversEveryActionKind(t *testing.T) {
	b := newTestBot()
	reg := telegram.NewRegistry()
	b.Register(reg)

	for _, kind := range flow.Kinds() {
		_, ok := reg.GetCallback(string(kind))
		assert.True(t, ok, "callback for %q registered", kind)
	}

	for _, cmd := range []string{"/start", "/stop", "/help", "/delete_product", "/delete_transaction"} {
		_, _, ok := reg.LookupCommand(cmd)
		assert.True(t, ok, "command %q registered", cmd)
	}

	assert.Len(t, reg.ListCallbacks(), len(flow.Kinds()))
	assert.NotNil(t, reg.TextFallback(), "text route served by the registry fallback")
	assert.NotNil(t, reg.CallbackNotFound())
}

func TestMarkupForKeyboard(t *testing.T) {
	b := newTestBot()

	reply := flow.Reply{
		Keyboard: [][]flow.Button{
			{{Label: "🛒 Keripik - Rp5.000", Action: flow.Action{Kind: flow.ActChooseProduct, Ref: 3}}},
			{{Label: "🔙 Kembali ke Menu", Action: flow.Action{Kind: flow.ActMainMenu}}},
		},
	}
	markup := b.markupFor(reply)
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 2)

	first := markup.InlineKeyboard[0][0]
	assert.Equal(t, "🛒 Keripik - Rp5.000", first.Text)
	assert.Equal(t, string(flow.ActChooseProduct), first.Unique)
	assert.Equal(t, "3", first.Data)

	second := markup.InlineKeyboard[1][0]
	assert.Equal(t, string(flow.ActMainMenu), second.Unique)
	assert.Empty(t, second.Data)
}

func TestMarkupForMainMenu(t *testing.T) {
	b := newTestBot()

	markup := b.markupFor(flow.Reply{Text: "menu", ShowMenu: true})
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 4)
	for _, row := range markup.InlineKeyboard {
		assert.Len(t, row, 2)
	}
}

func TestMarkupForPlainText(t *testing.T) {
	b := newTestBot()
	assert.Nil(t, b.markupFor(flow.Reply{Text: "hi"}))
}
