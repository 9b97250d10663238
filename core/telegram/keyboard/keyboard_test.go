package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleButtons(n int) []InlineBtn {
	out := make([]InlineBtn, n)
	for i := range out {
		out[i] = InlineBtn{Text: "btn", Unique: "menu"}
	}
	return out
}

func TestInlineButtonsOnePerRow(t *testing.T) {
	markup := InlineButtons(sampleButtons(3))
	require.Len(t, markup.InlineKeyboard, 3)
	for _, row := range markup.InlineKeyboard {
		assert.Len(t, row, 1)
	}
}

func TestInlineButtonsNPerRowChunks(t *testing.T) {
	markup := InlineButtonsNPerRow(sampleButtons(5), 2)
	require.Len(t, markup.InlineKeyboard, 3)
	assert.Len(t, markup.InlineKeyboard[0], 2)
	assert.Len(t, markup.InlineKeyboard[1], 2)
	assert.Len(t, markup.InlineKeyboard[2], 1)
}

func TestInlineButtonsNPerRowFallsBackToSingleColumn(t *testing.T) {
	markup := InlineButtonsNPerRow(sampleButtons(2), 0)
	require.Len(t, markup.InlineKeyboard, 2)
	for _, row := range markup.InlineKeyboard {
		assert.Len(t, row, 1)
	}
}

func TestInlineButtonsRowsCarriesData(t *testing.T) {
	markup := InlineButtonsRows([]InlineBtn{{Text: "🛒 Keripik", Unique: "choose_product", Data: "3"}})
	require.Len(t, markup.InlineKeyboard, 1)
	btn := markup.InlineKeyboard[0][0]
	assert.Equal(t, "choose_product", btn.Unique)
	assert.Equal(t, "3", btn.Data)
}
