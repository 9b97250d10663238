package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		key     string
		payload string
	}{
		{"key and payload", "\fchoose_product|42", "choose_product", "42"},
		{"key only", "\fmenu", "menu", ""},
		{"no prefix", "checkout|", "checkout", ""},
		{"payload with pipe", "\freceipt|1|extra", "receipt", "1|extra"},
		{"empty", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
			assert.Equal(t, tc.key, key)
			assert.Equal(t, tc.payload, payload)
		})
	}

	key, payload := ParseCallbackData(nil)
	assert.Empty(t, key)
	assert.Empty(t, payload)
}
