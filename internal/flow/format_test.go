package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRupiah(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{5, "5"},
		{500, "500"},
		{5000, "5.000"},
		{85000, "85.000"},
		{1250000, "1.250.000"},
		{-15000, "-15.000"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatRupiah(tc.in), "input %d", tc.in)
	}
}

func TestParseActionRoundTrip(t *testing.T) {
	for _, kind := range Kinds() {
		act := Action{Kind: kind, Ref: 42}
		parsed, err := ParseAction(string(kind), act.Payload())
		assert.NoError(t, err)
		assert.Equal(t, act, parsed)
	}
}

func TestParseActionRejectsUnknown(t *testing.T) {
	_, err := ParseAction("drop_tables", "")
	assert.Error(t, err)

	_, err = ParseAction(string(ActChooseProduct), "not-a-number")
	assert.Error(t, err)
}

func TestActionPayloadOmitsZeroRef(t *testing.T) {
	assert.Equal(t, "", Action{Kind: ActMainMenu}.Payload())
	assert.Equal(t, "17", Action{Kind: ActChooseProduct, Ref: 17}.Payload())
}
