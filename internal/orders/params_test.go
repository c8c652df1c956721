package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_EncodePreservesInsertionOrder(t *testing.T) {
	p := NewParams().
		Set("symbol", "BTCUSDT").
		Set("side", "BUY").
		Set("type", "MARKET").
		Set("quantity", "0.001").
		Set("reduceOnly", "false")

	assert.Equal(t, "symbol=BTCUSDT&side=BUY&type=MARKET&quantity=0.001&reduceOnly=false", p.Encode())

	// Overwriting a key must keep its original position.
	p.Set("side", "SELL")
	assert.Equal(t, "symbol=BTCUSDT&side=SELL&type=MARKET&quantity=0.001&reduceOnly=false", p.Encode())
}

func TestParams_EncodeEscapes(t *testing.T) {
	p := NewParams().Set("note", "a b&c=d")
	assert.Equal(t, "note=a+b%26c%3Dd", p.Encode())
}

func TestParseQuery_RoundTrip(t *testing.T) {
	original := NewParams().
		Set("symbol", "BTCUSDT").
		Set("quantity", "0.00100000").
		Set("timestamp", "1700000000000").
		Set("note", "hello world")

	parsed, err := ParseQuery(original.Encode())
	require.NoError(t, err)

	require.Equal(t, original.Keys(), parsed.Keys())
	for _, k := range original.Keys() {
		want, _ := original.Get(k)
		got, ok := parsed.Get(k)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestParseQuery_Malformed(t *testing.T) {
	_, err := ParseQuery("novalue")
	assert.Error(t, err)

	_, err = ParseQuery("bad=%zz")
	assert.Error(t, err)
}

func TestParseQuery_Empty(t *testing.T) {
	p, err := ParseQuery("")
	require.NoError(t, err)
	assert.Zero(t, p.Len())
}
