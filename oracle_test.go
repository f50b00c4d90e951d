package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdictText_PlainJSON(t *testing.T) {
	text := `{"symbol":"BTC/USD","direction":"Long","confidence":85,"entryPrice":100,"stopLoss":95,"takeProfit":110,"reasoning":"breakout"}`
	v, err := parseVerdictText(text, "fallback")
	require.NoError(t, err)
	assert.Equal(t, DirectionLong, v.Direction)
	assert.Equal(t, 85.0, v.Confidence)
	require.NotNil(t, v.EntryPrice)
	assert.True(t, v.EntryPrice.Equal(NewMoneyFromFloat(100)))
}

func TestParseVerdictText_FencedJSON(t *testing.T) {
	text := "Here is my analysis:\n```json\n{\"symbol\":\"ETH/USD\",\"direction\":\"Short\",\"confidence\":\"72.5\",\"reasoning\":\"overbought\"}\n```"
	v, err := parseVerdictText(text, "fallback")
	require.NoError(t, err)
	assert.Equal(t, DirectionShort, v.Direction)
	assert.Equal(t, 72.5, v.Confidence)
}

func TestParseVerdictText_UnknownDirectionMapsToNoTrade(t *testing.T) {
	text := `{"symbol":"BTC/USD","direction":"sideways","confidence":50,"reasoning":"chop"}`
	v, err := parseVerdictText(text, "fallback")
	require.NoError(t, err)
	assert.Equal(t, DirectionNoTrade, v.Direction)
}

func TestParseVerdictText_NoObjectFound(t *testing.T) {
	_, err := parseVerdictText("no json here at all", "fallback")
	require.Error(t, err)
	assert.Equal(t, KindOracleParse, KindOf(err))
}

func TestParseVerdictText_StringPriceLevels(t *testing.T) {
	text := `{"symbol":"BTC/USD","direction":"Long","confidence":90,"entryPrice":"100.50","stopLoss":"95.25","takeProfit":"110.75","reasoning":"x"}`
	v, err := parseVerdictText(text, "fallback")
	require.NoError(t, err)
	require.NotNil(t, v.StopLoss)
	assert.True(t, v.StopLoss.Equal(MustParseMoney("95.25")))
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`{"a":1}`))
}
