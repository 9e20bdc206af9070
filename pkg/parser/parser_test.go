package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGateResponse_Clean(t *testing.T) {
	out, err := ParseGateResponse(`{"r1":{"triggered":true,"reasoning":"x"},"r2":{"triggered":false,"reasoning":"y"}}`)
	require.NoError(t, err)
	assert.True(t, out["r1"].Triggered)
	assert.False(t, out["r2"].Triggered)
}

func TestParseGateResponse_RepairsProseWrapped(t *testing.T) {
	raw := "Sure, here is the result:\n```json\n{\"r1\":{\"triggered\":true,\"reasoning\":\"x\"}}\n```\nLet me know if that helps."
	out, err := ParseGateResponse(raw)
	require.NoError(t, err)
	assert.True(t, out["r1"].Triggered)
}

func TestParseGateResponse_UnrepairableFails(t *testing.T) {
	_, err := ParseGateResponse("not json at all")
	assert.Error(t, err)
}

func TestParseChecklistResponse_NumericAndNA(t *testing.T) {
	out, err := ParseChecklistResponse(`{"i1":{"level":4,"reasoning":"good"},"i2":{"level":"na","reasoning":"n/a"}}`)
	require.NoError(t, err)
	assert.Equal(t, "4", out["i1"].Level)
	assert.Equal(t, "na", out["i2"].Level)
}

func TestParseChecklistResponse_MissingLevel(t *testing.T) {
	_, err := ParseChecklistResponse(`{"i1":{"reasoning":"good"}}`)
	assert.Error(t, err)
}

func TestParseOrdinalResponse(t *testing.T) {
	out, err := ParseOrdinalResponse(`{"value":4,"reasoning":"x","confidence":0.88}`)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Value)
	assert.InDelta(t, 0.88, out.Confidence, 0.0001)
}

func TestRepair_NoJSONObject(t *testing.T) {
	_, err := repair("nothing here")
	assert.Error(t, err)
}

func TestRepair_UnterminatedObject(t *testing.T) {
	_, err := repair(`{"a": 1`)
	assert.Error(t, err)
}
