package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKline(t *testing.T) {
	row := []any{
		float64(1700000000000), "30000.5", "30500.0", "29800.1", "30250.7", "1234.56",
		float64(1700003599999), "x", float64(100), "y", "z", "0",
	}
	c, err := parseKline(row)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), c.Time.Unix())
	assert.Equal(t, 30000.5, c.Open)
	assert.Equal(t, 30500.0, c.High)
	assert.Equal(t, 29800.1, c.Low)
	assert.Equal(t, 30250.7, c.Close)
	assert.Equal(t, 1234.56, c.Volume)
}

func TestParseKlineRejectsBadColumns(t *testing.T) {
	_, err := parseKline([]any{"not a number", "1", "2", "3", "4", "5"})
	assert.Error(t, err)

	_, err = parseKline([]any{float64(1700000000000), "1", "2", "not a float", "4", "5"})
	assert.Error(t, err)
}

func TestSummarizeDepth(t *testing.T) {
	bids := [][2]string{{"100.0", "5"}, {"99.5", "3"}, {"99.0", "4"}}
	asks := [][2]string{{"100.5", "2"}, {"101.0", "2"}, {"101.5", "1"}}

	stats, err := summarizeDepth(bids, asks)
	require.NoError(t, err)
	assert.Equal(t, 12.0, stats.BidVolume)
	assert.Equal(t, 5.0, stats.AskVolume)
	assert.InDelta(t, 2.4, stats.BidAskRatio, 1e-9)
	assert.Equal(t, "bid_heavy", stats.Imbalance)
	assert.Equal(t, 3, stats.LevelsPerSide)
	// Spread of 0.5 around a 100.25 mid.
	assert.InDelta(t, 0.5/100.25*100, stats.SpreadPct, 1e-9)
}

func TestSummarizeDepthBalancedAndAskHeavy(t *testing.T) {
	stats, err := summarizeDepth([][2]string{{"100", "10"}}, [][2]string{{"101", "10"}})
	require.NoError(t, err)
	assert.Equal(t, "balanced", stats.Imbalance)

	stats, err = summarizeDepth([][2]string{{"100", "5"}}, [][2]string{{"101", "10"}})
	require.NoError(t, err)
	assert.Equal(t, "ask_heavy", stats.Imbalance)
}

func TestSummarizeDepthEmptySide(t *testing.T) {
	_, err := summarizeDepth(nil, [][2]string{{"101", "10"}})
	assert.Error(t, err)
}
