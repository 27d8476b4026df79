package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantpulse/marketsnap/internal/model"
)

func dailySeries(n int) model.CandleSeries {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, n)
	for i := range candles {
		c := 100 + math.Sin(float64(i)/10)*20
		candles[i] = model.Candle{
			Time: base.AddDate(0, 0, i), Open: c, High: c + 2, Low: c - 2, Close: c, Volume: 500,
		}
	}
	return model.CandleSeries{Asset: "BTC", Timeframe: "1d", Candles: candles}
}

func TestRollingSMAPadding(t *testing.T) {
	out := RollingSMA([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestRollingRSIAlignment(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	out := RollingRSI(closes, 14)
	require.Len(t, out, 30)
	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(out[i]), "index %d must be padding", i)
	}
	assert.False(t, math.IsNaN(out[29]))

	// The last rolling value matches the point computation over the full
	// window.
	want, ok := RSI(closes)
	require.True(t, ok)
	assert.InDelta(t, want, out[29], 1e-9)
}

func TestMACDShapeAndShortInput(t *testing.T) {
	assert.Nil(t, MACD(make([]float64, 25)), "fewer than 26 closes")

	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	m := MACD(closes)
	require.NotNil(t, m)
	assert.Len(t, m.Line, 60)
	assert.Len(t, m.Signal, 60)
	assert.Len(t, m.Histogram, 60)
	for i := range closes {
		assert.InDelta(t, m.Line[i]-m.Signal[i], m.Histogram[i], 1e-9)
	}
}

func TestEnrichHistoricalLongTimeframe(t *testing.T) {
	enriched := EnrichHistorical(dailySeries(250))
	assert.NotEmpty(t, enriched.SMA20)
	assert.NotEmpty(t, enriched.SMA200)
	assert.NotEmpty(t, enriched.RSI)
	assert.NotNil(t, enriched.MACD)
	assert.Len(t, enriched.ATR, 250)

	// SMA200 has a real value at the end of a 250-bar series.
	assert.False(t, math.IsNaN(enriched.SMA200[249]))
}

func TestEnrichHistoricalShortTimeframeSkipsHeavyColumns(t *testing.T) {
	series := dailySeries(100)
	series.Timeframe = "1h"
	enriched := EnrichHistorical(series)
	assert.Empty(t, enriched.SMA20)
	assert.Empty(t, enriched.SMA200)
	assert.Nil(t, enriched.MACD)
	assert.Len(t, enriched.ATR, 100)
}
