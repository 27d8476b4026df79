package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantpulse/marketsnap/internal/model"
)

func hourlyCandles(start time.Time, n int) []model.Candle {
	out := make([]model.Candle, n)
	for i := range out {
		base := 100 + float64(i)
		out[i] = model.Candle{
			Time: start.Add(time.Duration(i) * time.Hour),
			Open: base, High: base + 2, Low: base - 2, Close: base + 1,
			Volume: 10,
		}
	}
	return out
}

func TestResampleCandlesFourHourBuckets(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := model.CandleSeries{
		Asset: "BTC", Timeframe: "4h",
		Candles: hourlyCandles(start, 8),
	}

	out := resampleCandles(series, 4*time.Hour)
	require.Len(t, out.Candles, 2)
	assert.Equal(t, "BTC", out.Asset)
	assert.Equal(t, "4h", out.Timeframe)

	// First bucket covers hours 0-3: open from the first bar, extremes across
	// all four, close from the last, volume summed.
	first := out.Candles[0]
	assert.Equal(t, start, first.Time)
	assert.Equal(t, 100.0, first.Open)
	assert.Equal(t, 105.0, first.High)
	assert.Equal(t, 98.0, first.Low)
	assert.Equal(t, 104.0, first.Close)
	assert.Equal(t, 40.0, first.Volume)

	second := out.Candles[1]
	assert.Equal(t, start.Add(4*time.Hour), second.Time)
	assert.Equal(t, 104.0, second.Open)
	assert.Equal(t, 108.0, second.Close)
	require.NoError(t, out.Validate())
}

func TestResampleCandlesUnalignedStart(t *testing.T) {
	// A series starting mid-bucket yields a short leading bucket, not a gap.
	start := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	series := model.CandleSeries{
		Asset: "ETH", Timeframe: "4h",
		Candles: hourlyCandles(start, 6),
	}

	out := resampleCandles(series, 4*time.Hour)
	require.Len(t, out.Candles, 2)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), out.Candles[0].Time)
	assert.Equal(t, 20.0, out.Candles[0].Volume) // hours 02:00 and 03:00
	assert.Equal(t, 40.0, out.Candles[1].Volume)
	require.NoError(t, out.Validate())
}

func TestHistoricalTimeframesCoverFiveFrames(t *testing.T) {
	frames := make([]string, 0, len(historicalTimeframes))
	for _, tf := range historicalTimeframes {
		frames = append(frames, tf.Timeframe)
		if tf.Bucket > 0 {
			// Resampled frames must fetch a finer native interval.
			assert.NotEqual(t, tf.Timeframe, tf.Interval)
		}
	}
	assert.Equal(t, []string{"1h", "4h", "1d", "1wk", "1mo"}, frames)
}
