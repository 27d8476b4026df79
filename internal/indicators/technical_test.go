package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantpulse/marketsnap/internal/model"
)

func seriesFromCloses(t *testing.T, closes []float64) model.CandleSeries {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, len(closes))
	for i, c := range closes {
		candles[i] = model.Candle{
			Time:   base.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return model.CandleSeries{Asset: "BTC", Timeframe: "1h", Candles: candles}
}

func flatCloses(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestSMAMatchesMean(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got, ok := SMA(closes, 4)
	require.True(t, ok)
	assert.InDelta(t, (7+8+9+10)/4.0, got, 1e-9)

	_, ok = SMA(closes, 11)
	assert.False(t, ok, "not enough values")
}

func TestRSIExactlyHundredWithoutLosses(t *testing.T) {
	// Strictly rising closes: zero losses must pin RSI to 100 exactly.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rsi, ok := RSI(closes)
	require.True(t, ok)
	assert.InDelta(t, 100.0, rsi, 1e-7)
	assert.LessOrEqual(t, rsi, 100.0)
}

func TestRSIZeroWithoutGains(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	rsi, ok := RSI(closes)
	require.True(t, ok)
	assert.InDelta(t, 0.0, rsi, 1e-9)
}

func TestRSINeedsFifteenCloses(t *testing.T) {
	_, ok := RSI(flatCloses(14, 100))
	assert.False(t, ok)
	_, ok = RSI(flatCloses(15, 100))
	assert.True(t, ok)
}

func TestShortSeriesDegradesBundle(t *testing.T) {
	series := seriesFromCloses(t, flatCloses(10, 100))
	bundle, err := Compute(series)
	require.NoError(t, err)

	assert.Nil(t, bundle.RSI14, "fewer than 15 closes")
	assert.Nil(t, bundle.ATR, "fewer than 15 candles")
	assert.Nil(t, bundle.SMA50, "fewer than 50 closes")
	assert.Equal(t, 100.0, bundle.Price)
}

func TestFullSeriesPopulatesBundle(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i)/5)*10
	}
	bundle, err := Compute(seriesFromCloses(t, closes))
	require.NoError(t, err)

	require.NotNil(t, bundle.SMA50)
	require.NotNil(t, bundle.RSI14)
	require.NotNil(t, bundle.ATR)

	// SMA50 is exactly the mean of the last 50 closes.
	sum := 0.0
	for _, c := range closes[10:] {
		sum += c
	}
	assert.InDelta(t, sum/50, *bundle.SMA50, 1e-9)
}

func TestComputeIsDeterministic(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 30000 + math.Sin(float64(i))*500
	}
	series := seriesFromCloses(t, closes)

	a, err := Compute(series)
	require.NoError(t, err)
	b, err := Compute(series)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeRejectsUnorderedSeries(t *testing.T) {
	series := seriesFromCloses(t, flatCloses(5, 100))
	series.Candles[3].Time = series.Candles[1].Time
	_, err := Compute(series)
	assert.Error(t, err)
}

func TestPivotLevelsFallback(t *testing.T) {
	// Monotonic closes have no strict local extrema; fall back to the bands.
	series := seriesFromCloses(t, []float64{1, 2, 3, 4, 5})
	support, resistance := PivotLevels(series.Candles, 5)
	assert.InDelta(t, 5*0.95, support, 1e-9)
	assert.InDelta(t, 5*1.05, resistance, 1e-9)
}

func TestPivotLevelsFindLocalExtrema(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(i int, high, low float64) model.Candle {
		return model.Candle{Time: base.Add(time.Duration(i) * time.Hour), High: high, Low: low, Close: (high + low) / 2}
	}
	candles := []model.Candle{
		mk(0, 105, 95),
		mk(1, 104, 90), // local low at 90
		mk(2, 106, 96),
		mk(3, 112, 97), // local high at 112
		mk(4, 107, 96),
	}
	support, resistance := PivotLevels(candles, 100)
	assert.Equal(t, 90.0, support)
	assert.Equal(t, 112.0, resistance)
}

func TestVolumeTrendThresholds(t *testing.T) {
	assert.Equal(t, model.VolumeIncreasing, volumeTrend([]float64{100, 100, 100, 100, 200}))
	assert.Equal(t, model.VolumeDecreasing, volumeTrend([]float64{100, 100, 100, 100, 10}))
	assert.Equal(t, model.VolumeStable, volumeTrend([]float64{100, 100, 100, 100, 105}))
	assert.Equal(t, model.VolumeStable, volumeTrend([]float64{100, 100}), "too few samples")
}

func TestSignalMapping(t *testing.T) {
	cases := []struct {
		trend model.Trend
		rsi   float64
		want  model.Signal
	}{
		{model.TrendBullish, 75, model.SignalSell},
		{model.TrendBullish, 45, model.SignalStrongBuy},
		{model.TrendBullish, 60, model.SignalBuy},
		{model.TrendBearish, 25, model.SignalBuy},
		{model.TrendBearish, 55, model.SignalStrongSell},
		{model.TrendBearish, 40, model.SignalSell},
		{model.TrendNeutral, 50, model.SignalNeutral},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, signal(tc.trend, tc.rsi), "trend=%s rsi=%v", tc.trend, tc.rsi)
	}
}

func TestConfidenceCappedAtTen(t *testing.T) {
	// Strong trend, contrarian RSI and rising volume: 7 * 1.2 * 1.2 > 10.
	got := confidence(model.TrendBullish, 25, model.VolumeIncreasing)
	assert.Equal(t, 10.0, got)

	weak := confidence(model.TrendNeutral, 50, model.VolumeDecreasing)
	assert.InDelta(t, 3*0.8, weak, 1e-9)
}

func TestVolatilityBuckets(t *testing.T) {
	assert.Equal(t, model.VolatilityHigh, volatilityBucket(4, 100))
	assert.Equal(t, model.VolatilityMedium, volatilityBucket(2, 100))
	assert.Equal(t, model.VolatilityLow, volatilityBucket(1, 100))
}

func TestKeyLevelsBuySide(t *testing.T) {
	lv := keyLevels(model.SignalBuy, model.TrendBullish, 100, 95, 110, 2)
	assert.Equal(t, 95.0, lv.EntryLow)
	assert.Equal(t, 100.0, lv.EntryHigh)
	assert.Less(t, lv.StopLoss, lv.EntryLow)
	assert.Greater(t, lv.TakeProfit, lv.EntryHigh)
	assert.Greater(t, lv.RewardRisk, 0.0)
}

func TestTrueRanges(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := []model.Candle{
		{Time: base, High: 105, Low: 95, Close: 100},
		{Time: base.Add(time.Hour), High: 110, Low: 102, Close: 108},
	}
	trs := TrueRanges(candles)
	require.Len(t, trs, 1)
	// max(110-102, |110-100|, |102-100|) = 10.
	assert.Equal(t, 10.0, trs[0])
}
