package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultConstructors(t *testing.T) {
	v := Value(42)
	assert.Equal(t, KindValue, v.Kind)
	assert.True(t, v.Present())

	a := Absent(ReasonRateLimited, "429 after retries")
	assert.Equal(t, KindAbsent, a.Kind)
	assert.False(t, a.Present())
	assert.Equal(t, ReasonRateLimited, a.Reason)

	e := Errorf(ReasonNetworkFailure, "dial %s: refused", "example.com")
	assert.Equal(t, KindError, e.Kind)
	assert.False(t, e.Present())
	assert.Contains(t, e.Detail, "example.com")

	m := MissingCredential("FRED_API_KEY")
	assert.Equal(t, ReasonMissingCredential, m.Reason)
	assert.Contains(t, m.Detail, "FRED_API_KEY")
}

func TestValueNilIsNotPresent(t *testing.T) {
	assert.False(t, Value(nil).Present())
}

func TestSnapshotGetUnknownTask(t *testing.T) {
	snap := NewSnapshot(time.Now())
	r := snap.Get("never_declared")
	assert.Equal(t, KindAbsent, r.Kind)
	assert.False(t, r.Present())
}

func TestSnapshotValueOf(t *testing.T) {
	snap := NewSnapshot(time.Now())
	snap.Results["prices"] = Value(SpotPrices{BTC: 1, ETH: 2})
	snap.Results["gap"] = Absent(ReasonNetworkFailure, "down")

	v, ok := snap.ValueOf("prices")
	require.True(t, ok)
	assert.Equal(t, SpotPrices{BTC: 1, ETH: 2}, v)

	_, ok = snap.ValueOf("gap")
	assert.False(t, ok)
}

func TestCandleSeriesValidate(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	series := CandleSeries{Asset: "BTC", Timeframe: "1h", Candles: []Candle{
		{Time: base, Close: 1},
		{Time: base.Add(time.Hour), Close: 2},
	}}
	require.NoError(t, series.Validate())

	series.Candles = append(series.Candles, Candle{Time: base.Add(time.Hour), Close: 3})
	assert.Error(t, series.Validate(), "equal timestamps violate strict ordering")
}
