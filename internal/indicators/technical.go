// Package indicators computes the per-asset technical bundle from a candle
// series. Everything here is pure and deterministic: same series in, same
// bundle out, no I/O.
package indicators

import (
	"fmt"
	"math"

	"github.com/quantpulse/marketsnap/internal/model"
)

const (
	rsiPeriod     = 14
	atrPeriod     = 14
	pivotLookback = 20

	// RS substitute when the loss average is zero; drives RSI to 100
	// without a divide-by-zero.
	rsNoLoss = 1e10
)

// SMA returns the mean of the last n values, or false when fewer exist.
func SMA(values []float64, n int) (float64, bool) {
	if n <= 0 || len(values) < n {
		return 0, false
	}
	sum := 0.0
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n), true
}

// RSI computes the 14-period relative strength index over closes using
// simple averages of the last 14 gains and losses.
func RSI(closes []float64) (float64, bool) {
	if len(closes) < rsiPeriod+1 {
		return 0, false
	}
	gains := make([]float64, 0, len(closes)-1)
	losses := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gains = append(gains, math.Max(0, change))
		losses = append(losses, math.Max(0, -change))
	}
	avgGain, _ := SMA(gains, rsiPeriod)
	avgLoss, _ := SMA(losses, rsiPeriod)

	rs := rsNoLoss
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	return 100 - 100/(1+rs), true
}

// ATR computes the 14-period average true range.
func ATR(candles []model.Candle) (float64, bool) {
	if len(candles) < atrPeriod+1 {
		return 0, false
	}
	trs := TrueRanges(candles)
	atr, ok := SMA(trs, atrPeriod)
	return atr, ok
}

// TrueRanges returns the true-range sequence, one value per candle after the
// first: max(high-low, |high-prevClose|, |low-prevClose|).
func TrueRanges(candles []model.Candle) []float64 {
	if len(candles) < 2 {
		return nil
	}
	trs := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prevClose := candles[i-1].Close
		hl := candles[i].High - candles[i].Low
		hc := math.Abs(candles[i].High - prevClose)
		lc := math.Abs(candles[i].Low - prevClose)
		trs = append(trs, math.Max(hl, math.Max(hc, lc)))
	}
	return trs
}

// PivotLevels scans the last 20 bars for strict local extrema. The nearest
// support is the highest minimum below price and the nearest resistance the
// lowest maximum above it; fallbacks are price*0.95 and price*1.05. Pivot
// levels are the primary source; ATR or SMA bands never override them.
func PivotLevels(candles []model.Candle, price float64) (support, resistance float64) {
	support = price * 0.95
	resistance = price * 1.05

	start := len(candles) - pivotLookback
	if start < 0 {
		start = 0
	}
	window := candles[start:]

	bestSupport := math.Inf(-1)
	bestResistance := math.Inf(1)
	for i := 1; i < len(window)-1; i++ {
		h := window[i].High
		if h > window[i-1].High && h > window[i+1].High && h > price && h < bestResistance {
			bestResistance = h
		}
		l := window[i].Low
		if l < window[i-1].Low && l < window[i+1].Low && l < price && l > bestSupport {
			bestSupport = l
		}
	}
	if !math.IsInf(bestSupport, -1) {
		support = bestSupport
	}
	if !math.IsInf(bestResistance, 1) {
		resistance = bestResistance
	}
	return support, resistance
}

// Compute derives the full indicator bundle for one asset. Series shorter
// than an indicator's minimum degrade that field (nil / weak trend) instead
// of failing the whole bundle.
func Compute(series model.CandleSeries) (model.IndicatorBundle, error) {
	if err := series.Validate(); err != nil {
		return model.IndicatorBundle{}, err
	}
	candles := series.Candles
	if len(candles) == 0 {
		return model.IndicatorBundle{}, fmt.Errorf("asset %s: empty candle series", series.Asset)
	}

	closes := series.Closes()
	volumes := series.Volumes()
	price := closes[len(closes)-1]

	bundle := model.IndicatorBundle{Asset: series.Asset, Price: price}

	sma7, _ := SMA(closes, 7)
	sma14, _ := SMA(closes, 14)
	bundle.SMA7 = sma7
	bundle.SMA14 = sma14
	if sma50, ok := SMA(closes, 50); ok {
		bundle.SMA50 = &sma50
	}
	if rsi, ok := RSI(closes); ok {
		bundle.RSI14 = &rsi
	}
	if atr, ok := ATR(candles); ok {
		bundle.ATR = &atr
	}

	bundle.Support, bundle.Resistance = PivotLevels(candles, price)
	bundle.Trend = trend(sma7, sma14, bundle.SMA50, price)
	bundle.RSIZone = rsiZone(bundle.RSI14)
	bundle.VolumeTrend = volumeTrend(volumes)

	rsi := 50.0
	if bundle.RSI14 != nil {
		rsi = *bundle.RSI14
	}
	bundle.Signal = signal(bundle.Trend, rsi)
	bundle.SignalConfidence = confidence(bundle.Trend, rsi, bundle.VolumeTrend)

	atr := 0.0
	if bundle.ATR != nil {
		atr = *bundle.ATR
	}
	bundle.Volatility = volatilityBucket(atr, price)
	bundle.RiskLevel = riskLevel(bundle.Volatility, bundle.SignalConfidence)
	bundle.Levels = keyLevels(bundle.Signal, bundle.Trend, price, bundle.Support, bundle.Resistance, atr)

	return bundle, nil
}

func trend(sma7, sma14 float64, sma50 *float64, price float64) model.Trend {
	switch {
	case sma7 > sma14:
		if sma50 != nil && price > *sma50 {
			return model.TrendBullish
		}
		return model.TrendBullishWeak
	case sma7 < sma14:
		if sma50 != nil && price < *sma50 {
			return model.TrendBearish
		}
		return model.TrendBearishWeak
	default:
		return model.TrendNeutral
	}
}

func rsiZone(rsi *float64) model.RSIZone {
	if rsi == nil {
		return model.RSIZoneNeutral
	}
	switch {
	case *rsi > 60:
		return model.RSIZoneBullish
	case *rsi < 40:
		return model.RSIZoneBearish
	default:
		return model.RSIZoneNeutral
	}
}

func volumeTrend(volumes []float64) model.VolumeTrend {
	avg, ok := SMA(volumes, 5)
	if !ok || avg == 0 {
		return model.VolumeStable
	}
	last := volumes[len(volumes)-1]
	switch {
	case last > avg*1.2:
		return model.VolumeIncreasing
	case last < avg*0.8:
		return model.VolumeDecreasing
	default:
		return model.VolumeStable
	}
}

func signal(t model.Trend, rsi float64) model.Signal {
	switch {
	case t.Bullish():
		if rsi > 70 {
			return model.SignalSell
		}
		if rsi < 50 {
			return model.SignalStrongBuy
		}
		return model.SignalBuy
	case t.Bearish():
		if rsi < 30 {
			return model.SignalBuy
		}
		if rsi > 50 {
			return model.SignalStrongSell
		}
		return model.SignalSell
	default:
		return model.SignalNeutral
	}
}

func confidence(t model.Trend, rsi float64, vt model.VolumeTrend) float64 {
	base := 3.0
	switch t {
	case model.TrendBullish, model.TrendBearish:
		base = 7.0
	case model.TrendBullishWeak, model.TrendBearishWeak:
		base = 5.0
	}

	rsiFactor := 1.0
	if (rsi > 70 && t.Bearish()) || (rsi < 30 && t.Bullish()) {
		rsiFactor = 1.2
	}

	volumeFactor := 1.0
	switch vt {
	case model.VolumeIncreasing:
		volumeFactor = 1.2
	case model.VolumeDecreasing:
		volumeFactor = 0.8
	}

	return math.Min(10, base*rsiFactor*volumeFactor)
}

func volatilityBucket(atr, price float64) model.Volatility {
	if price <= 0 {
		return model.VolatilityLow
	}
	switch {
	case atr > price*0.03:
		return model.VolatilityHigh
	case atr > price*0.015:
		return model.VolatilityMedium
	default:
		return model.VolatilityLow
	}
}

func riskLevel(v model.Volatility, conf float64) float64 {
	factor := 0.5
	switch v {
	case model.VolatilityHigh:
		factor = 1.5
	case model.VolatilityMedium:
		factor = 1.0
	}
	return math.Min(10, math.Max(1, factor*(conf/10)*10))
}

// keyLevels derives entry range, stop loss and ATR/RRR-scaled take-profit
// targets. Scalp-style stops: 0.7 ATR with-trend gets 3:1, against 1.5:1.
func keyLevels(sig model.Signal, t model.Trend, price, support, resistance, atr float64) model.KeyLevels {
	withTrend := (sig == model.SignalBuy || sig == model.SignalStrongBuy) && t.Bullish() ||
		(sig == model.SignalSell || sig == model.SignalStrongSell) && t.Bearish()

	rrr := 1.5
	if withTrend {
		rrr = 3.0
	}
	const slATRMult = 0.7

	var lv model.KeyLevels
	switch sig {
	case model.SignalBuy, model.SignalStrongBuy:
		lv.EntryLow = support
		lv.EntryHigh = price
		lv.StopLoss = math.Min(lv.EntryLow-slATRMult*atr, support*0.98)
		risk := math.Abs(lv.EntryHigh - lv.StopLoss)
		lv.TakeProfit = math.Min(lv.EntryHigh+rrr*risk, resistance*1.01)
		lv.TakeProfit2 = math.Min(lv.EntryHigh+(rrr+1)*risk, resistance*1.02)
	case model.SignalSell, model.SignalStrongSell:
		lv.EntryLow = price
		lv.EntryHigh = resistance
		lv.StopLoss = math.Max(lv.EntryHigh+slATRMult*atr, resistance*1.005)
		risk := math.Abs(lv.EntryLow - lv.StopLoss)
		lv.TakeProfit = math.Max(lv.EntryLow-rrr*risk, support*0.99)
		lv.TakeProfit2 = math.Max(lv.EntryLow-(rrr+1)*risk, support*0.98)
	default:
		lv.EntryLow = price * 0.99
		lv.EntryHigh = price * 1.01
		lv.TakeProfit = price
		lv.TakeProfit2 = price
		lv.StopLoss = price
	}

	if lv.StopLoss != price {
		lv.RewardRisk = math.Abs(lv.TakeProfit-price) / math.Abs(price-lv.StopLoss)
		lv.RewardRisk2 = math.Abs(lv.TakeProfit2-price) / math.Abs(price-lv.StopLoss)
	}
	return lv
}
