package indicators

import (
	"math"

	"github.com/quantpulse/marketsnap/internal/model"
)

// longTimeframes get the heavier rolling indicators (SMA200, MACD).
var longTimeframes = map[string]bool{"1d": true, "1wk": true, "1mo": true}

// EnrichHistorical attaches rolling indicator columns to a raw series.
// Short series simply omit the columns that need more history.
func EnrichHistorical(series model.CandleSeries) model.HistoricalIndicators {
	closes := series.Closes()
	out := model.HistoricalIndicators{
		Series: series,
		ATR:    RollingATR(series.Candles, atrPeriod),
	}
	if !longTimeframes[series.Timeframe] {
		return out
	}

	out.SMA20 = RollingSMA(closes, 20)
	out.SMA50 = RollingSMA(closes, 50)
	out.SMA200 = RollingSMA(closes, 200)
	out.RSI = RollingRSI(closes, rsiPeriod)
	out.MACD = MACD(closes)
	return out
}

// RollingSMA returns one value per input; positions with fewer than n
// predecessors hold NaN.
func RollingSMA(values []float64, n int) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= n {
			sum -= values[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// RollingATR returns the n-period rolling mean of true ranges, aligned to
// the candle index (NaN until enough history accumulates).
func RollingATR(candles []model.Candle, n int) []float64 {
	out := make([]float64, len(candles))
	for i := range out {
		out[i] = math.NaN()
	}
	trs := TrueRanges(candles)
	sum := 0.0
	for i, tr := range trs {
		sum += tr
		if i >= n {
			sum -= trs[i-n]
		}
		if i >= n-1 {
			out[i+1] = sum / float64(n)
		}
	}
	return out
}

// RollingRSI returns the rolling simple-average RSI aligned to the close
// index.
func RollingRSI(closes []float64, n int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(closes) < n+1 {
		return out
	}
	for i := n; i < len(closes); i++ {
		if v, ok := RSI(closes[:i+1]); ok {
			out[i] = v
		}
	}
	return out
}

// MACD computes MACD(12,26) with a 9-period signal line.
func MACD(closes []float64) *model.MACDSeries {
	if len(closes) < 26 {
		return nil
	}
	ema12 := ema(closes, 12)
	ema26 := ema(closes, 26)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = ema12[i] - ema26[i]
	}
	sig := ema(line, 9)
	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - sig[i]
	}
	return &model.MACDSeries{Line: line, Signal: sig, Histogram: hist}
}

func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
