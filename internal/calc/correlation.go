// Package calc holds the pure cross-series calculators: Pearson correlation
// over paired close windows, the cross-asset risk regime, and chain health
// derivation. Nothing here performs network calls; inputs come from series
// other tasks already fetched.
package calc

import (
	"math"

	"github.com/quantpulse/marketsnap/internal/model"
)

// minCorrelationSamples is the fewest paired non-NaN samples a window may
// contain before the correlation is reported as 0.0 / "weak" instead of a
// number nobody should trust.
const minCorrelationSamples = 10

// Pearson computes the correlation coefficient over paired samples. NaN
// pairs are skipped; fewer than minCorrelationSamples usable pairs yields
// (0, false).
func Pearson(a, b []float64) (float64, bool) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	// Align tails: the most recent samples pair up.
	a = a[len(a)-n:]
	b = b[len(b)-n:]

	var xs, ys []float64
	for i := 0; i < n; i++ {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	if len(xs) < minCorrelationSamples {
		return 0, false
	}

	meanX := mean(xs)
	meanY := mean(ys)
	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	return cov / math.Sqrt(varX*varY), true
}

// Classify grades a correlation coefficient.
func Classify(coeff float64, ok bool) string {
	if !ok {
		return "weak"
	}
	abs := math.Abs(coeff)
	switch {
	case abs >= 0.7:
		return "strong"
	case abs >= 0.4:
		return "moderate"
	default:
		return "weak"
	}
}

// Window computes one correlation window over the last windowDays paired
// daily closes.
func Window(pair string, a, b []float64, windowDays int) model.CorrelationWindow {
	a = tail(a, windowDays)
	b = tail(b, windowDays)
	coeff, ok := Pearson(a, b)
	samples := len(a)
	if len(b) < samples {
		samples = len(b)
	}
	return model.CorrelationWindow{
		Pair:           pair,
		WindowDays:     windowDays,
		Coefficient:    coeff,
		Classification: Classify(coeff, ok),
		Samples:        samples,
	}
}

// ClassifyRegime maps a volatility-proxy index level to the cross-asset
// risk regime: >25 RISK_OFF, <15 RISK_ON, else NEUTRAL.
func ClassifyRegime(vix float64) model.Regime {
	switch {
	case vix > 25:
		return model.RegimeRiskOff
	case vix < 15:
		return model.RegimeRiskOn
	default:
		return model.RegimeNeutral
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}
