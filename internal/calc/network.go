package calc

import "github.com/quantpulse/marketsnap/internal/model"

// DifficultyTrend compares recent difficulty samples (oldest first).
func DifficultyTrend(samples []float64) string {
	if len(samples) < 2 {
		return ""
	}
	first, last := samples[0], samples[len(samples)-1]
	if first == 0 {
		return ""
	}
	change := (last - first) / first
	switch {
	case change > 0.01:
		return "rising"
	case change < -0.01:
		return "falling"
	default:
		return "flat"
	}
}

// MempoolPressure grades the unconfirmed-transaction backlog.
func MempoolPressure(txCount float64) model.PressureLevel {
	switch {
	case txCount > 50000:
		return model.PressureHigh
	case txCount > 15000:
		return model.PressureMedium
	default:
		return model.PressureLow
	}
}

// GasPressure grades a proposed gas price in gwei.
func GasPressure(gwei float64) model.PressureLevel {
	switch {
	case gwei > 60:
		return model.PressureHigh
	case gwei > 25:
		return model.PressureMedium
	default:
		return model.PressureLow
	}
}
