package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantpulse/marketsnap/internal/model"
)

func TestPearsonPerfectCorrelation(t *testing.T) {
	a := make([]float64, 20)
	b := make([]float64, 20)
	for i := range a {
		a[i] = float64(i)
		b[i] = 2*float64(i) + 5
	}
	coeff, ok := Pearson(a, b)
	require.True(t, ok)
	assert.InDelta(t, 1.0, coeff, 1e-9)
}

func TestPearsonPerfectInverse(t *testing.T) {
	a := make([]float64, 20)
	b := make([]float64, 20)
	for i := range a {
		a[i] = float64(i)
		b[i] = -float64(i)
	}
	coeff, ok := Pearson(a, b)
	require.True(t, ok)
	assert.InDelta(t, -1.0, coeff, 1e-9)
}

func TestPearsonTooFewSamples(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	coeff, ok := Pearson(a, a)
	assert.False(t, ok)
	assert.Equal(t, 0.0, coeff)
}

func TestPearsonSkipsNaNPairs(t *testing.T) {
	a := make([]float64, 15)
	b := make([]float64, 15)
	for i := range a {
		a[i] = float64(i)
		b[i] = float64(i)
	}
	// Poison enough pairs to drop usable samples below the minimum.
	for i := 0; i < 6; i++ {
		a[i] = math.NaN()
	}
	_, ok := Pearson(a, b)
	assert.False(t, ok, "9 usable pairs is below the minimum")

	a[0] = 0 // back to 10 usable pairs
	coeff, ok := Pearson(a, b)
	require.True(t, ok)
	assert.InDelta(t, 1.0, coeff, 1e-9)
}

func TestPearsonZeroVariance(t *testing.T) {
	flat := make([]float64, 20)
	moving := make([]float64, 20)
	for i := range flat {
		flat[i] = 5
		moving[i] = float64(i)
	}
	_, ok := Pearson(flat, moving)
	assert.False(t, ok)
}

func TestClassifyBands(t *testing.T) {
	assert.Equal(t, "strong", Classify(0.85, true))
	assert.Equal(t, "strong", Classify(-0.72, true))
	assert.Equal(t, "moderate", Classify(0.5, true))
	assert.Equal(t, "weak", Classify(0.2, true))
	assert.Equal(t, "weak", Classify(0.99, false), "insufficient samples always reads weak")
}

func TestWindowTakesTail(t *testing.T) {
	a := make([]float64, 100)
	b := make([]float64, 100)
	for i := range a {
		a[i] = float64(i)
		b[i] = float64(i) * 3
	}
	w := Window("BTC-ETH", a, b, 30)
	assert.Equal(t, "BTC-ETH", w.Pair)
	assert.Equal(t, 30, w.WindowDays)
	assert.Equal(t, 30, w.Samples)
	assert.InDelta(t, 1.0, w.Coefficient, 1e-9)
	assert.Equal(t, "strong", w.Classification)
}

func TestWindowShorterThanRequested(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	w := Window("BTC-ETH", a, a, 30)
	assert.Equal(t, 5, w.Samples)
	assert.Equal(t, "weak", w.Classification)
	assert.Equal(t, 0.0, w.Coefficient)
}

func TestClassifyRegime(t *testing.T) {
	assert.Equal(t, model.RegimeRiskOff, ClassifyRegime(30))
	assert.Equal(t, model.RegimeRiskOn, ClassifyRegime(12))
	assert.Equal(t, model.RegimeNeutral, ClassifyRegime(20))
	assert.Equal(t, model.RegimeNeutral, ClassifyRegime(25), "boundary is exclusive")
	assert.Equal(t, model.RegimeNeutral, ClassifyRegime(15), "boundary is exclusive")
}

func TestDifficultyTrend(t *testing.T) {
	assert.Equal(t, "rising", DifficultyTrend([]float64{100, 102}))
	assert.Equal(t, "falling", DifficultyTrend([]float64{100, 98}))
	assert.Equal(t, "flat", DifficultyTrend([]float64{100, 100.5}))
	assert.Equal(t, "", DifficultyTrend([]float64{100}))
}

func TestPressureLevels(t *testing.T) {
	assert.Equal(t, model.PressureHigh, MempoolPressure(60000))
	assert.Equal(t, model.PressureMedium, MempoolPressure(20000))
	assert.Equal(t, model.PressureLow, MempoolPressure(5000))

	assert.Equal(t, model.PressureHigh, GasPressure(80))
	assert.Equal(t, model.PressureMedium, GasPressure(40))
	assert.Equal(t, model.PressureLow, GasPressure(10))
}
