package model

import (
	"fmt"
	"time"
)

// Candle is one OHLCV bar.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// CandleSeries is an ordered bar sequence for one asset/timeframe.
// Invariant: strictly increasing timestamps.
type CandleSeries struct {
	Asset     string   `json:"asset"`
	Timeframe string   `json:"timeframe"`
	Candles   []Candle `json:"candles"`
}

// Validate checks the ordering invariant.
func (s CandleSeries) Validate() error {
	for i := 1; i < len(s.Candles); i++ {
		if !s.Candles[i].Time.After(s.Candles[i-1].Time) {
			return fmt.Errorf("candle series %s/%s: timestamp not strictly increasing at index %d", s.Asset, s.Timeframe, i)
		}
	}
	return nil
}

// Len returns the number of candles.
func (s CandleSeries) Len() int { return len(s.Candles) }

// Closes extracts the close column.
func (s CandleSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Volumes extracts the volume column.
func (s CandleSeries) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}

// LastClose returns the most recent close, or 0 for an empty series.
func (s CandleSeries) LastClose() float64 {
	if len(s.Candles) == 0 {
		return 0
	}
	return s.Candles[len(s.Candles)-1].Close
}
