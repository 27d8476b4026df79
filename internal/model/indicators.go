package model

// Trend describes the moving-average alignment of an asset.
type Trend string

const (
	TrendBullish     Trend = "bullish"
	TrendBullishWeak Trend = "bullish_weak"
	TrendBearish     Trend = "bearish"
	TrendBearishWeak Trend = "bearish_weak"
	TrendNeutral     Trend = "neutral"
)

// Bullish reports whether the trend is on the bullish side.
func (t Trend) Bullish() bool { return t == TrendBullish || t == TrendBullishWeak }

// Bearish reports whether the trend is on the bearish side.
func (t Trend) Bearish() bool { return t == TrendBearish || t == TrendBearishWeak }

// Signal is the discrete trade signal derived from trend and RSI.
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG BUY"
	SignalBuy        Signal = "BUY"
	SignalNeutral    Signal = "NEUTRAL"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG SELL"
)

// VolumeTrend classifies the latest volume against its 5-period average.
type VolumeTrend string

const (
	VolumeIncreasing VolumeTrend = "increasing"
	VolumeDecreasing VolumeTrend = "decreasing"
	VolumeStable     VolumeTrend = "stable"
)

// Volatility buckets ATR relative to price.
type Volatility string

const (
	VolatilityHigh   Volatility = "high"
	VolatilityMedium Volatility = "medium"
	VolatilityLow    Volatility = "low"
)

// RSIZone classifies RSI momentum.
type RSIZone string

const (
	RSIZoneBullish RSIZone = "bullish"
	RSIZoneBearish RSIZone = "bearish"
	RSIZoneNeutral RSIZone = "neutral"
)

// KeyLevels are the trade levels derived alongside a signal.
type KeyLevels struct {
	EntryLow   float64 `json:"entry_low"`
	EntryHigh  float64 `json:"entry_high"`
	TakeProfit float64 `json:"tp1"`
	TakeProfit2 float64 `json:"tp2"`
	StopLoss   float64 `json:"sl"`
	RewardRisk float64 `json:"rrr1"`
	RewardRisk2 float64 `json:"rrr2"`
}

// IndicatorBundle holds every technical figure derived for one asset in one
// cycle. Optional fields use pointers: nil means the input series was too
// short to derive them, never that the computation failed.
type IndicatorBundle struct {
	Asset            string      `json:"asset"`
	Price            float64     `json:"price"`
	SMA7             float64     `json:"sma7"`
	SMA14            float64     `json:"sma14"`
	SMA50            *float64    `json:"sma50,omitempty"`
	RSI14            *float64    `json:"rsi14,omitempty"`
	ATR              *float64    `json:"atr,omitempty"`
	Support          float64     `json:"support"`
	Resistance       float64     `json:"resistance"`
	Trend            Trend       `json:"trend"`
	RSIZone          RSIZone     `json:"rsi_zone"`
	VolumeTrend      VolumeTrend `json:"volume_trend"`
	Signal           Signal      `json:"signal"`
	SignalConfidence float64     `json:"signal_confidence"`
	Volatility       Volatility  `json:"volatility"`
	RiskLevel        float64     `json:"risk_level"`
	Levels           KeyLevels   `json:"key_levels"`
}

// HistoricalIndicators enriches a longer-timeframe series.
type HistoricalIndicators struct {
	Series CandleSeries `json:"series"`
	ATR    []float64    `json:"atr"`
	SMA20  []float64    `json:"sma20,omitempty"`
	SMA50  []float64    `json:"sma50,omitempty"`
	SMA200 []float64    `json:"sma200,omitempty"`
	RSI    []float64    `json:"rsi,omitempty"`
	MACD   *MACDSeries  `json:"macd,omitempty"`
}

// MACDSeries holds MACD(12,26,9) columns.
type MACDSeries struct {
	Line      []float64 `json:"macd"`
	Signal    []float64 `json:"macd_signal"`
	Histogram []float64 `json:"macd_histogram"`
}
