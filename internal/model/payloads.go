package model

// SpotPrices is the primary-source price task payload.
type SpotPrices struct {
	BTC float64 `json:"btc"`
	ETH float64 `json:"eth"`
}

// FuturesSentiment is the per-asset derivatives payload.
type FuturesSentiment struct {
	FundingRate  *float64 `json:"funding_rate,omitempty"`
	LongRatio    *float64 `json:"long_ratio,omitempty"`
	ShortRatio   *float64 `json:"short_ratio,omitempty"`
	OpenInterest *float64 `json:"open_interest,omitempty"`
}

// FearGreed is the alternative.me sentiment payload.
type FearGreed struct {
	Index          int    `json:"index"`
	Classification string `json:"classification"`
}

// GlobalMarket is the aggregator global payload shared by the dominance and
// market-cap tasks.
type GlobalMarket struct {
	BTCDominance   float64 `json:"btc_dominance"`
	TotalMarketCap float64 `json:"total_market_cap"`
	CapChange24h   float64 `json:"cap_change_24h"`
	TotalVolume    float64 `json:"total_volume"`
}

// TradingVolumes holds 24h volumes per asset plus the market-wide total.
type TradingVolumes struct {
	BTCVolume   float64 `json:"btc_volume"`
	ETHVolume   float64 `json:"eth_volume"`
	TotalVolume float64 `json:"total_volume"`
}

// MacroIndicators aggregates the macroeconomic task payloads.
type MacroIndicators struct {
	M2Supply      *float64 `json:"m2_supply,omitempty"`
	M2Date        string   `json:"m2_date,omitempty"`
	InflationRate *float64 `json:"inflation_rate,omitempty"`
	InflationDate string   `json:"inflation_date,omitempty"`
	FedRate       *float64 `json:"fed_rate,omitempty"`
	T10Yield      *float64 `json:"t10_yield,omitempty"`
	T5Yield       *float64 `json:"t5_yield,omitempty"`
	RateDate      string   `json:"rate_date,omitempty"`
}

// IndexQuote is one stock-index level with its 24h change.
type IndexQuote struct {
	Level     float64  `json:"level"`
	Change24h *float64 `json:"change_24h,omitempty"`
}

// StockIndices is the equity-context payload.
type StockIndices struct {
	SP500    *IndexQuote `json:"sp500,omitempty"`
	DowJones *IndexQuote `json:"dow_jones,omitempty"`
	Nasdaq   *IndexQuote `json:"nasdaq,omitempty"`
	VIX      *IndexQuote `json:"vix,omitempty"`
}

// Commodities is the commodity-price payload.
type Commodities struct {
	Gold       *float64 `json:"gold,omitempty"`
	Silver     *float64 `json:"silver,omitempty"`
	CrudeOil   *float64 `json:"crude_oil,omitempty"`
	NaturalGas *float64 `json:"natural_gas,omitempty"`
}

// SocialMetrics aggregates forum and source-hosting activity.
type SocialMetrics struct {
	ForumPosts       *int64 `json:"forum_posts,omitempty"`
	ForumTopics      *int64 `json:"forum_topics,omitempty"`
	BTCGithubStars   *int64 `json:"btc_github_stars,omitempty"`
	ETHGithubStars   *int64 `json:"eth_github_stars,omitempty"`
	BTCRecentCommits *int64 `json:"btc_recent_commits,omitempty"`
	ETHRecentCommits *int64 `json:"eth_recent_commits,omitempty"`
}

// PressureLevel grades a congestion-style metric.
type PressureLevel string

const (
	PressureLow    PressureLevel = "low"
	PressureMedium PressureLevel = "medium"
	PressureHigh   PressureLevel = "high"
)

// NetworkHealth holds chain-level metrics; every field is independently
// optional because each comes from its own endpoint.
type NetworkHealth struct {
	HashRateTHs      *float64       `json:"hash_rate_th_s,omitempty"`
	MiningDifficulty *float64       `json:"mining_difficulty,omitempty"`
	DifficultyTrend  string         `json:"difficulty_trend,omitempty"`
	MempoolPressure  *PressureLevel `json:"mempool_pressure,omitempty"`
	GasPressure      *PressureLevel `json:"gas_pressure,omitempty"`
	GasPriceGwei     *float64       `json:"gas_price_gwei,omitempty"`
}

// Regime is the cross-asset risk regime derived from a volatility proxy.
type Regime string

const (
	RegimeRiskOff Regime = "RISK_OFF"
	RegimeRiskOn  Regime = "RISK_ON"
	RegimeNeutral Regime = "NEUTRAL"
)

// CorrelationWindow is one Pearson correlation over a paired-close window.
type CorrelationWindow struct {
	Pair           string  `json:"pair"`
	WindowDays     int     `json:"window_days"`
	Coefficient    float64 `json:"coefficient"`
	Classification string  `json:"classification"`
	Samples        int     `json:"samples"`
}

// Correlations is the derived correlations payload.
type Correlations struct {
	Windows []CorrelationWindow `json:"windows"`
}
