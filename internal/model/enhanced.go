package model

import "time"

// OrderBookStats summarizes top-of-book depth for one symbol.
type OrderBookStats struct {
	BidVolume     float64 `json:"bid_volume"`
	AskVolume     float64 `json:"ask_volume"`
	BidAskRatio   float64 `json:"bid_ask_ratio"`
	SpreadPct     float64 `json:"spread_pct"`
	Imbalance     string  `json:"imbalance"`
	LevelsPerSide int     `json:"levels_per_side"`
}

// LiquidationStats is the 24h liquidation summary for one asset.
type LiquidationStats struct {
	Total24hUSD float64 `json:"total_24h_usd"`
	Long24hUSD  float64 `json:"long_24h_usd"`
	Short24hUSD float64 `json:"short_24h_usd"`
}

// CalendarEvent is one upcoming market-moving event.
type CalendarEvent struct {
	Title    string    `json:"title"`
	Coins    []string  `json:"coins,omitempty"`
	Date     time.Time `json:"date"`
	Category string    `json:"category,omitempty"`
}

// SourceSentiment is one sentiment reading from one source, normalized to a
// 0-100 scale.
type SourceSentiment struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Label  string  `json:"label"`
}

// MultiSourceSentiment aggregates the per-source readings.
type MultiSourceSentiment struct {
	Sources   []SourceSentiment `json:"sources"`
	Composite float64           `json:"composite"`
	Label     string            `json:"label"`
}

// WhaleTransfer is one large on-chain transfer.
type WhaleTransfer struct {
	Symbol    string    `json:"symbol"`
	AmountUSD float64   `json:"amount_usd"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// WhaleActivity summarizes recent large transfers.
type WhaleActivity struct {
	Transfers      []WhaleTransfer `json:"transfers"`
	TotalUSD       float64         `json:"total_usd"`
	ExchangeInUSD  float64         `json:"exchange_in_usd"`
	ExchangeOutUSD float64         `json:"exchange_out_usd"`
}
