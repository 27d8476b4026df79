package validate

import (
	"github.com/quantpulse/marketsnap/internal/model"
)

// Item is one point on the completeness checklist. Credit returns 0 for a
// missing figure, 1 for a present one, and may award partial credit (the
// historical items give 0.5 for a series below the sufficiency threshold).
type Item struct {
	Category string
	Name     string
	Credit   func(snap *model.Snapshot) float64
}

// Category weights. They sum to 100; a category's earned share is its item
// ratio times its weight.
var categoryWeights = map[string]float64{
	"prices":      8,
	"technicals":  22,
	"futures":     10,
	"sentiment":   10,
	"volumes":     5,
	"macro":       12,
	"indices":     8,
	"commodities": 5,
	"social":      5,
	"historical":  15,
}

// minBarsByTimeframe holds per-timeframe sufficiency thresholds below which a
// present historical series earns half credit. The weekly bound is set by the
// SMA200 the enrichment computes on long timeframes.
var minBarsByTimeframe = map[string]int{
	"1h":  24,
	"4h":  28,
	"1d":  50,
	"1wk": 200,
	"1mo": 60,
}

var assets = []string{"BTC", "ETH"}

// Registry returns the canonical 65-point checklist.
func Registry() []Item {
	var items []Item
	add := func(category, name string, credit func(*model.Snapshot) float64) {
		items = append(items, Item{Category: category, Name: name, Credit: credit})
	}

	// prices: 2 points.
	add("prices", "btc_price", spotPrice("crypto_prices", "BTC"))
	add("prices", "eth_price", spotPrice("crypto_prices", "ETH"))

	// technicals: the 7 price-derived figures per asset, 14 points. Raw price
	// is already counted in prices, and the classification fields (trend,
	// signal, volatility) are derived from these, not independent figures.
	for _, asset := range assets {
		a := asset
		tech := func(name string, check func(model.IndicatorBundle) bool) {
			add("technicals", lower(a)+"_"+name, technicalField(a, check))
		}
		tech("sma7", func(b model.IndicatorBundle) bool { return b.SMA7 > 0 })
		tech("sma14", func(b model.IndicatorBundle) bool { return b.SMA14 > 0 })
		tech("sma50", func(b model.IndicatorBundle) bool { return b.SMA50 != nil })
		tech("rsi14", func(b model.IndicatorBundle) bool { return b.RSI14 != nil })
		tech("atr", func(b model.IndicatorBundle) bool { return b.ATR != nil })
		tech("support", func(b model.IndicatorBundle) bool { return b.Support > 0 })
		tech("resistance", func(b model.IndicatorBundle) bool { return b.Resistance > 0 })
	}

	// futures: 4 figures per asset, 8 points.
	for _, asset := range assets {
		a := asset
		fut := func(name string, check func(model.FuturesSentiment) bool) {
			add("futures", lower(a)+"_"+name, futuresField(a, check))
		}
		fut("funding_rate", func(f model.FuturesSentiment) bool { return f.FundingRate != nil })
		fut("long_ratio", func(f model.FuturesSentiment) bool { return f.LongRatio != nil })
		fut("short_ratio", func(f model.FuturesSentiment) bool { return f.ShortRatio != nil })
		fut("open_interest", func(f model.FuturesSentiment) bool { return f.OpenInterest != nil })
	}

	// sentiment: 6 points.
	add("sentiment", "fear_greed_index", func(snap *model.Snapshot) float64 {
		fg, ok := valueAs[model.FearGreed](snap, "fear_greed")
		return credit(ok && fg.Index > 0)
	})
	add("sentiment", "fear_greed_classification", func(snap *model.Snapshot) float64 {
		fg, ok := valueAs[model.FearGreed](snap, "fear_greed")
		return credit(ok && fg.Classification != "")
	})
	add("sentiment", "composite_sentiment", func(snap *model.Snapshot) float64 {
		ms, ok := valueAs[model.MultiSourceSentiment](snap, "multi_source_sentiment")
		return credit(ok && ms.Composite > 0)
	})
	add("sentiment", "sentiment_sources", func(snap *model.Snapshot) float64 {
		ms, ok := valueAs[model.MultiSourceSentiment](snap, "multi_source_sentiment")
		return credit(ok && len(ms.Sources) > 0)
	})
	add("sentiment", "vix_level", regimeField("vix", func(v any) bool {
		level, ok := v.(float64)
		return ok && level > 0
	}))
	add("sentiment", "volatility_regime", regimeField("regime", func(v any) bool {
		return v != nil
	}))

	// volumes: 3 points.
	add("volumes", "btc_volume", func(snap *model.Snapshot) float64 {
		tv, ok := valueAs[model.TradingVolumes](snap, "trading_volumes")
		return credit(ok && tv.BTCVolume > 0)
	})
	add("volumes", "eth_volume", func(snap *model.Snapshot) float64 {
		tv, ok := valueAs[model.TradingVolumes](snap, "trading_volumes")
		return credit(ok && tv.ETHVolume > 0)
	})
	add("volumes", "total_volume", func(snap *model.Snapshot) float64 {
		tv, ok := valueAs[model.TradingVolumes](snap, "trading_volumes")
		return credit(ok && tv.TotalVolume > 0)
	})

	// macro: 5 points.
	add("macro", "m2_supply", macroField("m2_supply", func(m model.MacroIndicators) bool { return m.M2Supply != nil }))
	add("macro", "inflation_rate", macroField("inflation", func(m model.MacroIndicators) bool { return m.InflationRate != nil }))
	add("macro", "fed_rate", macroField("interest_rates", func(m model.MacroIndicators) bool { return m.FedRate != nil }))
	add("macro", "t10_yield", macroField("interest_rates", func(m model.MacroIndicators) bool { return m.T10Yield != nil }))
	add("macro", "t5_yield", macroField("interest_rates", func(m model.MacroIndicators) bool { return m.T5Yield != nil }))

	// indices: level plus 24h change for the three equity indices, level only
	// for the volatility index, 7 points.
	add("indices", "sp500", indexField(func(s model.StockIndices) *model.IndexQuote { return s.SP500 }))
	add("indices", "sp500_change", indexChange(func(s model.StockIndices) *model.IndexQuote { return s.SP500 }))
	add("indices", "dow_jones", indexField(func(s model.StockIndices) *model.IndexQuote { return s.DowJones }))
	add("indices", "dow_jones_change", indexChange(func(s model.StockIndices) *model.IndexQuote { return s.DowJones }))
	add("indices", "nasdaq", indexField(func(s model.StockIndices) *model.IndexQuote { return s.Nasdaq }))
	add("indices", "nasdaq_change", indexChange(func(s model.StockIndices) *model.IndexQuote { return s.Nasdaq }))
	add("indices", "vix", indexField(func(s model.StockIndices) *model.IndexQuote { return s.VIX }))

	// commodities: 4 points.
	add("commodities", "gold", commodityField(func(c model.Commodities) *float64 { return c.Gold }))
	add("commodities", "silver", commodityField(func(c model.Commodities) *float64 { return c.Silver }))
	add("commodities", "crude_oil", commodityField(func(c model.Commodities) *float64 { return c.CrudeOil }))
	add("commodities", "natural_gas", commodityField(func(c model.Commodities) *float64 { return c.NaturalGas }))

	// social: 6 points.
	add("social", "forum_posts", socialField(func(s model.SocialMetrics) bool { return s.ForumPosts != nil }))
	add("social", "forum_topics", socialField(func(s model.SocialMetrics) bool { return s.ForumTopics != nil }))
	add("social", "btc_github_stars", socialField(func(s model.SocialMetrics) bool { return s.BTCGithubStars != nil }))
	add("social", "eth_github_stars", socialField(func(s model.SocialMetrics) bool { return s.ETHGithubStars != nil }))
	add("social", "btc_recent_commits", socialField(func(s model.SocialMetrics) bool { return s.BTCRecentCommits != nil }))
	add("social", "eth_recent_commits", socialField(func(s model.SocialMetrics) bool { return s.ETHRecentCommits != nil }))

	// historical: 5 timeframes per asset, 10 points, half credit below the
	// timeframe's sufficiency threshold.
	for _, asset := range assets {
		for _, tf := range []string{"1h", "4h", "1d", "1wk", "1mo"} {
			a, t := asset, tf
			add("historical", lower(a)+"_"+t, func(snap *model.Snapshot) float64 {
				hist, ok := valueAs[map[string]map[string]model.HistoricalIndicators](snap, "historical_data")
				if !ok {
					return 0
				}
				frame, ok := hist[a][t]
				if !ok || frame.Series.Len() == 0 {
					return 0
				}
				if frame.Series.Len() < minBarsByTimeframe[t] {
					return 0.5
				}
				return 1
			})
		}
	}

	return items
}

func credit(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

func lower(asset string) string {
	if asset == "BTC" {
		return "btc"
	}
	return "eth"
}

func valueAs[T any](snap *model.Snapshot, task string) (T, bool) {
	var zero T
	v, ok := snap.ValueOf(task)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func spotPrice(task, asset string) func(*model.Snapshot) float64 {
	return func(snap *model.Snapshot) float64 {
		sp, ok := valueAs[model.SpotPrices](snap, task)
		if !ok {
			return 0
		}
		if asset == "BTC" {
			return credit(sp.BTC > 0)
		}
		return credit(sp.ETH > 0)
	}
}

func technicalField(asset string, check func(model.IndicatorBundle) bool) func(*model.Snapshot) float64 {
	return func(snap *model.Snapshot) float64 {
		bundles, ok := valueAs[map[string]model.IndicatorBundle](snap, "technical_indicators")
		if !ok {
			return 0
		}
		b, ok := bundles[asset]
		if !ok {
			return 0
		}
		return credit(check(b))
	}
}

func futuresField(asset string, check func(model.FuturesSentiment) bool) func(*model.Snapshot) float64 {
	return func(snap *model.Snapshot) float64 {
		all, ok := valueAs[map[string]model.FuturesSentiment](snap, "futures_sentiment")
		if !ok {
			return 0
		}
		f, ok := all[asset]
		if !ok {
			return 0
		}
		return credit(check(f))
	}
}

func macroField(task string, check func(model.MacroIndicators) bool) func(*model.Snapshot) float64 {
	return func(snap *model.Snapshot) float64 {
		m, ok := valueAs[model.MacroIndicators](snap, task)
		if !ok {
			return 0
		}
		return credit(check(m))
	}
}

func indexField(pick func(model.StockIndices) *model.IndexQuote) func(*model.Snapshot) float64 {
	return func(snap *model.Snapshot) float64 {
		s, ok := valueAs[model.StockIndices](snap, "stock_indices")
		if !ok {
			return 0
		}
		q := pick(s)
		return credit(q != nil && q.Level > 0)
	}
}

func indexChange(pick func(model.StockIndices) *model.IndexQuote) func(*model.Snapshot) float64 {
	return func(snap *model.Snapshot) float64 {
		s, ok := valueAs[model.StockIndices](snap, "stock_indices")
		if !ok {
			return 0
		}
		q := pick(s)
		return credit(q != nil && q.Change24h != nil)
	}
}

// regimeField reads one key out of the volatility-regime payload.
func regimeField(key string, check func(any) bool) func(*model.Snapshot) float64 {
	return func(snap *model.Snapshot) float64 {
		m, ok := valueAs[map[string]any](snap, "volatility_regime")
		if !ok {
			return 0
		}
		v, ok := m[key]
		return credit(ok && check(v))
	}
}

func commodityField(pick func(model.Commodities) *float64) func(*model.Snapshot) float64 {
	return func(snap *model.Snapshot) float64 {
		c, ok := valueAs[model.Commodities](snap, "commodities")
		if !ok {
			return 0
		}
		return credit(pick(c) != nil)
	}
}

func socialField(check func(model.SocialMetrics) bool) func(*model.Snapshot) float64 {
	return func(snap *model.Snapshot) float64 {
		s, ok := valueAs[model.SocialMetrics](snap, "social_metrics")
		if !ok {
			return 0
		}
		return credit(check(s))
	}
}
