package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantpulse/marketsnap/internal/model"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func fullBundle(price float64) model.IndicatorBundle {
	return model.IndicatorBundle{
		Asset: "BTC", Price: price, SMA7: price, SMA14: price,
		SMA50: f64(price), RSI14: f64(55), ATR: f64(price * 0.02),
		Support: price * 0.95, Resistance: price * 1.05,
		Trend: model.TrendBullish, RSIZone: model.RSIZoneNeutral,
		VolumeTrend: model.VolumeStable, Signal: model.SignalBuy,
		SignalConfidence: 7, Volatility: model.VolatilityMedium, RiskLevel: 5,
	}
}

func histFrames(bars int) map[string]model.HistoricalIndicators {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]model.Candle, bars)
	for i := range candles {
		candles[i] = model.Candle{Time: base.AddDate(0, 0, i), Close: 100 + float64(i)}
	}
	frames := make(map[string]model.HistoricalIndicators, 5)
	for _, tf := range []string{"1h", "4h", "1d", "1wk", "1mo"} {
		frames[tf] = model.HistoricalIndicators{
			Series: model.CandleSeries{Asset: "x", Timeframe: tf, Candles: candles},
		}
	}
	return frames
}

// fullSnapshot has every checklist figure present.
func fullSnapshot() *model.Snapshot {
	snap := model.NewSnapshot(time.Now())
	res := snap.Results

	res["crypto_prices"] = model.Value(model.SpotPrices{BTC: 30000, ETH: 2000})
	res["binance_spot"] = model.Value(model.SpotPrices{BTC: 30010, ETH: 2001})
	res["technical_indicators"] = model.Value(map[string]model.IndicatorBundle{
		"BTC": fullBundle(30000), "ETH": fullBundle(2000),
	})
	fs := model.FuturesSentiment{FundingRate: f64(0.0001), LongRatio: f64(1.8), ShortRatio: f64(1.0), OpenInterest: f64(80000)}
	res["futures_sentiment"] = model.Value(map[string]model.FuturesSentiment{"BTC": fs, "ETH": fs})
	res["order_book"] = model.Value(map[string]model.OrderBookStats{
		"BTC": {BidVolume: 10, AskVolume: 9, BidAskRatio: 1.1, Imbalance: "balanced"},
		"ETH": {BidVolume: 10, AskVolume: 9, BidAskRatio: 1.1, Imbalance: "balanced"},
	})
	res["fear_greed"] = model.Value(model.FearGreed{Index: 60, Classification: "Greed"})
	res["multi_source_sentiment"] = model.Value(model.MultiSourceSentiment{
		Sources: []model.SourceSentiment{{Source: "fear_greed", Score: 60, Label: "Greed"}}, Composite: 60, Label: "Greed",
	})
	res["volatility_regime"] = model.Value(map[string]any{"vix": 18.0, "regime": model.RegimeNeutral})
	res["trading_volumes"] = model.Value(model.TradingVolumes{BTCVolume: 1e10, ETHVolume: 5e9, TotalVolume: 8e10})
	res["m2_supply"] = model.Value(model.MacroIndicators{M2Supply: f64(20900), M2Date: "2026-07-01"})
	res["inflation"] = model.Value(model.MacroIndicators{InflationRate: f64(2.9), InflationDate: "Jul 2026"})
	res["interest_rates"] = model.Value(model.MacroIndicators{FedRate: f64(4.5), T10Yield: f64(4.2), T5Yield: f64(4.0), RateDate: "2026-08-01"})
	q := model.IndexQuote{Level: 5000, Change24h: f64(0.4)}
	res["stock_indices"] = model.Value(model.StockIndices{SP500: &q, DowJones: &q, Nasdaq: &q, VIX: &model.IndexQuote{Level: 18}})
	res["commodities"] = model.Value(model.Commodities{Gold: f64(2400), Silver: f64(28), CrudeOil: f64(80), NaturalGas: f64(2.5)})
	res["social_metrics"] = model.Value(model.SocialMetrics{
		ForumPosts: i64(65000000), ForumTopics: i64(1200000),
		BTCGithubStars: i64(75000), ETHGithubStars: i64(46000),
		BTCRecentCommits: i64(45), ETHRecentCommits: i64(60),
	})
	res["historical_data"] = model.Value(map[string]map[string]model.HistoricalIndicators{
		"BTC": histFrames(200), "ETH": histFrames(200),
	})
	return snap
}

func TestRegistryHasSixtyFivePoints(t *testing.T) {
	items := Registry()
	assert.Len(t, items, 65)

	perCategory := map[string]int{}
	for _, item := range items {
		perCategory[item.Category]++
		_, known := categoryWeights[item.Category]
		assert.True(t, known, "item %s has unknown category %s", item.Name, item.Category)
	}
	assert.Equal(t, map[string]int{
		"prices": 2, "technicals": 14, "futures": 8, "sentiment": 6,
		"volumes": 3, "macro": 5, "indices": 7, "commodities": 4,
		"social": 6, "historical": 10,
	}, perCategory)
}

func TestCategoryWeightsSumToHundred(t *testing.T) {
	sum := 0.0
	for _, w := range categoryWeights {
		sum += w
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestFullSnapshotScoresHundred(t *testing.T) {
	report := New().Score(fullSnapshot())
	assert.InDelta(t, 100.0, report.Overall, 1e-9)
	assert.True(t, report.Sufficient)
	assert.Empty(t, report.MissingItems)
	assert.Empty(t, report.Issues)
}

func TestPricesOnlySnapshotScoresBelowTen(t *testing.T) {
	snap := model.NewSnapshot(time.Now())
	snap.Results["crypto_prices"] = model.Value(model.SpotPrices{BTC: 30000, ETH: 2000})

	report := New().Score(snap)
	// Both prices present: the full prices weight and nothing else.
	assert.InDelta(t, 8.0, report.Overall, 1e-9)
	assert.Less(t, report.Overall, 10.0)
	assert.False(t, report.Sufficient)
	assert.Equal(t, 100.0, report.Categories["prices"].Percent)
	assert.Equal(t, 0.0, report.Categories["technicals"].Percent)
	assert.Contains(t, report.MissingItems, "technicals.btc_rsi14")
}

func TestScoreMonotonicity(t *testing.T) {
	snap := model.NewSnapshot(time.Now())
	v := New()
	prev := v.Score(snap).Overall
	assert.Equal(t, 0.0, prev)

	full := fullSnapshot()
	// Add task results one at a time; the score must never decrease.
	for name, r := range full.Results {
		snap.Results[name] = r
		got := v.Score(snap).Overall
		assert.GreaterOrEqual(t, got, prev, "adding %s decreased the score", name)
		prev = got
	}
	assert.InDelta(t, 100.0, prev, 1e-9)
}

func TestSpotDivergenceRaisesIssue(t *testing.T) {
	snap := fullSnapshot()
	// 2% apart on BTC.
	snap.Results["binance_spot"] = model.Value(model.SpotPrices{BTC: 30600, ETH: 2001})

	report := New().Score(snap)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "BTC")
	assert.Contains(t, report.Issues[0], "diverges")
	// Completeness is unaffected; divergence is a quality issue, not a gap.
	assert.InDelta(t, 100.0, report.Overall, 1e-9)
}

func TestSpotDivergenceWithinToleranceIsQuiet(t *testing.T) {
	snap := fullSnapshot()
	snap.Results["binance_spot"] = model.Value(model.SpotPrices{BTC: 30150, ETH: 2000}) // 0.5%
	report := New().Score(snap)
	assert.Empty(t, report.Issues)
}

func TestShortHistoricalSeriesEarnsHalfCredit(t *testing.T) {
	snap := fullSnapshot()
	snap.Results["historical_data"] = model.Value(map[string]map[string]model.HistoricalIndicators{
		"BTC": histFrames(10), "ETH": histFrames(200),
	})

	report := New().Score(snap)
	hist := report.Categories["historical"]
	// BTC's five frames earn half credit each: 5*0.5 + 5*1 of 10.
	assert.InDelta(t, 75.0, hist.Percent, 1e-9)
	assert.Len(t, report.Warnings, 5)
	assert.Contains(t, report.Warnings[0], "half credit")
	assert.Less(t, report.Overall, 100.0)
}

func TestHistoricalThresholdsArePerTimeframe(t *testing.T) {
	snap := fullSnapshot()
	// 60 bars clears the hourly, 4h, daily and monthly thresholds but is far
	// too short for the SMA200 the weekly frame feeds.
	snap.Results["historical_data"] = model.Value(map[string]map[string]model.HistoricalIndicators{
		"BTC": histFrames(60), "ETH": histFrames(60),
	})

	report := New().Score(snap)
	hist := report.Categories["historical"]
	assert.InDelta(t, 90.0, hist.Percent, 1e-9)
	require.Len(t, report.Warnings, 2)
	assert.Contains(t, report.Warnings[0], "historical.btc_1wk")
	assert.Contains(t, report.Warnings[1], "historical.eth_1wk")
}

func TestMissingCredentialProducesRecommendation(t *testing.T) {
	snap := fullSnapshot()
	snap.Results["liquidation_heatmap"] = model.MissingCredential("COINGLASS_API_KEY")

	report := New().Score(snap)
	require.NotEmpty(t, report.Recommendations)
	found := false
	for _, rec := range report.Recommendations {
		if rec == "liquidation_heatmap: set COINGLASS_API_KEY to enable this source" {
			found = true
		}
	}
	assert.True(t, found, "recommendations: %v", report.Recommendations)
}

func TestRateLimitedProducesRecommendation(t *testing.T) {
	snap := model.NewSnapshot(time.Now())
	snap.Results["fear_greed"] = model.Errorf(model.ReasonRateLimited, "429 after retries")

	report := New().Score(snap)
	require.Len(t, report.Recommendations, 1)
	assert.Contains(t, report.Recommendations[0], "rate limited")
}

func TestInsufficientLabelBelowThreshold(t *testing.T) {
	snap := model.NewSnapshot(time.Now())
	snap.Results["crypto_prices"] = model.Value(model.SpotPrices{BTC: 30000, ETH: 2000})
	snap.Results["trading_volumes"] = model.Value(model.TradingVolumes{BTCVolume: 1, ETHVolume: 1, TotalVolume: 1})

	report := New().Score(snap)
	assert.False(t, report.Sufficient, "13%% is far below the sufficiency threshold")

	full := New().Score(fullSnapshot())
	assert.True(t, full.Sufficient)
}

func TestMissingItemsAreNamed(t *testing.T) {
	snap := model.NewSnapshot(time.Now())
	report := New().Score(snap)
	assert.Len(t, report.MissingItems, 65)
	assert.Contains(t, report.MissingItems, "prices.btc_price")
	assert.Contains(t, report.MissingItems, "historical.btc_4h")
	assert.Contains(t, report.MissingItems, "historical.eth_1mo")
}
