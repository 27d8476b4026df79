package collector

import (
	"context"

	"github.com/quantpulse/marketsnap/internal/calc"
	"github.com/quantpulse/marketsnap/internal/httpx"
	"github.com/quantpulse/marketsnap/internal/model"
)

// TaskFunc runs one collection task. It never panics past the scheduler and
// never returns an error: every outcome is encoded in the Result.
type TaskFunc func(ctx context.Context) model.Result

// Task is one declared slot in a collection cycle. Sequential tasks share a
// strict-rate-limit provider and run one at a time with a fixed gap; the rest
// fan out on the worker pool.
type Task struct {
	Name       string
	Sequential bool
	Run        TaskFunc
}

// DerivedTask runs after fan-in, reading series other tasks already placed in
// the snapshot. No network.
type DerivedTask struct {
	Name string
	Run  func(snap *model.Snapshot) model.Result
}

// fetch adapts a typed provider call into a TaskFunc, classifying any error
// by its fetch reason.
func fetch[T any](fn func(ctx context.Context) (T, error)) TaskFunc {
	return func(ctx context.Context) model.Result {
		v, err := fn(ctx)
		if err != nil {
			return model.Errorf(httpx.Reason(err), "%v", err)
		}
		return model.Value(v)
	}
}

// disabled short-circuits a task whose feature group is off.
func disabled(group string) TaskFunc {
	return func(context.Context) model.Result {
		return model.Absent(model.ReasonFeatureDisabled, group+" disabled by configuration")
	}
}

// keyGated short-circuits before any network call when the credential is not
// configured.
func keyGated(envVar, key string, fn TaskFunc) TaskFunc {
	if key == "" {
		return func(context.Context) model.Result {
			return model.MissingCredential(envVar)
		}
	}
	return fn
}

// buildTasks assembles the declared task catalog for one collector instance.
func (c *Collector) buildTasks(p *providers) []Task {
	feats := c.cfg.Features
	keys := c.cfg.Keys

	tasks := []Task{
		// Phase 1: aggregator-backed tasks, sequential with a fixed gap.
		{Name: "crypto_prices", Sequential: true, Run: fetch(p.fetchSpotPrices)},
		{Name: "btc_dominance", Sequential: true, Run: fetch(func(ctx context.Context) (float64, error) {
			g, err := p.fetchGlobal(ctx)
			return g.BTCDominance, err
		})},
		{Name: "global_market_cap", Sequential: true, Run: fetch(p.fetchGlobal)},
		{Name: "trading_volumes", Sequential: true, Run: fetch(p.fetchTradingVolumes)},

		// Phase 2: independent sources on the worker pool.
		{Name: "binance_spot", Run: fetch(p.fetchBinanceSpot)},
		{Name: "technical_indicators", Run: fetch(p.fetchTechnicals)},
		{Name: "futures_sentiment", Run: fetch(p.fetchFuturesSentiment)},
		{Name: "fear_greed", Run: fetch(p.fetchFearGreed)},
		{Name: "historical_data", Run: fetch(p.fetchHistorical)},
	}

	gate := func(name string, on bool, group string, run TaskFunc) {
		if !on {
			run = disabled(group)
		}
		tasks = append(tasks, Task{Name: name, Run: run})
	}

	gate("m2_supply", feats.Macroeconomic, "macroeconomic", fetch(p.fetchM2))
	gate("inflation", feats.Macroeconomic, "macroeconomic", fetch(p.fetchInflation))
	gate("interest_rates", feats.Macroeconomic, "macroeconomic", fetch(p.fetchInterestRates))
	gate("stock_indices", feats.StockIndices, "stock_indices", fetch(p.fetchStockIndices))
	gate("volatility_regime", feats.StockIndices, "stock_indices", fetch(p.fetchVolatilityRegime))
	gate("commodities", feats.Commodities, "commodities", fetch(p.fetchCommodities))
	gate("social_metrics", feats.SocialMetrics, "social_metrics", fetch(p.fetchSocialMetrics))
	gate("network_health", feats.NetworkHealth, "network_health", fetch(p.fetchNetworkHealth))

	gate("order_book", feats.Enhanced, "enhanced", fetch(p.fetchOrderBook))
	gate("multi_source_sentiment", feats.Enhanced, "enhanced", fetch(p.fetchMultiSourceSentiment))
	gate("liquidation_heatmap", feats.Enhanced, "enhanced",
		keyGated("COINGLASS_API_KEY", keys.Coinglass, fetch(p.fetchLiquidations)))
	gate("economic_calendar", feats.Enhanced, "enhanced",
		keyGated("COINMARKETCAL_API_KEY", keys.CoinMarketCal, fetch(p.fetchEconomicCalendar)))
	gate("whale_movements", feats.Enhanced, "enhanced",
		keyGated("WHALE_ALERT_API_KEY", keys.WhaleAlert, fetch(p.fetchWhaleActivity)))

	return tasks
}

// buildDerived assembles the post-fan-in tasks.
func (c *Collector) buildDerived() []DerivedTask {
	if !c.cfg.Features.Correlations {
		return []DerivedTask{{Name: "correlations", Run: func(*model.Snapshot) model.Result {
			return model.Absent(model.ReasonFeatureDisabled, "correlations disabled by configuration")
		}}}
	}
	return []DerivedTask{{Name: "correlations", Run: deriveCorrelations}}
}

// deriveCorrelations computes the BTC-ETH correlation windows from the daily
// closes the historical task already fetched.
func deriveCorrelations(snap *model.Snapshot) model.Result {
	v, ok := snap.ValueOf("historical_data")
	if !ok {
		return model.Absent(model.ReasonInsufficientData, "historical_data not available")
	}
	hist, ok := v.(map[string]map[string]model.HistoricalIndicators)
	if !ok {
		return model.Absent(model.ReasonInsufficientData, "historical_data has unexpected shape")
	}

	btc, okB := hist["BTC"]["1d"]
	eth, okE := hist["ETH"]["1d"]
	if !okB || !okE {
		return model.Absent(model.ReasonInsufficientData, "daily series missing for BTC or ETH")
	}

	btcCloses := btc.Series.Closes()
	ethCloses := eth.Series.Closes()
	return model.Value(model.Correlations{Windows: []model.CorrelationWindow{
		calc.Window("BTC-ETH", btcCloses, ethCloses, 30),
		calc.Window("BTC-ETH", btcCloses, ethCloses, 7),
	}})
}
