package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/quantpulse/marketsnap/internal/calc"
	"github.com/quantpulse/marketsnap/internal/httpx"
	"github.com/quantpulse/marketsnap/internal/indicators"
	"github.com/quantpulse/marketsnap/internal/model"
)

const yahooChartBase = "https://query1.finance.yahoo.com/v8/finance/chart/"

// yahooChart is the subset of the chart API response the tasks consume.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// fetchChart fetches one symbol's chart, memoizing the raw body so tasks that
// share a symbol in the same cycle (indices and the regime proxy both read
// ^VIX) cost one upstream call.
func (p *providers) fetchChart(ctx context.Context, symbol, rng, interval string) (*yahooChart, error) {
	key := "yahoo:" + symbol + ":" + rng + ":" + interval

	raw, ok := p.cache.Get(ctx, key)
	if !ok {
		body, err := p.client.FetchJSON(ctx, httpx.Request{
			URL:      yahooChartBase + url.PathEscape(symbol),
			Params:   url.Values{"range": {rng}, "interval": {interval}},
			Provider: "yahoo",
			Class:    httpx.ClassAggregator,
		})
		if err != nil {
			return nil, err
		}
		raw = body
		p.cache.Set(ctx, key, raw, p.cacheTTL)
	}

	var chart yahooChart
	if err := json.Unmarshal(raw, &chart); err != nil {
		return nil, fmt.Errorf("decode chart for %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart for %s: empty result", symbol)
	}
	return &chart, nil
}

// quote returns the latest level and 24h percent change for a symbol.
func (p *providers) quote(ctx context.Context, symbol string) (model.IndexQuote, error) {
	chart, err := p.fetchChart(ctx, symbol, "5d", "1d")
	if err != nil {
		return model.IndexQuote{}, err
	}
	meta := chart.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return model.IndexQuote{}, fmt.Errorf("quote for %s: zero price", symbol)
	}
	q := model.IndexQuote{Level: meta.RegularMarketPrice}
	if meta.PreviousClose > 0 {
		change := (meta.RegularMarketPrice - meta.PreviousClose) / meta.PreviousClose * 100
		q.Change24h = &change
	}
	return q, nil
}

// fetchStockIndices returns the equity context. Symbols fail independently;
// at least one must resolve.
func (p *providers) fetchStockIndices(ctx context.Context) (model.StockIndices, error) {
	var out model.StockIndices
	var lastErr error
	got := 0

	assign := func(symbol string, dst **model.IndexQuote) {
		q, err := p.quote(ctx, symbol)
		if err != nil {
			lastErr = err
			return
		}
		*dst = &q
		got++
	}
	assign("^GSPC", &out.SP500)
	assign("^DJI", &out.DowJones)
	assign("^IXIC", &out.Nasdaq)
	assign("^VIX", &out.VIX)

	if got == 0 {
		return model.StockIndices{}, fmt.Errorf("no index quote resolved: %w", lastErr)
	}
	return out, nil
}

// fetchCommodities returns front-month futures levels.
func (p *providers) fetchCommodities(ctx context.Context) (model.Commodities, error) {
	var out model.Commodities
	var lastErr error
	got := 0

	assign := func(symbol string, dst **float64) {
		q, err := p.quote(ctx, symbol)
		if err != nil {
			lastErr = err
			return
		}
		level := q.Level
		*dst = &level
		got++
	}
	assign("GC=F", &out.Gold)
	assign("SI=F", &out.Silver)
	assign("CL=F", &out.CrudeOil)
	assign("NG=F", &out.NaturalGas)

	if got == 0 {
		return model.Commodities{}, fmt.Errorf("no commodity quote resolved: %w", lastErr)
	}
	return out, nil
}

// fetchTreasuryYields returns the 10Y and 5Y yields used to complete the
// interest-rates payload alongside the fed funds rate.
func (p *providers) fetchTreasuryYields(ctx context.Context) (t10, t5 *float64, err error) {
	if q, qerr := p.quote(ctx, "^TNX"); qerr == nil {
		v := q.Level
		t10 = &v
	} else {
		err = qerr
	}
	if q, qerr := p.quote(ctx, "^FVX"); qerr == nil {
		v := q.Level
		t5 = &v
	} else {
		err = qerr
	}
	if t10 == nil && t5 == nil {
		return nil, nil, err
	}
	return t10, t5, nil
}

// fetchVolatilityRegime reads the VIX level and grades the cross-asset
// regime. The chart body is shared with the stock-indices task via the cache.
func (p *providers) fetchVolatilityRegime(ctx context.Context) (map[string]any, error) {
	q, err := p.quote(ctx, "^VIX")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"vix":    q.Level,
		"regime": calc.ClassifyRegime(q.Level),
	}, nil
}

// historicalTimeframes maps each stored timeframe to its chart range and
// interval. The chart API has no 4h interval, so that frame is fetched as 1h
// bars and resampled into 4h buckets.
var historicalTimeframes = []struct {
	Timeframe string
	Range     string
	Interval  string
	Bucket    time.Duration
}{
	{"1h", "1mo", "1h", 0},
	{"4h", "3mo", "1h", 4 * time.Hour},
	{"1d", "1y", "1d", 0},
	{"1wk", "5y", "1wk", 0},
	{"1mo", "10y", "1mo", 0},
}

var yahooCryptoSymbols = map[string]string{"BTC": "BTC-USD", "ETH": "ETH-USD"}

// fetchHistorical pulls multi-timeframe candle history per asset and enriches
// each series with rolling indicator columns. Timeframes fail independently.
func (p *providers) fetchHistorical(ctx context.Context) (map[string]map[string]model.HistoricalIndicators, error) {
	out := make(map[string]map[string]model.HistoricalIndicators, len(yahooCryptoSymbols))
	var lastErr error

	for asset, symbol := range yahooCryptoSymbols {
		frames := make(map[string]model.HistoricalIndicators, len(historicalTimeframes))
		for _, tf := range historicalTimeframes {
			series, err := p.chartSeries(ctx, asset, symbol, tf.Timeframe, tf.Range, tf.Interval)
			if err != nil {
				lastErr = err
				continue
			}
			if tf.Bucket > 0 {
				series = resampleCandles(series, tf.Bucket)
			}
			frames[tf.Timeframe] = indicators.EnrichHistorical(series)
		}
		if len(frames) > 0 {
			out[asset] = frames
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no historical series resolved: %w", lastErr)
	}
	return out, nil
}

// resampleCandles merges consecutive candles into fixed buckets aligned on
// the bucket boundary: first open, max high, min low, last close, summed
// volume. Input candles are already strictly ordered, so the output is too.
func resampleCandles(series model.CandleSeries, bucket time.Duration) model.CandleSeries {
	out := model.CandleSeries{Asset: series.Asset, Timeframe: series.Timeframe}
	for _, c := range series.Candles {
		start := c.Time.Truncate(bucket)
		n := len(out.Candles)
		if n == 0 || !out.Candles[n-1].Time.Equal(start) {
			c.Time = start
			out.Candles = append(out.Candles, c)
			continue
		}
		cur := &out.Candles[n-1]
		if c.High > cur.High {
			cur.High = c.High
		}
		if c.Low < cur.Low {
			cur.Low = c.Low
		}
		cur.Close = c.Close
		cur.Volume += c.Volume
	}
	return out
}

// chartSeries converts a chart response into a candle series, dropping rows
// with null closes (Yahoo pads partial periods).
func (p *providers) chartSeries(ctx context.Context, asset, symbol, timeframe, rng, interval string) (model.CandleSeries, error) {
	chart, err := p.fetchChart(ctx, symbol, rng, interval)
	if err != nil {
		return model.CandleSeries{}, err
	}
	res := chart.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return model.CandleSeries{}, fmt.Errorf("chart for %s: no quote block", symbol)
	}
	q := res.Indicators.Quote[0]

	series := model.CandleSeries{Asset: asset, Timeframe: timeframe}
	for i, ts := range res.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		c := model.Candle{Time: time.Unix(ts, 0).UTC(), Close: *q.Close[i]}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		series.Candles = append(series.Candles, c)
	}
	if len(series.Candles) == 0 {
		return model.CandleSeries{}, fmt.Errorf("chart for %s: no usable candles", symbol)
	}
	if err := series.Validate(); err != nil {
		return model.CandleSeries{}, err
	}
	return series, nil
}
