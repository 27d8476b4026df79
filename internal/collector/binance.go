package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/quantpulse/marketsnap/internal/httpx"
	"github.com/quantpulse/marketsnap/internal/indicators"
	"github.com/quantpulse/marketsnap/internal/model"
)

const (
	binanceSpotBase    = "https://api.binance.com"
	binanceFuturesBase = "https://fapi.binance.com"

	klinesLimit = 100
)

var binanceSymbols = map[string]string{"BTC": "BTCUSDT", "ETH": "ETHUSDT"}

// fetchBinanceSpot returns BTC/ETH spot from the exchange ticker. This is the
// secondary price source used for cross-validation against the aggregator.
func (p *providers) fetchBinanceSpot(ctx context.Context) (model.SpotPrices, error) {
	var out model.SpotPrices
	for asset, symbol := range binanceSymbols {
		var resp struct {
			Price string `json:"price"`
		}
		err := p.client.DecodeJSON(ctx, httpx.Request{
			URL:      binanceSpotBase + "/api/v3/ticker/price",
			Params:   url.Values{"symbol": {symbol}},
			Provider: "binance",
			Class:    httpx.ClassExchange,
		}, &resp)
		if err != nil {
			return model.SpotPrices{}, err
		}
		price, err := strconv.ParseFloat(resp.Price, 64)
		if err != nil {
			return model.SpotPrices{}, fmt.Errorf("parse %s ticker price %q: %w", symbol, resp.Price, err)
		}
		switch asset {
		case "BTC":
			out.BTC = price
		case "ETH":
			out.ETH = price
		}
	}
	return out, nil
}

// fetchKlines returns one candle series from the exchange klines endpoint.
// Rows arrive as mixed-type arrays; numeric columns are strings.
func (p *providers) fetchKlines(ctx context.Context, asset, symbol, interval string, limit int) (model.CandleSeries, error) {
	var rows [][]any
	err := p.client.DecodeJSON(ctx, httpx.Request{
		URL: binanceSpotBase + "/api/v3/klines",
		Params: url.Values{
			"symbol":   {symbol},
			"interval": {interval},
			"limit":    {strconv.Itoa(limit)},
		},
		Provider: "binance",
		Class:    httpx.ClassExchange,
	}, &rows)
	if err != nil {
		return model.CandleSeries{}, err
	}

	series := model.CandleSeries{Asset: asset, Timeframe: interval, Candles: make([]model.Candle, 0, len(rows))}
	for i, row := range rows {
		if len(row) < 6 {
			return model.CandleSeries{}, fmt.Errorf("klines row %d: want 6+ columns, got %d", i, len(row))
		}
		c, err := parseKline(row)
		if err != nil {
			return model.CandleSeries{}, fmt.Errorf("klines row %d: %w", i, err)
		}
		series.Candles = append(series.Candles, c)
	}
	if err := series.Validate(); err != nil {
		return model.CandleSeries{}, err
	}
	return series, nil
}

func parseKline(row []any) (model.Candle, error) {
	ms, ok := row[0].(float64)
	if !ok {
		return model.Candle{}, fmt.Errorf("open time is %T, want number", row[0])
	}
	cols := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := row[i].(string)
		if !ok {
			return model.Candle{}, fmt.Errorf("column %d is %T, want string", i, row[i])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return model.Candle{}, fmt.Errorf("column %d: %w", i, err)
		}
		cols[i-1] = v
	}
	return model.Candle{
		Time:   time.UnixMilli(int64(ms)).UTC(),
		Open:   cols[0],
		High:   cols[1],
		Low:    cols[2],
		Close:  cols[3],
		Volume: cols[4],
	}, nil
}

// fetchTechnicals pulls hourly klines for each asset and derives the full
// indicator bundle.
func (p *providers) fetchTechnicals(ctx context.Context) (map[string]model.IndicatorBundle, error) {
	out := make(map[string]model.IndicatorBundle, len(binanceSymbols))
	for asset, symbol := range binanceSymbols {
		series, err := p.fetchKlines(ctx, asset, symbol, "1h", klinesLimit)
		if err != nil {
			return nil, fmt.Errorf("%s klines: %w", asset, err)
		}
		bundle, err := indicators.Compute(series)
		if err != nil {
			return nil, fmt.Errorf("%s indicators: %w", asset, err)
		}
		out[asset] = bundle
	}
	return out, nil
}

// fetchFuturesSentiment assembles funding rate, long/short ratio and open
// interest per asset. Each sub-endpoint is independently optional; a partial
// payload beats no payload.
func (p *providers) fetchFuturesSentiment(ctx context.Context) (map[string]model.FuturesSentiment, error) {
	out := make(map[string]model.FuturesSentiment, len(binanceSymbols))
	var lastErr error
	for asset, symbol := range binanceSymbols {
		fs := model.FuturesSentiment{}
		got := false

		var premium struct {
			LastFundingRate string `json:"lastFundingRate"`
		}
		err := p.client.DecodeJSON(ctx, httpx.Request{
			URL:      binanceFuturesBase + "/fapi/v1/premiumIndex",
			Params:   url.Values{"symbol": {symbol}},
			Provider: "binance-futures",
			Class:    httpx.ClassExchange,
		}, &premium)
		if err == nil {
			if rate, perr := strconv.ParseFloat(premium.LastFundingRate, 64); perr == nil {
				fs.FundingRate = &rate
				got = true
			}
		} else {
			lastErr = err
		}

		var ratios []struct {
			LongAccount  string `json:"longAccount"`
			ShortAccount string `json:"shortAccount"`
		}
		err = p.client.DecodeJSON(ctx, httpx.Request{
			URL:      binanceFuturesBase + "/futures/data/globalLongShortAccountRatio",
			Params:   url.Values{"symbol": {symbol}, "period": {"1h"}, "limit": {"1"}},
			Provider: "binance-futures",
			Class:    httpx.ClassExchange,
		}, &ratios)
		if err == nil && len(ratios) > 0 {
			if long, perr := strconv.ParseFloat(ratios[0].LongAccount, 64); perr == nil {
				fs.LongRatio = &long
				got = true
			}
			if short, perr := strconv.ParseFloat(ratios[0].ShortAccount, 64); perr == nil {
				fs.ShortRatio = &short
			}
		} else if err != nil {
			lastErr = err
		}

		var oi struct {
			OpenInterest string `json:"openInterest"`
		}
		err = p.client.DecodeJSON(ctx, httpx.Request{
			URL:      binanceFuturesBase + "/fapi/v1/openInterest",
			Params:   url.Values{"symbol": {symbol}},
			Provider: "binance-futures",
			Class:    httpx.ClassExchange,
		}, &oi)
		if err == nil {
			if v, perr := strconv.ParseFloat(oi.OpenInterest, 64); perr == nil {
				fs.OpenInterest = &v
				got = true
			}
		} else {
			lastErr = err
		}

		if got {
			out[asset] = fs
		}
	}
	if len(out) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("no futures sentiment data for any asset")
	}
	return out, nil
}

// fetchOrderBook summarizes the top 20 depth levels per symbol.
func (p *providers) fetchOrderBook(ctx context.Context) (map[string]model.OrderBookStats, error) {
	out := make(map[string]model.OrderBookStats, len(binanceSymbols))
	for asset, symbol := range binanceSymbols {
		var depth struct {
			Bids [][2]string `json:"bids"`
			Asks [][2]string `json:"asks"`
		}
		err := p.client.DecodeJSON(ctx, httpx.Request{
			URL:      binanceSpotBase + "/api/v3/depth",
			Params:   url.Values{"symbol": {symbol}, "limit": {"20"}},
			Provider: "binance",
			Class:    httpx.ClassExchange,
		}, &depth)
		if err != nil {
			return nil, fmt.Errorf("%s depth: %w", asset, err)
		}
		stats, err := summarizeDepth(depth.Bids, depth.Asks)
		if err != nil {
			return nil, fmt.Errorf("%s depth: %w", asset, err)
		}
		out[asset] = stats
	}
	return out, nil
}

func summarizeDepth(bids, asks [][2]string) (model.OrderBookStats, error) {
	sumSide := func(levels [][2]string) (float64, error) {
		total := 0.0
		for _, lvl := range levels {
			qty, err := strconv.ParseFloat(lvl[1], 64)
			if err != nil {
				return 0, err
			}
			total += qty
		}
		return total, nil
	}

	bidVol, err := sumSide(bids)
	if err != nil {
		return model.OrderBookStats{}, err
	}
	askVol, err := sumSide(asks)
	if err != nil {
		return model.OrderBookStats{}, err
	}
	if len(bids) == 0 || len(asks) == 0 || askVol == 0 {
		return model.OrderBookStats{}, fmt.Errorf("empty book side")
	}

	bestBid, err := strconv.ParseFloat(bids[0][0], 64)
	if err != nil {
		return model.OrderBookStats{}, err
	}
	bestAsk, err := strconv.ParseFloat(asks[0][0], 64)
	if err != nil {
		return model.OrderBookStats{}, err
	}

	ratio := bidVol / askVol
	imbalance := "balanced"
	switch {
	case ratio > 1.2:
		imbalance = "bid_heavy"
	case ratio < 0.8:
		imbalance = "ask_heavy"
	}

	mid := (bestBid + bestAsk) / 2
	stats := model.OrderBookStats{
		BidVolume:     bidVol,
		AskVolume:     askVol,
		BidAskRatio:   ratio,
		Imbalance:     imbalance,
		LevelsPerSide: len(bids),
	}
	if mid > 0 {
		stats.SpreadPct = (bestAsk - bestBid) / mid * 100
	}
	return stats, nil
}
