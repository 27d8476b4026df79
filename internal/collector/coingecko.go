package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/quantpulse/marketsnap/internal/httpx"
	"github.com/quantpulse/marketsnap/internal/model"
)

const (
	coingeckoBase  = "https://api.coingecko.com/api/v3"
	globalCacheKey = "coingecko:global"
)

// fetchSpotPrices returns BTC/ETH spot from the aggregator's simple-price
// endpoint. This is the primary price source.
func (p *providers) fetchSpotPrices(ctx context.Context) (model.SpotPrices, error) {
	var resp map[string]map[string]float64
	err := p.client.DecodeJSON(ctx, httpx.Request{
		URL:      coingeckoBase + "/simple/price",
		Params:   url.Values{"ids": {"bitcoin,ethereum"}, "vs_currencies": {"usd"}},
		Provider: "coingecko",
		Class:    httpx.ClassAggregator,
	}, &resp)
	if err != nil {
		return model.SpotPrices{}, err
	}
	btc, okB := resp["bitcoin"]["usd"]
	eth, okE := resp["ethereum"]["usd"]
	if !okB || !okE {
		return model.SpotPrices{}, fmt.Errorf("simple/price response missing bitcoin or ethereum")
	}
	return model.SpotPrices{BTC: btc, ETH: eth}, nil
}

// fetchGlobal returns the /global payload. Dominance and market-cap tasks
// share this strict-rate-limit endpoint, so the raw body is memoized in the
// global-data cache.
func (p *providers) fetchGlobal(ctx context.Context) (model.GlobalMarket, error) {
	var raw []byte
	if cached, ok := p.cache.Get(ctx, globalCacheKey); ok {
		raw = cached
	} else {
		body, err := p.client.FetchJSON(ctx, httpx.Request{
			URL:      coingeckoBase + "/global",
			Provider: "coingecko",
			Class:    httpx.ClassAggregator,
		})
		if err != nil {
			return model.GlobalMarket{}, err
		}
		raw = body
		p.cache.Set(ctx, globalCacheKey, raw, p.cacheTTL)
	}

	var resp struct {
		Data struct {
			MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
			TotalMarketCap      map[string]float64 `json:"total_market_cap"`
			TotalVolume         map[string]float64 `json:"total_volume"`
			CapChange24h        float64            `json:"market_cap_change_percentage_24h_usd"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return model.GlobalMarket{}, fmt.Errorf("decode global payload: %w", err)
	}
	return model.GlobalMarket{
		BTCDominance:   resp.Data.MarketCapPercentage["btc"],
		TotalMarketCap: resp.Data.TotalMarketCap["usd"],
		TotalVolume:    resp.Data.TotalVolume["usd"],
		CapChange24h:   resp.Data.CapChange24h,
	}, nil
}

// fetchTradingVolumes returns 24h volumes from the coins/markets endpoint
// plus the market-wide total from the (cached) global payload.
func (p *providers) fetchTradingVolumes(ctx context.Context) (model.TradingVolumes, error) {
	var coins []struct {
		ID          string  `json:"id"`
		TotalVolume float64 `json:"total_volume"`
	}
	err := p.client.DecodeJSON(ctx, httpx.Request{
		URL:      coingeckoBase + "/coins/markets",
		Params:   url.Values{"vs_currency": {"usd"}, "ids": {"bitcoin,ethereum"}},
		Provider: "coingecko",
		Class:    httpx.ClassAggregator,
	}, &coins)
	if err != nil {
		return model.TradingVolumes{}, err
	}

	var out model.TradingVolumes
	for _, c := range coins {
		switch c.ID {
		case "bitcoin":
			out.BTCVolume = c.TotalVolume
		case "ethereum":
			out.ETHVolume = c.TotalVolume
		}
	}
	if g, err := p.fetchGlobal(ctx); err == nil {
		out.TotalVolume = g.TotalVolume
	}
	return out, nil
}
