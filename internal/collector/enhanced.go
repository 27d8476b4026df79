package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/quantpulse/marketsnap/internal/httpx"
	"github.com/quantpulse/marketsnap/internal/model"
)

const (
	coinglassAPI     = "https://open-api.coinglass.com/public/v2/liquidation_info"
	coinmarketcalAPI = "https://developers.coinmarketcal.com/v1/events"
	whaleAlertAPI    = "https://api.whale-alert.io/v1/transactions"
)

// fetchLiquidations returns the 24h liquidation summary per asset.
func (p *providers) fetchLiquidations(ctx context.Context) (map[string]model.LiquidationStats, error) {
	out := make(map[string]model.LiquidationStats, 2)
	var lastErr error
	for _, asset := range []string{"BTC", "ETH"} {
		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				TotalVolUsd float64 `json:"totalVolUsd"`
				LongVolUsd  float64 `json:"longVolUsd"`
				ShortVolUsd float64 `json:"shortVolUsd"`
			} `json:"data"`
		}
		err := p.client.DecodeJSON(ctx, httpx.Request{
			URL:      coinglassAPI,
			Params:   url.Values{"symbol": {asset}, "time_type": {"h24"}},
			Headers:  map[string]string{"coinglassSecret": p.keys.Coinglass},
			Provider: "coinglass",
			Class:    httpx.ClassAggregator,
		}, &resp)
		if err != nil {
			lastErr = err
			continue
		}
		if !resp.Success {
			lastErr = fmt.Errorf("liquidation info for %s: success=false", asset)
			continue
		}
		out[asset] = model.LiquidationStats{
			Total24hUSD: resp.Data.TotalVolUsd,
			Long24hUSD:  resp.Data.LongVolUsd,
			Short24hUSD: resp.Data.ShortVolUsd,
		}
	}
	if len(out) == 0 {
		return nil, lastErr
	}
	return out, nil
}

// fetchEconomicCalendar returns upcoming significant events for the majors.
func (p *providers) fetchEconomicCalendar(ctx context.Context) ([]model.CalendarEvent, error) {
	var resp struct {
		Body []struct {
			Title struct {
				En string `json:"en"`
			} `json:"title"`
			DateEvent string `json:"date_event"`
			Coins     []struct {
				Symbol string `json:"symbol"`
			} `json:"coins"`
			Categories []struct {
				Name string `json:"name"`
			} `json:"categories"`
		} `json:"body"`
	}
	err := p.client.DecodeJSON(ctx, httpx.Request{
		URL: coinmarketcalAPI,
		Params: url.Values{
			"coins": {"bitcoin,ethereum"},
			"max":   {"10"},
		},
		Headers: map[string]string{
			"x-api-key": p.keys.CoinMarketCal,
			"Accept":    "application/json",
		},
		Provider: "coinmarketcal",
		Class:    httpx.ClassAggregator,
	}, &resp)
	if err != nil {
		return nil, err
	}

	events := make([]model.CalendarEvent, 0, len(resp.Body))
	for _, e := range resp.Body {
		ev := model.CalendarEvent{Title: e.Title.En}
		if ts, perr := time.Parse(time.RFC3339, e.DateEvent); perr == nil {
			ev.Date = ts
		}
		for _, c := range e.Coins {
			ev.Coins = append(ev.Coins, strings.ToUpper(c.Symbol))
		}
		if len(e.Categories) > 0 {
			ev.Category = e.Categories[0].Name
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("calendar: no events returned")
	}
	return events, nil
}

// fetchWhaleActivity summarizes large transfers from the last hour, splitting
// exchange inflow from outflow by owner type.
func (p *providers) fetchWhaleActivity(ctx context.Context) (model.WhaleActivity, error) {
	var resp struct {
		Result       string `json:"result"`
		Transactions []struct {
			Symbol    string  `json:"symbol"`
			AmountUSD float64 `json:"amount_usd"`
			Timestamp int64   `json:"timestamp"`
			From      struct {
				Owner     string `json:"owner"`
				OwnerType string `json:"owner_type"`
			} `json:"from"`
			To struct {
				Owner     string `json:"owner"`
				OwnerType string `json:"owner_type"`
			} `json:"to"`
		} `json:"transactions"`
	}
	start := time.Now().Add(-time.Hour).Unix()
	err := p.client.DecodeJSON(ctx, httpx.Request{
		URL: whaleAlertAPI,
		Params: url.Values{
			"api_key":   {p.keys.WhaleAlert},
			"start":     {fmt.Sprintf("%d", start)},
			"min_value": {"1000000"},
		},
		Provider: "whale-alert",
		Class:    httpx.ClassAggregator,
	}, &resp)
	if err != nil {
		return model.WhaleActivity{}, err
	}
	if resp.Result != "success" {
		return model.WhaleActivity{}, fmt.Errorf("whale alert result %q", resp.Result)
	}

	var out model.WhaleActivity
	for _, tx := range resp.Transactions {
		symbol := strings.ToUpper(tx.Symbol)
		if symbol != "BTC" && symbol != "ETH" {
			continue
		}
		out.Transfers = append(out.Transfers, model.WhaleTransfer{
			Symbol:    symbol,
			AmountUSD: tx.AmountUSD,
			From:      ownerLabel(tx.From.Owner, tx.From.OwnerType),
			To:        ownerLabel(tx.To.Owner, tx.To.OwnerType),
			Timestamp: time.Unix(tx.Timestamp, 0).UTC(),
		})
		out.TotalUSD += tx.AmountUSD
		if tx.To.OwnerType == "exchange" {
			out.ExchangeInUSD += tx.AmountUSD
		}
		if tx.From.OwnerType == "exchange" {
			out.ExchangeOutUSD += tx.AmountUSD
		}
	}
	return out, nil
}

func ownerLabel(owner, ownerType string) string {
	if owner != "" {
		return owner
	}
	if ownerType != "" {
		return ownerType
	}
	return "unknown"
}
