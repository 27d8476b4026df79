package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/quantpulse/marketsnap/internal/calc"
	"github.com/quantpulse/marketsnap/internal/httpx"
	"github.com/quantpulse/marketsnap/internal/model"
)

const (
	blockchainQueryBase = "https://blockchain.info/q/"
	etherscanAPI        = "https://api.etherscan.io/api"
)

// fetchNetworkHealth assembles chain metrics from independent endpoints.
// Every field is optional; the task errors only when nothing resolves.
func (p *providers) fetchNetworkHealth(ctx context.Context) (model.NetworkHealth, error) {
	var out model.NetworkHealth
	got := false

	if v, err := p.blockchainQuery(ctx, "hashrate"); err == nil {
		// The query endpoint reports GH/s.
		ths := v / 1000
		out.HashRateTHs = &ths
		got = true
	} else {
		log.Warn().Err(err).Msg("hashrate unavailable")
	}

	if v, err := p.blockchainQuery(ctx, "getdifficulty"); err == nil {
		out.MiningDifficulty = &v
		out.DifficultyTrend = "flat" // single sample; trend needs history
		got = true
	} else {
		log.Warn().Err(err).Msg("difficulty unavailable")
	}

	if v, err := p.blockchainQuery(ctx, "unconfirmedcount"); err == nil {
		level := calc.MempoolPressure(v)
		out.MempoolPressure = &level
		got = true
	} else {
		log.Warn().Err(err).Msg("mempool count unavailable")
	}

	if p.keys.Etherscan != "" {
		if gwei, err := p.fetchGasPrice(ctx); err == nil {
			out.GasPriceGwei = &gwei
			level := calc.GasPressure(gwei)
			out.GasPressure = &level
			got = true
		} else {
			log.Warn().Err(err).Msg("gas price unavailable")
		}
	}

	if !got {
		return model.NetworkHealth{}, fmt.Errorf("no network-health source resolved")
	}
	return out, nil
}

// blockchainQuery hits one plain-text query endpoint and parses the number.
func (p *providers) blockchainQuery(ctx context.Context, q string) (float64, error) {
	body, err := p.client.FetchHTML(ctx, httpx.Request{
		URL:      blockchainQueryBase + q,
		Provider: "blockchain.info",
		Class:    httpx.ClassAggregator,
	})
	if err != nil {
		return 0, err
	}
	v, perr := strconv.ParseFloat(strings.TrimSpace(string(body)), 64)
	if perr != nil {
		return 0, fmt.Errorf("query %s: non-numeric body: %w", q, perr)
	}
	return v, nil
}

// fetchGasPrice returns the proposed gas price in gwei from the gas tracker.
func (p *providers) fetchGasPrice(ctx context.Context) (float64, error) {
	var resp struct {
		Status string `json:"status"`
		Result struct {
			ProposeGasPrice string `json:"ProposeGasPrice"`
		} `json:"result"`
	}
	err := p.client.DecodeJSON(ctx, httpx.Request{
		URL: etherscanAPI,
		Params: url.Values{
			"module": {"gastracker"},
			"action": {"gasoracle"},
			"apikey": {p.keys.Etherscan},
		},
		Provider: "etherscan",
		Class:    httpx.ClassAggregator,
	}, &resp)
	if err != nil {
		return 0, err
	}
	if resp.Status != "1" {
		return 0, fmt.Errorf("gas oracle returned status %s", resp.Status)
	}
	gwei, perr := strconv.ParseFloat(resp.Result.ProposeGasPrice, 64)
	if perr != nil {
		return 0, fmt.Errorf("gas oracle price %q: %w", resp.Result.ProposeGasPrice, perr)
	}
	return gwei, nil
}
