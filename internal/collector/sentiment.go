package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/quantpulse/marketsnap/internal/httpx"
	"github.com/quantpulse/marketsnap/internal/model"
)

const fearGreedURL = "https://api.alternative.me/fng/"

// fetchFearGreed returns the crypto fear & greed index.
func (p *providers) fetchFearGreed(ctx context.Context) (model.FearGreed, error) {
	var resp struct {
		Data []struct {
			Value          string `json:"value"`
			Classification string `json:"value_classification"`
		} `json:"data"`
	}
	err := p.client.DecodeJSON(ctx, httpx.Request{
		URL:      fearGreedURL,
		Params:   url.Values{"limit": {"1"}},
		Provider: "alternative.me",
		Class:    httpx.ClassAggregator,
	}, &resp)
	if err != nil {
		return model.FearGreed{}, err
	}
	if len(resp.Data) == 0 {
		return model.FearGreed{}, fmt.Errorf("fng: empty data array")
	}
	idx, perr := strconv.Atoi(resp.Data[0].Value)
	if perr != nil {
		return model.FearGreed{}, fmt.Errorf("fng: value %q: %w", resp.Data[0].Value, perr)
	}
	return model.FearGreed{Index: idx, Classification: resp.Data[0].Classification}, nil
}

// fetchMultiSourceSentiment blends independent sentiment proxies onto one
// 0-100 scale: the fear/greed index as-is, funding rates mapped around 50,
// and the VIX inverted (high volatility reads as fear).
func (p *providers) fetchMultiSourceSentiment(ctx context.Context) (model.MultiSourceSentiment, error) {
	var sources []model.SourceSentiment

	if fg, err := p.fetchFearGreed(ctx); err == nil {
		sources = append(sources, model.SourceSentiment{
			Source: "fear_greed",
			Score:  float64(fg.Index),
			Label:  fg.Classification,
		})
	} else {
		log.Warn().Err(err).Msg("sentiment source fear_greed unavailable")
	}

	if fs, err := p.fetchFuturesSentiment(ctx); err == nil {
		if btc, ok := fs["BTC"]; ok && btc.FundingRate != nil {
			// Funding of +0.05% reads as full greed, -0.05% as full fear.
			score := clampScore(50 + *btc.FundingRate/0.0005*50)
			sources = append(sources, model.SourceSentiment{
				Source: "funding_rate",
				Score:  score,
				Label:  sentimentLabel(score),
			})
		}
	} else {
		log.Warn().Err(err).Msg("sentiment source funding_rate unavailable")
	}

	if q, err := p.quote(ctx, "^VIX"); err == nil {
		// VIX 10 reads as calm greed, 40+ as panic.
		score := clampScore((40 - q.Level) / 30 * 100)
		sources = append(sources, model.SourceSentiment{
			Source: "volatility_proxy",
			Score:  score,
			Label:  sentimentLabel(score),
		})
	} else {
		log.Warn().Err(err).Msg("sentiment source volatility_proxy unavailable")
	}

	if len(sources) == 0 {
		return model.MultiSourceSentiment{}, fmt.Errorf("no sentiment source resolved")
	}

	sum := 0.0
	for _, s := range sources {
		sum += s.Score
	}
	composite := sum / float64(len(sources))
	return model.MultiSourceSentiment{
		Sources:   sources,
		Composite: composite,
		Label:     sentimentLabel(composite),
	}, nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func sentimentLabel(score float64) string {
	switch {
	case score >= 75:
		return "Extreme Greed"
	case score >= 55:
		return "Greed"
	case score > 45:
		return "Neutral"
	case score > 25:
		return "Fear"
	default:
		return "Extreme Fear"
	}
}
