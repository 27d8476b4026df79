package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/quantpulse/marketsnap/internal/httpx"
	"github.com/quantpulse/marketsnap/internal/model"
)

const (
	fredAPIBase     = "https://api.stlouisfed.org/fred/series/observations"
	fredSeriesBase  = "https://fred.stlouisfed.org/series/"
	alphaVantageURL = "https://www.alphavantage.co/query"
	inflationPage   = "https://www.usinflationcalculator.com/inflation/current-inflation-rates/"
)

// fredObservation fetches the latest observation of one FRED series. Requires
// an API key; callers fall back to scraping when the key is absent.
func (p *providers) fredObservation(ctx context.Context, seriesID string) (value float64, date string, err error) {
	var resp struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	err = p.client.DecodeJSON(ctx, httpx.Request{
		URL: fredAPIBase,
		Params: url.Values{
			"series_id":  {seriesID},
			"api_key":    {p.keys.FRED},
			"file_type":  {"json"},
			"sort_order": {"desc"},
			"limit":      {"1"},
		},
		Provider: "fred",
		Class:    httpx.ClassAggregator,
	}, &resp)
	if err != nil {
		return 0, "", err
	}
	if len(resp.Observations) == 0 {
		return 0, "", fmt.Errorf("fred %s: no observations", seriesID)
	}
	obs := resp.Observations[0]
	v, perr := strconv.ParseFloat(obs.Value, 64)
	if perr != nil {
		return 0, "", fmt.Errorf("fred %s: value %q: %w", seriesID, obs.Value, perr)
	}
	return v, obs.Date, nil
}

// scrapeFredSeries reads the latest observation off the public series page.
// The meta block carries the value; the sibling span carries the date.
func (p *providers) scrapeFredSeries(ctx context.Context, seriesID string) (value float64, date string, err error) {
	body, err := p.client.FetchHTML(ctx, httpx.Request{
		URL:      fredSeriesBase + seriesID,
		Provider: "fred-web",
		Class:    httpx.ClassAggregator,
	})
	if err != nil {
		return 0, "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, "", fmt.Errorf("parse fred page: %w", err)
	}

	raw := strings.TrimSpace(doc.Find("span.series-meta-observation-value").First().Text())
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0, "", fmt.Errorf("fred page %s: observation value not found", seriesID)
	}
	v, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		return 0, "", fmt.Errorf("fred page %s: value %q: %w", seriesID, raw, perr)
	}
	date = strings.TrimSpace(doc.Find("span.series-meta-value-as-of").First().Text())
	return v, date, nil
}

// fetchM2 returns the latest M2 money stock reading in billions of dollars.
func (p *providers) fetchM2(ctx context.Context) (model.MacroIndicators, error) {
	var (
		v    float64
		date string
		err  error
	)
	if p.keys.FRED != "" {
		v, date, err = p.fredObservation(ctx, "M2SL")
	} else {
		log.Debug().Msg("no FRED key, scraping M2 from series page")
		v, date, err = p.scrapeFredSeries(ctx, "M2SL")
	}
	if err != nil {
		return model.MacroIndicators{}, err
	}
	return model.MacroIndicators{M2Supply: &v, M2Date: date}, nil
}

// fetchInflation returns the latest YoY CPI inflation rate in percent.
// Primary source is AlphaVantage; without a key the public inflation table is
// scraped instead.
func (p *providers) fetchInflation(ctx context.Context) (model.MacroIndicators, error) {
	if p.keys.AlphaVantage != "" {
		var resp struct {
			Data []struct {
				Date  string `json:"date"`
				Value string `json:"value"`
			} `json:"data"`
		}
		err := p.client.DecodeJSON(ctx, httpx.Request{
			URL: alphaVantageURL,
			Params: url.Values{
				"function": {"INFLATION"},
				"apikey":   {p.keys.AlphaVantage},
			},
			Provider: "alphavantage",
			Class:    httpx.ClassAggregator,
		}, &resp)
		if err == nil && len(resp.Data) > 0 {
			if v, perr := strconv.ParseFloat(resp.Data[0].Value, 64); perr == nil {
				return model.MacroIndicators{InflationRate: &v, InflationDate: resp.Data[0].Date}, nil
			}
		}
		if err != nil {
			log.Warn().Err(err).Msg("alphavantage inflation failed, falling back to scrape")
		}
	}
	return p.scrapeInflation(ctx)
}

// scrapeInflation parses the current-inflation-rates table: year rows, one
// column per month, "Avail." placeholders for months not yet published.
func (p *providers) scrapeInflation(ctx context.Context) (model.MacroIndicators, error) {
	body, err := p.client.FetchHTML(ctx, httpx.Request{
		URL:      inflationPage,
		Provider: "usinflationcalculator",
		Class:    httpx.ClassAggregator,
	})
	if err != nil {
		return model.MacroIndicators{}, err
	}
	return parseInflationTable(body)
}

func parseInflationTable(body []byte) (model.MacroIndicators, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return model.MacroIndicators{}, fmt.Errorf("parse inflation page: %w", err)
	}

	var latest *float64
	var latestDate string
	doc.Find("table tbody tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return true
		}
		year := strings.TrimSpace(cells.First().Text())
		if _, yerr := strconv.Atoi(year); yerr != nil {
			return true
		}
		// Walk month columns left to right; the last parseable one wins.
		months := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
		for i := 1; i < cells.Length() && i <= len(months); i++ {
			raw := strings.TrimSpace(cells.Eq(i).Text())
			raw = strings.TrimSuffix(raw, "%")
			v, perr := strconv.ParseFloat(raw, 64)
			if perr != nil {
				continue
			}
			val := v
			latest = &val
			latestDate = months[i-1] + " " + year
		}
		// First data row is the current year.
		return latest == nil
	})
	if latest == nil {
		return model.MacroIndicators{}, fmt.Errorf("inflation table: no parseable rate found")
	}
	return model.MacroIndicators{InflationRate: latest, InflationDate: latestDate}, nil
}

// fetchInterestRates combines the fed funds rate with treasury yields.
func (p *providers) fetchInterestRates(ctx context.Context) (model.MacroIndicators, error) {
	var out model.MacroIndicators

	var (
		rate float64
		date string
		err  error
	)
	if p.keys.FRED != "" {
		rate, date, err = p.fredObservation(ctx, "FEDFUNDS")
	} else {
		rate, date, err = p.scrapeFredSeries(ctx, "FEDFUNDS")
	}
	if err == nil {
		out.FedRate = &rate
		out.RateDate = date
	} else {
		log.Warn().Err(err).Msg("fed funds rate unavailable")
	}

	t10, t5, yerr := p.fetchTreasuryYields(ctx)
	if yerr == nil {
		out.T10Yield = t10
		out.T5Yield = t5
	}

	if out.FedRate == nil && out.T10Yield == nil && out.T5Yield == nil {
		if err == nil {
			err = yerr
		}
		return model.MacroIndicators{}, fmt.Errorf("no interest-rate source resolved: %w", err)
	}
	return out, nil
}
