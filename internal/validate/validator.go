// Package validate scores a snapshot against the canonical completeness
// checklist and cross-validates figures that arrive from two sources.
package validate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/quantpulse/marketsnap/internal/model"
)

// sufficientThreshold is the overall score below which a snapshot is labeled
// insufficient for downstream analysis.
const sufficientThreshold = 50.0

// spotDivergenceLimit is the maximum tolerated relative difference between
// the two independent spot sources before an issue is raised.
const spotDivergenceLimit = 0.01

// CategoryScore is the per-category breakdown.
type CategoryScore struct {
	Earned  float64 `json:"earned"`
	Total   float64 `json:"total"`
	Percent float64 `json:"percent"`
	Weight  float64 `json:"weight"`
}

// Report is the completeness verdict for one snapshot.
type Report struct {
	Overall         float64                  `json:"overall_percent"`
	Sufficient      bool                     `json:"sufficient"`
	Categories      map[string]CategoryScore `json:"categories"`
	MissingItems    []string                 `json:"missing_items,omitempty"`
	Issues          []string                 `json:"issues,omitempty"`
	Warnings        []string                 `json:"warnings,omitempty"`
	Recommendations []string                 `json:"recommendations,omitempty"`
}

// Validator scores snapshots against a fixed item registry.
type Validator struct {
	items []Item
}

// New returns a validator over the canonical registry.
func New() *Validator {
	return &Validator{items: Registry()}
}

// Score walks the checklist, weights the categories and attaches
// cross-validation issues and actionable recommendations.
func (v *Validator) Score(snap *model.Snapshot) Report {
	perCategory := make(map[string]*CategoryScore)
	var missing []string
	var warnings []string

	for _, item := range v.items {
		cs, ok := perCategory[item.Category]
		if !ok {
			cs = &CategoryScore{Weight: categoryWeights[item.Category]}
			perCategory[item.Category] = cs
		}
		cs.Total++
		c := item.Credit(snap)
		cs.Earned += c
		switch {
		case c == 0:
			missing = append(missing, item.Category+"."+item.Name)
		case c < 1:
			warnings = append(warnings, fmt.Sprintf("%s.%s: below sufficiency threshold, half credit", item.Category, item.Name))
		}
	}

	overall := 0.0
	categories := make(map[string]CategoryScore, len(perCategory))
	for name, cs := range perCategory {
		if cs.Total > 0 {
			cs.Percent = cs.Earned / cs.Total * 100
		}
		overall += cs.Earned / cs.Total * cs.Weight
		categories[name] = *cs
	}
	// Guard against float drift at the full-score boundary.
	overall = math.Min(100, overall)

	sort.Strings(missing)
	report := Report{
		Overall:      overall,
		Sufficient:   overall >= sufficientThreshold,
		Categories:   categories,
		MissingItems: missing,
		Warnings:     warnings,
	}
	report.Issues = crossValidate(snap)
	report.Recommendations = recommend(snap)
	return report
}

// crossValidate compares figures that arrive from two independent sources.
func crossValidate(snap *model.Snapshot) []string {
	var issues []string

	primary, okP := valueAs[model.SpotPrices](snap, "crypto_prices")
	secondary, okS := valueAs[model.SpotPrices](snap, "binance_spot")
	if okP && okS {
		check := func(asset string, a, b float64) {
			if a <= 0 || b <= 0 {
				return
			}
			div := math.Abs(a-b) / a
			if div > spotDivergenceLimit {
				issues = append(issues, fmt.Sprintf(
					"%s spot diverges %.2f%% between sources (%.2f vs %.2f)", asset, div*100, a, b))
			}
		}
		check("BTC", primary.BTC, secondary.BTC)
		check("ETH", primary.ETH, secondary.ETH)
	}

	return issues
}

// recommend turns typed absence reasons into operator actions.
func recommend(snap *model.Snapshot) []string {
	var recs []string
	names := make([]string, 0, len(snap.Results))
	for name := range snap.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		r := snap.Results[name]
		switch r.Reason {
		case model.ReasonMissingCredential:
			recs = append(recs, fmt.Sprintf("%s: %s", name, credentialHint(r.Detail)))
		case model.ReasonRateLimited:
			recs = append(recs, fmt.Sprintf("%s: rate limited upstream, increase the collection interval", name))
		case model.ReasonFeatureDisabled:
			recs = append(recs, fmt.Sprintf("%s: enable the feature flag to collect this group", name))
		}
	}
	return recs
}

func credentialHint(detail string) string {
	// Detail reads "credential X not configured"; surface the variable name.
	fields := strings.Fields(detail)
	if len(fields) >= 2 && fields[0] == "credential" {
		return "set " + fields[1] + " to enable this source"
	}
	return "configure the missing credential"
}
