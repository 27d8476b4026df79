package collector

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/quantpulse/marketsnap/internal/httpx"
	"github.com/quantpulse/marketsnap/internal/model"
)

const (
	bitcointalkStatsURL = "https://bitcointalk.org/index.php?action=stats"
	githubAPIBase       = "https://api.github.com/repos/"
)

var githubRepos = map[string]string{"BTC": "bitcoin/bitcoin", "ETH": "ethereum/go-ethereum"}

var statNumber = regexp.MustCompile(`[\d,]+`)

// fetchSocialMetrics combines forum activity with source-repo stats. Either
// half may fail on its own; the task only errors when both do.
func (p *providers) fetchSocialMetrics(ctx context.Context) (model.SocialMetrics, error) {
	var out model.SocialMetrics
	got := false

	posts, topics, err := p.scrapeForumStats(ctx)
	if err == nil {
		out.ForumPosts = posts
		out.ForumTopics = topics
		got = true
	} else {
		log.Warn().Err(err).Msg("forum stats unavailable")
	}

	for asset, repo := range githubRepos {
		stars, commits, gerr := p.fetchRepoStats(ctx, repo)
		if gerr != nil {
			log.Warn().Err(gerr).Str("repo", repo).Msg("repo stats unavailable")
			continue
		}
		switch asset {
		case "BTC":
			out.BTCGithubStars = stars
			out.BTCRecentCommits = commits
		case "ETH":
			out.ETHGithubStars = stars
			out.ETHRecentCommits = commits
		}
		got = true
	}

	if !got {
		return model.SocialMetrics{}, fmt.Errorf("no social source resolved")
	}
	return out, nil
}

// scrapeForumStats reads total posts and topics off the forum stats page.
func (p *providers) scrapeForumStats(ctx context.Context) (posts, topics *int64, err error) {
	body, err := p.client.FetchHTML(ctx, httpx.Request{
		URL:      bitcointalkStatsURL,
		Provider: "bitcointalk",
		Class:    httpx.ClassAggregator,
	})
	if err != nil {
		return nil, nil, err
	}
	return parseForumStats(body)
}

func parseForumStats(body []byte) (posts, topics *int64, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse forum stats page: %w", err)
	}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(row.Find("td").First().Text())
		value := parseStatNumber(row.Find("td").Eq(1).Text())
		if value == nil {
			return
		}
		switch {
		case strings.Contains(label, "total posts"):
			posts = value
		case strings.Contains(label, "total topics"):
			topics = value
		}
	})
	if posts == nil && topics == nil {
		return nil, nil, fmt.Errorf("forum stats page: totals not found")
	}
	return posts, topics, nil
}

func parseStatNumber(s string) *int64 {
	m := statNumber.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(m, ",", ""), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// fetchRepoStats returns stargazers and recent commit activity for one repo.
func (p *providers) fetchRepoStats(ctx context.Context, repo string) (stars, commits *int64, err error) {
	var meta struct {
		StargazersCount int64 `json:"stargazers_count"`
	}
	err = p.client.DecodeJSON(ctx, httpx.Request{
		URL:      githubAPIBase + repo,
		Provider: "github",
		Class:    httpx.ClassAggregator,
	}, &meta)
	if err != nil {
		return nil, nil, err
	}
	stars = &meta.StargazersCount

	// Weekly commit counts for the last year; the most recent week is the
	// activity signal. Missing stats are tolerable.
	var activity struct {
		All []int64 `json:"all"`
	}
	err = p.client.DecodeJSON(ctx, httpx.Request{
		URL:      githubAPIBase + repo + "/stats/participation",
		Provider: "github",
		Class:    httpx.ClassAggregator,
	}, &activity)
	if err == nil && len(activity.All) > 0 {
		last := activity.All[len(activity.All)-1]
		commits = &last
	}
	return stars, commits, nil
}
