// Package httpx is the resilient network client every collection task goes
// through. It owns retry, backoff, rate-limit and circuit-breaker policy so
// that tasks can assume "a call returns usable JSON or a classified error".
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	cb "github.com/sony/gobreaker"

	"github.com/rs/zerolog/log"

	"github.com/quantpulse/marketsnap/internal/config"
	"github.com/quantpulse/marketsnap/internal/model"
)

// ProviderClass clamps Retry-After differently for exchange-style and
// aggregator-style providers.
type ProviderClass int

const (
	ClassExchange ProviderClass = iota
	ClassAggregator
)

const (
	defaultRetryAfter      = 60 * time.Second
	maxRetryAfterExchange  = 180 * time.Second
	maxRetryAfterAggregate = 300 * time.Second
	maxTransportBackoff    = 30 * time.Second
)

// Request describes one provider call.
type Request struct {
	URL        string
	Params     url.Values
	Headers    map[string]string
	Provider   string
	Class      ProviderClass
	MaxRetries int           // 0: use configured default
	Timeout    time.Duration // 0: use configured default
}

// FetchError classifies a failed fetch so the task layer can map it straight
// onto a Result reason.
type FetchError struct {
	URL        string
	Provider   string
	Reason     model.AbsentReason
	StatusCode int
	Err        error

	retryAfter time.Duration // parsed Retry-After directive, 429 only
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: HTTP %d (%s)", e.URL, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.URL, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Reason extracts the failure classification from any error returned by the
// client, defaulting to a network failure.
func Reason(err error) model.AbsentReason {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return model.ReasonNetworkFailure
}

// Doer abstracts *http.Client for tests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the resilient HTTP client.
type Client struct {
	httpc    Doer
	limiter  *HostLimiter
	breakers *BreakerSet
	cfg      config.API
	sleep    func(ctx context.Context, d time.Duration) error
	onRetry  func(provider string)
}

// NewClient builds a client from the API knobs. Pass nil to use a default
// http.Client with the configured timeout.
func NewClient(cfg config.API, doer Doer) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		httpc:    doer,
		limiter:  NewHostLimiter(cfg.RatePerSecond, cfg.RateBurst),
		breakers: NewBreakerSet(),
		cfg:      cfg,
		sleep:    sleepCtx,
	}
}

// SetSleeper overrides the backoff sleep. Tests use this to avoid real waits.
func (c *Client) SetSleeper(fn func(ctx context.Context, d time.Duration) error) {
	c.sleep = fn
}

// SetRetryHook installs a callback invoked once per retry, after the failed
// attempt and before the backoff sleep.
func (c *Client) SetRetryHook(fn func(provider string)) {
	c.onRetry = fn
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// FetchJSON performs a GET and returns the raw decoded body. All failure
// modes come back as *FetchError; nothing panics past this boundary.
func (c *Client) FetchJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	body, err := c.fetch(ctx, req, "application/json")
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || !json.Valid(body) {
		return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonMalformedResponse,
			Err: errors.New("empty or non-JSON body")}
	}
	// An empty object or array is as useless as no body.
	trimmed := string(body)
	if trimmed == "{}" || trimmed == "[]" || trimmed == "null" {
		return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonMalformedResponse,
			Err: errors.New("empty JSON payload")}
	}
	return json.RawMessage(body), nil
}

// DecodeJSON fetches and unmarshals into out.
func (c *Client) DecodeJSON(ctx context.Context, req Request, out any) error {
	raw, err := c.FetchJSON(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonMalformedResponse, Err: err}
	}
	return nil
}

// FetchHTML performs a GET for the scraper fallbacks and returns the body.
func (c *Client) FetchHTML(ctx context.Context, req Request) ([]byte, error) {
	return c.fetch(ctx, req, "text/html")
}

func (c *Client) fetch(ctx context.Context, req Request, accept string) ([]byte, error) {
	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = c.cfg.MaxRetries
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonNonTransientHTTP, Err: err}
	}
	if req.Params != nil {
		q := u.Query()
		for k, vs := range req.Params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var totalWait time.Duration
	var lastErr *FetchError

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx, u.Host); err != nil {
			return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonNetworkFailure, Err: err}
		}

		body, ferr := c.attempt(ctx, req, u, accept, timeout)
		if ferr == nil {
			return body, nil
		}
		lastErr = ferr

		switch ferr.Reason {
		case model.ReasonNonTransientHTTP, model.ReasonMalformedResponse:
			// 403/404 and undecodable bodies never get better on retry.
			return nil, ferr

		case model.ReasonRateLimited:
			wait := ferr.retryAfter
			if wait <= 0 {
				wait = defaultRetryAfter
			}
			wait = clampRetryAfter(wait, req.Class)
			// Repeated 429s escalate exponentially on top of the directive.
			wait = time.Duration(float64(wait) * math.Pow(2, float64(attempt-1)))
			if totalWait+wait > c.cfg.MaxTotalWait {
				log.Warn().Str("provider", req.Provider).Str("url", req.URL).
					Dur("total_wait", totalWait).Msg("rate-limit wait budget exhausted")
				return nil, ferr
			}
			totalWait += wait
			if c.onRetry != nil {
				c.onRetry(req.Provider)
			}
			log.Warn().Str("provider", req.Provider).Dur("wait", wait).
				Int("attempt", attempt).Int("max_retries", maxRetries).Msg("rate limited, backing off")
			if err := c.sleep(ctx, wait); err != nil {
				return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonRateLimited, Err: err}
			}

		case model.ReasonNetworkFailure:
			if attempt == maxRetries {
				break
			}
			var wait time.Duration
			if ferr.StatusCode >= 500 {
				wait = c.cfg.ServerErrWait
			} else {
				backoff := math.Pow(c.cfg.BackoffFactor, float64(attempt))
				wait = time.Duration(math.Min(maxTransportBackoff.Seconds(), backoff) * float64(time.Second))
			}
			if c.onRetry != nil {
				c.onRetry(req.Provider)
			}
			log.Error().Str("provider", req.Provider).Err(ferr.Err).
				Int("attempt", attempt).Int("max_retries", maxRetries).
				Dur("backoff", wait).Msg("request failed, retrying")
			if err := c.sleep(ctx, wait); err != nil {
				return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonNetworkFailure, Err: err}
			}
		}
	}

	log.Error().Str("url", req.URL).Str("provider", req.Provider).
		Int("attempts", maxRetries).Msg("all fetch attempts failed")
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, req Request, u *url.URL, accept string, timeout time.Duration) ([]byte, *FetchError) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	hreq, err := http.NewRequestWithContext(actx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonNonTransientHTTP, Err: err}
	}
	hreq.Header.Set("Accept", accept)
	hreq.Header.Set("User-Agent", "marketsnap/1.0")
	for k, v := range req.Headers {
		hreq.Header.Set(k, v)
	}

	result, err := c.breakers.For(req.Provider).Execute(func() (any, error) {
		resp, err := c.httpc.Do(hreq)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, &serverStatusError{code: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, cb.ErrOpenState) || errors.Is(err, cb.ErrTooManyRequests) {
			return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonNetworkFailure,
				Err: fmt.Errorf("circuit breaker open for %s: %w", req.Provider, err)}
		}
		var sse *serverStatusError
		if errors.As(err, &sse) {
			return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonNetworkFailure,
				StatusCode: sse.code, Err: sse}
		}
		return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonNetworkFailure, Err: err}
	}

	resp := result.(*http.Response)
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		fe := &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonRateLimited,
			StatusCode: resp.StatusCode, Err: errors.New("rate limited")}
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				fe.retryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, fe

	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonNonTransientHTTP,
			StatusCode: resp.StatusCode, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}

	case resp.StatusCode >= 400:
		io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonNetworkFailure,
			StatusCode: resp.StatusCode, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, &FetchError{URL: req.URL, Provider: req.Provider, Reason: model.ReasonNetworkFailure, Err: err}
	}
	return body, nil
}

func clampRetryAfter(d time.Duration, class ProviderClass) time.Duration {
	limit := maxRetryAfterAggregate
	if class == ClassExchange {
		limit = maxRetryAfterExchange
	}
	if d > limit {
		return limit
	}
	return d
}

type serverStatusError struct{ code int }

func (e *serverStatusError) Error() string { return fmt.Sprintf("HTTP %d server error", e.code) }
