package collector

import (
	"time"

	"github.com/quantpulse/marketsnap/internal/cache"
	"github.com/quantpulse/marketsnap/internal/config"
	"github.com/quantpulse/marketsnap/internal/httpx"
)

// providers bundles what every task implementation needs: the resilient
// client, the shared per-cycle cache and the credential set.
type providers struct {
	client   *httpx.Client
	cache    cache.Cache
	cacheTTL time.Duration
	keys     config.Keys
}

func newProviders(client *httpx.Client, c cache.Cache, ttl time.Duration, keys config.Keys) *providers {
	return &providers{client: client, cache: c, cacheTTL: ttl, keys: keys}
}
