// Package config loads and validates the collector configuration: numeric
// retry/backoff knobs, feature flags for optional task groups, and the
// presence or absence of per-provider credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// API holds the resilient-client knobs shared by every provider call.
type API struct {
	MaxRetries     int           `yaml:"max_retries" default:"3" validate:"gte=1,lte=10"`
	Timeout        time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	BackoffFactor  float64       `yaml:"backoff_factor" default:"2" validate:"gte=1"`
	ServerErrWait  time.Duration `yaml:"server_error_wait" default:"5s"`
	MaxTotalWait   time.Duration `yaml:"max_total_wait" default:"600s"`
	TaskTimeout    time.Duration `yaml:"task_timeout" default:"30s" validate:"gt=0"`
	SequentialGap  time.Duration `yaml:"sequential_gap" default:"1500ms"`
	RatePerSecond  float64       `yaml:"rate_per_second" default:"4"`
	RateBurst      int           `yaml:"rate_burst" default:"4"`
}

// Features gates the optional task groups.
type Features struct {
	Macroeconomic bool `yaml:"include_macroeconomic" default:"true"`
	StockIndices  bool `yaml:"include_stock_indices" default:"true"`
	Commodities   bool `yaml:"include_commodities" default:"true"`
	SocialMetrics bool `yaml:"include_social_metrics" default:"true"`
	Enhanced      bool `yaml:"include_enhanced_data" default:"true"`
	NetworkHealth bool `yaml:"include_network_health" default:"true"`
	Correlations  bool `yaml:"include_correlations" default:"true"`
}

// Cache configures the shared global-data cache.
type Cache struct {
	TTL       time.Duration `yaml:"ttl" default:"30s" validate:"gt=0"`
	RedisAddr string        `yaml:"redis_addr"` // empty: in-memory cache
}

// Ops configures the read-only status HTTP server.
type Ops struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Addr    string `yaml:"addr" default:":8090"`
}

// Keys holds per-provider credentials. Presence of a key is what gates the
// enhanced sources; values come from the environment, never from YAML.
type Keys struct {
	FRED          string `yaml:"-"`
	AlphaVantage  string `yaml:"-"`
	Etherscan     string `yaml:"-"`
	Coinglass     string `yaml:"-"`
	CoinMarketCal string `yaml:"-"`
	WhaleAlert    string `yaml:"-"`
}

// Config is the full collector configuration.
type Config struct {
	LogLevel   string        `yaml:"log_level" default:"info"`
	Interval   time.Duration `yaml:"interval" default:"15m" validate:"gt=0"`
	API        API           `yaml:"api"`
	Features   Features      `yaml:"features"`
	Cache      Cache         `yaml:"cache"`
	Ops        Ops           `yaml:"ops"`
	Keys       Keys          `yaml:"-"`
}

// YAML has no native duration scalar, so structs holding durations decode
// through a shadow struct with string fields. Pointer fields keep "key not
// set" distinguishable from a zero value, preserving defaults.

func parseDur(dst *time.Duration, src *string) error {
	if src == nil {
		return nil
	}
	d, err := time.ParseDuration(*src)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// UnmarshalYAML decodes the api block, accepting durations like "10s".
func (a *API) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		MaxRetries    *int     `yaml:"max_retries"`
		Timeout       *string  `yaml:"timeout"`
		BackoffFactor *float64 `yaml:"backoff_factor"`
		ServerErrWait *string  `yaml:"server_error_wait"`
		MaxTotalWait  *string  `yaml:"max_total_wait"`
		TaskTimeout   *string  `yaml:"task_timeout"`
		SequentialGap *string  `yaml:"sequential_gap"`
		RatePerSecond *float64 `yaml:"rate_per_second"`
		RateBurst     *int     `yaml:"rate_burst"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.MaxRetries != nil {
		a.MaxRetries = *raw.MaxRetries
	}
	if raw.BackoffFactor != nil {
		a.BackoffFactor = *raw.BackoffFactor
	}
	if raw.RatePerSecond != nil {
		a.RatePerSecond = *raw.RatePerSecond
	}
	if raw.RateBurst != nil {
		a.RateBurst = *raw.RateBurst
	}
	for _, f := range []struct {
		dst *time.Duration
		src *string
	}{
		{&a.Timeout, raw.Timeout},
		{&a.ServerErrWait, raw.ServerErrWait},
		{&a.MaxTotalWait, raw.MaxTotalWait},
		{&a.TaskTimeout, raw.TaskTimeout},
		{&a.SequentialGap, raw.SequentialGap},
	} {
		if err := parseDur(f.dst, f.src); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalYAML decodes the cache block.
func (c *Cache) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		TTL       *string `yaml:"ttl"`
		RedisAddr *string `yaml:"redis_addr"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.RedisAddr != nil {
		c.RedisAddr = *raw.RedisAddr
	}
	return parseDur(&c.TTL, raw.TTL)
}

// UnmarshalYAML decodes the top-level document.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		LogLevel *string   `yaml:"log_level"`
		Interval *string   `yaml:"interval"`
		API      *API      `yaml:"api"`
		Features *Features `yaml:"features"`
		Cache    *Cache    `yaml:"cache"`
		Ops      *Ops      `yaml:"ops"`
	}
	// Seed the nested blocks with the current (defaulted) values so partial
	// blocks only override the keys they name.
	raw.API, raw.Features, raw.Cache, raw.Ops = &c.API, &c.Features, &c.Cache, &c.Ops
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.LogLevel != nil {
		c.LogLevel = *raw.LogLevel
	}
	return parseDur(&c.Interval, raw.Interval)
}

// Load reads the YAML file (optional), applies defaults, pulls credentials
// from the environment and validates the result.
func Load(path string) (*Config, error) {
	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Keys = Keys{
		FRED:          os.Getenv("FRED_API_KEY"),
		AlphaVantage:  os.Getenv("ALPHAVANTAGE_API_KEY"),
		Etherscan:     os.Getenv("ETHERSCAN_API_KEY"),
		Coinglass:     os.Getenv("COINGLASS_API_KEY"),
		CoinMarketCal: os.Getenv("COINMARKETCAL_API_KEY"),
		WhaleAlert:    os.Getenv("WHALE_ALERT_API_KEY"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Default returns a config with defaults applied and no file or environment
// input. Used by tests and by the CLI when no config file is given.
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(err) // static defaults cannot fail
	}
	return cfg
}
