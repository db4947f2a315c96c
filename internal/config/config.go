package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type Server struct {
	Port              string `json:"port"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Steam struct {
	// Endpoint is the community market priceoverview URL.
	Endpoint string `json:"endpoint"`
	AppID    int    `json:"app_id"`
	// CurrencyHint is the default market currency tag ("1" = USD).
	CurrencyHint string `json:"currency_hint"`
	// MinIntervalMs spaces out priceoverview calls.
	MinIntervalMs int `json:"min_interval_ms"`
	// APIKey is the Steam Web API key used for vanity resolution.
	APIKey string `json:"api_key"`
}

type Skinport struct {
	Endpoint      string  `json:"endpoint"`
	Currency      string  `json:"currency"`
	FxRateUSD     float64 `json:"fx_rate_usd"`
	CatalogTTLSec int     `json:"catalog_ttl_sec"`
}

type CSFloat struct {
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"api_key"`
	PageSize int    `json:"page_size"`
}

type Fees struct {
	FeePctByVenue    map[string]float64 `json:"fee_pct_by_venue"`
	PayoutFeeByVenue map[string]float64 `json:"payout_fee_by_venue"`
	FxHaircutPct     float64            `json:"fx_haircut_pct"`
}

type Batch struct {
	Workers            int `json:"workers"`
	PaceMs             int `json:"pace_ms"`
	VenueTimeoutSec    int `json:"venue_timeout_sec"`
	BreakerFailures    int `json:"breaker_failures"`
	BreakerCooldownSec int `json:"breaker_cooldown_sec"`
}

type Config struct {
	Server   Server   `json:"server"`
	Steam    Steam    `json:"steam"`
	Skinport Skinport `json:"skinport"`
	CSFloat  CSFloat  `json:"csfloat"`
	Fees     Fees     `json:"fees"`
	Batch    Batch    `json:"batch"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Steam: Steam{
			Endpoint:      "https://steamcommunity.com/market/priceoverview/",
			AppID:         730,
			CurrencyHint:  "1",
			MinIntervalMs: 500,
		},
		Skinport: Skinport{
			Endpoint:      "https://api.skinport.com/v1/items",
			Currency:      "EUR",
			FxRateUSD:     1.08,
			CatalogTTLSec: 300,
		},
		CSFloat: CSFloat{
			Endpoint: "https://csfloat.com/api/v1/listings",
			PageSize: 50,
		},
		Fees: Fees{
			FeePctByVenue: map[string]float64{
				"Steam":    0.15,
				"Skinport": 0.12,
				"CSFloat":  0.01,
				"Buff":     0.02,
			},
			PayoutFeeByVenue: map[string]float64{},
			FxHaircutPct:     0,
		},
		Batch: Batch{
			Workers:            3,
			PaceMs:             200,
			VenueTimeoutSec:    8,
			BreakerFailures:    5,
			BreakerCooldownSec: 30,
		},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Server.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("STEAM_API_KEY"); v != "" {
		cfg.Steam.APIKey = v
	}
	if v := os.Getenv("CSFLOAT_API_KEY"); v != "" {
		cfg.CSFloat.APIKey = v
	}
	if v := os.Getenv("DEFAULT_CURRENCY"); v != "" {
		cfg.Steam.CurrencyHint = v
	}
	if v := os.Getenv("SKINPORT_FX_RATE"); v != "" {
		var x float64
		fmt.Sscanf(v, "%g", &x)
		if x > 0 {
			cfg.Skinport.FxRateUSD = x
		}
	}
	if v := os.Getenv("SKINPORT_CATALOG_TTL_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Skinport.CatalogTTLSec = x
		}
	}
	if v := os.Getenv("BATCH_WORKERS"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Batch.Workers = x
		}
	}
	if v := os.Getenv("BATCH_PACE_MS"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.Batch.PaceMs = x
		}
	}
}

func (c Config) validate() error {
	for venue, pct := range c.Fees.FeePctByVenue {
		if pct < 0 || pct >= 1 {
			return fmt.Errorf("fees.fee_pct_by_venue[%s] out of range [0,1): %g", venue, pct)
		}
	}
	for venue, fee := range c.Fees.PayoutFeeByVenue {
		if fee < 0 {
			return fmt.Errorf("fees.payout_fee_by_venue[%s] is negative: %g", venue, fee)
		}
	}
	if c.Fees.FxHaircutPct < 0 || c.Fees.FxHaircutPct >= 1 {
		return fmt.Errorf("fees.fx_haircut_pct out of range [0,1): %g", c.Fees.FxHaircutPct)
	}
	return nil
}
