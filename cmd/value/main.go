package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"skinvalue/internal/config"
	"skinvalue/internal/httpx"
	"skinvalue/internal/portfolio"
	"skinvalue/internal/pricing"
	"skinvalue/internal/steamweb"
	"skinvalue/internal/venue"
	"skinvalue/internal/venue/breaker"
	"skinvalue/internal/venue/buff"
	"skinvalue/internal/venue/csfloat"
	"skinvalue/internal/venue/ratelimit"
	"skinvalue/internal/venue/skinport"
	"skinvalue/internal/venue/steam"
)

func main() {
	_ = godotenv.Load()

	var query string
	var namesCSV string
	var currency string
	var workers int
	var paceMs int
	var timeout int
	var configPath string

	flag.StringVar(&query, "query", getenv("QUERY", ""), "profile URL, vanity name or SteamID64 to value")
	flag.StringVar(&namesCSV, "names", getenv("NAMES", ""), "comma-separated market hash names to price instead of an inventory")
	flag.StringVar(&currency, "currency", getenv("DEFAULT_CURRENCY", ""), "Steam market currency tag (1 = USD)")
	flag.IntVar(&workers, "workers", getenvInt("BATCH_WORKERS", 0), "batch worker pool width")
	flag.IntVar(&paceMs, "pace-ms", getenvInt("BATCH_PACE_MS", -1), "milliseconds between item valuations")
	flag.IntVar(&timeout, "timeout", getenvInt("REQUEST_TIMEOUT_SEC", 0), "request timeout seconds")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if currency != "" {
		cfg.Steam.CurrencyHint = currency
	}
	if workers > 0 {
		cfg.Batch.Workers = workers
	}
	if paceMs >= 0 {
		cfg.Batch.PaceMs = paceMs
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
	builder := pricing.NewBuilder(buildSources(cfg, httpClient), time.Duration(cfg.Batch.VenueTimeoutSec)*time.Second)
	pricer := pricing.NewOrchestrator(builder, pricing.BatchConfig{
		Workers: cfg.Batch.Workers,
		Pace:    time.Duration(cfg.Batch.PaceMs) * time.Millisecond,
	})
	fees := pricing.FeesFrom(cfg.Fees.FeePctByVenue, cfg.Fees.PayoutFeeByVenue, cfg.Fees.FxHaircutPct)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	switch {
	case namesCSV != "":
		names := splitCSV(namesCSV)
		matrices := pricer.BuildAll(ctx, names, cfg.Steam.CurrencyHint, fees)
		printJSON(matrices)
	case query != "":
		sw := steamweb.New(steamweb.Config{APIKey: cfg.Steam.APIKey, AppID: cfg.Steam.AppID}, httpClient)
		steamID, err := sw.Resolve(ctx, query)
		if err != nil {
			log.Fatal().Err(err).Msg("resolve")
		}
		if steamID == "" {
			log.Fatal().Str("query", query).Msg("could not resolve SteamID")
		}
		holdings, err := sw.FetchHoldings(ctx, steamID)
		if err != nil {
			log.Fatal().Err(err).Msg("inventory")
		}
		if holdings == nil {
			log.Fatal().Str("steamid", steamID).Msg("no inventory or profile is private")
		}
		matrices := pricer.BuildAll(ctx, steamweb.Names(holdings), cfg.Steam.CurrencyHint, fees)
		printJSON(portfolio.Value(holdings, matrices))
	default:
		fmt.Fprintln(os.Stderr, "usage: value -query <profile> | -names <a,b,c>")
		os.Exit(2)
	}
}

func buildSources(cfg config.Config, hc *httpx.Client) []venue.Source {
	brk := breaker.Config{
		ConsecutiveFailures: uint32(cfg.Batch.BreakerFailures),
		Timeout:             time.Duration(cfg.Batch.BreakerCooldownSec) * time.Second,
	}
	var st venue.Fetcher = steam.New(steam.Config{URL: cfg.Steam.Endpoint, AppID: cfg.Steam.AppID}, hc)
	if cfg.Steam.MinIntervalMs > 0 {
		st = &ratelimit.MinInterval{F: st, Interval: time.Duration(cfg.Steam.MinIntervalMs) * time.Millisecond}
	}
	var sp venue.Fetcher = skinport.New(skinport.Config{
		URL:        cfg.Skinport.Endpoint,
		Currency:   cfg.Skinport.Currency,
		FxRate:     decimal.NewFromFloat(cfg.Skinport.FxRateUSD),
		CatalogTTL: time.Duration(cfg.Skinport.CatalogTTLSec) * time.Second,
	}, hc)
	var cf venue.Fetcher = csfloat.New(csfloat.Config{
		APIKey:   cfg.CSFloat.APIKey,
		URL:      cfg.CSFloat.Endpoint,
		PageSize: cfg.CSFloat.PageSize,
	}, csfloat.WithHTTPClient(hc.HTTP))
	return []venue.Source{
		venue.Totalize(breaker.Wrap(st, brk)),
		venue.Totalize(breaker.Wrap(sp, brk)),
		venue.Totalize(breaker.Wrap(cf, brk)),
		venue.Totalize(buff.New()),
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("encode")
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var x int
		_, _ = fmt.Sscanf(v, "%d", &x)
		if x != 0 {
			return x
		}
	}
	return def
}
