package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"skinvalue/internal/config"
	"skinvalue/internal/httpx"
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
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") != "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if cfg.CSFloat.APIKey == "" {
		log.Warn().Msg("CSFLOAT_API_KEY not set; CSFloat venue will report null-quotes")
	}
	if cfg.Steam.APIKey == "" {
		log.Warn().Msg("STEAM_API_KEY not set; vanity names will not resolve")
	}

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	srv := &server{
		steam:   steamweb.New(steamweb.Config{APIKey: cfg.Steam.APIKey, AppID: cfg.Steam.AppID}, httpClient),
		builder: pricing.NewBuilder(buildSources(cfg, httpClient), time.Duration(cfg.Batch.VenueTimeoutSec)*time.Second),
		fees:    pricing.FeesFrom(cfg.Fees.FeePctByVenue, cfg.Fees.PayoutFeeByVenue, cfg.Fees.FxHaircutPct),
		hint:    cfg.Steam.CurrencyHint,
	}
	srv.pricer = pricing.NewOrchestrator(srv.builder, pricing.BatchConfig{
		Workers: cfg.Batch.Workers,
		Pace:    time.Duration(cfg.Batch.PaceMs) * time.Millisecond,
	})

	r := mux.NewRouter()
	r.Use(recoverPanic, withGzip, limitBody)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(withJSONHeaders)
	api.HandleFunc("/resolve", srv.handleResolve).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/inventory", srv.handleInventory).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/prices", srv.handleGetPrices).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/prices", srv.handlePostPrices).Methods(http.MethodPost)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server listening")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}

// buildSources assembles the four venue sources in fixed order. Steam is
// paced, the networked venues sit behind circuit breakers, and every
// fetcher is collapsed into a total-function source at the end.
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
		// Buff has no network behind it; no breaker needed.
		venue.Totalize(buff.New()),
	}
}
