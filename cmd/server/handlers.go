package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"skinvalue/internal/portfolio"
	"skinvalue/internal/pricing"
	"skinvalue/internal/steamweb"
)

type server struct {
	steam   *steamweb.Client
	builder *pricing.Builder
	pricer  *pricing.Orchestrator
	fees    pricing.FeeConfig
	hint    string
}

type resolveResponse struct {
	SteamID string `json:"steamid"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type pricesResponse struct {
	Matrices map[string]pricing.PriceMatrix `json:"matrices"`
}

type inventoryResponse struct {
	Items []portfolio.ValuedItem `json:"items"`
	Total decimal.Decimal        `json:"total"`
}

func (s *server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeError(w, http.StatusBadRequest, "missing q query param")
		return
	}
	id, err := s.steam.Resolve(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if id == "" {
		writeError(w, http.StatusNotFound, "could not resolve")
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{SteamID: id})
}

func (s *server) handleInventory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "missing query param")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	steamID, err := s.steam.Resolve(ctx, query)
	if err != nil || steamID == "" {
		writeError(w, http.StatusBadRequest, "could not resolve SteamID from input")
		return
	}
	holdings, err := s.steam.FetchHoldings(ctx, steamID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if holdings == nil {
		writeError(w, http.StatusNotFound, "no inventory or profile is private")
		return
	}

	matrices := s.pricer.BuildAll(ctx, steamweb.Names(holdings), s.hint, s.fees)
	v := portfolio.Value(holdings, matrices)
	log.Info().Str("steamid", steamID).Int("items", len(v.Items)).
		Str("total", v.Total.String()).Msg("inventory valued")
	writeJSON(w, http.StatusOK, inventoryResponse{Items: v.Items, Total: v.Total})
}

func (s *server) handleGetPrices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("names")
	if strings.TrimSpace(q) == "" {
		writeError(w, http.StatusBadRequest, "missing names query param")
		return
	}
	names := splitCSV(q)
	if len(names) > 1000 {
		writeError(w, http.StatusBadRequest, "too many names (max 1000)")
		return
	}
	s.writePrices(w, r.Context(), names)
}

type pricesBody struct {
	Names []string `json:"names"`
}

func (s *server) handlePostPrices(w http.ResponseWriter, r *http.Request) {
	var b pricesBody
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(b.Names) == 0 {
		writeError(w, http.StatusBadRequest, "names cannot be empty")
		return
	}
	if len(b.Names) > 1000 {
		writeError(w, http.StatusBadRequest, "too many names (max 1000)")
		return
	}
	s.writePrices(w, r.Context(), b.Names)
}

func (s *server) writePrices(w http.ResponseWriter, rctx context.Context, names []string) {
	ctx, cancel := context.WithTimeout(rctx, 90*time.Second)
	defer cancel()
	matrices := s.pricer.BuildAll(ctx, names, s.hint, s.fees)
	writeJSON(w, http.StatusOK, pricesResponse{Matrices: matrices})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		// Basic CORS for browser usage; adjust as needed.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withGzip compresses response when client supports gzip.
func withGzip(next http.Handler) http.Handler {
	var gzPool = sync.Pool{New: func() any {
		// Prefer best speed to reduce CPU usage since payloads are JSON
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
		return w
	}}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		gz := gzPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			_ = gz.Close()
			gz.Reset(io.Discard)
			gzPool.Put(gz)
		}()
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		gw := gzipResponseWriter{ResponseWriter: w, Writer: gz}
		next.ServeHTTP(gw, r)
	})
}

type gzipResponseWriter struct {
	http.ResponseWriter
	Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
	return g.Writer.Write(b)
}

// limitBody caps request body size to avoid memory abuse.
func limitBody(next http.Handler) http.Handler {
	const maxBody = 1 << 20 // 1MB
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
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
