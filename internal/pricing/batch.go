package pricing

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"skinvalue/internal/telemetry"
)

// BatchConfig tunes the batch orchestrator.
type BatchConfig struct {
	// Workers is the worker pool width.
	Workers int
	// Pace is the minimum spacing between item valuations across the
	// whole pool. The bulk-catalog venue rate-limits aggressively under
	// burst load, so the pool never starts items faster than this.
	Pace time.Duration
}

// DefaultBatchConfig returns the stock pool width and pacing.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{Workers: 3, Pace: 200 * time.Millisecond}
}

// Orchestrator runs the matrix builder across many item names under a
// bounded worker pool with inter-item pacing.
type Orchestrator struct {
	builder *Builder
	workers int
	limiter *rate.Limiter
}

func NewOrchestrator(b *Builder, cfg BatchConfig) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Pace > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.Pace), 1)
	}
	return &Orchestrator{builder: b, workers: cfg.Workers, limiter: limiter}
}

// BuildAll values every given name and returns one matrix per unique
// name. A failing or empty venue degrades a matrix, never the batch: the
// result always holds exactly one well-formed entry per name. Workers
// share a queue and hand results back over a channel; a canceled context
// stops waiting on the pacer and lets the remaining items fall through as
// null matrices so the mapping stays complete.
func (o *Orchestrator) BuildAll(ctx context.Context, names []string, currencyHint string, fees FeeConfig) map[string]PriceMatrix {
	uniq := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; !dup {
			seen[n] = struct{}{}
			uniq = append(uniq, n)
		}
	}

	work := make(chan string, len(uniq))
	for _, n := range uniq {
		work <- n
	}
	close(work)

	type keyed struct {
		name   string
		matrix PriceMatrix
	}
	results := make(chan keyed, len(uniq))

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range work {
				// Pacing failure means the context is gone; the build
				// below then null-quotes immediately, which still yields
				// a complete batch.
				_ = o.limiter.Wait(ctx)
				m := o.builder.Build(ctx, name, currencyHint, fees)
				telemetry.ObserveBatchItem()
				results <- keyed{name: name, matrix: m}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make(map[string]PriceMatrix, len(uniq))
	for r := range results {
		out[r.name] = r.matrix
	}
	return out
}
