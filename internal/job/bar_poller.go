package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// BarRefresher re-fetches recent history for a symbol into the warm store.
type BarRefresher interface {
	RefreshBars(ctx context.Context, symbol string) error
}

// BarPoller keeps the warm store current for a configured watch list. It
// refreshes symbols round-robin so a long list never bursts the provider's
// rate limit.
type BarPoller struct {
	tracer       trace.Tracer
	refresher    BarRefresher
	symbols      []string
	pollInterval time.Duration
	batchSize    int
}

func NewBarPoller(tracer trace.Tracer, refresher BarRefresher, symbols []string, pollIntervalSecs int) *BarPoller {
	return &BarPoller{
		tracer:       tracer,
		refresher:    refresher,
		symbols:      symbols,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
		batchSize:    2,
	}
}

// Start blocks until ctx is cancelled.
func (p *BarPoller) Start(ctx context.Context) {
	if len(p.symbols) == 0 {
		log.Println("Bar poller has no watch list, not starting")
		return
	}
	log.Printf("Bar poller starting for %d symbols...", len(p.symbols))

	index := 0
	p.refreshBatch(ctx, &index)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Bar poller stopped")
			return
		case <-ticker.C:
			p.refreshBatch(ctx, &index)
		}
	}
}

func (p *BarPoller) refreshBatch(ctx context.Context, index *int) {
	_, span := p.tracer.Start(ctx, "bar-poller.refresh-batch")
	defer span.End()

	for i := 0; i < p.batchSize; i++ {
		symbol := p.symbols[*index%len(p.symbols)]
		*index++

		if err := p.refresher.RefreshBars(ctx, symbol); err != nil {
			log.Printf("bar refresh error for %s: %v", symbol, err)
		}
	}
}
