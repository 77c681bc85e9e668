// Package scout orchestrates the cache-then-fetch pipeline: decide whether
// cached opportunities are fresh enough to serve, otherwise fetch from the
// provider chain, enrich, persist and serve.
package scout

import (
	"context"
	"log"
	"time"

	"github.com/carbonintel/market-scout/internal/provider"
)

// Store is the slice of the cache store the pipeline needs.
type Store interface {
	Insert(ctx context.Context, it provider.Item) (bool, error)
	Query(ctx context.Context, topic string, floor time.Time, skip, limit int, descending bool) ([]provider.Item, error)
}

// Fetcher is the fallback provider chain.
type Fetcher interface {
	FetchNews(ctx context.Context, topic string, limit int) []provider.Item
}

// Enricher rewrites an item summary; it never fails.
type Enricher interface {
	Enrich(ctx context.Context, text string) string
}

type Service struct {
	store    Store
	fetcher  Fetcher
	enricher Enricher

	// now is swappable for tests.
	now func() time.Time
}

func NewService(store Store, fetcher Fetcher, enricher Enricher) *Service {
	return &Service{
		store:    store,
		fetcher:  fetcher,
		enricher: enricher,
		now:      time.Now,
	}
}

// unboundedWindow stands in for "no floor" on period=all requests.
const unboundedWindow = 27 * 365 * 24 * time.Hour

// periodWindow maps a requested period onto a lookback duration. Anything
// unrecognized, including "all", is effectively unbounded.
func periodWindow(period string) time.Duration {
	switch period {
	case "day":
		return 24 * time.Hour
	case "month":
		return 30 * 24 * time.Hour
	case "year":
		return 365 * 24 * time.Hour
	default:
		return unboundedWindow
	}
}

// Opportunities serves one request: cache hit returns the stored items
// verbatim (already-cached items are never re-fetched or re-summarized,
// stale or not, as long as they fall inside the window); cache miss runs
// the fetch, enrich, persist path and returns the fresh, unpaginated list.
func (s *Service) Opportunities(ctx context.Context, topic, period string, skip, limit int, descending bool) []provider.Item {
	floor := s.now().Add(-periodWindow(period))

	cached, err := s.store.Query(ctx, topic, floor, skip, limit, descending)
	if err != nil {
		// A broken store read degrades to the fetch path rather than a 5xx.
		log.Printf("scout: query %q: %v", topic, err)
	}
	if len(cached) > 0 {
		return cached
	}

	// An empty page does not mean an empty cache: skip can reach past the
	// matching rows. The hit decision is made on the floor-filtered set,
	// so a warm cache serves the empty page instead of refetching.
	if skip > 0 {
		head, err := s.store.Query(ctx, topic, floor, 0, 1, descending)
		if err != nil {
			log.Printf("scout: head check %q: %v", topic, err)
		}
		if len(head) > 0 {
			return nil
		}
	}

	items, _ := s.Refresh(ctx, topic, provider.DefaultLimit)
	return items
}

// Refresh runs the miss path for a topic: fetch through the chain, enrich
// each item, then attempt an idempotent insert. Duplicate-key collisions
// are absorbed; the enriched list is returned regardless of how many
// inserts were skipped. Also reports how many rows were newly created.
func (s *Service) Refresh(ctx context.Context, topic string, limit int) ([]provider.Item, int) {
	fetched := s.fetcher.FetchNews(ctx, topic, limit)
	if len(fetched) == 0 {
		return nil, 0
	}

	inserted := 0
	out := make([]provider.Item, 0, len(fetched))
	for _, it := range fetched {
		it.Summary = s.enricher.Enrich(ctx, enrichInput(it))
		out = append(out, it)

		created, err := s.store.Insert(ctx, it)
		if err != nil {
			log.Printf("scout: insert %q: %v", it.Title, err)
			continue
		}
		if created {
			inserted++
		}
	}

	if inserted > 0 {
		log.Printf("scout: %q refreshed, %d new of %d fetched", topic, inserted, len(fetched))
	}
	return out, inserted
}

// LatestLive fetches the single freshest item for a topic, always hitting
// the providers. Used by the broadcaster.
func (s *Service) LatestLive(ctx context.Context, topic string) (provider.Item, bool) {
	items, _ := s.Refresh(ctx, topic, 1)
	if len(items) == 0 {
		return provider.Item{}, false
	}
	return items[0], true
}

// enrichInput picks the text handed to the summarizer: the raw summary, or
// the title when the adapter had nothing but a placeholder.
func enrichInput(it provider.Item) string {
	if it.Summary == "" || it.Summary == provider.NoDescription {
		return it.Title
	}
	return it.Summary
}
