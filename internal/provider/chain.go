package provider

import (
	"context"
	"log"

	"github.com/samber/lo"
)

// Chain tries providers in priority order and returns the first non-empty
// result. No merging across providers: a partial answer from a better
// source beats a blend.
type Chain struct {
	providers []Provider
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Providers returns the registered adapters in priority order.
func (c *Chain) Providers() []Provider {
	return c.providers
}

// FetchNews walks the chain. Duplicate links within a single provider's
// answer are collapsed; an all-empty chain yields an empty slice, never an
// error.
func (c *Chain) FetchNews(ctx context.Context, topic string, limit int) []Item {
	for _, p := range c.providers {
		items := p.Fetch(ctx, topic, limit)
		if len(items) == 0 {
			continue
		}
		items = lo.UniqBy(items, func(it Item) string {
			if it.Link != "" {
				return it.Link
			}
			return it.Title
		})
		log.Printf("chain: %s returned %d items for %q", p.Name(), len(items), topic)
		return items
	}
	log.Printf("chain: all providers empty for %q", topic)
	return nil
}
