package provider

import (
	"context"
	"strings"
	"time"
)

const (
	// FetchTimeout bounds every outbound provider call.
	FetchTimeout = 15 * time.Second

	// DefaultLimit is how many items a topic refresh asks for.
	DefaultLimit = 10

	// UnknownSource and NoDescription are the placeholder literals
	// substituted for missing provider fields.
	UnknownSource = "Unknown"
	NoDescription = "No description"

	maxResponseBytes = 1 << 20 // 1MB
)

// Item is the common shape every adapter normalizes into.
type Item struct {
	Title       string         `json:"title"`
	Link        string         `json:"link"`
	Source      string         `json:"source"`
	Summary     string         `json:"summary"`
	PublishedAt time.Time      `json:"publishedAt"`
	Topic       string         `json:"topic"`
	Raw         map[string]any `json:"-"`
}

// Provider abstracts one external news/search source. Fetch never fails:
// transport errors, bad statuses and malformed payloads are logged and
// collapse to an empty slice so the caller can fall through to the next
// provider in the chain.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, topic string, limit int) []Item
}

// normalize applies the rules every adapter shares: entries
// without a title are dropped, missing source/summary get literal
// placeholders, and the result is capped at limit.
func normalize(items []Item, topic string, limit int) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			continue
		}
		it.Title = strings.TrimSpace(it.Title)
		if strings.TrimSpace(it.Source) == "" {
			it.Source = UnknownSource
		}
		if strings.TrimSpace(it.Summary) == "" {
			it.Summary = NoDescription
		}
		it.Topic = topic
		out = append(out, it)
		if len(out) == limit {
			break
		}
	}
	return out
}
