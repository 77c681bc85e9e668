package provider

import (
	"context"
	"time"
)

// SampleProvider returns built-in items so a fresh install with no keys and
// no reachable feeds still renders a dashboard. Registered last in the
// chain, and only when sample data is enabled in config.
type SampleProvider struct{}

func (s *SampleProvider) Name() string {
	return "sample"
}

func (s *SampleProvider) Fetch(_ context.Context, topic string, limit int) []Item {
	now := time.Now()
	items := []Item{
		{
			Title:       "PFAS Regulation Update",
			Link:        "https://www.epa.gov/pfas",
			Source:      "Sample",
			Summary:     "New PFAS regulation introduced in the US.",
			PublishedAt: now,
		},
		{
			Title:       "Water Treatment Innovation",
			Link:        "https://www.epa.gov/water",
			Source:      "Sample",
			Summary:     "New water treatment technology shows promise.",
			PublishedAt: now,
		},
	}
	return normalize(items, topic, limit)
}
