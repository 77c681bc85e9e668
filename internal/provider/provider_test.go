package provider

import (
	"testing"
	"time"
)

func TestNormalizeSkipsAndSubstitutes(t *testing.T) {
	now := time.Now()
	items := []Item{
		{Title: "", Link: "https://example.com/untitled", PublishedAt: now},
		{Title: "  Has Title  ", Link: "https://example.com/1", PublishedAt: now},
		{Title: "No Source Or Summary", Link: "https://example.com/2", PublishedAt: now},
	}

	out := normalize(items, "PFAS", 10)
	if len(out) != 2 {
		t.Fatalf("normalize kept %d items, want 2 (titleless entry dropped)", len(out))
	}
	if out[0].Title != "Has Title" {
		t.Fatalf("title not trimmed: %q", out[0].Title)
	}
	if out[1].Source != UnknownSource {
		t.Fatalf("missing source = %q, want %q", out[1].Source, UnknownSource)
	}
	if out[1].Summary != NoDescription {
		t.Fatalf("missing summary = %q, want %q", out[1].Summary, NoDescription)
	}
	for _, it := range out {
		if it.Topic != "PFAS" {
			t.Fatalf("topic not stamped: %+v", it)
		}
	}
}

func TestNormalizeCapsAtLimit(t *testing.T) {
	items := make([]Item, 8)
	for i := range items {
		items[i] = Item{Title: "t", Link: "https://example.com"}
	}

	out := normalize(items, "EDLC", 3)
	if len(out) != 3 {
		t.Fatalf("normalize returned %d items, want limit 3", len(out))
	}
}
