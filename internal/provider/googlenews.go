package provider

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const googleNewsBaseURL = "https://news.google.com/rss"

// GoogleNewsProvider pulls the Google News RSS search feed for a topic.
// Needs no API key, which makes it the workhorse fallback when the keyed
// providers are unconfigured or rate limited.
type GoogleNewsProvider struct {
	Parser *gofeed.Parser

	BaseURL string
}

func NewGoogleNewsProvider() *GoogleNewsProvider {
	p := gofeed.NewParser()
	p.UserAgent = "MarketScoutBot/1.0"
	return &GoogleNewsProvider{Parser: p}
}

func (g *GoogleNewsProvider) Name() string {
	return "googlenews"
}

func (g *GoogleNewsProvider) Fetch(ctx context.Context, topic string, limit int) []Item {
	base := g.BaseURL
	if base == "" {
		base = googleNewsBaseURL
	}
	feedURL := base + "/search?q=" + url.QueryEscape(topic)

	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	feed, err := g.Parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		log.Printf("googlenews: fetch %q: %v", topic, err)
		return nil
	}

	now := time.Now()
	items := make([]Item, 0, len(feed.Items))
	for _, e := range feed.Items {
		published := now
		if e.PublishedParsed != nil {
			published = *e.PublishedParsed
		} else if e.Published != "" {
			published = ParsePublishedAt(e.Published, now)
		}

		items = append(items, Item{
			Title:       e.Title,
			Link:        e.Link,
			Source:      "Google News",
			Summary:     cleanHTML(e.Description),
			PublishedAt: published,
			Raw: map[string]any{
				"guid": e.GUID,
			},
		})
	}

	return normalize(items, topic, limit)
}

// cleanHTML strips markup from RSS descriptions, which Google News ships
// as anchor-wrapped HTML fragments.
func cleanHTML(raw string) string {
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
