package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const gnewsBaseURL = "https://gnews.io/api/v4"

// GNewsProvider queries the GNews search API.
type GNewsProvider struct {
	APIKey string
	Client *http.Client

	// BaseURL overrides the live endpoint in tests.
	BaseURL string
}

func NewGNewsProvider(apiKey string) *GNewsProvider {
	return &GNewsProvider{
		APIKey: apiKey,
		Client: &http.Client{Timeout: FetchTimeout},
	}
}

func (g *GNewsProvider) Name() string {
	return "gnews"
}

type gnewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"source"`
}

type gnewsResponse struct {
	TotalArticles int            `json:"totalArticles"`
	Articles      []gnewsArticle `json:"articles"`
}

func (g *GNewsProvider) Fetch(ctx context.Context, topic string, limit int) []Item {
	items, err := g.fetch(ctx, topic, limit)
	if err != nil {
		log.Printf("gnews: fetch %q: %v", topic, err)
		return nil
	}
	return items
}

func (g *GNewsProvider) fetch(ctx context.Context, topic string, limit int) ([]Item, error) {
	if g.APIKey == "" {
		return nil, fmt.Errorf("gnews: no api key configured")
	}

	base := g.BaseURL
	if base == "" {
		base = gnewsBaseURL
	}
	q := url.Values{}
	q.Set("q", topic)
	q.Set("lang", "en")
	q.Set("max", fmt.Sprintf("%d", limit))
	q.Set("apikey", g.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("gnews: build request: %w", err)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gnews: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("gnews: rate limited (429)")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gnews: unexpected status %d", resp.StatusCode)
	}

	var out gnewsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("gnews: decode: %w", err)
	}

	now := time.Now()
	items := make([]Item, 0, len(out.Articles))
	for _, a := range out.Articles {
		items = append(items, Item{
			Title:       a.Title,
			Link:        a.URL,
			Source:      a.Source.Name,
			Summary:     a.Description,
			PublishedAt: ParsePublishedAt(a.PublishedAt, now),
			Raw: map[string]any{
				"source_url": a.Source.URL,
			},
		})
	}

	return normalize(items, topic, limit), nil
}
