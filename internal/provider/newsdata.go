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

const newsdataBaseURL = "https://newsdata.io/api/1"

// NewsdataProvider queries the Newsdata.io latest-news API. Field names
// differ from GNews (link/pubDate/source_name); normalization maps both
// onto the common Item shape.
type NewsdataProvider struct {
	APIKey string
	Client *http.Client

	BaseURL string
}

func NewNewsdataProvider(apiKey string) *NewsdataProvider {
	return &NewsdataProvider{
		APIKey: apiKey,
		Client: &http.Client{Timeout: FetchTimeout},
	}
}

func (n *NewsdataProvider) Name() string {
	return "newsdata"
}

type newsdataResult struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	PubDate     string `json:"pubDate"`
	SourceID    string `json:"source_id"`
	SourceName  string `json:"source_name"`
}

type newsdataResponse struct {
	Status  string           `json:"status"`
	Results []newsdataResult `json:"results"`
}

func (n *NewsdataProvider) Fetch(ctx context.Context, topic string, limit int) []Item {
	items, err := n.fetch(ctx, topic, limit)
	if err != nil {
		log.Printf("newsdata: fetch %q: %v", topic, err)
		return nil
	}
	return items
}

func (n *NewsdataProvider) fetch(ctx context.Context, topic string, limit int) ([]Item, error) {
	if n.APIKey == "" {
		return nil, fmt.Errorf("newsdata: no api key configured")
	}

	base := n.BaseURL
	if base == "" {
		base = newsdataBaseURL
	}
	q := url.Values{}
	q.Set("apikey", n.APIKey)
	q.Set("q", topic)
	q.Set("language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/latest?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsdata: build request: %w", err)
	}

	resp, err := n.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsdata: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("newsdata: rate limited (429)")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsdata: unexpected status %d", resp.StatusCode)
	}

	var out newsdataResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("newsdata: decode: %w", err)
	}
	if out.Status != "success" {
		return nil, fmt.Errorf("newsdata: status %q", out.Status)
	}

	now := time.Now()
	items := make([]Item, 0, len(out.Results))
	for _, r := range out.Results {
		source := r.SourceName
		if source == "" {
			source = r.SourceID
		}
		items = append(items, Item{
			Title:       r.Title,
			Link:        r.Link,
			Source:      source,
			Summary:     r.Description,
			PublishedAt: ParsePublishedAt(r.PubDate, now),
			Raw: map[string]any{
				"source_id": r.SourceID,
			},
		})
	}

	return normalize(items, topic, limit), nil
}
