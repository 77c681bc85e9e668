package provider

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// VendorSiteProvider scrapes headline links off a vendor homepage. Page
// structure varies per vendor, so this is best-effort: any anchor with
// meaningful text becomes an item dated "now".
type VendorSiteProvider struct {
	SiteURL string
}

func NewVendorSiteProvider(siteURL string) *VendorSiteProvider {
	return &VendorSiteProvider{SiteURL: siteURL}
}

func (v *VendorSiteProvider) Name() string {
	return "vendorsite"
}

func (v *VendorSiteProvider) Fetch(ctx context.Context, topic string, limit int) []Item {
	if v.SiteURL == "" {
		return nil
	}
	parsed, err := url.Parse(v.SiteURL)
	if err != nil || parsed.Host == "" {
		log.Printf("vendorsite: bad site url %q", v.SiteURL)
		return nil
	}

	c := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent("MarketScoutBot/1.0"),
	)
	c.SetRequestTimeout(FetchTimeout)

	now := time.Now()
	sourceName := parsed.Host
	items := make([]Item, 0, limit)

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		if len(items) >= limit {
			return
		}
		text := strings.TrimSpace(e.Text)
		// Skip nav chrome; headlines carry more than a word or two.
		if len(strings.Fields(text)) < 3 {
			return
		}
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		items = append(items, Item{
			Title:       text,
			Link:        link,
			Source:      sourceName,
			Summary:     "Update from " + sourceName,
			PublishedAt: now,
		})
	})

	if err := c.Visit(v.SiteURL); err != nil {
		log.Printf("vendorsite: visit %s: %v", v.SiteURL, err)
		return nil
	}

	return normalize(items, topic, limit)
}
