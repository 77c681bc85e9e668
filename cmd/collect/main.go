package main

import (
	"log"

	"github.com/carbonintel/market-scout/internal/alert"
	"github.com/carbonintel/market-scout/internal/config"
	"github.com/carbonintel/market-scout/internal/enrich"
	"github.com/carbonintel/market-scout/internal/provider"
	"github.com/carbonintel/market-scout/internal/scheduler"
	"github.com/carbonintel/market-scout/internal/scout"
	"github.com/carbonintel/market-scout/internal/storage"
)

// One-shot refresh of the fixed topic list: fetch, enrich, persist, exit.
// Suits manual runs and external cron.
func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	// Same chain order as cmd/api.
	providers := make([]provider.Provider, 0, 5)
	if cfg.GNewsAPIKey != "" {
		providers = append(providers, provider.NewGNewsProvider(cfg.GNewsAPIKey))
	}
	if cfg.NewsdataAPIKey != "" {
		providers = append(providers, provider.NewNewsdataProvider(cfg.NewsdataAPIKey))
	}
	providers = append(providers, provider.NewGoogleNewsProvider())
	if cfg.VendorSiteURL != "" {
		providers = append(providers, provider.NewVendorSiteProvider(cfg.VendorSiteURL))
	}
	if cfg.SampleData {
		providers = append(providers, &provider.SampleProvider{})
	}
	chain := provider.NewChain(providers...)

	summarizer := enrich.NewSummarizer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	svc := scout.NewService(store, chain, summarizer)

	sched, err := scheduler.New(cfg.RefreshCron, cfg.Topics, svc, alert.NewSlack(cfg.SlackWebhookURL))
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}

	sched.RunOnce()
}
