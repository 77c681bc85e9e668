package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carbonintel/market-scout/internal/alert"
	"github.com/carbonintel/market-scout/internal/api"
	"github.com/carbonintel/market-scout/internal/config"
	"github.com/carbonintel/market-scout/internal/enrich"
	"github.com/carbonintel/market-scout/internal/live"
	"github.com/carbonintel/market-scout/internal/provider"
	"github.com/carbonintel/market-scout/internal/scheduler"
	"github.com/carbonintel/market-scout/internal/scout"
	"github.com/carbonintel/market-scout/internal/storage"
)

func main() {
	cfg := config.Load()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	chain := buildChain(cfg)
	summarizer := enrich.NewSummarizer(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	svc := scout.NewService(store, chain, summarizer)

	// Scheduled full refresh over the fixed topic list, Slack on new rows.
	slack := alert.NewSlack(cfg.SlackWebhookURL)
	sched, err := scheduler.New(cfg.RefreshCron, cfg.Topics, svc, slack)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	sched.Start()

	// Live push loop feeding the websocket subscribers.
	registry := live.NewRegistry()
	broadcaster := live.NewBroadcaster(cfg.Topics, cfg.BroadcastInterval, svc, registry)
	broadcaster.Start()

	r := gin.Default()
	apiServer := api.NewServer(svc, store, summarizer, registry, cfg.Topics[0], cfg.AIConfigured(), cfg.NewsConfigured())
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		log.Printf("starting api server at %s ...", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server exit: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	sched.Stop()
	broadcaster.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("warn: server shutdown: %v", err)
	}
}

// buildChain wires the provider fallback order: keyed APIs first, the
// keyless RSS feed as workhorse fallback, the vendor site when configured,
// and built-in samples last when enabled.
func buildChain(cfg *config.Config) *provider.Chain {
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
	return provider.NewChain(providers...)
}
