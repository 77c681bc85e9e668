package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	GNewsAPIKey    string
	NewsdataAPIKey string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	SlackWebhookURL string
	VendorSiteURL   string

	// RefreshCron drives the daily full pass over Topics; the broadcaster
	// runs on its own BroadcastInterval loop.
	RefreshCron       string
	BroadcastInterval time.Duration

	// SampleData serves built-in sample items when a topic is cold and
	// every provider came back empty.
	SampleData bool

	Topics []string
}

// DefaultTopics is the fixed list walked by the scheduler and broadcaster.
// On-demand requests accept arbitrary topics on top of these.
var DefaultTopics = []string{
	"PFAS",
	"Soil Remediation",
	"Gold Recovery",
	"Drinking Water",
	"Wastewater Treatment",
	"Mercury Removal",
	"Energy Storage",
	"EDLC",
	"Silicon Anodes",
	"Carbon Block Filters",
}

func Load() *Config {
	cfg := &Config{
		AppPort:     getEnv("APP_PORT", "9000"),
		PostgresDSN: getEnv("POSTGRES_DSN", "host=localhost user=marketscout password=marketscout dbname=marketscout port=5432 sslmode=disable TimeZone=UTC"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6380"),

		GNewsAPIKey:    getEnv("GNEWS_API_KEY", ""),
		NewsdataAPIKey: getEnv("NEWSDATA_API_KEY", ""),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		VendorSiteURL:   getEnv("VENDOR_SITE_URL", ""),

		RefreshCron:       getEnv("REFRESH_CRON", "0 6 * * *"),
		BroadcastInterval: getEnvDuration("BROADCAST_INTERVAL", 10*time.Minute),
		SampleData:        getEnvBool("SAMPLE_DATA", true),

		Topics: DefaultTopics,
	}

	log.Printf("config loaded: port=%s refresh=%q broadcast=%s ai=%v news=%v",
		cfg.AppPort, cfg.RefreshCron, cfg.BroadcastInterval, cfg.AIConfigured(), cfg.NewsConfigured())
	return cfg
}

// AIConfigured reports whether the summarization capability has credentials.
func (c *Config) AIConfigured() bool {
	return c.OpenAIAPIKey != ""
}

// NewsConfigured reports whether at least one keyed news provider has
// credentials. The RSS and vendor-site adapters need none.
func (c *Config) NewsConfigured() bool {
	return c.GNewsAPIKey != "" || c.NewsdataAPIKey != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("warn: invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("warn: invalid %s=%q, using %v", key, v, def)
		return def
	}
	return b
}
