package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Search    SearchConfig
	Fetch     FetchConfig
	Matching  MatchingConfig
	Pipeline  PipelineConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SearchConfig holds the visual search backend configuration
type SearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Country  string `mapstructure:"country"`
	Language string `mapstructure:"language"`
	// PerSecond and PerHour are the dual sliding-window call budgets.
	PerSecond int `mapstructure:"per_second"`
	PerHour   int `mapstructure:"per_hour"`
}

// FetchConfig holds page fetching and rendering configuration
type FetchConfig struct {
	RenderAPIKey   string        `mapstructure:"render_api_key"`
	RenderBaseURL  string        `mapstructure:"render_base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RenderTimeout  time.Duration `mapstructure:"render_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	RenderParallel int           `mapstructure:"render_parallel"`
	MinRenderBytes int           `mapstructure:"min_render_bytes"`
}

// MatchingConfig holds candidate matching configuration
type MatchingConfig struct {
	MarketplaceThreshold float64 `mapstructure:"marketplace_threshold"`
	BrandThreshold       float64 `mapstructure:"brand_threshold"`
	RankPenalty          float64 `mapstructure:"rank_penalty"`
	ColorBonus           float64 `mapstructure:"color_bonus"`
	ColorPenalty         float64 `mapstructure:"color_penalty"`
	EnableDebugLogging   bool    `mapstructure:"enable_debug_logging"`
}

// PipelineConfig holds resolver pipeline configuration
type PipelineConfig struct {
	Workers      int `mapstructure:"workers"`
	BatchSize    int `mapstructure:"batch_size"`
	PriceWorkers int `mapstructure:"price_workers"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds HTTP rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricelens/")

	// Environment variable settings
	v.SetEnvPrefix("PRICELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Search defaults
	v.SetDefault("search.base_url", "https://serpapi.com")
	v.SetDefault("search.country", "in")
	v.SetDefault("search.language", "en")
	v.SetDefault("search.per_second", 7)
	v.SetDefault("search.per_hour", 1000)

	// Fetch defaults
	v.SetDefault("fetch.render_base_url", "https://api.scraperapi.com")
	v.SetDefault("fetch.timeout", "30s")
	v.SetDefault("fetch.render_timeout", "60s")
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.retry_delay", "2s")
	v.SetDefault("fetch.render_parallel", 3)
	v.SetDefault("fetch.min_render_bytes", 5000)

	// Matching defaults
	v.SetDefault("matching.marketplace_threshold", 5.0)
	v.SetDefault("matching.brand_threshold", 15.0)
	v.SetDefault("matching.rank_penalty", 5.0)
	v.SetDefault("matching.color_bonus", 15.0)
	v.SetDefault("matching.color_penalty", 20.0)
	v.SetDefault("matching.enable_debug_logging", false)

	// Pipeline defaults
	v.SetDefault("pipeline.workers", 8)
	v.SetDefault("pipeline.batch_size", 8)
	v.SetDefault("pipeline.price_workers", 24)

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration. A missing search key is only
// warned about: searches short-circuit per item and the run still emits
// sentinel rows.
func validate(config *Config) error {
	if config.Search.APIKey == "" {
		log.Printf("WARNING: search API key not set (PRICELENS_SEARCH_API_KEY) - all searches will return Not Found")
	}

	if config.Search.PerSecond <= 0 || config.Search.PerHour <= 0 {
		return fmt.Errorf("search rate budgets must be positive, got %d/s %d/h",
			config.Search.PerSecond, config.Search.PerHour)
	}

	if config.Fetch.RenderParallel <= 0 {
		return fmt.Errorf("fetch.render_parallel must be positive, got: %d", config.Fetch.RenderParallel)
	}

	return nil
}
