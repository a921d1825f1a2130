package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pricelens/backend/config"
	httpDelivery "github.com/pricelens/backend/internal/delivery/http"
	"github.com/pricelens/backend/internal/infrastructure/ratelimit"
	"github.com/pricelens/backend/internal/infrastructure/serp"
	"github.com/pricelens/backend/internal/sites"
	"github.com/pricelens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PriceLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	limiter := ratelimit.NewDualWindow(cfg.Search.PerSecond, cfg.Search.PerHour)
	searchClient := serp.NewClient(
		cfg.Search.APIKey, cfg.Search.BaseURL,
		cfg.Search.Country, cfg.Search.Language,
		limiter,
	)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		searchClient.SetDebug(true)
		log.Printf("Search client debug mode enabled")
	}

	if cfg.Search.APIKey != "" {
		log.Printf("Search API configured: %s (budget: %d/s, %d/h)",
			cfg.Search.BaseURL, cfg.Search.PerSecond, cfg.Search.PerHour)
	} else {
		log.Printf("WARNING: search API key NOT CONFIGURED - resolutions will return Not Found")
	}

	// Initialize usecase layer
	registry := sites.DefaultRegistry()
	matcher := usecase.NewMatchingService(registry, usecase.MatchConfig{
		MarketplaceThreshold: cfg.Matching.MarketplaceThreshold,
		BrandThreshold:       cfg.Matching.BrandThreshold,
		RankPenalty:          cfg.Matching.RankPenalty,
		ColorBonus:           cfg.Matching.ColorBonus,
		ColorPenalty:         cfg.Matching.ColorPenalty,
		EnableDebugLogging:   cfg.Matching.EnableDebugLogging,
	})
	resolver := usecase.NewResolverService(searchClient, matcher, registry, usecase.ResolverConfig{
		Workers:            cfg.Pipeline.Workers,
		BatchSize:          cfg.Pipeline.BatchSize,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	log.Printf("Matching: marketplace=%.0f, brand=%.0f, debug=%v",
		cfg.Matching.MarketplaceThreshold,
		cfg.Matching.BrandThreshold,
		cfg.Matching.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(resolver)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
