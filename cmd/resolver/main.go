package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/pricelens/backend/config"
	"github.com/pricelens/backend/internal/infrastructure/cache"
	"github.com/pricelens/backend/internal/infrastructure/ratelimit"
	"github.com/pricelens/backend/internal/infrastructure/scraper"
	"github.com/pricelens/backend/internal/infrastructure/serp"
	"github.com/pricelens/backend/internal/ingest"
	"github.com/pricelens/backend/internal/sites"
	"github.com/pricelens/backend/internal/storage"
	"github.com/pricelens/backend/internal/usecase"
)

func main() {
	inputPath := flag.String("input", "catalog.csv", "catalog CSV export to resolve")
	outputPath := flag.String("output", "report.csv", "where to write the resolution report")
	skipPrices := flag.Bool("skip-prices", false, "skip the price scraping stage")
	flag.Parse()

	// .env is optional; real deployments set env vars directly.
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	items, err := ingest.LoadCatalog(*inputPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Printf("Loaded %d items from %s", len(items), *inputPath)

	registry := sites.DefaultRegistry()
	limiter := ratelimit.NewDualWindow(cfg.Search.PerSecond, cfg.Search.PerHour)
	searchClient := serp.NewClient(
		cfg.Search.APIKey, cfg.Search.BaseURL,
		cfg.Search.Country, cfg.Search.Language,
		limiter,
	)
	if cfg.Server.Environment == "development" {
		searchClient.SetDebug(true)
	}

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

	ctx := context.Background()
	start := time.Now()

	results := resolver.ResolveAll(ctx, items)

	if !*skipPrices {
		fetcher := scraper.NewFetcher(scraper.Config{
			RenderAPIKey:   cfg.Fetch.RenderAPIKey,
			RenderBaseURL:  cfg.Fetch.RenderBaseURL,
			Timeout:        cfg.Fetch.Timeout,
			RenderTimeout:  cfg.Fetch.RenderTimeout,
			MaxRetries:     cfg.Fetch.MaxRetries,
			RetryDelay:     cfg.Fetch.RetryDelay,
			RenderParallel: int64(cfg.Fetch.RenderParallel),
			MinRenderBytes: cfg.Fetch.MinRenderBytes,
		})
		priceService := usecase.NewPriceService(fetcher, cache.NewMemoryCache(), registry, usecase.PriceServiceConfig{
			Workers:            cfg.Pipeline.PriceWorkers,
			CacheTTL:           cfg.Cache.TTL,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		})
		priceService.UpdatePrices(ctx, results)
	}

	if err := storage.WriteReport(*outputPath, results); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	log.Printf("Done: %d items in %.1fs (%d search calls) -> %s",
		len(results), time.Since(start).Seconds(), searchClient.Calls(), *outputPath)
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stdout)
}
