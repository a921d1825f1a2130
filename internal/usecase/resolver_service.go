package usecase

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/sites"
)

// ResolverConfig holds configuration for the two-pass resolver.
type ResolverConfig struct {
	// Workers is the fixed worker pool size per pass.
	Workers int
	// BatchSize bounds in-flight work: one batch's completions are drained
	// before the next batch is admitted.
	BatchSize          int
	EnableDebugLogging bool
}

// ResolverService drives the two-pass resolution pipeline: a broad visual
// search for every item, then site-scoped queries only for the sites still
// unresolved.
type ResolverService struct {
	search    domain.SearchClient
	matcher   *MatchingService
	registry  *sites.Registry
	workers   int
	batchSize int
	debug     bool
}

// NewResolverService creates a resolver with the given dependencies.
func NewResolverService(
	search domain.SearchClient,
	matcher *MatchingService,
	registry *sites.Registry,
	config ResolverConfig,
) *ResolverService {
	if config.Workers <= 0 {
		config.Workers = 8
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 8
	}
	return &ResolverService{
		search:    search,
		matcher:   matcher,
		registry:  registry,
		workers:   config.Workers,
		batchSize: config.BatchSize,
		debug:     config.EnableDebugLogging,
	}
}

// ResolveAll runs both passes over the item set and returns one result per
// input item, sorted by descending view count (stable). Per-item failures
// degrade to "Not Found" entries; they never abort the run.
func (s *ResolverService) ResolveAll(ctx context.Context, items []domain.Item) []domain.ItemResult {
	total := len(items)
	log.Printf("[PASS 1] Visual search for %d items (%d workers, batch %d)",
		total, s.workers, s.batchSize)

	results := s.runPool(len(items),
		func(i int) domain.ItemResult { return s.newEntry(items[i]) },
		func(i int) domain.ItemResult { return s.resolvePass1(ctx, items[i], i+1, total) },
	)

	var needsPass2 []int
	for i := range results {
		if len(results[i].Unresolved()) > 0 && results[i].Item.ImageURL != "" {
			needsPass2 = append(needsPass2, i)
		}
	}

	if len(needsPass2) > 0 {
		log.Printf("[PASS 2] Site-scoped queries for %d items", len(needsPass2))
		reprocessed := s.runPool(len(needsPass2),
			func(i int) domain.ItemResult { return results[needsPass2[i]] },
			func(i int) domain.ItemResult {
				return s.resolvePass2(ctx, results[needsPass2[i]], i+1, len(needsPass2))
			},
		)

		// Join back by style ID. Duplicate or reused style IDs collapse to
		// the last reprocessed entry (last write wins).
		byStyle := make(map[string]domain.ItemResult, len(reprocessed))
		for _, entry := range reprocessed {
			byStyle[entry.Item.StyleID] = entry
		}
		for i := range results {
			if updated, ok := byStyle[results[i].Item.StyleID]; ok {
				results[i] = updated
			}
		}
	} else {
		log.Printf("[PASS 2] Skipped: all sites resolved in pass 1")
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Item.ViewCount > results[j].Item.ViewCount
	})
	return results
}

// ResolveOne resolves a single item through both passes. Used by the HTTP
// delivery layer.
func (s *ResolverService) ResolveOne(ctx context.Context, item domain.Item) domain.ItemResult {
	entry := s.resolvePass1(ctx, item, 1, 1)
	if len(entry.Unresolved()) > 0 && entry.Item.ImageURL != "" {
		entry = s.resolvePass2(ctx, entry, 1, 1)
	}
	return entry
}

// runPool executes n jobs on the fixed worker pool, admitting them in
// batches and draining each batch before the next. Results keep job order.
// A panicking worker is caught so siblings keep running; its slot keeps the
// seeded placeholder, so the item's identity survives into the output.
func (s *ResolverService) runPool(n int, seed, job func(i int) domain.ItemResult) []domain.ItemResult {
	results := make([]domain.ItemResult, n)
	for i := range results {
		results[i] = seed(i)
	}
	slots := make(chan struct{}, s.workers)

	for start := 0; start < n; start += s.batchSize {
		end := start + s.batchSize
		if end > n {
			end = n
		}
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			slots <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-slots }()
				defer func() {
					if r := recover(); r != nil {
						log.Printf("[POOL] worker panic on job %d: %v", i, r)
					}
				}()
				results[i] = job(i)
			}(i)
		}
		wg.Wait()
	}
	return results
}

// newEntry builds the item's "Not Found" skeleton: brand site looked up,
// allowed sites listed, every slot at the placeholder.
func (s *ResolverService) newEntry(item domain.Item) domain.ItemResult {
	entry := domain.ItemResult{
		Item:        item,
		SiteResults: make(map[string]domain.SiteResult),
	}
	entry.BrandSite = s.registry.BrandSite(item.Brand)
	entry.AllowedSites = append(entry.AllowedSites, s.registry.MarketplaceKeys()...)
	if entry.BrandSite != "" {
		entry.AllowedSites = append(entry.AllowedSites, entry.BrandSite)
	}
	for _, site := range entry.AllowedSites {
		entry.SiteResults[site] = domain.NotFoundResult()
	}
	return entry
}

// resolvePass1 runs the pure visual search for one item.
func (s *ResolverService) resolvePass1(ctx context.Context, item domain.Item, idx, total int) domain.ItemResult {
	start := time.Now()
	entry := s.newEntry(item)

	if item.ImageURL == "" {
		log.Printf("[PASS 1] [%d/%d] No image URL, skipped: %s", idx, total, item.StyleID)
		return entry
	}

	resp, err := s.search.SearchByImage(ctx, item.ImageURL)
	if err != nil {
		log.Printf("[PASS 1] [%d/%d] Search failed for %s: %v", idx, total, item.StyleID, err)
		return entry
	}

	extracted := s.matcher.ExtractSiteResults(resp.VisualMatches, item.Brand, entry.AllowedSites, item.Title)
	for site, result := range extracted {
		if result.Resolved() {
			entry.SiteResults[site] = result
		}
	}

	log.Printf("[PASS 1] [%d/%d] %d/%d sites | %s | %.2fs",
		idx, total, s.resolvedCount(&entry), len(entry.AllowedSites),
		truncateTitle(item.Title), time.Since(start).Seconds())
	return entry
}

// resolvePass2 reissues site-scoped queries for each still-missing site and
// merges any new find. Already-resolved sites are never overwritten.
func (s *ResolverService) resolvePass2(ctx context.Context, entry domain.ItemResult, idx, total int) domain.ItemResult {
	start := time.Now()
	missing := entry.Unresolved()
	if len(missing) == 0 {
		return entry
	}

	log.Printf("[PASS 2] [%d/%d] %d missing | %s",
		idx, total, len(missing), truncateTitle(entry.Item.Title))

	for _, site := range missing {
		siteDomain := s.registry.PrimaryDomain(site)
		if siteDomain == "" {
			continue
		}

		query := "site:" + siteDomain
		if brand := queryBrand(entry.Item.Brand); brand != "" {
			query = brand + " " + query
		}

		resp, err := s.search.SearchByImageWithQuery(ctx, entry.Item.ImageURL, query)
		if err != nil {
			if s.debug {
				log.Printf("[PASS 2] Scoped search failed for %s/%s: %v", entry.Item.StyleID, site, err)
			}
			continue
		}

		updates := s.matcher.ExtractSiteResults(resp.VisualMatches, entry.Item.Brand, []string{site}, entry.Item.Title)
		if result := updates[site]; result.Resolved() {
			entry.SiteResults[site] = result
		}
	}

	log.Printf("[PASS 2] [%d/%d] %d/%d sites | %s | %.2fs",
		idx, total, s.resolvedCount(&entry), len(entry.AllowedSites),
		truncateTitle(entry.Item.Title), time.Since(start).Seconds())
	return entry
}

func (s *ResolverService) resolvedCount(entry *domain.ItemResult) int {
	count := 0
	for _, r := range entry.SiteResults {
		if r.Resolved() {
			count++
		}
	}
	return count
}

// queryBrand maps sassafras sub-brands onto the parent brand for scoped
// queries; the storefront indexes everything under the parent name.
func queryBrand(brand string) string {
	lower := strings.ToLower(brand)
	for _, sub := range []string{"mascln", "shae", "pink paprika"} {
		if strings.Contains(lower, sub) {
			return "SASSAFRAS"
		}
	}
	return brand
}

func truncateTitle(title string) string {
	if len(title) > 49 {
		return title[:48] + "…"
	}
	return title
}
