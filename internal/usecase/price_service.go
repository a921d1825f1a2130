package usecase

import (
	"context"
	"errors"
	"log"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/sites"
)

// Rendered-page price fields in priority order: selling price first.
var renderedPricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)"sp"\s*:\s*"?(\d+\.?\d*)"?`),
	regexp.MustCompile(`(?i)"offerPrice"\s*:\s*"?(\d+\.?\d*)"?`),
	regexp.MustCompile(`(?i)"sellingPrice"\s*:\s*"?(\d+\.?\d*)"?`),
	regexp.MustCompile(`(?i)"price"\s*:\s*"?(\d+\.?\d*)"?`),
	regexp.MustCompile(`(?i)"mrp"\s*:\s*"?(\d+\.?\d*)"?`),
}

var (
	ldJSONPriceRegex = regexp.MustCompile(`"price":\s*"?(\d+)"?`)
	rupeeAmountRegex = regexp.MustCompile(`₹\s*([\d,]+(?:\.\d{1,2})?)`)
)

// placeholderPrices are values that count as "no price yet" when deciding
// whether a row needs scraping.
var placeholderPrices = map[string]bool{
	"":                                        true,
	strings.ToLower(domain.URLNotFound):       true,
	strings.ToLower(domain.PriceNotAvailable): true,
	strings.ToLower(domain.PriceNotDisplayed): true,
}

// PriceStats aggregates one scraping run.
type PriceStats struct {
	Scraped         int
	Failed          int
	SkippedExisting int
	RenderCalls     int
}

// PriceServiceConfig holds configuration for the price service.
type PriceServiceConfig struct {
	Workers            int
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// PriceService fetches each resolved product URL and replaces price
// placeholders with the displayed price. Existing concrete prices are left
// alone; failures keep the prior value.
type PriceService struct {
	fetcher  domain.PageFetcher
	cache    domain.CacheRepository
	registry *sites.Registry
	workers  int
	cacheTTL time.Duration
	debug    bool

	mu    sync.Mutex
	stats PriceStats
}

// NewPriceService creates a price service with dependencies.
func NewPriceService(
	fetcher domain.PageFetcher,
	cache domain.CacheRepository,
	registry *sites.Registry,
	config PriceServiceConfig,
) *PriceService {
	if config.Workers <= 0 {
		config.Workers = 24
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = 24 * time.Hour
	}
	return &PriceService{
		fetcher:  fetcher,
		cache:    cache,
		registry: registry,
		workers:  config.Workers,
		cacheTTL: config.CacheTTL,
		debug:    config.EnableDebugLogging,
	}
}

// UpdatePrices scrapes displayed prices for every resolved (item, site) pair
// still carrying a placeholder price. Results are mutated in place.
func (s *PriceService) UpdatePrices(ctx context.Context, results []domain.ItemResult) PriceStats {
	s.mu.Lock()
	s.stats = PriceStats{}
	s.mu.Unlock()

	slots := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		slots <- struct{}{}
		go func(entry *domain.ItemResult) {
			defer wg.Done()
			defer func() { <-slots }()
			s.updateItem(ctx, entry)
		}(&results[i])
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	log.Printf("[PRICE] Scraped %d, failed %d, skipped %d (render calls: %d)",
		s.stats.Scraped, s.stats.Failed, s.stats.SkippedExisting, s.stats.RenderCalls)
	return s.stats
}

func (s *PriceService) updateItem(ctx context.Context, entry *domain.ItemResult) {
	for _, siteKey := range entry.AllowedSites {
		result := entry.SiteResults[siteKey]
		if !result.Resolved() {
			continue
		}
		if !placeholderPrices[strings.ToLower(strings.TrimSpace(result.Price))] {
			s.count(func(st *PriceStats) { st.SkippedExisting++ })
			continue
		}

		price, err := s.scrapePrice(ctx, siteKey, result.URL)
		if err != nil || price == "" {
			s.count(func(st *PriceStats) { st.Failed++ })
			if s.debug && err != nil {
				log.Printf("[PRICE] %s/%s failed: %v", entry.Item.StyleID, siteKey, err)
			}
			continue
		}

		result.Price = price
		entry.SiteResults[siteKey] = result
		s.count(func(st *PriceStats) { st.Scraped++ })
	}
}

// scrapePrice fetches one product page and extracts its displayed price,
// consulting the URL-keyed cache first.
func (s *PriceService) scrapePrice(ctx context.Context, siteKey, pageURL string) (string, error) {
	if cached, err := s.cache.Get(ctx, pageURL); err == nil && cached != "" {
		return cached, nil
	}

	site := s.registry.Lookup(siteKey)
	if site == nil {
		return "", domain.ErrNoMatchFound
	}

	var html string
	var err error
	if site.RequiresRender {
		s.count(func(st *PriceStats) { st.RenderCalls++ })
		html, err = s.fetcher.FetchRendered(ctx, normalizeRenderURL(pageURL, s.registry.PrimaryDomain(siteKey)))
	} else {
		html, err = s.fetcher.Fetch(ctx, pageURL)
	}
	if err != nil {
		return "", err
	}

	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(html))
	if docErr != nil {
		return "", docErr
	}

	// Rendering decides how the page is fetched; extraction still follows
	// the site class. A render-required brand storefront keeps its
	// configured selectors instead of the embedded-JSON scan, which would
	// pick up analytics price fields.
	var price string
	var ok bool
	switch {
	case site.RequiresRender && site.Marketplace:
		price, ok = extractRenderedPrice(doc, html)
	case site.Marketplace:
		price, ok = extractSelectorPrice(doc, site.PriceSelectors, html)
		if !ok {
			price, ok = extractLdJSONPrice(doc)
		}
		if !ok {
			price, ok = ExtractPriceGeneric(html)
		}
	default:
		price, ok = extractBrandPrice(doc, site, html)
	}
	if !ok {
		return "", errors.New("no price found in page")
	}

	if err := s.cache.Set(ctx, pageURL, price, s.cacheTTL); err == nil && s.debug {
		log.Printf("[PRICE] cached %s = %s", pageURL, price)
	}
	return price, nil
}

func (s *PriceService) count(update func(*PriceStats)) {
	s.mu.Lock()
	update(&s.stats)
	s.mu.Unlock()
}

// extractRenderedPrice handles JS-rendered pages: structured price fields
// embedded in page JSON first, then ₹-bearing text nodes, then the generic
// document scan.
func extractRenderedPrice(doc *goquery.Document, html string) (string, bool) {
	for _, pattern := range renderedPricePatterns {
		if m := pattern.FindStringSubmatch(html); m != nil {
			if price, ok := CleanPrice(m[1]); ok {
				return price, true
			}
		}
	}

	found := ""
	doc.Find("span, div").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if !strings.Contains(text, "₹") {
			return true
		}
		if m := rupeeAmountRegex.FindStringSubmatch(text); m != nil {
			if price, ok := CleanPrice(m[1]); ok {
				found = price
				return false
			}
		}
		return true
	})
	if found != "" {
		return found, true
	}

	return ExtractPriceGeneric(html)
}

// extractBrandPrice walks the site's configured selector list, then the
// generic storefront chain, then the whole-document scan.
func extractBrandPrice(doc *goquery.Document, site *sites.Site, html string) (string, bool) {
	if price, ok := extractSelectorPrice(doc, site.PriceSelectors, html); ok {
		return price, true
	}
	if price, ok := extractSelectorPrice(doc, sites.GenericPriceSelectors(), html); ok {
		return price, true
	}
	return ExtractPriceGeneric(html)
}

// extractSelectorPrice tries CSS selectors in order, skipping label-only
// matches like "Sale price" that carry no digits.
func extractSelectorPrice(doc *goquery.Document, selectors []string, html string) (string, bool) {
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		if (strings.Contains(lower, "sale price") || strings.Contains(lower, "regular price")) &&
			!containsDigit(text) {
			continue
		}
		if strings.Contains(text, "₹") || strings.Contains(text, "Rs") || containsDigit(text) {
			if price, ok := CleanPrice(text); ok {
				return price, true
			}
		}
	}
	return "", false
}

// extractLdJSONPrice reads the price field out of ld+json product metadata.
func extractLdJSONPrice(doc *goquery.Document) (string, bool) {
	script := doc.Find(`script[type="application/ld+json"]`).First().Text()
	if script == "" {
		return "", false
	}
	m := ldJSONPriceRegex.FindStringSubmatch(script)
	if m == nil {
		return "", false
	}
	return CleanPrice(m[1])
}

// normalizeRenderURL canonicalizes render-backend URLs: a trailing numeric
// product ID (≥5 digits) collapses to the site's /product/<id> form, and
// spaces in the path are percent-encoded either way.
func normalizeRenderURL(rawURL, siteDomain string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	segments := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	if len(segments) > 0 && siteDomain != "" {
		last := segments[len(segments)-1]
		if len(last) >= 5 && isDigits(last) {
			return "https://www." + siteDomain + "/product/" + last
		}
	}

	// Re-serializing percent-encodes literal spaces in the path.
	return parsed.String()
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
