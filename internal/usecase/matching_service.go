package usecase

import (
	"log"
	"regexp"
	"strings"

	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/sites"
)

// Package-level compiled regex patterns for performance
var (
	wordRegex          = regexp.MustCompile(`\w+`)
	currencyCharsRegex = regexp.MustCompile(`(?i)[₹RsINR.,*\s]`)
)

// Default heuristic constants. These were tuned by eye against live catalog
// runs, not derived; keep them configurable.
const (
	defaultMarketplaceThreshold = 5.0
	defaultBrandThreshold       = 15.0
	defaultRankPenalty          = 5.0
	defaultColorBonus           = 15.0
	defaultColorPenalty         = 20.0
)

// similarityStopWords are dropped before comparing title token sets.
var similarityStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "with": true, "for": true, "on": true, "in": true,
	"at": true, "to": true, "buy": true, "shop": true, "online": true,
}

// colorNames are the tokens considered for the color bonus/penalty.
var colorNames = []string{
	"black", "white", "blue", "red", "green", "yellow", "pink", "purple",
	"orange", "brown", "grey", "gray", "beige", "navy", "olive", "maroon",
	"silver", "gold", "cream", "khaki", "tan", "teal", "burgundy", "mint",
	"lavender", "coral", "peach", "mustard", "charcoal", "rose",
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	MarketplaceThreshold float64
	BrandThreshold       float64
	RankPenalty          float64
	ColorBonus           float64
	ColorPenalty         float64
	EnableDebugLogging   bool
}

// MatchingService turns a ranked list of search results into at most one
// winner per allowed site.
type MatchingService struct {
	registry             *sites.Registry
	marketplaceThreshold float64
	brandThreshold       float64
	rankPenalty          float64
	colorBonus           float64
	colorPenalty         float64
	enableDebugLogging   bool
}

// NewMatchingService creates a matching service with the given configuration
func NewMatchingService(registry *sites.Registry, config MatchConfig) *MatchingService {
	if config.MarketplaceThreshold <= 0 {
		config.MarketplaceThreshold = defaultMarketplaceThreshold
	}
	if config.BrandThreshold <= 0 {
		config.BrandThreshold = defaultBrandThreshold
	}
	if config.RankPenalty <= 0 {
		config.RankPenalty = defaultRankPenalty
	}
	if config.ColorBonus <= 0 {
		config.ColorBonus = defaultColorBonus
	}
	if config.ColorPenalty <= 0 {
		config.ColorPenalty = defaultColorPenalty
	}

	return &MatchingService{
		registry:             registry,
		marketplaceThreshold: config.MarketplaceThreshold,
		brandThreshold:       config.BrandThreshold,
		rankPenalty:          config.RankPenalty,
		colorBonus:           config.ColorBonus,
		colorPenalty:         config.ColorPenalty,
		enableDebugLogging:   config.EnableDebugLogging,
	}
}

// candidate is a search result that survived all filters for one site.
type candidate struct {
	url        string
	price      string
	rank       int
	similarity float64
}

// ExtractSiteResults filters and scores raw search results against the
// target brand/title and selects one winner per allowed site. Sites with no
// surviving candidate stay at the "Not Found" placeholder.
func (s *MatchingService) ExtractSiteResults(
	matches []domain.SearchResult,
	targetBrand string,
	allowedSites []string,
	originalTitle string,
) map[string]domain.SiteResult {
	results := make(map[string]domain.SiteResult, len(allowedSites))
	allowed := make(map[string]bool, len(allowedSites))
	for _, site := range allowedSites {
		results[site] = domain.NotFoundResult()
		allowed[site] = true
	}
	if len(matches) == 0 {
		return results
	}

	candidates := make(map[string][]candidate)
	for idx, match := range matches {
		rank := idx + 1
		if match.Link == "" {
			continue
		}
		siteKey := s.registry.Identify(match.Link)
		if siteKey == "" || !allowed[siteKey] {
			continue
		}
		if !s.brandRelevant(match, targetBrand, siteKey) {
			continue
		}
		if !s.registry.IsValidProductURL(match.Link) {
			continue
		}

		similarity := s.Similarity(originalTitle, match.Title)
		threshold := s.brandThreshold
		if s.registry.IsMarketplace(siteKey) {
			threshold = s.marketplaceThreshold
		}
		if similarity < threshold {
			if s.enableDebugLogging {
				log.Printf("[MATCH] drop %q for %s: similarity %.0f < %.0f",
					match.Link, siteKey, similarity, threshold)
			}
			continue
		}

		candidates[siteKey] = append(candidates[siteKey], candidate{
			url:        match.Link,
			price:      extractListingPrice(match.Price),
			rank:       rank,
			similarity: similarity,
		})
	}

	for site, list := range candidates {
		best := s.selectBest(site, list)
		results[site] = domain.SiteResult{URL: best.url, Price: best.price}
	}
	return results
}

// selectBest applies the site-class tie-break: marketplace sites trust the
// backend's visual ranking (lowest rank wins), brand sites trust title and
// color similarity with rank as a soft penalty.
func (s *MatchingService) selectBest(siteKey string, list []candidate) candidate {
	best := list[0]
	if s.registry.IsMarketplace(siteKey) {
		for _, c := range list[1:] {
			if c.rank < best.rank {
				best = c
			}
		}
		return best
	}
	bestScore := best.similarity - s.rankPenalty*float64(best.rank)
	for _, c := range list[1:] {
		score := c.similarity - s.rankPenalty*float64(c.rank)
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// brandRelevant requires marketplace results to mention an accepted brand
// variation somewhere in title+link+source. Brand storefronts already
// disambiguate the brand, so they skip the check.
func (s *MatchingService) brandRelevant(match domain.SearchResult, targetBrand, siteKey string) bool {
	if siteKey != "" && !s.registry.IsMarketplace(siteKey) {
		return true
	}
	if targetBrand == "" {
		return false
	}
	combined := strings.ToLower(match.Title + " " + match.Link + " " + match.Source)
	for _, variation := range sites.BrandVariations(targetBrand) {
		if strings.Contains(combined, variation) {
			return true
		}
	}
	return false
}

// Similarity scores a candidate title against the original on [0, 100]:
// token-set overlap relative to the original's tokens, adjusted by a color
// bonus when colors agree and a penalty when both mention colors that
// disagree.
func (s *MatchingService) Similarity(originalTitle, foundTitle string) float64 {
	if originalTitle == "" || foundTitle == "" {
		return 0
	}
	origTokens := titleTokens(originalTitle)
	if len(origTokens) == 0 {
		return 0
	}
	foundTokens := titleTokens(foundTitle)

	common := 0
	for token := range origTokens {
		if foundTokens[token] {
			common++
		}
	}
	overlap := float64(common) / float64(len(origTokens)) * 100

	origColors := extractColors(originalTitle)
	foundColors := extractColors(foundTitle)
	adjust := 0.0
	switch {
	case len(origColors) > 0 && shareColor(origColors, foundColors):
		adjust = s.colorBonus
	case len(origColors) > 0 && len(foundColors) > 0:
		adjust = -s.colorPenalty
	}

	score := overlap + adjust
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// titleTokens lower-cases, splits into word tokens and drops stop words.
func titleTokens(title string) map[string]bool {
	tokens := make(map[string]bool)
	for _, w := range wordRegex.FindAllString(strings.ToLower(title), -1) {
		if !similarityStopWords[w] {
			tokens[w] = true
		}
	}
	return tokens
}

func extractColors(title string) []string {
	lower := strings.ToLower(title)
	var found []string
	for _, color := range colorNames {
		if strings.Contains(lower, color) {
			found = append(found, color)
		}
	}
	return found
}

func shareColor(a, b []string) bool {
	set := make(map[string]bool, len(b))
	for _, c := range b {
		set[c] = true
	}
	for _, c := range a {
		if set[c] {
			return true
		}
	}
	return false
}

// extractListingPrice pulls a usable price out of a search result's raw
// price payload: cleaned structured value first, then the backend's
// extracted numeric, then a bare string form. Falls back to the
// "price not displayed" sentinel, which is distinct from "site not found".
func extractListingPrice(price domain.PriceInfo) string {
	if usable(price.Value) {
		if cleaned := stripCurrency(price.Value); isDigits(cleaned) {
			return cleaned
		}
	}
	if extracted := price.ExtractedString(); usable(extracted) {
		return extracted
	}
	if usable(price.Raw) {
		if cleaned := stripCurrency(price.Raw); isDigits(cleaned) {
			return cleaned
		}
	}
	return domain.PriceNotDisplayed
}

func usable(v string) bool {
	return v != "" && v != "N/A" && v != "null"
}

func stripCurrency(v string) string {
	return currencyCharsRegex.ReplaceAllString(v, "")
}

func isDigits(v string) bool {
	if v == "" {
		return false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
