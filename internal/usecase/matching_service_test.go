package usecase

import (
	"testing"

	"github.com/pricelens/backend/internal/domain"
	"github.com/pricelens/backend/internal/sites"
)

func newTestMatcher() *MatchingService {
	return NewMatchingService(sites.DefaultRegistry(), MatchConfig{})
}

func TestNewMatchingService(t *testing.T) {
	t.Run("creates service with provided thresholds", func(t *testing.T) {
		svc := NewMatchingService(sites.DefaultRegistry(), MatchConfig{
			MarketplaceThreshold: 10,
			BrandThreshold:       30,
		})
		if svc.marketplaceThreshold != 10 {
			t.Errorf("marketplaceThreshold = %v, want 10", svc.marketplaceThreshold)
		}
		if svc.brandThreshold != 30 {
			t.Errorf("brandThreshold = %v, want 30", svc.brandThreshold)
		}
	})

	t.Run("uses defaults when zero", func(t *testing.T) {
		svc := NewMatchingService(sites.DefaultRegistry(), MatchConfig{})
		if svc.marketplaceThreshold != defaultMarketplaceThreshold {
			t.Errorf("marketplaceThreshold = %v, want %v", svc.marketplaceThreshold, defaultMarketplaceThreshold)
		}
		if svc.brandThreshold != defaultBrandThreshold {
			t.Errorf("brandThreshold = %v, want %v", svc.brandThreshold, defaultBrandThreshold)
		}
		if svc.rankPenalty != defaultRankPenalty {
			t.Errorf("rankPenalty = %v, want %v", svc.rankPenalty, defaultRankPenalty)
		}
	})
}

func TestSimilarity(t *testing.T) {
	svc := newTestMatcher()

	t.Run("identical titles score 100", func(t *testing.T) {
		got := svc.Similarity("Men Slim Fit Jeans", "Men Slim Fit Jeans")
		if got != 100 {
			t.Errorf("Similarity = %v, want 100", got)
		}
	})

	t.Run("disjoint titles score 0", func(t *testing.T) {
		got := svc.Similarity("Men Slim Fit Jeans", "Women Floral Kurta")
		if got != 0 {
			t.Errorf("Similarity = %v, want 0", got)
		}
	})

	t.Run("empty titles score 0", func(t *testing.T) {
		if got := svc.Similarity("", "anything"); got != 0 {
			t.Errorf("Similarity = %v, want 0 for empty original", got)
		}
		if got := svc.Similarity("anything", ""); got != 0 {
			t.Errorf("Similarity = %v, want 0 for empty candidate", got)
		}
	})

	t.Run("matching color adds bonus", func(t *testing.T) {
		// 2 of 3 original tokens overlap = 66.67, +15 color bonus = 81.67.
		got := svc.Similarity("black slim jeans", "black jeans relaxed tapered")
		if got < 81 || got > 82 {
			t.Errorf("Similarity = %v, want ~81.67", got)
		}
	})

	t.Run("conflicting colors subtract penalty", func(t *testing.T) {
		// 2 of 3 tokens overlap = 66.67, -20 conflict penalty = 46.67.
		got := svc.Similarity("black slim jeans", "blue slim jeans")
		if got < 46 || got > 47 {
			t.Errorf("Similarity = %v, want ~46.67", got)
		}
	})

	t.Run("score clamps at 100", func(t *testing.T) {
		got := svc.Similarity("black jeans", "black jeans")
		if got != 100 {
			t.Errorf("Similarity = %v, want clamp at 100", got)
		}
	})

	t.Run("score never goes negative", func(t *testing.T) {
		got := svc.Similarity("black dress", "blue shirt")
		if got != 0 {
			t.Errorf("Similarity = %v, want clamp at 0", got)
		}
	})

	t.Run("stop words are ignored", func(t *testing.T) {
		got := svc.Similarity("the jeans", "jeans buy online")
		if got != 100 {
			t.Errorf("Similarity = %v, want 100 after stop word removal", got)
		}
	})
}

func TestExtractSiteResults(t *testing.T) {
	svc := newTestMatcher()
	allowed := []string{"myntra", "slikk", "bewakoof"}

	t.Run("unmatched sites stay at placeholder", func(t *testing.T) {
		results := svc.ExtractSiteResults(nil, "Bewakoof", allowed, "Black Oversized Tshirt")
		for _, site := range allowed {
			if results[site].URL != domain.URLNotFound {
				t.Errorf("site %s URL = %q, want %q", site, results[site].URL, domain.URLNotFound)
			}
		}
	})

	t.Run("marketplace picks lowest rank regardless of similarity", func(t *testing.T) {
		// The rank-2 candidate's title is a strictly better match; the
		// marketplace rule must still trust the backend's ranking.
		matches := []domain.SearchResult{
			{Link: "https://www.myntra.com/tshirts/bewakoof/black-tee/100/buy", Title: "Bewakoof Tshirt Black", Source: "Myntra"},
			{Link: "https://www.myntra.com/tshirts/bewakoof/black-tee/200/buy", Title: "Bewakoof Black Oversized Tshirt", Source: "Myntra"},
		}
		results := svc.ExtractSiteResults(matches, "Bewakoof", allowed, "Black Oversized Tshirt")
		if got := results["myntra"].URL; got != matches[0].Link {
			t.Errorf("myntra URL = %q, want rank-1 link", got)
		}
	})

	t.Run("brand site picks best similarity minus rank penalty", func(t *testing.T) {
		// Rank 1 shares no tokens and conflicts on color, so it falls under
		// the brand threshold. Rank 2 matches exactly and wins.
		matches := []domain.SearchResult{
			{Link: "https://www.bewakoof.com/p/plain-white-shirt", Title: "White Shirt Classic", Source: "Bewakoof"},
			{Link: "https://www.bewakoof.com/p/black-oversized-tshirt", Title: "Black Oversized Tshirt", Source: "Bewakoof"},
		}
		results := svc.ExtractSiteResults(matches, "Bewakoof", allowed, "Black Oversized Tshirt")
		if got := results["bewakoof"].URL; got != matches[1].Link {
			t.Errorf("bewakoof URL = %q, want higher-similarity link", got)
		}
	})

	t.Run("marketplace requires brand mention", func(t *testing.T) {
		matches := []domain.SearchResult{
			{Link: "https://www.myntra.com/tshirts/otherbrand/tee/100/buy", Title: "Otherbrand Black Tshirt", Source: "Myntra"},
		}
		results := svc.ExtractSiteResults(matches, "Bewakoof", allowed, "Black Tshirt")
		if results["myntra"].URL != domain.URLNotFound {
			t.Errorf("myntra URL = %q, want placeholder when brand missing", results["myntra"].URL)
		}
	})

	t.Run("rejects non-product URLs", func(t *testing.T) {
		matches := []domain.SearchResult{
			{Link: "https://www.bewakoof.com/search?q=black+tshirt", Title: "Black Oversized Tshirt", Source: "Bewakoof"},
		}
		results := svc.ExtractSiteResults(matches, "Bewakoof", allowed, "Black Oversized Tshirt")
		if results["bewakoof"].URL != domain.URLNotFound {
			t.Errorf("bewakoof URL = %q, want placeholder for search URL", results["bewakoof"].URL)
		}
	})

	t.Run("ignores sites outside the allowed list", func(t *testing.T) {
		matches := []domain.SearchResult{
			{Link: "https://www.snitch.co.in/products/black-tshirt", Title: "Black Oversized Tshirt", Source: "Snitch"},
		}
		results := svc.ExtractSiteResults(matches, "Bewakoof", allowed, "Black Oversized Tshirt")
		if _, ok := results["snitch"]; ok {
			t.Error("results contain a site outside the allowed list")
		}
	})
}

func TestExtractListingPrice(t *testing.T) {
	tests := []struct {
		name  string
		price domain.PriceInfo
		want  string
	}{
		{name: "structured value with currency", price: domain.PriceInfo{Value: "₹1,299"}, want: "1299"},
		{name: "extracted numeric fallback", price: domain.PriceInfo{ExtractedValue: 799}, want: "799"},
		{name: "raw string fallback", price: domain.PriceInfo{Raw: "Rs. 599"}, want: "599"},
		{name: "nothing usable", price: domain.PriceInfo{}, want: domain.PriceNotDisplayed},
		{name: "N/A value skipped", price: domain.PriceInfo{Value: "N/A"}, want: domain.PriceNotDisplayed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractListingPrice(tt.price); got != tt.want {
				t.Errorf("extractListingPrice() = %q, want %q", got, tt.want)
			}
		})
	}
}
