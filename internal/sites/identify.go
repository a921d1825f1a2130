package sites

import (
	"net/url"
	"strings"
)

// invalidURLPatterns mark listing/search/category/filter pages that can
// never be a single product URL.
var invalidURLPatterns = []string{
	"/collections/", "/collection/", "/category/", "/categories/",
	"/search", "?search=", "/s?", "/find/", "/brand/", "/brands/",
	"/sale/", "/deals/", "/all-products", "/shop?", "/filter", "/sort=",
	"?page=", "&page=", "/men/", "/women/", "/kids/", "/unisex/",
	"/clothing/", "/accessories/", "/footwear/",
}

// ExtractDomain returns the lower-cased host with any "www." prefix removed.
func ExtractDomain(rawURL string) string {
	parsed, err := url.Parse(strings.ToLower(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

// Identify classifies a URL into a configured site key. The first site whose
// pattern appears in the host or the full lower-cased URL wins, in table
// order. Returns "" when nothing matches.
func (r *Registry) Identify(rawURL string) string {
	domain := ExtractDomain(rawURL)
	urlLower := strings.ToLower(rawURL)
	for _, site := range r.ordered {
		for _, pattern := range site.Domains {
			if strings.Contains(domain, pattern) || strings.Contains(urlLower, pattern) {
				return site.Key
			}
		}
	}
	return ""
}

// IsValidProductURL rejects listing-shaped URLs, then requires the site's
// configured product path. Sites without a configured path fall back to
// "at least 3 non-empty path segments".
func (r *Registry) IsValidProductURL(rawURL string) bool {
	urlLower := strings.ToLower(rawURL)
	for _, pattern := range invalidURLPatterns {
		if strings.Contains(urlLower, pattern) {
			return false
		}
	}

	key := r.Identify(rawURL)
	if site := r.Lookup(key); site != nil && len(site.ProductPaths) > 0 {
		for _, path := range site.ProductPaths {
			if strings.Contains(urlLower, path) {
				return true
			}
		}
		return false
	}

	segments := 0
	for _, seg := range strings.Split(urlLower, "/") {
		if seg != "" && !strings.HasPrefix(seg, "?") {
			segments++
		}
	}
	return segments >= 3
}
