package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Sentinel values written into output records. URLNotFound marks a site with
// no resolved product URL; the two price sentinels distinguish "site absent"
// from "site present but no readable price".
const (
	URLNotFound       = "Not Found"
	PriceNotAvailable = "Product not available on site"
	PriceNotDisplayed = "Price not displayed in listing"
)

// Item is one catalog row to resolve. Immutable once read.
type Item struct {
	StyleID   string `json:"styleId" binding:"required"`
	Brand     string `json:"brand,omitempty"`
	Title     string `json:"title"`
	Gender    string `json:"gender,omitempty"`
	Category  string `json:"category,omitempty"`
	ImageURL  string `json:"imageUrl"`
	ViewCount int    `json:"viewCount,omitempty"`
}

// SiteResult is the resolved {url, price} pair for one (item, site).
type SiteResult struct {
	URL   string `json:"url"`
	Price string `json:"price"`
}

// NotFoundResult returns the empty placeholder for an unresolved site.
func NotFoundResult() SiteResult {
	return SiteResult{URL: URLNotFound, Price: PriceNotAvailable}
}

// Resolved reports whether the site has a concrete product URL.
func (r SiteResult) Resolved() bool {
	return r.URL != "" && r.URL != URLNotFound
}

// ItemResult is one item's resolution state across its allowed sites.
// SiteResults is owned exclusively by the worker processing the item until
// the pass completes.
type ItemResult struct {
	Item         Item                  `json:"item"`
	BrandSite    string                `json:"brandSite,omitempty"`
	AllowedSites []string              `json:"allowedSites"`
	SiteResults  map[string]SiteResult `json:"siteResults"`
}

// Unresolved returns the allowed sites that still have no URL.
func (r *ItemResult) Unresolved() []string {
	var missing []string
	for _, site := range r.AllowedSites {
		if !r.SiteResults[site].Resolved() {
			missing = append(missing, site)
		}
	}
	return missing
}

// SearchResult is one candidate record from the visual search backend.
type SearchResult struct {
	Link   string    `json:"link"`
	Title  string    `json:"title"`
	Source string    `json:"source"`
	Price  PriceInfo `json:"price"`
}

// SearchResponse is the backend's ranked result list for one query.
type SearchResponse struct {
	VisualMatches []SearchResult `json:"visual_matches"`
}

// PriceInfo carries the raw price payload of a search result. The backend
// returns either a structured object or a bare display string, so it
// unmarshals from both shapes.
type PriceInfo struct {
	Value          string  `json:"value"`
	ExtractedValue float64 `json:"extracted_value"`
	Raw            string  `json:"-"`
}

func (p *PriceInfo) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		p.Raw = s
		return nil
	}
	type alias PriceInfo
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	p.Value = a.Value
	p.ExtractedValue = a.ExtractedValue
	return nil
}

// ExtractedString renders the extracted numeric value, or "" when unset.
func (p PriceInfo) ExtractedString() string {
	if p.ExtractedValue == 0 {
		return ""
	}
	return strconv.FormatFloat(p.ExtractedValue, 'f', -1, 64)
}
