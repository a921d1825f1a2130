package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Prices below this are assumed to be quantities or IDs, not rupee prices.
const minPlausiblePrice = 50

// Upper bound applied by the generic whole-document scan, where false
// positives (order IDs, pixel counts) are much more likely.
const maxPlausiblePrice = 100000

// numericRunRegex locates the first digit-and-separator run in price text.
var numericRunRegex = regexp.MustCompile(`\d[\d.,]*`)

// genericPricePatterns are tried in order against whole-document HTML when
// no structured or site-specific selector produced a price.
var genericPricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)"price"[:\s]+["']?(\d+)[.\d]*["']?`),
	regexp.MustCompile(`(?i)"mrp"[:\s]+["']?(\d+)[.\d]*["']?`),
	regexp.MustCompile(`₹\s*(\d[\d,]*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)Rs\.?\s*(\d[\d,]*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)INR\s*(\d[\d,]*(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)price["\s:]+(\d[\d,]+)`),
}

// CleanPrice normalizes heterogeneous price text ("₹1,299.00", "Rs. 790")
// to a canonical integer string. Returns ok=false when no usable number is
// found or the value is below the plausibility floor.
func CleanPrice(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	cleaned := numericRunRegex.FindString(raw)
	if cleaned == "" {
		return "", false
	}

	cleaned = strings.ReplaceAll(cleaned, ",", "")

	// Defensive: the regex guarantees a leading digit, but scraped text has
	// surprised us before.
	for len(cleaned) > 0 && (cleaned[0] < '0' || cleaned[0] > '9') {
		cleaned = cleaned[1:]
	}
	if cleaned == "" {
		return "", false
	}

	// Malformed multi-dot values like "790.00.00" keep only the first
	// decimal point.
	if strings.Count(cleaned, ".") > 1 {
		first, rest, _ := strings.Cut(cleaned, ".")
		cleaned = first + "." + strings.ReplaceAll(rest, ".", "")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return "", false
	}
	if value < minPlausiblePrice {
		return "", false
	}

	return strconv.Itoa(int(math.Round(value))), true
}

// ExtractPriceGeneric scans whole-document HTML for price-shaped fragments.
// The first match normalizing into the plausible range wins.
func ExtractPriceGeneric(html string) (string, bool) {
	for _, pattern := range genericPricePatterns {
		for _, m := range pattern.FindAllStringSubmatch(html, -1) {
			cleaned := strings.NewReplacer(",", "", " ", "").Replace(m[1])
			value, err := strconv.ParseFloat(cleaned, 64)
			if err != nil {
				continue
			}
			if value >= minPlausiblePrice && value <= maxPlausiblePrice {
				price, ok := CleanPrice(cleaned)
				if ok {
					return price, true
				}
			}
		}
	}
	return "", false
}
