package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/pricelens/backend/internal/domain"
)

var reportHeader = []string{
	"view_count", "style_id", "brand", "product_title", "gender", "category",
	"myntra_price", "slikk_price", "brand_price",
	"myntra_url", "slikk_url", "brand_url",
}

// WriteReport writes resolution results to a CSV report, one row per item,
// in the order given (callers sort by view count before writing).
func WriteReport(path string, results []domain.ItemResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(reportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, entry := range results {
		myntra := siteResult(entry, "myntra")
		slikk := siteResult(entry, "slikk")
		brand := siteResult(entry, entry.BrandSite)

		row := []string{
			strconv.Itoa(entry.Item.ViewCount),
			entry.Item.StyleID,
			entry.Item.Brand,
			entry.Item.Title,
			entry.Item.Gender,
			entry.Item.Category,
			myntra.Price,
			slikk.Price,
			brand.Price,
			myntra.URL,
			slikk.URL,
			brand.URL,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", entry.Item.StyleID, err)
		}
	}

	w.Flush()
	return w.Error()
}

// siteResult returns the entry's result for a site, defaulting to the
// "Not Found" placeholder so reports never carry empty cells.
func siteResult(entry domain.ItemResult, siteKey string) domain.SiteResult {
	if siteKey == "" {
		return domain.NotFoundResult()
	}
	if result, ok := entry.SiteResults[siteKey]; ok {
		return result
	}
	return domain.NotFoundResult()
}
