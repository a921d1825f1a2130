package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// column headers expected in the catalog export
const (
	colStyleID   = "style_id"
	colBrand     = "brand_name"
	colTitle     = "product_title"
	colGender    = "gender"
	colCategory  = "category"
	colPrice     = "min_price_rupees"
	colImageURL  = "first_image_url"
	colViewCount = "view_count"
)

// LoadCatalog reads a catalog CSV export into items. Rows missing a style ID
// are skipped; missing optional columns become zero values.
func LoadCatalog(path string) ([]domain.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)

	// Exports from spreadsheet tools often carry a UTF-8 BOM.
	if r, _, err := reader.ReadRune(); err == nil && r != '\uFEFF' {
		if err := reader.UnreadRune(); err != nil {
			return nil, fmt.Errorf("unread rune: %w", err)
		}
	}

	cr := csv.NewReader(reader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col[colStyleID]; !ok {
		return nil, fmt.Errorf("catalog missing required column %q", colStyleID)
	}

	var items []domain.Item
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		styleID := field(record, col, colStyleID)
		if styleID == "" {
			continue
		}

		items = append(items, domain.Item{
			StyleID:   styleID,
			Brand:     field(record, col, colBrand),
			Title:     field(record, col, colTitle),
			Gender:    field(record, col, colGender),
			Category:  field(record, col, colCategory),
			ImageURL:  field(record, col, colImageURL),
			ViewCount: safeInt(field(record, col, colViewCount)),
		})
	}

	return items, nil
}

// field returns the named column's trimmed value, or "" when absent.
func field(record []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// safeInt parses an integer, tolerating blanks and float-formatted counts.
func safeInt(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
