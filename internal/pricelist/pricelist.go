// internal/pricelist/pricelist.go
package pricelist

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

// Format identifies a supported price list file type
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// DetectFormat picks the parser from the file extension
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", domain.NewValidationError("file", fmt.Sprintf("unsupported price list type %q", filepath.Ext(filename)))
	}
}

// RowError describes a price list row that could not be turned into a product
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result is the outcome of parsing one price list
type Result struct {
	Products []*domain.Product `json:"products"`
	Skipped  []RowError        `json:"skipped,omitempty"`
}

func (r *Result) skip(row int, format string, args ...any) {
	r.Skipped = append(r.Skipped, RowError{Row: row, Reason: fmt.Sprintf(format, args...)})
}

// ParseFile parses an XLSX or PDF price list from disk
func ParseFile(path string) (*Result, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if format == FormatPDF {
		return ParsePDFFile(path)
	}
	return ParseXLSXFile(path)
}

var (
	// "Red Rose Bouquet ...... 12.50  20" with an optional stock column
	priceLineRe = regexp.MustCompile(`^(.+?)[\s.]+\$?\s*(\d{1,3}(?:,\d{3})*(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?)(?:\s+(\d+)\s*(?:pcs|pc)?)?\s*$`)
	fillerRe    = regexp.MustCompile(`[.\-_]{3,}`)
	spacesRe    = regexp.MustCompile(`\s+`)
	headerRe    = regexp.MustCompile(`(?i)^\s*(name|item|product)\b.*\b(price)\b`)
	footerRe    = regexp.MustCompile(`(?i)^\s*(total|subtotal|prices? valid|page \d+)`)
)

// ParseText parses price list lines of the form "<name> <price> [stock]".
// A line naming a category on its own switches the category of the lines
// that follow it.
func ParseText(lines []string) *Result {
	res := &Result{}
	category := domain.ProductCategory("")

	for i, raw := range lines {
		row := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || headerRe.MatchString(line) {
			continue
		}
		if footerRe.MatchString(line) {
			break
		}
		if c, ok := matchCategory(line); ok {
			category = c
			continue
		}

		m := priceLineRe.FindStringSubmatch(line)
		if m == nil {
			res.skip(row, "no price found in %q", line)
			continue
		}

		name := cleanName(m[1])
		if name == "" {
			res.skip(row, "missing product name")
			continue
		}

		price, err := ParsePrice(m[2])
		if err != nil {
			res.skip(row, "%v", err)
			continue
		}

		stock := 0
		if m[3] != "" {
			stock, _ = strconv.Atoi(m[3])
		}

		cat := category
		if cat == "" {
			cat = GuessCategory(name)
		}

		res.Products = append(res.Products, &domain.Product{
			Name:          name,
			Price:         price,
			StockQuantity: stock,
			Category:      cat,
		})
	}

	return res
}

// ParsePrice accepts "12.50", "$12.50", "12,50" and "1,250.00"
func ParsePrice(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", "")

	switch {
	case strings.Contains(cleaned, ",") && strings.Contains(cleaned, "."):
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case strings.Count(cleaned, ",") == 1 && len(cleaned)-strings.Index(cleaned, ",") <= 3:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	default:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative price %q", s)
	}
	return d.Round(2), nil
}

// GuessCategory maps a product name to a category by keyword
func GuessCategory(name string) domain.ProductCategory {
	lower := strings.ToLower(name)
	keywords := []struct {
		category domain.ProductCategory
		words    []string
	}{
		{domain.CategoryBouquets, []string{"bouquet", "arrangement", "posy"}},
		{domain.CategoryGiftSets, []string{"gift", "basket", "box set", "hamper"}},
		{domain.CategoryPottedPlants, []string{"potted", "pot ", "succulent", "cactus", "orchid", "fern", "bonsai"}},
		{domain.CategorySeeds, []string{"seed", "bulb"}},
		{domain.CategoryTools, []string{"shears", "pruner", "watering", "trowel", "gloves", "vase", "soil", "fertilizer"}},
		{domain.CategoryCutFlowers, []string{"stem", "rose", "tulip", "lily", "peony", "carnation", "chrysanthemum", "sunflower"}},
	}

	for _, k := range keywords {
		for _, w := range k.words {
			if strings.Contains(lower, w) {
				return k.category
			}
		}
	}
	return ""
}

func matchCategory(line string) (domain.ProductCategory, bool) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(line), ":")
	for _, c := range domain.Categories() {
		if strings.EqualFold(trimmed, string(c)) {
			return c, true
		}
	}
	return "", false
}

func cleanName(s string) string {
	s = fillerRe.ReplaceAllString(s, " ")
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.Trim(strings.TrimSpace(s), ".-_")
}
