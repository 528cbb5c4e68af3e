// internal/pricelist/xlsx.go
package pricelist

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

type columns struct {
	name, price, stock, category, description int
}

// Column order used when the first row is not a recognizable header
var defaultColumns = columns{name: 0, price: 1, stock: 2, category: 3, description: 4}

// ParseXLSXFile parses the first sheet of an XLSX price list
func ParseXLSXFile(path string) (*Result, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	return parseWorkbook(file)
}

// ParseXLSX parses an XLSX price list held in memory
func ParseXLSX(data []byte) (*Result, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	return parseWorkbook(file)
}

func parseWorkbook(file *xlsx.File) (*Result, error) {
	res := &Result{}
	if len(file.Sheets) == 0 {
		return res, nil
	}

	cols := defaultColumns
	rowIdx := 0

	err := file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		rowIdx++
		if rowIdx == 1 {
			if header, ok := detectHeader(r); ok {
				cols = header
				return nil
			}
		}

		get := func(i int) string {
			if i < 0 {
				return ""
			}
			c := r.GetCell(i)
			if c == nil {
				return ""
			}
			return strings.TrimSpace(c.String())
		}

		name := get(cols.name)
		priceText := get(cols.price)
		if name == "" && priceText == "" {
			return nil
		}
		if name == "" {
			res.skip(rowIdx, "missing product name")
			return nil
		}

		price, err := ParsePrice(priceText)
		if err != nil {
			res.skip(rowIdx, "%v", err)
			return nil
		}

		stock, err := parseStock(get(cols.stock))
		if err != nil {
			res.skip(rowIdx, "%v", err)
			return nil
		}

		res.Products = append(res.Products, &domain.Product{
			Name:          name,
			Price:         price,
			StockQuantity: stock,
			Category:      resolveCategory(get(cols.category), name),
			Description:   get(cols.description),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process Excel rows: %w", err)
	}

	return res, nil
}

func detectHeader(r *xlsx.Row) (columns, bool) {
	cols := columns{name: -1, price: -1, stock: -1, category: -1, description: -1}

	for i := 0; i < 16; i++ {
		c := r.GetCell(i)
		if c == nil {
			continue
		}
		switch h := strings.ToLower(strings.TrimSpace(c.String())); {
		case h == "":
		case strings.Contains(h, "price"):
			cols.price = i
		case strings.Contains(h, "stock") || strings.Contains(h, "qty") || strings.Contains(h, "quantity"):
			cols.stock = i
		case strings.Contains(h, "category"):
			cols.category = i
		case strings.Contains(h, "description"):
			cols.description = i
		case strings.Contains(h, "name") || strings.Contains(h, "product") || strings.Contains(h, "item"):
			cols.name = i
		}
	}

	return cols, cols.name >= 0 && cols.price >= 0
}

func parseStock(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil || d.IsNegative() || !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("invalid stock %q", s)
	}
	return int(d.IntPart()), nil
}

func resolveCategory(value, name string) domain.ProductCategory {
	if c, ok := matchCategory(value); ok {
		return c
	}
	if value != "" {
		return domain.ProductCategory(value)
	}
	return GuessCategory(name)
}
