// internal/pricelist/pdf.go
package pricelist

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ParsePDFFile extracts the text of every page and parses it line by line
func ParsePDFFile(path string) (*Result, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var lines []string
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
		}

		lines = append(lines, strings.Split(text, "\n")...)
	}

	return ParseText(lines), nil
}
