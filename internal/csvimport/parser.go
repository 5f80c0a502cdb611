// Package csvimport turns an uploaded delimited text file into reviewable
// product candidates.
//
// The parser is deliberately naive to stay compatible with the documented
// file format: fields are split on commas, one layer of surrounding matching
// quotes is stripped, and embedded delimiters or escaped quotes are not
// supported.
package csvimport

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bazaarly/storefront/internal/errors"
	"github.com/bazaarly/storefront/internal/models"
)

const (
	// MaxFileSize is the upload cap applied before any parsing.
	MaxFileSize = 5 << 20

	// DefaultStock is assigned when the stock column is absent or invalid.
	DefaultStock = 10
)

var requiredColumns = []string{"name", "description", "category", "price", "image_url"}

// Parse validates the file shape and header, then maps every data line onto
// a product candidate. Lines whose name, description or category is empty,
// or whose price is not positive, are dropped silently; the detailed
// validation pass reports problems on the rows that survive. The returned
// count is the number of dropped lines.
func Parse(filename string, data []byte) ([]*models.CSVProductRow, int, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, 0, errors.CSVFormatError("Please upload a CSV file")
	}

	if len(data) > MaxFileSize {
		return nil, 0, errors.CSVSizeError("File size must be less than 5MB")
	}

	lines := splitLines(string(data))
	if len(lines) == 0 {
		return nil, 0, errors.CSVFormatError("File is empty")
	}

	columns, err := parseHeader(lines[0])
	if err != nil {
		return nil, 0, err
	}

	rows := make([]*models.CSVProductRow, 0, len(lines)-1)
	skipped := 0

	for _, line := range lines[1:] {
		data, ok := parseLine(line, columns)
		if !ok {
			skipped++

			continue
		}

		rows = append(rows, models.NewCSVProductRow(data))
	}

	return rows, skipped, nil
}

// splitLines drops blank lines; the first survivor is the header.
func splitLines(content string) []string {
	var lines []string

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		lines = append(lines, line)
	}

	return lines
}

// parseHeader resolves column positions. Column matching is order-independent
// and case-insensitive; every required column must be present.
func parseHeader(header string) (map[string]int, error) {
	columns := make(map[string]int)

	for i, field := range strings.Split(header, ",") {
		columns[strings.ToLower(cleanField(field))] = i
	}

	var missing []string

	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)

		return nil, errors.CSVSchemaError(
			fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")))
	}

	return columns, nil
}

func parseLine(line string, columns map[string]int) (models.CSVRowData, bool) {
	fields := strings.Split(line, ",")

	get := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(fields) {
			return ""
		}

		return cleanField(fields[i])
	}

	price, err := strconv.ParseFloat(get("price"), 64)
	if err != nil {
		price = 0
	}

	stock, err := strconv.Atoi(get("stock"))
	if err != nil || stock < 0 {
		stock = DefaultStock
	}

	data := models.CSVRowData{
		Name:        get("name"),
		Description: get("description"),
		Category:    get("category"),
		Price:       price,
		ImageURL:    get("image_url"),
		Stock:       stock,
	}

	if data.Name == "" || data.Description == "" || data.Category == "" || data.Price <= 0 {
		return models.CSVRowData{}, false
	}

	return data, true
}

// cleanField trims whitespace and strips one layer of surrounding matching
// quotes. Embedded quotes and delimiters stay untouched.
func cleanField(field string) string {
	field = strings.TrimSpace(field)

	if len(field) >= 2 {
		first, last := field[0], field[len(field)-1]
		if first == last && (first == '"' || first == '\'') {
			field = field[1 : len(field)-1]
		}
	}

	return field
}
