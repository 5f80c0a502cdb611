package csvimport

import (
	"fmt"
	"net/url"
	"unicode/utf8"

	"github.com/bazaarly/storefront/internal/models"
)

// MaxPrice is the upper bound a product price may take.
const MaxPrice = 999999.99

// ValidateRows runs the field-level rules over the full candidate list and
// returns every problem found, each prefixed with its 1-based row number.
// Submission is all-or-nothing: a single returned error blocks the batch.
func ValidateRows(rows []*models.CSVProductRow) []string {
	var errs []string

	report := func(row int, message string) {
		errs = append(errs, fmt.Sprintf("Row %d: %s", row, message))
	}

	for i, row := range rows {
		n := i + 1

		switch {
		case row.Name == "":
			report(n, "name is required")
		case utf8.RuneCountInString(row.Name) < 3:
			report(n, "name must be at least 3 characters")
		}

		switch {
		case row.Description == "":
			report(n, "description is required")
		case utf8.RuneCountInString(row.Description) < 10:
			report(n, "description must be at least 10 characters")
		}

		if row.Category == "" {
			report(n, "category is required")
		}

		switch {
		case row.Price <= 0:
			report(n, "price must be greater than 0")
		case row.Price > MaxPrice:
			report(n, fmt.Sprintf("price must not exceed %.2f", MaxPrice))
		}

		if row.ImageURL != "" && !isAbsoluteURL(row.ImageURL) {
			report(n, "image_url must be a valid URL")
		}
	}

	return errs
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)

	return err == nil && u.Scheme != "" && u.Host != ""
}
