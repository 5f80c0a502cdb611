package models

// Sort keys accepted by the catalog listing.
const (
	SortPopularity = "popularity"
	SortPriceLow   = "price-low"
	SortPriceHigh  = "price-high"
	SortRating     = "rating"
	SortNewest     = "newest"
)

// CatalogQuery carries the browse parameters for the public catalog.
// Zero values mean "no constraint" for every field except Page and
// PageSize, which are normalized by the catalog service.
type CatalogQuery struct {
	Keyword    string   `json:"keyword"`
	Categories []string `json:"categories"`
	MinPrice   float64  `json:"min_price"`
	MaxPrice   float64  `json:"max_price"`
	SortBy     string   `json:"sort_by"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

// CatalogPage is one page of filtered, sorted catalog results.
type CatalogPage struct {
	Products   []*Product `json:"products"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
}
