package service

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/bazaarly/storefront/internal/models"
	repository "github.com/bazaarly/storefront/internal/repositories"
)

const DefaultPageSize = 12

// CatalogService answers the public storefront browse queries: keyword
// search, category and price filtering, sorting and pagination over the
// active products.
type CatalogService struct {
	repo repository.ProductRepository
}

func NewCatalogService(repo repository.ProductRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) Browse(ctx context.Context, query *models.CatalogQuery) (*models.CatalogPage, error) {
	products, err := s.repo.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}

	return BuildCatalogPage(products, query), nil
}

// BuildCatalogPage filters, sorts and paginates in memory. Filters
// combine with AND; the category filter matches any of the requested
// categories. Page numbers out of range are clamped, so a shrinking
// result set never strands the caller on an empty page.
func BuildCatalogPage(products []*models.Product, query *models.CatalogQuery) *models.CatalogPage {
	filtered := filterProducts(products, query)
	sortProducts(filtered, query.SortBy)

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalPages := int(math.Ceil(float64(len(filtered)) / float64(pageSize)))
	if totalPages < 1 {
		totalPages = 1
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return &models.CatalogPage{
		Products:   filtered[start:end],
		Page:       page,
		PageSize:   pageSize,
		Total:      len(filtered),
		TotalPages: totalPages,
	}
}

func filterProducts(products []*models.Product, query *models.CatalogQuery) []*models.Product {
	keyword := strings.ToLower(strings.TrimSpace(query.Keyword))

	categories := make(map[string]struct{}, len(query.Categories))
	for _, c := range query.Categories {
		categories[strings.ToLower(c)] = struct{}{}
	}

	filtered := make([]*models.Product, 0, len(products))

	for _, p := range products {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(p.Name), keyword) &&
			!strings.Contains(strings.ToLower(p.Description), keyword) {
			continue
		}

		if len(categories) > 0 {
			if _, ok := categories[strings.ToLower(p.Category)]; !ok {
				continue
			}
		}

		if query.MinPrice > 0 && p.Price < query.MinPrice {
			continue
		}

		if query.MaxPrice > 0 && p.Price > query.MaxPrice {
			continue
		}

		filtered = append(filtered, p)
	}

	return filtered
}

// sortProducts orders in place. The sort is stable so that products
// tied on the sort key keep their relative order across requests.
func sortProducts(products []*models.Product, sortBy string) {
	switch sortBy {
	case models.SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case models.SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case models.SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	case models.SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	default:
		// popularity
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].ReviewCount > products[j].ReviewCount
		})
	}
}
