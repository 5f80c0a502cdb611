package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/bazaarly/storefront/internal/cache"
	appErrors "github.com/bazaarly/storefront/internal/errors"
	"github.com/bazaarly/storefront/internal/models"
	repository "github.com/bazaarly/storefront/internal/repositories"
	"github.com/google/uuid"
)

const productCacheTTL = 10 * time.Minute

// ProductService owns single-product CRUD for sellers. Reads go through
// the cache; every write invalidates the cached copy so a stale product
// never outlives the request that changed it.
type ProductService struct {
	repo   repository.ProductRepository
	cache  cache.Cache
	logger *slog.Logger
}

func NewProductService(repo repository.ProductRepository, cache cache.Cache, logger *slog.Logger) *ProductService {
	return &ProductService{repo: repo, cache: cache, logger: logger}
}

func (s *ProductService) CreateProduct(ctx context.Context, sellerID uuid.UUID, req *models.CreateProductRequest) (*models.Product, error) {
	product := &models.Product{
		SellerID:    sellerID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Status:      "active",
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, appErrors.DatabaseError("Failed to create product").WithError(err)
	}

	s.logger.Info("product created",
		slog.String("productID", product.ID.String()),
		slog.String("sellerID", sellerID.String()))

	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	key := cache.Key(cache.ProductKeyPrefix, id.String())

	var cached models.Product
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if err := s.cache.Set(ctx, key, product, productCacheTTL); err != nil {
		s.logger.Warn("failed to cache product", slog.String("productID", id.String()), slog.String("error", err.Error()))
	}

	return product, nil
}

// UpdateProduct applies a partial update. Only the owning seller can
// change a product; a mismatched seller is indistinguishable from a
// missing product.
func (s *ProductService) UpdateProduct(ctx context.Context, sellerID, id uuid.UUID, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found")
		}

		return nil, appErrors.DatabaseError("Failed to fetch product").WithError(err)
	}

	if product.SellerID != sellerID {
		return nil, appErrors.NotFoundError("Product not found")
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.Status != nil {
		product.Status = *req.Status
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Product not found")
		}

		return nil, appErrors.DatabaseError("Failed to update product").WithError(err)
	}

	s.invalidate(ctx, id)

	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, sellerID, id uuid.UUID) error {
	if err := s.repo.DeleteProduct(ctx, id, sellerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFoundError("Product not found")
		}

		return appErrors.DatabaseError("Failed to delete product").WithError(err)
	}

	s.invalidate(ctx, id)

	return nil
}

// ListSellerProducts pages through the seller's own products, active or not.
func (s *ProductService) ListSellerProducts(ctx context.Context, sellerID uuid.UUID, page, pageSize int) (*models.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	products, total, err := s.repo.ListProductsBySeller(ctx, sellerID, page, pageSize)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list products").WithError(err)
	}

	return models.NewPaginatedResponse(products, page, pageSize, total), nil
}

func (s *ProductService) invalidate(ctx context.Context, id uuid.UUID) {
	key := cache.Key(cache.ProductKeyPrefix, id.String())
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to invalidate product cache",
			slog.String("productID", id.String()),
			slog.String("error", err.Error()))
	}
}
