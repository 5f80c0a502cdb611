package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/bazaarly/storefront/internal/api/middleware"
	appErrors "github.com/bazaarly/storefront/internal/errors"
	"github.com/bazaarly/storefront/internal/models"
	service "github.com/bazaarly/storefront/internal/services"
	"github.com/bazaarly/storefront/internal/utils"
	"github.com/bazaarly/storefront/internal/utils/response"
	"github.com/bazaarly/storefront/pkg/s3"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxImageSize = 2 << 20

// ImageUploader stores a product image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

type ProductHandler struct {
	productService *service.ProductService
	catalogService *service.CatalogService
	uploader       ImageUploader
	validator      *validator.Validate
}

func NewProductHandler(productService *service.ProductService, catalogService *service.CatalogService, uploader ImageUploader) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		catalogService: catalogService,
		uploader:       uploader,
		validator:      validator.New(),
	}
}

func (h *ProductHandler) CreateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())
		actor := middleware.ActorFromContext(r.Context())

		var req models.CreateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.CreateProduct(r.Context(), actor.UserID, &req)
		if err != nil {
			logger.Error("Product creation failed", slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusCreated, product)
	}
}

func (h *ProductHandler) GetProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			response.Error(w, appErrors.BadRequestError("Invalid product id"))

			return
		}

		product, err := h.productService.GetProduct(r.Context(), id)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) UpdateProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			response.Error(w, appErrors.BadRequestError("Invalid product id"))

			return
		}

		var req models.UpdateProductRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		product, err := h.productService.UpdateProduct(r.Context(), actor.UserID, id, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, product)
	}
}

func (h *ProductHandler) DeleteProduct() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			response.Error(w, appErrors.BadRequestError("Invalid product id"))

			return
		}

		if err := h.productService.DeleteProduct(r.Context(), actor.UserID, id); err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// ListCatalog is the public storefront browse endpoint.
func (h *ProductHandler) ListCatalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := catalogQueryFromRequest(r)

		page, err := h.catalogService.Browse(r.Context(), query)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, page)
	}
}

func (h *ProductHandler) ListSellerProducts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

		result, err := h.productService.ListSellerProducts(r.Context(), actor.UserID, page, pageSize)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, result)
	}
}

// UploadImage accepts a multipart image and returns the stored URL; the
// client then references it from a product create or update.
func (h *ProductHandler) UploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())
		actor := middleware.ActorFromContext(r.Context())

		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			response.Error(w, appErrors.BadRequestError("Image must be smaller than 2MB"))

			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			response.Error(w, appErrors.BadRequestError("Image file is required"))

			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			response.Error(w, appErrors.BadRequestError("Only image uploads are allowed"))

			return
		}

		key := s3.ImageKey(actor.UserID, header.Filename)

		url, err := h.uploader.Upload(r.Context(), key, file, contentType)
		if err != nil {
			logger.Error("Image upload failed", slog.String("error", err.Error()))
			response.Error(w, appErrors.StorageError("Failed to store image").WithError(err))

			return
		}

		response.Success(w, http.StatusCreated, map[string]string{"image_url": url})
	}
}

func catalogQueryFromRequest(r *http.Request) *models.CatalogQuery {
	params := r.URL.Query()

	query := &models.CatalogQuery{
		Keyword: params.Get("q"),
		SortBy:  params.Get("sort"),
	}

	if raw := params.Get("categories"); raw != "" {
		query.Categories = strings.Split(raw, ",")
	}

	query.MinPrice, _ = strconv.ParseFloat(params.Get("minPrice"), 64)
	query.MaxPrice, _ = strconv.ParseFloat(params.Get("maxPrice"), 64)
	query.Page, _ = strconv.Atoi(params.Get("page"))
	query.PageSize, _ = strconv.Atoi(params.Get("pageSize"))

	return query
}
