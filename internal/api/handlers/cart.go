package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bazaarly/storefront/internal/api/middleware"
	"github.com/bazaarly/storefront/internal/models"
	service "github.com/bazaarly/storefront/internal/services"
	"github.com/bazaarly/storefront/internal/utils"
	"github.com/bazaarly/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// CartHandler exposes the buyer's cart. Routes are mounted behind the
// optional auth middleware: the service layer decides whether the actor
// may mutate, so guests get the domain authorization error rather than a
// transport-level rejection.
type CartHandler struct {
	cartService *service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		cart, err := h.cartService.GetCart(r.Context(), actor)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())
		actor := middleware.ActorFromContext(r.Context())

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), actor, &req)
		if err != nil {
			logger.Warn("Add to cart failed", slog.String("productId", req.ProductID), slog.String("error", err.Error()))
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.UpdateQuantity(r.Context(), actor, &req)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		productID := r.PathValue("productId")

		cart, err := h.cartService.RemoveItem(r.Context(), actor, productID)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// RemoveOne decrements a line by one; the last unit removes the line.
func (h *CartHandler) RemoveOne() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())
		productID := r.PathValue("productId")

		cart, err := h.cartService.RemoveOne(r.Context(), actor, productID)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFromContext(r.Context())

		cart, err := h.cartService.ClearCart(r.Context(), actor)
		if err != nil {
			response.Error(w, err)

			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}
