package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is a snapshot of a product's display fields plus the quantity the
// buyer holds. Quantity is always >= 1 while the item exists; an item whose
// quantity would drop to 0 is removed from the cart entirely.
type CartItem struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url,omitempty"`
	SellerID    string  `json:"seller_id"`
	Quantity    int     `json:"quantity"`
}

func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// Cart holds the ordered item list for one buyer. Items keep insertion order
// for display; order carries no meaning for totals. Total and ItemCount are
// derived and must be recomputed from the full item list after every
// mutation, never maintained incrementally.
type Cart struct {
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"item_count"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		UpdatedAt: time.Now(),
	}
}

// Recalculate recomputes Total and ItemCount from scratch.
func (c *Cart) Recalculate() {
	var total float64

	var count int

	for _, item := range c.Items {
		total += item.LineTotal()
		count += item.Quantity
	}

	c.Total = total
	c.ItemCount = count
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}

	return -1
}

// AddItem appends a new entry with quantity 1 or bumps the quantity of an
// existing one.
func (c *Cart) AddItem(snapshot CartItem) {
	if i := c.indexOf(snapshot.ProductID); i >= 0 {
		c.Items[i].Quantity++
	} else {
		snapshot.Quantity = 1
		c.Items = append(c.Items, snapshot)
	}

	c.touch()
}

// RemoveItem deletes the entry entirely regardless of quantity. Removing an
// absent id is a no-op.
func (c *Cart) RemoveItem(productID string) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}

	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.touch()
}

// SetQuantity sets the quantity of the matching entry, clamped to a minimum
// of 1. Removal goes through RemoveItem, never through a zero quantity here.
func (c *Cart) SetQuantity(productID string, quantity int) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}

	if quantity < 1 {
		quantity = 1
	}

	c.Items[i].Quantity = quantity
	c.touch()
}

// RemoveOne decrements the entry by one; at quantity 1 the entry is removed
// entirely.
func (c *Cart) RemoveOne(productID string) {
	i := c.indexOf(productID)
	if i < 0 {
		return
	}

	if c.Items[i].Quantity > 1 {
		c.Items[i].Quantity--
		c.touch()

		return
	}

	c.RemoveItem(productID)
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.touch()
}

func (c *Cart) Contains(productID string) bool {
	return c.indexOf(productID) >= 0
}

func (c *Cart) Quantity(productID string) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i].Quantity
	}

	return 0
}

func (c *Cart) touch() {
	c.Recalculate()
	c.UpdatedAt = time.Now()
}

// AddItemRequest carries the product snapshot the storefront displays; the
// cart never re-fetches the product on add.
type AddItemRequest struct {
	ProductID   string  `json:"product_id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	ImageURL    string  `json:"image_url,omitempty"`
	SellerID    string  `json:"seller_id"`
}

func (r *AddItemRequest) Snapshot() CartItem {
	return CartItem{
		ProductID:   r.ProductID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		SellerID:    r.SellerID,
		Quantity:    1,
	}
}

type UpdateQuantityRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}
