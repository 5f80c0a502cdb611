package service

import (
	"context"

	"github.com/bazaarly/storefront/internal/errors"
	"github.com/bazaarly/storefront/internal/metrics"
	"github.com/bazaarly/storefront/internal/models"
	repository "github.com/bazaarly/storefront/internal/repositories"
	"github.com/google/uuid"
)

// CartService applies cart transitions on behalf of an authenticated buyer
// and keeps the durable per-user copy in sync after every mutation. Any
// mutation attempted by a guest or a seller fails with an authorization
// error and changes nothing.
type CartService struct {
	store repository.CartStore
}

func NewCartService(store repository.CartStore) *CartService {
	return &CartService{store: store}
}

func (s *CartService) requireBuyer(actor *models.Actor) error {
	if !actor.IsBuyer() {
		return errors.AuthorizationError("You must be signed in as a buyer to modify the cart")
	}

	return nil
}

func (s *CartService) loadCart(ctx context.Context, actor *models.Actor) (*models.Cart, error) {
	items, err := s.store.Load(ctx, actor.UserID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load cart").WithError(err)
	}

	cart := models.NewCart(actor.UserID)
	cart.Items = items
	cart.Recalculate()

	return cart, nil
}

func (s *CartService) persist(ctx context.Context, cart *models.Cart) error {
	if err := s.store.Save(ctx, cart.UserID, cart.Items); err != nil {
		return errors.DatabaseError("Failed to save cart").WithError(err)
	}

	return nil
}

// GetCart is a read; it is not gated. Non-buyers see an empty cart.
func (s *CartService) GetCart(ctx context.Context, actor *models.Actor) (*models.Cart, error) {
	if !actor.IsBuyer() {
		return models.NewCart(actorID(actor)), nil
	}

	return s.loadCart(ctx, actor)
}

func (s *CartService) AddItem(ctx context.Context, actor *models.Actor, req *models.AddItemRequest) (*models.Cart, error) {
	if err := s.requireBuyer(actor); err != nil {
		return nil, err
	}

	cart, err := s.loadCart(ctx, actor)
	if err != nil {
		return nil, err
	}

	cart.AddItem(req.Snapshot())

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	metrics.RecordCartOperation("add")

	return cart, nil
}

// RemoveItem deletes the entry entirely. Removing an absent product id is a
// no-op success.
func (s *CartService) RemoveItem(ctx context.Context, actor *models.Actor, productID string) (*models.Cart, error) {
	if err := s.requireBuyer(actor); err != nil {
		return nil, err
	}

	cart, err := s.loadCart(ctx, actor)
	if err != nil {
		return nil, err
	}

	cart.RemoveItem(productID)

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	metrics.RecordCartOperation("remove")

	return cart, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, actor *models.Actor, req *models.UpdateQuantityRequest) (*models.Cart, error) {
	if err := s.requireBuyer(actor); err != nil {
		return nil, err
	}

	cart, err := s.loadCart(ctx, actor)
	if err != nil {
		return nil, err
	}

	cart.SetQuantity(req.ProductID, req.Quantity)

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	metrics.RecordCartOperation("update_quantity")

	return cart, nil
}

// RemoveOne decrements the entry by one; at quantity 1 the entry is removed.
func (s *CartService) RemoveOne(ctx context.Context, actor *models.Actor, productID string) (*models.Cart, error) {
	if err := s.requireBuyer(actor); err != nil {
		return nil, err
	}

	cart, err := s.loadCart(ctx, actor)
	if err != nil {
		return nil, err
	}

	cart.RemoveOne(productID)

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	metrics.RecordCartOperation("remove_one")

	return cart, nil
}

func (s *CartService) ClearCart(ctx context.Context, actor *models.Actor) (*models.Cart, error) {
	if err := s.requireBuyer(actor); err != nil {
		return nil, err
	}

	cart, err := s.loadCart(ctx, actor)
	if err != nil {
		return nil, err
	}

	cart.Clear()

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	metrics.RecordCartOperation("clear")

	return cart, nil
}

// HandleIdentityChange restores the cart invariant when a user's session
// changes: a buyer signing in rehydrates their saved cart; a sign-out or a
// switch to the seller role force-clears the stored cart for that user. It
// is an event reaction, not a user-invoked operation.
func (s *CartService) HandleIdentityChange(ctx context.Context, event models.IdentityEvent) error {
	if event.Role == models.RoleBuyer {
		if _, err := s.loadCart(ctx, &models.Actor{UserID: event.UserID, Role: models.RoleBuyer}); err != nil {
			return err
		}

		return nil
	}

	if err := s.store.Delete(ctx, event.UserID); err != nil {
		return errors.DatabaseError("Failed to clear cart").WithError(err)
	}

	metrics.RecordCartOperation("force_clear")

	return nil
}

func actorID(actor *models.Actor) uuid.UUID {
	if actor != nil {
		return actor.UserID
	}

	return uuid.Nil
}
