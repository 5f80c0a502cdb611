package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bazaarly/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CartStore gives the cart durability across sessions, scoped per user. The
// key space is namespaced by user id so no two buyers' carts can collide.
// Writes are last-write-wins; there is no cross-session conflict detection.
type CartStore interface {
	Load(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Save(ctx context.Context, userID uuid.UUID, items []models.CartItem) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type redisCartStore struct {
	client *redis.Client
}

func NewCartStore(client *redis.Client) CartStore {
	return &redisCartStore{client: client}
}

func cartKey(userID uuid.UUID) string {
	return "cart:" + userID.String()
}

// Load returns the saved item list for the user, or an empty list when
// nothing is saved. Malformed saved data is logged and treated as empty; it
// never crashes the cart.
func (s *redisCartStore) Load(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	data, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []models.CartItem{}, nil
		}

		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}

	var items []models.CartItem

	if err := json.Unmarshal(data, &items); err != nil {
		slog.Warn("Discarding malformed saved cart",
			slog.String("userId", userID.String()),
			slog.String("error", err.Error()),
		)

		return []models.CartItem{}, nil
	}

	return items, nil
}

func (s *redisCartStore) Save(ctx context.Context, userID uuid.UUID, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart items: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save cart for user %s: %w", userID, err)
	}

	return nil
}

func (s *redisCartStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart for user %s: %w", userID, err)
	}

	return nil
}
