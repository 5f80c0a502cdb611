package repository_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/bazaarly/storefront/internal/models"
	repository "github.com/bazaarly/storefront/internal/repositories"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []models.CartItem {
	return []models.CartItem{
		{
			ProductID:   uuid.NewString(),
			Name:        "Wireless Bluetooth Headphones",
			Description: "High-quality wireless headphones with noise cancellation",
			Category:    "Electronics",
			Price:       89.99,
			SellerID:    uuid.NewString(),
			Quantity:    2,
		},
	}
}

func TestCartStore_Load(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := repository.NewCartStore(client)
	ctx := t.Context()
	userID := uuid.New()
	key := "cart:" + userID.String()

	t.Run("Returns saved items", func(t *testing.T) {
		items := testItems()
		data, err := json.Marshal(items)
		require.NoError(t, err)

		mock.ExpectGet(key).SetVal(string(data))

		loaded, err := store.Load(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, items, loaded)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing key yields empty list", func(t *testing.T) {
		mock.ExpectGet(key).RedisNil()

		loaded, err := store.Load(ctx, userID)

		require.NoError(t, err)
		assert.Empty(t, loaded)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Malformed saved data yields empty list, not an error", func(t *testing.T) {
		mock.ExpectGet(key).SetVal("{not valid json")

		loaded, err := store.Load(ctx, userID)

		require.NoError(t, err, "corrupt saved data must never crash the cart")
		assert.Empty(t, loaded)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Connection error is propagated", func(t *testing.T) {
		mock.ExpectGet(key).SetErr(errors.New("connection refused"))

		loaded, err := store.Load(ctx, userID)

		assert.Error(t, err)
		assert.Nil(t, loaded)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartStore_Save(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := repository.NewCartStore(client)
	ctx := t.Context()
	userID := uuid.New()
	key := "cart:" + userID.String()

	t.Run("Persists the full item list", func(t *testing.T) {
		items := testItems()
		data, err := json.Marshal(items)
		require.NoError(t, err)

		mock.ExpectSet(key, data, 0).SetVal("OK")

		require.NoError(t, store.Save(ctx, userID, items))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nil items are saved as an empty list", func(t *testing.T) {
		mock.ExpectSet(key, []byte("[]"), 0).SetVal("OK")

		require.NoError(t, store.Save(ctx, userID, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Write error is propagated", func(t *testing.T) {
		items := testItems()
		data, err := json.Marshal(items)
		require.NoError(t, err)

		mock.ExpectSet(key, data, 0).SetErr(errors.New("connection refused"))

		assert.Error(t, store.Save(ctx, userID, items))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCartStore_Delete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := repository.NewCartStore(client)
	ctx := t.Context()
	userID := uuid.New()
	key := "cart:" + userID.String()

	t.Run("Deletes the user's key", func(t *testing.T) {
		mock.ExpectDel(key).SetVal(1)

		require.NoError(t, store.Delete(ctx, userID))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Delete error is propagated", func(t *testing.T) {
		mock.ExpectDel(key).SetErr(errors.New("connection refused"))

		assert.Error(t, store.Delete(ctx, userID))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
