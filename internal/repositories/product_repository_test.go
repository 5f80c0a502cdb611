package repository_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bazaarly/storefront/internal/models"
	repository "github.com/bazaarly/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(sellerID uuid.UUID) *models.Product {
	return &models.Product{
		SellerID:    sellerID,
		Name:        "Wireless Bluetooth Headphones",
		Description: "High-quality wireless headphones with noise cancellation",
		Category:    "Electronics",
		Price:       89.99,
		Stock:       50,
		ImageURL:    "https://example.com/img.jpg",
		Status:      "active",
	}
}

func TestNewProductRepo(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewProductRepo(db)
	assert.NotNil(t, repo, "NewProductRepo should return a non-nil repository")
}

func TestProductRepository_CreateProduct(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewProductRepo(db)
	ctx := t.Context()
	sellerID := uuid.New()

	expectedSQL := regexp.QuoteMeta(`INSERT INTO products (seller_id, name, description, category, price, stock, image_url, status)`)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		product := newTestProduct(sellerID)
		now := time.Now()
		newID := uuid.New()

		mock.ExpectQuery(expectedSQL).
			WithArgs(product.SellerID, product.Name, product.Description, product.Category,
				product.Price, product.Stock, product.ImageURL, product.Status).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(newID, now, now))

		// Act
		err := repo.CreateProduct(ctx, product)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, newID, product.ID, "Product ID should be updated")
		assert.WithinDuration(t, now, product.CreatedAt, time.Second)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error", func(t *testing.T) {
		// Arrange
		product := newTestProduct(sellerID)
		dbError := errors.New("database insertion error")

		mock.ExpectQuery(expectedSQL).
			WithArgs(product.SellerID, product.Name, product.Description, product.Category,
				product.Price, product.Stock, product.ImageURL, product.Status).
			WillReturnError(dbError)

		// Act
		err := repo.CreateProduct(ctx, product)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, dbError)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_CreateProductBatch(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewProductRepo(db)
	ctx := t.Context()
	sellerID := uuid.New()

	insertSQL := regexp.QuoteMeta(`INSERT INTO products (seller_id, name, description, category, price, stock, image_url, status)`)

	t.Run("Success - all rows inserted in one transaction", func(t *testing.T) {
		// Arrange
		first := newTestProduct(sellerID)
		second := newTestProduct(sellerID)
		second.Name = "Stainless Steel Water Bottle"
		now := time.Now()
		firstID, secondID := uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectPrepare(insertSQL)
		mock.ExpectQuery(insertSQL).
			WithArgs(first.SellerID, first.Name, first.Description, first.Category,
				first.Price, first.Stock, first.ImageURL, first.Status).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(firstID, now, now))
		mock.ExpectQuery(insertSQL).
			WithArgs(second.SellerID, second.Name, second.Description, second.Category,
				second.Price, second.Stock, second.ImageURL, second.Status).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(secondID, now, now))
		mock.ExpectCommit()

		// Act
		err := repo.CreateProductBatch(ctx, []*models.Product{first, second})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, firstID, first.ID)
		assert.Equal(t, secondID, second.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure on any row rolls the batch back", func(t *testing.T) {
		// Arrange
		first := newTestProduct(sellerID)
		second := newTestProduct(sellerID)
		now := time.Now()
		dbError := errors.New("constraint violation")

		mock.ExpectBegin()
		mock.ExpectPrepare(insertSQL)
		mock.ExpectQuery(insertSQL).
			WithArgs(first.SellerID, first.Name, first.Description, first.Category,
				first.Price, first.Stock, first.ImageURL, first.Status).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(uuid.New(), now, now))
		mock.ExpectQuery(insertSQL).
			WithArgs(second.SellerID, second.Name, second.Description, second.Category,
				second.Price, second.Stock, second.ImageURL, second.Status).
			WillReturnError(dbError)
		mock.ExpectRollback()

		// Act
		err := repo.CreateProductBatch(ctx, []*models.Product{first, second})

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, dbError)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_GetProductByID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewProductRepo(db)
	ctx := t.Context()
	productID := uuid.New()
	sellerID := uuid.New()

	selectSQL := regexp.QuoteMeta(`FROM products WHERE id = $1`)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()

		rows := sqlmock.NewRows([]string{"id", "seller_id", "name", "description", "category",
			"price", "stock", "image_url", "rating", "review_count", "status", "created_at", "updated_at"}).
			AddRow(productID, sellerID, "Desk Lamp", "Adjustable LED desk lamp", "Home & Kitchen",
				19.99, 5, "", 4.5, 12, "active", now, now)

		mock.ExpectQuery(selectSQL).WithArgs(productID).WillReturnRows(rows)

		product, err := repo.GetProductByID(ctx, productID)

		require.NoError(t, err)
		assert.Equal(t, productID, product.ID)
		assert.Equal(t, "Desk Lamp", product.Name)
		assert.Equal(t, 4.5, product.Rating)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(selectSQL).WithArgs(productID).WillReturnError(sql.ErrNoRows)

		product, err := repo.GetProductByID(ctx, productID)

		require.Error(t, err)
		assert.Nil(t, product)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_DeleteProduct(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewProductRepo(db)
	ctx := t.Context()
	productID := uuid.New()
	sellerID := uuid.New()

	deleteSQL := regexp.QuoteMeta(`DELETE FROM products WHERE id = $1 AND seller_id = $2`)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(deleteSQL).WithArgs(productID, sellerID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.DeleteProduct(ctx, productID, sellerID))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No matching row", func(t *testing.T) {
		mock.ExpectExec(deleteSQL).WithArgs(productID, sellerID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteProduct(ctx, productID, sellerID)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_ListProductsBySeller(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewProductRepo(db)
	ctx := t.Context()
	sellerID := uuid.New()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products WHERE seller_id = $1`)).
			WithArgs(sellerID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows([]string{"id", "seller_id", "name", "description", "category",
			"price", "stock", "image_url", "rating", "review_count", "status", "created_at", "updated_at"}).
			AddRow(uuid.New(), sellerID, "Desk Lamp", "Adjustable LED desk lamp", "Home & Kitchen",
				19.99, 5, "", 0.0, 0, "active", now, now).
			AddRow(uuid.New(), sellerID, "Bottle", "Insulated bottle for cold drinks", "Sports",
				24.50, 120, "", 0.0, 0, "active", now, now)

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE seller_id = $1`)).
			WithArgs(sellerID, 10, 0).
			WillReturnRows(rows)

		products, total, err := repo.ListProductsBySeller(ctx, sellerID, 1, 10)

		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, products, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
