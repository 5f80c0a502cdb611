package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bazaarly/storefront/internal/models"
	"github.com/bazaarly/storefront/internal/utils"
	"github.com/google/uuid"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	CreateProductBatch(ctx context.Context, products []*models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id, sellerID uuid.UUID) error
	ListActiveProducts(ctx context.Context) ([]*models.Product, error)
	ListProductsBySeller(ctx context.Context, sellerID uuid.UUID, page, size int) ([]*models.Product, int, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `id, seller_id, name, description, category, price, stock, image_url, rating, review_count, status, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	product := &models.Product{}

	err := row.Scan(&product.ID, &product.SellerID, &product.Name, &product.Description,
		&product.Category, &product.Price, &product.Stock, &product.ImageURL,
		&product.Rating, &product.ReviewCount, &product.Status, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `INSERT INTO products (seller_id, name, description, category, price, stock, image_url, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id, created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, product.SellerID, product.Name, product.Description,
		product.Category, product.Price, product.Stock, product.ImageURL, product.Status).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

// CreateProductBatch inserts every product inside one transaction. The batch
// is atomic: a failure on any row rolls back all of them.
func (r *productRepository) CreateProductBatch(ctx context.Context, products []*models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer tx.Rollback()

	query := `INSERT INTO products (seller_id, name, description, category, price, stock, image_url, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING id, created_at, updated_at
	`

	stmt, err := tx.PrepareContext(dbCtx, query)
	if err != nil {
		return fmt.Errorf("preparing batch insert: %w", err)
	}

	defer stmt.Close()

	for _, product := range products {
		err := stmt.QueryRowContext(dbCtx, product.SellerID, product.Name, product.Description,
			product.Category, product.Price, product.Stock, product.ImageURL, product.Status).
			Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting product %q: %w", product.Name, err)
		}
	}

	return tx.Commit()
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE products
		SET name = $1, description = $2, category = $3, price = $4, stock = $5, image_url = $6, status = $7, updated_at = NOW()
		WHERE id = $8 AND seller_id = $9
		RETURNING updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, product.Name, product.Description, product.Category,
		product.Price, product.Stock, product.ImageURL, product.Status, product.ID, product.SellerID).
		Scan(&product.UpdatedAt)
}

func (r *productRepository) DeleteProduct(ctx context.Context, id, sellerID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `DELETE FROM products WHERE id = $1 AND seller_id = $2`

	result, err := r.DB.ExecContext(dbCtx, query, id, sellerID)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get deleted rows: %w", err)
	}

	if deleted == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ListActiveProducts returns the browsable working set; keyword, category and
// price filtering happen in the catalog service.
func (r *productRepository) ListActiveProducts(ctx context.Context) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE status = 'active' ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("querying database: %w", err)
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (r *productRepository) ListProductsBySeller(ctx context.Context, sellerID uuid.UUID, page, size int) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM products WHERE seller_id = $1`

	if err := r.DB.QueryRowContext(dbCtx, countQuery, sellerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + `
			  FROM products
			  WHERE seller_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(dbCtx, query, sellerID, size, (page-1)*size)
	if err != nil {
		return nil, 0, fmt.Errorf("querying database: %w", err)
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning product row: %w", err)
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, total, nil
}
