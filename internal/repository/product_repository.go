package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/RbroH99/les-sha-accesories/internal/database"
	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

// ProductRepository handles database operations for products
type ProductRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db *database.Database, logger logger.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

const productColumns = `id, name, description, price, image, category_id, stock, is_active, created_at, updated_at`

// Create inserts a new product and its tag links
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO products (id, name, description, price, image, category_id, stock, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Image,
		product.CategoryID,
		product.Stock,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create product", "error", err, "productID", product.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if err := insertProductTags(ctx, tx, product.ID, product.TagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByID retrieves a product by its ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var product models.Product
	err := r.db.DB.GetContext(ctx, &product, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get product by ID", "error", err, "productID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if err := r.loadTags(ctx, &product); err != nil {
		return nil, err
	}

	return &product, nil
}

// GetByIDs retrieves all products matching the given IDs in one query
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	var products []*models.Product
	err := r.db.DB.SelectContext(ctx, &products, query, pq.Array(ids))

	if err != nil {
		r.logger.Error("Failed to get products by IDs", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return products, nil
}

// GetAll retrieves products, optionally including inactive ones
func (r *ProductRepository) GetAll(ctx context.Context, includeInactive bool, limit, offset int) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`

	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}

	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	var products []*models.Product
	err := r.db.DB.SelectContext(ctx, &products, query, limit, offset)

	if err != nil {
		r.logger.Error("Failed to get products", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return products, nil
}

// Update updates an existing product and replaces its tag links
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, image = $4, category_id = $5,
		    stock = $6, is_active = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Image,
		product.CategoryID,
		product.Stock,
		product.IsActive,
		models.GetCurrentTime(),
		product.ID,
	)

	if err != nil {
		r.logger.Error("Failed to update product", "error", err, "productID", product.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_tags WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if err := insertProductTags(ctx, tx, product.ID, product.TagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// Deactivate soft-deletes a product so existing orders keep their snapshots
func (r *ProductRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE products SET is_active = FALSE, updated_at = $1 WHERE id = $2`

	result, err := r.db.DB.ExecContext(ctx, query, models.GetCurrentTime(), id)

	if err != nil {
		r.logger.Error("Failed to deactivate product", "error", err, "productID", id)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *ProductRepository) loadTags(ctx context.Context, product *models.Product) error {
	var tagIDs []string
	query := `SELECT tag_id FROM product_tags WHERE product_id = $1`

	if err := r.db.DB.SelectContext(ctx, &tagIDs, query, product.ID); err != nil {
		r.logger.Error("Failed to load product tags", "error", err, "productID", product.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	product.TagIDs = tagIDs
	return nil
}

func insertProductTags(ctx context.Context, tx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}, productID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			productID,
			tagID,
		)

		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabase, err)
		}
	}

	return nil
}
