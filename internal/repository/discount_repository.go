package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/RbroH99/les-sha-accesories/internal/database"
	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

// DiscountRepository handles database operations for discounts
type DiscountRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewDiscountRepository creates a new DiscountRepository
func NewDiscountRepository(db *database.Database, logger logger.Logger) *DiscountRepository {
	return &DiscountRepository{
		db:     db,
		logger: logger,
	}
}

const discountColumns = `id, name, type, value, is_generic, is_active, starts_at, ends_at, created_at, updated_at`

// Create inserts a new discount and its product links
func (r *DiscountRepository) Create(ctx context.Context, discount *models.Discount) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO discounts (id, name, type, value, is_generic, is_active, starts_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		discount.ID,
		discount.Name,
		discount.Type,
		discount.Value,
		discount.IsGeneric,
		discount.IsActive,
		discount.StartsAt,
		discount.EndsAt,
		discount.CreatedAt,
		discount.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create discount", "error", err, "discountID", discount.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if err := r.insertProductLinks(ctx, tx, discount); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByID retrieves a discount by its ID, product links included
func (r *DiscountRepository) GetByID(ctx context.Context, id string) (*models.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts WHERE id = $1`

	var discount models.Discount
	err := r.db.DB.GetContext(ctx, &discount, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get discount by ID", "error", err, "discountID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	var productIDs []string
	linkQuery := `SELECT product_id FROM discount_products WHERE discount_id = $1`

	if err := r.db.DB.SelectContext(ctx, &productIDs, linkQuery, id); err != nil {
		r.logger.Error("Failed to load discount products", "error", err, "discountID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	discount.ProductIDs = productIDs
	return &discount, nil
}

// GetAll retrieves all discounts
func (r *DiscountRepository) GetAll(ctx context.Context) ([]*models.Discount, error) {
	query := `SELECT ` + discountColumns + ` FROM discounts ORDER BY created_at DESC`

	var discounts []*models.Discount
	err := r.db.DB.SelectContext(ctx, &discounts, query)

	if err != nil {
		r.logger.Error("Failed to get discounts", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return discounts, nil
}

// Update updates an existing discount and replaces its product links
func (r *DiscountRepository) Update(ctx context.Context, discount *models.Discount) error {
	tx, err := r.db.DB.BeginTxx(ctx, nil)

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE discounts
		SET name = $1, type = $2, value = $3, is_generic = $4, is_active = $5,
		    starts_at = $6, ends_at = $7, updated_at = $8
		WHERE id = $9
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		discount.Name,
		discount.Type,
		discount.Value,
		discount.IsGeneric,
		discount.IsActive,
		discount.StartsAt,
		discount.EndsAt,
		models.GetCurrentTime(),
		discount.ID,
	)

	if err != nil {
		r.logger.Error("Failed to update discount", "error", err, "discountID", discount.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM discount_products WHERE discount_id = $1`, discount.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	if err := r.insertProductLinks(ctx, tx, discount); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// Delete removes a discount; links cascade. Existing order snapshots are
// unaffected by design.
func (r *DiscountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM discounts WHERE id = $1`, id)

	if err != nil {
		r.logger.Error("Failed to delete discount", "error", err, "discountID", id)
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

// ActiveForProducts returns the discount applicable to each of the given
// product IDs at the given instant. Scoped discounts take precedence over
// generic ones; within each group the oldest discount wins, which keeps
// the first-found resolution deterministic.
func (r *DiscountRepository) ActiveForProducts(ctx context.Context, productIDs []string, at time.Time) (map[string]*models.Discount, error) {
	result := make(map[string]*models.Discount)

	if len(productIDs) == 0 {
		return result, nil
	}

	scopedQuery := `
		SELECT dp.product_id AS product_id,
		       d.id, d.name, d.type, d.value, d.is_generic, d.is_active,
		       d.starts_at, d.ends_at, d.created_at, d.updated_at
		FROM discounts d
		JOIN discount_products dp ON dp.discount_id = d.id
		WHERE d.is_active = TRUE
		  AND (d.starts_at IS NULL OR d.starts_at <= $2)
		  AND (d.ends_at IS NULL OR d.ends_at >= $2)
		  AND dp.product_id = ANY($1)
		ORDER BY d.created_at ASC
	`

	type scopedRow struct {
		ProductID string `db:"product_id"`
		models.Discount
	}

	var scoped []scopedRow

	if err := r.db.DB.SelectContext(ctx, &scoped, scopedQuery, pq.Array(productIDs), at); err != nil {
		r.logger.Error("Failed to get scoped discounts", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	for i := range scoped {
		row := scoped[i]
		if _, taken := result[row.ProductID]; !taken {
			d := row.Discount
			result[row.ProductID] = &d
		}
	}

	genericQuery := `
		SELECT ` + discountColumns + `
		FROM discounts
		WHERE is_active = TRUE
		  AND is_generic = TRUE
		  AND (starts_at IS NULL OR starts_at <= $1)
		  AND (ends_at IS NULL OR ends_at >= $1)
		ORDER BY created_at ASC
		LIMIT 1
	`

	var generic models.Discount
	err := r.db.DB.GetContext(ctx, &generic, genericQuery, at)

	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.logger.Error("Failed to get generic discount", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
		}
		return result, nil
	}

	for _, productID := range productIDs {
		if _, taken := result[productID]; !taken {
			result[productID] = &generic
		}
	}

	return result, nil
}

func (r *DiscountRepository) insertProductLinks(ctx context.Context, tx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}, discount *models.Discount) error {
	if discount.IsGeneric {
		return nil
	}

	for _, productID := range discount.ProductIDs {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO discount_products (discount_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			discount.ID,
			productID,
		)

		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabase, err)
		}
	}

	return nil
}
