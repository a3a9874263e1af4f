package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RbroH99/les-sha-accesories/internal/database"
	"github.com/RbroH99/les-sha-accesories/internal/models"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

// CategoryRepository handles database operations for categories
type CategoryRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *database.Database, logger logger.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.DB.ExecContext(
		ctx,
		query,
		category.ID,
		category.Name,
		category.Description,
		category.IsActive,
		category.CreatedAt,
		category.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create category", "error", err, "categoryID", category.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByID retrieves a category by its ID
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	var category models.Category
	err := r.db.DB.GetContext(ctx, &category, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get category by ID", "error", err, "categoryID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &category, nil
}

// GetAll retrieves categories, optionally including inactive ones
func (r *CategoryRepository) GetAll(ctx context.Context, includeInactive bool) ([]*models.Category, error) {
	query := `
		SELECT id, name, description, is_active, created_at, updated_at
		FROM categories
	`

	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}

	query += ` ORDER BY name ASC`

	var categories []*models.Category
	err := r.db.DB.SelectContext(ctx, &categories, query)

	if err != nil {
		r.logger.Error("Failed to get categories", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return categories, nil
}

// Update updates an existing category
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = $2, is_active = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.DB.ExecContext(
		ctx,
		query,
		category.Name,
		category.Description,
		category.IsActive,
		models.GetCurrentTime(),
		category.ID,
	)

	if err != nil {
		r.logger.Error("Failed to update category", "error", err, "categoryID", category.ID)
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

// Deactivate soft-deletes a category
func (r *CategoryRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE categories SET is_active = FALSE, updated_at = $1 WHERE id = $2`

	result, err := r.db.DB.ExecContext(ctx, query, models.GetCurrentTime(), id)

	if err != nil {
		r.logger.Error("Failed to deactivate category", "error", err, "categoryID", id)
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
