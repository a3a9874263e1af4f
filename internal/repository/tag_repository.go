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

// TagRepository handles database operations for tags
type TagRepository struct {
	db     *database.Database
	logger logger.Logger
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *database.Database, logger logger.Logger) *TagRepository {
	return &TagRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new tag
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	query := `
		INSERT INTO tags (id, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.DB.ExecContext(
		ctx,
		query,
		tag.ID,
		tag.Name,
		tag.IsActive,
		tag.CreatedAt,
		tag.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create tag", "error", err, "tagID", tag.ID)
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return nil
}

// GetByID retrieves a tag by its ID
func (r *TagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	query := `SELECT id, name, is_active, created_at, updated_at FROM tags WHERE id = $1`

	var tag models.Tag
	err := r.db.DB.GetContext(ctx, &tag, query, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Failed to get tag by ID", "error", err, "tagID", id)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return &tag, nil
}

// GetAll retrieves tags, optionally including inactive ones
func (r *TagRepository) GetAll(ctx context.Context, includeInactive bool) ([]*models.Tag, error) {
	query := `SELECT id, name, is_active, created_at, updated_at FROM tags`

	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}

	query += ` ORDER BY name ASC`

	var tags []*models.Tag
	err := r.db.DB.SelectContext(ctx, &tags, query)

	if err != nil {
		r.logger.Error("Failed to get tags", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	return tags, nil
}

// Update updates an existing tag
func (r *TagRepository) Update(ctx context.Context, tag *models.Tag) error {
	query := `UPDATE tags SET name = $1, is_active = $2, updated_at = $3 WHERE id = $4`

	result, err := r.db.DB.ExecContext(
		ctx,
		query,
		tag.Name,
		tag.IsActive,
		models.GetCurrentTime(),
		tag.ID,
	)

	if err != nil {
		r.logger.Error("Failed to update tag", "error", err, "tagID", tag.ID)
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

// Deactivate soft-deletes a tag
func (r *TagRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE tags SET is_active = FALSE, updated_at = $1 WHERE id = $2`

	result, err := r.db.DB.ExecContext(ctx, query, models.GetCurrentTime(), id)

	if err != nil {
		r.logger.Error("Failed to deactivate tag", "error", err, "tagID", id)
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
