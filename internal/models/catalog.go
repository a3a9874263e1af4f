package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Deactivating a product (soft delete) hides
// it from the storefront but keeps existing order snapshots intact.
type Product struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Image       string          `db:"image" json:"image"`
	CategoryID  *string         `db:"category_id" json:"category_id,omitempty"`
	Stock       int             `db:"stock" json:"stock"`
	IsActive    bool            `db:"is_active" json:"is_active"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`

	TagIDs []string `db:"-" json:"tag_ids,omitempty"`
}

// NewProduct creates a product with a fresh ID and timestamps
func NewProduct(name, description string, price decimal.Decimal, image string) *Product {
	now := GetCurrentTime()

	return &Product{
		ID:          GenerateID("prd"),
		Name:        name,
		Description: description,
		Price:       price,
		Image:       image,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Category groups products for storefront browsing
type Category struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// NewCategory creates a category with a fresh ID and timestamps
func NewCategory(name, description string) *Category {
	now := GetCurrentTime()

	return &Category{
		ID:          GenerateID("cat"),
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Tag is a free-form label attached to products
type Tag struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewTag creates a tag with a fresh ID and timestamps
func NewTag(name string) *Tag {
	now := GetCurrentTime()

	return &Tag{
		ID:        GenerateID("tag"),
		Name:      name,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DiscountType distinguishes percentage from fixed-amount discounts
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Valid reports whether the discount type is known.
func (t DiscountType) Valid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixed
}

// Discount reduces product prices, either for the whole catalog
// (IsGeneric) or for an explicit set of product IDs, optionally within a
// validity window.
type Discount struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Type      DiscountType    `db:"type" json:"type"`
	Value     decimal.Decimal `db:"value" json:"value"`
	IsGeneric bool            `db:"is_generic" json:"is_generic"`
	IsActive  bool            `db:"is_active" json:"is_active"`
	StartsAt  *time.Time      `db:"starts_at" json:"starts_at,omitempty"`
	EndsAt    *time.Time      `db:"ends_at" json:"ends_at,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`

	ProductIDs []string `db:"-" json:"product_ids,omitempty"`
}

// NewDiscount creates a discount with a fresh ID and timestamps
func NewDiscount(name string, discountType DiscountType, value decimal.Decimal, isGeneric bool) *Discount {
	now := GetCurrentTime()

	return &Discount{
		ID:        GenerateID("dsc"),
		Name:      name,
		Type:      discountType,
		Value:     value,
		IsGeneric: isGeneric,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ActiveAt reports whether the discount applies at the given instant.
func (d *Discount) ActiveAt(t time.Time) bool {
	if !d.IsActive {
		return false
	}

	if d.StartsAt != nil && t.Before(*d.StartsAt) {
		return false
	}

	if d.EndsAt != nil && t.After(*d.EndsAt) {
		return false
	}

	return true
}
