// Package store provides an interface for product storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product entity in the store.
type Product struct {
	ID          uuid.UUID
	Title       string
	Price       decimal.Decimal
	Description string
	Category    string
	Image       string
	Stock       int32
	RatingRate  float64
	RatingCount int32
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// CreateProductParams holds the fields required to create a product.
type CreateProductParams struct {
	Title       string
	Price       decimal.Decimal
	Description string
	Category    string
	Image       string
	Stock       int32
	RatingRate  float64
	RatingCount int32
}

// UpdateProductParams holds the fields required to update a product.
type UpdateProductParams struct {
	ID          uuid.UUID
	Title       string
	Price       decimal.Decimal
	Description string
	Category    string
	Image       string
	Stock       int32
	RatingRate  float64
	RatingCount int32
}

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll returns all available products with pagination support.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context, offset, limit int32) ([]Product, error)

	// Create adds a new product to the system.
	// Returns error if the product cannot be created.
	Create(ctx context.Context, params CreateProductParams) (*Product, error)

	// Update modifies an existing product's details.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, params UpdateProductParams) (*Product, error)

	// UpdateStock sets the stock quantity of a product to an absolute value.
	// Returns ErrProductNotFound if no product exists with the given ID,
	// ErrNegativeStock if the new quantity is below zero.
	UpdateStock(ctx context.Context, id uuid.UUID, stock int32) (*Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}
