// Package store provides an interface for sale storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale represents a sale aggregate in the store, including its line items.
type Sale struct {
	ID         uuid.UUID
	SaleNumber string
	SaleDate   time.Time
	Client     string
	Branch     string
	Cancelled  bool
	TotalValue decimal.Decimal
	Items      []SaleItem
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// SaleItem represents one product line within a sale. ProductName and UnitPrice
// are snapshots taken at sale time; the product itself is referenced by ID only.
type SaleItem struct {
	ID          uuid.UUID
	SaleID      uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TotalValue  decimal.Decimal
	CreatedAt   time.Time
}

// CreateSaleParams holds the fields required to persist a new sale with its items.
type CreateSaleParams struct {
	SaleNumber string
	SaleDate   time.Time
	Client     string
	Branch     string
	TotalValue decimal.Decimal
	Items      []CreateSaleItemParams
}

// CreateSaleItemParams holds the fields required to persist one sale item.
type CreateSaleItemParams struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	TotalValue  decimal.Decimal
}

// UpdateSaleParams holds the mutable fields of a sale row.
type UpdateSaleParams struct {
	ID         uuid.UUID
	Cancelled  bool
	TotalValue decimal.Decimal
}

// UpdateItemParams holds the mutable fields of a sale item row.
type UpdateItemParams struct {
	ID         uuid.UUID
	Quantity   int32
	Discount   decimal.Decimal
	TotalValue decimal.Decimal
}

// SaleStore is an interface for sale storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type SaleStore interface {
	// Create persists a sale and its items atomically.
	// Returns error if the sale cannot be created.
	Create(ctx context.Context, params CreateSaleParams) (*Sale, error)

	// FindByID retrieves a single sale, items included, by its unique identifier.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindAll returns all sales, items included, with pagination support.
	// Returns an empty slice if no sales exist.
	FindAll(ctx context.Context, offset, limit int32) ([]Sale, error)

	// FindLast retrieves the most recent sale by sale date.
	// Returns ErrSaleNotFound if no sales exist.
	FindLast(ctx context.Context) (*Sale, error)

	// UpdateSale modifies the cancellation flag and total value of a sale row.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	UpdateSale(ctx context.Context, params UpdateSaleParams) error

	// UpdateItem modifies the quantity and pricing of a sale item row.
	// Returns ErrSaleItemNotFound if no item exists with the given ID.
	UpdateItem(ctx context.Context, params UpdateItemParams) error

	// DeleteItem removes a single sale item by its ID.
	// Returns ErrSaleItemNotFound if no item exists with the given ID.
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// DeleteByID removes a sale and, by cascade, all of its items.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}
