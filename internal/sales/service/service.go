// Package service provides the implementation of sale-related business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	caterrors "github.com/devstore/sales-service/internal/catalog/errors"
	catalogstore "github.com/devstore/sales-service/internal/catalog/store"
	salerrors "github.com/devstore/sales-service/internal/sales/errors"
	"github.com/devstore/sales-service/internal/sales/pricing"
	"github.com/devstore/sales-service/internal/sales/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleService defines the methods for managing the sale lifecycle.
// It abstracts the underlying business logic and data access.
type SaleService interface {
	// Create registers a new sale, decrements product stock and assigns the
	// next sequential sale number.
	// Returns ErrEmptySale, ErrInsufficientStock or ErrProductNotFound on
	// business-rule violations.
	Create(ctx context.Context, sale SaleCreateDto) (*SaleDto, error)

	// FindByID retrieves a single sale by its unique identifier.
	// Returns ErrSaleNotFound if no sale exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*SaleDto, error)

	// FindAll returns all sales with pagination support.
	// Returns an empty slice if no sales exist.
	FindAll(ctx context.Context, offset, limit int32) ([]SaleDto, error)

	// UpdateItemQuantity changes the quantity of one line item, reconciling
	// product stock and recomputing pricing. Quantity zero removes the item.
	// Returns ErrSaleNotFound, ErrSaleCancelled, ErrSaleItemNotFound,
	// ErrInvalidQuantity or ErrInsufficientStock on business-rule violations.
	UpdateItemQuantity(ctx context.Context, saleID, itemID uuid.UUID, quantity int32) (*SaleDto, error)

	// Cancel flags a sale as cancelled and restores every item's quantity to
	// its product's stock. The sale and its items are kept.
	// Returns ErrSaleNotFound or ErrSaleCancelled.
	Cancel(ctx context.Context, id uuid.UUID) (*SaleDto, error)

	// DeleteItem removes one line item, restores its quantity to product stock
	// and recomputes the sale total.
	DeleteItem(ctx context.Context, saleID, itemID uuid.UUID) (*SaleDto, error)

	// DeleteByID removes a sale and all of its items. Unlike Cancel, no stock
	// restoration is performed.
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Service implements SaleService and provides methods to manage sales.
type Service struct {
	saleStore    store.SaleStore
	productStore catalogstore.ProductStore
}

// NewService creates a new instance of SaleService with the provided stores.
func NewService(saleStore store.SaleStore, productStore catalogstore.ProductStore) *Service {
	return &Service{
		saleStore:    saleStore,
		productStore: productStore,
	}
}

// SaleCreateDto represents the data transfer object for creating a new sale.
// Unit price and discount are never supplied by the caller; they are derived
// from the current product price.
type SaleCreateDto struct {
	Client   string              `json:"client"    validate:"required,max=100"`
	Branch   string              `json:"branch"    validate:"required,max=100"`
	SaleDate time.Time           `json:"sale_date"`
	Items    []SaleItemCreateDto `json:"items"     validate:"required,gt=0,dive"`
}

// SaleItemCreateDto represents one requested product line.
type SaleItemCreateDto struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int32     `json:"quantity"   validate:"required,min=1,max=20"`
}

// SaleDto represents the data transfer object for a sale.
type SaleDto struct {
	ID         uuid.UUID       `json:"id"`
	SaleNumber string          `json:"sale_number"`
	SaleDate   string          `json:"sale_date"`
	Client     string          `json:"client"`
	Branch     string          `json:"branch"`
	Cancelled  bool            `json:"cancelled"`
	TotalValue decimal.Decimal `json:"total_value"`
	Items      []SaleItemDto   `json:"items"`
	CreatedAt  string          `json:"created_at"`
	UpdatedAt  string          `json:"updated_at,omitempty"`
}

// SaleItemDto represents the data transfer object for a sale item.
type SaleItemDto struct {
	ID          uuid.UUID       `json:"id"`
	SaleID      uuid.UUID       `json:"sale_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// ItemQuantityUpdateDto represents the data transfer object for adjusting a
// line item's quantity. Zero removes the item.
type ItemQuantityUpdateDto struct {
	Quantity int32 `json:"quantity" validate:"min=0,max=20"`
}

// Create registers a new sale. Products are validated and reserved in two
// passes so a failing line leaves no stock mutated.
func (s *Service) Create(ctx context.Context, sale SaleCreateDto) (*SaleDto, error) {
	if len(sale.Items) == 0 {
		return nil, salerrors.ErrEmptySale
	}

	// First pass: validate every line before touching stock. A product may
	// appear on several lines, so demand is aggregated per product and the
	// availability check runs against the summed quantity.
	products := make(map[uuid.UUID]*catalogstore.Product, len(sale.Items))
	demand := make(map[uuid.UUID]int32, len(sale.Items))
	for _, item := range sale.Items {
		if item.Quantity < 1 || item.Quantity > 20 {
			return nil, fmt.Errorf("%w: got %d", salerrors.ErrInvalidQuantity, item.Quantity)
		}
		product, ok := products[item.ProductID]
		if !ok {
			var err error
			product, err = s.productStore.FindByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, caterrors.ErrProductNotFound) {
					return nil, fmt.Errorf("product %s: %w", item.ProductID, caterrors.ErrProductNotFound)
				}
				return nil, fmt.Errorf("failed to fetch product %s: %w", item.ProductID, err)
			}
			products[item.ProductID] = product
		}
		demand[item.ProductID] += item.Quantity
		if product.Stock < demand[item.ProductID] {
			return nil, fmt.Errorf("product %q. Available: %d, Requested: %d: %w",
				product.Title, product.Stock, demand[item.ProductID], salerrors.ErrInsufficientStock)
		}
	}

	// Second pass: reserve stock once per product.
	for productID, quantity := range demand {
		if _, err := s.productStore.UpdateStock(ctx, productID, products[productID].Stock-quantity); err != nil {
			return nil, fmt.Errorf("failed to reserve stock for product %s: %w", productID, err)
		}
	}

	// Derive per-line pricing snapshots; tiers apply to each line's quantity.
	totalValue := decimal.Zero
	itemParams := make([]store.CreateSaleItemParams, 0, len(sale.Items))
	for _, item := range sale.Items {
		product := products[item.ProductID]
		discount, total := pricing.Quote(product.Price, item.Quantity)
		itemParams = append(itemParams, store.CreateSaleItemParams{
			ProductID:   product.ID,
			ProductName: product.Title,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			Discount:    discount,
			TotalValue:  total,
		})
		totalValue = totalValue.Add(total)
	}

	saleNumber, err := s.nextSaleNumber(ctx)
	if err != nil {
		return nil, err
	}

	saleDate := sale.SaleDate
	if saleDate.IsZero() {
		saleDate = time.Now().UTC()
	}

	created, err := s.saleStore.Create(ctx, store.CreateSaleParams{
		SaleNumber: saleNumber,
		SaleDate:   saleDate,
		Client:     sale.Client,
		Branch:     sale.Branch,
		TotalValue: totalValue,
		Items:      itemParams,
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Sale created", "sale_number", created.SaleNumber, "total", created.TotalValue)
	return toDto(created), nil
}

// FindByID retrieves a sale by its ID and returns it as a SaleDto.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*SaleDto, error) {
	sale, err := s.saleStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(sale), nil
}

// FindAll retrieves a list of all sales and returns them as SaleDtos.
func (s *Service) FindAll(ctx context.Context, offset, limit int32) ([]SaleDto, error) {
	sales, err := s.saleStore.FindAll(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	saleDtos := make([]SaleDto, len(sales))
	for i := range sales {
		saleDtos[i] = *toDto(&sales[i])
	}
	return saleDtos, nil
}

// UpdateItemQuantity changes the quantity of one line item. Stock is
// reconciled symmetrically: decreases restore the delta, increases consume it
// after an availability check.
func (s *Service) UpdateItemQuantity(ctx context.Context, saleID, itemID uuid.UUID, quantity int32) (*SaleDto, error) {
	sale, item, err := s.mutableSaleItem(ctx, saleID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity == 0 {
		return s.removeItem(ctx, sale, item)
	}
	if quantity < 0 || quantity > 20 {
		return nil, fmt.Errorf("%w: got %d", salerrors.ErrInvalidQuantity, quantity)
	}

	delta := item.Quantity - quantity
	if delta != 0 {
		product, err := s.productStore.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, caterrors.ErrProductNotFound) {
				// An increase needs stock from a product that no longer exists.
				if delta < 0 {
					return nil, fmt.Errorf("product %s: %w", item.ProductID, salerrors.ErrProductMissing)
				}
				slog.WarnContext(ctx, "Product missing, skipping stock restore", "product_id", item.ProductID)
			} else {
				return nil, fmt.Errorf("failed to fetch product %s: %w", item.ProductID, err)
			}
		} else {
			if delta < 0 && product.Stock < -delta {
				return nil, fmt.Errorf("product %q. Available: %d, Requested: %d: %w",
					product.Title, product.Stock, -delta, salerrors.ErrInsufficientStock)
			}
			if _, err := s.productStore.UpdateStock(ctx, product.ID, product.Stock+delta); err != nil {
				return nil, fmt.Errorf("failed to adjust stock for product %s: %w", product.ID, err)
			}
		}
	}

	discount, total := pricing.Quote(item.UnitPrice, quantity)
	if err := s.saleStore.UpdateItem(ctx, store.UpdateItemParams{
		ID:         item.ID,
		Quantity:   quantity,
		Discount:   discount,
		TotalValue: total,
	}); err != nil {
		return nil, err
	}

	// Recompute the sale total over the updated item set.
	newTotal := decimal.Zero
	for i := range sale.Items {
		if sale.Items[i].ID == item.ID {
			newTotal = newTotal.Add(total)
			continue
		}
		newTotal = newTotal.Add(sale.Items[i].TotalValue)
	}
	if err := s.saleStore.UpdateSale(ctx, store.UpdateSaleParams{
		ID:         sale.ID,
		Cancelled:  sale.Cancelled,
		TotalValue: newTotal,
	}); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Sale item quantity updated", "sale_id", sale.ID, "item_id", item.ID, "quantity", quantity)
	return s.FindByID(ctx, sale.ID)
}

// Cancel flags a sale as cancelled and restores every item's stock.
// A missing product is treated as a fatal inconsistency for the operation.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*SaleDto, error) {
	sale, err := s.saleStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale.Cancelled {
		return nil, salerrors.ErrSaleCancelled
	}

	for i := range sale.Items {
		item := &sale.Items[i]
		product, err := s.productStore.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, caterrors.ErrProductNotFound) {
				return nil, fmt.Errorf("product %s: %w", item.ProductID, salerrors.ErrProductMissing)
			}
			return nil, fmt.Errorf("failed to fetch product %s: %w", item.ProductID, err)
		}
		if _, err := s.productStore.UpdateStock(ctx, product.ID, product.Stock+item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to restore stock for product %s: %w", product.ID, err)
		}
	}

	if err := s.saleStore.UpdateSale(ctx, store.UpdateSaleParams{
		ID:         sale.ID,
		Cancelled:  true,
		TotalValue: sale.TotalValue,
	}); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Sale cancelled", "sale_id", sale.ID, "sale_number", sale.SaleNumber)
	return s.FindByID(ctx, sale.ID)
}

// DeleteItem removes one line item from a sale, restoring its stock.
func (s *Service) DeleteItem(ctx context.Context, saleID, itemID uuid.UUID) (*SaleDto, error) {
	sale, item, err := s.mutableSaleItem(ctx, saleID, itemID)
	if err != nil {
		return nil, err
	}
	return s.removeItem(ctx, sale, item)
}

// DeleteByID removes a sale and its items. No stock restoration: deletion is
// an administrative purge, distinct from cancellation.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := s.saleStore.DeleteByID(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Sale deleted", "sale_id", id)
	return nil
}

// mutableSaleItem loads a sale and one of its items, rejecting cancelled sales.
func (s *Service) mutableSaleItem(ctx context.Context, saleID, itemID uuid.UUID) (*store.Sale, *store.SaleItem, error) {
	sale, err := s.saleStore.FindByID(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}
	if sale.Cancelled {
		return nil, nil, salerrors.ErrSaleCancelled
	}
	for i := range sale.Items {
		if sale.Items[i].ID == itemID {
			return sale, &sale.Items[i], nil
		}
	}
	return nil, nil, salerrors.ErrSaleItemNotFound
}

// removeItem deletes an item, restores its stock and recomputes the sale total.
func (s *Service) removeItem(ctx context.Context, sale *store.Sale, item *store.SaleItem) (*SaleDto, error) {
	product, err := s.productStore.FindByID(ctx, item.ProductID)
	switch {
	case err == nil:
		if _, err := s.productStore.UpdateStock(ctx, product.ID, product.Stock+item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to restore stock for product %s: %w", product.ID, err)
		}
	case errors.Is(err, caterrors.ErrProductNotFound):
		slog.WarnContext(ctx, "Product missing, skipping stock restore", "product_id", item.ProductID)
	default:
		return nil, fmt.Errorf("failed to fetch product %s: %w", item.ProductID, err)
	}

	if err := s.saleStore.DeleteItem(ctx, item.ID); err != nil {
		return nil, err
	}

	newTotal := decimal.Zero
	for i := range sale.Items {
		if sale.Items[i].ID == item.ID {
			continue
		}
		newTotal = newTotal.Add(sale.Items[i].TotalValue)
	}
	if err := s.saleStore.UpdateSale(ctx, store.UpdateSaleParams{
		ID:         sale.ID,
		Cancelled:  sale.Cancelled,
		TotalValue: newTotal,
	}); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Sale item removed", "sale_id", sale.ID, "item_id", item.ID)
	return s.FindByID(ctx, sale.ID)
}

// nextSaleNumber derives the next sequential sale number from the last
// persisted sale, starting at "0001" on an empty store. The read-then-write
// sequence is not safe under concurrent creation; uniqueness relies on the
// persistence layer.
func (s *Service) nextSaleNumber(ctx context.Context) (string, error) {
	last := 0
	lastSale, err := s.saleStore.FindLast(ctx)
	if err != nil && !errors.Is(err, salerrors.ErrSaleNotFound) {
		return "", err
	}
	if lastSale != nil {
		parsed, err := strconv.Atoi(lastSale.SaleNumber)
		if err != nil {
			return "", fmt.Errorf("malformed sale number %q: %w", lastSale.SaleNumber, err)
		}
		last = parsed
	}
	return fmt.Sprintf("%04d", last+1), nil
}

// toDto converts a store.Sale to a SaleDto.
func toDto(sale *store.Sale) *SaleDto {
	if sale == nil {
		return nil
	}

	itemsDto := make([]SaleItemDto, 0, len(sale.Items))
	for _, item := range sale.Items {
		itemsDto = append(itemsDto, SaleItemDto{
			ID:          item.ID,
			SaleID:      item.SaleID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			TotalValue:  item.TotalValue,
		})
	}

	dto := &SaleDto{
		ID:         sale.ID,
		SaleNumber: sale.SaleNumber,
		SaleDate:   sale.SaleDate.Format(time.RFC3339),
		Client:     sale.Client,
		Branch:     sale.Branch,
		Cancelled:  sale.Cancelled,
		TotalValue: sale.TotalValue,
		Items:      itemsDto,
		CreatedAt:  sale.CreatedAt.Format(time.RFC3339),
	}
	if sale.UpdatedAt != nil {
		dto.UpdatedAt = sale.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}
