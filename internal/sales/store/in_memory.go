package store

import (
	"context"
	"sort"
	"sync"
	"time"

	salerrors "github.com/devstore/sales-service/internal/sales/errors"
	"github.com/google/uuid"
)

// inMemory implements SaleStore using in-memory maps. Used by tests.
type inMemory struct {
	mu    sync.RWMutex
	sales map[uuid.UUID]Sale
	seq   int
}

// NewInMemoryStore creates a new instance of SaleStore
func NewInMemoryStore() SaleStore {
	return &inMemory{
		sales: make(map[uuid.UUID]Sale),
	}
}

func (s *inMemory) Create(_ context.Context, params CreateSaleParams) (*Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	now := time.Now().UTC().Add(time.Duration(s.seq)) // keep creation order strict
	sale := Sale{
		ID:         uuid.New(),
		SaleNumber: params.SaleNumber,
		SaleDate:   params.SaleDate,
		Client:     params.Client,
		Branch:     params.Branch,
		TotalValue: params.TotalValue,
		CreatedAt:  now,
	}
	sale.Items = make([]SaleItem, 0, len(params.Items))
	for _, item := range params.Items {
		sale.Items = append(sale.Items, SaleItem{
			ID:          uuid.New(),
			SaleID:      sale.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			TotalValue:  item.TotalValue,
			CreatedAt:   now,
		})
	}
	s.sales[sale.ID] = sale

	copied := cloneSale(sale)
	return &copied, nil
}

func (s *inMemory) FindByID(_ context.Context, id uuid.UUID) (*Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok {
		return nil, salerrors.ErrSaleNotFound
	}
	copied := cloneSale(sale)
	return &copied, nil
}

func (s *inMemory) FindAll(_ context.Context, offset, limit int32) ([]Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		list = append(list, cloneSale(sale))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	if int(offset) >= len(list) {
		return []Sale{}, nil
	}
	end := int(offset + limit)
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (s *inMemory) FindLast(_ context.Context) (*Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var last *Sale
	for _, sale := range s.sales {
		if last == nil || sale.SaleDate.After(last.SaleDate) {
			copied := cloneSale(sale)
			last = &copied
		}
	}
	if last == nil {
		return nil, salerrors.ErrSaleNotFound
	}
	return last, nil
}

func (s *inMemory) UpdateSale(_ context.Context, params UpdateSaleParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.sales[params.ID]
	if !ok {
		return salerrors.ErrSaleNotFound
	}
	now := time.Now().UTC()
	sale.Cancelled = params.Cancelled
	sale.TotalValue = params.TotalValue
	sale.UpdatedAt = &now
	s.sales[params.ID] = sale
	return nil
}

func (s *inMemory) UpdateItem(_ context.Context, params UpdateItemParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for saleID, sale := range s.sales {
		for i := range sale.Items {
			if sale.Items[i].ID == params.ID {
				sale.Items[i].Quantity = params.Quantity
				sale.Items[i].Discount = params.Discount
				sale.Items[i].TotalValue = params.TotalValue
				s.sales[saleID] = sale
				return nil
			}
		}
	}
	return salerrors.ErrSaleItemNotFound
}

func (s *inMemory) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for saleID, sale := range s.sales {
		for i := range sale.Items {
			if sale.Items[i].ID == itemID {
				sale.Items = append(sale.Items[:i], sale.Items[i+1:]...)
				s.sales[saleID] = sale
				return nil
			}
		}
	}
	return salerrors.ErrSaleItemNotFound
}

func (s *inMemory) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sales[id]; !exists {
		return salerrors.ErrSaleNotFound
	}
	delete(s.sales, id)
	return nil
}

// cloneSale copies a sale and its item slice so callers cannot mutate store state.
func cloneSale(sale Sale) Sale {
	items := make([]SaleItem, len(sale.Items))
	copy(items, sale.Items)
	sale.Items = items
	return sale
}
