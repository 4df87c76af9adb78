package store

import (
	"context"
	"sync"
	"time"

	caterrors "github.com/devstore/sales-service/internal/catalog/errors"
	"github.com/google/uuid"
)

// inMemory implements ProductStore using an in-memory map. Used by tests.
type inMemory struct {
	mu       sync.RWMutex
	products map[uuid.UUID]Product
}

// NewInMemoryStore creates a new instance of ProductStore
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make(map[uuid.UUID]Product),
	}
}

func (s *inMemory) FindByID(_ context.Context, id uuid.UUID) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, caterrors.ErrProductNotFound
	}
	return &p, nil
}

func (s *inMemory) FindAll(_ context.Context, offset, limit int32) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, p)
	}
	if int(offset) >= len(list) {
		return []Product{}, nil
	}
	end := int(offset + limit)
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}

func (s *inMemory) Create(_ context.Context, params CreateProductParams) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product := Product{
		ID:          uuid.New(),
		Title:       params.Title,
		Price:       params.Price,
		Description: params.Description,
		Category:    params.Category,
		Image:       params.Image,
		Stock:       params.Stock,
		RatingRate:  params.RatingRate,
		RatingCount: params.RatingCount,
		CreatedAt:   time.Now().UTC(),
	}
	s.products[product.ID] = product

	return &product, nil
}

func (s *inMemory) Update(_ context.Context, params UpdateProductParams) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[params.ID]
	if !ok {
		return nil, caterrors.ErrProductNotFound
	}
	now := time.Now().UTC()
	product.Title = params.Title
	product.Price = params.Price
	product.Description = params.Description
	product.Category = params.Category
	product.Image = params.Image
	product.Stock = params.Stock
	product.RatingRate = params.RatingRate
	product.RatingCount = params.RatingCount
	product.UpdatedAt = &now
	s.products[params.ID] = product

	return &product, nil
}

func (s *inMemory) UpdateStock(_ context.Context, id uuid.UUID, stock int32) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stock < 0 {
		return nil, caterrors.ErrNegativeStock
	}
	product, ok := s.products[id]
	if !ok {
		return nil, caterrors.ErrProductNotFound
	}
	now := time.Now().UTC()
	product.Stock = stock
	product.UpdatedAt = &now
	s.products[id] = product

	return &product, nil
}

func (s *inMemory) DeleteByID(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return caterrors.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}
