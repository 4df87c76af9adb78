package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	caterrors "github.com/devstore/sales-service/internal/catalog/errors"
	"github.com/devstore/sales-service/internal/catalog/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// mockProductService is a mock implementation of the ProductService interface
type mockProductService struct {
	product  *service.ProductDto
	products []service.ProductDto
	error    error
}

func (m *mockProductService) FindByID(_ context.Context, _ uuid.UUID) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) FindAll(_ context.Context, _, _ int32) ([]service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.products, nil
}

func (m *mockProductService) Create(_ context.Context, _ service.ProductCreateDto) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) Update(_ context.Context, _ uuid.UUID, _ service.ProductUpdateDto) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) UpdateStock(_ context.Context, _ uuid.UUID, _ int32) (*service.ProductDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.product, nil
}

func (m *mockProductService) DeleteByID(_ context.Context, _ uuid.UUID) error {
	return m.error
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// toJSON is a helper function to convert a struct to JSON string
func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	bytes, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal to JSON: %v", err)
	}
	return string(bytes)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testProductDto(id string) *service.ProductDto {
	return &service.ProductDto{
		ID:        id,
		Title:     "Mechanical Keyboard",
		Price:     decimal.RequireFromString("79.90"),
		Stock:     12,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}
}

func Test_ProductAPI_FindByID(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name         string
		mockService  mockProductService
		productID    string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - product found",
			mockService:  mockProductService{product: testProductDto(mockID.String())},
			productID:    mockID.String(),
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, testProductDto(mockID.String())),
		},
		{
			name:         "Error - invalid id",
			mockService:  mockProductService{},
			productID:    "not-a-uuid",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid id: not-a-uuid"}),
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{error: caterrors.ErrProductNotFound},
			productID:    mockID.String(),
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: "Product with ID " + mockID.String() + " not found"}),
		},
		{
			name:         "Error - service error",
			mockService:  mockProductService{error: errors.New("boom")},
			productID:    mockID.String(),
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to retrieve product with ID " + mockID.String()}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+tc.productID, nil)
			req.SetPathValue("id", tc.productID)
			rr := httptest.NewRecorder()

			// when
			api.FindByID(rr, req)

			// then
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
		})
	}
}

func Test_ProductAPI_Create(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")

	testCases := []struct {
		name         string
		mockService  mockProductService
		body         string
		expectedCode int
	}{
		{
			name:         "Success - product created",
			mockService:  mockProductService{product: testProductDto(mockID.String())},
			body:         `{"title": "Mechanical Keyboard", "price": "79.90", "stock": 12}`,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - malformed body",
			mockService:  mockProductService{},
			body:         "{not-json",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - missing title",
			mockService:  mockProductService{},
			body:         `{"price": "79.90", "stock": 12}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - negative price",
			mockService:  mockProductService{},
			body:         `{"title": "Mechanical Keyboard", "price": "-1.00", "stock": 12}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - negative stock",
			mockService:  mockProductService{},
			body:         `{"title": "Mechanical Keyboard", "price": "79.90", "stock": -1}`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			api.Create(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_ProductAPI_UpdateStock(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")

	testCases := []struct {
		name         string
		mockService  mockProductService
		body         string
		expectedCode int
	}{
		{
			name:         "Success - stock updated",
			mockService:  mockProductService{product: testProductDto(mockID.String())},
			body:         `{"stock": 42}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - negative stock",
			mockService:  mockProductService{},
			body:         `{"stock": -5}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{error: caterrors.ErrProductNotFound},
			body:         `{"stock": 42}`,
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+mockID.String()+"/stock", strings.NewReader(tc.body))
			req.SetPathValue("id", mockID.String())
			rr := httptest.NewRecorder()

			// when
			api.UpdateStock(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_ProductAPI_DeleteByID(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")

	testCases := []struct {
		name         string
		mockService  mockProductService
		expectedCode int
	}{
		{
			name:         "Success - product deleted",
			mockService:  mockProductService{},
			expectedCode: http.StatusNoContent,
		},
		{
			name:         "Error - product not found",
			mockService:  mockProductService{error: caterrors.ErrProductNotFound},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+mockID.String(), nil)
			req.SetPathValue("id", mockID.String())
			rr := httptest.NewRecorder()

			// when
			api.DeleteByID(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}
