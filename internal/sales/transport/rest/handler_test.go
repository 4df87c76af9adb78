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

	salerrors "github.com/devstore/sales-service/internal/sales/errors"
	"github.com/devstore/sales-service/internal/sales/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// mockSaleService is a mock implementation of the SaleService interface
type mockSaleService struct {
	sale  *service.SaleDto
	sales []service.SaleDto
	error error
}

func (m *mockSaleService) Create(_ context.Context, _ service.SaleCreateDto) (*service.SaleDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sale, nil
}

func (m *mockSaleService) FindByID(_ context.Context, _ uuid.UUID) (*service.SaleDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sale, nil
}

func (m *mockSaleService) FindAll(_ context.Context, _, _ int32) ([]service.SaleDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sales, nil
}

func (m *mockSaleService) UpdateItemQuantity(_ context.Context, _, _ uuid.UUID, _ int32) (*service.SaleDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sale, nil
}

func (m *mockSaleService) Cancel(_ context.Context, _ uuid.UUID) (*service.SaleDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sale, nil
}

func (m *mockSaleService) DeleteItem(_ context.Context, _, _ uuid.UUID) (*service.SaleDto, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.sale, nil
}

func (m *mockSaleService) DeleteByID(_ context.Context, _ uuid.UUID) error {
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

func testSaleDto(id uuid.UUID) *service.SaleDto {
	return &service.SaleDto{
		ID:         id,
		SaleNumber: "0001",
		SaleDate:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
		Client:     "Acme Corp",
		Branch:     "Downtown",
		TotalValue: decimal.RequireFromString("45.00"),
		Items: []service.SaleItemDto{{
			ID:          id,
			SaleID:      id,
			ProductID:   id,
			ProductName: "Mechanical Keyboard",
			Quantity:    5,
			UnitPrice:   decimal.RequireFromString("10.00"),
			Discount:    decimal.RequireFromString("5.00"),
			TotalValue:  decimal.RequireFromString("45.00"),
		}},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}
}

func Test_SaleAPI_FindByID(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	testCases := []struct {
		name         string
		mockService  mockSaleService
		saleID       string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - sale found",
			mockService:  mockSaleService{sale: testSaleDto(mockID)},
			saleID:       mockID.String(),
			expectedCode: http.StatusOK,
			expectedBody: toJSON(t, testSaleDto(mockID)),
		},
		{
			name:         "Error - invalid id",
			mockService:  mockSaleService{},
			saleID:       "123-invalid-id",
			expectedCode: http.StatusBadRequest,
			expectedBody: toJSON(t, ErrorResponse{Error: "Invalid id: 123-invalid-id"}),
		},
		{
			name:         "Error - sale not found",
			mockService:  mockSaleService{error: salerrors.ErrSaleNotFound},
			saleID:       mockID.String(),
			expectedCode: http.StatusNotFound,
			expectedBody: toJSON(t, ErrorResponse{Error: "Sale with ID " + mockID.String() + " not found"}),
		},
		{
			name:         "Error - service error",
			mockService:  mockSaleService{error: errors.New("service unavailable")},
			saleID:       mockID.String(),
			expectedCode: http.StatusInternalServerError,
			expectedBody: toJSON(t, ErrorResponse{Error: "Failed to retrieve sale with ID " + mockID.String()}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/"+tc.saleID, nil)
			req.SetPathValue("id", tc.saleID)
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

func Test_SaleAPI_FindAll(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")

	testCases := []struct {
		name         string
		mockService  mockSaleService
		query        string
		expectedCode int
	}{
		{
			name:         "Success - sales found",
			mockService:  mockSaleService{sales: []service.SaleDto{*testSaleDto(mockID)}},
			query:        "?limit=10&offset=0",
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - missing limit",
			mockService:  mockSaleService{},
			query:        "?offset=0",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - zero limit",
			mockService:  mockSaleService{},
			query:        "?limit=0&offset=0",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - negative offset",
			mockService:  mockSaleService{},
			query:        "?limit=10&offset=-1",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - offset not a number",
			mockService:  mockSaleService{},
			query:        "?limit=10&offset=abc",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - service error",
			mockService:  mockSaleService{error: errors.New("boom")},
			query:        "?limit=10&offset=0",
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sales"+tc.query, nil)
			rr := httptest.NewRecorder()

			// when
			api.FindAll(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_SaleAPI_Create(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	validBody := toJSON(t, service.SaleCreateDto{
		Client: "Acme Corp",
		Branch: "Downtown",
		Items:  []service.SaleItemCreateDto{{ProductID: mockID, Quantity: 5}},
	})

	testCases := []struct {
		name         string
		mockService  mockSaleService
		body         string
		expectedCode int
	}{
		{
			name:         "Success - sale created",
			mockService:  mockSaleService{sale: testSaleDto(mockID)},
			body:         validBody,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Error - malformed body",
			mockService:  mockSaleService{},
			body:         "{not-json",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - missing client",
			mockService:  mockSaleService{},
			body:         toJSON(t, service.SaleCreateDto{Branch: "Downtown", Items: []service.SaleItemCreateDto{{ProductID: mockID, Quantity: 5}}}),
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - no items",
			mockService:  mockSaleService{},
			body:         toJSON(t, service.SaleCreateDto{Client: "Acme Corp", Branch: "Downtown"}),
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - quantity above twenty",
			mockService:  mockSaleService{},
			body:         toJSON(t, service.SaleCreateDto{Client: "Acme Corp", Branch: "Downtown", Items: []service.SaleItemCreateDto{{ProductID: mockID, Quantity: 21}}}),
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - insufficient stock",
			mockService:  mockSaleService{error: salerrors.ErrInsufficientStock},
			body:         validBody,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - service error",
			mockService:  mockSaleService{error: errors.New("boom")},
			body:         validBody,
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()

			// when
			api.Create(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_SaleAPI_UpdateItemQuantity(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")
	mockItemID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174001")

	testCases := []struct {
		name         string
		mockService  mockSaleService
		body         string
		expectedCode int
	}{
		{
			name:         "Success - quantity updated",
			mockService:  mockSaleService{sale: testSaleDto(mockID)},
			body:         `{"quantity": 5}`,
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - quantity above twenty",
			mockService:  mockSaleService{},
			body:         `{"quantity": 21}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Error - sale cancelled",
			mockService:  mockSaleService{error: salerrors.ErrSaleCancelled},
			body:         `{"quantity": 5}`,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - item not found",
			mockService:  mockSaleService{error: salerrors.ErrSaleItemNotFound},
			body:         `{"quantity": 5}`,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Error - insufficient stock",
			mockService:  mockSaleService{error: salerrors.ErrInsufficientStock},
			body:         `{"quantity": 5}`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPut,
				"/api/v1/sales/"+mockID.String()+"/items/"+mockItemID.String(), strings.NewReader(tc.body))
			req.SetPathValue("id", mockID.String())
			req.SetPathValue("itemId", mockItemID.String())
			rr := httptest.NewRecorder()

			// when
			api.UpdateItemQuantity(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_SaleAPI_Cancel(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")

	testCases := []struct {
		name         string
		mockService  mockSaleService
		expectedCode int
	}{
		{
			name:         "Success - sale cancelled",
			mockService:  mockSaleService{sale: testSaleDto(mockID)},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Error - already cancelled",
			mockService:  mockSaleService{error: salerrors.ErrSaleCancelled},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - referenced product missing",
			mockService:  mockSaleService{error: salerrors.ErrProductMissing},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "Error - sale not found",
			mockService:  mockSaleService{error: salerrors.ErrSaleNotFound},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodPut, "/api/v1/sales/"+mockID.String()+"/cancel", nil)
			req.SetPathValue("id", mockID.String())
			rr := httptest.NewRecorder()

			// when
			api.Cancel(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}

func Test_SaleAPI_DeleteByID(t *testing.T) {
	mockID, _ := uuid.Parse("123e4567-e89b-12d3-a456-426614174000")

	testCases := []struct {
		name         string
		mockService  mockSaleService
		expectedCode int
	}{
		{
			name:         "Success - sale deleted",
			mockService:  mockSaleService{},
			expectedCode: http.StatusNoContent,
		},
		{
			name:         "Error - sale not found",
			mockService:  mockSaleService{error: salerrors.ErrSaleNotFound},
			expectedCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			api := NewHandler(&tc.mockService, testLogger())
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/sales/"+mockID.String(), nil)
			req.SetPathValue("id", mockID.String())
			rr := httptest.NewRecorder()

			// when
			api.DeleteByID(rr, req)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
		})
	}
}
