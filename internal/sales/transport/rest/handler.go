// Package rest provides HTTP handlers for sale-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	caterrors "github.com/devstore/sales-service/internal/catalog/errors"
	salerrors "github.com/devstore/sales-service/internal/sales/errors"
	"github.com/devstore/sales-service/internal/sales/service"
	"github.com/devstore/sales-service/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.SaleService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the sales API with the provided service.
func NewHandler(service service.SaleService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "sales_rest"),
	}
}

// RegisterRoutes registers the HTTP routes for sales.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/sales", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Delete("/", h.DeleteByID)
			r.Put("/cancel", h.Cancel)

			r.Route("/items/{itemId}", func(r chi.Router) {
				r.Put("/", h.UpdateItemQuantity)
				r.Delete("/", h.DeleteItem)
			})
		})
	})
}

// FindByID retrieves a sale by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find sale by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, salerrors.ErrSaleNotFound) {
			mLogger.WarnContext(r.Context(), "Sale not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Sale with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving sale", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve sale with ID %s", id))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved sale", "ID", found.ID, "SaleNumber", found.SaleNumber)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindAll retrieves a list of all sales.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := web.ParseValidateGt(r, w, mLogger, "limit", 0)
	if !ok {
		return
	}
	offset, ok := web.ParseValidateGte(r, w, mLogger, "offset", 0)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to find all sales", "limit", limit, "offset", offset)
	list, err := h.service.FindAll(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving sale list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch sales")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved sale list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Create handles the registration of a new sale.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var saleCreateDto service.SaleCreateDto
	if err := json.NewDecoder(r.Body).Decode(&saleCreateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create sale", "client", saleCreateDto.Client, "items", len(saleCreateDto.Items))
	if !h.checkValid(w, r, mLogger, saleCreateDto) {
		return
	}

	newSale, err := h.service.Create(r.Context(), saleCreateDto)
	if err != nil {
		switch {
		case errors.Is(err, caterrors.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Product not found for sale creation", "error", err)
			web.RespondError(w, mLogger, http.StatusNotFound, err.Error())
		case errors.Is(err, salerrors.ErrInsufficientStock),
			errors.Is(err, salerrors.ErrInvalidQuantity),
			errors.Is(err, salerrors.ErrEmptySale):
			mLogger.WarnContext(r.Context(), "Sale creation rejected", "error", err)
			web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
		default:
			mLogger.ErrorContext(r.Context(), "Error creating sale", "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create sale")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Sale created successfully", "ID", newSale.ID, "SaleNumber", newSale.SaleNumber)
	web.RespondJSON(w, mLogger, http.StatusCreated, newSale)
}

// UpdateItemQuantity changes the quantity of one sale item. Quantity zero
// removes the item.
func (h *Handler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	itemID, ok := web.ParsePathID(w, r, mLogger, "itemId")
	if !ok {
		return
	}
	var quantityDto service.ItemQuantityUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&quantityDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !h.checkValid(w, r, mLogger, quantityDto) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update item quantity", "ID", id, "itemID", itemID, "quantity", quantityDto.Quantity)

	updated, err := h.service.UpdateItemQuantity(r.Context(), id, itemID, quantityDto.Quantity)
	if err != nil {
		h.respondSaleMutationError(w, r, mLogger, id, err, "Failed to update sale item")
		return
	}
	mLogger.InfoContext(r.Context(), "Sale item updated successfully", "ID", id, "itemID", itemID)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteItem removes one item from a sale.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	itemID, ok := web.ParsePathID(w, r, mLogger, "itemId")
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete sale item", "ID", id, "itemID", itemID)

	updated, err := h.service.DeleteItem(r.Context(), id, itemID)
	if err != nil {
		h.respondSaleMutationError(w, r, mLogger, id, err, "Failed to delete sale item")
		return
	}
	mLogger.InfoContext(r.Context(), "Sale item deleted successfully", "ID", id, "itemID", itemID)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// Cancel flags a sale as cancelled and restores product stock.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to cancel sale", "ID", id)

	cancelled, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		h.respondSaleMutationError(w, r, mLogger, id, err, "Failed to cancel sale")
		return
	}
	mLogger.InfoContext(r.Context(), "Sale cancelled successfully", "ID", id, "SaleNumber", cancelled.SaleNumber)
	web.RespondJSON(w, mLogger, http.StatusOK, cancelled)
}

// DeleteByID deletes a sale by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete sale", "ID", id)
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		if errors.Is(err, salerrors.ErrSaleNotFound) {
			mLogger.WarnContext(r.Context(), "Sale not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Sale with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting sale", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete sale with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Sale deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// respondSaleMutationError maps the sale mutation sentinel errors to HTTP
// status codes shared by the update, delete-item and cancel endpoints.
func (h *Handler) respondSaleMutationError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, id any, err error, fallback string) {
	switch {
	case errors.Is(err, salerrors.ErrSaleNotFound):
		mLogger.WarnContext(r.Context(), "Sale not found", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Sale with ID %s not found", id))
	case errors.Is(err, salerrors.ErrSaleItemNotFound):
		mLogger.WarnContext(r.Context(), "Sale item not found", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, err.Error())
	case errors.Is(err, salerrors.ErrSaleCancelled):
		mLogger.WarnContext(r.Context(), "Sale already cancelled", "ID", id)
		web.RespondError(w, mLogger, http.StatusConflict, fmt.Sprintf("Sale with ID %s is cancelled", id))
	case errors.Is(err, salerrors.ErrInvalidQuantity),
		errors.Is(err, salerrors.ErrInsufficientStock):
		mLogger.WarnContext(r.Context(), "Sale mutation rejected", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
	case errors.Is(err, salerrors.ErrProductMissing):
		mLogger.ErrorContext(r.Context(), "Sale references a missing product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusConflict, err.Error())
	default:
		mLogger.ErrorContext(r.Context(), fallback, "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fallback)
	}
}

// checkValid runs struct validation and writes the field error map on failure.
func (h *Handler) checkValid(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, v any) bool {
	if err := h.validate.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
