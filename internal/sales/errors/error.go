// Package errors provides custom error types for sale-related operations.
package errors

import "errors"

var ErrSaleNotFound = errors.New("sale not found")
var ErrSaleItemNotFound = errors.New("sale item not found")
var ErrSaleCancelled = errors.New("sale is already cancelled")

var ErrEmptySale = errors.New("sale must contain at least one item")
var ErrInvalidQuantity = errors.New("item quantity must be between 1 and 20")
var ErrInsufficientStock = errors.New("insufficient stock")
var ErrProductMissing = errors.New("referenced product no longer exists")

var ErrCreateSale = errors.New("failed to create sale")
var ErrUpdateSale = errors.New("failed to update sale")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
