package apperror

import (
	"errors"
	"net/http"
)

// Code is a stable machine-readable error identifier returned to clients.
type Code string

const (
	CodeValidation         Code = "VALIDATION_FAILED"
	CodeEmptyCart          Code = "EMPTY_CART"
	CodeProductNotFound    Code = "PRODUCT_NOT_FOUND"
	CodeSaleNotFound       Code = "SALE_NOT_FOUND"
	CodeTotalMismatch      Code = "TOTAL_MISMATCH"
	CodeLineTotalMismatch  Code = "LINE_TOTAL_MISMATCH"
	CodeAmountOutOfRange   Code = "AMOUNT_OUT_OF_RANGE"
	CodeInsufficientStock  Code = "INSUFFICIENT_STOCK"
	CodeDuplicateBarcode   Code = "DUPLICATE_BARCODE"
	CodeInvalidDate        Code = "INVALID_DATE"
	CodePersistence        Code = "PERSISTENCE_FAILED"
	CodePrinterUnavailable Code = "PRINTER_UNAVAILABLE"
	CodePrintFailed        Code = "PRINT_FAILED"
	CodePrintTimeout       Code = "PRINT_TIMEOUT"
	CodePrinterBusy        Code = "PRINTER_BUSY"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeIdempotencyKey     Code = "IDEMPOTENCY_KEY_REQUIRED"
	CodeIdempotencyReuse   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeBadRequest         Code = "BAD_REQUEST"
	CodeNotFound           Code = "NOT_FOUND"
	CodeInternal           Code = "INTERNAL"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Status  int          `json:"-"`
	Code    Code         `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	cause   error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Common errors
var (
	ErrNotFound       = &AppError{Status: http.StatusNotFound, Code: CodeNotFound, Message: "Ressource nicht gefunden"}
	ErrBadRequest     = &AppError{Status: http.StatusBadRequest, Code: CodeBadRequest, Message: "Ungültige Anfrage"}
	ErrInternalServer = &AppError{Status: http.StatusInternalServerError, Code: CodeInternal, Message: "Interner Serverfehler"}
	ErrEmptyCart      = &AppError{Status: http.StatusUnprocessableEntity, Code: CodeEmptyCart, Message: "Der Warenkorb ist leer"}
	ErrSaleNotFound   = &AppError{Status: http.StatusNotFound, Code: CodeSaleNotFound, Message: "Verkauf nicht gefunden"}
	ErrProductMissing = &AppError{Status: http.StatusNotFound, Code: CodeProductNotFound, Message: "Produkt nicht gefunden"}
	ErrDuplicate      = &AppError{Status: http.StatusConflict, Code: CodeDuplicateBarcode, Message: "Barcode bereits vorhanden"}
)

// New creates an application error with an explicit status and code
func New(status int, code Code, message string) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeValidation,
		Message: "Validierung fehlgeschlagen",
		Errors:  fieldErrors,
	}
}

// NewFieldError creates a validation error for a single field
func NewFieldError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewAmountOutOfRangeError reports a computed amount beyond the supported range
func NewAmountOutOfRangeError(field string) *AppError {
	return &AppError{
		Status:  http.StatusUnprocessableEntity,
		Code:    CodeAmountOutOfRange,
		Message: "Betrag außerhalb des zulässigen Bereichs",
		Errors:  []FieldError{{Field: field, Message: "Betrag zu groß"}},
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(code Code, message string) *AppError {
	return New(http.StatusNotFound, code, message)
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(code Code, message string) *AppError {
	return New(http.StatusConflict, code, message)
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(code Code, message string) *AppError {
	return New(http.StatusBadRequest, code, message)
}

// NewPersistenceError wraps a storage failure. The cause is kept for logging
// and its text is forwarded to the caller.
func NewPersistenceError(cause error) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    CodePersistence,
		Message: "Speichern fehlgeschlagen",
		cause:   cause,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsCode reports whether err carries the given code
func IsCode(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: err.Error(),
		cause:   err,
	}
}
