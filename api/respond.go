package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdalrhmankhashashneh/expense-tracker-api/finance"
	"github.com/Abdalrhmankhashashneh/expense-tracker-api/ledger"
)

// =============================================================================
// RESPONSE ENVELOPE
// =============================================================================

// Every endpoint responds with the same envelope:
//
//	{"success": true,  "data": {...}, "message": "..."}
//	{"success": false, "message": "...", "error": {"code": "...", "message": "..."}}

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned in the envelope's error.code field.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodePaymentExceeds      = "PAYMENT_EXCEEDS_REMAINING"
	CodeCannotDeleteDefault = "CANNOT_DELETE_DEFAULT"
	CodeCategoryHasExpenses = "CATEGORY_HAS_EXPENSES"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInternal            = "INTERNAL_ERROR"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{
		Success: false,
		Message: message,
		Error:   &errorBody{Code: code, Message: message},
	})
}

// writeDomainError maps domain errors to HTTP status and error code.
// Unrecognized errors become opaque 500s so internals never leak.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, "resource not found")
	case errors.Is(err, ledger.ErrForbidden):
		writeError(w, http.StatusForbidden, CodeForbidden, "access denied")
	case errors.Is(err, ledger.ErrDefaultCategory):
		writeError(w, http.StatusForbidden, CodeCannotDeleteDefault, "default categories cannot be modified or deleted")
	case errors.Is(err, ledger.ErrCategoryInUse):
		writeError(w, http.StatusConflict, CodeCategoryHasExpenses, "category still has expenses")
	case errors.Is(err, ledger.ErrPaymentExceedsRemaining):
		writeError(w, http.StatusUnprocessableEntity, CodePaymentExceeds, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, CodeInsufficientBalance, err.Error())
	case errors.Is(err, finance.ErrEmailTaken):
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, "email already registered")
	case errors.Is(err, ledger.ErrTargetNotActive),
		errors.Is(err, ledger.ErrInvalidAmount):
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

// decodeBody parses a JSON request body into dst, rejecting unknown
// garbage early with a uniform validation error.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid JSON body")
		return false
	}
	return true
}
