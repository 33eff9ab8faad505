/*
errors.go - Centralized error types for the ledger and its callers

PURPOSE:
  All sentinel errors in one place. Domain code wraps these with
  context; the API layer maps them onto the HTTP error taxonomy
  (422 validation, 403 forbidden, 404 not found, 409 conflict).

USAGE:
  if errors.Is(err, ledger.ErrPaymentExceedsRemaining) {
      // 422 with a distinguishable machine code
  }
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned when a money-movement is attempted
	// with a zero or negative amount.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInsufficientBalance is returned by the target-purchase path
	// when the balance does not cover the target price. Plain debits
	// intentionally have no such guard.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrPaymentExceedsRemaining is returned when a debt or lending
	// payment is larger than the amount still outstanding.
	ErrPaymentExceedsRemaining = errors.New("payment exceeds remaining amount")

	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the acting user does not own the
	// referenced row.
	ErrForbidden = errors.New("forbidden")

	// ErrDefaultCategory is returned on attempts to modify or delete a
	// system default category.
	ErrDefaultCategory = errors.New("default categories cannot be modified")

	// ErrCategoryInUse is returned when deleting a category that still
	// has expenses referencing it.
	ErrCategoryInUse = errors.New("category has expenses")

	// ErrTargetNotActive is returned when purchasing a target that is
	// already completed or cancelled.
	ErrTargetNotActive = errors.New("target is not active")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError reports how short the balance is.
type InsufficientBalanceError struct {
	UserID    string
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s, requested %s",
		e.Available.StringFixed(2), e.Requested.StringFixed(2))
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// ExceedsRemainingError reports an over-payment against a debt or lending.
type ExceedsRemainingError struct {
	Remaining decimal.Decimal
	Requested decimal.Decimal
}

func (e *ExceedsRemainingError) Error() string {
	return fmt.Sprintf("payment %s exceeds remaining amount %s",
		e.Requested.StringFixed(2), e.Remaining.StringFixed(2))
}

func (e *ExceedsRemainingError) Unwrap() error { return ErrPaymentExceedsRemaining }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is the caller's fault, as
// opposed to an internal failure that warrants a 500.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrPaymentExceedsRemaining) ||
		errors.Is(err, ErrDefaultCategory) ||
		errors.Is(err, ErrCategoryInUse) ||
		errors.Is(err, ErrTargetNotActive)
}
