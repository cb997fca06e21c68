package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidState indicates an operation was attempted from a payment status
// that forbids it. It is never coerced into a different operation.
var ErrInvalidState = errors.New("operation not allowed in current payment status")

// ErrNotEligible indicates an assignment failed the attach preconditions
// (not completed, not evaluated, already paid, or locked by another payment).
var ErrNotEligible = errors.New("assignment not eligible for payment")

// ErrEmptyPayment indicates submission was attempted on a payment with no line items.
var ErrEmptyPayment = errors.New("payment has no line items")

// ErrGatewayFailure indicates a lock/unlock/storage call to an external
// collaborator failed or timed out. Any multi-step operation it interrupted
// has been rolled back before this error is surfaced.
var ErrGatewayFailure = errors.New("external gateway call failed")

// ErrConflict indicates a concurrent modification conflict.
var ErrConflict = errors.New("resource conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// PartialUnlockError reports a cancellation whose unlock loop failed partway.
// The payment stays CANCELLED; the named assignments remain locked and need
// manual release. Cancellation is itself a recovery action and is never reverted.
type PartialUnlockError struct {
	PaymentID      string
	StillLockedIDs []string
	Cause          error
}

func (e *PartialUnlockError) Error() string {
	return fmt.Sprintf("payment %s cancelled but %d assignment(s) remain locked [%s]: %v",
		e.PaymentID, len(e.StillLockedIDs), strings.Join(e.StillLockedIDs, ", "), e.Cause)
}

func (e *PartialUnlockError) Unwrap() error {
	return ErrGatewayFailure
}
