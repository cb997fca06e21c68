package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssignmentSummary is the normalized view of a work assignment as supplied by
// the assignment gateway. The gateway's raw payloads carry the same facts
// under varying field names depending on source; the gateway adapter resolves
// that before the summary reaches the core, so nothing here branches on which
// raw field was populated.
type AssignmentSummary struct {
	AssignmentID         string          `json:"assignmentID"`
	EmployeeID           string          `json:"employeeID"`
	EmployeeName         string          `json:"employeeName"`
	WorkActivityID       string          `json:"workActivityID"`
	WorkActivityName     string          `json:"workActivityName"`
	AssignmentDate       time.Time       `json:"assignmentDate"`
	Rate                 decimal.Decimal `json:"rate"`
	GrossAmount          decimal.Decimal `json:"grossAmount"` // calculated by the assignment system
	CompletionPercentage decimal.Decimal `json:"completionPercentage"`
	Completed            bool            `json:"completed"`
	Evaluated            bool            `json:"evaluated"` // has at least one evaluation
	Paid                 bool            `json:"paid"`
	LockedByPaymentID    string          `json:"lockedByPaymentID,omitempty"`
}

// Eligible reports whether the assignment may be attached to a draft payment.
// All four predicates must hold. An assignment already locked by the asking
// payment is still ineligible, which also rules out duplicate line items.
func (a *AssignmentSummary) Eligible() bool {
	return a.Completed && a.Evaluated && !a.Paid && a.LockedByPaymentID == ""
}

// IneligibilityReason names the first failing attach predicate, for error detail.
func (a *AssignmentSummary) IneligibilityReason() string {
	switch {
	case !a.Completed:
		return "assignment is not completed"
	case !a.Evaluated:
		return "assignment has no evaluation"
	case a.Paid:
		return "assignment is already paid"
	case a.LockedByPaymentID != "":
		return "assignment is attached to payment " + a.LockedByPaymentID
	default:
		return ""
	}
}
