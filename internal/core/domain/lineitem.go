package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem records one work assignment's financial inclusion in a payment.
//
// While the owning payment is DRAFT the live fields are authoritative and may
// be recomputed when the underlying assignment's evaluation changes. At
// submission the live values are copied once into the Snapshot* fields, which
// become authoritative for all reporting from then on. The two field sets are
// deliberately separate columns; collapsing them would destroy the audit trail.
type LineItem struct {
	LineItemID     string    `json:"lineItemID"`
	PaymentID      string    `json:"paymentID"`
	AssignmentID   string    `json:"assignmentID"` // exclusive: at most one non-cancelled payment may hold it
	EmployeeID     string    `json:"employeeID"`
	WorkActivityID string    `json:"workActivityID"`
	AssignmentDate time.Time `json:"assignmentDate"`

	// Live fields, mutable while the payment is DRAFT.
	Rate                 decimal.Decimal `json:"rate"`
	GrossAmount          decimal.Decimal `json:"grossAmount"`
	CompletionPercentage decimal.Decimal `json:"completionPercentage"`
	EmployeePf           decimal.Decimal `json:"employeePf"`
	VoluntaryPf          decimal.Decimal `json:"voluntaryPf"`
	EmployerPf           decimal.Decimal `json:"employerPf"`
	PfAmount             decimal.Decimal `json:"pfAmount"`  // employeePf + voluntaryPf, withheld from the employee
	NetAmount            decimal.Decimal `json:"netAmount"` // grossAmount - pfAmount

	// Snapshot fields, nil until the payment leaves DRAFT, then immutable.
	SnapshotEmployeeName         *string          `json:"snapshotEmployeeName,omitempty"`
	SnapshotActivityName         *string          `json:"snapshotActivityName,omitempty"`
	SnapshotCompletionPercentage *decimal.Decimal `json:"snapshotCompletionPercentage,omitempty"`
	SnapshotGrossAmount          *decimal.Decimal `json:"snapshotGrossAmount,omitempty"`
	SnapshotEmployeePf           *decimal.Decimal `json:"snapshotEmployeePf,omitempty"`
	SnapshotVoluntaryPf          *decimal.Decimal `json:"snapshotVoluntaryPf,omitempty"`
	SnapshotEmployerPf           *decimal.Decimal `json:"snapshotEmployerPf,omitempty"`
	SnapshotPfAmount             *decimal.Decimal `json:"snapshotPfAmount,omitempty"`
	SnapshotNetAmount            *decimal.Decimal `json:"snapshotNetAmount,omitempty"`

	AuditFields
}

// TakeSnapshot copies the live fields into the snapshot fields. Called exactly
// once, at submission.
func (li *LineItem) TakeSnapshot(employeeName, activityName string) {
	completion := li.CompletionPercentage
	gross := li.GrossAmount
	employeePf := li.EmployeePf
	voluntaryPf := li.VoluntaryPf
	employerPf := li.EmployerPf
	pfAmount := li.PfAmount
	netAmount := li.NetAmount

	li.SnapshotEmployeeName = &employeeName
	li.SnapshotActivityName = &activityName
	li.SnapshotCompletionPercentage = &completion
	li.SnapshotGrossAmount = &gross
	li.SnapshotEmployeePf = &employeePf
	li.SnapshotVoluntaryPf = &voluntaryPf
	li.SnapshotEmployerPf = &employerPf
	li.SnapshotPfAmount = &pfAmount
	li.SnapshotNetAmount = &netAmount
}

// HasSnapshot reports whether the snapshot fields were populated.
func (li *LineItem) HasSnapshot() bool {
	return li.SnapshotGrossAmount != nil
}
