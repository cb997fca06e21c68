package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus indicates where a payment batch sits in the approval workflow.
type PaymentStatus string

const (
	// PaymentDraft is the only editable status; line items may be added/removed.
	PaymentDraft PaymentStatus = "DRAFT"
	// PaymentPendingApproval means the batch was submitted; line-item snapshots
	// are frozen and the referenced assignments are locked.
	PaymentPendingApproval PaymentStatus = "PENDING_APPROVAL"
	// PaymentApproved means an approver signed off on the batch.
	PaymentApproved PaymentStatus = "APPROVED"
	// PaymentPaid means the money transfer was recorded. Terminal.
	PaymentPaid PaymentStatus = "PAID"
	// PaymentCancelled means the batch was abandoned after submission and its
	// assignments were released. Terminal.
	PaymentCancelled PaymentStatus = "CANCELLED"
)

// Payment represents one payroll batch for a (month, year) period.
// TotalAmount is derived: it always equals the sum of the current line items'
// net amounts and is recomputed on every ledger mutation.
type Payment struct {
	PaymentID          string          `json:"paymentID"`
	Status             PaymentStatus   `json:"status"`
	PaymentMonth       int             `json:"paymentMonth"` // 1-12, the payroll period
	PaymentYear        int             `json:"paymentYear"`
	Description        string          `json:"description"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	PaymentDate        *time.Time      `json:"paymentDate,omitempty"`     // set by RecordPayment
	ReferenceNumber    string          `json:"referenceNumber,omitempty"` // set by RecordPayment
	CancellationReason string          `json:"cancellationReason,omitempty"`
	CancelledBy        string          `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
	LineItems          []LineItem      `json:"lineItems,omitempty"`
	Documents          []Document      `json:"documents,omitempty"`
	AuditFields
}

// IsEditable reports whether the line-item ledger may still be mutated.
func (p *Payment) IsEditable() bool {
	return p.Status == PaymentDraft
}

// IsCancellable reports whether the payment may still be cancelled.
// DRAFT payments are deleted instead, PAID and CANCELLED are terminal.
func (p *Payment) IsCancellable() bool {
	return p.Status == PaymentPendingApproval || p.Status == PaymentApproved
}

// RecomputeTotal derives TotalAmount from the current line items.
func (p *Payment) RecomputeTotal() {
	total := decimal.Zero
	for _, li := range p.LineItems {
		total = total.Add(li.NetAmount)
	}
	p.TotalAmount = total
}
