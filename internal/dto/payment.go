package dto

import (
	"time"

	"github.com/finwage/payroll_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateDraftRequest creates a new DRAFT payment for a payroll period.
type CreateDraftRequest struct {
	PaymentMonth int    `json:"paymentMonth" binding:"required,min=1,max=12"`
	PaymentYear  int    `json:"paymentYear" binding:"required,min=2000"`
	Description  string `json:"description"`
}

// AddLineItemRequest attaches one assignment to a draft payment.
type AddLineItemRequest struct {
	AssignmentID string `json:"assignmentID" binding:"required"`
}

// RemarksRequest carries optional remarks for submit/approve operations.
type RemarksRequest struct {
	Remarks string `json:"remarks"`
}

// RecordPaymentRequest records the actual money transfer.
type RecordPaymentRequest struct {
	PaymentDate     string `json:"paymentDate" binding:"required"` // YYYY-MM-DD
	ReferenceNumber string `json:"referenceNumber" binding:"required"`
	Remarks         string `json:"remarks"`
}

// CancelRequest abandons a submitted or approved payment.
type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// LineItemResponse defines the data returned for a line item. Live and
// snapshot fields are both exposed; once the payment leaves DRAFT the
// snapshot side is the authoritative one.
type LineItemResponse struct {
	LineItemID           string          `json:"lineItemID"`
	AssignmentID         string          `json:"assignmentID"`
	EmployeeID           string          `json:"employeeID"`
	WorkActivityID       string          `json:"workActivityID"`
	AssignmentDate       time.Time       `json:"assignmentDate"`
	Rate                 decimal.Decimal `json:"rate"`
	GrossAmount          decimal.Decimal `json:"grossAmount"`
	CompletionPercentage decimal.Decimal `json:"completionPercentage"`
	EmployeePf           decimal.Decimal `json:"employeePf"`
	VoluntaryPf          decimal.Decimal `json:"voluntaryPf"`
	EmployerPf           decimal.Decimal `json:"employerPf"`
	PfAmount             decimal.Decimal `json:"pfAmount"`
	NetAmount            decimal.Decimal `json:"netAmount"`

	SnapshotEmployeeName         *string          `json:"snapshotEmployeeName,omitempty"`
	SnapshotActivityName         *string          `json:"snapshotActivityName,omitempty"`
	SnapshotCompletionPercentage *decimal.Decimal `json:"snapshotCompletionPercentage,omitempty"`
	SnapshotGrossAmount          *decimal.Decimal `json:"snapshotGrossAmount,omitempty"`
	SnapshotEmployeePf           *decimal.Decimal `json:"snapshotEmployeePf,omitempty"`
	SnapshotVoluntaryPf          *decimal.Decimal `json:"snapshotVoluntaryPf,omitempty"`
	SnapshotEmployerPf           *decimal.Decimal `json:"snapshotEmployerPf,omitempty"`
	SnapshotPfAmount             *decimal.Decimal `json:"snapshotPfAmount,omitempty"`
	SnapshotNetAmount            *decimal.Decimal `json:"snapshotNetAmount,omitempty"`
}

// PaymentResponse defines the data returned for a payment.
type PaymentResponse struct {
	PaymentID          string               `json:"paymentID"`
	Status             domain.PaymentStatus `json:"status"`
	PaymentMonth       int                  `json:"paymentMonth"`
	PaymentYear        int                  `json:"paymentYear"`
	Description        string               `json:"description,omitempty"`
	TotalAmount        decimal.Decimal      `json:"totalAmount"`
	PaymentDate        *time.Time           `json:"paymentDate,omitempty"`
	ReferenceNumber    string               `json:"referenceNumber,omitempty"`
	CancellationReason string               `json:"cancellationReason,omitempty"`
	CancelledBy        string               `json:"cancelledBy,omitempty"`
	CancelledAt        *time.Time           `json:"cancelledAt,omitempty"`
	LineItems          []LineItemResponse   `json:"lineItems,omitempty"`
	Documents          []DocumentResponse   `json:"documents,omitempty"`
	CreatedAt          time.Time            `json:"createdAt"`
	CreatedBy          string               `json:"createdBy"`
}

// HistoryEntryResponse defines the data returned for one audit record.
type HistoryEntryResponse struct {
	HistoryID         string           `json:"historyID"`
	ChangeType        string           `json:"changeType"`
	PreviousStatus    *string          `json:"previousStatus,omitempty"`
	NewStatus         *string          `json:"newStatus,omitempty"`
	PreviousAmount    *decimal.Decimal `json:"previousAmount,omitempty"`
	NewAmount         *decimal.Decimal `json:"newAmount,omitempty"`
	Remarks           string           `json:"remarks,omitempty"`
	ChangeDescription string           `json:"changeDescription"`
	ChangedBy         string           `json:"changedBy"`
	ChangedAt         time.Time        `json:"changedAt"`
}

// ToLineItemResponse converts a domain.LineItem to its DTO.
func ToLineItemResponse(li *domain.LineItem) LineItemResponse {
	return LineItemResponse{
		LineItemID:           li.LineItemID,
		AssignmentID:         li.AssignmentID,
		EmployeeID:           li.EmployeeID,
		WorkActivityID:       li.WorkActivityID,
		AssignmentDate:       li.AssignmentDate,
		Rate:                 li.Rate,
		GrossAmount:          li.GrossAmount,
		CompletionPercentage: li.CompletionPercentage,
		EmployeePf:           li.EmployeePf,
		VoluntaryPf:          li.VoluntaryPf,
		EmployerPf:           li.EmployerPf,
		PfAmount:             li.PfAmount,
		NetAmount:            li.NetAmount,

		SnapshotEmployeeName:         li.SnapshotEmployeeName,
		SnapshotActivityName:         li.SnapshotActivityName,
		SnapshotCompletionPercentage: li.SnapshotCompletionPercentage,
		SnapshotGrossAmount:          li.SnapshotGrossAmount,
		SnapshotEmployeePf:           li.SnapshotEmployeePf,
		SnapshotVoluntaryPf:          li.SnapshotVoluntaryPf,
		SnapshotEmployerPf:           li.SnapshotEmployerPf,
		SnapshotPfAmount:             li.SnapshotPfAmount,
		SnapshotNetAmount:            li.SnapshotNetAmount,
	}
}

// ToPaymentResponse converts a domain.Payment to its DTO.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	resp := PaymentResponse{
		PaymentID:          p.PaymentID,
		Status:             p.Status,
		PaymentMonth:       p.PaymentMonth,
		PaymentYear:        p.PaymentYear,
		Description:        p.Description,
		TotalAmount:        p.TotalAmount,
		PaymentDate:        p.PaymentDate,
		ReferenceNumber:    p.ReferenceNumber,
		CancellationReason: p.CancellationReason,
		CancelledBy:        p.CancelledBy,
		CancelledAt:        p.CancelledAt,
		CreatedAt:          p.CreatedAt,
		CreatedBy:          p.CreatedBy,
	}
	if len(p.LineItems) > 0 {
		resp.LineItems = make([]LineItemResponse, len(p.LineItems))
		for i := range p.LineItems {
			resp.LineItems[i] = ToLineItemResponse(&p.LineItems[i])
		}
	}
	if len(p.Documents) > 0 {
		resp.Documents = make([]DocumentResponse, len(p.Documents))
		for i := range p.Documents {
			resp.Documents[i] = ToDocumentResponse(&p.Documents[i])
		}
	}
	return resp
}

// ToPaymentResponses converts a slice of payments to DTOs.
func ToPaymentResponses(payments []domain.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}

// ToHistoryEntryResponse converts a domain.HistoryEntry to its DTO.
func ToHistoryEntryResponse(h *domain.HistoryEntry) HistoryEntryResponse {
	resp := HistoryEntryResponse{
		HistoryID:         h.HistoryID,
		ChangeType:        string(h.ChangeType),
		PreviousAmount:    h.PreviousAmount,
		NewAmount:         h.NewAmount,
		Remarks:           h.Remarks,
		ChangeDescription: h.ChangeDescription,
		ChangedBy:         h.ChangedBy,
		ChangedAt:         h.ChangedAt,
	}
	if h.PreviousStatus != nil {
		s := string(*h.PreviousStatus)
		resp.PreviousStatus = &s
	}
	if h.NewStatus != nil {
		s := string(*h.NewStatus)
		resp.NewStatus = &s
	}
	return resp
}

// ToHistoryEntryResponses converts a slice of history entries to DTOs.
func ToHistoryEntryResponses(entries []domain.HistoryEntry) []HistoryEntryResponse {
	responses := make([]HistoryEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToHistoryEntryResponse(&entries[i])
	}
	return responses
}
