package services

import (
	"context"
	"io"
	"time"

	"github.com/finwage/payroll_backend/internal/core/domain"
	portsrepo "github.com/finwage/payroll_backend/internal/core/ports/repositories"
	"github.com/finwage/payroll_backend/internal/dto"
)

// PaymentReaderSvc defines the query side of the payment API.
type PaymentReaderSvc interface {
	// GetPayment retrieves a payment with its line items and documents.
	GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPayments retrieves payment headers matching the filter, newest first.
	ListPayments(ctx context.Context, filter portsrepo.ListPaymentsFilter) ([]domain.Payment, error)

	// GetHistory returns the payment's append-only audit trail, oldest first.
	GetHistory(ctx context.Context, paymentID string) ([]domain.HistoryEntry, error)

	// ListEligibleAssignments passes through to the assignment gateway.
	ListEligibleAssignments(ctx context.Context, startDate, endDate time.Time) ([]domain.AssignmentSummary, error)
}

// PaymentLifecycleSvc defines the state machine operations. Operations against
// the same payment are serialized; operations against different payments run
// in parallel.
type PaymentLifecycleSvc interface {
	// CreateDraft creates a new DRAFT payment for a payroll period.
	CreateDraft(ctx context.Context, req dto.CreateDraftRequest, creatorUserID string) (*domain.Payment, error)

	// AddLineItem attaches an eligible assignment to a DRAFT payment, locking
	// the assignment and recomputing the derived total.
	AddLineItem(ctx context.Context, paymentID, assignmentID, userID string) (*domain.Payment, error)

	// RemoveLineItem detaches a line item from a DRAFT payment and unlocks its
	// assignment.
	RemoveLineItem(ctx context.Context, paymentID, lineItemID, userID string) (*domain.Payment, error)

	// SubmitForApproval freezes every line item's snapshot, locks the
	// referenced assignments and moves the payment to PENDING_APPROVAL.
	SubmitForApproval(ctx context.Context, paymentID, remarks, userID string) (*domain.Payment, error)

	// Approve moves a PENDING_APPROVAL payment to APPROVED.
	Approve(ctx context.Context, paymentID, remarks, userID string) (*domain.Payment, error)

	// RecordPayment records the money transfer and moves the payment to PAID.
	RecordPayment(ctx context.Context, paymentID string, req dto.RecordPaymentRequest, userID string) (*domain.Payment, error)

	// Cancel abandons a submitted or approved payment, unlocking its assignments.
	Cancel(ctx context.Context, paymentID, reason, userID string) (*domain.Payment, error)

	// DeleteDraft destroys a DRAFT payment, unlocking its assignments.
	DeleteDraft(ctx context.Context, paymentID, userID string) error
}

// PaymentDocumentSvc defines document attachment on payments.
type PaymentDocumentSvc interface {
	// AddDocument stores the uploaded artifact and attaches its metadata.
	AddDocument(ctx context.Context, paymentID string, upload dto.DocumentUpload, userID string) (*domain.Document, error)

	// RemoveDocument deletes a document where policy permits.
	RemoveDocument(ctx context.Context, paymentID, documentID, userID string) error

	// OpenDocument returns a document's metadata and its content stream.
	// The caller closes the stream.
	OpenDocument(ctx context.Context, paymentID, documentID string) (*domain.Document, io.ReadCloser, error)
}

// PaymentSvcFacade combines all payment service interfaces.
type PaymentSvcFacade interface {
	PaymentReaderSvc
	PaymentLifecycleSvc
	PaymentDocumentSvc
}
