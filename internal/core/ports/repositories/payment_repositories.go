package repositories

import (
	"context"

	"github.com/finwage/payroll_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListPaymentsFilter narrows a payment listing. Nil fields match everything.
type ListPaymentsFilter struct {
	Status *domain.PaymentStatus
	Month  *int // payroll period month (1-12)
	Year   *int
	Limit  int
	Offset int
}

// PaymentReader defines read operations for payment data.
type PaymentReader interface {
	// FindPaymentByID retrieves a payment with its line items and documents.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ListPayments retrieves payment headers (no line items) matching the filter,
	// newest first.
	ListPayments(ctx context.Context, filter ListPaymentsFilter) ([]domain.Payment, error)

	// FindDocumentByID retrieves one document's metadata, scoped to its payment.
	FindDocumentByID(ctx context.Context, paymentID, documentID string) (*domain.Document, error)
}

// PaymentWriter defines write operations for payment data. Each method that
// takes a HistoryEntry persists the mutation and the audit record in one
// database transaction so no state change can exist without its history.
type PaymentWriter interface {
	// SavePayment inserts a new draft payment together with its CREATED entry.
	SavePayment(ctx context.Context, payment domain.Payment, entry domain.HistoryEntry) error

	// SaveLineItem inserts a line item, updates the owning payment's derived
	// total, and appends the history entry.
	SaveLineItem(ctx context.Context, item domain.LineItem, totalAmount decimal.Decimal, entry domain.HistoryEntry) error

	// DeleteLineItem removes a line item, updates the derived total, and
	// appends the history entry.
	DeleteLineItem(ctx context.Context, paymentID, lineItemID string, totalAmount decimal.Decimal, entry domain.HistoryEntry) error

	// UpdatePayment rewrites a payment's mutable columns (status, payment
	// date, reference, cancellation fields) and appends the history entry.
	UpdatePayment(ctx context.Context, payment domain.Payment, entry domain.HistoryEntry) error

	// UpdatePaymentAndLineItems does what UpdatePayment does and additionally
	// rewrites every given line item (used at submission to persist snapshots).
	UpdatePaymentAndLineItems(ctx context.Context, payment domain.Payment, items []domain.LineItem, entry domain.HistoryEntry) error

	// DeletePayment destroys a payment with its line items, documents and
	// history. Only the service layer calls this, and only for drafts.
	DeletePayment(ctx context.Context, paymentID string) error
}

// DocumentWriter defines write operations for payment documents.
type DocumentWriter interface {
	// SaveDocument inserts document metadata and appends the history entry.
	SaveDocument(ctx context.Context, doc domain.Document, entry domain.HistoryEntry) error

	// DeleteDocument removes document metadata and appends the history entry.
	DeleteDocument(ctx context.Context, paymentID, documentID string, entry domain.HistoryEntry) error
}

// HistoryReader defines read access to the append-only audit trail.
type HistoryReader interface {
	// FindHistoryByPaymentID returns a payment's history, oldest first.
	FindHistoryByPaymentID(ctx context.Context, paymentID string) ([]domain.HistoryEntry, error)
}

// PaymentRepositoryFacade combines all payment-related repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
	DocumentWriter
	HistoryReader
}
