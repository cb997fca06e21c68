package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChangeType identifies the state-affecting operation a history entry records.
type ChangeType string

const (
	ChangeCreated         ChangeType = "CREATED"
	ChangeLineItemAdded   ChangeType = "LINE_ITEM_ADDED"
	ChangeLineItemRemoved ChangeType = "LINE_ITEM_REMOVED"
	ChangeLineItemUpdated ChangeType = "LINE_ITEM_UPDATED"
	ChangeSubmitted       ChangeType = "SUBMITTED"
	ChangeApproved        ChangeType = "APPROVED"
	ChangePaid            ChangeType = "PAID"
	ChangeCancelled       ChangeType = "CANCELLED"
	ChangeDocumentAdded   ChangeType = "DOCUMENT_ADDED"
	ChangeDocumentRemoved ChangeType = "DOCUMENT_REMOVED"
	ChangeRemarksUpdated  ChangeType = "REMARKS_UPDATED"
	ChangeReevaluated     ChangeType = "REEVALUATED"
)

// HistoryEntry is one immutable audit record on a payment. Entries are
// append-only: they are never updated or deleted, and they outlive every
// status transition except the physical deletion of a DRAFT payment.
type HistoryEntry struct {
	HistoryID         string           `json:"historyID"`
	PaymentID         string           `json:"paymentID"`
	ChangeType        ChangeType       `json:"changeType"`
	PreviousStatus    *PaymentStatus   `json:"previousStatus,omitempty"`
	NewStatus         *PaymentStatus   `json:"newStatus,omitempty"`
	PreviousAmount    *decimal.Decimal `json:"previousAmount,omitempty"`
	NewAmount         *decimal.Decimal `json:"newAmount,omitempty"`
	Remarks           string           `json:"remarks,omitempty"`
	ChangeDescription string           `json:"changeDescription"`
	ChangedBy         string           `json:"changedBy"`
	ChangedAt         time.Time        `json:"changedAt"`
}
