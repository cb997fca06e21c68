package domain

import "time"

// DocumentType categorizes an uploaded payment artifact.
type DocumentType string

const (
	DocumentReceipt DocumentType = "RECEIPT"
	DocumentChallan DocumentType = "CHALLAN"
	DocumentOther   DocumentType = "OTHER"
)

// Document is the metadata of an uploaded artifact attached to a payment,
// typically the transfer receipt captured when the payment is recorded.
// The binary content lives in file storage under StoragePath; this core
// treats it as an opaque byte stream.
type Document struct {
	DocumentID   string       `json:"documentID"`
	PaymentID    string       `json:"paymentID"`
	FileName     string       `json:"fileName"`
	FileSize     int64        `json:"fileSize"`
	ContentType  string       `json:"contentType"`
	DocumentType DocumentType `json:"documentType"`
	Description  string       `json:"description,omitempty"`
	StoragePath  string       `json:"-"`
	UploadedBy   string       `json:"uploadedBy"`
	UploadedAt   time.Time    `json:"uploadedAt"`
}
