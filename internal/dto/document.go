package dto

import (
	"io"
	"time"

	"github.com/finwage/payroll_backend/internal/core/domain"
)

// DocumentUpload carries an uploaded file into the service layer. Content is
// an opaque stream; the service never inspects it.
type DocumentUpload struct {
	FileName     string
	FileSize     int64
	ContentType  string
	DocumentType domain.DocumentType
	Description  string
	Content      io.Reader
}

// DocumentResponse defines the metadata returned for an attached document.
type DocumentResponse struct {
	DocumentID   string    `json:"documentID"`
	FileName     string    `json:"fileName"`
	FileSize     int64     `json:"fileSize"`
	ContentType  string    `json:"contentType"`
	DocumentType string    `json:"documentType"`
	Description  string    `json:"description,omitempty"`
	UploadedBy   string    `json:"uploadedBy"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// ToDocumentResponse converts a domain.Document to its DTO.
func ToDocumentResponse(d *domain.Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:   d.DocumentID,
		FileName:     d.FileName,
		FileSize:     d.FileSize,
		ContentType:  d.ContentType,
		DocumentType: string(d.DocumentType),
		Description:  d.Description,
		UploadedBy:   d.UploadedBy,
		UploadedAt:   d.UploadedAt,
	}
}
