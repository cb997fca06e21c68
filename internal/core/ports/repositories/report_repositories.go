package repositories

import (
	"context"

	"github.com/finwage/payroll_backend/internal/core/domain"
)

// ReportRepository defines the read model for statutory reporting.
type ReportRepository interface {
	// FindPaidPaymentsByPaymentDate retrieves all PAID payments whose recorded
	// payment date falls in the given month/year, with line items loaded.
	// Returns an empty slice (not an error) when nothing matches.
	FindPaidPaymentsByPaymentDate(ctx context.Context, month, year int) ([]domain.Payment, error)
}
