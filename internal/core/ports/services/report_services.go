package services

import (
	"context"

	"github.com/finwage/payroll_backend/internal/core/domain"
)

// ReportSvcFacade generates statutory reports from paid payment batches.
type ReportSvcFacade interface {
	// GeneratePfReport reconstructs the monthly Provident Fund report from all
	// payments PAID in the given month/year (keyed by recorded payment date).
	GeneratePfReport(ctx context.Context, month, year int) (*domain.PfReport, error)
}
