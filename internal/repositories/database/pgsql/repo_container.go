package pgsql

import (
	portsrepo "github.com/finwage/payroll_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	paymentRepo := newPgxPaymentRepository(dbPool)
	reportRepo := newPgxReportRepository(dbPool)

	return portsrepo.RepositoryProvider{
		PaymentRepo: paymentRepo,
		ReportRepo:  reportRepo,
	}
}
