package services

import (
	"log"

	"github.com/shopspring/decimal"

	portsrepo "github.com/finwage/payroll_backend/internal/core/ports/repositories"
	portssvc "github.com/finwage/payroll_backend/internal/core/ports/services"
	"github.com/finwage/payroll_backend/internal/platform/config"
	"github.com/finwage/payroll_backend/internal/utils/payroll"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, gateway portssvc.AssignmentGateway, storage portssvc.FileStorage) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Payment = NewPaymentService(
		repos.PaymentRepo,
		gateway,
		storage,
		WithDeductionRates(deductionRatesFromConfig(cfg)),
		WithGatewayTimeout(cfg.GatewayTimeout),
		WithPaidDocumentDeletion(cfg.AllowPaidDocumentDeletion),
	)
	container.Report = NewReportService(repos.ReportRepo)

	return container
}

// deductionRatesFromConfig parses the configured PF rates, keeping the
// statutory defaults when a value is absent or malformed.
func deductionRatesFromConfig(cfg *config.Config) payroll.DeductionRates {
	rates := payroll.DefaultDeductionRates()
	if cfg.PfEmployeeRate != "" {
		if rate, err := decimal.NewFromString(cfg.PfEmployeeRate); err == nil {
			rates.EmployeeRate = rate
		} else {
			log.Printf("Warning: Invalid value for PF_EMPLOYEE_RATE ('%s'). Using default %s.\n", cfg.PfEmployeeRate, rates.EmployeeRate.String())
		}
	}
	if cfg.PfEmployerRate != "" {
		if rate, err := decimal.NewFromString(cfg.PfEmployerRate); err == nil {
			rates.EmployerRate = rate
		} else {
			log.Printf("Warning: Invalid value for PF_EMPLOYER_RATE ('%s'). Using default %s.\n", cfg.PfEmployerRate, rates.EmployerRate.String())
		}
	}
	return rates
}
