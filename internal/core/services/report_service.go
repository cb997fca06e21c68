package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finwage/payroll_backend/internal/apperrors"
	"github.com/finwage/payroll_backend/internal/core/domain"
	portsrepo "github.com/finwage/payroll_backend/internal/core/ports/repositories"
	portssvc "github.com/finwage/payroll_backend/internal/core/ports/services"
)

// reportService reconstructs the monthly PF report from PAID payments' frozen
// snapshot fields. It never consults live assignment data.
type reportService struct {
	BaseService
	reportRepo portsrepo.ReportRepository
}

// NewReportService creates a new report service.
func NewReportService(reportRepo portsrepo.ReportRepository) portssvc.ReportSvcFacade {
	return &reportService{reportRepo: reportRepo}
}

var _ portssvc.ReportSvcFacade = (*reportService)(nil)

// GeneratePfReport aggregates every payment whose paymentDate falls in the
// given month, grouped per employee. A month with no paid payments yields an
// empty report, not an error.
func (s *reportService) GeneratePfReport(ctx context.Context, month, year int) (*domain.PfReport, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: report month must be between 1 and 12, got %d", apperrors.ErrValidation, month)
	}
	if year <= 0 {
		return nil, fmt.Errorf("%w: report year must be positive, got %d", apperrors.ErrValidation, year)
	}

	payments, err := s.reportRepo.FindPaidPaymentsByPaymentDate(ctx, month, year)
	if err != nil {
		s.LogError(ctx, err, "Failed to load paid payments for report", slog.Int("month", month), slog.Int("year", year))
		return nil, fmt.Errorf("failed to load paid payments: %w", err)
	}

	byEmployee := make(map[string]*domain.EmployeePfTotals)
	distinctPayments := make(map[string]bool)

	for pi := range payments {
		payment := &payments[pi]
		if payment.PaymentDate == nil {
			continue
		}

		// One detail row per (payment, employee) pair.
		details := make(map[string]*domain.PaymentDetail)
		for li := range payment.LineItems {
			item := &payment.LineItems[li]
			if !item.HasSnapshot() {
				// A PAID payment always carries snapshots; skip rather than
				// poison the report if the data is inconsistent.
				s.LogWarn(ctx, "Paid line item missing snapshot, skipped in report", slog.String("payment_id", payment.PaymentID), slog.String("line_item_id", item.LineItemID))
				continue
			}

			detail, ok := details[item.EmployeeID]
			if !ok {
				detail = &domain.PaymentDetail{
					PaymentID:       payment.PaymentID,
					PaymentDate:     *payment.PaymentDate,
					ReferenceNumber: payment.ReferenceNumber,
					GrossAmount:     decimal.Zero,
					EmployeePf:      decimal.Zero,
					VoluntaryPf:     decimal.Zero,
					EmployerPf:      decimal.Zero,
					TotalPf:         decimal.Zero,
					NetAmount:       decimal.Zero,
				}
				details[item.EmployeeID] = detail
			}
			detail.AssignmentCount++
			detail.GrossAmount = detail.GrossAmount.Add(*item.SnapshotGrossAmount)
			detail.EmployeePf = detail.EmployeePf.Add(*item.SnapshotEmployeePf)
			detail.VoluntaryPf = detail.VoluntaryPf.Add(*item.SnapshotVoluntaryPf)
			detail.EmployerPf = detail.EmployerPf.Add(*item.SnapshotEmployerPf)
			detail.TotalPf = detail.TotalPf.Add(*item.SnapshotPfAmount)
			detail.NetAmount = detail.NetAmount.Add(*item.SnapshotNetAmount)

			employee, ok := byEmployee[item.EmployeeID]
			if !ok {
				name := ""
				if item.SnapshotEmployeeName != nil {
					name = *item.SnapshotEmployeeName
				}
				employee = &domain.EmployeePfTotals{
					EmployeeID:       item.EmployeeID,
					EmployeeName:     name,
					TotalGrossAmount: decimal.Zero,
					TotalEmployeePf:  decimal.Zero,
					TotalVoluntaryPf: decimal.Zero,
					TotalEmployerPf:  decimal.Zero,
					TotalPfAmount:    decimal.Zero,
					TotalNetAmount:   decimal.Zero,
				}
				byEmployee[item.EmployeeID] = employee
			}
			employee.TotalAssignments++
			employee.TotalGrossAmount = employee.TotalGrossAmount.Add(*item.SnapshotGrossAmount)
			employee.TotalEmployeePf = employee.TotalEmployeePf.Add(*item.SnapshotEmployeePf)
			employee.TotalVoluntaryPf = employee.TotalVoluntaryPf.Add(*item.SnapshotVoluntaryPf)
			employee.TotalEmployerPf = employee.TotalEmployerPf.Add(*item.SnapshotEmployerPf)
			employee.TotalPfAmount = employee.TotalPfAmount.Add(*item.SnapshotPfAmount)
			employee.TotalNetAmount = employee.TotalNetAmount.Add(*item.SnapshotNetAmount)

			distinctPayments[payment.PaymentID] = true
		}

		employeeIDs := make([]string, 0, len(details))
		for employeeID := range details {
			employeeIDs = append(employeeIDs, employeeID)
		}
		sort.Strings(employeeIDs)
		for _, employeeID := range employeeIDs {
			byEmployee[employeeID].Payments = append(byEmployee[employeeID].Payments, *details[employeeID])
		}
	}

	report := &domain.PfReport{
		Month:     month,
		Year:      year,
		Employees: make([]domain.EmployeePfTotals, 0, len(byEmployee)),
		Totals: domain.PfReportTotals{
			TotalGrossAmount: decimal.Zero,
			TotalEmployeePf:  decimal.Zero,
			TotalVoluntaryPf: decimal.Zero,
			TotalEmployerPf:  decimal.Zero,
			TotalPfAmount:    decimal.Zero,
			TotalNetAmount:   decimal.Zero,
		},
	}
	for _, employee := range byEmployee {
		report.Employees = append(report.Employees, *employee)
	}
	sort.Slice(report.Employees, func(i, j int) bool {
		a, b := report.Employees[i], report.Employees[j]
		if a.EmployeeName != b.EmployeeName {
			return a.EmployeeName < b.EmployeeName
		}
		return a.EmployeeID < b.EmployeeID
	})

	for i := range report.Employees {
		employee := &report.Employees[i]
		report.Totals.TotalAssignments += employee.TotalAssignments
		report.Totals.TotalGrossAmount = report.Totals.TotalGrossAmount.Add(employee.TotalGrossAmount)
		report.Totals.TotalEmployeePf = report.Totals.TotalEmployeePf.Add(employee.TotalEmployeePf)
		report.Totals.TotalVoluntaryPf = report.Totals.TotalVoluntaryPf.Add(employee.TotalVoluntaryPf)
		report.Totals.TotalEmployerPf = report.Totals.TotalEmployerPf.Add(employee.TotalEmployerPf)
		report.Totals.TotalPfAmount = report.Totals.TotalPfAmount.Add(employee.TotalPfAmount)
		report.Totals.TotalNetAmount = report.Totals.TotalNetAmount.Add(employee.TotalNetAmount)
	}
	report.Totals.TotalEmployees = len(report.Employees)
	report.Totals.TotalPayments = len(distinctPayments)

	s.LogInfo(ctx, "PF report generated", slog.Int("month", month), slog.Int("year", year), slog.Int("employees", report.Totals.TotalEmployees), slog.Int("payments", report.Totals.TotalPayments))
	return report, nil
}
