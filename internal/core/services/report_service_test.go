package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/finwage/payroll_backend/internal/apperrors"
	"github.com/finwage/payroll_backend/internal/core/domain"
	portsrepo "github.com/finwage/payroll_backend/internal/core/ports/repositories"
	portssvc "github.com/finwage/payroll_backend/internal/core/ports/services"
	"github.com/finwage/payroll_backend/internal/core/services"
)

// --- Mock ReportRepository ---
type MockReportRepository struct {
	mock.Mock
}

var _ portsrepo.ReportRepository = (*MockReportRepository)(nil)

func (m *MockReportRepository) FindPaidPaymentsByPaymentDate(ctx context.Context, month, year int) ([]domain.Payment, error) {
	args := m.Called(ctx, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// --- Test Suite Setup ---
type ReportServiceTestSuite struct {
	suite.Suite
	mockRepo *MockReportRepository
	service  portssvc.ReportSvcFacade
	ctx      context.Context
}

func (s *ReportServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockReportRepository)
	s.service = services.NewReportService(s.mockRepo)
	s.ctx = context.Background()
}

// snapshotItem builds a line item the way submission leaves it: live fields
// populated and frozen into the snapshot fields.
func snapshotItem(employeeID, employeeName, gross string) domain.LineItem {
	grossAmount := dec(gross)
	employeePf := grossAmount.Mul(dec("0.12")).Round(2)
	item := domain.LineItem{
		LineItemID:           uuid.NewString(),
		AssignmentID:         uuid.NewString(),
		EmployeeID:           employeeID,
		WorkActivityID:       uuid.NewString(),
		AssignmentDate:       time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Rate:                 grossAmount,
		GrossAmount:          grossAmount,
		CompletionPercentage: dec("100"),
		EmployeePf:           employeePf,
		VoluntaryPf:          decimal.Zero,
		EmployerPf:           employeePf,
		PfAmount:             employeePf,
		NetAmount:            grossAmount.Sub(employeePf),
	}
	item.TakeSnapshot(employeeName, "Field Survey")
	return item
}

func paidPayment(paymentDate time.Time, reference string, items ...domain.LineItem) domain.Payment {
	payment := domain.Payment{
		PaymentID:       uuid.NewString(),
		Status:          domain.PaymentPaid,
		PaymentMonth:    int(paymentDate.Month()),
		PaymentYear:     paymentDate.Year(),
		PaymentDate:     &paymentDate,
		ReferenceNumber: reference,
		LineItems:       items,
	}
	payment.RecomputeTotal()
	return payment
}

func (s *ReportServiceTestSuite) TestGeneratePfReportAggregatesPerEmployee() {
	payDate := time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC)
	payment := paidPayment(payDate, "TXN-1",
		snapshotItem("emp-a", "Asha Verma", "3000"),
		snapshotItem("emp-b", "Bimal Rao", "500"),
	)

	s.mockRepo.On("FindPaidPaymentsByPaymentDate", s.ctx, 7, 2024).Return([]domain.Payment{payment}, nil).Once()

	report, err := s.service.GeneratePfReport(s.ctx, 7, 2024)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), 7, report.Month)
	assert.Equal(s.T(), 2024, report.Year)
	require.Len(s.T(), report.Employees, 2)

	// Ordered by name: Asha before Bimal.
	asha := report.Employees[0]
	assert.Equal(s.T(), "emp-a", asha.EmployeeID)
	assert.Equal(s.T(), "Asha Verma", asha.EmployeeName)
	assert.Equal(s.T(), 1, asha.TotalAssignments)
	assert.True(s.T(), asha.TotalGrossAmount.Equal(dec("3000")))
	assert.True(s.T(), asha.TotalEmployeePf.Equal(dec("360")))
	assert.True(s.T(), asha.TotalEmployerPf.Equal(dec("360")))
	assert.True(s.T(), asha.TotalNetAmount.Equal(dec("2640")))
	require.Len(s.T(), asha.Payments, 1)
	assert.Equal(s.T(), payment.PaymentID, asha.Payments[0].PaymentID)
	assert.Equal(s.T(), "TXN-1", asha.Payments[0].ReferenceNumber)
	assert.True(s.T(), asha.Payments[0].TotalPf.Equal(dec("360")))

	bimal := report.Employees[1]
	assert.Equal(s.T(), "Bimal Rao", bimal.EmployeeName)
	assert.True(s.T(), bimal.TotalEmployeePf.Equal(dec("60")))

	assert.Equal(s.T(), 2, report.Totals.TotalEmployees)
	assert.Equal(s.T(), 1, report.Totals.TotalPayments)
	assert.Equal(s.T(), 2, report.Totals.TotalAssignments)
	assert.True(s.T(), report.Totals.TotalGrossAmount.Equal(dec("3500")))
	assert.True(s.T(), report.Totals.TotalEmployeePf.Equal(dec("420")))
	assert.True(s.T(), report.Totals.TotalNetAmount.Equal(dec("3080")))
}

func (s *ReportServiceTestSuite) TestGeneratePfReportCountsPaymentsOnce() {
	payDate := time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC)
	first := paidPayment(payDate, "TXN-1",
		snapshotItem("emp-a", "Asha Verma", "1000"),
		snapshotItem("emp-b", "Bimal Rao", "1000"),
	)
	second := paidPayment(payDate, "TXN-2",
		snapshotItem("emp-a", "Asha Verma", "2000"),
	)

	s.mockRepo.On("FindPaidPaymentsByPaymentDate", s.ctx, 7, 2024).Return([]domain.Payment{first, second}, nil).Once()

	report, err := s.service.GeneratePfReport(s.ctx, 7, 2024)

	require.NoError(s.T(), err)
	// Two payments, even though the first spans two employees.
	assert.Equal(s.T(), 2, report.Totals.TotalPayments)

	asha := report.Employees[0]
	require.Len(s.T(), asha.Payments, 2)
	assert.Equal(s.T(), 2, asha.TotalAssignments)
	assert.True(s.T(), asha.TotalGrossAmount.Equal(dec("3000")))
}

func (s *ReportServiceTestSuite) TestGeneratePfReportEmptyMonth() {
	s.mockRepo.On("FindPaidPaymentsByPaymentDate", s.ctx, 2, 2024).Return([]domain.Payment{}, nil).Once()

	report, err := s.service.GeneratePfReport(s.ctx, 2, 2024)

	require.NoError(s.T(), err)
	assert.Empty(s.T(), report.Employees)
	assert.Equal(s.T(), 0, report.Totals.TotalPayments)
	assert.True(s.T(), report.Totals.TotalGrossAmount.IsZero())
}

func (s *ReportServiceTestSuite) TestGeneratePfReportSkipsItemsWithoutSnapshot() {
	payDate := time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC)
	good := snapshotItem("emp-a", "Asha Verma", "1000")
	bad := domain.LineItem{
		LineItemID:   uuid.NewString(),
		AssignmentID: uuid.NewString(),
		EmployeeID:   "emp-z",
		GrossAmount:  dec("9999"),
		NetAmount:    dec("9999"),
	}
	payment := paidPayment(payDate, "TXN-1", good, bad)

	s.mockRepo.On("FindPaidPaymentsByPaymentDate", s.ctx, 7, 2024).Return([]domain.Payment{payment}, nil).Once()

	report, err := s.service.GeneratePfReport(s.ctx, 7, 2024)

	require.NoError(s.T(), err)
	require.Len(s.T(), report.Employees, 1)
	assert.Equal(s.T(), "emp-a", report.Employees[0].EmployeeID)
	assert.True(s.T(), report.Totals.TotalGrossAmount.Equal(dec("1000")))
}

func (s *ReportServiceTestSuite) TestGeneratePfReportRejectsBadMonth() {
	_, err := s.service.GeneratePfReport(s.ctx, 0, 2024)
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "FindPaidPaymentsByPaymentDate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ReportServiceTestSuite) TestGeneratePfReportPropagatesRepoError() {
	s.mockRepo.On("FindPaidPaymentsByPaymentDate", s.ctx, 7, 2024).Return(nil, errors.New("db down")).Once()

	_, err := s.service.GeneratePfReport(s.ctx, 7, 2024)
	assert.Error(s.T(), err)
}

func TestReportService(t *testing.T) {
	suite.Run(t, new(ReportServiceTestSuite))
}
