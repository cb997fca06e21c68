package services_test

import (
	"context"
	"errors"
	"io"
	"strings"
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
	"github.com/finwage/payroll_backend/internal/dto"
)

// --- Mock PaymentRepository ---
type MockPaymentRepository struct {
	mock.Mock
}

var _ portsrepo.PaymentRepositoryFacade = (*MockPaymentRepository)(nil)

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPayments(ctx context.Context, filter portsrepo.ListPaymentsFilter) ([]domain.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindDocumentByID(ctx context.Context, paymentID, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, paymentID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockPaymentRepository) SavePayment(ctx context.Context, payment domain.Payment, entry domain.HistoryEntry) error {
	args := m.Called(ctx, payment, entry)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveLineItem(ctx context.Context, item domain.LineItem, totalAmount decimal.Decimal, entry domain.HistoryEntry) error {
	args := m.Called(ctx, item, totalAmount, entry)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteLineItem(ctx context.Context, paymentID, lineItemID string, totalAmount decimal.Decimal, entry domain.HistoryEntry) error {
	args := m.Called(ctx, paymentID, lineItemID, totalAmount, entry)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePayment(ctx context.Context, payment domain.Payment, entry domain.HistoryEntry) error {
	args := m.Called(ctx, payment, entry)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdatePaymentAndLineItems(ctx context.Context, payment domain.Payment, items []domain.LineItem, entry domain.HistoryEntry) error {
	args := m.Called(ctx, payment, items, entry)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeletePayment(ctx context.Context, paymentID string) error {
	args := m.Called(ctx, paymentID)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveDocument(ctx context.Context, doc domain.Document, entry domain.HistoryEntry) error {
	args := m.Called(ctx, doc, entry)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteDocument(ctx context.Context, paymentID, documentID string, entry domain.HistoryEntry) error {
	args := m.Called(ctx, paymentID, documentID, entry)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindHistoryByPaymentID(ctx context.Context, paymentID string) ([]domain.HistoryEntry, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEntry), args.Error(1)
}

// --- Mock AssignmentGateway ---
type MockAssignmentGateway struct {
	mock.Mock
}

var _ portssvc.AssignmentGateway = (*MockAssignmentGateway)(nil)

func (m *MockAssignmentGateway) GetAssignment(ctx context.Context, assignmentID string) (*domain.AssignmentSummary, error) {
	args := m.Called(ctx, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AssignmentSummary), args.Error(1)
}

func (m *MockAssignmentGateway) ListEligibleAssignments(ctx context.Context, startDate, endDate time.Time) ([]domain.AssignmentSummary, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AssignmentSummary), args.Error(1)
}

func (m *MockAssignmentGateway) Lock(ctx context.Context, assignmentID, paymentID string) error {
	args := m.Called(ctx, assignmentID, paymentID)
	return args.Error(0)
}

func (m *MockAssignmentGateway) Unlock(ctx context.Context, assignmentID string) error {
	args := m.Called(ctx, assignmentID)
	return args.Error(0)
}

// --- Mock FileStorage ---
type MockFileStorage struct {
	mock.Mock
}

var _ portssvc.FileStorage = (*MockFileStorage)(nil)

func (m *MockFileStorage) Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error) {
	args := m.Called(ctx, file, path, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockFileStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockFileStorage) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

// --- Test Suite Setup ---
type PaymentServiceTestSuite struct {
	suite.Suite
	mockRepo    *MockPaymentRepository
	mockGateway *MockAssignmentGateway
	mockStorage *MockFileStorage
	service     portssvc.PaymentSvcFacade
	userID      string
	ctx         context.Context
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockPaymentRepository)
	s.mockGateway = new(MockAssignmentGateway)
	s.mockStorage = new(MockFileStorage)
	s.service = services.NewPaymentService(s.mockRepo, s.mockGateway, s.mockStorage)
	s.userID = uuid.NewString()
	s.ctx = context.Background()
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func (s *PaymentServiceTestSuite) draftPayment(items ...domain.LineItem) *domain.Payment {
	payment := &domain.Payment{
		PaymentID:    uuid.NewString(),
		Status:       domain.PaymentDraft,
		PaymentMonth: 6,
		PaymentYear:  2024,
		LineItems:    items,
		AuditFields: domain.AuditFields{
			CreatedAt:     time.Now().UTC().Add(-time.Hour),
			CreatedBy:     s.userID,
			LastUpdatedAt: time.Now().UTC().Add(-time.Hour),
			LastUpdatedBy: s.userID,
		},
	}
	payment.RecomputeTotal()
	return payment
}

func (s *PaymentServiceTestSuite) lineItem(paymentID, gross string) domain.LineItem {
	grossAmount := dec(gross)
	employeePf := grossAmount.Mul(dec("0.12")).Round(2)
	return domain.LineItem{
		LineItemID:     uuid.NewString(),
		PaymentID:      paymentID,
		AssignmentID:   uuid.NewString(),
		EmployeeID:     uuid.NewString(),
		WorkActivityID: uuid.NewString(),
		AssignmentDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Rate:           grossAmount,
		GrossAmount:    grossAmount,
		EmployeePf:     employeePf,
		VoluntaryPf:    decimal.Zero,
		EmployerPf:     employeePf,
		PfAmount:       employeePf,
		NetAmount:      grossAmount.Sub(employeePf),
	}
}

func eligibleSummary(assignmentID, gross string) *domain.AssignmentSummary {
	return &domain.AssignmentSummary{
		AssignmentID:         assignmentID,
		EmployeeID:           uuid.NewString(),
		EmployeeName:         "Asha Verma",
		WorkActivityID:       uuid.NewString(),
		WorkActivityName:     "Field Survey",
		AssignmentDate:       time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		Rate:                 dec(gross),
		GrossAmount:          dec(gross),
		CompletionPercentage: dec("100"),
		Completed:            true,
		Evaluated:            true,
	}
}

// --- CreateDraft ---

func (s *PaymentServiceTestSuite) TestCreateDraftSuccess() {
	s.mockRepo.On("SavePayment", mock.Anything, mock.AnythingOfType("domain.Payment"), mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return e.ChangeType == domain.ChangeCreated
	})).Return(nil).Once()

	payment, err := s.service.CreateDraft(s.ctx, dto.CreateDraftRequest{PaymentMonth: 6, PaymentYear: 2024, Description: "June payroll"}, s.userID)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.PaymentDraft, payment.Status)
	assert.True(s.T(), payment.TotalAmount.IsZero())
	assert.Equal(s.T(), s.userID, payment.CreatedBy)
	assert.NotEmpty(s.T(), payment.PaymentID)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestCreateDraftRejectsBadMonth() {
	_, err := s.service.CreateDraft(s.ctx, dto.CreateDraftRequest{PaymentMonth: 13, PaymentYear: 2024}, s.userID)
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "SavePayment", mock.Anything, mock.Anything, mock.Anything)
}

// --- AddLineItem ---

func (s *PaymentServiceTestSuite) TestAddLineItemComputesDeductionAndLocks() {
	payment := s.draftPayment()
	assignmentID := uuid.NewString()
	summary := eligibleSummary(assignmentID, "3000")

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockGateway.On("GetAssignment", mock.Anything, assignmentID).Return(summary, nil).Once()
	s.mockGateway.On("Lock", mock.Anything, assignmentID, payment.PaymentID).Return(nil).Once()
	s.mockRepo.On("SaveLineItem", mock.Anything, mock.MatchedBy(func(item domain.LineItem) bool {
		return item.AssignmentID == assignmentID &&
			item.EmployeePf.Equal(dec("360")) &&
			item.EmployerPf.Equal(dec("360")) &&
			item.PfAmount.Equal(dec("360")) &&
			item.NetAmount.Equal(dec("2640"))
	}), mock.MatchedBy(func(total decimal.Decimal) bool {
		return total.Equal(dec("2640"))
	}), mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return e.ChangeType == domain.ChangeLineItemAdded
	})).Return(nil).Once()

	updated, err := s.service.AddLineItem(s.ctx, payment.PaymentID, assignmentID, s.userID)

	require.NoError(s.T(), err)
	assert.True(s.T(), updated.TotalAmount.Equal(dec("2640")))
	require.Len(s.T(), updated.LineItems, 1)
	assert.Nil(s.T(), updated.LineItems[0].SnapshotGrossAmount)
	s.mockRepo.AssertExpectations(s.T())
	s.mockGateway.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestAddLineItemHeldElsewhereIsNotEligible() {
	payment := s.draftPayment()
	assignmentID := uuid.NewString()
	summary := eligibleSummary(assignmentID, "3000")
	summary.LockedByPaymentID = uuid.NewString()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockGateway.On("GetAssignment", mock.Anything, assignmentID).Return(summary, nil).Once()

	_, err := s.service.AddLineItem(s.ctx, payment.PaymentID, assignmentID, s.userID)

	assert.ErrorIs(s.T(), err, apperrors.ErrNotEligible)
	s.mockGateway.AssertNotCalled(s.T(), "Lock", mock.Anything, mock.Anything, mock.Anything)
	s.mockRepo.AssertNotCalled(s.T(), "SaveLineItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestAddLineItemLoserOfLockRaceIsNotEligible() {
	payment := s.draftPayment()
	assignmentID := uuid.NewString()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockGateway.On("GetAssignment", mock.Anything, assignmentID).Return(eligibleSummary(assignmentID, "3000"), nil).Once()
	s.mockGateway.On("Lock", mock.Anything, assignmentID, payment.PaymentID).Return(apperrors.ErrNotEligible).Once()

	_, err := s.service.AddLineItem(s.ctx, payment.PaymentID, assignmentID, s.userID)

	assert.ErrorIs(s.T(), err, apperrors.ErrNotEligible)
	s.mockRepo.AssertNotCalled(s.T(), "SaveLineItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestAddLineItemRepoFailureReleasesLock() {
	payment := s.draftPayment()
	assignmentID := uuid.NewString()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockGateway.On("GetAssignment", mock.Anything, assignmentID).Return(eligibleSummary(assignmentID, "3000"), nil).Once()
	s.mockGateway.On("Lock", mock.Anything, assignmentID, payment.PaymentID).Return(nil).Once()
	s.mockRepo.On("SaveLineItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	s.mockGateway.On("Unlock", mock.Anything, assignmentID).Return(nil).Once()

	_, err := s.service.AddLineItem(s.ctx, payment.PaymentID, assignmentID, s.userID)

	assert.Error(s.T(), err)
	s.mockGateway.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestAddLineItemRejectsNonDraft() {
	payment := s.draftPayment()
	payment.Status = domain.PaymentPendingApproval

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()

	_, err := s.service.AddLineItem(s.ctx, payment.PaymentID, uuid.NewString(), s.userID)

	assert.ErrorIs(s.T(), err, apperrors.ErrInvalidState)
	s.mockGateway.AssertNotCalled(s.T(), "GetAssignment", mock.Anything, mock.Anything)
}

// --- RemoveLineItem ---

func (s *PaymentServiceTestSuite) TestRemoveLineItemUnlocksAndRecomputesTotal() {
	payment := s.draftPayment()
	itemA := s.lineItem(payment.PaymentID, "3000")
	itemB := s.lineItem(payment.PaymentID, "500")
	payment.LineItems = []domain.LineItem{itemA, itemB}
	payment.RecomputeTotal()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockGateway.On("Unlock", mock.Anything, itemA.AssignmentID).Return(nil).Once()
	s.mockRepo.On("DeleteLineItem", mock.Anything, payment.PaymentID, itemA.LineItemID, mock.MatchedBy(func(total decimal.Decimal) bool {
		return total.Equal(dec("440"))
	}), mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return e.ChangeType == domain.ChangeLineItemRemoved
	})).Return(nil).Once()

	updated, err := s.service.RemoveLineItem(s.ctx, payment.PaymentID, itemA.LineItemID, s.userID)

	require.NoError(s.T(), err)
	assert.True(s.T(), updated.TotalAmount.Equal(dec("440")))
	require.Len(s.T(), updated.LineItems, 1)
	assert.Equal(s.T(), itemB.LineItemID, updated.LineItems[0].LineItemID)
	s.mockGateway.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestRemoveLineItemRepoFailureRestoresLock() {
	payment := s.draftPayment()
	item := s.lineItem(payment.PaymentID, "3000")
	payment.LineItems = []domain.LineItem{item}
	payment.RecomputeTotal()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockGateway.On("Unlock", mock.Anything, item.AssignmentID).Return(nil).Once()
	s.mockRepo.On("DeleteLineItem", mock.Anything, payment.PaymentID, item.LineItemID, mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	s.mockGateway.On("Lock", mock.Anything, item.AssignmentID, payment.PaymentID).Return(nil).Once()

	_, err := s.service.RemoveLineItem(s.ctx, payment.PaymentID, item.LineItemID, s.userID)

	assert.Error(s.T(), err)
	s.mockGateway.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestRemoveLineItemUnknownIDIsNotFound() {
	payment := s.draftPayment(s.lineItem("", "100"))

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()

	_, err := s.service.RemoveLineItem(s.ctx, payment.PaymentID, uuid.NewString(), s.userID)

	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)
	s.mockGateway.AssertNotCalled(s.T(), "Unlock", mock.Anything, mock.Anything)
}

// --- SubmitForApproval ---

func (s *PaymentServiceTestSuite) TestSubmitWithoutLineItemsFails() {
	payment := s.draftPayment()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()

	_, err := s.service.SubmitForApproval(s.ctx, payment.PaymentID, "", s.userID)

	assert.ErrorIs(s.T(), err, apperrors.ErrEmptyPayment)
	s.mockGateway.AssertNotCalled(s.T(), "Lock", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestSubmitFreezesSnapshotsAndLocksAll() {
	payment := s.draftPayment()
	itemA := s.lineItem(payment.PaymentID, "3000")
	itemB := s.lineItem(payment.PaymentID, "500")
	payment.LineItems = []domain.LineItem{itemA, itemB}
	payment.RecomputeTotal()

	summaryA := eligibleSummary(itemA.AssignmentID, "3000")
	summaryB := eligibleSummary(itemB.AssignmentID, "500")
	summaryB.EmployeeName = "Bimal Rao"

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockGateway.On("GetAssignment", mock.Anything, itemA.AssignmentID).Return(summaryA, nil).Once()
	s.mockGateway.On("GetAssignment", mock.Anything, itemB.AssignmentID).Return(summaryB, nil).Once()
	s.mockGateway.On("Lock", mock.Anything, itemA.AssignmentID, payment.PaymentID).Return(nil).Once()
	s.mockGateway.On("Lock", mock.Anything, itemB.AssignmentID, payment.PaymentID).Return(nil).Once()
	s.mockRepo.On("UpdatePaymentAndLineItems", mock.Anything, mock.MatchedBy(func(p domain.Payment) bool {
		return p.Status == domain.PaymentPendingApproval
	}), mock.MatchedBy(func(items []domain.LineItem) bool {
		for i := range items {
			if items[i].SnapshotGrossAmount == nil || !items[i].SnapshotGrossAmount.Equal(items[i].GrossAmount) {
				return false
			}
			if items[i].SnapshotNetAmount == nil || !items[i].SnapshotNetAmount.Equal(items[i].NetAmount) {
				return false
			}
			if items[i].SnapshotEmployeeName == nil {
				return false
			}
		}
		return true
	}), mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return e.ChangeType == domain.ChangeSubmitted && e.NewStatus != nil && *e.NewStatus == domain.PaymentPendingApproval
	})).Return(nil).Once()

	updated, err := s.service.SubmitForApproval(s.ctx, payment.PaymentID, "June batch", s.userID)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.PaymentPendingApproval, updated.Status)
	require.Len(s.T(), updated.LineItems, 2)
	assert.Equal(s.T(), "Asha Verma", *updated.LineItems[0].SnapshotEmployeeName)
	assert.Equal(s.T(), "Bimal Rao", *updated.LineItems[1].SnapshotEmployeeName)
	s.mockGateway.AssertExpectations(s.T())
	s.mockRepo.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestSubmitLockFailureReleasesAcquiredLocks() {
	payment := s.draftPayment()
	itemA := s.lineItem(payment.PaymentID, "3000")
	itemB := s.lineItem(payment.PaymentID, "500")
	payment.LineItems = []domain.LineItem{itemA, itemB}
	payment.RecomputeTotal()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockGateway.On("GetAssignment", mock.Anything, itemA.AssignmentID).Return(eligibleSummary(itemA.AssignmentID, "3000"), nil).Once()
	s.mockGateway.On("GetAssignment", mock.Anything, itemB.AssignmentID).Return(eligibleSummary(itemB.AssignmentID, "500"), nil).Once()
	s.mockGateway.On("Lock", mock.Anything, itemA.AssignmentID, payment.PaymentID).Return(nil).Once()
	s.mockGateway.On("Lock", mock.Anything, itemB.AssignmentID, payment.PaymentID).Return(apperrors.ErrNotEligible).Once()
	s.mockGateway.On("Unlock", mock.Anything, itemA.AssignmentID).Return(nil).Once()

	_, err := s.service.SubmitForApproval(s.ctx, payment.PaymentID, "", s.userID)

	assert.ErrorIs(s.T(), err, apperrors.ErrNotEligible)
	s.mockRepo.AssertNotCalled(s.T(), "UpdatePaymentAndLineItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.mockGateway.AssertExpectations(s.T())
}

// --- Approve / RecordPayment ---

func (s *PaymentServiceTestSuite) TestApproveFromPendingApproval() {
	payment := s.draftPayment(s.lineItem("", "3000"))
	payment.Status = domain.PaymentPendingApproval

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockRepo.On("UpdatePayment", mock.Anything, mock.MatchedBy(func(p domain.Payment) bool {
		return p.Status == domain.PaymentApproved
	}), mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return e.ChangeType == domain.ChangeApproved
	})).Return(nil).Once()

	updated, err := s.service.Approve(s.ctx, payment.PaymentID, "looks right", s.userID)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.PaymentApproved, updated.Status)
}

func (s *PaymentServiceTestSuite) TestApproveRejectsDraft() {
	payment := s.draftPayment()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()

	_, err := s.service.Approve(s.ctx, payment.PaymentID, "", s.userID)
	assert.ErrorIs(s.T(), err, apperrors.ErrInvalidState)
}

func (s *PaymentServiceTestSuite) TestRecordPaymentSetsDateAndReference() {
	payment := s.draftPayment(s.lineItem("", "3000"))
	payment.Status = domain.PaymentApproved

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockRepo.On("UpdatePayment", mock.Anything, mock.MatchedBy(func(p domain.Payment) bool {
		return p.Status == domain.PaymentPaid &&
			p.ReferenceNumber == "TXN-889" &&
			p.PaymentDate != nil &&
			p.PaymentDate.Equal(time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC))
	}), mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return e.ChangeType == domain.ChangePaid
	})).Return(nil).Once()

	updated, err := s.service.RecordPayment(s.ctx, payment.PaymentID, dto.RecordPaymentRequest{
		PaymentDate:     "2024-07-05",
		ReferenceNumber: "TXN-889",
	}, s.userID)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.PaymentPaid, updated.Status)
}

func (s *PaymentServiceTestSuite) TestRecordPaymentRejectsBlankReference() {
	payment := s.draftPayment()
	payment.Status = domain.PaymentApproved

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()

	_, err := s.service.RecordPayment(s.ctx, payment.PaymentID, dto.RecordPaymentRequest{PaymentDate: "2024-07-05"}, s.userID)
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *PaymentServiceTestSuite) TestRecordPaymentRejectsBadDate() {
	payment := s.draftPayment()
	payment.Status = domain.PaymentApproved

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()

	_, err := s.service.RecordPayment(s.ctx, payment.PaymentID, dto.RecordPaymentRequest{
		PaymentDate:     "05-07-2024",
		ReferenceNumber: "TXN-1",
	}, s.userID)
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

// --- Cancel ---

func (s *PaymentServiceTestSuite) TestCancelUnlocksEveryAssignment() {
	payment := s.draftPayment()
	itemA := s.lineItem(payment.PaymentID, "3000")
	itemB := s.lineItem(payment.PaymentID, "500")
	payment.LineItems = []domain.LineItem{itemA, itemB}
	payment.Status = domain.PaymentPendingApproval
	payment.RecomputeTotal()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockRepo.On("UpdatePayment", mock.Anything, mock.MatchedBy(func(p domain.Payment) bool {
		return p.Status == domain.PaymentCancelled && p.CancellationReason == "duplicate batch" && p.CancelledAt != nil
	}), mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return e.ChangeType == domain.ChangeCancelled
	})).Return(nil).Once()
	s.mockGateway.On("Unlock", mock.Anything, itemA.AssignmentID).Return(nil).Once()
	s.mockGateway.On("Unlock", mock.Anything, itemB.AssignmentID).Return(nil).Once()

	updated, err := s.service.Cancel(s.ctx, payment.PaymentID, "duplicate batch", s.userID)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.PaymentCancelled, updated.Status)
	s.mockGateway.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestCancelPartialUnlockKeepsCancellation() {
	payment := s.draftPayment()
	itemA := s.lineItem(payment.PaymentID, "3000")
	itemB := s.lineItem(payment.PaymentID, "500")
	payment.LineItems = []domain.LineItem{itemA, itemB}
	payment.Status = domain.PaymentApproved
	payment.RecomputeTotal()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockRepo.On("UpdatePayment", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	s.mockGateway.On("Unlock", mock.Anything, itemA.AssignmentID).Return(errors.New("gateway timeout")).Once()
	s.mockGateway.On("Unlock", mock.Anything, itemB.AssignmentID).Return(nil).Once()

	updated, err := s.service.Cancel(s.ctx, payment.PaymentID, "wrong period", s.userID)

	require.Error(s.T(), err)
	var partial *apperrors.PartialUnlockError
	require.ErrorAs(s.T(), err, &partial)
	assert.Equal(s.T(), []string{itemA.AssignmentID}, partial.StillLockedIDs)
	assert.ErrorIs(s.T(), err, apperrors.ErrGatewayFailure)
	// The cancellation itself stands.
	require.NotNil(s.T(), updated)
	assert.Equal(s.T(), domain.PaymentCancelled, updated.Status)
}

func (s *PaymentServiceTestSuite) TestCancelRejectsDraftAndPaid() {
	for _, status := range []domain.PaymentStatus{domain.PaymentDraft, domain.PaymentPaid, domain.PaymentCancelled} {
		payment := s.draftPayment()
		payment.Status = status
		s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()

		_, err := s.service.Cancel(s.ctx, payment.PaymentID, "reason", s.userID)
		assert.ErrorIs(s.T(), err, apperrors.ErrInvalidState, "status %s", status)
	}
}

// --- DeleteDraft ---

func (s *PaymentServiceTestSuite) TestDeleteDraftUnlocksAndDeletes() {
	payment := s.draftPayment()
	item := s.lineItem(payment.PaymentID, "3000")
	payment.LineItems = []domain.LineItem{item}
	payment.RecomputeTotal()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockGateway.On("Unlock", mock.Anything, item.AssignmentID).Return(nil).Once()
	s.mockRepo.On("DeletePayment", mock.Anything, payment.PaymentID).Return(nil).Once()

	err := s.service.DeleteDraft(s.ctx, payment.PaymentID, s.userID)

	require.NoError(s.T(), err)
	s.mockRepo.AssertExpectations(s.T())
	s.mockGateway.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestDeleteDraftRepoFailureRestoresLocks() {
	payment := s.draftPayment()
	item := s.lineItem(payment.PaymentID, "3000")
	payment.LineItems = []domain.LineItem{item}
	payment.RecomputeTotal()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockGateway.On("Unlock", mock.Anything, item.AssignmentID).Return(nil).Once()
	s.mockRepo.On("DeletePayment", mock.Anything, payment.PaymentID).Return(errors.New("db down")).Once()
	s.mockGateway.On("Lock", mock.Anything, item.AssignmentID, payment.PaymentID).Return(nil).Once()

	err := s.service.DeleteDraft(s.ctx, payment.PaymentID, s.userID)

	assert.Error(s.T(), err)
	s.mockGateway.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestDeleteDraftRejectsSubmitted() {
	payment := s.draftPayment()
	payment.Status = domain.PaymentPendingApproval

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()

	err := s.service.DeleteDraft(s.ctx, payment.PaymentID, s.userID)
	assert.ErrorIs(s.T(), err, apperrors.ErrInvalidState)
}

// --- Documents ---

func (s *PaymentServiceTestSuite) TestAddDocumentStoresFileThenMetadata() {
	payment := s.draftPayment()
	payment.Status = domain.PaymentPaid

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockStorage.On("Upload", mock.Anything, mock.Anything, mock.Anything, "application/pdf").Return("payments/stored/receipt.pdf", nil).Once()
	s.mockRepo.On("SaveDocument", mock.Anything, mock.MatchedBy(func(d domain.Document) bool {
		return d.FileName == "receipt.pdf" && d.StoragePath == "payments/stored/receipt.pdf" && d.DocumentType == domain.DocumentReceipt
	}), mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return e.ChangeType == domain.ChangeDocumentAdded
	})).Return(nil).Once()

	doc, err := s.service.AddDocument(s.ctx, payment.PaymentID, dto.DocumentUpload{
		FileName:     "receipt.pdf",
		FileSize:     42,
		ContentType:  "application/pdf",
		DocumentType: domain.DocumentReceipt,
		Content:      strings.NewReader("pdf bytes"),
	}, s.userID)

	require.NoError(s.T(), err)
	assert.Equal(s.T(), s.userID, doc.UploadedBy)
	s.mockStorage.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestAddDocumentMetadataFailureRemovesStoredFile() {
	payment := s.draftPayment()

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockStorage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("payments/orphan.pdf", nil).Once()
	s.mockRepo.On("SaveDocument", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	s.mockStorage.On("Delete", mock.Anything, "payments/orphan.pdf").Return(nil).Once()

	_, err := s.service.AddDocument(s.ctx, payment.PaymentID, dto.DocumentUpload{
		FileName: "orphan.pdf",
		Content:  strings.NewReader("bytes"),
	}, s.userID)

	assert.Error(s.T(), err)
	s.mockStorage.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestAddDocumentRejectsCancelledPayment() {
	payment := s.draftPayment()
	payment.Status = domain.PaymentCancelled

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()

	_, err := s.service.AddDocument(s.ctx, payment.PaymentID, dto.DocumentUpload{FileName: "x.pdf", Content: strings.NewReader("b")}, s.userID)
	assert.ErrorIs(s.T(), err, apperrors.ErrInvalidState)
	s.mockStorage.AssertNotCalled(s.T(), "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestRemoveDocumentFromPaidBlockedByDefault() {
	payment := s.draftPayment()
	payment.Status = domain.PaymentPaid

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()

	err := s.service.RemoveDocument(s.ctx, payment.PaymentID, uuid.NewString(), s.userID)
	assert.ErrorIs(s.T(), err, apperrors.ErrInvalidState)
}

func (s *PaymentServiceTestSuite) TestRemoveDocumentFromPaidAllowedByPolicy() {
	svc := services.NewPaymentService(s.mockRepo, s.mockGateway, s.mockStorage, services.WithPaidDocumentDeletion(true))

	payment := s.draftPayment()
	payment.Status = domain.PaymentPaid
	docID := uuid.NewString()
	doc := &domain.Document{DocumentID: docID, PaymentID: payment.PaymentID, FileName: "receipt.pdf", StoragePath: "payments/receipt.pdf"}

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockRepo.On("FindDocumentByID", mock.Anything, payment.PaymentID, docID).Return(doc, nil).Once()
	s.mockRepo.On("DeleteDocument", mock.Anything, payment.PaymentID, docID, mock.MatchedBy(func(e domain.HistoryEntry) bool {
		return e.ChangeType == domain.ChangeDocumentRemoved
	})).Return(nil).Once()
	s.mockStorage.On("Delete", mock.Anything, "payments/receipt.pdf").Return(nil).Once()

	err := svc.RemoveDocument(s.ctx, payment.PaymentID, docID, s.userID)
	require.NoError(s.T(), err)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestRemoveDocumentWhileCancellable() {
	payment := s.draftPayment()
	payment.Status = domain.PaymentPendingApproval
	docID := uuid.NewString()
	doc := &domain.Document{DocumentID: docID, PaymentID: payment.PaymentID, StoragePath: "payments/x.pdf"}

	s.mockRepo.On("FindPaymentByID", mock.Anything, payment.PaymentID).Return(payment, nil).Once()
	s.mockRepo.On("FindDocumentByID", mock.Anything, payment.PaymentID, docID).Return(doc, nil).Once()
	s.mockRepo.On("DeleteDocument", mock.Anything, payment.PaymentID, docID, mock.Anything).Return(nil).Once()
	s.mockStorage.On("Delete", mock.Anything, "payments/x.pdf").Return(nil).Once()

	err := s.service.RemoveDocument(s.ctx, payment.PaymentID, docID, s.userID)
	require.NoError(s.T(), err)
}

// --- Queries ---

func (s *PaymentServiceTestSuite) TestGetHistoryUnknownPaymentIsNotFound() {
	paymentID := uuid.NewString()
	s.mockRepo.On("FindPaymentByID", mock.Anything, paymentID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.GetHistory(s.ctx, paymentID)
	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)
}

func (s *PaymentServiceTestSuite) TestListEligibleAssignmentsRejectsInvertedRange() {
	start := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := s.service.ListEligibleAssignments(s.ctx, start, end)
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
