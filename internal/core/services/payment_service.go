package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwage/payroll_backend/internal/apperrors"
	"github.com/finwage/payroll_backend/internal/core/domain"
	portsrepo "github.com/finwage/payroll_backend/internal/core/ports/repositories"
	portssvc "github.com/finwage/payroll_backend/internal/core/ports/services"
	"github.com/finwage/payroll_backend/internal/dto"
	"github.com/finwage/payroll_backend/internal/utils/payroll"
)

const defaultGatewayTimeout = 10 * time.Second

// paymentService implements the payment lifecycle state machine and the
// line-item ledger on top of it.
type paymentService struct {
	BaseService
	paymentRepo portsrepo.PaymentRepositoryFacade
	gateway     portssvc.AssignmentGateway
	storage     portssvc.FileStorage

	rates                payroll.DeductionRates
	gatewayTimeout       time.Duration
	allowPaidDocDeletion bool

	// locks serializes lifecycle operations per payment.
	locks *keyedMutex
}

// PaymentServiceOption is a functional option for configuring the payment service.
type PaymentServiceOption func(*paymentService)

// WithDeductionRates overrides the statutory PF rates.
func WithDeductionRates(rates payroll.DeductionRates) PaymentServiceOption {
	return func(s *paymentService) {
		s.rates = rates
	}
}

// WithGatewayTimeout bounds each assignment-gateway call.
func WithGatewayTimeout(d time.Duration) PaymentServiceOption {
	return func(s *paymentService) {
		s.gatewayTimeout = d
	}
}

// WithPaidDocumentDeletion permits removing documents from PAID payments for
// corrective reasons. Off by default.
func WithPaidDocumentDeletion(allow bool) PaymentServiceOption {
	return func(s *paymentService) {
		s.allowPaidDocDeletion = allow
	}
}

// NewPaymentService creates a new payment service.
func NewPaymentService(paymentRepo portsrepo.PaymentRepositoryFacade, gateway portssvc.AssignmentGateway, storage portssvc.FileStorage, options ...PaymentServiceOption) portssvc.PaymentSvcFacade {
	svc := &paymentService{
		paymentRepo:    paymentRepo,
		gateway:        gateway,
		storage:        storage,
		rates:          payroll.DefaultDeductionRates(),
		gatewayTimeout: defaultGatewayTimeout,
		locks:          newKeyedMutex(),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure paymentService implements the facade.
var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// gatewayCtx bounds an assignment-gateway call with the configured timeout.
func (s *paymentService) gatewayCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.gatewayTimeout)
}

// --- Lifecycle operations ---

// CreateDraft creates a new DRAFT payment for a payroll period.
func (s *paymentService) CreateDraft(ctx context.Context, req dto.CreateDraftRequest, creatorUserID string) (*domain.Payment, error) {
	if req.PaymentMonth < 1 || req.PaymentMonth > 12 {
		return nil, fmt.Errorf("%w: payment month must be between 1 and 12, got %d", apperrors.ErrValidation, req.PaymentMonth)
	}
	if req.PaymentYear <= 0 {
		return nil, fmt.Errorf("%w: payment year must be positive, got %d", apperrors.ErrValidation, req.PaymentYear)
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		PaymentID:    uuid.NewString(),
		Status:       domain.PaymentDraft,
		PaymentMonth: req.PaymentMonth,
		PaymentYear:  req.PaymentYear,
		Description:  req.Description,
		TotalAmount:  decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	entry := s.newHistoryEntry(&payment, domain.ChangeCreated, creatorUserID, now)
	newStatus := payment.Status
	newAmount := payment.TotalAmount
	entry.NewStatus = &newStatus
	entry.NewAmount = &newAmount
	entry.ChangeDescription = fmt.Sprintf("Payment draft created for period %d/%d", req.PaymentMonth, req.PaymentYear)

	if err := s.paymentRepo.SavePayment(ctx, payment, entry); err != nil {
		s.LogError(ctx, err, "Failed to save payment draft", slog.String("payment_id", payment.PaymentID))
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.LogInfo(ctx, "Payment draft created", slog.String("payment_id", payment.PaymentID), slog.Int("month", req.PaymentMonth), slog.Int("year", req.PaymentYear))
	return &payment, nil
}

// AddLineItem attaches an eligible assignment to a DRAFT payment. The gateway
// lock taken here is the cross-payment exclusion preventing double payment.
func (s *paymentService) AddLineItem(ctx context.Context, paymentID, assignmentID, userID string) (*domain.Payment, error) {
	s.locks.Lock(paymentID)
	defer s.locks.Unlock(paymentID)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	if !payment.IsEditable() {
		return nil, fmt.Errorf("%w: cannot add line items while payment is %s", apperrors.ErrInvalidState, payment.Status)
	}

	gwCtx, cancel := s.gatewayCtx(ctx)
	summary, err := s.gateway.GetAssignment(gwCtx, assignmentID)
	cancel()
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("assignment %s: %w", assignmentID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: fetching assignment %s: %v", apperrors.ErrGatewayFailure, assignmentID, err)
	}

	if !summary.Eligible() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNotEligible, summary.IneligibilityReason())
	}

	// Take the gateway lock before touching our own state. Exactly one of two
	// racing payments wins this call.
	gwCtx, cancel = s.gatewayCtx(ctx)
	err = s.gateway.Lock(gwCtx, assignmentID, paymentID)
	cancel()
	if err != nil {
		if errors.Is(err, apperrors.ErrNotEligible) {
			return nil, fmt.Errorf("%w: assignment %s was claimed by another payment", apperrors.ErrNotEligible, assignmentID)
		}
		return nil, fmt.Errorf("%w: locking assignment %s: %v", apperrors.ErrGatewayFailure, assignmentID, err)
	}

	deduction, err := payroll.ComputeDeduction(summary.GrossAmount, s.rates, decimal.Zero)
	if err != nil {
		s.unlockBestEffort(ctx, assignmentID, paymentID)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := time.Now().UTC()
	item := domain.LineItem{
		LineItemID:           uuid.NewString(),
		PaymentID:            paymentID,
		AssignmentID:         assignmentID,
		EmployeeID:           summary.EmployeeID,
		WorkActivityID:       summary.WorkActivityID,
		AssignmentDate:       summary.AssignmentDate,
		Rate:                 summary.Rate,
		GrossAmount:          summary.GrossAmount,
		CompletionPercentage: summary.CompletionPercentage,
		EmployeePf:           deduction.EmployeePf,
		VoluntaryPf:          deduction.VoluntaryPf,
		EmployerPf:           deduction.EmployerPf,
		PfAmount:             deduction.PfAmount,
		NetAmount:            deduction.NetAmount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	previousAmount := payment.TotalAmount
	payment.LineItems = append(payment.LineItems, item)
	payment.RecomputeTotal()

	entry := s.newHistoryEntry(payment, domain.ChangeLineItemAdded, userID, now)
	newAmount := payment.TotalAmount
	entry.PreviousAmount = &previousAmount
	entry.NewAmount = &newAmount
	entry.ChangeDescription = fmt.Sprintf("Assignment %s added for employee %s (net %s)", assignmentID, summary.EmployeeID, item.NetAmount.String())

	if err := s.paymentRepo.SaveLineItem(ctx, item, payment.TotalAmount, entry); err != nil {
		// The gateway lock is ours; give it back before reporting.
		s.unlockBestEffort(ctx, assignmentID, paymentID)
		s.LogError(ctx, err, "Failed to save line item", slog.String("payment_id", paymentID), slog.String("assignment_id", assignmentID))
		return nil, fmt.Errorf("failed to save line item: %w", err)
	}

	payment.LastUpdatedAt = now
	payment.LastUpdatedBy = userID
	s.LogInfo(ctx, "Line item added", slog.String("payment_id", paymentID), slog.String("assignment_id", assignmentID), slog.String("total_amount", payment.TotalAmount.String()))
	return payment, nil
}

// RemoveLineItem detaches a line item from a DRAFT payment and releases its
// assignment. The unlock happens first so a repository failure can re-lock it,
// leaving no partial effect.
func (s *paymentService) RemoveLineItem(ctx context.Context, paymentID, lineItemID, userID string) (*domain.Payment, error) {
	s.locks.Lock(paymentID)
	defer s.locks.Unlock(paymentID)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	if !payment.IsEditable() {
		return nil, fmt.Errorf("%w: cannot remove line items while payment is %s", apperrors.ErrInvalidState, payment.Status)
	}

	index := -1
	for i := range payment.LineItems {
		if payment.LineItems[i].LineItemID == lineItemID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("line item %s: %w", lineItemID, apperrors.ErrNotFound)
	}
	item := payment.LineItems[index]

	comp := &compensator{}
	gwCtx, cancel := s.gatewayCtx(ctx)
	err = s.gateway.Unlock(gwCtx, item.AssignmentID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: unlocking assignment %s: %v", apperrors.ErrGatewayFailure, item.AssignmentID, err)
	}
	comp.onSuccess(func(ctx context.Context) error {
		gwCtx, cancel := s.gatewayCtx(ctx)
		defer cancel()
		return s.gateway.Lock(gwCtx, item.AssignmentID, paymentID)
	})

	now := time.Now().UTC()
	previousAmount := payment.TotalAmount
	payment.LineItems = append(payment.LineItems[:index], payment.LineItems[index+1:]...)
	payment.RecomputeTotal()

	entry := s.newHistoryEntry(payment, domain.ChangeLineItemRemoved, userID, now)
	newAmount := payment.TotalAmount
	entry.PreviousAmount = &previousAmount
	entry.NewAmount = &newAmount
	entry.ChangeDescription = fmt.Sprintf("Assignment %s removed for employee %s", item.AssignmentID, item.EmployeeID)

	if err := s.paymentRepo.DeleteLineItem(ctx, paymentID, lineItemID, payment.TotalAmount, entry); err != nil {
		for _, undoErr := range comp.Rollback(ctx) {
			s.LogError(ctx, undoErr, "Compensation failed while re-locking assignment", slog.String("assignment_id", item.AssignmentID))
		}
		return nil, fmt.Errorf("failed to delete line item: %w", err)
	}

	s.LogInfo(ctx, "Line item removed", slog.String("payment_id", paymentID), slog.String("line_item_id", lineItemID), slog.String("total_amount", payment.TotalAmount.String()))
	return payment, nil
}

// SubmitForApproval freezes every line item's financial facts into snapshot
// fields, locks every referenced assignment and moves the payment to
// PENDING_APPROVAL. If any lock fails, every lock taken during this call is
// released and the payment stays DRAFT.
func (s *paymentService) SubmitForApproval(ctx context.Context, paymentID, remarks, userID string) (*domain.Payment, error) {
	s.locks.Lock(paymentID)
	defer s.locks.Unlock(paymentID)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	if payment.Status != domain.PaymentDraft {
		return nil, fmt.Errorf("%w: only DRAFT payments can be submitted, payment is %s", apperrors.ErrInvalidState, payment.Status)
	}
	if len(payment.LineItems) == 0 {
		return nil, fmt.Errorf("%w: submit requires at least one line item", apperrors.ErrEmptyPayment)
	}

	// Resolve employee and activity names for the snapshots before taking any
	// locks, so a read failure needs no compensation.
	summaries := make(map[string]*domain.AssignmentSummary, len(payment.LineItems))
	for i := range payment.LineItems {
		assignmentID := payment.LineItems[i].AssignmentID
		gwCtx, cancel := s.gatewayCtx(ctx)
		summary, err := s.gateway.GetAssignment(gwCtx, assignmentID)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("%w: fetching assignment %s for snapshot: %v", apperrors.ErrGatewayFailure, assignmentID, err)
		}
		summaries[assignmentID] = summary
	}

	comp := &compensator{}
	for i := range payment.LineItems {
		assignmentID := payment.LineItems[i].AssignmentID
		gwCtx, cancel := s.gatewayCtx(ctx)
		err := s.gateway.Lock(gwCtx, assignmentID, paymentID)
		cancel()
		if err != nil {
			for _, undoErr := range comp.Rollback(ctx) {
				s.LogError(ctx, undoErr, "Compensation failed while unlocking assignment", slog.String("payment_id", paymentID))
			}
			if errors.Is(err, apperrors.ErrNotEligible) {
				return nil, fmt.Errorf("%w: assignment %s is held by another payment", apperrors.ErrNotEligible, assignmentID)
			}
			return nil, fmt.Errorf("%w: locking assignment %s: %v", apperrors.ErrGatewayFailure, assignmentID, err)
		}
		id := assignmentID
		comp.onSuccess(func(ctx context.Context) error {
			gwCtx, cancel := s.gatewayCtx(ctx)
			defer cancel()
			return s.gateway.Unlock(gwCtx, id)
		})
	}

	now := time.Now().UTC()
	previousStatus := payment.Status
	for i := range payment.LineItems {
		summary := summaries[payment.LineItems[i].AssignmentID]
		payment.LineItems[i].TakeSnapshot(summary.EmployeeName, summary.WorkActivityName)
		payment.LineItems[i].LastUpdatedAt = now
		payment.LineItems[i].LastUpdatedBy = userID
	}
	payment.Status = domain.PaymentPendingApproval
	payment.LastUpdatedAt = now
	payment.LastUpdatedBy = userID

	entry := s.newHistoryEntry(payment, domain.ChangeSubmitted, userID, now)
	newStatus := payment.Status
	amount := payment.TotalAmount
	entry.PreviousStatus = &previousStatus
	entry.NewStatus = &newStatus
	entry.PreviousAmount = &amount
	entry.NewAmount = &amount
	entry.Remarks = remarks
	entry.ChangeDescription = fmt.Sprintf("Submitted for approval with %d line item(s), total %s", len(payment.LineItems), payment.TotalAmount.String())

	if err := s.paymentRepo.UpdatePaymentAndLineItems(ctx, *payment, payment.LineItems, entry); err != nil {
		for _, undoErr := range comp.Rollback(ctx) {
			s.LogError(ctx, undoErr, "Compensation failed while unlocking assignment", slog.String("payment_id", paymentID))
		}
		s.LogError(ctx, err, "Failed to persist submission", slog.String("payment_id", paymentID))
		return nil, fmt.Errorf("failed to submit payment: %w", err)
	}

	s.LogInfo(ctx, "Payment submitted for approval", slog.String("payment_id", paymentID), slog.Int("line_items", len(payment.LineItems)), slog.String("total_amount", payment.TotalAmount.String()))
	return payment, nil
}

// Approve moves a PENDING_APPROVAL payment to APPROVED.
func (s *paymentService) Approve(ctx context.Context, paymentID, remarks, userID string) (*domain.Payment, error) {
	s.locks.Lock(paymentID)
	defer s.locks.Unlock(paymentID)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	if payment.Status != domain.PaymentPendingApproval {
		return nil, fmt.Errorf("%w: only PENDING_APPROVAL payments can be approved, payment is %s", apperrors.ErrInvalidState, payment.Status)
	}

	now := time.Now().UTC()
	previousStatus := payment.Status
	payment.Status = domain.PaymentApproved
	payment.LastUpdatedAt = now
	payment.LastUpdatedBy = userID

	entry := s.newHistoryEntry(payment, domain.ChangeApproved, userID, now)
	newStatus := payment.Status
	entry.PreviousStatus = &previousStatus
	entry.NewStatus = &newStatus
	entry.Remarks = remarks
	entry.ChangeDescription = "Payment approved"

	if err := s.paymentRepo.UpdatePayment(ctx, *payment, entry); err != nil {
		s.LogError(ctx, err, "Failed to approve payment", slog.String("payment_id", paymentID))
		return nil, fmt.Errorf("failed to approve payment: %w", err)
	}

	s.LogInfo(ctx, "Payment approved", slog.String("payment_id", paymentID))
	return payment, nil
}

// RecordPayment records the actual money transfer and moves the payment to PAID.
func (s *paymentService) RecordPayment(ctx context.Context, paymentID string, req dto.RecordPaymentRequest, userID string) (*domain.Payment, error) {
	s.locks.Lock(paymentID)
	defer s.locks.Unlock(paymentID)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	if payment.Status != domain.PaymentApproved {
		return nil, fmt.Errorf("%w: only APPROVED payments can be recorded as paid, payment is %s", apperrors.ErrInvalidState, payment.Status)
	}
	if req.ReferenceNumber == "" {
		return nil, fmt.Errorf("%w: reference number is required", apperrors.ErrValidation)
	}
	if req.PaymentDate == "" {
		return nil, fmt.Errorf("%w: payment date is required", apperrors.ErrValidation)
	}
	paymentDate, err := time.Parse(time.DateOnly, req.PaymentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: payment date must be YYYY-MM-DD, got %q", apperrors.ErrValidation, req.PaymentDate)
	}

	now := time.Now().UTC()
	previousStatus := payment.Status
	payment.Status = domain.PaymentPaid
	payment.PaymentDate = &paymentDate
	payment.ReferenceNumber = req.ReferenceNumber
	payment.LastUpdatedAt = now
	payment.LastUpdatedBy = userID

	entry := s.newHistoryEntry(payment, domain.ChangePaid, userID, now)
	newStatus := payment.Status
	amount := payment.TotalAmount
	entry.PreviousStatus = &previousStatus
	entry.NewStatus = &newStatus
	entry.PreviousAmount = &amount
	entry.NewAmount = &amount
	entry.Remarks = req.Remarks
	entry.ChangeDescription = fmt.Sprintf("Payment recorded on %s, reference %s", req.PaymentDate, req.ReferenceNumber)

	if err := s.paymentRepo.UpdatePayment(ctx, *payment, entry); err != nil {
		s.LogError(ctx, err, "Failed to record payment", slog.String("payment_id", paymentID))
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.LogInfo(ctx, "Payment recorded", slog.String("payment_id", paymentID), slog.String("reference", req.ReferenceNumber))
	return payment, nil
}

// Cancel abandons a submitted or approved payment. The cancellation is
// persisted first and never reverted; the unlock sweep follows. If unlocking
// fails partway the payment stays CANCELLED and the error names the
// assignments that remain locked.
func (s *paymentService) Cancel(ctx context.Context, paymentID, reason, userID string) (*domain.Payment, error) {
	s.locks.Lock(paymentID)
	defer s.locks.Unlock(paymentID)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	if !payment.IsCancellable() {
		return nil, fmt.Errorf("%w: only PENDING_APPROVAL or APPROVED payments can be cancelled, payment is %s", apperrors.ErrInvalidState, payment.Status)
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: cancellation reason is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	previousStatus := payment.Status
	payment.Status = domain.PaymentCancelled
	payment.CancellationReason = reason
	payment.CancelledBy = userID
	payment.CancelledAt = &now
	payment.LastUpdatedAt = now
	payment.LastUpdatedBy = userID

	entry := s.newHistoryEntry(payment, domain.ChangeCancelled, userID, now)
	newStatus := payment.Status
	entry.PreviousStatus = &previousStatus
	entry.NewStatus = &newStatus
	entry.Remarks = reason
	entry.ChangeDescription = "Payment cancelled: " + reason

	if err := s.paymentRepo.UpdatePayment(ctx, *payment, entry); err != nil {
		s.LogError(ctx, err, "Failed to cancel payment", slog.String("payment_id", paymentID))
		return nil, fmt.Errorf("failed to cancel payment: %w", err)
	}

	var stillLocked []string
	var lastErr error
	for i := range payment.LineItems {
		assignmentID := payment.LineItems[i].AssignmentID
		gwCtx, cancel := s.gatewayCtx(ctx)
		err := s.gateway.Unlock(gwCtx, assignmentID)
		cancel()
		if err != nil {
			stillLocked = append(stillLocked, assignmentID)
			lastErr = err
			s.LogError(ctx, err, "Failed to unlock assignment after cancellation", slog.String("payment_id", paymentID), slog.String("assignment_id", assignmentID))
		}
	}
	if len(stillLocked) > 0 {
		return payment, &apperrors.PartialUnlockError{
			PaymentID:      paymentID,
			StillLockedIDs: stillLocked,
			Cause:          lastErr,
		}
	}

	s.LogInfo(ctx, "Payment cancelled", slog.String("payment_id", paymentID), slog.Int("assignments_unlocked", len(payment.LineItems)))
	return payment, nil
}

// DeleteDraft destroys a DRAFT payment, releasing its assignments. The unlock
// sweep runs first so a repository failure can re-lock and leave no partial
// effect.
func (s *paymentService) DeleteDraft(ctx context.Context, paymentID, userID string) error {
	s.locks.Lock(paymentID)
	defer s.locks.Unlock(paymentID)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	if payment.Status != domain.PaymentDraft {
		return fmt.Errorf("%w: only DRAFT payments can be deleted, payment is %s", apperrors.ErrInvalidState, payment.Status)
	}

	comp := &compensator{}
	for i := range payment.LineItems {
		assignmentID := payment.LineItems[i].AssignmentID
		gwCtx, cancel := s.gatewayCtx(ctx)
		err := s.gateway.Unlock(gwCtx, assignmentID)
		cancel()
		if err != nil {
			for _, undoErr := range comp.Rollback(ctx) {
				s.LogError(ctx, undoErr, "Compensation failed while re-locking assignment", slog.String("payment_id", paymentID))
			}
			return fmt.Errorf("%w: unlocking assignment %s: %v", apperrors.ErrGatewayFailure, assignmentID, err)
		}
		id := assignmentID
		comp.onSuccess(func(ctx context.Context) error {
			gwCtx, cancel := s.gatewayCtx(ctx)
			defer cancel()
			return s.gateway.Lock(gwCtx, id, paymentID)
		})
	}

	if err := s.paymentRepo.DeletePayment(ctx, paymentID); err != nil {
		for _, undoErr := range comp.Rollback(ctx) {
			s.LogError(ctx, undoErr, "Compensation failed while re-locking assignment", slog.String("payment_id", paymentID))
		}
		s.LogError(ctx, err, "Failed to delete payment draft", slog.String("payment_id", paymentID))
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	// Stored document binaries are orphaned once the rows are gone; removal is
	// best effort.
	for i := range payment.Documents {
		if err := s.storage.Delete(ctx, payment.Documents[i].StoragePath); err != nil {
			s.LogWarn(ctx, "Failed to delete stored document file", slog.String("path", payment.Documents[i].StoragePath), slog.String("error", err.Error()))
		}
	}

	s.LogInfo(ctx, "Payment draft deleted", slog.String("payment_id", paymentID), slog.Int("assignments_unlocked", len(payment.LineItems)))
	return nil
}

// --- Documents ---

// AddDocument stores an uploaded artifact and attaches its metadata.
func (s *paymentService) AddDocument(ctx context.Context, paymentID string, upload dto.DocumentUpload, userID string) (*domain.Document, error) {
	s.locks.Lock(paymentID)
	defer s.locks.Unlock(paymentID)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	if payment.Status == domain.PaymentCancelled {
		return nil, fmt.Errorf("%w: documents cannot be attached to a CANCELLED payment", apperrors.ErrInvalidState)
	}
	if upload.FileName == "" {
		return nil, fmt.Errorf("%w: file name is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	doc := domain.Document{
		DocumentID:   uuid.NewString(),
		PaymentID:    paymentID,
		FileName:     upload.FileName,
		FileSize:     upload.FileSize,
		ContentType:  upload.ContentType,
		DocumentType: upload.DocumentType,
		Description:  upload.Description,
		UploadedBy:   userID,
		UploadedAt:   now,
	}

	storagePath := path.Join("payments", paymentID, doc.DocumentID+"_"+upload.FileName)
	storedPath, err := s.storage.Upload(ctx, upload.Content, storagePath, upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: storing document: %v", apperrors.ErrGatewayFailure, err)
	}
	doc.StoragePath = storedPath

	entry := s.newHistoryEntry(payment, domain.ChangeDocumentAdded, userID, now)
	entry.ChangeDescription = fmt.Sprintf("Document %s attached (%s)", upload.FileName, doc.DocumentType)

	if err := s.paymentRepo.SaveDocument(ctx, doc, entry); err != nil {
		if delErr := s.storage.Delete(ctx, storedPath); delErr != nil {
			s.LogWarn(ctx, "Failed to delete stored file after metadata failure", slog.String("path", storedPath), slog.String("error", delErr.Error()))
		}
		s.LogError(ctx, err, "Failed to save document metadata", slog.String("payment_id", paymentID))
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.LogInfo(ctx, "Document attached", slog.String("payment_id", paymentID), slog.String("document_id", doc.DocumentID), slog.String("file_name", doc.FileName))
	return &doc, nil
}

// RemoveDocument deletes a document where policy permits: whenever the payment
// is still cancellable, and from PAID payments only when the corrective
// deletion policy is enabled.
func (s *paymentService) RemoveDocument(ctx context.Context, paymentID, documentID, userID string) error {
	s.locks.Lock(paymentID)
	defer s.locks.Unlock(paymentID)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	allowed := payment.IsCancellable() || (payment.Status == domain.PaymentPaid && s.allowPaidDocDeletion)
	if !allowed {
		return fmt.Errorf("%w: documents cannot be removed while payment is %s", apperrors.ErrInvalidState, payment.Status)
	}

	doc, err := s.paymentRepo.FindDocumentByID(ctx, paymentID, documentID)
	if err != nil {
		return fmt.Errorf("failed to find document %s: %w", documentID, err)
	}

	now := time.Now().UTC()
	entry := s.newHistoryEntry(payment, domain.ChangeDocumentRemoved, userID, now)
	entry.ChangeDescription = fmt.Sprintf("Document %s removed", doc.FileName)

	if err := s.paymentRepo.DeleteDocument(ctx, paymentID, documentID, entry); err != nil {
		s.LogError(ctx, err, "Failed to delete document metadata", slog.String("payment_id", paymentID), slog.String("document_id", documentID))
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		s.LogWarn(ctx, "Failed to delete stored document file", slog.String("path", doc.StoragePath), slog.String("error", err.Error()))
	}

	s.LogInfo(ctx, "Document removed", slog.String("payment_id", paymentID), slog.String("document_id", documentID))
	return nil
}

// OpenDocument returns a document's metadata and its content stream, bit-exact
// as uploaded.
func (s *paymentService) OpenDocument(ctx context.Context, paymentID, documentID string) (*domain.Document, io.ReadCloser, error) {
	doc, err := s.paymentRepo.FindDocumentByID(ctx, paymentID, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find document %s: %w", documentID, err)
	}
	content, err := s.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading document %s: %v", apperrors.ErrGatewayFailure, documentID, err)
	}
	return doc, content, nil
}

// --- Queries ---

// GetPayment retrieves a payment with its line items and documents.
func (s *paymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	return payment, nil
}

// ListPayments retrieves payment headers matching the filter, newest first.
func (s *paymentService) ListPayments(ctx context.Context, filter portsrepo.ListPaymentsFilter) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.ListPayments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// GetHistory returns a payment's audit trail, oldest first.
func (s *paymentService) GetHistory(ctx context.Context, paymentID string) ([]domain.HistoryEntry, error) {
	// Verify the payment exists so an unknown ID is NotFound, not empty. A
	// deleted draft has no surviving history by design.
	if _, err := s.paymentRepo.FindPaymentByID(ctx, paymentID); err != nil {
		return nil, fmt.Errorf("failed to find payment %s: %w", paymentID, err)
	}
	entries, err := s.paymentRepo.FindHistoryByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for payment %s: %w", paymentID, err)
	}
	return entries, nil
}

// ListEligibleAssignments passes through to the assignment gateway.
func (s *paymentService) ListEligibleAssignments(ctx context.Context, startDate, endDate time.Time) ([]domain.AssignmentSummary, error) {
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end date is before start date", apperrors.ErrValidation)
	}
	gwCtx, cancel := s.gatewayCtx(ctx)
	defer cancel()
	summaries, err := s.gateway.ListEligibleAssignments(gwCtx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: listing eligible assignments: %v", apperrors.ErrGatewayFailure, err)
	}
	return summaries, nil
}

// --- helpers ---

func (s *paymentService) newHistoryEntry(payment *domain.Payment, changeType domain.ChangeType, userID string, at time.Time) domain.HistoryEntry {
	return domain.HistoryEntry{
		HistoryID:  uuid.NewString(),
		PaymentID:  payment.PaymentID,
		ChangeType: changeType,
		ChangedBy:  userID,
		ChangedAt:  at,
	}
}

// unlockBestEffort releases a gateway lock during error cleanup; failures are
// logged, not propagated, because the original error is the one that matters.
func (s *paymentService) unlockBestEffort(ctx context.Context, assignmentID, paymentID string) {
	gwCtx, cancel := s.gatewayCtx(ctx)
	defer cancel()
	if err := s.gateway.Unlock(gwCtx, assignmentID); err != nil {
		s.LogError(ctx, err, "Failed to release assignment lock during cleanup", slog.String("assignment_id", assignmentID), slog.String("payment_id", paymentID))
	}
}
