package services

import (
	"context"
	"time"

	"github.com/finwage/payroll_backend/internal/core/domain"
)

// AssignmentGateway is the external work-assignment system. Its lock is the
// cross-payment mutual-exclusion point: an assignment is lockable by at most
// one payment at a time, and two payments racing for the same assignment must
// see exactly one Lock succeed. Lock and Unlock are idempotent for the same
// (assignment, payment) pair. Callers bound every call with a context timeout;
// a timeout is treated like a rejection and triggers the same rollback path.
type AssignmentGateway interface {
	// GetAssignment retrieves one assignment summary, normalized.
	GetAssignment(ctx context.Context, assignmentID string) (*domain.AssignmentSummary, error)

	// ListEligibleAssignments retrieves completed, evaluated, unpaid, unlocked
	// assignments whose date falls within [startDate, endDate].
	ListEligibleAssignments(ctx context.Context, startDate, endDate time.Time) ([]domain.AssignmentSummary, error)

	// Lock marks the assignment as held by the payment. Returns
	// apperrors.ErrNotEligible when another payment already holds it.
	Lock(ctx context.Context, assignmentID, paymentID string) error

	// Unlock releases the assignment.
	Unlock(ctx context.Context, assignmentID string) error
}
