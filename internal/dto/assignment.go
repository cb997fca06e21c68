package dto

import (
	"time"

	"github.com/finwage/payroll_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AssignmentSummaryResponse is the normalized eligible-assignment row shown in
// the attachment wizard.
type AssignmentSummaryResponse struct {
	AssignmentID         string          `json:"assignmentID"`
	EmployeeID           string          `json:"employeeID"`
	EmployeeName         string          `json:"employeeName"`
	WorkActivityID       string          `json:"workActivityID"`
	WorkActivityName     string          `json:"workActivityName"`
	AssignmentDate       time.Time       `json:"assignmentDate"`
	Rate                 decimal.Decimal `json:"rate"`
	GrossAmount          decimal.Decimal `json:"grossAmount"`
	CompletionPercentage decimal.Decimal `json:"completionPercentage"`
}

// ToAssignmentSummaryResponses converts gateway summaries to DTOs.
func ToAssignmentSummaryResponses(summaries []domain.AssignmentSummary) []AssignmentSummaryResponse {
	responses := make([]AssignmentSummaryResponse, len(summaries))
	for i, s := range summaries {
		responses[i] = AssignmentSummaryResponse{
			AssignmentID:         s.AssignmentID,
			EmployeeID:           s.EmployeeID,
			EmployeeName:         s.EmployeeName,
			WorkActivityID:       s.WorkActivityID,
			WorkActivityName:     s.WorkActivityName,
			AssignmentDate:       s.AssignmentDate,
			Rate:                 s.Rate,
			GrossAmount:          s.GrossAmount,
			CompletionPercentage: s.CompletionPercentage,
		}
	}
	return responses
}
