package dto

import (
	"time"

	"github.com/finwage/payroll_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PfPaymentDetailResponse is one employee's share of one paid payment.
type PfPaymentDetailResponse struct {
	PaymentID       string          `json:"paymentID"`
	PaymentDate     string          `json:"paymentDate"` // YYYY-MM-DD
	ReferenceNumber string          `json:"referenceNumber"`
	AssignmentCount int             `json:"assignmentCount"`
	GrossAmount     decimal.Decimal `json:"grossAmount"`
	EmployeePf      decimal.Decimal `json:"employeePf"`
	VoluntaryPf     decimal.Decimal `json:"voluntaryPf"`
	EmployerPf      decimal.Decimal `json:"employerPf"`
	TotalPf         decimal.Decimal `json:"totalPf"`
	NetAmount       decimal.Decimal `json:"netAmount"`
}

// PfEmployeeResponse is one employee's row in the PF report.
type PfEmployeeResponse struct {
	EmployeeID       string                    `json:"employeeID"`
	EmployeeName     string                    `json:"employeeName"`
	Payments         []PfPaymentDetailResponse `json:"payments"`
	TotalAssignments int                       `json:"totalAssignments"`
	TotalGrossAmount decimal.Decimal           `json:"totalGrossAmount"`
	TotalEmployeePf  decimal.Decimal           `json:"totalEmployeePf"`
	TotalVoluntaryPf decimal.Decimal           `json:"totalVoluntaryPf"`
	TotalEmployerPf  decimal.Decimal           `json:"totalEmployerPf"`
	TotalPfAmount    decimal.Decimal           `json:"totalPfAmount"`
	TotalNetAmount   decimal.Decimal           `json:"totalNetAmount"`
}

// PfReportResponse is the monthly PF report payload.
type PfReportResponse struct {
	Month     int                  `json:"month"`
	Year      int                  `json:"year"`
	Employees []PfEmployeeResponse `json:"employees"`
	Totals    struct {
		TotalEmployees   int             `json:"totalEmployees"`
		TotalPayments    int             `json:"totalPayments"`
		TotalAssignments int             `json:"totalAssignments"`
		TotalGrossAmount decimal.Decimal `json:"totalGrossAmount"`
		TotalEmployeePf  decimal.Decimal `json:"totalEmployeePf"`
		TotalVoluntaryPf decimal.Decimal `json:"totalVoluntaryPf"`
		TotalEmployerPf  decimal.Decimal `json:"totalEmployerPf"`
		TotalPfAmount    decimal.Decimal `json:"totalPfAmount"`
		TotalNetAmount   decimal.Decimal `json:"totalNetAmount"`
	} `json:"totals"`
}

// ToPfReportResponse converts a domain PF report to its DTO.
func ToPfReportResponse(report *domain.PfReport) PfReportResponse {
	resp := PfReportResponse{
		Month:     report.Month,
		Year:      report.Year,
		Employees: make([]PfEmployeeResponse, len(report.Employees)),
	}

	for i, emp := range report.Employees {
		details := make([]PfPaymentDetailResponse, len(emp.Payments))
		for j, pd := range emp.Payments {
			details[j] = PfPaymentDetailResponse{
				PaymentID:       pd.PaymentID,
				PaymentDate:     pd.PaymentDate.Format(time.DateOnly),
				ReferenceNumber: pd.ReferenceNumber,
				AssignmentCount: pd.AssignmentCount,
				GrossAmount:     pd.GrossAmount,
				EmployeePf:      pd.EmployeePf,
				VoluntaryPf:     pd.VoluntaryPf,
				EmployerPf:      pd.EmployerPf,
				TotalPf:         pd.TotalPf,
				NetAmount:       pd.NetAmount,
			}
		}
		resp.Employees[i] = PfEmployeeResponse{
			EmployeeID:       emp.EmployeeID,
			EmployeeName:     emp.EmployeeName,
			Payments:         details,
			TotalAssignments: emp.TotalAssignments,
			TotalGrossAmount: emp.TotalGrossAmount,
			TotalEmployeePf:  emp.TotalEmployeePf,
			TotalVoluntaryPf: emp.TotalVoluntaryPf,
			TotalEmployerPf:  emp.TotalEmployerPf,
			TotalPfAmount:    emp.TotalPfAmount,
			TotalNetAmount:   emp.TotalNetAmount,
		}
	}

	resp.Totals.TotalEmployees = report.Totals.TotalEmployees
	resp.Totals.TotalPayments = report.Totals.TotalPayments
	resp.Totals.TotalAssignments = report.Totals.TotalAssignments
	resp.Totals.TotalGrossAmount = report.Totals.TotalGrossAmount
	resp.Totals.TotalEmployeePf = report.Totals.TotalEmployeePf
	resp.Totals.TotalVoluntaryPf = report.Totals.TotalVoluntaryPf
	resp.Totals.TotalEmployerPf = report.Totals.TotalEmployerPf
	resp.Totals.TotalPfAmount = report.Totals.TotalPfAmount
	resp.Totals.TotalNetAmount = report.Totals.TotalNetAmount

	return resp
}
