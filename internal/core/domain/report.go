package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentDetail summarizes one employee's line items inside one PAID payment.
// All monetary values come from the line items' snapshot fields.
type PaymentDetail struct {
	PaymentID       string          `json:"paymentID"`
	PaymentDate     time.Time       `json:"paymentDate"`
	ReferenceNumber string          `json:"referenceNumber"`
	AssignmentCount int             `json:"assignmentCount"`
	GrossAmount     decimal.Decimal `json:"grossAmount"`
	EmployeePf      decimal.Decimal `json:"employeePf"`
	VoluntaryPf     decimal.Decimal `json:"voluntaryPf"`
	EmployerPf      decimal.Decimal `json:"employerPf"`
	TotalPf         decimal.Decimal `json:"totalPf"` // employeePf + voluntaryPf
	NetAmount       decimal.Decimal `json:"netAmount"`
}

// EmployeePfTotals aggregates one employee's payment details for the month.
type EmployeePfTotals struct {
	EmployeeID       string          `json:"employeeID"`
	EmployeeName     string          `json:"employeeName"`
	Payments         []PaymentDetail `json:"payments"`
	TotalAssignments int             `json:"totalAssignments"`
	TotalGrossAmount decimal.Decimal `json:"totalGrossAmount"`
	TotalEmployeePf  decimal.Decimal `json:"totalEmployeePf"`
	TotalVoluntaryPf decimal.Decimal `json:"totalVoluntaryPf"`
	TotalEmployerPf  decimal.Decimal `json:"totalEmployerPf"`
	TotalPfAmount    decimal.Decimal `json:"totalPfAmount"`
	TotalNetAmount   decimal.Decimal `json:"totalNetAmount"`
}

// PfReportTotals are the grand totals across all employees in the report.
// TotalPayments counts distinct payments once even when a payment contributes
// to several employees.
type PfReportTotals struct {
	TotalEmployees   int             `json:"totalEmployees"`
	TotalPayments    int             `json:"totalPayments"`
	TotalAssignments int             `json:"totalAssignments"`
	TotalGrossAmount decimal.Decimal `json:"totalGrossAmount"`
	TotalEmployeePf  decimal.Decimal `json:"totalEmployeePf"`
	TotalVoluntaryPf decimal.Decimal `json:"totalVoluntaryPf"`
	TotalEmployerPf  decimal.Decimal `json:"totalEmployerPf"`
	TotalPfAmount    decimal.Decimal `json:"totalPfAmount"`
	TotalNetAmount   decimal.Decimal `json:"totalNetAmount"`
}

// PfReport is the statutory monthly Provident Fund report reconstructed from
// PAID payments. Payments are selected by the month/year of their recorded
// paymentDate, not by the payroll period they cover: a batch for June work
// paid in July files under July. Employees are ordered by name (then ID) so
// repeated generations of the same month are identical.
type PfReport struct {
	Month     int                `json:"month"`
	Year      int                `json:"year"`
	Employees []EmployeePfTotals `json:"employees"`
	Totals    PfReportTotals     `json:"totals"`
}
