package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// currencyPlaces is the precision every monetary amount is rounded to.
const currencyPlaces = 2

// DeductionRates holds the statutory PF contribution rates. Rates are
// configuration, not constants: a statutory change must not need a redeploy.
type DeductionRates struct {
	EmployeeRate decimal.Decimal // fraction of gross withheld from the employee
	EmployerRate decimal.Decimal // fraction of gross contributed by the employer
}

// DefaultDeductionRates returns the current statutory 12%/12% rates.
func DefaultDeductionRates() DeductionRates {
	rate := decimal.NewFromFloat(0.12)
	return DeductionRates{EmployeeRate: rate, EmployerRate: rate}
}

// Deduction is the PF breakdown for one gross amount.
type Deduction struct {
	EmployeePf  decimal.Decimal
	EmployerPf  decimal.Decimal
	VoluntaryPf decimal.Decimal
	PfAmount    decimal.Decimal // employeePf + voluntaryPf, the amount withheld
	NetAmount   decimal.Decimal // grossAmount - pfAmount
}

// ComputeDeduction turns a gross amount into its PF deduction breakdown.
// Amounts round half-up to two decimal places. The employer contribution is
// not deducted from net pay. Pure: no side effects.
func ComputeDeduction(grossAmount decimal.Decimal, rates DeductionRates, voluntaryAmount decimal.Decimal) (Deduction, error) {
	if grossAmount.IsNegative() {
		return Deduction{}, fmt.Errorf("gross amount must not be negative, got %s", grossAmount.String())
	}
	if err := validateRate("employee", rates.EmployeeRate); err != nil {
		return Deduction{}, err
	}
	if err := validateRate("employer", rates.EmployerRate); err != nil {
		return Deduction{}, err
	}
	if voluntaryAmount.IsNegative() {
		return Deduction{}, fmt.Errorf("voluntary contribution must not be negative, got %s", voluntaryAmount.String())
	}

	employeePf := grossAmount.Mul(rates.EmployeeRate).Round(currencyPlaces)
	employerPf := grossAmount.Mul(rates.EmployerRate).Round(currencyPlaces)
	voluntaryPf := voluntaryAmount.Round(currencyPlaces)
	pfAmount := employeePf.Add(voluntaryPf)

	return Deduction{
		EmployeePf:  employeePf,
		EmployerPf:  employerPf,
		VoluntaryPf: voluntaryPf,
		PfAmount:    pfAmount,
		NetAmount:   grossAmount.Sub(pfAmount),
	}, nil
}

func validateRate(name string, rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s PF rate must be within [0,1], got %s", name, rate.String())
	}
	return nil
}
