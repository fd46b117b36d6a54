// Package affordability derives qualifying monthly payments from an
// applicant's declared income and debts.
package affordability

import (
	"encoding/json"
	"fmt"
)

// EmploymentStatus is the applicant's residency/work authorization status.
type EmploymentStatus string

const (
	StatusCitizen    EmploymentStatus = "Citizen"
	StatusResident   EmploymentStatus = "Resident"
	StatusWorkPermit EmploymentStatus = "Work Permit"
	StatusOther      EmploymentStatus = "Other"
)

// IncomeType names the variant of an income declaration on the wire.
type IncomeType string

const (
	IncomeW2           IncomeType = "W2"
	IncomeSelfEmployed IncomeType = "1099"
)

// PayType distinguishes salaried from hourly W2 pay.
type PayType string

const (
	PayFixed  PayType = "fixed"
	PayHourly PayType = "hourly"
)

// ApplicantRecord is everything an applicant declares on the intake form.
type ApplicantRecord struct {
	Personal Personal `json:"personal"`
	Income   Income   `json:"income"`
	Debts    Debts    `json:"debts"`
}

// Personal holds identity fields. None of them feed the calculation.
type Personal struct {
	FirstName            string           `json:"firstName"`
	LastName             string           `json:"lastName"`
	Email                string           `json:"email"`
	Phone                string           `json:"phone"`
	CreditScore          int              `json:"creditScore"`
	EmploymentStatus     EmploymentStatus `json:"employmentStatus"`
	EmploymentTimeMonths int              `json:"employmentTimeMonths"`
}

// FullName returns "First Last" with surrounding blanks removed.
func (p Personal) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// IncomeSource is either a W2Income or a SelfEmployedIncome.
type IncomeSource interface {
	Type() IncomeType
	isIncomeSource()
}

// W2Income is salaried or hourly employment income.
type W2Income struct {
	PayType              PayType `json:"payType"`
	FixedAmount          float64 `json:"fixedAmount"`
	HourlyRate           float64 `json:"hourlyRate"`
	HoursPerWeek         float64 `json:"hoursPerWeek"`
	HasOvertime          bool    `json:"hasOT"`
	OvertimeMonthsWorked int     `json:"otMonths"`
	OvertimeHoursPerWeek float64 `json:"otHoursPerWeek"`
}

// Type implements IncomeSource.
func (W2Income) Type() IncomeType { return IncomeW2 }
func (W2Income) isIncomeSource()  {}

// SelfEmployedIncome is 1099 income taken from the last two tax returns.
type SelfEmployedIncome struct {
	Year1NetProfit        float64 `json:"year1Line31"`
	Year2NetProfit        float64 `json:"year2Line31"`
	BusinessMiles         float64 `json:"miles"`
	SameActivityBothYears bool    `json:"sameActivity"`
}

// Type implements IncomeSource.
func (SelfEmployedIncome) Type() IncomeType { return IncomeSelfEmployed }
func (SelfEmployedIncome) isIncomeSource()  {}

// Income pairs the applicant's own income source with co-applicant income.
// A nil Source means no income was declared.
type Income struct {
	Source            IncomeSource
	CoApplicantIncome float64
}

type incomeJSON struct {
	Type              IncomeType          `json:"type"`
	W2                *W2Income           `json:"w2,omitempty"`
	I1099             *SelfEmployedIncome `json:"i1099,omitempty"`
	CoApplicantIncome float64             `json:"coApplicantIncome"`
}

// MarshalJSON writes the income using the intake form's layout, where the
// active variant sits under "w2" or "i1099" next to a "type" tag.
func (i Income) MarshalJSON() ([]byte, error) {
	out := incomeJSON{CoApplicantIncome: i.CoApplicantIncome}
	switch src := i.Source.(type) {
	case W2Income:
		out.Type = IncomeW2
		out.W2 = &src
	case *W2Income:
		out.Type = IncomeW2
		out.W2 = src
	case SelfEmployedIncome:
		out.Type = IncomeSelfEmployed
		out.I1099 = &src
	case *SelfEmployedIncome:
		out.Type = IncomeSelfEmployed
		out.I1099 = src
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the intake form's layout. Only the sub-record named
// by "type" is kept; a missing sub-record leaves Source nil.
func (i *Income) UnmarshalJSON(data []byte) error {
	var in incomeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	i.CoApplicantIncome = in.CoApplicantIncome
	i.Source = nil
	switch in.Type {
	case IncomeW2:
		if in.W2 != nil {
			i.Source = *in.W2
		}
	case IncomeSelfEmployed:
		if in.I1099 != nil {
			i.Source = *in.I1099
		}
	case "":
	default:
		return fmt.Errorf("unknown income type %q", in.Type)
	}
	return nil
}

// Debts are the applicant's recurring monthly obligations.
type Debts struct {
	CarPayments  float64 `json:"carPayments"`
	CreditCards  float64 `json:"creditCards"`
	StudentLoans float64 `json:"studentLoans"`
	OtherDebts   float64 `json:"otherDebts"`
}

// FinancialAnalysis is the calculator's result. It is never mutated once
// produced.
type FinancialAnalysis struct {
	TotalMonthlyIncome     float64 `json:"totalMonthlyIncome"`
	TotalMonthlyDebts      float64 `json:"totalMonthlyDebts"`
	MaxPaymentConventional float64 `json:"maxPaymentConventional"`
	MaxPaymentFHA          float64 `json:"maxPaymentFHA"`
	DTIConventional        float64 `json:"dtiConventional"`
	DTIFHA                 float64 `json:"dtiFHA"`
}
