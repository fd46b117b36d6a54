package affordability

import (
	"math"

	"github.com/iwvelando/lead-intake/pkg/constants"
	"github.com/iwvelando/lead-intake/pkg/mathutil"
)

// Policy carries the underwriting figures the calculator applies.
type Policy struct {
	DTIConventional    float64
	DTIFHA             float64
	WeeksPerMonth      float64
	MinQualifyingHours float64
	MaxQualifyingHours float64
	OvertimeMultiplier float64
	MinOvertimeMonths  int
	MileageAddbackRate float64
	SelfEmployedMonths float64
}

// DefaultPolicy returns the production underwriting figures.
func DefaultPolicy() Policy {
	return Policy{
		DTIConventional:    constants.DTIConventional,
		DTIFHA:             constants.DTIFHA,
		WeeksPerMonth:      constants.WeeksPerMonth,
		MinQualifyingHours: constants.MinQualifyingHoursPerWeek,
		MaxQualifyingHours: constants.MaxQualifyingHoursPerWeek,
		OvertimeMultiplier: constants.OvertimeMultiplier,
		MinOvertimeMonths:  constants.MinOvertimeMonths,
		MileageAddbackRate: constants.MileageAddbackRate,
		SelfEmployedMonths: constants.SelfEmployedAveragingMonths,
	}
}

// Calculator applies a Policy to applicant records. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	policy Policy
}

// NewCalculator creates a calculator for the given policy.
func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

var defaultCalculator = NewCalculator(DefaultPolicy())

// Analyze runs the production policy against a record.
func Analyze(record ApplicantRecord) FinancialAnalysis {
	return defaultCalculator.Analyze(record)
}

// Policy returns the figures this calculator applies.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Analyze computes qualifying income, debts and the maximum monthly payment
// under each loan program. It never fails; absent figures count as zero.
func (c *Calculator) Analyze(record ApplicantRecord) FinancialAnalysis {
	totalMonthlyIncome := c.BaseIncome(record.Income) + c.OvertimeIncome(record.Income) + record.Income.CoApplicantIncome
	totalMonthlyDebts := c.TotalDebts(record.Debts)

	// The explicit conversions keep the compiler from fusing multiply-add,
	// so results are bit-identical across architectures.
	return FinancialAnalysis{
		TotalMonthlyIncome:     totalMonthlyIncome,
		TotalMonthlyDebts:      totalMonthlyDebts,
		MaxPaymentConventional: mathutil.FloorAtZero(float64(totalMonthlyIncome*c.policy.DTIConventional) - totalMonthlyDebts),
		MaxPaymentFHA:          mathutil.FloorAtZero(float64(totalMonthlyIncome*c.policy.DTIFHA) - totalMonthlyDebts),
		DTIConventional:        c.policy.DTIConventional,
		DTIFHA:                 c.policy.DTIFHA,
	}
}

// BaseIncome returns the qualifying monthly base income of the applicant's
// own income source, excluding overtime and co-applicant income.
func (c *Calculator) BaseIncome(income Income) float64 {
	switch src := income.Source.(type) {
	case W2Income:
		return c.w2Base(src)
	case *W2Income:
		if src != nil {
			return c.w2Base(*src)
		}
	case SelfEmployedIncome:
		return c.selfEmployedBase(src)
	case *SelfEmployedIncome:
		if src != nil {
			return c.selfEmployedBase(*src)
		}
	}
	return 0
}

// OvertimeIncome returns qualifying monthly overtime. Only W2 income earns
// overtime, and it is always priced off HourlyRate, even for fixed pay.
func (c *Calculator) OvertimeIncome(income Income) float64 {
	switch src := income.Source.(type) {
	case W2Income:
		return c.w2Overtime(src)
	case *W2Income:
		if src != nil {
			return c.w2Overtime(*src)
		}
	}
	return 0
}

// TotalDebts sums the four monthly obligations.
func (c *Calculator) TotalDebts(debts Debts) float64 {
	return debts.CarPayments + debts.CreditCards + debts.StudentLoans + debts.OtherDebts
}

func (c *Calculator) w2Base(w2 W2Income) float64 {
	switch w2.PayType {
	case PayFixed:
		return w2.FixedAmount
	case PayHourly:
		hours := w2.HoursPerWeek
		if hours >= c.policy.MinQualifyingHours && hours <= c.policy.MaxQualifyingHours {
			return w2.HourlyRate * hours * c.policy.WeeksPerMonth
		}
	}
	return 0
}

func (c *Calculator) w2Overtime(w2 W2Income) float64 {
	// Any non-zero hours figure counts; NaN is treated like an unset field.
	hours := w2.OvertimeHoursPerWeek
	if !w2.HasOvertime || w2.OvertimeMonthsWorked < c.policy.MinOvertimeMonths || hours == 0 || math.IsNaN(hours) {
		return 0
	}
	return w2.HourlyRate * c.policy.OvertimeMultiplier * hours * c.policy.WeeksPerMonth
}

func (c *Calculator) selfEmployedBase(i SelfEmployedIncome) float64 {
	if !i.SameActivityBothYears {
		return 0
	}
	return (i.Year1NetProfit + i.Year2NetProfit + float64(i.BusinessMiles*c.policy.MileageAddbackRate)) / c.policy.SelfEmployedMonths
}
