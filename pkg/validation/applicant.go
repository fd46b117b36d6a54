package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/lead-intake/pkg/affordability"
	"github.com/iwvelando/lead-intake/pkg/mathutil"
)

// Credit score range reported by the major bureaus.
const (
	minCreditScore = 300
	maxCreditScore = 850
)

// ErrMissingField is returned when a required intake field is blank.
var ErrMissingField = errors.New("missing required field")

// ValidateRequired checks the fields an applicant must fill in before a
// submission is accepted.
func ValidateRequired(personal affordability.Personal) error {
	var missing []string
	if strings.TrimSpace(personal.FirstName) == "" {
		missing = append(missing, "firstName")
	}
	if strings.TrimSpace(personal.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateApplicant returns warnings about figures that will be ignored or
// look implausible under policy. Warnings never block a submission; the
// calculator accepts every record.
func ValidateApplicant(record affordability.ApplicantRecord, policy affordability.Policy) []string {
	var warnings []string

	score := record.Personal.CreditScore
	if score != 0 && (score < minCreditScore || score > maxCreditScore) {
		warnings = append(warnings, fmt.Sprintf("Credit score %d is outside the %d-%d range",
			score, minCreditScore, maxCreditScore))
	}

	switch record.Personal.EmploymentStatus {
	case "", affordability.StatusCitizen, affordability.StatusResident,
		affordability.StatusWorkPermit, affordability.StatusOther:
	default:
		warnings = append(warnings, fmt.Sprintf("Unrecognized employment status '%s'",
			record.Personal.EmploymentStatus))
	}

	warnings = append(warnings, validateIncome(record.Income, policy)...)
	warnings = append(warnings, validateDebts(record.Debts)...)

	return warnings
}

func validateIncome(income affordability.Income, policy affordability.Policy) []string {
	var warnings []string

	switch src := income.Source.(type) {
	case nil:
		if mathutil.IsZero(income.CoApplicantIncome) {
			warnings = append(warnings, "No income declared - qualifying income is zero")
		}
	case affordability.W2Income:
		warnings = append(warnings, validateW2(src, policy)...)
	case *affordability.W2Income:
		if src != nil {
			warnings = append(warnings, validateW2(*src, policy)...)
		}
	case affordability.SelfEmployedIncome:
		warnings = append(warnings, validateSelfEmployed(src)...)
	case *affordability.SelfEmployedIncome:
		if src != nil {
			warnings = append(warnings, validateSelfEmployed(*src)...)
		}
	}

	if mathutil.IsNegative(income.CoApplicantIncome) {
		warnings = append(warnings, fmt.Sprintf("Co-applicant income is negative (%.2f)", income.CoApplicantIncome))
	}

	return warnings
}

func validateW2(w2 affordability.W2Income, policy affordability.Policy) []string {
	var warnings []string

	switch w2.PayType {
	case affordability.PayFixed:
		if w2.HasOvertime && mathutil.IsZero(w2.HourlyRate) {
			warnings = append(warnings, "Overtime on fixed pay is priced from the hourly rate, which is zero")
		}
	case affordability.PayHourly:
		if w2.HoursPerWeek < policy.MinQualifyingHours || w2.HoursPerWeek > policy.MaxQualifyingHours {
			warnings = append(warnings, fmt.Sprintf("%.1f hours/week is outside the qualifying %g-%g band - base income counts as zero",
				w2.HoursPerWeek, policy.MinQualifyingHours, policy.MaxQualifyingHours))
		}
	default:
		warnings = append(warnings, fmt.Sprintf("Unrecognized W2 pay type '%s' - base income counts as zero", w2.PayType))
	}

	if w2.HasOvertime && w2.OvertimeMonthsWorked < policy.MinOvertimeMonths {
		warnings = append(warnings, fmt.Sprintf("Overtime history of %d months is under the required %d - overtime is excluded",
			w2.OvertimeMonthsWorked, policy.MinOvertimeMonths))
	}

	return warnings
}

func validateSelfEmployed(income affordability.SelfEmployedIncome) []string {
	var warnings []string

	if !income.SameActivityBothYears {
		warnings = append(warnings, "Business activity changed between tax years - 1099 income counts as zero")
	}
	if mathutil.IsNegative(income.BusinessMiles) {
		warnings = append(warnings, fmt.Sprintf("Business miles are negative (%.0f)", income.BusinessMiles))
	}

	return warnings
}

func validateDebts(debts affordability.Debts) []string {
	var warnings []string

	fields := []struct {
		name  string
		value float64
	}{
		{"carPayments", debts.CarPayments},
		{"creditCards", debts.CreditCards},
		{"studentLoans", debts.StudentLoans},
		{"otherDebts", debts.OtherDebts},
	}
	for _, field := range fields {
		if mathutil.IsNegative(field.value) {
			warnings = append(warnings, fmt.Sprintf("Debt '%s' is negative (%.2f) and will raise the maximum payment",
				field.name, field.value))
		}
	}

	return warnings
}
