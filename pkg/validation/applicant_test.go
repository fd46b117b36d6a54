package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/iwvelando/lead-intake/pkg/affordability"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		personal  affordability.Personal
		expectErr bool
		missing   string
	}{
		{
			name:     "All required fields present",
			personal: affordability.Personal{FirstName: "Ana", Email: "ana@example.com"},
		},
		{
			name:      "Missing first name",
			personal:  affordability.Personal{Email: "ana@example.com"},
			expectErr: true,
			missing:   "firstName",
		},
		{
			name:      "Blank email",
			personal:  affordability.Personal{FirstName: "Ana", Email: "   "},
			expectErr: true,
			missing:   "email",
		},
		{
			name:      "Both missing",
			personal:  affordability.Personal{LastName: "Lopez"},
			expectErr: true,
			missing:   "firstName, email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.personal)
			if !tt.expectErr {
				if err != nil {
					t.Errorf("ValidateRequired() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrMissingField) {
				t.Fatalf("ValidateRequired() error = %v, expected ErrMissingField", err)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("ValidateRequired() error = %q, expected it to name %q", err.Error(), tt.missing)
			}
		})
	}
}

func TestValidateApplicant(t *testing.T) {
	tests := []struct {
		name         string
		record       affordability.ApplicantRecord
		expectWarn   int
		warnContains string
	}{
		{
			name: "Clean hourly applicant",
			record: affordability.ApplicantRecord{
				Personal: affordability.Personal{CreditScore: 700, EmploymentStatus: affordability.StatusCitizen},
				Income:   affordability.Income{Source: affordability.W2Income{PayType: affordability.PayHourly, HourlyRate: 25, HoursPerWeek: 40}},
			},
			expectWarn: 0,
		},
		{
			name: "Part-time hours",
			record: affordability.ApplicantRecord{
				Income: affordability.Income{Source: affordability.W2Income{PayType: affordability.PayHourly, HourlyRate: 25, HoursPerWeek: 30}},
			},
			expectWarn:   1,
			warnContains: "outside the qualifying 37-40 band",
		},
		{
			name: "Short overtime history",
			record: affordability.ApplicantRecord{
				Income: affordability.Income{Source: affordability.W2Income{
					PayType: affordability.PayFixed, FixedAmount: 4000, HourlyRate: 20,
					HasOvertime: true, OvertimeMonthsWorked: 6, OvertimeHoursPerWeek: 5,
				}},
			},
			expectWarn:   1,
			warnContains: "under the required 12",
		},
		{
			name: "Changed business activity",
			record: affordability.ApplicantRecord{
				Income: affordability.Income{Source: affordability.SelfEmployedIncome{Year1NetProfit: 50000, Year2NetProfit: 50000}},
			},
			expectWarn:   1,
			warnContains: "1099 income counts as zero",
		},
		{
			name: "No income at all",
			record: affordability.ApplicantRecord{
				Debts: affordability.Debts{CreditCards: 100},
			},
			expectWarn:   1,
			warnContains: "No income declared",
		},
		{
			name: "Co-applicant income only",
			record: affordability.ApplicantRecord{
				Income: affordability.Income{CoApplicantIncome: 2500},
			},
			expectWarn: 0,
		},
		{
			name: "Negative debt and bad score",
			record: affordability.ApplicantRecord{
				Personal: affordability.Personal{CreditScore: 900},
				Income:   affordability.Income{Source: affordability.W2Income{PayType: affordability.PayFixed, FixedAmount: 4000}},
				Debts:    affordability.Debts{StudentLoans: -50},
			},
			expectWarn:   2,
			warnContains: "studentLoans",
		},
		{
			name: "Unknown employment status",
			record: affordability.ApplicantRecord{
				Personal: affordability.Personal{EmploymentStatus: "Retired"},
				Income:   affordability.Income{CoApplicantIncome: 1000},
			},
			expectWarn:   1,
			warnContains: "Retired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidateApplicant(tt.record, affordability.DefaultPolicy())
			if len(warnings) != tt.expectWarn {
				t.Fatalf("ValidateApplicant() returned %d warnings, expected %d: %v", len(warnings), tt.expectWarn, warnings)
			}
			if tt.warnContains == "" {
				return
			}
			found := false
			for _, warning := range warnings {
				if strings.Contains(warning, tt.warnContains) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("ValidateApplicant() warnings %v do not mention %q", warnings, tt.warnContains)
			}
		})
	}
}

func TestValidateApplicantFollowsPolicy(t *testing.T) {
	policy := affordability.DefaultPolicy()
	policy.MaxQualifyingHours = 45
	policy.MinOvertimeMonths = 6

	record := affordability.ApplicantRecord{
		Personal: affordability.Personal{CreditScore: 700},
		Income: affordability.Income{Source: affordability.W2Income{
			PayType: affordability.PayHourly, HourlyRate: 20, HoursPerWeek: 42,
			HasOvertime: true, OvertimeMonthsWorked: 6, OvertimeHoursPerWeek: 5,
		}},
	}

	analysis := affordability.NewCalculator(policy).Analyze(record)
	if analysis.TotalMonthlyIncome != 3360+600 {
		t.Fatalf("TotalMonthlyIncome = %v, expected 3960", analysis.TotalMonthlyIncome)
	}
	if warnings := ValidateApplicant(record, policy); len(warnings) != 0 {
		t.Errorf("ValidateApplicant() = %v, expected no warnings under the widened policy", warnings)
	}

	warnings := ValidateApplicant(record, affordability.DefaultPolicy())
	if len(warnings) != 2 {
		t.Fatalf("ValidateApplicant() returned %d warnings under the default policy, expected 2: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "37-40 band") {
		t.Errorf("expected the hour band warning first, got %q", warnings[0])
	}
	if !strings.Contains(warnings[1], "under the required 12") {
		t.Errorf("expected the overtime history warning, got %q", warnings[1])
	}
}
