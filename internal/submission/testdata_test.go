package submission

import (
	"time"

	"github.com/iwvelando/lead-intake/pkg/affordability"
)

func sampleRecord(first, last string, status affordability.EmploymentStatus) affordability.ApplicantRecord {
	return affordability.ApplicantRecord{
		Personal: affordability.Personal{
			FirstName:        first,
			LastName:         last,
			Email:            first + "@example.com",
			CreditScore:      640,
			EmploymentStatus: status,
		},
		Income: affordability.Income{Source: affordability.W2Income{PayType: affordability.PayFixed, FixedAmount: 5000}},
		Debts:  affordability.Debts{CarPayments: 500, CreditCards: 300},
	}
}

func sampleSubmission(id string, at time.Time, first, last string, status affordability.EmploymentStatus) Submission {
	record := sampleRecord(first, last, status)
	return Submission{
		ID:        id,
		CreatedAt: at,
		Record:    record,
		Analysis:  affordability.Analyze(record),
	}
}
