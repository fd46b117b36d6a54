// Package submission stores applicant submissions together with the
// affordability analysis computed when they were received.
package submission

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iwvelando/lead-intake/pkg/affordability"
	"github.com/iwvelando/lead-intake/pkg/constants"
)

// ErrNotFound is returned when no submission has the requested ID.
var ErrNotFound = errors.New("submission not found")

// Submission is a persisted applicant record. Analysis is computed once at
// creation and never recomputed on read.
type Submission struct {
	ID        string                          `json:"id"`
	CreatedAt time.Time                       `json:"createdAt"`
	Record    affordability.ApplicantRecord   `json:"record"`
	Analysis  affordability.FinancialAnalysis `json:"analysis"`
}

// Name returns the applicant's display name.
func (s Submission) Name() string {
	return s.Record.Personal.FullName()
}

// Store persists submissions. List returns newest first.
type Store interface {
	Insert(ctx context.Context, s Submission) error
	List(ctx context.Context) ([]Submission, error)
	Get(ctx context.Context, id string) (Submission, error)
	Delete(ctx context.Context, id string) error
}

// Pinger is implemented by stores backed by a remote service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AllStatuses disables the employment status filter.
const AllStatuses = "All"

// Filter narrows a dashboard listing. Zero values match everything.
type Filter struct {
	// Name is matched case-insensitively against "first last".
	Name             string
	EmploymentStatus string
}

// Matches reports whether s passes the filter.
func (f Filter) Matches(s Submission) bool {
	if f.EmploymentStatus != "" && f.EmploymentStatus != AllStatuses &&
		string(s.Record.Personal.EmploymentStatus) != f.EmploymentStatus {
		return false
	}
	if f.Name == "" {
		return true
	}
	full := strings.ToLower(s.Record.Personal.FirstName + " " + s.Record.Personal.LastName)
	return strings.Contains(full, strings.ToLower(f.Name))
}

// Credit tiers shown as dashboard badges.
const (
	TierGood = "good"
	TierFair = "fair"
	TierPoor = "poor"
)

// CreditTier buckets a credit score for display.
func CreditTier(score int) string {
	switch {
	case score >= constants.GoodCreditScore:
		return TierGood
	case score >= constants.FairCreditScore:
		return TierFair
	default:
		return TierPoor
	}
}
