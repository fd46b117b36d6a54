package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/lead-intake/pkg/affordability"
	"github.com/iwvelando/lead-intake/pkg/validation"
	"go.uber.org/zap"
)

// Service creates and reads submissions.
type Service struct {
	store      Store
	calculator *affordability.Calculator
	logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService builds a Service. A nil calculator uses the default policy.
func NewService(store Store, calculator *affordability.Calculator, logger *zap.Logger) *Service {
	if calculator == nil {
		calculator = affordability.NewCalculator(affordability.DefaultPolicy())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      store,
		calculator: calculator,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.New().String() },
	}
}

// Policy returns the underwriting figures the service analyzes with.
func (s *Service) Policy() affordability.Policy {
	return s.calculator.Policy()
}

// Analyze runs the calculator without persisting anything.
func (s *Service) Analyze(record affordability.ApplicantRecord) affordability.FinancialAnalysis {
	return s.calculator.Analyze(record)
}

// Create analyzes the record once and persists it with the result.
func (s *Service) Create(ctx context.Context, record affordability.ApplicantRecord) (Submission, error) {
	if err := validation.ValidateRequired(record.Personal); err != nil {
		return Submission{}, err
	}

	sub := Submission{
		ID:        s.newID(),
		CreatedAt: s.now(),
		Record:    record,
		Analysis:  s.calculator.Analyze(record),
	}

	if err := s.store.Insert(ctx, sub); err != nil {
		s.logger.Error("failed to store submission",
			zap.String("op", "submission.Create"),
			zap.String("id", sub.ID),
			zap.Error(err))
		return Submission{}, fmt.Errorf("store submission: %w", err)
	}

	s.logger.Info("submission created",
		zap.String("op", "submission.Create"),
		zap.String("id", sub.ID),
		zap.Float64("maxPaymentFHA", sub.Analysis.MaxPaymentFHA))

	return sub, nil
}

// List returns every submission, newest first.
func (s *Service) List(ctx context.Context) ([]Submission, error) {
	return s.Search(ctx, Filter{})
}

// Search returns the submissions matching f, newest first.
func (s *Service) Search(ctx context.Context, f Filter) ([]Submission, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	out := make([]Submission, 0, len(all))
	for _, sub := range all {
		if f.Matches(sub) {
			out = append(out, sub)
		}
	}
	return out, nil
}

// Get returns one submission or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (Submission, error) {
	return s.store.Get(ctx, id)
}

// Delete removes one submission or returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("submission deleted",
		zap.String("op", "submission.Delete"),
		zap.String("id", id))
	return nil
}

// Ping checks the backing store when it supports it.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
