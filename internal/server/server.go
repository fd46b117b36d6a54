package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/lead-intake/internal/auth"
	"github.com/iwvelando/lead-intake/internal/intake"
	"github.com/iwvelando/lead-intake/internal/metrics"
	"github.com/iwvelando/lead-intake/internal/submission"
	"github.com/iwvelando/lead-intake/pkg/affordability"
	"github.com/iwvelando/lead-intake/pkg/format"
	"github.com/iwvelando/lead-intake/pkg/validation"
	"go.uber.org/zap"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// ProbeFunc adapts a function to HealthService.
type ProbeFunc func(ctx context.Context) error

// Probe implements HealthService.
func (f ProbeFunc) Probe(ctx context.Context) error {
	return f(ctx)
}

// Dependencies collects what the handlers need.
type Dependencies struct {
	Submissions *submission.Service
	Auth        *auth.Authenticator
	Metrics     *metrics.Metrics
	Health      HealthService
	Limiter     *RateLimiter
	Formatter   *format.Formatter
	Version     string
}

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string

	submissions *submission.Service
	auth        *auth.Authenticator
	metrics     *metrics.Metrics
	health      HealthService
	limiter     *RateLimiter
	formatter   *format.Formatter
}

// NewHandler constructs the HTTP handler that serves the public intake API
// and the admin dashboard API.
func NewHandler(logger *zap.Logger, cfg *Config, deps Dependencies) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	trimmedVersion := strings.TrimSpace(deps.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	formatter := deps.Formatter
	if formatter == nil {
		formatter = format.Default()
	}

	h := &handler{
		logger:      logger,
		maxBodySize: cfg.BodySizeBytes(),
		version:     trimmedVersion,
		submissions: deps.Submissions,
		auth:        deps.Auth,
		metrics:     deps.Metrics,
		health:      deps.Health,
		limiter:     deps.Limiter,
		formatter:   formatter,
	}

	mux := http.NewServeMux()
	route := func(pattern string, fn http.Handler) {
		mux.Handle(pattern, instrument(logger, deps.Metrics, pattern, fn))
	}
	admin := func(fn http.HandlerFunc) http.Handler {
		return h.auth.RequireSession(fn)
	}

	// Public application form
	route("/api/submissions", h.rateLimit(h.handleCreateSubmission))
	route("/api/analyze", h.rateLimit(h.handleAnalyze))

	// Admin session management
	route("/api/admin/login", h.rateLimit(h.handleLogin))
	route("/api/admin/logout", http.HandlerFunc(h.handleLogout))
	route("/api/admin/me", admin(h.handleMe))

	// Admin dashboard
	route("/api/admin/submissions", admin(h.handleListSubmissions))
	route("/api/admin/submissions/", admin(h.handleSubmission))

	// Service metadata
	route("/api/version", http.HandlerFunc(h.handleVersion))
	route("/healthz", http.HandlerFunc(h.handleHealth))
	if deps.Metrics != nil {
		mux.Handle("/metrics", deps.Metrics.Handler())
	}

	var out http.Handler = mux
	if len(cfg.AllowedOrigins) > 0 {
		out = corsMiddleware(cfg.AllowedOrigins)(out)
	}
	return out
}

// displayValues are the analysis figures formatted for the UI.
type displayValues struct {
	TotalMonthlyIncome     string `json:"totalMonthlyIncome"`
	TotalMonthlyDebts      string `json:"totalMonthlyDebts"`
	MaxPaymentConventional string `json:"maxPaymentConventional"`
	MaxPaymentFHA          string `json:"maxPaymentFHA"`
	DTIConventional        string `json:"dtiConventional"`
	DTIFHA                 string `json:"dtiFHA"`
}

func newDisplayValues(f *format.Formatter, a affordability.FinancialAnalysis) displayValues {
	return displayValues{
		TotalMonthlyIncome:     f.Currency(a.TotalMonthlyIncome),
		TotalMonthlyDebts:      f.Currency(a.TotalMonthlyDebts),
		MaxPaymentConventional: f.Currency(a.MaxPaymentConventional),
		MaxPaymentFHA:          f.Currency(a.MaxPaymentFHA),
		DTIConventional:        f.Percent(a.DTIConventional),
		DTIFHA:                 f.Percent(a.DTIFHA),
	}
}

type analysisResponse struct {
	Analysis affordability.FinancialAnalysis `json:"analysis"`
	Display  displayValues                   `json:"display"`
	Warnings []string                        `json:"warnings,omitempty"`
}

type submissionResponse struct {
	ID        string                         `json:"id"`
	CreatedAt time.Time                      `json:"createdAt"`
	Record    *affordability.ApplicantRecord `json:"record,omitempty"`
	analysisResponse
}

type dashboardRow struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone"`
	EmploymentStatus     string    `json:"employmentStatus"`
	CreditScore          int       `json:"creditScore"`
	CreditTier           string    `json:"creditTier"`
	MaxPaymentFHA        float64   `json:"maxPaymentFHA"`
	MaxPaymentFHADisplay string    `json:"maxPaymentFHADisplay"`
	CreatedAt            time.Time `json:"createdAt"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Admin     auth.Admin `json:"admin"`
}

func (h *handler) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateSubmission"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	record, ok := h.decodeApplication(w, r, op)
	if !ok {
		return
	}

	sub, err := h.submissions.Create(r.Context(), record)
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	if h.metrics != nil {
		h.metrics.SubmissionsCreated.WithLabelValues(incomeLabel(record.Income)).Inc()
	}

	warnings := validation.ValidateApplicant(record, h.submissions.Policy())
	if len(warnings) > 0 {
		h.logger.Info("submission stored with warnings",
			zap.String("op", op),
			zap.String("id", sub.ID),
			zap.Strings("warnings", warnings),
		)
	}

	h.writeJSON(w, http.StatusCreated, submissionResponse{
		ID:        sub.ID,
		CreatedAt: sub.CreatedAt,
		analysisResponse: analysisResponse{
			Analysis: sub.Analysis,
			Display:  newDisplayValues(h.formatter, sub.Analysis),
			Warnings: warnings,
		},
	})
}

func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAnalyze"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	record, ok := h.decodeApplication(w, r, op)
	if !ok {
		return
	}

	analysis := h.submissions.Analyze(record)
	if h.metrics != nil {
		h.metrics.AnalysesRequested.Inc()
	}

	h.writeJSON(w, http.StatusOK, analysisResponse{
		Analysis: analysis,
		Display:  newDisplayValues(h.formatter, analysis),
		Warnings: validation.ValidateApplicant(record, h.submissions.Policy()),
	})
}

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLogin"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}
	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode login: %v", err), op)
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		outcome := "error"
		status := http.StatusInternalServerError
		if errors.Is(err, auth.ErrInvalidCredentials) {
			outcome = "rejected"
			status = http.StatusUnauthorized
		}
		if h.metrics != nil {
			h.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
		}
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}
	if h.metrics != nil {
		h.metrics.LoginAttempts.WithLabelValues("success").Inc()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	h.writeJSON(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		Admin:     session.Admin,
	})
}

func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleLogout"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	if err := h.auth.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	admin, _ := auth.AdminFromContext(r.Context())
	h.writeJSON(w, http.StatusOK, admin)
}

func (h *handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListSubmissions"
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	subs, err := h.submissions.Search(r.Context(), submission.Filter{
		Name:             strings.TrimSpace(query.Get("q")),
		EmploymentStatus: strings.TrimSpace(query.Get("status")),
	})
	if err != nil {
		h.respondServiceError(w, err, op)
		return
	}

	rows := make([]dashboardRow, 0, len(subs))
	for _, sub := range subs {
		personal := sub.Record.Personal
		rows = append(rows, dashboardRow{
			ID:                   sub.ID,
			Name:                 sub.Name(),
			Email:                personal.Email,
			Phone:                personal.Phone,
			EmploymentStatus:     string(personal.EmploymentStatus),
			CreditScore:          personal.CreditScore,
			CreditTier:           submission.CreditTier(personal.CreditScore),
			MaxPaymentFHA:        sub.Analysis.MaxPaymentFHA,
			MaxPaymentFHADisplay: h.formatter.Currency(sub.Analysis.MaxPaymentFHA),
			CreatedAt:            sub.CreatedAt,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"submissions": rows,
		"count":       len(rows),
	})
}

func (h *handler) handleSubmission(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSubmission"

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/admin/submissions/"), "/")
	if id == "" || strings.Contains(id, "/") {
		h.respondErrorWithOp(w, http.StatusNotFound, "submission not found", op)
		return
	}

	switch r.Method {
	case http.MethodGet:
		sub, err := h.submissions.Get(r.Context(), id)
		if err != nil {
			h.respondServiceError(w, err, op)
			return
		}
		record := sub.Record
		h.writeJSON(w, http.StatusOK, submissionResponse{
			ID:        sub.ID,
			CreatedAt: sub.CreatedAt,
			Record:    &record,
			analysisResponse: analysisResponse{
				Analysis: sub.Analysis,
				Display:  newDisplayValues(h.formatter, sub.Analysis),
				Warnings: validation.ValidateApplicant(record, h.submissions.Policy()),
			},
		})
	case http.MethodDelete:
		if err := h.submissions.Delete(r.Context(), id); err != nil {
			h.respondServiceError(w, err, op)
			return
		}
		if h.metrics != nil {
			h.metrics.SubmissionsDeleted.Inc()
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	payload := map[string]string{"status": "ok"}

	if h.health != nil {
		if err := h.health.Probe(ctx); err != nil {
			h.logger.Error("health probe failed",
				zap.String("op", "server.handleHealth"),
				zap.Error(err),
			)
			status = http.StatusServiceUnavailable
			payload["status"] = "degraded"
			payload["error"] = err.Error()
		}
	}

	h.writeJSON(w, status, payload)
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	if h.maxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}
	return body, true
}

func (h *handler) decodeApplication(w http.ResponseWriter, r *http.Request, op string) (affordability.ApplicantRecord, bool) {
	body, ok := h.readBody(w, r, op)
	if !ok {
		return affordability.ApplicantRecord{}, false
	}

	record, err := intake.Decode(body)
	if err != nil {
		var payloadErr *intake.PayloadError
		if errors.As(err, &payloadErr) {
			h.logger.Info("application rejected",
				zap.String("op", op),
				zap.Strings("problems", payloadErr.Problems),
			)
			h.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":    intake.ErrInvalidPayload.Error(),
				"problems": payloadErr.Problems,
			})
			return affordability.ApplicantRecord{}, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return affordability.ApplicantRecord{}, false
	}
	return record, true
}

func (h *handler) respondServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, submission.ErrNotFound):
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
	case errors.Is(err, validation.ErrMissingField):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, "internal error", op)
		h.logger.Error("service call failed", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Warn("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func incomeLabel(income affordability.Income) string {
	if income.Source == nil {
		return "none"
	}
	return string(income.Source.Type())
}
