package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/lead-intake/internal/config"
	"github.com/iwvelando/lead-intake/pkg/affordability"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id                UUID PRIMARY KEY,
	email             TEXT NOT NULL,
	first_name        TEXT NOT NULL,
	last_name         TEXT NOT NULL DEFAULT '',
	employment_status TEXT NOT NULL DEFAULT '',
	full_data         JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS submissions_created_at_idx ON submissions (created_at DESC);
`

// fullData is the JSONB payload; it carries the analysis so that reads
// never recompute it.
type fullData struct {
	Record   affordability.ApplicantRecord   `json:"record"`
	Analysis affordability.FinancialAnalysis `json:"analysis"`
}

// NewPostgres opens a connection pool for the submissions database.
func NewPostgres(cfg config.PostgresConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// PostgresStore keeps submissions in the submissions table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the submissions table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create submissions table: %w", err)
	}
	return nil
}

// Ping tests the database connection.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Insert writes a new submission row.
func (p *PostgresStore) Insert(ctx context.Context, s Submission) error {
	payload, err := json.Marshal(fullData{Record: s.Record, Analysis: s.Analysis})
	if err != nil {
		return fmt.Errorf("failed to marshal submission %s: %w", s.ID, err)
	}

	personal := s.Record.Personal
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO submissions (id, email, first_name, last_name, employment_status, full_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID,
		personal.Email,
		personal.FirstName,
		personal.LastName,
		string(personal.EmploymentStatus),
		payload,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission %s: %w", s.ID, err)
	}
	return nil
}

// List returns every submission, newest first.
func (p *PostgresStore) List(ctx context.Context) ([]Submission, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, full_data, created_at FROM submissions
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return out, nil
}

// Get returns a single submission. The id column is a UUID, so any other
// id reports ErrNotFound without a query.
func (p *PostgresStore) Get(ctx context.Context, id string) (Submission, error) {
	if !validID(id) {
		return Submission{}, ErrNotFound
	}
	row := p.db.QueryRowContext(ctx, `
		SELECT id, full_data, created_at FROM submissions
		WHERE id = $1`, id)

	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return s, err
}

// Delete removes a submission row.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := p.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete submission %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete submission %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row scanner) (Submission, error) {
	var (
		s       Submission
		payload []byte
	)
	if err := row.Scan(&s.ID, &payload, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, err
		}
		return Submission{}, fmt.Errorf("scan submission: %w", err)
	}

	var data fullData
	if err := json.Unmarshal(payload, &data); err != nil {
		return Submission{}, fmt.Errorf("decode submission %s: %w", s.ID, err)
	}
	s.Record = data.Record
	s.Analysis = data.Analysis
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}
