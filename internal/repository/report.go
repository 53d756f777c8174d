package repository

import (
	"context"
	"errors"
	"fmt"

	"degreeplan/advisor/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrReportNotFound = errors.New("advising report not found")

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ReportRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveReport(ctx context.Context, report *domain.AdvisingReport) error
	GetReport(ctx context.Context, id string) (*domain.AdvisingReport, error)
}

type reportRepository struct {
	db DB
}

func NewReportRepository(db DB) ReportRepository {
	return &reportRepository{
		db: db,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS advising_reports (
	id             TEXT PRIMARY KEY,
	student_id     TEXT NOT NULL DEFAULT '',
	major          TEXT NOT NULL DEFAULT '',
	gpa            TEXT NOT NULL DEFAULT '',
	semester_gpa   JSONB,
	recommendation JSONB,
	report         TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	error          TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func (r *reportRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create advising_reports table: %w", err)
	}
	return nil
}

func (r *reportRepository) SaveReport(ctx context.Context, report *domain.AdvisingReport) error {
	query := `
	INSERT INTO advising_reports (id, student_id, major, gpa, semester_gpa, recommendation, report, status, error, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id)
	DO UPDATE SET student_id = $2, major = $3, gpa = $4, semester_gpa = $5, recommendation = $6,
		report = $7, status = $8, error = $9`
	_, err := r.db.Exec(ctx, query,
		report.ID,
		report.StudentID,
		report.Major,
		report.GPA,
		report.SemesterGPA,
		report.Recommendation,
		report.Text,
		string(report.Status),
		report.Error,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save advising report %s: %w", report.ID, err)
	}

	return nil
}

func (r *reportRepository) GetReport(ctx context.Context, id string) (*domain.AdvisingReport, error) {
	query := `
	SELECT id, student_id, major, gpa, semester_gpa, recommendation, report, status, error, created_at
	FROM advising_reports WHERE id = $1`

	var (
		report domain.AdvisingReport
		status string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.StudentID,
		&report.Major,
		&report.GPA,
		&report.SemesterGPA,
		&report.Recommendation,
		&report.Text,
		&status,
		&report.Error,
		&report.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load advising report %s: %w", id, err)
	}
	report.Status = domain.ReportStatus(status)

	return &report, nil
}
