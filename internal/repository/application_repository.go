package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tutorconnect/tutor-connect/internal/domain"
)

// ApplicationFilter narrows application listings. Empty fields are ignored.
type ApplicationFilter struct {
	StudentID *string
	TeacherID *string
	JobID     *string
	Status    *domain.ApplicationStatus
	Limit     int
	Offset    int
}

// ApplicationRepository persists job applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.JobApplication) error
	GetByID(ctx context.Context, id string) (*domain.JobApplication, error)
	FindByJobAndStudent(ctx context.Context, jobID, studentID string) (*domain.JobApplication, error)
	List(ctx context.Context, filter ApplicationFilter) ([]domain.JobApplication, error)
	// TransitionStatus moves an application from one status to another and
	// reports false when the application was no longer in the expected status.
	TransitionStatus(ctx context.Context, id string, from, to domain.ApplicationStatus, decidedBy *string) (bool, error)
	Count(ctx context.Context, status *domain.ApplicationStatus) (int64, error)
}

type applicationRepository struct {
	db Querier
}

const applicationSelect = `
        SELECT a.id, a.job_id, a.student_id, a.cover_letter, a.resume_url, a.status,
               a.applied_at, a.updated_at, a.decided_at, a.decided_by,
               j.title, j.poster_id, COALESCE(TRIM(p.first_name || ' ' || p.last_name), '')
        FROM job_applications a
        JOIN jobs j ON j.id = a.job_id
        LEFT JOIN user_profiles p ON p.user_id = a.student_id`

func (r *applicationRepository) Create(ctx context.Context, app *domain.JobApplication) error {
	const query = `
        INSERT INTO job_applications (job_id, student_id, cover_letter, resume_url, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, applied_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		app.JobID,
		app.StudentID,
		app.CoverLetter,
		app.ResumeURL,
		app.Status,
	).Scan(&app.ID, &app.AppliedAt, &app.UpdatedAt)
	return mapWriteError(err)
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.JobApplication, error) {
	return scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.id=$1`, id))
}

func (r *applicationRepository) FindByJobAndStudent(ctx context.Context, jobID, studentID string) (*domain.JobApplication, error) {
	return scanApplication(r.db.QueryRow(ctx, applicationSelect+` WHERE a.job_id=$1 AND a.student_id=$2`, jobID, studentID))
}

func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]domain.JobApplication, error) {
	args := []any{}
	clauses := []string{}
	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		clauses = append(clauses, fmt.Sprintf("a.student_id=$%d", len(args)))
	}
	if filter.TeacherID != nil {
		args = append(args, *filter.TeacherID)
		clauses = append(clauses, fmt.Sprintf("j.poster_id=$%d", len(args)))
	}
	if filter.JobID != nil {
		args = append(args, *filter.JobID)
		clauses = append(clauses, fmt.Sprintf("a.job_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("a.status=$%d", len(args)))
	}
	query := applicationSelect
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset, 50)
	query += fmt.Sprintf(" ORDER BY a.applied_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.JobApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *app)
	}
	return result, rows.Err()
}

func (r *applicationRepository) TransitionStatus(ctx context.Context, id string, from, to domain.ApplicationStatus, decidedBy *string) (bool, error) {
	const query = `
        UPDATE job_applications
        SET status=$1, decided_by=$2, decided_at=CASE WHEN $2::uuid IS NULL THEN decided_at ELSE NOW() END, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.db.Exec(ctx, query, to, decidedBy, id, from)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *applicationRepository) Count(ctx context.Context, status *domain.ApplicationStatus) (int64, error) {
	var count int64
	if status == nil {
		err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM job_applications`).Scan(&count)
		return count, err
	}
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM job_applications WHERE status=$1`, *status).Scan(&count)
	return count, err
}

func scanApplication(row pgx.Row) (*domain.JobApplication, error) {
	var app domain.JobApplication
	if err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.StudentID,
		&app.CoverLetter,
		&app.ResumeURL,
		&app.Status,
		&app.AppliedAt,
		&app.UpdatedAt,
		&app.DecidedAt,
		&app.DecidedBy,
		&app.JobTitle,
		&app.JobPosterID,
		&app.ApplicantName,
	); err != nil {
		return nil, err
	}
	return &app, nil
}
