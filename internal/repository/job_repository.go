package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tutorconnect/tutor-connect/internal/domain"
)

// JobFilter captures listing parameters.
type JobFilter struct {
	Status   *domain.JobStatus
	PosterID *string
	Limit    int
	Offset   int
}

// JobRepository encapsulates job persistence.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	List(ctx context.Context, filter JobFilter) ([]domain.Job, error)
	UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error
	Count(ctx context.Context, status *domain.JobStatus) (int64, error)
}

type jobRepository struct {
	db Querier
}

const jobSelect = `
        SELECT j.id, j.poster_id, j.title, j.description, j.requirements, j.salary_min, j.salary_max,
               j.job_type, j.status, j.created_at, j.updated_at,
               COALESCE(TRIM(p.first_name || ' ' || p.last_name), '')
        FROM jobs j
        LEFT JOIN user_profiles p ON p.user_id = j.poster_id`

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	const query = `
        INSERT INTO jobs (poster_id, title, description, requirements, salary_min, salary_max, job_type, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		job.PosterID,
		job.Title,
		job.Description,
		job.Requirements,
		job.SalaryMin,
		job.SalaryMax,
		job.Type,
		job.Status,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *jobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	return scanJob(r.db.QueryRow(ctx, jobSelect+` WHERE j.id=$1`, id))
}

func (r *jobRepository) List(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	args := []any{}
	clauses := []string{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("j.status=$%d", len(args)))
	}
	if filter.PosterID != nil {
		args = append(args, *filter.PosterID)
		clauses = append(clauses, fmt.Sprintf("j.poster_id=$%d", len(args)))
	}
	query := jobSelect
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset, 20)
	query += fmt.Sprintf(" ORDER BY j.created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *job)
	}
	return result, rows.Err()
}

func (r *jobRepository) UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE jobs SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobRepository) Count(ctx context.Context, status *domain.JobStatus) (int64, error) {
	var count int64
	if status == nil {
		err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&count)
		return count, err
	}
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE status=$1`, *status).Scan(&count)
	return count, err
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.PosterID,
		&job.Title,
		&job.Description,
		&job.Requirements,
		&job.SalaryMin,
		&job.SalaryMax,
		&job.Type,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.PosterName,
	); err != nil {
		return nil, err
	}
	return &job, nil
}
