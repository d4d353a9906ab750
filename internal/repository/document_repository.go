package repository

import (
	"context"

	"github.com/tutorconnect/tutor-connect/internal/domain"
)

// DocumentRepository persists teacher verification documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.TeacherDocument) error
	ListByUser(ctx context.Context, userID string) ([]domain.TeacherDocument, error)
	// SetStatusForUser updates every document of a teacher and returns the number of rows touched.
	SetStatusForUser(ctx context.Context, userID string, status domain.VerificationStatus, reason *string) (int64, error)
}

type documentRepository struct {
	db Querier
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.TeacherDocument) error {
	const query = `
        INSERT INTO teacher_documents (user_id, document_type, file_url, file_name, verification_status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		doc.UserID,
		doc.Type,
		doc.FileURL,
		doc.FileName,
		doc.Status,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
}

func (r *documentRepository) ListByUser(ctx context.Context, userID string) ([]domain.TeacherDocument, error) {
	const query = `
        SELECT id, user_id, document_type, file_url, file_name, verification_status, rejection_reason, created_at, updated_at
        FROM teacher_documents WHERE user_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TeacherDocument
	for rows.Next() {
		var doc domain.TeacherDocument
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.Type,
			&doc.FileURL,
			&doc.FileName,
			&doc.Status,
			&doc.RejectionReason,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, rows.Err()
}

func (r *documentRepository) SetStatusForUser(ctx context.Context, userID string, status domain.VerificationStatus, reason *string) (int64, error) {
	const query = `
        UPDATE teacher_documents SET verification_status=$1, rejection_reason=$2, updated_at=NOW()
        WHERE user_id=$3`
	cmd, err := r.db.Exec(ctx, query, status, reason, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
