package repository

import (
	"context"
	"fmt"

	"github.com/tutorconnect/tutor-connect/internal/domain"
)

// ActivityRepository stores audit entries. Entries are never updated or deleted.
type ActivityRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
	List(ctx context.Context, limit, offset int) ([]domain.ActivityLog, error)
}

type activityRepository struct {
	db Querier
}

func (r *activityRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	const query = `
        INSERT INTO activity_logs (actor_id, action, target_type, target_id, details)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	return r.db.QueryRow(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityRepository) List(ctx context.Context, limit, offset int) ([]domain.ActivityLog, error) {
	limit, offset = normalizePage(limit, offset, 50)
	query := fmt.Sprintf(`
        SELECT l.id, l.actor_id, l.action, l.target_type, l.target_id, l.details, l.created_at, u.email
        FROM activity_logs l
        LEFT JOIN users u ON u.id = l.actor_id
        ORDER BY l.created_at DESC, l.id DESC LIMIT %d OFFSET %d`, limit, offset)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityLog
	for rows.Next() {
		var entry domain.ActivityLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.Action,
			&entry.TargetType,
			&entry.TargetID,
			&entry.Details,
			&entry.CreatedAt,
			&entry.ActorEmail,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
