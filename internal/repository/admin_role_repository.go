package repository

import (
	"context"

	"github.com/tutorconnect/tutor-connect/internal/domain"
)

// AdminRoleRepository stores privileges granted to admin accounts.
type AdminRoleRepository interface {
	Grant(ctx context.Context, role *domain.AdminRole) error
	ListByUser(ctx context.Context, userID string) ([]domain.AdminRole, error)
}

type adminRoleRepository struct {
	db Querier
}

func (r *adminRoleRepository) Grant(ctx context.Context, role *domain.AdminRole) error {
	const query = `
        INSERT INTO admin_roles (user_id, role_name)
        VALUES ($1,$2)
        RETURNING granted_at`
	return mapWriteError(r.db.QueryRow(ctx, query, role.UserID, role.RoleName).Scan(&role.GrantedAt))
}

func (r *adminRoleRepository) ListByUser(ctx context.Context, userID string) ([]domain.AdminRole, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id, role_name, granted_at FROM admin_roles WHERE user_id=$1 ORDER BY granted_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AdminRole
	for rows.Next() {
		var role domain.AdminRole
		if err := rows.Scan(&role.UserID, &role.RoleName, &role.GrantedAt); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}
