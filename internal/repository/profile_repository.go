package repository

import (
	"context"

	"github.com/tutorconnect/tutor-connect/internal/domain"
)

// ProfileRepository persists user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.UserProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)
}

type profileRepository struct {
	db Querier
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        INSERT INTO user_profiles (user_id, first_name, middle_name, last_name, phone, bio, avatar_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		profile.UserID,
		profile.FirstName,
		profile.MiddleName,
		profile.LastName,
		profile.Phone,
		profile.Bio,
		profile.AvatarURL,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	return mapWriteError(err)
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	const query = `
        SELECT user_id, first_name, middle_name, last_name, phone, bio, avatar_url, created_at, updated_at
        FROM user_profiles WHERE user_id=$1`
	var profile domain.UserProfile
	if err := r.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.FirstName,
		&profile.MiddleName,
		&profile.LastName,
		&profile.Phone,
		&profile.Bio,
		&profile.AvatarURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
