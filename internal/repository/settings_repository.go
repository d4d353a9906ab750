package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// SettingAdminInitialized marks that the one-time admin setup has run.
const SettingAdminInitialized = "admin_initialized"

// SettingsRepository is a key-value store for system flags.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	// SetIfAbsent stores value only when key has no value yet and reports whether it did.
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)
}

type settingsRepository struct {
	db Querier
}

func (r *settingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM system_settings WHERE key=$1`, key).Scan(&value)
	return value, err
}

func (r *settingsRepository) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	const query = `
        INSERT INTO system_settings (key, value) VALUES ($1,$2)
        ON CONFLICT (key) DO NOTHING
        RETURNING key`
	var stored string
	err := r.db.QueryRow(ctx, query, key, value).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
