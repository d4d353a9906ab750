package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolation = "23505"

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles every repository bound to the same connection or transaction.
type Repositories struct {
	Users        UserRepository
	Profiles     ProfileRepository
	Documents    DocumentRepository
	AdminRoles   AdminRoleRepository
	Jobs         JobRepository
	Applications ApplicationRepository
	Activity     ActivityRepository
	Settings     SettingsRepository
}

// Store exposes repositories and a transaction boundary.
type Store interface {
	Repos() Repositories
	// WithinTx runs fn inside a transaction, rolling back when fn returns an error.
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}

type pgStore struct {
	pool  *pgxpool.Pool
	repos Repositories
}

// NewStore returns a Postgres-backed Store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, repos: newRepositories(pool)}
}

func (s *pgStore) Repos() Repositories {
	return s.repos
}

func (s *pgStore) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	if s.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(newRepositories(tx))
	})
}

func newRepositories(q Querier) Repositories {
	return Repositories{
		Users:        &userRepository{db: q},
		Profiles:     &profileRepository{db: q},
		Documents:    &documentRepository{db: q},
		AdminRoles:   &adminRoleRepository{db: q},
		Jobs:         &jobRepository{db: q},
		Applications: &applicationRepository{db: q},
		Activity:     &activityRepository{db: q},
		Settings:     &settingsRepository{db: q},
	}
}

// mapWriteError turns unique violations into ErrDuplicate, keeping the constraint name.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func normalizePage(limit, offset, defaultLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
