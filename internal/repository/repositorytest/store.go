// Package repositorytest provides an in-memory repository.Store for tests.
// It enforces the same unique constraints as the Postgres schema and restores
// its previous state when a transaction callback fails.
package repositorytest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tutorconnect/tutor-connect/internal/domain"
	"github.com/tutorconnect/tutor-connect/internal/repository"
)

type state struct {
	users        map[string]domain.User
	profiles     map[string]domain.UserProfile
	documents    []domain.TeacherDocument
	adminRoles   []domain.AdminRole
	jobs         map[string]domain.Job
	applications map[string]domain.JobApplication
	activity     []domain.ActivityLog
	settings     map[string]string
}

func newState() *state {
	return &state{
		users:        map[string]domain.User{},
		profiles:     map[string]domain.UserProfile{},
		jobs:         map[string]domain.Job{},
		applications: map[string]domain.JobApplication{},
		settings:     map[string]string{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.jobs {
		c.jobs[k] = v
	}
	for k, v := range s.applications {
		c.applications[k] = v
	}
	for k, v := range s.settings {
		c.settings[k] = v
	}
	c.documents = append(c.documents, s.documents...)
	c.adminRoles = append(c.adminRoles, s.adminRoles...)
	c.activity = append(c.activity, s.activity...)
	return c
}

// Store is an in-memory repository.Store.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data *state
	base time.Time
	tick int64

	// ActivityErr, when set, is returned by every activity insert.
	ActivityErr error
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: newState(), base: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Repos returns repositories bound to the store.
func (s *Store) Repos() repository.Repositories {
	return repository.Repositories{
		Users:        &users{s},
		Profiles:     &profiles{s},
		Documents:    &documents{s},
		AdminRoles:   &adminRoles{s},
		Jobs:         &jobs{s},
		Applications: &applications{s},
		Activity:     &activity{s},
		Settings:     &settings{s},
	}
}

// WithinTx serializes transactions and rolls back on error.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// ActivityLogs returns every recorded entry in insertion order.
func (s *Store) ActivityLogs() []domain.ActivityLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ActivityLog(nil), s.data.activity...)
}

// UserCount returns the number of stored accounts.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.users)
}

// now returns strictly increasing timestamps so ordering is deterministic.
func (s *Store) now() time.Time {
	s.tick++
	return s.base.Add(time.Duration(s.tick) * time.Millisecond)
}

func page(n, limit, offset, defaultLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := offset + limit
	if end > n {
		end = n
	}
	return offset, end
}

type users struct{ s *Store }

func (r *users) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("%w: users_email_lower_idx", repository.ErrDuplicate)
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.data.users[user.ID] = *user
	return nil
}

func (r *users) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r *users) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *users) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Status = status
	u.UpdatedAt = r.s.now()
	r.s.data.users[id] = u
	return nil
}

func (r *users) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &changedAt
	u.UpdatedAt = r.s.now()
	r.s.data.users[id] = u
	return nil
}

func (r *users) filtered(filter repository.UserFilter) []domain.User {
	var result []domain.User
	for _, u := range r.s.data.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Status != nil && u.Status != *filter.Status {
			continue
		}
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (r *users) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.filtered(filter)
	from, to := page(len(all), filter.Limit, filter.Offset, 50)
	return all[from:to], nil
}

func (r *users) Count(_ context.Context, filter repository.UserFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.filtered(filter))), nil
}

type profiles struct{ s *Store }

func (r *profiles) Create(_ context.Context, profile *domain.UserProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[profile.UserID]; !ok {
		return fmt.Errorf("insert profile: unknown user %s", profile.UserID)
	}
	if _, ok := r.s.data.profiles[profile.UserID]; ok {
		return fmt.Errorf("%w: user_profiles_pkey", repository.ErrDuplicate)
	}
	profile.CreatedAt = r.s.now()
	profile.UpdatedAt = profile.CreatedAt
	r.s.data.profiles[profile.UserID] = *profile
	return nil
}

func (r *profiles) GetByUserID(_ context.Context, userID string) (*domain.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.profiles[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &p, nil
}

type documents struct{ s *Store }

func (r *documents) Create(_ context.Context, doc *domain.TeacherDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doc.ID = uuid.NewString()
	doc.CreatedAt = r.s.now()
	doc.UpdatedAt = doc.CreatedAt
	r.s.data.documents = append(r.s.data.documents, *doc)
	return nil
}

func (r *documents) ListByUser(_ context.Context, userID string) ([]domain.TeacherDocument, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.TeacherDocument
	for _, d := range r.s.data.documents {
		if d.UserID == userID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (r *documents) SetStatusForUser(_ context.Context, userID string, status domain.VerificationStatus, reason *string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for i, d := range r.s.data.documents {
		if d.UserID != userID {
			continue
		}
		d.Status = status
		d.RejectionReason = reason
		d.UpdatedAt = r.s.now()
		r.s.data.documents[i] = d
		n++
	}
	return n, nil
}

type adminRoles struct{ s *Store }

func (r *adminRoles) Grant(_ context.Context, role *domain.AdminRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.adminRoles {
		if existing.UserID == role.UserID && existing.RoleName == role.RoleName {
			return fmt.Errorf("%w: admin_roles_pkey", repository.ErrDuplicate)
		}
	}
	role.GrantedAt = r.s.now()
	r.s.data.adminRoles = append(r.s.data.adminRoles, *role)
	return nil
}

func (r *adminRoles) ListByUser(_ context.Context, userID string) ([]domain.AdminRole, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.AdminRole
	for _, role := range r.s.data.adminRoles {
		if role.UserID == userID {
			result = append(result, role)
		}
	}
	return result, nil
}

type settings struct{ s *Store }

func (r *settings) Get(_ context.Context, key string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.data.settings[key]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return v, nil
}

func (r *settings) SetIfAbsent(_ context.Context, key, value string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.settings[key]; ok {
		return false, nil
	}
	r.s.data.settings[key] = value
	return true, nil
}

type jobs struct{ s *Store }

func (r *jobs) withPoster(j domain.Job) domain.Job {
	if p, ok := r.s.data.profiles[j.PosterID]; ok {
		j.PosterName = p.DisplayName()
	}
	return j
}

func (r *jobs) Create(_ context.Context, job *domain.Job) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.users[job.PosterID]; !ok {
		return fmt.Errorf("insert job: unknown poster %s", job.PosterID)
	}
	job.ID = uuid.NewString()
	job.CreatedAt = r.s.now()
	job.UpdatedAt = job.CreatedAt
	r.s.data.jobs[job.ID] = *job
	return nil
}

func (r *jobs) GetByID(_ context.Context, id string) (*domain.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.data.jobs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	j = r.withPoster(j)
	return &j, nil
}

func (r *jobs) List(_ context.Context, filter repository.JobFilter) ([]domain.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Job
	for _, j := range r.s.data.jobs {
		if filter.Status != nil && j.Status != *filter.Status {
			continue
		}
		if filter.PosterID != nil && j.PosterID != *filter.PosterID {
			continue
		}
		result = append(result, r.withPoster(j))
	}
	sort.Slice(result, func(i, k int) bool { return result[i].CreatedAt.After(result[k].CreatedAt) })
	from, to := page(len(result), filter.Limit, filter.Offset, 20)
	return result[from:to], nil
}

func (r *jobs) UpdateStatus(_ context.Context, id string, status domain.JobStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j, ok := r.s.data.jobs[id]
	if !ok {
		return pgx.ErrNoRows
	}
	j.Status = status
	j.UpdatedAt = r.s.now()
	r.s.data.jobs[id] = j
	return nil
}

func (r *jobs) Count(_ context.Context, status *domain.JobStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, j := range r.s.data.jobs {
		if status == nil || j.Status == *status {
			n++
		}
	}
	return n, nil
}

type applications struct{ s *Store }

func (r *applications) joined(a domain.JobApplication) domain.JobApplication {
	if j, ok := r.s.data.jobs[a.JobID]; ok {
		a.JobTitle = j.Title
		a.JobPosterID = j.PosterID
	}
	if p, ok := r.s.data.profiles[a.StudentID]; ok {
		a.ApplicantName = p.DisplayName()
	}
	return a
}

func (r *applications) Create(_ context.Context, app *domain.JobApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.jobs[app.JobID]; !ok {
		return fmt.Errorf("insert application: unknown job %s", app.JobID)
	}
	for _, existing := range r.s.data.applications {
		if existing.JobID == app.JobID && existing.StudentID == app.StudentID {
			return fmt.Errorf("%w: job_applications_job_student_idx", repository.ErrDuplicate)
		}
	}
	app.ID = uuid.NewString()
	app.AppliedAt = r.s.now()
	app.UpdatedAt = app.AppliedAt
	r.s.data.applications[app.ID] = *app
	return nil
}

func (r *applications) GetByID(_ context.Context, id string) (*domain.JobApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.applications[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	a = r.joined(a)
	return &a, nil
}

func (r *applications) FindByJobAndStudent(_ context.Context, jobID, studentID string) (*domain.JobApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.data.applications {
		if a.JobID == jobID && a.StudentID == studentID {
			a = r.joined(a)
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *applications) List(_ context.Context, filter repository.ApplicationFilter) ([]domain.JobApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.JobApplication
	for _, a := range r.s.data.applications {
		a = r.joined(a)
		if filter.StudentID != nil && a.StudentID != *filter.StudentID {
			continue
		}
		if filter.TeacherID != nil && a.JobPosterID != *filter.TeacherID {
			continue
		}
		if filter.JobID != nil && a.JobID != *filter.JobID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, k int) bool { return result[i].AppliedAt.After(result[k].AppliedAt) })
	from, to := page(len(result), filter.Limit, filter.Offset, 50)
	return result[from:to], nil
}

func (r *applications) TransitionStatus(_ context.Context, id string, from, to domain.ApplicationStatus, decidedBy *string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.applications[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	a.UpdatedAt = r.s.now()
	if decidedBy != nil {
		by := *decidedBy
		at := a.UpdatedAt
		a.DecidedBy = &by
		a.DecidedAt = &at
	}
	r.s.data.applications[id] = a
	return true, nil
}

func (r *applications) Count(_ context.Context, status *domain.ApplicationStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.data.applications {
		if status == nil || a.Status == *status {
			n++
		}
	}
	return n, nil
}

type activity struct{ s *Store }

func (r *activity) Create(_ context.Context, entry *domain.ActivityLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ActivityErr != nil {
		return r.s.ActivityErr
	}
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = r.s.now()
	r.s.data.activity = append(r.s.data.activity, *entry)
	return nil
}

func (r *activity) List(_ context.Context, limit, offset int) ([]domain.ActivityLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := len(r.s.data.activity)
	result := make([]domain.ActivityLog, 0, n)
	for i := n - 1; i >= 0; i-- {
		entry := r.s.data.activity[i]
		if entry.ActorID != nil {
			if u, ok := r.s.data.users[*entry.ActorID]; ok {
				email := u.Email
				entry.ActorEmail = &email
			}
		}
		result = append(result, entry)
	}
	from, to := page(len(result), limit, offset, 50)
	return result[from:to], nil
}
