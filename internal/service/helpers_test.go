package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tutorconnect/tutor-connect/internal/auth"
	"github.com/tutorconnect/tutor-connect/internal/config"
	"github.com/tutorconnect/tutor-connect/internal/domain"
	"github.com/tutorconnect/tutor-connect/internal/events"
	"github.com/tutorconnect/tutor-connect/internal/repository/repositorytest"
)

const testPassword = "Abcdef12"

type recordedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordedEvents) handler(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordedEvents) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store        *repositorytest.Store
	tokens       *auth.TokenManager
	accounts     *AccountService
	admin        *AdminService
	jobs         *JobService
	applications *ApplicationService
	recorded     *recordedEvents
}

func newTestEnv(t *testing.T, setupKey string) *testEnv {
	t.Helper()
	store := repositorytest.NewStore()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	cfg := config.Config{Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost, AdminSetupKey: setupKey}}
	dispatcher := events.NewInMemoryDispatcher()
	recorded := &recordedEvents{}
	for _, et := range []events.EventType{
		events.EventTeacherRegistered,
		events.EventTeacherApproved,
		events.EventTeacherRejected,
		events.EventUserSuspended,
		events.EventApplicationSubmitted,
		events.EventApplicationDecided,
	} {
		dispatcher.Subscribe(et, recorded.handler)
	}
	logger := zap.NewNop()
	return &testEnv{
		store:  store,
		tokens: tokens,
		accounts: NewAccountService(cfg, AccountDependencies{
			Store:      store,
			Tokens:     tokens,
			Dispatcher: dispatcher,
			Logger:     logger,
		}),
		admin:        NewAdminService(store, dispatcher, logger),
		jobs:         NewJobService(store),
		applications: NewApplicationService(store, dispatcher, logger),
		recorded:     recorded,
	}
}

func registration(email string) RegisterInput {
	return RegisterInput{Email: email, Password: testPassword, FirstName: "Ada", LastName: "Lovelace"}
}

func teacherRegistration(email string) RegisterInput {
	in := registration(email)
	in.Documents = []DocumentInput{{Type: domain.DocumentTypeID, FileURL: "/uploads/id.pdf", FileName: "id.pdf"}}
	return in
}

func (e *testEnv) mustStudent(t *testing.T, email string) *domain.User {
	t.Helper()
	res, err := e.accounts.RegisterStudent(context.Background(), registration(email))
	if err != nil {
		t.Fatalf("register student: %v", err)
	}
	return res.User
}

func (e *testEnv) mustAdmin(t *testing.T) *domain.User {
	t.Helper()
	res, err := e.accounts.SetupAdmin(context.Background(), registration("admin@x.com"), "")
	if err != nil {
		t.Fatalf("setup admin: %v", err)
	}
	return res.User
}

// mustApprovedTeacher registers a teacher and has admin approve them.
func (e *testEnv) mustApprovedTeacher(t *testing.T, email string, admin *domain.User) *domain.User {
	t.Helper()
	ctx := context.Background()
	res, err := e.accounts.RegisterTeacher(ctx, teacherRegistration(email))
	if err != nil {
		t.Fatalf("register teacher: %v", err)
	}
	user, err := e.admin.ApproveTeacher(ctx, admin.ID, res.User.ID)
	if err != nil {
		t.Fatalf("approve teacher: %v", err)
	}
	return user
}

func (e *testEnv) mustJob(t *testing.T, poster *domain.User, title string) *domain.Job {
	t.Helper()
	job, err := e.jobs.CreateJob(context.Background(), poster.ID, JobInput{Title: title, Description: "Weekly sessions"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func countActions(logs []domain.ActivityLog, action domain.ActivityAction) int {
	n := 0
	for _, l := range logs {
		if l.Action == action {
			n++
		}
	}
	return n
}
