package service

import (
	"context"
	"testing"

	"github.com/tutorconnect/tutor-connect/internal/domain"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

func floatPtr(f float64) *float64 { return &f }

func TestCreateJobDefaults(t *testing.T) {
	env := newTestEnv(t, "")
	admin := env.mustAdmin(t)
	teacher := env.mustApprovedTeacher(t, "t@x.com", admin)

	job := env.mustJob(t, teacher, "Algebra Tutor")
	if job.Type != domain.JobTypeFullTime || job.Status != domain.JobStatusActive {
		t.Fatalf("unexpected defaults: %s %s", job.Type, job.Status)
	}
	if job.PosterName != "Ada Lovelace" {
		t.Fatalf("expected poster name, got %q", job.PosterName)
	}
	if n := countActions(env.store.ActivityLogs(), domain.ActionJobCreated); n != 1 {
		t.Fatalf("expected one job_created entry, got %d", n)
	}
}

func TestCreateJobValidation(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	admin := env.mustAdmin(t)
	student := env.mustStudent(t, "s@x.com")

	cases := map[string]JobInput{
		"missing title":    {Description: "d"},
		"missing desc":     {Title: "t"},
		"bad type":         {Title: "t", Description: "d", Type: "gig"},
		"closed on create": {Title: "t", Description: "d", Status: domain.JobStatusClosed},
		"salary range":     {Title: "t", Description: "d", SalaryMin: floatPtr(50), SalaryMax: floatPtr(10)},
		"negative salary":  {Title: "t", Description: "d", SalaryMin: floatPtr(-1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := env.jobs.CreateJob(ctx, admin.ID, in); !apperrors.Is(err, apperrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	_, err := env.jobs.CreateJob(ctx, student.ID, JobInput{Title: "t", Description: "d"})
	if !apperrors.Is(err, apperrors.CodeValidation) {
		t.Fatalf("expected students to be rejected as posters, got %v", err)
	}
}

func TestListJobsAndStatusChanges(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	admin := env.mustAdmin(t)
	teacher := env.mustApprovedTeacher(t, "t@x.com", admin)
	other := env.mustApprovedTeacher(t, "o@x.com", admin)

	first := env.mustJob(t, teacher, "Algebra Tutor")
	second := env.mustJob(t, teacher, "Physics Tutor")

	jobs, err := env.jobs.ListJobs(ctx, JobQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", jobs)
	}

	if _, err := env.jobs.UpdateJobStatus(ctx, Actor{ID: other.ID, Role: domain.RoleTeacher}, first.ID, domain.JobStatusClosed); !apperrors.Is(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	updated, err := env.jobs.UpdateJobStatus(ctx, Actor{ID: admin.ID, Role: domain.RoleAdmin}, first.ID, domain.JobStatusClosed)
	if err != nil {
		t.Fatalf("expected admin to close job, got %v", err)
	}
	if updated.Status != domain.JobStatusClosed {
		t.Fatalf("expected closed, got %s", updated.Status)
	}

	jobs, _ = env.jobs.ListJobs(ctx, JobQuery{})
	if len(jobs) != 1 {
		t.Fatalf("expected one active job, got %d", len(jobs))
	}
	closed, _ := env.jobs.ListJobs(ctx, JobQuery{Status: domain.JobStatusClosed})
	if len(closed) != 1 || closed[0].ID != first.ID {
		t.Fatalf("expected closed job listed, got %+v", closed)
	}
	if _, err := env.jobs.ListJobs(ctx, JobQuery{Status: "archived"}); !apperrors.Is(err, apperrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetJobNotFound(t *testing.T) {
	env := newTestEnv(t, "")
	if _, err := env.jobs.GetJob(context.Background(), nil, "3f2504e0-4f89-11d3-9a0c-0305e82c3301"); !apperrors.Is(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetJobHidesDraftsFromOthers(t *testing.T) {
	env := newTestEnv(t, "")
	ctx := context.Background()
	admin := env.mustAdmin(t)
	teacher := env.mustApprovedTeacher(t, "t@x.com", admin)
	other := env.mustApprovedTeacher(t, "t2@x.com", admin)
	student := env.mustStudent(t, "s@x.com")

	draft, err := env.jobs.CreateJob(ctx, teacher.ID, JobInput{Title: "Physics", Description: "d", Status: domain.JobStatusDraft})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	hidden := map[string]*Actor{
		"anonymous":     nil,
		"student":       {ID: student.ID, Role: domain.RoleStudent},
		"other teacher": {ID: other.ID, Role: domain.RoleTeacher},
	}
	for name, viewer := range hidden {
		if _, err := env.jobs.GetJob(ctx, viewer, draft.ID); !apperrors.Is(err, apperrors.CodeNotFound) {
			t.Fatalf("%s: expected not found, got %v", name, err)
		}
	}

	visible := map[string]*Actor{
		"poster": {ID: teacher.ID, Role: domain.RoleTeacher},
		"admin":  {ID: admin.ID, Role: domain.RoleAdmin},
	}
	for name, viewer := range visible {
		job, err := env.jobs.GetJob(ctx, viewer, draft.ID)
		if err != nil || job.Status != domain.JobStatusDraft {
			t.Fatalf("%s: expected draft, got %+v %v", name, job, err)
		}
	}

	if _, err := env.jobs.UpdateJobStatus(ctx, Actor{ID: teacher.ID, Role: domain.RoleTeacher}, draft.ID, domain.JobStatusActive); err != nil {
		t.Fatalf("publish draft: %v", err)
	}
	if _, err := env.jobs.GetJob(ctx, nil, draft.ID); err != nil {
		t.Fatalf("expected published job to be public, got %v", err)
	}
}
