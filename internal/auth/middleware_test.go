package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/tutorconnect/tutor-connect/internal/domain"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

type fakeUsers map[string]*domain.User

func (f fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copy := *user
	return &copy, nil
}

func newProtectedApp(t *testing.T, users fakeUsers, roles ...domain.Role) (*fiber.App, *TokenManager) {
	t.Helper()
	tm := newTestManager(t)
	mw := NewAuthMiddleware(tm, users)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).SendString(domainErr.Code)
		},
	})
	app.Get("/protected", mw.Handle, RequireRole(roles...), func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(string(principal.Role) + ":" + principal.UserID)
	})
	return app, tm
}

func doRequest(t *testing.T, app *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestAuthMiddlewareLoadsPrincipalFromToken(t *testing.T) {
	users := fakeUsers{"u1": {ID: "u1", Email: "a@x.com", Role: domain.RoleAdmin, Status: domain.UserStatusApproved}}
	app, tm := newProtectedApp(t, users, domain.RoleAdmin)
	token, _, _ := tm.CreateToken("u1", "a@x.com", domain.RoleAdmin)

	status, body := doRequest(t, app, token)
	if status != http.StatusOK || body != "admin:u1" {
		t.Fatalf("expected 200 admin:u1, got %d %s", status, body)
	}
}

func TestAuthMiddlewareRejections(t *testing.T) {
	users := fakeUsers{
		"student":   {ID: "student", Role: domain.RoleStudent, Status: domain.UserStatusApproved},
		"suspended": {ID: "suspended", Role: domain.RoleAdmin, Status: domain.UserStatusSuspended},
	}
	app, tm := newProtectedApp(t, users, domain.RoleAdmin)

	if status, _ := doRequest(t, app, ""); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
	if status, _ := doRequest(t, app, "garbage"); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", status)
	}

	ghost, _, _ := tm.CreateToken("ghost", "g@x.com", domain.RoleAdmin)
	if status, _ := doRequest(t, app, ghost); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", status)
	}

	student, _, _ := tm.CreateToken("student", "s@x.com", domain.RoleStudent)
	if status, body := doRequest(t, app, student); status != http.StatusForbidden || body != apperrors.CodeForbidden {
		t.Fatalf("expected 403 FORBIDDEN for wrong role, got %d %s", status, body)
	}

	suspended, _, _ := tm.CreateToken("suspended", "x@x.com", domain.RoleAdmin)
	if status, body := doRequest(t, app, suspended); status != http.StatusForbidden || body != apperrors.CodeAccountSuspended {
		t.Fatalf("expected 403 ACCOUNT_SUSPENDED, got %d %s", status, body)
	}
}

func TestRoleComesFromStoredAccount(t *testing.T) {
	users := fakeUsers{"u1": {ID: "u1", Role: domain.RoleStudent, Status: domain.UserStatusApproved}}
	app, tm := newProtectedApp(t, users, domain.RoleAdmin)

	// token claims admin, but the stored account is a student
	token, _, _ := tm.CreateToken("u1", "s@x.com", domain.RoleAdmin)
	if status, _ := doRequest(t, app, token); status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}
}

func TestTokensIssuedBeforePasswordChangeAreRejected(t *testing.T) {
	changedAt := time.Date(2025, 3, 1, 12, 0, 0, 500_000_000, time.UTC)
	users := fakeUsers{"u1": {ID: "u1", Role: domain.RoleStudent, Status: domain.UserStatusApproved, PasswordChangedAt: &changedAt}}
	app, tm := newProtectedApp(t, users, domain.RoleStudent)

	tm.now = func() time.Time { return changedAt.Add(-time.Hour) }
	stale, _, _ := tm.CreateToken("u1", "s@x.com", domain.RoleStudent)
	tm.now = func() time.Time { return changedAt }
	fresh, _, _ := tm.CreateToken("u1", "s@x.com", domain.RoleStudent)

	if status, body := doRequest(t, app, stale); status != http.StatusUnauthorized || body != apperrors.CodeUnauthorized {
		t.Fatalf("expected 401 for a token older than the password, got %d %s", status, body)
	}
	if status, _ := doRequest(t, app, fresh); status != http.StatusOK {
		t.Fatalf("expected 200 for a token issued after the change, got %d", status)
	}
}

func TestOptionalAuth(t *testing.T) {
	users := fakeUsers{"u1": {ID: "u1", Role: domain.RoleTeacher, Status: domain.UserStatusApproved}}
	tm := newTestManager(t)
	mw := NewAuthMiddleware(tm, users)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperrors.ToDomainError(err).HTTPStatus).SendString(apperrors.ToDomainError(err).Code)
		},
	})
	app.Get("/protected", mw.Optional, func(c *fiber.Ctx) error {
		if principal, ok := PrincipalFromContext(c); ok {
			return c.SendString(principal.UserID)
		}
		return c.SendString("anonymous")
	})

	if status, body := doRequest(t, app, ""); status != http.StatusOK || body != "anonymous" {
		t.Fatalf("expected anonymous pass-through, got %d %s", status, body)
	}
	token, _, _ := tm.CreateToken("u1", "t@x.com", domain.RoleTeacher)
	if status, body := doRequest(t, app, token); status != http.StatusOK || body != "u1" {
		t.Fatalf("expected principal u1, got %d %s", status, body)
	}
	if status, _ := doRequest(t, app, "garbage"); status != http.StatusUnauthorized {
		t.Fatalf("expected a bad token to be refused, got %d", status)
	}
}
