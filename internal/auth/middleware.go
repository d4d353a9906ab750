package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/tutorconnect/tutor-connect/internal/domain"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller. Every field is derived from
// the verified token and the stored account, never from request input.
type Principal struct {
	UserID string
	Email  string
	Role   domain.Role
	User   *domain.User
}

// UserLookup loads the account behind a token.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  UserLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.authenticate(c)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional lets anonymous requests through. A request that does carry an
// Authorization header is checked exactly like Handle.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) == "" {
		return c.Next()
	}
	return m.Handle(c)
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*Principal, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return nil, apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	claims := m.tokens.VerifyToken(strings.TrimSpace(parts[1]))
	if claims == nil {
		return nil, apperrors.NewUnauthorized("invalid or expired token")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	if claims.IssuedBefore(user.PasswordChangedAt) {
		return nil, apperrors.NewUnauthorized("token was issued before the last password change")
	}
	switch user.Status {
	case domain.UserStatusApproved:
	case domain.UserStatusSuspended:
		return nil, apperrors.NewAccountSuspended()
	case domain.UserStatusPending:
		return nil, apperrors.NewAccountPending()
	default:
		return nil, apperrors.NewAccountRejected()
	}

	return &Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		User:   user,
	}, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
