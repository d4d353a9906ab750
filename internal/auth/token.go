package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/tutorconnect/tutor-connect/internal/domain"
)

// ErrMissingSecret is returned when a manager is built without a signing key.
var ErrMissingSecret = errors.New("token signing secret is not configured")

// DefaultTokenTTL is the lifetime of access tokens when none is configured.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager. An empty secret is refused.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Claims describes JWT payload.
type Claims struct {
	UserID string      `json:"user_id"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// CreateToken builds and signs a JWT carrying the user's id, email and role.
func (tm *TokenManager) CreateToken(userID, email string, role domain.Role) (string, time.Time, error) {
	issuedAt := tm.now()
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// IssuedBefore reports whether the token predates t. iat only carries whole
// seconds, so t is compared at the same precision.
func (c *Claims) IssuedBefore(t *time.Time) bool {
	if t == nil || c.IssuedAt == nil {
		return false
	}
	return c.IssuedAt.Time.Before(t.Truncate(time.Second))
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, errors.New("incomplete token claims")
	}
	return claims, nil
}

// VerifyToken returns the claims of a valid token, or nil when the token is
// malformed, tampered with or expired.
func (tm *TokenManager) VerifyToken(tokenStr string) *Claims {
	claims, err := tm.ParseToken(tokenStr)
	if err != nil {
		return nil
	}
	return claims
}
