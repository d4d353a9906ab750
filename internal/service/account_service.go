package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tutorconnect/tutor-connect/internal/auth"
	"github.com/tutorconnect/tutor-connect/internal/config"
	"github.com/tutorconnect/tutor-connect/internal/domain"
	"github.com/tutorconnect/tutor-connect/internal/events"
	"github.com/tutorconnect/tutor-connect/internal/repository"
	"github.com/tutorconnect/tutor-connect/internal/validation"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

// TeacherPendingMessage is returned instead of a token after teacher registration.
const TeacherPendingMessage = "Registration submitted. Your account will be reviewed by an administrator."

// RegisterInput carries the fields shared by every registration form.
type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	MiddleName string
	LastName   string
	Phone      *string
	Bio        string
	Documents  []DocumentInput
}

// DocumentInput references a previously uploaded verification file.
type DocumentInput struct {
	Type     domain.DocumentType
	FileURL  string
	FileName string
}

// RegistrationResult is the outcome of a successful registration. Token is
// empty for teachers, who cannot sign in until approved.
type RegistrationResult struct {
	User      *domain.User
	Profile   *domain.UserProfile
	Documents []domain.TeacherDocument
	Token     string
	ExpiresAt time.Time
	Message   string
}

// LoginResult holds an issued token for an authenticated account.
type LoginResult struct {
	User      *domain.User
	Profile   *domain.UserProfile
	Token     string
	ExpiresAt time.Time
}

// AccountView is the caller's own account.
type AccountView struct {
	User       *domain.User
	Profile    *domain.UserProfile
	Documents  []domain.TeacherDocument
	AdminRoles []domain.AdminRole
}

// AccountService coordinates registration, login and password flows.
type AccountService struct {
	store         repository.Store
	tokens        *auth.TokenManager
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	bcryptCost    int
	adminSetupKey string

	dummyOnce sync.Once
	dummyHash string
}

// AccountDependencies encapsulates collaborators for the account service.
type AccountDependencies struct {
	Store      repository.Store
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		store:         deps.Store,
		tokens:        deps.Tokens,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		bcryptCost:    cfg.Auth.BcryptCost,
		adminSetupKey: cfg.Auth.AdminSetupKey,
	}
}

// RegisterStudent creates an approved student account and signs it in.
func (s *AccountService) RegisterStudent(ctx context.Context, in RegisterInput) (*RegistrationResult, error) {
	return s.register(ctx, domain.RoleStudent, in)
}

// RegisterTeacher creates a pending teacher account with its verification documents.
func (s *AccountService) RegisterTeacher(ctx context.Context, in RegisterInput) (*RegistrationResult, error) {
	return s.register(ctx, domain.RoleTeacher, in)
}

// SetupAdmin creates the first admin account. It succeeds at most once.
func (s *AccountService) SetupAdmin(ctx context.Context, in RegisterInput, setupKey string) (*RegistrationResult, error) {
	if s.adminSetupKey != "" && subtle.ConstantTimeCompare([]byte(s.adminSetupKey), []byte(setupKey)) != 1 {
		return nil, apperrors.NewForbidden("invalid admin setup key")
	}
	if _, err := s.store.Repos().Settings.Get(ctx, repository.SettingAdminInitialized); err == nil {
		return nil, apperrors.NewAdminInitialized()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("read admin setting: %w", err)
	}
	return s.register(ctx, domain.RoleAdmin, in)
}

func (s *AccountService) register(ctx context.Context, role domain.Role, in RegisterInput) (*RegistrationResult, error) {
	if err := validation.ValidateRegistration(validation.RegistrationInput{
		Email:      in.Email,
		Password:   in.Password,
		FirstName:  in.FirstName,
		MiddleName: in.MiddleName,
		LastName:   in.LastName,
	}); err != nil {
		return nil, err
	}
	email := validation.NormalizeEmail(in.Email)

	if _, err := s.store.Repos().Users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewDuplicateEmail()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if role == domain.RoleTeacher {
		if err := validateDocuments(in.Documents); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	result := &RegistrationResult{}
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		if role == domain.RoleAdmin {
			claimed, err := repos.Settings.SetIfAbsent(ctx, repository.SettingAdminInitialized, "true")
			if err != nil {
				return fmt.Errorf("claim admin setup: %w", err)
			}
			if !claimed {
				return apperrors.NewAdminInitialized()
			}
		}

		user := &domain.User{
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			Status:       domain.InitialStatus(role),
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewDuplicateEmail()
			}
			return fmt.Errorf("create user: %w", err)
		}

		profile := &domain.UserProfile{
			UserID:     user.ID,
			FirstName:  strings.TrimSpace(in.FirstName),
			MiddleName: strings.TrimSpace(in.MiddleName),
			LastName:   strings.TrimSpace(in.LastName),
			Phone:      in.Phone,
			Bio:        strings.TrimSpace(in.Bio),
		}
		if err := repos.Profiles.Create(ctx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}

		var docs []domain.TeacherDocument
		if role == domain.RoleTeacher {
			for _, input := range in.Documents {
				doc := &domain.TeacherDocument{
					UserID:   user.ID,
					Type:     input.Type,
					FileURL:  strings.TrimSpace(input.FileURL),
					FileName: strings.TrimSpace(input.FileName),
					Status:   domain.VerificationPending,
				}
				if err := repos.Documents.Create(ctx, doc); err != nil {
					return fmt.Errorf("create document: %w", err)
				}
				docs = append(docs, *doc)
			}
		}

		action := domain.ActionStudentRegistered
		switch role {
		case domain.RoleTeacher:
			action = domain.ActionTeacherRegistered
		case domain.RoleAdmin:
			action = domain.ActionAdminInitialized
			if err := repos.AdminRoles.Grant(ctx, &domain.AdminRole{UserID: user.ID, RoleName: domain.AdminRoleSuper}); err != nil {
				return fmt.Errorf("grant admin role: %w", err)
			}
		}
		details := map[string]any{"email": email}
		if len(docs) > 0 {
			details["documents"] = len(docs)
		}
		if err := appendActivity(ctx, repos, &user.ID, action, domain.TargetUser, user.ID, details); err != nil {
			return fmt.Errorf("append activity: %w", err)
		}

		result.User = user
		result.Profile = profile
		result.Documents = docs
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		zap.String("user_id", result.User.ID),
		zap.String("role", string(role)),
		zap.String("status", string(result.User.Status)))

	if role == domain.RoleTeacher {
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:      events.EventTeacherRegistered,
			ActorID:   &result.User.ID,
			SubjectID: result.User.ID,
			Payload:   events.TeacherReviewPayload{Email: email, Status: result.User.Status},
		})
		result.Message = TeacherPendingMessage
		return result, nil
	}

	token, exp, err := s.tokens.CreateToken(result.User.ID, result.User.Email, result.User.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	result.Token = token
	result.ExpiresAt = exp
	return result, nil
}

func validateDocuments(docs []DocumentInput) error {
	if len(docs) == 0 {
		return apperrors.NewMissingDocuments("at least one verification document is required")
	}
	for _, doc := range docs {
		if !doc.Type.Valid() {
			return apperrors.NewMissingDocuments("document type must be id or certification")
		}
		if strings.TrimSpace(doc.FileURL) == "" || strings.TrimSpace(doc.FileName) == "" {
			return apperrors.NewMissingDocuments("every document needs a file url and file name")
		}
	}
	return nil
}

// Login authenticates by email and password. Unknown emails and wrong
// passwords produce the same error.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.Repos().Users.GetByEmail(ctx, validation.NormalizeEmail(email))
	if errors.Is(err, pgx.ErrNoRows) {
		_ = auth.ComparePassword(s.placeholderHash(), password)
		return nil, apperrors.NewInvalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}

	switch user.Status {
	case domain.UserStatusPending:
		return nil, apperrors.NewAccountPending()
	case domain.UserStatusSuspended:
		return nil, apperrors.NewAccountSuspended()
	case domain.UserStatusRejected:
		return nil, apperrors.NewAccountRejected()
	}

	token, exp, err := s.tokens.CreateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	profile, err := s.store.Repos().Profiles.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &LoginResult{User: user, Profile: profile, Token: token, ExpiresAt: exp}, nil
}

// placeholderHash keeps the unknown-email path as slow as a real comparison.
func (s *AccountService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("placeholder-password", s.bcryptCost)
	})
	return s.dummyHash
}

// Me returns the caller's account, profile and role specific extras.
func (s *AccountService) Me(ctx context.Context, userID string) (*AccountView, error) {
	repos := s.store.Repos()
	user, err := repos.Users.GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	view := &AccountView{User: user}
	if view.Profile, err = repos.Profiles.GetByUserID(ctx, userID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	switch user.Role {
	case domain.RoleTeacher:
		if view.Documents, err = repos.Documents.ListByUser(ctx, userID); err != nil {
			return nil, fmt.Errorf("load documents: %w", err)
		}
	case domain.RoleAdmin:
		if view.AdminRoles, err = repos.AdminRoles.ListByUser(ctx, userID); err != nil {
			return nil, fmt.Errorf("load admin roles: %w", err)
		}
	}
	return view, nil
}

// ChangePassword replaces the caller's password after verifying the current one.
// Tokens issued before the change stop working; the returned token replaces them.
func (s *AccountService) ChangePassword(ctx context.Context, userID, current, next string) (*LoginResult, error) {
	user, err := s.store.Repos().Users.GetByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := auth.ComparePassword(user.PasswordHash, current); err != nil {
		return nil, apperrors.NewInvalidCredentials()
	}
	if !validation.ValidatePassword(next) {
		return nil, apperrors.NewValidationError(
			"password must be at least 8 characters and contain an uppercase letter, a lowercase letter and a number",
			map[string]any{"field": "new_password"})
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	changedAt := time.Now().UTC()
	err = s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Users.UpdatePassword(ctx, userID, hash, changedAt); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return appendActivity(ctx, repos, &userID, domain.ActionPasswordChanged, domain.TargetUser, userID, nil)
	})
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.PasswordChangedAt = &changedAt

	token, exp, err := s.tokens.CreateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("password changed", zap.String("user_id", userID))
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}
