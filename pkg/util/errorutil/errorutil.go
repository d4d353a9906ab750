package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Machine-readable error codes returned to clients.
const (
	CodeValidation           = "VALIDATION_FAILED"
	CodeMissingDocuments     = "MISSING_DOCUMENTS"
	CodeDuplicateEmail       = "DUPLICATE_EMAIL"
	CodeDuplicateApplication = "DUPLICATE_APPLICATION"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeAccountPending       = "ACCOUNT_PENDING"
	CodeAccountSuspended     = "ACCOUNT_SUSPENDED"
	CodeAccountRejected      = "ACCOUNT_REJECTED"
	CodeForbidden            = "FORBIDDEN"
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidState         = "INVALID_STATE"
	CodeAdminInitialized     = "ADMIN_ALREADY_INITIALIZED"
	CodeFileTooLarge         = "FILE_TOO_LARGE"
	CodeUnsupportedFileType  = "UNSUPPORTED_FILE_TYPE"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInternal             = "INTERNAL_ERROR"
)

// InvalidCredentialsMessage is shared by every login failure that must not reveal which field was wrong.
const InvalidCredentialsMessage = "invalid email or password"

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewMissingDocuments(message string) error {
	return NewDomainError(CodeMissingDocuments, message, http.StatusBadRequest, nil)
}

func NewDuplicateEmail() error {
	return NewDomainError(CodeDuplicateEmail, "email already registered", http.StatusBadRequest, nil)
}

func NewDuplicateApplication(jobID string) error {
	return NewDomainError(CodeDuplicateApplication, "you have already applied to this job", http.StatusBadRequest,
		map[string]any{"job_id": jobID})
}

func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, InvalidCredentialsMessage, http.StatusUnauthorized, nil)
}

func NewAccountPending() error {
	return NewDomainError(CodeAccountPending, "account is pending admin verification", http.StatusForbidden, nil)
}

func NewAccountSuspended() error {
	return NewDomainError(CodeAccountSuspended, "account is suspended", http.StatusForbidden, nil)
}

func NewAccountRejected() error {
	return NewDomainError(CodeAccountRejected, "account verification was rejected", http.StatusForbidden, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewInvalidState(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidState, message, http.StatusConflict, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewAdminInitialized() error {
	return NewDomainError(CodeAdminInitialized, "an admin account already exists", http.StatusConflict, nil)
}

func NewFileTooLarge(limit int64) error {
	return NewDomainError(CodeFileTooLarge, "file exceeds the upload size limit", http.StatusBadRequest,
		map[string]any{"max_bytes": limit})
}

func NewUnsupportedFileType(contentType string) error {
	return NewDomainError(CodeUnsupportedFileType, "only PDF, JPEG and PNG files are accepted", http.StatusBadRequest,
		map[string]any{"content_type": contentType})
}

func NewRateLimited() error {
	return NewDomainError(CodeRateLimited, "too many requests, try again later", http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
