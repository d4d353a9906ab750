package domain

import "time"

// DocumentType enumerates accepted verification documents.
type DocumentType string

const (
	DocumentTypeID            DocumentType = "id"
	DocumentTypeCertification DocumentType = "certification"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return t == DocumentTypeID || t == DocumentTypeCertification
}

// VerificationStatus mirrors the owning teacher's review outcome.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// TeacherDocument is an uploaded identity or certification file.
type TeacherDocument struct {
	ID              string
	UserID          string
	Type            DocumentType
	FileURL         string
	FileName        string
	Status          VerificationStatus
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
