package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tutorconnect/tutor-connect/internal/api/dto"
	"github.com/tutorconnect/tutor-connect/internal/storage"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

// UploadHandler accepts verification documents and resumes.
type UploadHandler struct {
	files *storage.LocalStorage
}

// NewUploadHandler constructs handler.
func NewUploadHandler(files *storage.LocalStorage) *UploadHandler {
	return &UploadHandler{files: files}
}

// Upload POST /upload with a multipart "file" field.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file field required", map[string]any{"field": "file"})
	}
	if header.Size > h.files.MaxBytes() {
		return apperrors.NewFileTooLarge(h.files.MaxBytes())
	}
	f, err := header.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	stored, err := h.files.Save(c.UserContext(), header.Filename, f, header.Size)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UploadResponse{
		URL:          stored.URL,
		FileName:     stored.Name,
		OriginalName: stored.OriginalName,
		ContentType:  stored.ContentType,
		Size:         stored.Size,
	}})
}
