package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tutorconnect/tutor-connect/internal/config"
	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

var extensions = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// StoredFile describes a saved upload.
type StoredFile struct {
	Name         string
	OriginalName string
	URL          string
	ContentType  string
	Size         int64
}

// LocalStorage keeps uploads on the local filesystem under a public prefix.
type LocalStorage struct {
	dir        string
	publicBase string
	maxBytes   int64
}

// NewLocalStorage creates the upload directory when missing.
func NewLocalStorage(cfg config.UploadConfig) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &LocalStorage{
		dir:        cfg.Dir,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
		maxBytes:   maxBytes,
	}, nil
}

// Dir returns the directory files are written to.
func (s *LocalStorage) Dir() string {
	return s.dir
}

// MaxBytes returns the per-file size limit.
func (s *LocalStorage) MaxBytes() int64 {
	return s.maxBytes
}

// Save validates and stores r under a random name. The declared size is
// checked first and the stream is still capped in case it lies.
func (s *LocalStorage) Save(ctx context.Context, fileName string, r io.Reader, size int64) (*StoredFile, error) {
	if size > s.maxBytes {
		return nil, apperrors.NewFileTooLarge(s.maxBytes)
	}
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, apperrors.NewFileTooLarge(s.maxBytes)
	}
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("file is empty", map[string]any{"field": "file"})
	}

	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return nil, apperrors.NewUnsupportedFileType(contentType)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := uuid.NewString() + ext
	if err := writeFile(filepath.Join(s.dir, name), data); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	return &StoredFile{
		Name:         name,
		OriginalName: filepath.Base(fileName),
		URL:          s.publicBase + "/" + name,
		ContentType:  contentType,
		Size:         int64(len(data)),
	}, nil
}

func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
