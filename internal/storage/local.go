package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrFileTooLarge = errors.New("file exceeds size limit")

// StoredFile is the attachment tuple the message flow consumes. The bytes
// themselves never travel through the core.
type StoredFile struct {
	URL  string
	Name string
	Type string
	Size int64
}

// FileStore persists uploaded binaries and returns their metadata.
type FileStore interface {
	Save(ctx context.Context, file *multipart.FileHeader) (StoredFile, error)
}

// LocalStore writes uploads to a directory served under /uploads.
type LocalStore struct {
	dir      string
	maxBytes int64
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes}, nil
}

// Save stores the upload under a random name, keeping the original extension.
func (s *LocalStore) Save(ctx context.Context, file *multipart.FileHeader) (StoredFile, error) {
	if file.Size > s.maxBytes {
		return StoredFile{}, ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return StoredFile{}, err
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return StoredFile{}, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return StoredFile{}, err
	}

	return StoredFile{
		URL:  "/uploads/" + name,
		Name: file.Filename,
		Type: KindFromMIME(file.Header.Get("Content-Type")),
		Size: file.Size,
	}, nil
}

// KindFromMIME buckets a MIME type into the categories clients render.
func KindFromMIME(mimetype string) string {
	switch {
	case strings.HasPrefix(mimetype, "image/"):
		return "image"
	case strings.HasPrefix(mimetype, "video/"):
		return "video"
	case strings.HasPrefix(mimetype, "audio/"):
		return "audio"
	default:
		return "document"
	}
}
