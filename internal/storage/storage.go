// Package storage keeps uploaded images out of the database. Rows only hold
// the public reference returned by Save, which has the form /uploads/<name>.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const PublicPrefix = "/uploads/"

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image too large")
	ErrEmptyImage       = errors.New("image is empty")
	ErrNotFound         = errors.New("image not found")
	ErrInvalidRef       = errors.New("invalid image reference")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Upload struct {
	Filename string
	Reader   io.Reader
}

type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

type Store interface {
	Save(ctx context.Context, upload Upload) (string, error)
	Open(ctx context.Context, name string) (*Object, error)
	Delete(ctx context.Context, ref string) error
}

type preparedImage struct {
	name        string
	contentType string
	data        []byte
}

// prepare reads at most maxBytes, sniffs the content and assigns a fresh name.
// The client supplied filename and content type are never trusted.
func prepare(upload Upload, maxBytes int64) (*preparedImage, error) {
	if upload.Reader == nil {
		return nil, ErrEmptyImage
	}
	data, err := io.ReadAll(io.LimitReader(upload.Reader, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image failed: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w (max %d bytes)", ErrImageTooLarge, maxBytes)
	}

	detected := mimetype.Detect(data)
	contentType := strings.SplitN(detected.String(), ";", 2)[0]
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}

	return &preparedImage{
		name:        uuid.NewString() + ext,
		contentType: contentType,
		data:        data,
	}, nil
}

func (p *preparedImage) reader() io.Reader {
	return bytes.NewReader(p.data)
}

// Ref converts a stored object name to its public reference.
func Ref(name string) string {
	return PublicPrefix + name
}

// NameFromRef validates a public reference and returns the object name.
func NameFromRef(ref string) (string, error) {
	if !strings.HasPrefix(ref, PublicPrefix) {
		return "", ErrInvalidRef
	}
	name := strings.TrimPrefix(ref, PublicPrefix)
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ErrInvalidRef
	}
	return nil
}
