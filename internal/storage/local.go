package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

type LocalStore struct {
	dir      string
	maxBytes int64
}

func NewLocalStore(dir string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	return &LocalStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *LocalStore) Save(ctx context.Context, upload Upload) (string, error) {
	img, err := prepare(upload, s.maxBytes)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, img.name), img.data, 0o644); err != nil {
		return "", fmt.Errorf("write image failed: %w", err)
	}
	return Ref(img.name), nil
}

func (s *LocalStore) Open(_ context.Context, name string) (*Object, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	path := filepath.Join(s.dir, name)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open image failed: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat image failed: %w", err)
	}
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("detect image type failed: %w", err)
	}
	return &Object{Body: f, ContentType: mtype.String(), Size: info.Size()}, nil
}

// Delete removes the object behind ref. A missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	name, err := NameFromRef(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove image failed: %w", err)
	}
	return nil
}
