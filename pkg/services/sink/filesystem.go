package sink

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// FilesystemStore writes artifacts under dir through a temp file and a rename,
// so readers see either nothing or the whole file.
type FilesystemStore struct {
	dir          string
	publicPrefix string
}

func NewFilesystemStore(dir, publicPrefix string) (*FilesystemStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &FilesystemStore{dir: dir, publicPrefix: publicPrefix}, nil
}

func (s *FilesystemStore) Dir() string {
	return s.dir
}

func (s *FilesystemStore) Put(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}

	target := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	if s.publicPrefix == "" {
		return target, nil
	}
	return path.Join(s.publicPrefix, name), nil
}
