package modelstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FSStore keeps the promoted model in a local file. Used when the S3
// integration is disabled.
type FSStore struct {
	Path string
}

func (s *FSStore) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", s.Path, err)
	}
	return true, nil
}

func (s *FSStore) Put(_ context.Context, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	return os.WriteFile(s.Path, raw, 0o644)
}

func (s *FSStore) Get(_ context.Context) ([]byte, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoModel
		}
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return raw, nil
}
