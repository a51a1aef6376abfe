// Package artifact fetches model files from remote repositories into the
// local model cache.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Source downloads one model artifact to a local file.
type Source interface {
	Download(ctx context.Context, dst string) error
	String() string
}

// ErrNoSource is returned when no remote repository is configured.
var ErrNoSource = errors.New("no remote model source configured")

// Fetch downloads src into path. The file appears at path only once the
// download completed, so a failed fetch never leaves a truncated cache.
func Fetch(ctx context.Context, src Source, path string) error {
	if src == nil {
		return ErrNoSource
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp := path + ".partial"
	defer os.Remove(tmp)

	if err := src.Download(ctx, tmp); err != nil {
		return fmt.Errorf("download %s: %w", src, err)
	}

	info, err := os.Stat(tmp)
	if err != nil {
		return fmt.Errorf("download %s: %w", src, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("download %s: empty artifact", src)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("persist %s: %w", path, err)
	}
	return nil
}
