// Package labels maps model output positions to human-readable class names.
package labels

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Fallback describes the placeholder names used when no label file exists.
type Fallback struct {
	Prefix string
	Count  int
}

// Names returns Prefix_0 ... Prefix_{Count-1}.
func (f Fallback) Names() []string {
	names := make([]string, f.Count)
	for i := range names {
		names[i] = fmt.Sprintf("%s_%d", f.Prefix, i)
	}
	return names
}

// Store is an immutable, index-aligned list of class names.
type Store struct {
	names  []string
	source string
}

// Load reads one label per non-empty line from path. Any read failure
// degrades to fallback placeholders; Load never fails.
func Load(path string, fallback Fallback, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	names, err := readFile(path)
	if err != nil {
		logger.Warn("class labels unavailable, using generic labels",
			zap.String("path", path),
			zap.Int("count", fallback.Count),
			zap.Error(err))
		return &Store{names: fallback.Names(), source: "placeholder"}
	}

	logger.Info("loaded class labels", zap.String("path", path), zap.Int("count", len(names)))
	return &Store{names: names, source: path}
}

// New wraps a fixed label list.
func New(names ...string) *Store {
	return &Store{names: append([]string(nil), names...), source: "builtin"}
}

func readFile(path string) ([]string, error) {
	if path == "" {
		return nil, os.ErrNotExist
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			names = append(names, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return names, nil
}

// Len returns the number of labels.
func (s *Store) Len() int { return len(s.names) }

// Names returns a copy of the label list, never nil.
func (s *Store) Names() []string { return append([]string{}, s.names...) }

// Source is the file the labels came from, "placeholder" or "builtin".
func (s *Store) Source() string { return s.source }

// Name returns the label for output position i, or class_<i> when the
// list is shorter than the model output.
func (s *Store) Name(i int) string {
	if i >= 0 && i < len(s.names) {
		return s.names[i]
	}
	return fmt.Sprintf("class_%d", i)
}

// Write stores names one per line, creating parent directories.
func Write(path string, names []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(names, "\n")+"\n"), 0o644)
}
